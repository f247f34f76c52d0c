package demo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Record is one sample EVE alert line.
type Record struct {
	SrcIP    string      `json:"src_ip"`
	DestIP   string      `json:"dest_ip"`
	DestPort int         `json:"dest_port"`
	Alert    AlertFields `json:"alert"`
}

// AlertFields is the nested alert object of a sample record.
type AlertFields struct {
	Signature string `json:"signature"`
}

// Records returns the built-in sample alerts.
func Records() []Record {
	return []Record{
		{SrcIP: "10.0.0.5", DestIP: "192.168.1.10", DestPort: 22, Alert: AlertFields{Signature: "ET SCAN Potential SSH Scan"}},
		{SrcIP: "10.0.0.5", DestIP: "192.168.1.11", DestPort: 22, Alert: AlertFields{Signature: "ET SCAN Potential SSH Scan"}},
		{SrcIP: "172.16.0.9", DestIP: "192.168.1.20", DestPort: 3389, Alert: AlertFields{Signature: "ET POLICY RDP Outbound Possible"}},
		{SrcIP: "8.8.8.8", DestIP: "192.168.1.30", DestPort: 53, Alert: AlertFields{Signature: "ET DNS Suspicious DNS Query"}},
	}
}

// WriteFile writes the sample alerts as JSONL. It fails if path already exists.
func WriteFile(path string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create demo directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("create demo file: %w", err)
	}

	w := bufio.NewWriter(f)
	for _, rec := range Records() {
		line, err := FormatLine(rec)
		if err != nil {
			f.Close()
			return fmt.Errorf("encode demo record: %w", err)
		}
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush demo file: %w", err)
	}
	return f.Close()
}

// FormatLine renders one record as a single JSON line with ", " and ": " separators.
func FormatLine(rec Record) (string, error) {
	compact, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	inString, escaped := false, false
	for _, c := range compact {
		buf.WriteByte(c)
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ',' || c == ':'):
			buf.WriteByte(' ')
		}
	}
	return buf.String(), nil
}

// EnsureFile writes the sample alerts only when path does not exist.
// It reports whether a file was written.
func EnsureFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat alert source: %w", err)
	}
	if err := WriteFile(path); err != nil {
		return false, err
	}
	return true, nil
}
