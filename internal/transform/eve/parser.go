package eve

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"threatsnap/pkg/models"
)

const (
	// DefaultPort is used when a record carries no dest_port.
	DefaultPort = 0
	// UnknownSignature is used when a record carries no alert.signature.
	UnknownSignature = "UNKNOWN ALERT"
)

var (
	// ErrMalformedLine reports a line that is not valid JSON.
	ErrMalformedLine = errors.New("malformed json line")
	// ErrInvalidRecord reports valid JSON that does not hold a usable alert.
	ErrInvalidRecord = errors.New("invalid alert record")
)

// Record is the typed intermediate form of one EVE alert object.
// Raw fields keep their JSON text so presence and type can be checked per field.
// Addresses must be JSON strings; their format is not checked.
type Record struct {
	SrcIP    *string
	DestIP   *string
	DestPort json.RawMessage
	Alert    json.RawMessage
}

// Parse decodes one JSONL line into an Alert.
func Parse(line []byte) (models.Alert, error) {
	if !json.Valid(line) {
		return models.Alert{}, ErrMalformedLine
	}

	rec, ok := decodeRecord(line)
	if !ok {
		return models.Alert{}, ErrInvalidRecord
	}

	alert, ok := Extract(rec)
	if !ok {
		return models.Alert{}, ErrInvalidRecord
	}
	return alert, nil
}

// decodeRecord looks fields up by exact key. encoding/json struct decoding
// folds case, which would let SRC_IP or Dest_Port stand in for the real fields.
func decodeRecord(line []byte) (Record, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(line, &fields); err != nil {
		// arrays and scalars
		return Record{}, false
	}

	var rec Record
	var ok bool
	if rec.SrcIP, ok = getAddress(fields, "src_ip"); !ok {
		return Record{}, false
	}
	if rec.DestIP, ok = getAddress(fields, "dest_ip"); !ok {
		return Record{}, false
	}
	rec.DestPort = fields["dest_port"]
	rec.Alert = fields["alert"]
	return rec, true
}

// getAddress returns nil for a missing or null key and fails on non-strings.
func getAddress(fields map[string]json.RawMessage, key string) (*string, bool) {
	raw, found := fields[key]
	if !found || isAbsent(raw) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	return &s, true
}

// Extract validates a decoded record. It reports false instead of an error
// and never says which rule rejected the record.
func Extract(rec Record) (models.Alert, bool) {
	if rec.SrcIP == nil || rec.DestIP == nil {
		return models.Alert{}, false
	}

	port, ok := getPort(rec.DestPort)
	if !ok {
		return models.Alert{}, false
	}

	signature, ok := getSignature(rec.Alert)
	if !ok {
		return models.Alert{}, false
	}

	return models.Alert{
		SrcIP:     *rec.SrcIP,
		DestIP:    *rec.DestIP,
		DestPort:  port,
		Signature: signature,
	}, true
}

func getPort(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return DefaultPort, true
	}
	raw = bytes.TrimSpace(raw)

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return v, true
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if v, err := strconv.Atoi(string(raw)); err == nil {
			return v, true
		}
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int(f), true
	default:
		// null, bool, object, array
		return 0, false
	}
}

func getSignature(raw json.RawMessage) (string, bool) {
	if isAbsent(raw) {
		return UnknownSignature, true
	}

	var section map[string]json.RawMessage
	if err := json.Unmarshal(raw, &section); err != nil {
		// alert is not an object
		return UnknownSignature, true
	}
	rawSignature := section["signature"]
	if isAbsent(rawSignature) {
		return UnknownSignature, true
	}

	var signature string
	if err := json.Unmarshal(rawSignature, &signature); err != nil {
		return "", false
	}
	return signature, true
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
