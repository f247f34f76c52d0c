package jsonl

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"threatsnap/internal/logger"
	"threatsnap/internal/transform/eve"
	"threatsnap/pkg/models"
)

const maxLineSize = 16 * 1024 * 1024

// ErrSourceNotFound is returned when the alert source does not exist.
var ErrSourceNotFound = errors.New("alert source not found")

// LoadStats counts per-line outcomes of one load.
type LoadStats struct {
	Lines     int `json:"lines"`
	Blank     int `json:"blank"`
	Malformed int `json:"malformed"`
	Invalid   int `json:"invalid"`
	Accepted  int `json:"accepted"`
}

// Skipped returns the number of non-blank lines that produced no alert.
func (s LoadStats) Skipped() int {
	return s.Malformed + s.Invalid
}

// LoadFile reads alerts from a JSONL file in file order.
func LoadFile(path string) ([]models.Alert, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, LoadStats{}, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, LoadStats{}, fmt.Errorf("open alert source: %w", err)
	}
	defer f.Close()

	alerts, stats, err := LoadReader(f)
	if err != nil {
		return nil, stats, fmt.Errorf("read alert source %s: %w", path, err)
	}
	logger.Debugf("Read alerts from %s: lines=%d accepted=%d malformed=%d invalid=%d",
		path, stats.Lines, stats.Accepted, stats.Malformed, stats.Invalid)
	return alerts, stats, nil
}

// LoadReader reads alerts from a line-delimited JSON stream.
// Blank lines, malformed lines and invalid records are skipped.
func LoadReader(r io.Reader) ([]models.Alert, LoadStats, error) {
	var stats LoadStats
	var alerts []models.Alert

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		if alert, ok := decodeLine(scanner.Bytes(), stats.Lines, &stats); ok {
			alerts = append(alerts, alert)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, err
	}
	return alerts, stats, nil
}

// LoadLines applies the same per-line policy to an in-memory batch.
func LoadLines(lines [][]byte) ([]models.Alert, LoadStats) {
	var stats LoadStats
	alerts := make([]models.Alert, 0, len(lines))
	for _, line := range lines {
		stats.Lines++
		if alert, ok := decodeLine(line, stats.Lines, &stats); ok {
			alerts = append(alerts, alert)
		}
	}
	return alerts, stats
}

func decodeLine(line []byte, lineNumber int, stats *LoadStats) (models.Alert, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		stats.Blank++
		return models.Alert{}, false
	}

	alert, err := eve.Parse(line)
	switch {
	case err == nil:
		stats.Accepted++
		return alert, true
	case errors.Is(err, eve.ErrMalformedLine):
		stats.Malformed++
	default:
		stats.Invalid++
	}
	logger.WithFields("debug", map[string]interface{}{"line": lineNumber, "reason": err.Error()}, "Skipping alert line")
	return models.Alert{}, false
}
