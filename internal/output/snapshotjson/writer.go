package snapshotjson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"threatsnap/internal/logger"
	"threatsnap/internal/stats"
)

// Snapshot is the JSON form of a summary, bounded to the top N entries per table.
type Snapshot struct {
	ID                  string                `json:"id"`
	GeneratedAt         time.Time             `json:"generated_at"`
	TotalAlerts         int                   `json:"total_alerts"`
	TopN                int                   `json:"top_n"`
	TopSourceIPs        []stats.Entry[string] `json:"top_source_ips"`
	TopDestinationPorts []stats.Entry[int]    `json:"top_destination_ports"`
	TopSignatures       []stats.Entry[string] `json:"top_signatures"`
}

// NewSnapshot converts a summary into its JSON form.
func NewSnapshot(s *stats.Summary, topN int) Snapshot {
	return Snapshot{
		ID:                  s.ID,
		GeneratedAt:         s.GeneratedAt,
		TotalAlerts:         s.Total,
		TopN:                topN,
		TopSourceIPs:        nonNil(s.BySourceAddress.Top(topN)),
		TopDestinationPorts: nonNil(s.ByDestinationPort.Top(topN)),
		TopSignatures:       nonNil(s.BySignature.Top(topN)),
	}
}

func nonNil[K comparable](entries []stats.Entry[K]) []stats.Entry[K] {
	if entries == nil {
		return []stats.Entry[K]{}
	}
	return entries
}

// Writer outputs snapshots as indented JSON documents.
type Writer struct {
	file    *os.File
	encoder *json.Encoder
	topN    int
	mu      sync.Mutex
}

// NewWriter creates a JSON writer on an existing stream.
func NewWriter(out io.Writer, topN int) (*Writer, error) {
	if out == nil {
		return nil, fmt.Errorf("snapshot output is nil")
	}
	if topN <= 0 {
		return nil, fmt.Errorf("top_n must be positive, got %d", topN)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return &Writer{encoder: enc, topN: topN}, nil
}

// NewFileWriter creates a JSON writer that owns the file at path.
func NewFileWriter(path string, topN int) (*Writer, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w, err := NewWriter(f, topN)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.file = f
	logger.Infof("Snapshot JSON writer initialized: %s", path)
	return w, nil
}

// WriteReport encodes one snapshot.
func (w *Writer) WriteReport(s *stats.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(NewSnapshot(s, w.topN)); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Close closes the output file when the writer owns one.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}
