package pipeline

import (
	"context"

	"threatsnap/internal/input/jsonl"
	"threatsnap/pkg/models"
)

// Source loads one static batch of alerts.
type Source interface {
	Load(ctx context.Context) ([]models.Alert, jsonl.LoadStats, error)
	Close() error
}

// FileSource reads alerts from a JSONL file.
type FileSource struct {
	Path string
}

// Load reads the file. A missing file yields jsonl.ErrSourceNotFound.
func (s *FileSource) Load(ctx context.Context) ([]models.Alert, jsonl.LoadStats, error) {
	return jsonl.LoadFile(s.Path)
}

// Close is a no-op; the file is closed by Load.
func (s *FileSource) Close() error {
	return nil
}
