package pipeline

import "threatsnap/internal/stats"

// ReportWriter writes snapshot reports.
type ReportWriter interface {
	WriteReport(s *stats.Summary) error
	Close() error
}
