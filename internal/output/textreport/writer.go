package textreport

import (
	"bufio"
	"fmt"
	"io"

	"threatsnap/internal/stats"
)

// EmptyMessage is printed instead of a report when no alerts were loaded.
const EmptyMessage = "No valid alert events found."

// Writer prints snapshots as a plain-text triage report.
type Writer struct {
	out  io.Writer
	topN int
}

// NewWriter creates a text report writer.
func NewWriter(out io.Writer, topN int) (*Writer, error) {
	if out == nil {
		return nil, fmt.Errorf("report output is nil")
	}
	if topN <= 0 {
		return nil, fmt.Errorf("top_n must be positive, got %d", topN)
	}
	return &Writer{out: out, topN: topN}, nil
}

// WriteReport renders one snapshot.
func (w *Writer) WriteReport(s *stats.Summary) error {
	return Render(w.out, s, w.topN)
}

// Close is a no-op; the writer does not own its output.
func (w *Writer) Close() error {
	return nil
}

// Render writes the report sections in order: addresses, ports, signatures.
func Render(out io.Writer, s *stats.Summary, topN int) error {
	bw := bufio.NewWriter(out)

	fmt.Fprint(bw, "\n=== Network Threat Snapshot ===\n\n")

	fmt.Fprintf(bw, "Top %d Source IPs (Talkers):\n", topN)
	for _, e := range s.BySourceAddress.Top(topN) {
		fmt.Fprintf(bw, "  %-18s -> %d alerts\n", e.Key, e.Count)
	}

	fmt.Fprintf(bw, "\nTop %d Destination Ports:\n", topN)
	for _, e := range s.ByDestinationPort.Top(topN) {
		fmt.Fprintf(bw, "  %-5d -> %d alerts\n", e.Key, e.Count)
	}

	fmt.Fprintf(bw, "\nTop %d Alert Signatures:\n", topN)
	for _, e := range s.BySignature.Top(topN) {
		fmt.Fprintf(bw, "  %3dx  %s\n", e.Count, e.Key)
	}

	fmt.Fprint(bw, "\n===============================\n\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// RenderEmpty writes the single-line message for an empty snapshot.
func RenderEmpty(out io.Writer) error {
	if _, err := fmt.Fprintln(out, EmptyMessage); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
