package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"threatsnap/internal/input/jsonl"
	"threatsnap/internal/logger"
	"threatsnap/internal/metrics"
	"threatsnap/internal/output/textreport"
	"threatsnap/internal/rules"
	"threatsnap/internal/stats"
)

// Result describes one snapshot run.
type Result struct {
	Load       jsonl.LoadStats
	Suppressed map[string]int
	// Summary is nil when no alerts were left to aggregate.
	Summary *stats.Summary
}

// SuppressedTotal returns the number of alerts removed by rules.
func (r *Result) SuppressedTotal() int {
	n := 0
	for _, v := range r.Suppressed {
		n += v
	}
	return n
}

// Snapshot loads, filters, aggregates and reports one batch of alerts.
type Snapshot struct {
	source   Source
	engine   rules.Engine
	writers  []ReportWriter
	emptyOut io.Writer
	recorder *metrics.Recorder
}

// NewSnapshot creates a snapshot pipeline. engine and recorder may be nil.
func NewSnapshot(source Source, engine rules.Engine, writers []ReportWriter, emptyOut io.Writer, recorder *metrics.Recorder) (*Snapshot, error) {
	if source == nil {
		return nil, fmt.Errorf("source is nil")
	}
	if len(writers) == 0 {
		return nil, fmt.Errorf("at least one report writer is required")
	}
	if emptyOut == nil {
		return nil, fmt.Errorf("empty-report output is nil")
	}
	return &Snapshot{
		source:   source,
		engine:   engine,
		writers:  writers,
		emptyOut: emptyOut,
		recorder: recorder,
	}, nil
}

// Run executes the pipeline once.
func (p *Snapshot) Run(ctx context.Context) (*Result, error) {
	alerts, loadStats, err := p.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{Load: loadStats}
	logger.Infof("Loaded %d alerts: lines=%d blank=%d malformed=%d invalid=%d",
		loadStats.Accepted, loadStats.Lines, loadStats.Blank, loadStats.Malformed, loadStats.Invalid)
	if p.recorder != nil {
		p.recorder.ObserveLoad(loadStats)
	}

	alerts, result.Suppressed = rules.Suppress(p.engine, alerts)
	if n := result.SuppressedTotal(); n > 0 {
		logger.Infof("Suppressed %d alerts by rule", n)
		for rule, count := range result.Suppressed {
			logger.Debugf("Suppression rule %s matched %d alerts", rule, count)
		}
	}
	if p.recorder != nil {
		p.recorder.ObserveSuppressed(result.Suppressed)
	}

	if len(alerts) == 0 {
		logger.Infof("No alerts to summarize")
		if err := textreport.RenderEmpty(p.emptyOut); err != nil {
			return result, err
		}
		return result, nil
	}

	summary := stats.Summarize(alerts)
	result.Summary = summary
	if p.recorder != nil {
		p.recorder.ObserveSummary(summary.Total, summary.BySourceAddress.Len(), summary.ByDestinationPort.Len(), summary.BySignature.Len())
	}
	logger.Infof("Snapshot %s: alerts=%d sources=%d ports=%d signatures=%d",
		summary.ID, summary.Total, summary.BySourceAddress.Len(), summary.ByDestinationPort.Len(), summary.BySignature.Len())

	for _, w := range p.writers {
		if err := w.WriteReport(summary); err != nil {
			return result, fmt.Errorf("write report: %w", err)
		}
	}
	return result, nil
}

// Close releases pipeline resources.
func (p *Snapshot) Close() error {
	var errs []error
	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			logger.Errorf("Failed to close report writer: %v", err)
			errs = append(errs, err)
		}
	}
	if err := p.source.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
