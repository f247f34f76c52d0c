package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"threatsnap/internal/input/jsonl"
)

const namespace = "threatsnap"

// Recorder holds the counters of snapshot runs.
type Recorder struct {
	registry   *prometheus.Registry
	lines      *prometheus.CounterVec
	alerts     prometheus.Counter
	suppressed *prometheus.CounterVec
	distinct   *prometheus.GaugeVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_lines_total",
			Help:      "Input lines read, by outcome.",
		}, []string{"outcome"}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_summarized_total",
			Help:      "Alerts that reached aggregation.",
		}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_suppressed_total",
			Help:      "Alerts removed by suppression rules.",
		}, []string{"rule"}),
		distinct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "distinct_keys",
			Help:      "Distinct keys per frequency table in the last snapshot.",
		}, []string{"table"}),
	}
	r.registry.MustRegister(r.lines, r.alerts, r.suppressed, r.distinct)
	return r
}

// ObserveLoad records per-line outcomes.
func (r *Recorder) ObserveLoad(stats jsonl.LoadStats) {
	r.lines.WithLabelValues("accepted").Add(float64(stats.Accepted))
	r.lines.WithLabelValues("blank").Add(float64(stats.Blank))
	r.lines.WithLabelValues("malformed").Add(float64(stats.Malformed))
	r.lines.WithLabelValues("invalid").Add(float64(stats.Invalid))
}

// ObserveSuppressed records alerts removed per rule.
func (r *Recorder) ObserveSuppressed(byRule map[string]int) {
	for rule, n := range byRule {
		r.suppressed.WithLabelValues(rule).Add(float64(n))
	}
}

// ObserveSummary records the size of the aggregated snapshot.
func (r *Recorder) ObserveSummary(total, sources, ports, signatures int) {
	r.alerts.Add(float64(total))
	r.distinct.WithLabelValues("source_address").Set(float64(sources))
	r.distinct.WithLabelValues("destination_port").Set(float64(ports))
	r.distinct.WithLabelValues("signature").Set(float64(signatures))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format,
// for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
