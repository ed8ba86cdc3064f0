package observe

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Outcome label values of gitsmart_commands_total.
const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeUndone    = "undone"
)

// MetricsObserver counts events in a registry owned by the observer, so
// each run starts from zero and nothing leaks into the default registry.
type MetricsObserver struct {
	registry *prometheus.Registry
	commands *prometheus.CounterVec
	commits  prometheus.Counter
}

// NewMetricsObserver creates a MetricsObserver with its own registry.
func NewMetricsObserver() *MetricsObserver {
	reg := prometheus.NewRegistry()
	o := &MetricsObserver{
		registry: reg,
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gitsmart_commands_total",
				Help: "Commands executed by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		commits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "gitsmart_commits_created_total",
				Help: "Commits created",
			},
		),
	}
	reg.MustRegister(o.commands, o.commits)
	return o
}

// OnEvent updates the counters for e.
func (o *MetricsObserver) OnEvent(e Event) error {
	switch e.Type {
	case CommandSucceeded:
		o.commands.WithLabelValues(e.Kind, outcomeSucceeded).Inc()
	case CommandFailed:
		o.commands.WithLabelValues(e.Kind, outcomeFailed).Inc()
	case CommandUndone:
		if e.Err == nil {
			o.commands.WithLabelValues(e.Kind, outcomeUndone).Inc()
		}
	case CommitCreated:
		o.commits.Inc()
	case CommandStarted:
	}
	return nil
}

// Registry returns the observer's registry.
func (o *MetricsObserver) Registry() *prometheus.Registry {
	return o.registry
}

// Text renders the current metrics in the Prometheus text format.
func (o *MetricsObserver) Text() (string, error) {
	families, err := o.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return buf.String(), nil
}

// WriteFile writes Text to path.
func (o *MetricsObserver) WriteFile(path string) error {
	text, err := o.Text()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

var _ Observer = (*MetricsObserver)(nil)
