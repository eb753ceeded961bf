package reconciler

import (
	"fmt"

	"brokerconf/internal/mutator"
	"brokerconf/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks reconciliation outcomes on a private registry.
//
// Passes run from cron and exit, so nothing is served over HTTP. The registry
// is instead written to a node-exporter textfile after each pass.
type Metrics struct {
	registry *prometheus.Registry

	changes     *prometheus.CounterVec
	passes      *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// NewMetrics creates and registers the reconciler collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerconf_changes_total",
			Help: "Config changes attempted by reconciliation, by op and status.",
		}, []string{"op", "status"}),
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerconf_reconcile_passes_total",
			Help: "Reconciliation passes, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "brokerconf_reconcile_duration_seconds",
			Help:    "Wall time of a reconciliation pass.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "brokerconf_reconcile_last_success_timestamp_seconds",
			Help: "Unix time of the last pass that finished without errors.",
		}),
	}
	m.registry.MustRegister(m.changes, m.passes, m.duration, m.lastSuccess)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePass records a finished pass.
func (m *Metrics) ObservePass(res *Result) {
	for _, r := range res.Success {
		m.changes.WithLabelValues(string(r.Op), string(mutator.StatusSuccess)).Inc()
	}
	for _, r := range res.Errors {
		m.changes.WithLabelValues(string(r.Op), string(mutator.StatusError)).Inc()
	}
	m.duration.Observe(res.Duration.Seconds())

	result := "success"
	if res.Failed() {
		result = "error"
	} else if !res.DryRun {
		m.lastSuccess.SetToCurrentTime()
	}
	m.passes.WithLabelValues(result).Inc()
}

// ObserveAbort records a pass that failed before any change was attempted.
func (m *Metrics) ObserveAbort() {
	m.passes.WithLabelValues("aborted").Inc()
}

// WriteTextfile writes the registry in text exposition format, atomically
// replacing path.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile %s: %w", path, err)
	}
	logging.Debug("Reconciler", "Wrote metrics to %s", path)
	return nil
}
