// Package metrics records validation activity as Prometheus metrics.
//
// Metrics:
//   - argspec_checks_total: checker calls by type and outcome
//   - argspec_check_duration_seconds: checker call duration by type
//   - argspec_runs_total: validation runs by status (valid, invalid, error)
//   - argspec_warnings_total: warnings returned across all runs
//   - argspec_run_duration_seconds: validation run duration
//
// A CLI run has no scrape endpoint, so the collected values are written in
// the node_exporter textfile format with WriteTextfile.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ormasoftchile/argspec/pkg/spec"
	"github.com/ormasoftchile/argspec/pkg/validate"
)

const namespace = "argspec"

// Collector implements validate.Observer.
type Collector struct {
	registry *prometheus.Registry

	checksTotal   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	warningsTotal prometheus.Counter
	runDuration   prometheus.Histogram
}

var _ validate.Observer = (*Collector)(nil)

// NewCollector creates the validation metrics and registers them with
// registry. If registry is nil, a fresh one is created.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Total number of checker calls",
			},
			[]string{"type", "outcome"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "Duration of checker calls in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to 2.6s
			},
			[]string{"type"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of validation runs",
			},
			[]string{"status"},
		),
		warningsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "warnings_total",
				Help:      "Total number of warnings returned",
			},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
	}
	registry.MustRegister(c.checksTotal, c.checkDuration, c.runsTotal, c.warningsTotal, c.runDuration)
	return c
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// ObserveCheck records one checker call.
func (c *Collector) ObserveCheck(tag spec.TypeTag, outcome validate.Outcome, elapsed time.Duration) {
	c.checksTotal.WithLabelValues(string(tag), string(outcome)).Inc()
	c.checkDuration.WithLabelValues(string(tag)).Observe(elapsed.Seconds())
}

// ObserveRun records one validation run.
func (c *Collector) ObserveRun(warnings int, elapsed time.Duration, err error) {
	status := "valid"
	switch {
	case err != nil:
		status = "error"
	case warnings > 0:
		status = "invalid"
	}
	c.runsTotal.WithLabelValues(status).Inc()
	c.warningsTotal.Add(float64(warnings))
	c.runDuration.Observe(elapsed.Seconds())
}

// WriteTextfile writes every registered metric to path in the text
// exposition format. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
