// Package metrics exposes prometheus instruments for staking operations.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "tqclient"

// Submission outcomes.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeRejected  = "rejected" // the program or runtime refused the transaction
	OutcomeFailed    = "failed"   // transport, signing or confirmation timeout
	OutcomeDryRun    = "dry_run"
)

// Metrics holds the client's instruments on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	built       *prometheus.CounterVec
	invalid     *prometheus.CounterVec
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates the instruments and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		built: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_built_total",
			Help:      "Transaction requests assembled, by operation.",
		}, []string{"operation"}),
		invalid: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_invalid_total",
			Help:      "Requests rejected locally before any network call, by operation and error code.",
		}, []string{"operation", "code"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submission attempts, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time from send to confirmation or failure.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"operation"}),
	}
	m.registry.MustRegister(m.built, m.invalid, m.submissions, m.duration)
	return m
}

// Registry returns the registry holding the instruments.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) RequestBuilt(operation string) {
	if m == nil {
		return
	}
	m.built.WithLabelValues(operation).Inc()
}

func (m *Metrics) RequestInvalid(operation, code string) {
	if m == nil {
		return
	}
	m.invalid.WithLabelValues(operation, code).Inc()
}

// Submission records the outcome of one submission and how long it took.
func (m *Metrics) Submission(operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(operation, outcome).Inc()
	if outcome != OutcomeDryRun {
		m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
	}
}

// WriteText dumps every gathered family in the prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
