// Package metrics exposes Prometheus counters for credential validation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of casino_validations_total.
const (
	OutcomeSuccess = "success"
	OutcomeAbsent  = "absent"
	OutcomeError   = "error"
)

// Metrics tracks validation outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	// Validations counts validation calls by chain and outcome.
	// Labels: chain, outcome=[success, absent, error]
	Validations *prometheus.CounterVec

	// AuthenticatorErrors counts backends that raised an error and were skipped.
	// Labels: chain, authenticator
	AuthenticatorErrors *prometheus.CounterVec

	// Successes counts which backend validated the credentials.
	// Labels: chain, authenticator
	Successes *prometheus.CounterVec

	// Duration tracks the time spent walking a chain.
	// Labels: chain
	Duration *prometheus.HistogramVec
}

// New creates the metrics and registers them with registerer.
// If registerer is nil, prometheus.DefaultRegisterer is used.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_validations_total",
				Help: "Total credential validations by chain and outcome",
			},
			[]string{"chain", "outcome"},
		),
		AuthenticatorErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_authenticator_errors_total",
				Help: "Total authenticator errors isolated by the validation chain",
			},
			[]string{"chain", "authenticator"},
		),
		Successes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "casino_authenticator_successes_total",
				Help: "Total successful validations by authenticator",
			},
			[]string{"chain", "authenticator"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "casino_validation_duration_seconds",
				Help:    "Time spent walking a validation chain",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"chain"},
		),
	}

	for _, c := range []prometheus.Collector{m.Validations, m.AuthenticatorErrors, m.Successes, m.Duration} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveValidation records the outcome and duration of one chain walk.
func (m *Metrics) ObserveValidation(chain, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Validations.WithLabelValues(chain, outcome).Inc()
	m.Duration.WithLabelValues(chain).Observe(d.Seconds())
}

// AuthenticatorError records a backend error isolated by the chain.
func (m *Metrics) AuthenticatorError(chain, authenticator string) {
	if m == nil {
		return
	}
	m.AuthenticatorErrors.WithLabelValues(chain, authenticator).Inc()
}

// Success records the backend that validated the credentials.
func (m *Metrics) Success(chain, authenticator string) {
	if m == nil {
		return
	}
	m.Successes.WithLabelValues(chain, authenticator).Inc()
}
