// Package metrics provides Prometheus metrics for text-generation calls.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Metrics struct {
	CallsTotal          *prometheus.CounterVec   // calls by outcome and error category
	CallDurationSeconds *prometheus.HistogramVec // provider latency by outcome
	InFlight            prometheus.Gauge         // calls holding a concurrency slot
	BreakerOpen         prometheus.Gauge         // 1 while the provider breaker is open
}

// New registers the generation metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CallsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regscope_generation_calls_total",
			Help: "Total text-generation calls by outcome and error category",
		}, []string{"outcome", "category"}),

		CallDurationSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "regscope_generation_call_duration_seconds",
			Help:    "Duration of text-generation calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"outcome"}),

		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "regscope_generation_in_flight",
			Help: "Text-generation calls currently in progress",
		}),

		BreakerOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "regscope_generation_breaker_open",
			Help: "Whether the text-generation circuit breaker is open (1) or closed (0)",
		}),
	}
}

// ObserveCall records one finished call. category is empty on success.
func (m *Metrics) ObserveCall(outcome, category string, durationSeconds float64) {
	m.CallsTotal.WithLabelValues(outcome, category).Inc()
	m.CallDurationSeconds.WithLabelValues(outcome).Observe(durationSeconds)
}

func (m *Metrics) SetBreakerOpen(open bool) {
	if open {
		m.BreakerOpen.Set(1)
		return
	}
	m.BreakerOpen.Set(0)
}
