// Package metrics provides Prometheus metrics for screening outcomes.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation label values.
const (
	OperationScreening   = "aml_screening"
	OperationTransaction = "transaction_analysis"
)

type Metrics struct {
	ScreeningsTotal   *prometheus.CounterVec // customer screenings by risk level and fallback use
	AnalysesTotal     *prometheus.CounterVec // transaction analyses by fallback use
	FailuresTotal     *prometheus.CounterVec // operations that failed upstream
	RiskScoreObserved prometheus.Histogram   // distribution of reported risk scores
}

// New registers the screening metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScreeningsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regscope_screenings_total",
			Help: "Total customer screenings by risk level and whether the fallback result was used",
		}, []string{"risk_level", "fallback"}),

		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regscope_transaction_analyses_total",
			Help: "Total transaction analyses by whether the fallback result was used",
		}, []string{"fallback"}),

		FailuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "regscope_screening_failures_total",
			Help: "Total screening operations that failed because the generation call failed",
		}, []string{"operation"}),

		RiskScoreObserved: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "regscope_screening_risk_score",
			Help:    "Overall risk score of completed customer screenings",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
	}
}

func (m *Metrics) RecordScreening(riskLevel string, score int, fallback bool) {
	m.ScreeningsTotal.WithLabelValues(riskLevel, strconv.FormatBool(fallback)).Inc()
	m.RiskScoreObserved.Observe(float64(score))
}

func (m *Metrics) RecordAnalysis(fallback bool) {
	m.AnalysesTotal.WithLabelValues(strconv.FormatBool(fallback)).Inc()
}

func (m *Metrics) RecordFailure(operation string) {
	m.FailuresTotal.WithLabelValues(operation).Inc()
}
