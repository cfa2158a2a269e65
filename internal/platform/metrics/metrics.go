// Package metrics owns the process Prometheus registry and the metric sets
// registered on it.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	genmetrics "regscope/internal/generation/metrics"
	screeningmetrics "regscope/internal/screening/metrics"
	"regscope/pkg/platform/middleware/request"
)

// Metrics holds every metric set exposed on /metrics.
type Metrics struct {
	Registry   *prometheus.Registry
	BuildInfo  *prometheus.GaugeVec
	Generation *genmetrics.Metrics
	Screening  *screeningmetrics.Metrics
	HTTP       *request.Metrics
}

// New creates a dedicated registry with runtime collectors and the
// application metric sets.
func New(version, environment string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		BuildInfo: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "regscope_build_info",
			Help: "Build information, always 1",
		}, []string{"version", "environment"}),
		Generation: genmetrics.New(reg),
		Screening:  screeningmetrics.New(reg),
		HTTP:       request.NewMetrics(reg),
	}
	m.BuildInfo.WithLabelValues(version, environment).Set(1)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
