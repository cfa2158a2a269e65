package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"regscope/internal/platform/health"
	"regscope/internal/platform/metrics"
	"regscope/internal/screening/handler"
	"regscope/pkg/platform/httputil"
	"regscope/pkg/platform/middleware/metadata"
	"regscope/pkg/platform/middleware/request"
	"regscope/pkg/platform/middleware/requesttime"
)

// RouterDeps carries what NewRouter mounts. Metrics may be nil.
type RouterDeps struct {
	Logger         *slog.Logger
	Health         *health.Handler
	Screening      *handler.Handler
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	TrustedProxies []netip.Prefix
}

// NewRouter wires every public endpoint with the middleware stack.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(requesttime.Middleware)
	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: d.TrustedProxies}).Handler)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(request.LatencyMiddleware(d.Metrics.HTTP))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{Detail: "Not Found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Detail: "Method Not Allowed"})
	})

	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Group(func(api chi.Router) {
		if d.RequestTimeout > 0 {
			api.Use(request.Timeout(d.RequestTimeout))
		}
		api.Use(request.ContentTypeJSON)
		if d.MaxBodyBytes > 0 {
			api.Use(request.BodyLimit(d.MaxBodyBytes))
		}
		api.Route(handler.BasePath, d.Screening.Register)
	})

	return r
}
