package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"regscope/internal/screening/catalog"
	"regscope/internal/screening/models"
	"regscope/pkg/platform/httputil"
	"regscope/pkg/platform/middleware/request"
)

// BasePath is where Register is expected to be mounted.
const BasePath = "/api/v1/fintech"

// ScreeningService defines the operations used by the handlers.
type ScreeningService interface {
	ScreenCustomer(ctx context.Context, req *models.ScreeningRequest) (*models.ScreeningResult, error)
	AnalyzeTransaction(ctx context.Context, tx *models.TransactionRecord) (models.TransactionAnalysis, error)
	CheckCompliance(req *models.ComplianceCheckRequest) *models.ComplianceCheckResponse
	Regulations() *catalog.Listing
	Health(ctx context.Context) models.HealthStatus
}

// Handler serves the fintech screening API.
type Handler struct {
	service ScreeningService
	logger  *slog.Logger
}

func New(service ScreeningService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the handler routes on the given router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/aml/screen", h.HandleScreenCustomer)
	r.Post("/transaction/analyze", h.HandleAnalyzeTransaction)
	r.Post("/compliance/check", h.HandleCheckCompliance)
	r.Get("/regulations/fintech", h.HandleRegulations)
	r.Get("/health", h.HandleHealth)
}

// HandleScreenCustomer handles POST /aml/screen.
func (h *Handler) HandleScreenCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeSchema[models.ScreeningRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.ScreenCustomer(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleAnalyzeTransaction handles POST /transaction/analyze.
func (h *Handler) HandleAnalyzeTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	tx, ok := httputil.DecodeSchema[models.TransactionRecord](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	analysis, err := h.service.AnalyzeTransaction(ctx, tx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, analysis)
}

// HandleCheckCompliance handles POST /compliance/check.
func (h *Handler) HandleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	req, ok := httputil.DecodeSchema[models.ComplianceCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.service.CheckCompliance(req))
}

// HandleRegulations handles GET /regulations/fintech.
func (h *Handler) HandleRegulations(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Regulations())
}

// HandleHealth handles GET /health. An unhealthy status is still a 200.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Health(r.Context()))
}
