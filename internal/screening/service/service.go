package service

import (
	"context"
	"log/slog"
	"time"

	"regscope/internal/generation"
	"regscope/internal/screening/catalog"
	"regscope/internal/screening/metrics"
	"regscope/internal/screening/models"
	"regscope/internal/screening/parser"
	"regscope/internal/screening/prompt"
	dErrors "regscope/pkg/domain-errors"
	"regscope/pkg/requestcontext"
)

// Sampling parameters per operation.
var (
	ScreeningOptions   = generation.Options{MaxTokens: 1500, Temperature: 0.2}
	TransactionOptions = generation.Options{MaxTokens: 800, Temperature: 0.2}
)

// Fixed identity reported by the health endpoint.
const (
	ServiceName    = "RegScope FinTech Compliance"
	ServiceVersion = "1.0.0"
)

// SupportedRegulations lists the regulation families advertised by the health endpoint.
var SupportedRegulations = []string{"PSD2", "MiFID II", "AML/KYC", "PCI-DSS", "GDPR", "Basel III", "FATF"}

// HealthChecker reports whether the generation backend can serve calls.
type HealthChecker interface {
	Check(ctx context.Context) error
}

// Service runs screenings: prompt, generate, parse.
type Service struct {
	generator generation.Generator
	health    HealthChecker
	catalog   *catalog.Catalog
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock overrides the request-scoped time that stamps screening ids and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithHealthChecker overrides the health source. By default the generator is used
// when it implements HealthChecker.
func WithHealthChecker(h HealthChecker) Option {
	return func(s *Service) {
		s.health = h
	}
}

func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// New creates a screening service around a shared generator.
func New(generator generation.Generator, opts ...Option) *Service {
	s := &Service{
		generator: generator,
		catalog:   catalog.Default(),
		logger:    slog.Default(),
	}
	if h, ok := generator.(HealthChecker); ok {
		s.health = h
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScreenCustomer screens one customer. Generation failures are returned; anything
// the model says is turned into a result, falling back to defaults when unusable.
func (s *Service) ScreenCustomer(ctx context.Context, req *models.ScreeningRequest) (*models.ScreeningResult, error) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, "aml screening started",
		"request_id", requestID,
		"screening_type", req.ScreeningType,
		"is_pep", req.IsPEP,
	)

	raw, err := s.generator.Generate(ctx, prompt.Screening(req), ScreeningOptions)
	if err != nil {
		s.recordFailure(metrics.OperationScreening)
		s.logger.ErrorContext(ctx, "aml screening failed",
			"request_id", requestID,
			"category", string(generation.CategoryOf(err)),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "AML screening failed: "+err.Error())
	}

	result, fallback := parser.ParseScreeningResult(raw, req, s.timestamp(ctx))
	if fallback {
		s.logger.WarnContext(ctx, "screening response was not a JSON object, using fallback result",
			"request_id", requestID,
			"screening_id", result.ScreeningID,
		)
	}
	if s.metrics != nil {
		s.metrics.RecordScreening(riskLevelLabel(result.RiskLevel), result.OverallRiskScore, fallback)
	}

	s.logger.InfoContext(ctx, "aml screening completed",
		"request_id", requestID,
		"screening_id", result.ScreeningID,
		"risk_level", result.RiskLevel,
		"risk_score", result.OverallRiskScore,
		"requires_enhanced_dd", result.RequiresEnhancedDD,
		"fallback", fallback,
	)
	return result, nil
}

// AnalyzeTransaction asks the model for a free-form analysis of one transaction.
func (s *Service) AnalyzeTransaction(ctx context.Context, tx *models.TransactionRecord) (models.TransactionAnalysis, error) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, "transaction analysis started",
		"request_id", requestID,
		"transaction_id", tx.TransactionID,
	)

	raw, err := s.generator.Generate(ctx, prompt.Transaction(tx), TransactionOptions)
	if err != nil {
		s.recordFailure(metrics.OperationTransaction)
		s.logger.ErrorContext(ctx, "transaction analysis failed",
			"request_id", requestID,
			"transaction_id", tx.TransactionID,
			"category", string(generation.CategoryOf(err)),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "Transaction analysis failed: "+err.Error())
	}

	analysis, fallback := parser.ParseTransactionAnalysis(raw, tx)
	if s.metrics != nil {
		s.metrics.RecordAnalysis(fallback)
	}
	s.logger.InfoContext(ctx, "transaction analysis completed",
		"request_id", requestID,
		"transaction_id", tx.TransactionID,
		"fallback", fallback,
	)
	return analysis, nil
}

// Regulations returns the regulation catalog listing.
func (s *Service) Regulations() *catalog.Listing {
	return s.catalog.Listing()
}

// Health reports whether screenings can currently be served.
func (s *Service) Health(ctx context.Context) models.HealthStatus {
	if s.generator == nil {
		return models.HealthStatus{Status: "unhealthy", Error: generation.ErrNotConfigured.Error()}
	}
	if s.health != nil {
		if err := s.health.Check(ctx); err != nil {
			s.logger.WarnContext(ctx, "fintech health check failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			return models.HealthStatus{Status: "unhealthy", Error: err.Error()}
		}
	}
	return models.HealthStatus{
		Status:               "healthy",
		Service:              ServiceName,
		Version:              ServiceVersion,
		AMLService:           "operational",
		SupportedRegulations: SupportedRegulations,
	}
}

func (s *Service) timestamp(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

func (s *Service) recordFailure(operation string) {
	if s.metrics != nil {
		s.metrics.RecordFailure(operation)
	}
}

// riskLevelLabel bounds metric label cardinality to the known levels.
func riskLevelLabel(level string) string {
	switch level {
	case models.RiskLevelLow, models.RiskLevelMedium, models.RiskLevelHigh, models.RiskLevelCritical:
		return level
	default:
		return "other"
	}
}
