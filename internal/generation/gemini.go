package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"
	"google.golang.org/genai"

	"regscope/internal/generation/metrics"
	"regscope/internal/generation/tracer"
	"regscope/pkg/platform/circuit"
	"regscope/pkg/requestcontext"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com"
	defaultAPIVersion     = "v1beta"
	defaultModel          = "gemini-1.5-flash"
	defaultTimeout        = 60 * time.Second
	defaultMaxConcurrency = 8
)

// GeminiConfig configures a GeminiClient. Zero values take defaults.
type GeminiConfig struct {
	APIKey         string
	Model          string
	BaseURL        string
	Timeout        time.Duration
	MaxConcurrency int
	// HTTPClient replaces the client built from Timeout.
	HTTPClient *http.Client
}

// GeminiClient calls generateContent through the Gemini API SDK.
type GeminiClient struct {
	model   string
	models  *genai.Models
	sem     *semaphore.Weighted
	breaker *circuit.Breaker
	tracer  tracer.Tracer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*GeminiClient)

func WithTracer(t tracer.Tracer) Option {
	return func(c *GeminiClient) {
		c.tracer = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *GeminiClient) {
		c.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *GeminiClient) {
		c.logger = l
	}
}

// WithBreaker replaces the default breaker (5 failures to open, 3 successes to close).
func WithBreaker(b *circuit.Breaker) Option {
	return func(c *GeminiClient) {
		c.breaker = b
	}
}

// NewGemini builds a client. A missing API key is not an error here; every call
// and every health check reports ErrNotConfigured instead.
func NewGemini(ctx context.Context, cfg GeminiConfig, opts ...Option) (*GeminiClient, error) {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}

	c := &GeminiClient{
		model:  cfg.Model,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		tracer: tracer.NewNoop(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = circuit.New("generation")
	}

	if cfg.APIKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     cfg.APIKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: selectHTTPClient(cfg),
			HTTPOptions: genai.HTTPOptions{
				BaseURL:    strings.TrimRight(cfg.BaseURL, "/") + "/",
				APIVersion: defaultAPIVersion,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		c.models = client.Models
	}
	return c, nil
}

func selectHTTPClient(cfg GeminiConfig) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return &http.Client{Timeout: cfg.Timeout}
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Configured reports whether an API key was supplied.
func (c *GeminiClient) Configured() bool {
	return c.models != nil
}

// Check reports whether the client can be expected to serve calls: it must be
// configured and its breaker must be closed. No request is sent.
func (c *GeminiClient) Check(_ context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	if c.breaker.IsOpen() {
		return NewError(CategoryProviderOutage, "circuit breaker open after consecutive failures", nil)
	}
	return nil
}

// Generate sends prompt to the model and returns the concatenated text of the first
// candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts Options) (text string, err error) {
	if !c.Configured() {
		return "", NewError(CategoryInternal, "missing API key", ErrNotConfigured)
	}

	ctx, span := c.tracer.Start(ctx, tracer.SpanGenerate,
		tracer.String(tracer.AttrModel, c.model),
		tracer.Int(tracer.AttrMaxTokens, opts.MaxTokens),
		tracer.Float64(tracer.AttrTemperature, opts.Temperature),
		tracer.Int(tracer.AttrPromptChars, len(prompt)),
	)
	defer func() { span.End(err) }()

	queued := time.Now()
	if acquireErr := c.sem.Acquire(ctx, 1); acquireErr != nil {
		return "", contextError(ctx, "waiting for a generation slot", acquireErr)
	}
	defer c.sem.Release(1)
	span.AddEvent(tracer.EventSlotAcquired, tracer.Duration(tracer.AttrQueueWait, time.Since(queued)))

	if c.metrics != nil {
		c.metrics.InFlight.Inc()
		defer c.metrics.InFlight.Dec()
	}

	start := time.Now()
	text, status, err := c.call(ctx, prompt, opts)
	elapsed := time.Since(start)
	if status != 0 {
		span.SetAttributes(tracer.Int(tracer.AttrStatusCode, status))
	}

	if err != nil {
		category := CategoryOf(err)
		span.SetAttributes(tracer.String(tracer.AttrErrorCategory, string(category)))
		if !errors.Is(ctx.Err(), context.Canceled) {
			c.recordBreaker(ctx, c.breaker.RecordFailure())
		}
		c.observe(metrics.OutcomeError, string(category), elapsed)
		c.logger.WarnContext(ctx, "generation call failed",
			"request_id", requestcontext.RequestID(ctx),
			"model", c.model,
			"category", string(category),
			"transient", Transient(err),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return "", err
	}

	c.recordBreaker(ctx, c.breaker.RecordSuccess())
	c.observe(metrics.OutcomeSuccess, "", elapsed)
	span.SetAttributes(tracer.Int(tracer.AttrResponseChars, len(text)))
	return text, nil
}

func (c *GeminiClient) call(ctx context.Context, prompt string, opts Options) (string, int, error) {
	temperature := float32(opts.Temperature)
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: int32(opts.MaxTokens),
		Temperature:     &temperature,
	})
	if err != nil {
		return "", apiStatus(err), classify(ctx, err)
	}
	text, err := candidateText(resp)
	return text, http.StatusOK, err
}

func (c *GeminiClient) observe(outcome, category string, elapsed time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveCall(outcome, category, elapsed.Seconds())
	}
}

func (c *GeminiClient) recordBreaker(ctx context.Context, change circuit.StateChange) {
	if !change.Changed() {
		return
	}
	if c.metrics != nil {
		c.metrics.SetBreakerOpen(change.Opened)
	}
	if change.Opened {
		c.logger.ErrorContext(ctx, "generation breaker opened", "breaker", c.breaker.Name())
		return
	}
	c.logger.InfoContext(ctx, "generation breaker closed", "breaker", c.breaker.Name())
}

func contextError(ctx context.Context, message string, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewError(CategoryTimeout, message, err)
	}
	return NewError(CategoryInternal, message, err)
}

// classify maps an SDK failure onto the category taxonomy.
func classify(ctx context.Context, err error) *Error {
	if ctx.Err() != nil {
		return contextError(ctx, "request aborted", err)
	}
	if apiErr, ok := asAPIError(err); ok {
		return statusError(apiErr)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return NewError(CategoryTimeout, "request timeout", err)
		}
		return NewError(CategoryProviderOutage, "failed to execute request", err)
	}
	return NewError(CategoryBadResponse, "failed to decode response", err)
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return genai.APIError{}, false
}

func apiStatus(err error) int {
	if apiErr, ok := asAPIError(err); ok {
		return apiErr.Code
	}
	return 0
}

func statusError(apiErr genai.APIError) *Error {
	status, detail := apiErr.Code, apiErr.Message
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewError(CategoryAuthentication, fmt.Sprintf("authentication failed: %d %s", status, detail), nil)
	case status == http.StatusTooManyRequests:
		return NewError(CategoryRateLimited, fmt.Sprintf("rate limit exceeded: %s", detail), nil)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return NewError(CategoryTimeout, fmt.Sprintf("provider timeout: %d", status), nil)
	case status >= 500:
		return NewError(CategoryProviderOutage, fmt.Sprintf("provider unavailable: %d %s", status, detail), nil)
	default:
		return NewError(CategoryBadResponse, fmt.Sprintf("unexpected status: %d %s", status, detail), nil)
	}
}

// candidateText joins the text parts of the first candidate. Thought parts are skipped.
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", NewError(CategoryBadResponse, "prompt blocked: "+string(resp.PromptFeedback.BlockReason), nil)
		}
		return "", NewError(CategoryBadResponse, "response has no candidates", nil)
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return "", nil
	}
	var b strings.Builder
	for _, p := range content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

var _ Generator = (*GeminiClient)(nil)
