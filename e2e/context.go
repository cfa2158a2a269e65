package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"regscope/internal/generation"
	"regscope/internal/platform/health"
	"regscope/internal/platform/metrics"
	"regscope/internal/screening/handler"
	"regscope/internal/screening/service"
	httptransport "regscope/internal/transport/http"
)

// TestContext runs the whole service in process, with the text-generation API
// replaced by a stub whose reply each scenario controls.
type TestContext struct {
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	api    *httptest.Server
	model  *httptest.Server
	apiKey string

	mu          sync.Mutex
	modelStatus int
	modelText   string
	lastPrompt  string
}

func NewTestContext() *TestContext {
	return &TestContext{
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		apiKey:      "e2e-key",
		modelStatus: http.StatusOK,
		modelText:   "{}",
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.Close()
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.LastResponse, tc.LastResponseBody = nil, nil
	tc.api, tc.model = nil, nil
	tc.apiKey = "e2e-key"
	tc.modelStatus, tc.modelText, tc.lastPrompt = http.StatusOK, "{}", ""
}

// Start boots the model stub and the API. Close releases both.
func (tc *TestContext) Start() error {
	tc.model = httptest.NewServer(http.HandlerFunc(tc.serveModel))

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	m := metrics.New("e2e", "test")
	gemini, err := generation.NewGemini(context.Background(), generation.GeminiConfig{
		APIKey:  tc.apiKey,
		BaseURL: tc.model.URL,
		Timeout: 5 * time.Second,
	}, generation.WithLogger(logger), generation.WithMetrics(m.Generation))
	if err != nil {
		return err
	}

	healthHandler := health.New("test")
	healthHandler.RegisterCheck("generation", gemini.Check)

	svc := service.New(gemini, service.WithLogger(logger), service.WithMetrics(m.Screening))
	tc.api = httptest.NewServer(httptransport.NewRouter(httptransport.RouterDeps{
		Logger:         logger,
		Health:         healthHandler,
		Screening:      handler.New(svc, logger),
		Metrics:        m,
		RequestTimeout: 10 * time.Second,
		MaxBodyBytes:   64 << 10,
	}))
	return nil
}

func (tc *TestContext) Close() {
	if tc.api != nil {
		tc.api.Close()
		tc.api = nil
	}
	if tc.model != nil {
		tc.model.Close()
		tc.model = nil
	}
}

func (tc *TestContext) serveModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contents []struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"contents"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	tc.mu.Lock()
	if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
		tc.lastPrompt = req.Contents[0].Parts[0].Text
	}
	status, text := tc.modelStatus, tc.modelText
	tc.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if status != http.StatusOK {
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"stubbed failure"}}`, status)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	})
}

// SetModelReply makes the stub answer with text.
func (tc *TestContext) SetModelReply(text string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.modelStatus, tc.modelText = http.StatusOK, text
}

// SetModelStatus makes the stub fail with status.
func (tc *TestContext) SetModelStatus(status int) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.modelStatus = status
}

// DisableAPIKey must be called before Start.
func (tc *TestContext) DisableAPIKey() {
	tc.apiKey = ""
}

func (tc *TestContext) LastPrompt() string {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.lastPrompt
}

// POSTRaw sends body verbatim as JSON.
func (tc *TestContext) POSTRaw(path, body string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.api.URL+path, bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return tc.do(req)
}

func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.api.URL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// ResponseField resolves a dotted path such as "areas_checked.aml_kyc" or
// "detail.0.loc" in the last JSON response.
func (tc *TestContext) ResponseField(path string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	for _, part := range strings.Split(path, ".") {
		switch node := data.(type) {
		case map[string]any:
			value, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("field %s not found in response", path)
			}
			data = value
		case []any:
			var idx int
			if _, err := fmt.Sscanf(part, "%d", &idx); err != nil || idx < 0 || idx >= len(node) {
				return nil, fmt.Errorf("index %s out of range in %s", part, path)
			}
			data = node[idx]
		default:
			return nil, fmt.Errorf("field %s not found in response", path)
		}
	}
	return data, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
