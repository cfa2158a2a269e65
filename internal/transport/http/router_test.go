package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"regscope/internal/generation/mocks"
	"regscope/internal/platform/health"
	"regscope/internal/platform/metrics"
	"regscope/internal/screening/handler"
	"regscope/internal/screening/service"
	"regscope/pkg/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockGenerator) {
	t.Helper()
	ctrl := gomock.NewController(t)
	generator := mocks.NewMockGenerator(ctrl)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	m := metrics.New("test", "test")

	svc := service.New(generator, service.WithLogger(logger), service.WithMetrics(m.Screening))
	return NewRouter(RouterDeps{
		Logger:         logger,
		Health:         health.New("test"),
		Screening:      handler.New(svc, logger),
		Metrics:        m,
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   1024,
	}), generator
}

func TestRouterEndToEnd(t *testing.T) {
	router, generator := newTestRouter(t)
	generator.EXPECT().Generate(gomock.Any(), gomock.Any(), service.ScreeningOptions).
		Return(`{"risk_score":12,"risk_level":"low"}`, nil)

	req := httptest.NewRequest(http.MethodPost, handler.BasePath+"/aml/screen",
		strings.NewReader(`{"customer_name":"Jane Doe"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "low", body["risk_level"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `regscope_screenings_total{fallback="false",risk_level="low"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/api/v1/fintech/aml/screen"`)
}

func TestRouterPlatformEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRouterJSONErrors(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		detail string
	}{
		{"unknown path", http.MethodGet, "/nope", "", http.StatusNotFound, "Not Found"},
		{"unknown api path", http.MethodGet, handler.BasePath + "/nope", "", http.StatusNotFound, "Not Found"},
		{"wrong method", http.MethodGet, handler.BasePath + "/aml/screen", "", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"oversized body", http.MethodPost, handler.BasePath + "/aml/screen",
			`{"customer_name":"` + strings.Repeat("x", 2048) + `"}`, http.StatusRequestEntityTooLarge, "Request body too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.detail, body["detail"])
		})
	}
}

func TestRouterConcurrentScreenings(t *testing.T) {
	router, generator := newTestRouter(t)
	generator.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(`{"risk_score":30,"risk_level":"low"}`, nil).Times(20)

	res := testutil.RunConcurrent(20, func(int) error {
		req := httptest.NewRequest(http.MethodPost, handler.BasePath+"/aml/screen",
			strings.NewReader(testutil.ScreeningRequestJSON))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			return fmt.Errorf("status %d", rec.Code)
		}
		return nil
	})

	assert.Equal(t, int32(20), res.Successes)
}

func TestRouterTransactionFixture(t *testing.T) {
	router, generator := newTestRouter(t)
	generator.EXPECT().Generate(gomock.Any(), gomock.Any(), service.TransactionOptions).
		Return("no json here", nil)

	req := httptest.NewRequest(http.MethodPost, handler.BasePath+"/transaction/analyze",
		strings.NewReader(testutil.TransactionJSON))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "TX-1001", body["transaction_id"])
	assert.Equal(t, float64(50), body["risk_score"])
}
