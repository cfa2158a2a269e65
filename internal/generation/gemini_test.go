package generation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"regscope/internal/generation/metrics"
	"regscope/pkg/platform/circuit"
)

const okBody = `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"risk_score\":"},{"text":"12}"}]},"finishReason":"STOP"}]}`

type capturedRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		MaxOutputTokens int     `json:"maxOutputTokens"`
		Temperature     float64 `json:"temperature"`
	} `json:"generationConfig"`
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type GeminiSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	metrics *metrics.Metrics
}

func TestGeminiSuite(t *testing.T) {
	suite.Run(t, new(GeminiSuite))
}

func (s *GeminiSuite) SetupTest() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, okBody)
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.metrics = metrics.New(prometheus.NewRegistry())
}

func (s *GeminiSuite) TearDownTest() {
	s.server.Close()
}

func (s *GeminiSuite) newClient(opts ...Option) *GeminiClient {
	opts = append([]Option{
		WithMetrics(s.metrics),
		WithLogger(quietLogger()),
	}, opts...)
	client, err := NewGemini(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-1.5-flash",
		BaseURL: s.server.URL + "/",
		Timeout: 2 * time.Second,
	}, opts...)
	s.Require().NoError(err)
	return client
}

func (s *GeminiSuite) TestGenerateSendsRequestAndJoinsParts() {
	var captured struct {
		path, method, key, contentType string
		body                           capturedRequest
	}
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.method = r.Method
		captured.key = r.Header.Get("x-goog-api-key")
		captured.contentType = r.Header.Get("Content-Type")
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&captured.body))
		_, _ = io.WriteString(w, okBody)
	}

	text, err := s.newClient().Generate(context.Background(), "screen Jane Doe", Options{MaxTokens: 1500, Temperature: 0.2})

	s.Require().NoError(err)
	s.Equal(`{"risk_score":12}`, text)
	s.Equal("/v1beta/models/gemini-1.5-flash:generateContent", captured.path)
	s.Equal(http.MethodPost, captured.method)
	s.Equal("test-key", captured.key)
	s.Equal("application/json", captured.contentType)
	s.Require().Len(captured.body.Contents, 1)
	s.Equal("user", captured.body.Contents[0].Role)
	s.Equal("screen Jane Doe", captured.body.Contents[0].Parts[0].Text)
	s.Equal(1500, captured.body.GenerationConfig.MaxOutputTokens)
	s.Equal(0.2, captured.body.GenerationConfig.Temperature)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.CallsTotal.WithLabelValues(metrics.OutcomeSuccess, "")))
}

func (s *GeminiSuite) TestStatusCategories() {
	cases := []struct {
		status int
		body   string
		want   Category
	}{
		{http.StatusUnauthorized, `{"error":{"code":401,"message":"API key not valid"}}`, CategoryAuthentication},
		{http.StatusForbidden, `{"error":{"code":403,"message":"denied"}}`, CategoryAuthentication},
		{http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota"}}`, CategoryRateLimited},
		{http.StatusGatewayTimeout, `{"error":{"code":504,"message":"deadline"}}`, CategoryTimeout},
		{http.StatusInternalServerError, `{"error":{"code":500,"message":"internal"}}`, CategoryProviderOutage},
		{http.StatusServiceUnavailable, `{"error":{"code":503,"message":"overloaded"}}`, CategoryProviderOutage},
		{http.StatusBadRequest, `{"error":{"code":400,"message":"bad model"}}`, CategoryBadResponse},
	}
	for _, tc := range cases {
		s.Run(http.StatusText(tc.status), func() {
			s.handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}
			_, err := s.newClient().Generate(context.Background(), "p", Options{})

			var ge *Error
			s.Require().ErrorAs(err, &ge)
			s.Equal(tc.want, ge.Category)
		})
	}
}

func (s *GeminiSuite) TestAuthenticationErrorCarriesProviderMessage() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":401,"message":"API key not valid"}}`)
	}
	_, err := s.newClient().Generate(context.Background(), "p", Options{})
	s.ErrorContains(err, "API key not valid")
	s.False(Transient(err))
}

func (s *GeminiSuite) TestBadEnvelopes() {
	for name, body := range map[string]string{
		"not json":      "<html>",
		"no candidates": `{"candidates":[]}`,
		"blocked":       `{"promptFeedback":{"blockReason":"SAFETY"}}`,
	} {
		s.Run(name, func() {
			s.handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, body)
			}
			_, err := s.newClient().Generate(context.Background(), "p", Options{})
			s.Equal(CategoryBadResponse, CategoryOf(err))
		})
	}
}

func (s *GeminiSuite) TestEmptyCandidateTextIsNotAnError() {
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[]}}]}`)
	}
	text, err := s.newClient().Generate(context.Background(), "p", Options{})
	s.NoError(err)
	s.Empty(text)
}

func (s *GeminiSuite) TestDeadlineIsTimeout() {
	unblock := make(chan struct{})
	defer close(unblock)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-unblock:
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.newClient().Generate(ctx, "p", Options{})
	s.Equal(CategoryTimeout, CategoryOf(err))
	s.True(Transient(err))
}

func (s *GeminiSuite) TestUnreachableProviderIsOutage() {
	s.server.Close()
	_, err := s.newClient().Generate(context.Background(), "p", Options{})
	s.Equal(CategoryProviderOutage, CategoryOf(err))
}

func (s *GeminiSuite) TestBreakerOpensAndFeedsCheck() {
	var fail atomic.Bool
	fail.Store(true)
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `{"error":{"code":503,"message":"overloaded"}}`)
			return
		}
		_, _ = io.WriteString(w, okBody)
	}
	client := s.newClient(WithBreaker(circuit.New("generation", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1))))
	s.NoError(client.Check(context.Background()))

	for i := 0; i < 2; i++ {
		_, err := client.Generate(context.Background(), "p", Options{})
		s.Error(err)
	}
	s.Error(client.Check(context.Background()))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BreakerOpen))

	fail.Store(false)
	_, err := client.Generate(context.Background(), "p", Options{})
	s.Require().NoError(err, "open breaker must not short-circuit calls")
	s.NoError(client.Check(context.Background()))
	s.Equal(0.0, testutil.ToFloat64(s.metrics.BreakerOpen))
}

func (s *GeminiSuite) TestConcurrencyIsBounded() {
	var inFlight, peak atomic.Int32
	release := make(chan struct{})
	s.handler = func(w http.ResponseWriter, _ *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inFlight.Add(-1)
		_, _ = io.WriteString(w, okBody)
	}
	client, err := NewGemini(context.Background(), GeminiConfig{
		APIKey:         "k",
		BaseURL:        s.server.URL,
		MaxConcurrency: 2,
	}, WithLogger(quietLogger()))
	s.Require().NoError(err)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = client.Generate(context.Background(), "p", Options{})
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	s.LessOrEqual(peak.Load(), int32(2))
}

func TestGenerateWithoutAPIKey(t *testing.T) {
	client, err := NewGemini(context.Background(), GeminiConfig{})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "p", Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))
	assert.Equal(t, CategoryInternal, CategoryOf(err))
	assert.ErrorIs(t, client.Check(context.Background()), ErrNotConfigured)
	assert.False(t, client.Configured())
	assert.Equal(t, "gemini-1.5-flash", client.Model())
}

func TestCategoryOfForeignError(t *testing.T) {
	assert.Equal(t, CategoryInternal, CategoryOf(errors.New("boom")))
	assert.False(t, Transient(errors.New("boom")))
	assert.Equal(t, "generation [timeout]: slow", NewError(CategoryTimeout, "slow", nil).Error())
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestInjectedHTTPClient(t *testing.T) {
	var gotHost, gotPath string
	client, err := NewGemini(context.Background(), GeminiConfig{
		APIKey:  "k",
		Model:   "gemini-pro",
		BaseURL: "https://example.test",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotHost, gotPath = r.URL.Host, r.URL.Path
			rec := httptest.NewRecorder()
			rec.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(rec, okBody)
			return rec.Result(), nil
		})},
	}, WithLogger(quietLogger()))
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), "p", Options{MaxTokens: 800, Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, `{"risk_score":12}`, text)
	assert.Equal(t, "example.test", gotHost)
	assert.Equal(t, "/v1beta/models/gemini-pro:generateContent", gotPath)
}
