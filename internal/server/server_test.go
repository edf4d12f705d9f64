package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/fred"
	"github.com/enjojoy/fredagent/pkg/logging"
)

type stubProcessor struct{}

func (stubProcessor) Process(_ context.Context, query string) (*analysis.Report, error) {
	return &analysis.Report{Query: query, ExecutiveSummary: "summary"}, nil
}

type stubFinder struct{}

func (stubFinder) SearchSeries(context.Context, string, int) ([]fred.SeriesInfo, error) {
	return []fred.SeriesInfo{{ID: "UNRATE", Title: "Unemployment Rate"}}, nil
}

func (stubFinder) SeriesInfo(context.Context, string) (*fred.SeriesInfo, error) {
	return &fred.SeriesInfo{ID: "UNRATE", Title: "Unemployment Rate"}, nil
}

func (stubFinder) Observations(context.Context, string, fred.ObservationOptions) ([]fred.Observation, error) {
	return []fred.Observation{{Date: "2025-06-01", Value: "4.3"}}, nil
}

func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}
	s := New(stubProcessor{}, stubFinder{}, cfg, &logging.Nop)
	t.Cleanup(func() {
		s.jobs.Close()
		if s.limiter != nil {
			s.limiter.Close()
		}
	})
	return s
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	handler := s.Handler()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"root health", "GET", "/health", "", http.StatusOK},
		{"prefixed health", "GET", "/api/v1/health", "", http.StatusOK},
		{"ready", "GET", "/api/v1/ready", "", http.StatusOK},
		{"availability", "GET", "/api/v1/availability", "", http.StatusOK},
		{"input schema", "GET", "/api/v1/input_schema", "", http.StatusOK},
		{"query", "POST", "/api/v1/query", `{"text": "unemployment rate"}`, http.StatusOK},
		{"query wrong method", "GET", "/api/v1/query", "", http.StatusMethodNotAllowed},
		{"start job", "POST", "/api/v1/jobs", `{"text": "unemployment rate"}`, http.StatusAccepted},
		{"jobs wrong method", "GET", "/api/v1/jobs", "", http.StatusMethodNotAllowed},
		{"unknown job", "GET", "/api/v1/jobs/does-not-exist", "", http.StatusNotFound},
		{"search", "GET", "/api/v1/search?q=unemployment", "", http.StatusOK},
		{"series", "GET", "/api/v1/series/UNRATE", "", http.StatusOK},
		{"series wrong method", "POST", "/api/v1/series/UNRATE", "", http.StatusMethodNotAllowed},
		{"metrics", "GET", "/metrics", "", http.StatusOK},
		{"favicon", "GET", "/favicon.ico", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAuthProtectsQueryEndpoints(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) {
		cfg.AuthEnabled = true
		cfg.AuthAPIKey = "secret"
	})
	handler := s.Handler()

	t.Run("health stays public", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("query requires key", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"text": "unemployment rate"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("query with key succeeds", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"text": "unemployment rate"}`))
		req.Header.Set("X-API-Key", "secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimitAppliesAcrossEndpoints(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) {
		cfg.RateLimit = 2
	})
	handler := s.Handler()

	req := httptest.NewRequest("GET", "/health", nil)
	req.RemoteAddr = "10.0.0.9:4444"

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) {
		cfg.MetricsEnabled = false
	})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddr(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) {
		cfg.Host = "0.0.0.0"
		cfg.Port = 9090
	})
	assert.Equal(t, "0.0.0.0:9090", s.Addr())
}
