package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQuery(t *testing.T) {
	m := New()

	m.ObserveQuery("success", 1.5)
	m.ObserveQuery("success", 2.5)
	m.ObserveQuery("error", 0.1)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.QueriesTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QueriesTotal.WithLabelValues("error")))
}

func TestJobsActiveGauge(t *testing.T) {
	m := New()

	m.JobsActive.Inc()
	m.JobsActive.Inc()
	m.JobsActive.Dec()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.JobsActive))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.FREDRequests.WithLabelValues("series/search", "200").Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "fredagent_fred_requests_total")
}
