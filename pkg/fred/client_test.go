package fred_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/fred"
	"github.com/enjojoy/fredagent/pkg/logging"
)

const searchBody = `{
	"count": 2,
	"seriess": [
		{
			"id": "UNRATE",
			"title": "Unemployment Rate",
			"observation_start": "1948-01-01",
			"observation_end": "2025-06-01",
			"frequency": "Monthly",
			"frequency_short": "M",
			"units": "Percent",
			"units_short": "%",
			"seasonal_adjustment": "Seasonally Adjusted",
			"last_updated": "2025-07-03 07:44:03-05",
			"popularity": 94,
			"notes": "The unemployment rate represents the number of unemployed as a percentage of the labor force."
		},
		{
			"id": "U6RATE",
			"title": "Total Unemployed Plus All Persons Marginally Attached to the Labor Force",
			"frequency_short": "M",
			"units_short": "%",
			"popularity": 60
		}
	]
}`

const observationsBody = `{
	"observation_start": "2025-01-01",
	"observation_end": "2025-06-01",
	"units": "lin",
	"count": 3,
	"observations": [
		{"date": "2025-04-01", "value": "4.2"},
		{"date": "2025-05-01", "value": "."},
		{"date": "2025-06-01", "value": "4.1"}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *fred.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return fred.New("test-key",
		fred.WithBaseURL(srv.URL),
		fred.WithLogger(&logging.Nop),
		fred.WithRetryPolicy(0, 0),
	)
}

func TestSearchSeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/search", r.URL.Path)
		assert.Equal(t, "unemployment rate", r.URL.Query().Get("search_text"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "json", r.URL.Query().Get("file_type"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(searchBody))
	})

	results, err := client.SearchSeries(context.Background(), "unemployment rate", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "UNRATE", results[0].ID)
	assert.Equal(t, "Unemployment Rate", results[0].Title)
	assert.Equal(t, "https://fred.stlouisfed.org/series/UNRATE", results[0].Link())
}

func TestSearchSeriesEmptyText(t *testing.T) {
	client := fred.New("test-key", fred.WithLogger(&logging.Nop))
	_, err := client.SearchSeries(context.Background(), "   ", 10)
	assert.True(t, errors.IsValidationError(err))
}

func TestSeriesInfo(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/series", r.URL.Path)
			assert.Equal(t, "UNRATE", r.URL.Query().Get("series_id"))
			_, _ = w.Write([]byte(searchBody))
		})

		info, err := client.SeriesInfo(context.Background(), "UNRATE")
		require.NoError(t, err)
		assert.Equal(t, "Monthly", info.Frequency)
		assert.Equal(t, "Percent", info.Units)
	})

	t.Run("empty result maps to not found", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"count":0,"seriess":[]}`))
		})

		_, err := client.SeriesInfo(context.Background(), "NOPE")
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestObservations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/observations", r.URL.Path)
		assert.Equal(t, "UNRATE", r.URL.Query().Get("series_id"))
		assert.Equal(t, "2025-01-01", r.URL.Query().Get("observation_start"))
		_, _ = w.Write([]byte(observationsBody))
	})

	obs, err := client.Observations(context.Background(), "UNRATE", fred.ObservationOptions{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, obs, 3)

	v, ok := obs[0].Float()
	assert.True(t, ok)
	assert.Equal(t, 4.2, v)

	// FRED encodes missing values as "."
	_, ok = obs[1].Float()
	assert.False(t, ok)

	ts, err := obs[2].Time()
	require.NoError(t, err)
	assert.Equal(t, time.June, ts.Month())
}

func TestStatusErrors(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error_code":429,"error_message":"Too Many Requests."}`))
		})

		_, err := client.SearchSeries(context.Background(), "gdp growth", 5)
		assert.True(t, errors.IsRateLimited(err))
	})

	t.Run("bad api key", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error_code":400,"error_message":"Bad Request. The value for variable api_key is not registered."}`))
		})

		_, err := client.SearchSeries(context.Background(), "gdp growth", 5)
		assert.True(t, errors.IsAPIKeyError(err))
	})

	t.Run("server error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.SearchSeries(context.Background(), "gdp growth", 5)
		assert.True(t, errors.IsUnavailable(err))
	})
}

func TestRetriesTransientFailures(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(searchBody))
	}))
	t.Cleanup(srv.Close)

	client := fred.New("test-key",
		fred.WithBaseURL(srv.URL),
		fred.WithLogger(&logging.Nop),
		fred.WithRetryPolicy(2, time.Millisecond),
	)

	results, err := client.SearchSeries(context.Background(), "unemployment rate", 5)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, 2, calls)
}

func TestDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":400,"error_message":"Bad Request. Variable limit is out of bounds."}`))
	}))
	t.Cleanup(srv.Close)

	client := fred.New("test-key",
		fred.WithBaseURL(srv.URL),
		fred.WithLogger(&logging.Nop),
		fred.WithRetryPolicy(2, time.Millisecond),
	)

	_, err := client.SearchSeries(context.Background(), "unemployment rate", 5)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestMissingAPIKey(t *testing.T) {
	client := fred.New("", fred.WithLogger(&logging.Nop))
	_, err := client.SearchSeries(context.Background(), "inflation", 5)
	assert.True(t, errors.IsAPIKeyError(err))
}

func TestErrorDoesNotLeakAPIKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error_code":400,"error_message":"Bad Request. Variable limit is out of bounds."}`))
	})

	_, err := client.SearchSeries(context.Background(), "inflation", 5)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "test-key")
}
