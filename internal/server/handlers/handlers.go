// Package handlers provides HTTP request handlers for the API server.
package handlers

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/enjojoy/fredagent/internal/jobs"
	"github.com/enjojoy/fredagent/internal/metrics"
	"github.com/enjojoy/fredagent/internal/server/cache"
	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/fred"
)

// QueryProcessor runs the query pipeline and produces a report.
type QueryProcessor interface {
	Process(ctx context.Context, query string) (*analysis.Report, error)
}

// SeriesFinder is the slice of the FRED API the read-only endpoints need.
type SeriesFinder interface {
	SearchSeries(ctx context.Context, text string, limit int) ([]fred.SeriesInfo, error)
	SeriesInfo(ctx context.Context, seriesID string) (*fred.SeriesInfo, error)
	Observations(ctx context.Context, seriesID string, opts fred.ObservationOptions) ([]fred.Observation, error)
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	processor    QueryProcessor
	finder       SeriesFinder
	jobs         *jobs.Store
	cache        *cache.Cache
	metrics      *metrics.Metrics
	logger       *zerolog.Logger
	startTime    time.Time
	queryTimeout time.Duration
}

// New creates a new Handlers instance.
func New(
	processor QueryProcessor,
	finder SeriesFinder,
	jobStore *jobs.Store,
	c *cache.Cache,
	m *metrics.Metrics,
	logger *zerolog.Logger,
	queryTimeout time.Duration,
) *Handlers {
	return &Handlers{
		processor:    processor,
		finder:       finder,
		jobs:         jobStore,
		cache:        c,
		metrics:      m,
		logger:       logger,
		startTime:    time.Now(),
		queryTimeout: queryTimeout,
	}
}

// observeQuery records the outcome of one pipeline run.
func (h *Handlers) observeQuery(start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	h.metrics.ObserveQuery(outcome, time.Since(start).Seconds())

	var advErr *errors.AdvisorError
	switch {
	case err == nil:
		h.metrics.AdvisorRequests.WithLabelValues("ok").Inc()
	case errors.As(err, &advErr):
		h.metrics.AdvisorRequests.WithLabelValues("error").Inc()
	}
}

// observeFRED records one FRED lookup made on behalf of a client.
func (h *Handlers) observeFRED(endpoint string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.metrics.FREDRequests.WithLabelValues(endpoint, status).Inc()
}
