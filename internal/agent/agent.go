// Package agent implements the query pipeline: search FRED for relevant
// series, retrieve their data, compute statistics, and ask the advisor for
// a narrative report. This mirrors the two-stage analyst/advisor flow of
// the original service.
package agent

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/enjojoy/fredagent/internal/advisor"
	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/constants"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/fred"
	"github.com/enjojoy/fredagent/pkg/logging"
)

// FREDClient is the slice of the FRED API the agent needs.
type FREDClient interface {
	SearchSeries(ctx context.Context, text string, limit int) ([]fred.SeriesInfo, error)
	Observations(ctx context.Context, seriesID string, opts fred.ObservationOptions) ([]fred.Observation, error)
}

// Advisor generates the narrative sections of a report.
type Advisor interface {
	Advise(ctx context.Context, query string, briefs []analysis.SeriesBrief) (advisor.Sections, error)
}

// Agent answers economic data queries.
type Agent struct {
	fred    FREDClient
	advisor Advisor
	logger  *zerolog.Logger

	searchLimit  int
	topSeries    int
	windowYears  int
	recentPoints int
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the agent logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// WithTopSeries sets how many search results are retrieved and analyzed.
func WithTopSeries(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.topSeries = n
		}
	}
}

// WithSearchLimit sets how many search results are requested from FRED.
func WithSearchLimit(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.searchLimit = n
		}
	}
}

// WithWindowYears sets the observation lookback window in years.
func WithWindowYears(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.windowYears = n
		}
	}
}

// New creates an Agent.
func New(fredClient FREDClient, adv Advisor, opts ...Option) *Agent {
	a := &Agent{
		fred:         fredClient,
		advisor:      adv,
		logger:       logging.Default(),
		searchLimit:  constants.DefaultSearchLimit,
		topSeries:    constants.DefaultTopSeries,
		windowYears:  constants.DefaultObservationYears,
		recentPoints: constants.DefaultRecentObservations,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateQuery checks a raw query string against the input schema rules.
func ValidateQuery(query string) error {
	if len(strings.TrimSpace(query)) < constants.MinQueryLength {
		return errors.NewValidationError("text", query,
			"query must contain at least 5 characters")
	}
	return nil
}

// Process runs the full pipeline for one query.
func (a *Agent) Process(ctx context.Context, query string) (*analysis.Report, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)

	logger := a.logger
	logger.Info().Str("query", truncate(query, 100)).Msg("Processing economic data query")

	matches, err := a.fred.SearchSeries(ctx, query, a.searchLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.NewNotFoundError("series matching", query)
	}

	top := matches
	if len(top) > a.topSeries {
		top = top[:a.topSeries]
	}

	briefs := a.retrieve(ctx, top)
	if len(briefs) == 0 {
		return nil, &errors.APIError{
			Service: "fred",
			Message: "data retrieval failed for every matched series",
		}
	}

	sections, err := a.advisor.Advise(ctx, query, briefs)
	if err != nil {
		return nil, err
	}

	report := &analysis.Report{
		Query:               query,
		GeneratedAt:         time.Now().UTC(),
		ExecutiveSummary:    sections.ExecutiveSummary,
		DetailedAnalysis:    sections.DetailedAnalysis,
		StakeholderInsights: sections.StakeholderInsights,
		Series:              briefs,
	}

	logger.Info().
		Int("series_count", len(briefs)).
		Msg("Query processed")
	return report, nil
}

// retrieve fetches observations for each series concurrently, preserving
// search order. A series whose fetch fails is dropped with a warning.
func (a *Agent) retrieve(ctx context.Context, matches []fred.SeriesInfo) []analysis.SeriesBrief {
	type result struct {
		brief analysis.SeriesBrief
		err   error
	}

	results := make([]result, len(matches))
	sem := make(chan struct{}, constants.MaxConcurrentFetches)
	var wg sync.WaitGroup

	for i, info := range matches {
		wg.Add(1)
		go func(i int, info fred.SeriesInfo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			brief, err := a.buildBrief(ctx, info)
			results[i] = result{brief: brief, err: err}
		}(i, info)
	}
	wg.Wait()

	briefs := make([]analysis.SeriesBrief, 0, len(matches))
	for i, res := range results {
		if res.err != nil {
			a.logger.Warn().
				Err(res.err).
				Str("series_id", matches[i].ID).
				Msg("Dropping series after retrieval failure")
			continue
		}
		briefs = append(briefs, res.brief)
	}
	return briefs
}

// buildBrief retrieves observations for one series and computes its stats.
func (a *Agent) buildBrief(ctx context.Context, info fred.SeriesInfo) (analysis.SeriesBrief, error) {
	start := time.Now().UTC().AddDate(-a.windowYears, 0, 0)

	observations, err := a.fred.Observations(ctx, info.ID, fred.ObservationOptions{
		Start:     start,
		SortOrder: "asc",
	})
	if err != nil {
		return analysis.SeriesBrief{}, err
	}

	recent := recentValid(observations, a.recentPoints)

	return analysis.SeriesBrief{
		ID:          info.ID,
		Title:       info.Title,
		Units:       info.Units,
		Frequency:   info.Frequency,
		LastUpdated: info.LastUpdated,
		Link:        info.Link(),
		Notes:       truncate(info.Notes, 200),
		Stats:       analysis.Compute(observations),
		Recent:      recent,
	}, nil
}

// recentValid returns the last n observations that carry a value.
func recentValid(observations []fred.Observation, n int) []fred.Observation {
	valid := make([]fred.Observation, 0, len(observations))
	for _, o := range observations {
		if _, ok := o.Float(); ok {
			valid = append(valid, o)
		}
	}
	if len(valid) > n {
		valid = valid[len(valid)-n:]
	}
	return valid
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
