package agent_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enjojoy/fredagent/internal/advisor"
	"github.com/enjojoy/fredagent/internal/agent"
	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/fred"
	"github.com/enjojoy/fredagent/pkg/logging"
)

type stubFRED struct {
	searchResults []fred.SeriesInfo
	searchErr     error
	observations  map[string][]fred.Observation
	obsErr        map[string]error
}

func (s *stubFRED) SearchSeries(_ context.Context, _ string, _ int) ([]fred.SeriesInfo, error) {
	return s.searchResults, s.searchErr
}

func (s *stubFRED) Observations(_ context.Context, seriesID string, _ fred.ObservationOptions) ([]fred.Observation, error) {
	if err, ok := s.obsErr[seriesID]; ok {
		return nil, err
	}
	return s.observations[seriesID], nil
}

type stubAdvisor struct {
	sections advisor.Sections
	err      error
	gotQuery string
	gotCount int
}

func (s *stubAdvisor) Advise(_ context.Context, query string, briefs []analysis.SeriesBrief) (advisor.Sections, error) {
	s.gotQuery = query
	s.gotCount = len(briefs)
	return s.sections, s.err
}

func unrate() fred.SeriesInfo {
	return fred.SeriesInfo{
		ID:        "UNRATE",
		Title:     "Unemployment Rate",
		Units:     "Percent",
		Frequency: "Monthly",
	}
}

func unrateObservations() []fred.Observation {
	return []fred.Observation{
		{Date: "2024-06-01", Value: "3.7"},
		{Date: "2025-05-01", Value: "4.2"},
		{Date: "2025-06-01", Value: "4.3"},
	}
}

func TestProcess(t *testing.T) {
	fredStub := &stubFRED{
		searchResults: []fred.SeriesInfo{unrate()},
		observations:  map[string][]fred.Observation{"UNRATE": unrateObservations()},
	}
	advStub := &stubAdvisor{
		sections: advisor.Sections{
			ExecutiveSummary:    "Unemployment is 4.3%.",
			DetailedAnalysis:    "Up from 3.7% a year ago.",
			StakeholderInsights: "Labor market is cooling.",
		},
	}

	a := agent.New(fredStub, advStub, agent.WithLogger(&logging.Nop))
	report, err := a.Process(context.Background(), "What is the current unemployment rate?")
	require.NoError(t, err)

	assert.Equal(t, "What is the current unemployment rate?", advStub.gotQuery)
	assert.Equal(t, 1, advStub.gotCount)

	assert.Equal(t, "Unemployment is 4.3%.", report.ExecutiveSummary)
	assert.False(t, report.GeneratedAt.IsZero())
	require.Len(t, report.Series, 1)

	brief := report.Series[0]
	assert.Equal(t, "UNRATE", brief.ID)
	assert.Equal(t, "https://fred.stlouisfed.org/series/UNRATE", brief.Link)
	require.NotNil(t, brief.Stats.Latest)
	assert.Equal(t, 4.3, brief.Stats.Latest.Value)
	assert.Len(t, brief.Recent, 3)
}

func TestProcessRejectsShortQuery(t *testing.T) {
	a := agent.New(&stubFRED{}, &stubAdvisor{}, agent.WithLogger(&logging.Nop))

	for _, query := range []string{"", "gdp", "    ab    "} {
		_, err := a.Process(context.Background(), query)
		assert.True(t, errors.IsValidationError(err), "query %q should be rejected", query)
	}
}

func TestProcessNoMatches(t *testing.T) {
	a := agent.New(&stubFRED{}, &stubAdvisor{}, agent.WithLogger(&logging.Nop))
	_, err := a.Process(context.Background(), "completely unknown indicator")
	assert.True(t, errors.IsNotFound(err))
}

func TestProcessSearchError(t *testing.T) {
	fredStub := &stubFRED{searchErr: errors.NewAPIError("fred", 503, "down")}
	a := agent.New(fredStub, &stubAdvisor{}, agent.WithLogger(&logging.Nop))

	_, err := a.Process(context.Background(), "unemployment rate")
	assert.True(t, errors.IsUnavailable(err))
}

func TestProcessDropsFailingSeries(t *testing.T) {
	fredStub := &stubFRED{
		searchResults: []fred.SeriesInfo{
			unrate(),
			{ID: "BROKEN", Title: "Broken Series"},
		},
		observations: map[string][]fred.Observation{"UNRATE": unrateObservations()},
		obsErr:       map[string]error{"BROKEN": errors.NewAPIError("fred", 500, "boom")},
	}
	a := agent.New(fredStub, &stubAdvisor{}, agent.WithLogger(&logging.Nop))

	report, err := a.Process(context.Background(), "unemployment rate")
	require.NoError(t, err)
	require.Len(t, report.Series, 1)
	assert.Equal(t, "UNRATE", report.Series[0].ID)
}

func TestProcessFailsWhenAllSeriesFail(t *testing.T) {
	fredStub := &stubFRED{
		searchResults: []fred.SeriesInfo{unrate()},
		obsErr:        map[string]error{"UNRATE": errors.NewAPIError("fred", 500, "boom")},
	}
	a := agent.New(fredStub, &stubAdvisor{}, agent.WithLogger(&logging.Nop))

	_, err := a.Process(context.Background(), "unemployment rate")
	require.Error(t, err)
}

func TestProcessAdvisorError(t *testing.T) {
	fredStub := &stubFRED{
		searchResults: []fred.SeriesInfo{unrate()},
		observations:  map[string][]fred.Observation{"UNRATE": unrateObservations()},
	}
	advStub := &stubAdvisor{err: errors.NewAdvisorError("gemini-2.5-flash", "quota", nil)}
	a := agent.New(fredStub, advStub, agent.WithLogger(&logging.Nop))

	_, err := a.Process(context.Background(), "unemployment rate")
	var advErr *errors.AdvisorError
	require.ErrorAs(t, err, &advErr)
}

func TestProcessRespectsTopSeries(t *testing.T) {
	fredStub := &stubFRED{
		searchResults: []fred.SeriesInfo{
			{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"},
		},
		observations: map[string][]fred.Observation{
			"A": unrateObservations(),
			"B": unrateObservations(),
			"C": unrateObservations(),
			"D": unrateObservations(),
		},
	}
	advStub := &stubAdvisor{}
	a := agent.New(fredStub, advStub, agent.WithTopSeries(2), agent.WithLogger(&logging.Nop))

	report, err := a.Process(context.Background(), "many series query")
	require.NoError(t, err)
	assert.Len(t, report.Series, 2)
	assert.Equal(t, 2, advStub.gotCount)
}

func TestValidateQuery(t *testing.T) {
	assert.Error(t, agent.ValidateQuery("abcd"))
	assert.NoError(t, agent.ValidateQuery("abcde"))
	assert.Error(t, agent.ValidateQuery("  a  "))
}
