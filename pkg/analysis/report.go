package analysis

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/enjojoy/fredagent/pkg/fred"
)

// SeriesBrief bundles everything the report carries for one series:
// metadata, computed statistics, and the most recent data points.
type SeriesBrief struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Units       string             `json:"units"`
	Frequency   string             `json:"frequency"`
	LastUpdated string             `json:"last_updated"`
	Link        string             `json:"link"`
	Notes       string             `json:"notes,omitempty"`
	Stats       Stats              `json:"stats"`
	Recent      []fred.Observation `json:"recent_observations"`
}

// Report is the final answer to an economic data query. The three section
// fields mirror the report structure the service documents promise.
type Report struct {
	Query       string    `json:"query"`
	GeneratedAt time.Time `json:"generated_at"`

	ExecutiveSummary    string `json:"executive_summary"`
	DetailedAnalysis    string `json:"detailed_analysis"`
	StakeholderInsights string `json:"stakeholder_insights"`

	Series []SeriesBrief `json:"series"`
}

// printer formats numbers with English grouping (1,234,567.89).
var printer = message.NewPrinter(language.English)

// FormatValue renders a numeric observation value for display.
func FormatValue(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// FormatChange renders a percent change with an explicit sign.
func FormatChange(v float64) string {
	return printer.Sprintf("%+.2f%%", v)
}

// Text renders the report as plain text.
func (r *Report) Text() string {
	var b strings.Builder

	writeSection := func(title, body string) {
		b.WriteString(strings.ToUpper(title))
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", len(title)))
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(body))
		b.WriteString("\n\n")
	}

	writeSection("Executive Summary", r.ExecutiveSummary)
	writeSection("Detailed Analysis", r.DetailedAnalysis)
	writeSection("Stakeholder Insights", r.StakeholderInsights)

	b.WriteString("DATA APPENDIX\n-------------\n")
	for _, s := range r.Series {
		b.WriteString(s.describe())
		b.WriteString("\n")
	}
	return b.String()
}

// Markdown renders the report as markdown.
func (r *Report) Markdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Economic Data Report\n\n_Query: %s_\n\n", r.Query)
	fmt.Fprintf(&b, "## Executive Summary\n\n%s\n\n", strings.TrimSpace(r.ExecutiveSummary))
	fmt.Fprintf(&b, "## Detailed Analysis\n\n%s\n\n", strings.TrimSpace(r.DetailedAnalysis))
	fmt.Fprintf(&b, "## Stakeholder Insights\n\n%s\n\n", strings.TrimSpace(r.StakeholderInsights))

	b.WriteString("## Data Appendix\n\n")
	for _, s := range r.Series {
		fmt.Fprintf(&b, "### %s (%s)\n\n", s.Title, s.ID)
		b.WriteString(s.describe())
		b.WriteString("\n")
	}
	return b.String()
}

// describe renders the appendix entry for one series.
func (s *SeriesBrief) describe() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (ID: %s)\n", s.Title, s.ID)
	fmt.Fprintf(&b, "  Frequency: %s | Units: %s\n", orNA(s.Frequency), orNA(s.Units))
	if s.LastUpdated != "" {
		fmt.Fprintf(&b, "  Last Updated: %s\n", s.LastUpdated)
	}

	if latest := s.Stats.Latest; latest != nil {
		fmt.Fprintf(&b, "  Latest: %s on %s\n", FormatValue(latest.Value), latest.Date.Format("2006-01-02"))
	}
	if s.Stats.MoMChange != nil {
		fmt.Fprintf(&b, "  MoM: %s\n", FormatChange(*s.Stats.MoMChange))
	}
	if s.Stats.YoYChange != nil {
		fmt.Fprintf(&b, "  YoY: %s\n", FormatChange(*s.Stats.YoYChange))
	}
	if s.Stats.Count > 0 {
		fmt.Fprintf(&b, "  Window: min %s, max %s, mean %s over %d observations (%s)\n",
			FormatValue(s.Stats.Min), FormatValue(s.Stats.Max), FormatValue(s.Stats.Mean),
			s.Stats.Count, s.Stats.Trend)
	}

	if len(s.Recent) > 0 {
		b.WriteString("  Recent data points:\n")
		for _, o := range s.Recent {
			if v, ok := o.Float(); ok {
				fmt.Fprintf(&b, "    %s: %s\n", o.Date, FormatValue(v))
			}
		}
	}

	fmt.Fprintf(&b, "  View on FRED: %s\n", s.Link)
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
