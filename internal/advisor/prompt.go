package advisor

import (
	"fmt"
	"strings"

	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/constants"
)

// systemInstruction frames the model as the economic advisor the original
// service describes: explain the data, give context, point back to FRED.
const systemInstruction = `You are an experienced economist who helps people understand
economic data from FRED (Federal Reserve Economic Data). You explain what
economic indicators mean, provide context for trends, and point readers to
the right FRED series for deeper exploration. Ground every figure you cite
in the data provided; do not invent numbers. Make economics accessible.`

// sectionHeadings are the required headings, in order.
var sectionHeadings = []string{
	"Executive Summary",
	"Detailed Analysis",
	"Stakeholder Insights",
}

// buildPrompt assembles the generation prompt from the query and the
// retrieved data digest.
func buildPrompt(query string, briefs []analysis.SeriesBrief) string {
	var b strings.Builder

	fmt.Fprintf(&b, "User question: %s\n\n", query)
	b.WriteString("Retrieved FRED data:\n\n")
	for _, brief := range briefs {
		b.WriteString(describeBrief(brief))
		b.WriteString("\n")
	}

	b.WriteString(`Write a report answering the question from this data. Structure it as
exactly three markdown sections with these headings, in this order:

## Executive Summary
Two to four sentences with the headline numbers and the direct answer.

## Detailed Analysis
The data in depth: recent values, month-over-month and year-over-year
changes where available, the trend over the window, and what drives it.

## Stakeholder Insights
What the data means in practice for businesses, workers, investors, and
policymakers, plus which related FRED series are worth exploring next.

Cite series by their FRED IDs. Use only values present in the data above.`)

	return b.String()
}

// describeBrief renders one series digest for the prompt.
func describeBrief(brief analysis.SeriesBrief) string {
	var b strings.Builder

	fmt.Fprintf(&b, "### %s (ID: %s)\n", brief.Title, brief.ID)
	fmt.Fprintf(&b, "Frequency: %s | Units: %s\n", brief.Frequency, brief.Units)

	if latest := brief.Stats.Latest; latest != nil {
		fmt.Fprintf(&b, "Latest: %s on %s\n",
			analysis.FormatValue(latest.Value), latest.Date.Format("2006-01-02"))
	}
	if brief.Stats.MoMChange != nil {
		fmt.Fprintf(&b, "Month-over-month change: %s\n", analysis.FormatChange(*brief.Stats.MoMChange))
	}
	if brief.Stats.YoYChange != nil {
		fmt.Fprintf(&b, "Year-over-year change: %s\n", analysis.FormatChange(*brief.Stats.YoYChange))
	}
	if brief.Stats.Count > 0 {
		fmt.Fprintf(&b, "Window: min %s, max %s, mean %s, trend %s over %d observations\n",
			analysis.FormatValue(brief.Stats.Min),
			analysis.FormatValue(brief.Stats.Max),
			analysis.FormatValue(brief.Stats.Mean),
			brief.Stats.Trend, brief.Stats.Count)
	}

	recent := brief.Recent
	if len(recent) > constants.DefaultRecentObservations {
		recent = recent[len(recent)-constants.DefaultRecentObservations:]
	}
	if len(recent) > 0 {
		b.WriteString("Recent observations:\n")
		for _, o := range recent {
			if v, ok := o.Float(); ok {
				fmt.Fprintf(&b, "  %s: %s\n", o.Date, analysis.FormatValue(v))
			}
		}
	}

	fmt.Fprintf(&b, "FRED link: %s\n", brief.Link)
	return b.String()
}
