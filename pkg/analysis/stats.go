// Package analysis computes deterministic statistics over FRED observations
// and defines the report structure returned by the agent.
package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/enjojoy/fredagent/pkg/fred"
)

// Trend describes the direction of a series over the analyzed window.
type Trend string

// Trend values.
const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendFlat    Trend = "flat"
	TrendUnknown Trend = "unknown"
)

// Point is a dated value.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Stats summarizes a series over the analyzed window.
// Change fields are nil when the data needed to compute them is missing.
type Stats struct {
	Latest   *Point `json:"latest,omitempty"`
	Previous *Point `json:"previous,omitempty"`

	// MoMChange is the percent change of the latest value against the
	// observation closest to one month earlier.
	MoMChange *float64 `json:"mom_change,omitempty"`

	// YoYChange is the percent change of the latest value against the
	// observation closest to one year earlier.
	YoYChange *float64 `json:"yoy_change,omitempty"`

	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
	Trend Trend   `json:"trend"`
}

// flatTolerance is the relative change below which a series counts as flat.
const flatTolerance = 0.001

// Tolerances for matching the comparison observation. FRED release dates
// wobble around month and year boundaries.
const (
	monthTolerance = 45 * 24 * time.Hour
	yearTolerance  = 60 * 24 * time.Hour
)

// Compute derives Stats from raw observations. Missing values (".") are
// skipped; observations are sorted by date before analysis.
func Compute(observations []fred.Observation) Stats {
	points := validPoints(observations)
	if len(points) == 0 {
		return Stats{Trend: TrendUnknown}
	}

	stats := Stats{Count: len(points)}

	latest := points[len(points)-1]
	stats.Latest = &latest
	if len(points) > 1 {
		prev := points[len(points)-2]
		stats.Previous = &prev
	}

	minVal, maxVal, sum := points[0].Value, points[0].Value, 0.0
	for _, p := range points {
		minVal = math.Min(minVal, p.Value)
		maxVal = math.Max(maxVal, p.Value)
		sum += p.Value
	}
	stats.Min = minVal
	stats.Max = maxVal
	stats.Mean = sum / float64(len(points))

	stats.MoMChange = percentChangeSince(points, latest, latest.Date.AddDate(0, -1, 0), monthTolerance)
	stats.YoYChange = percentChangeSince(points, latest, latest.Date.AddDate(-1, 0, 0), yearTolerance)

	stats.Trend = trend(points)
	return stats
}

// validPoints parses, filters, and sorts observations by date ascending.
func validPoints(observations []fred.Observation) []Point {
	points := make([]Point, 0, len(observations))
	for _, o := range observations {
		v, ok := o.Float()
		if !ok {
			continue
		}
		t, err := o.Time()
		if err != nil {
			continue
		}
		points = append(points, Point{Date: t, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points
}

// percentChangeSince finds the observation closest to target within
// tolerance and returns the percent change of latest against it.
func percentChangeSince(points []Point, latest Point, target time.Time, tolerance time.Duration) *float64 {
	var best *Point
	var bestDistance time.Duration

	for i := range points {
		p := points[i]
		if !p.Date.Before(latest.Date) {
			continue
		}
		distance := absDuration(p.Date.Sub(target))
		if distance > tolerance {
			continue
		}
		if best == nil || distance < bestDistance {
			best = &points[i]
			bestDistance = distance
		}
	}

	if best == nil || best.Value == 0 {
		return nil
	}
	change := (latest.Value - best.Value) / math.Abs(best.Value) * 100
	return &change
}

// absDuration returns the magnitude of d.
func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// trend compares the latest value with the start of the window.
func trend(points []Point) Trend {
	if len(points) < 2 {
		return TrendUnknown
	}
	first := points[0].Value
	last := points[len(points)-1].Value

	base := math.Abs(first)
	if base == 0 {
		base = 1
	}
	switch {
	case (last-first)/base > flatTolerance:
		return TrendRising
	case (first-last)/base > flatTolerance:
		return TrendFalling
	default:
		return TrendFlat
	}
}
