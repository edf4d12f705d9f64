package fred

import (
	"strconv"
	"time"
)

// dateLayout is the date format used by the FRED API.
const dateLayout = "2006-01-02"

// SeriesInfo holds metadata for a FRED data series.
type SeriesInfo struct {
	ID                      string `json:"id"`
	Title                   string `json:"title"`
	ObservationStart        string `json:"observation_start"`
	ObservationEnd          string `json:"observation_end"`
	Frequency               string `json:"frequency"`
	FrequencyShort          string `json:"frequency_short"`
	Units                   string `json:"units"`
	UnitsShort              string `json:"units_short"`
	SeasonalAdjustment      string `json:"seasonal_adjustment"`
	SeasonalAdjustmentShort string `json:"seasonal_adjustment_short"`
	LastUpdated             string `json:"last_updated"`
	Popularity              int    `json:"popularity"`
	Notes                   string `json:"notes"`
}

// Link returns the public FRED page for the series.
func (s SeriesInfo) Link() string {
	return SeriesLink(s.ID)
}

// Observation is a single data point in a series.
// FRED encodes missing values as ".", so Value stays a string on the wire
// and Float reports validity.
type Observation struct {
	Date          string `json:"date"`
	Value         string `json:"value"`
	RealtimeStart string `json:"realtime_start,omitempty"`
	RealtimeEnd   string `json:"realtime_end,omitempty"`
}

// Float parses the observation value. ok is false for missing values.
func (o Observation) Float() (float64, bool) {
	if o.Value == "" || o.Value == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(o.Value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Time parses the observation date.
func (o Observation) Time() (time.Time, error) {
	return time.Parse(dateLayout, o.Date)
}

// ObservationOptions control an Observations request.
type ObservationOptions struct {
	// Start and End bound the observation period. Zero values are omitted.
	Start time.Time
	End   time.Time

	// Limit caps the number of observations returned (FRED default 100000).
	Limit int

	// SortOrder is "asc" or "desc" by observation date.
	SortOrder string

	// Units requests a data transformation (e.g. "pch" for percent change).
	Units string
}

// searchResponse is the wire shape of /fred/series/search and /fred/series.
// FRED really does call the field "seriess".
type searchResponse struct {
	Count   int          `json:"count"`
	Seriess []SeriesInfo `json:"seriess"`
}

// observationsResponse is the wire shape of /fred/series/observations.
type observationsResponse struct {
	ObservationStart string        `json:"observation_start"`
	ObservationEnd   string        `json:"observation_end"`
	Units            string        `json:"units"`
	Count            int           `json:"count"`
	Observations     []Observation `json:"observations"`
}

// apiErrorResponse is the wire shape of a FRED error payload.
type apiErrorResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}
