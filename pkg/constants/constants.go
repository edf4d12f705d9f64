// Package constants provides shared constants used throughout the fredagent
// codebase. This includes timeouts, limits, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the FRED API
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// QueryTimeout is the timeout for a full query pipeline run
	// (search, data retrieval, and advisor generation)
	QueryTimeout = 3 * time.Minute

	// AdvisorTimeout is the timeout for a single advisor generation call
	AdvisorTimeout = 90 * time.Second

	// RetryBackoff is the base backoff duration for retries
	RetryBackoff = 1 * time.Second

	// MaxRetryBackoff is the maximum backoff duration for retries
	MaxRetryBackoff = 30 * time.Second
)

// Limit constants define various limits and capacities
const (
	// MaxRetries is the maximum number of retry attempts for failed FRED requests
	MaxRetries = 3

	// MinQueryLength is the minimum number of characters in a query after trimming
	MinQueryLength = 5

	// DefaultSearchLimit is the default number of series returned by a FRED search
	DefaultSearchLimit = 10

	// MaxSearchLimit is the maximum number of series a search may request
	MaxSearchLimit = 100

	// DefaultTopSeries is how many search results the agent retrieves data for
	DefaultTopSeries = 3

	// DefaultObservationYears is the default lookback window for observations
	DefaultObservationYears = 10

	// DefaultRecentObservations is how many recent data points a report includes
	DefaultRecentObservations = 10

	// MaxConcurrentFetches bounds concurrent series retrievals per query
	MaxConcurrentFetches = 5
)

// Server defaults
const (
	// DefaultCacheTTL is the default TTL for cached FRED responses
	DefaultCacheTTL = 5 * time.Minute

	// DefaultRateLimit is the default number of requests per minute per IP
	DefaultRateLimit = 100

	// DefaultJobTTL is how long finished jobs are retained in memory
	DefaultJobTTL = 1 * time.Hour
)
