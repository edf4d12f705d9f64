// Package fred provides a client for the Federal Reserve Economic Data
// (FRED) REST API maintained by the Federal Reserve Bank of St. Louis.
//
// The API authenticates with an api_key query parameter and serves JSON
// when file_type=json is requested. See https://fred.stlouisfed.org/docs/api/fred/.
package fred

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/enjojoy/fredagent/pkg/constants"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/logging"
)

const (
	// DefaultBaseURL is the production FRED API endpoint.
	DefaultBaseURL = "https://api.stlouisfed.org/fred"

	// seriesPageURL is the public site prefix for series pages.
	seriesPageURL = "https://fred.stlouisfed.org/series/"

	serviceName = "fred"
)

// SeriesLink returns the public FRED page for a series ID.
func SeriesLink(seriesID string) string {
	return seriesPageURL + url.PathEscape(seriesID)
}

// Client is an HTTP client for the FRED API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zerolog.Logger
	retries int
	backoff time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL (used in tests).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRetryPolicy overrides the retry count and base backoff for transient
// failures. retries of 0 disables retrying.
func WithRetryPolicy(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = retries
		c.backoff = backoff
	}
}

// New creates a FRED client with the given API key.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		logger:  logging.Default(),
		retries: constants.MaxRetries,
		backoff: constants.RetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchSeries searches the FRED database for series matching the text.
func (c *Client) SearchSeries(ctx context.Context, text string, limit int) ([]SeriesInfo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewValidationError("search_text", text, "search text must not be empty")
	}
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}
	if limit > constants.MaxSearchLimit {
		limit = constants.MaxSearchLimit
	}

	params := url.Values{}
	params.Set("search_text", text)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("order_by", "popularity")
	params.Set("sort_order", "desc")

	var result searchResponse
	if err := c.get(ctx, "/series/search", params, &result); err != nil {
		return nil, err
	}
	return result.Seriess, nil
}

// SeriesInfo retrieves metadata for a single series.
func (c *Client) SeriesInfo(ctx context.Context, seriesID string) (*SeriesInfo, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return nil, errors.NewValidationError("series_id", seriesID, "series ID must not be empty")
	}

	params := url.Values{}
	params.Set("series_id", seriesID)

	var result searchResponse
	if err := c.get(ctx, "/series", params, &result); err != nil {
		return nil, err
	}
	if len(result.Seriess) == 0 {
		return nil, errors.NewNotFoundError("series", seriesID)
	}
	return &result.Seriess[0], nil
}

// Observations retrieves data points for a series.
func (c *Client) Observations(ctx context.Context, seriesID string, opts ObservationOptions) ([]Observation, error) {
	seriesID = strings.TrimSpace(seriesID)
	if seriesID == "" {
		return nil, errors.NewValidationError("series_id", seriesID, "series ID must not be empty")
	}

	params := url.Values{}
	params.Set("series_id", seriesID)
	if !opts.Start.IsZero() {
		params.Set("observation_start", opts.Start.Format(dateLayout))
	}
	if !opts.End.IsZero() {
		params.Set("observation_end", opts.End.Format(dateLayout))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.SortOrder != "" {
		params.Set("sort_order", opts.SortOrder)
	}
	if opts.Units != "" {
		params.Set("units", opts.Units)
	}

	var result observationsResponse
	if err := c.get(ctx, "/series/observations", params, &result); err != nil {
		return nil, err
	}
	return result.Observations, nil
}

// get performs an authenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, target any) error {
	if c.apiKey == "" {
		return &errors.AuthenticationError{
			Service: serviceName,
			Method:  "api_key",
			Message: "FRED API key not configured, set FRED_API_KEY",
			Err:     errors.ErrAPIKeyRequired,
		}
	}

	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	endpoint := c.baseURL + path + "?" + params.Encode()

	c.logger.Debug().
		Str("endpoint", path).
		Str("series_id", params.Get("series_id")).
		Msg("FRED request")

	backoff := c.backoff
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > constants.MaxRetryBackoff {
				backoff = constants.MaxRetryBackoff
			}
			c.logger.Debug().
				Str("endpoint", path).
				Int("attempt", attempt).
				Msg("Retrying FRED request")
		}

		done, err := c.doOnce(ctx, endpoint, path, target)
		if done {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// doOnce performs a single request attempt. done is false when the failure
// is transient and worth retrying.
func (c *Client) doOnce(ctx context.Context, endpoint, path string, target any) (done bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return true, errors.WrapAPI(serviceName, 0, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		transportErr := &errors.APIError{
			Service:  serviceName,
			Endpoint: path,
			Message:  "request failed",
			Err:      err,
		}
		// Cancellation is final; connection failures are worth retrying.
		return ctx.Err() != nil, transportErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errors.WrapAPI(serviceName, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return !retryable, c.statusError(path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return true, errors.WrapParse("json", "fred response", err)
	}
	return true, nil
}

// statusError maps a non-200 FRED response to a typed error.
// The raw body may echo request parameters, so only the FRED error message
// is propagated and the API key never leaves this method.
func (c *Client) statusError(path string, status int, body []byte) error {
	message := http.StatusText(status)
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorMessage != "" {
		message = apiErr.ErrorMessage
	}

	if status == http.StatusBadRequest && strings.Contains(strings.ToLower(message), "api_key") {
		return &errors.AuthenticationError{
			Service: serviceName,
			Method:  "api_key",
			Message: "FRED rejected the API key",
			Err:     errors.ErrAPIKeyInvalid,
		}
	}

	c.logger.Warn().
		Str("endpoint", path).
		Int("status", status).
		Msg("FRED request failed")

	return &errors.APIError{
		Service:    serviceName,
		StatusCode: status,
		Endpoint:   path,
		Message:    message,
	}
}
