package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/enjojoy/fredagent/internal/server/cache"
	"github.com/enjojoy/fredagent/internal/server/response"
	"github.com/enjojoy/fredagent/pkg/analysis"
	"github.com/enjojoy/fredagent/pkg/constants"
	"github.com/enjojoy/fredagent/pkg/errors"
	"github.com/enjojoy/fredagent/pkg/fred"
)

// HandleSearch handles GET /api/v1/search?q=&limit=.
// Results are cached so repeated searches don't hit FRED.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		response.BadRequest(w, "Missing search text", "Provide the q query parameter")
		return
	}

	limit := constants.DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.BadRequest(w, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > constants.MaxSearchLimit {
		limit = constants.MaxSearchLimit
	}

	key := cache.SearchKey(q, limit)
	if cached, ok := h.cache.Get(key); ok {
		response.OK(w, cached)
		return
	}

	matches, err := h.finder.SearchSeries(r.Context(), q, limit)
	h.observeFRED("series/search", err)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	data := map[string]any{
		"count":  len(matches),
		"series": matches,
	}
	h.cache.Set(key, data)
	response.OK(w, data)
}

// seriesDetail is the payload for GET /series/{id}.
type seriesDetail struct {
	Series       fred.SeriesInfo    `json:"series"`
	Stats        analysis.Stats     `json:"stats"`
	Observations []fred.Observation `json:"observations"`
}

// HandleGetSeries handles GET /api/v1/series/{id}. It returns series
// metadata, computed statistics, and the recent observation window.
func (h *Handlers) HandleGetSeries(w http.ResponseWriter, r *http.Request, seriesID string) {
	if seriesID == "" {
		response.BadRequest(w, "Missing series ID", "")
		return
	}
	seriesID = strings.ToUpper(seriesID)

	key := cache.SeriesKey(seriesID)
	if cached, ok := h.cache.Get(key); ok {
		response.OK(w, cached)
		return
	}

	info, err := h.finder.SeriesInfo(r.Context(), seriesID)
	h.observeFRED("series", err)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	start := time.Now().UTC().AddDate(-constants.DefaultObservationYears, 0, 0)
	observations, err := h.finder.Observations(r.Context(), seriesID, fred.ObservationOptions{
		Start:     start,
		SortOrder: "asc",
	})
	h.observeFRED("series/observations", err)
	if err != nil && !errors.IsNotFound(err) {
		response.ErrorFromType(w, err)
		return
	}

	detail := seriesDetail{
		Series:       *info,
		Stats:        analysis.Compute(observations),
		Observations: observations,
	}
	h.cache.Set(key, detail)
	response.OK(w, detail)
}
