package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/enjojoy/fredagent/internal/agent"
	"github.com/enjojoy/fredagent/internal/server/response"
	"github.com/enjojoy/fredagent/pkg/errors"
)

// queryRequest is the body of POST /query and POST /jobs.
type queryRequest struct {
	Text string `json:"text"`
}

// decodeQuery parses and validates a query request body.
func decodeQuery(r *http.Request) (string, error) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", errors.NewValidationError("body", "", "request body must be JSON with a text field")
	}
	if err := agent.ValidateQuery(req.Text); err != nil {
		return "", err
	}
	return req.Text, nil
}

// HandleQuery handles POST /api/v1/query. It runs the full pipeline
// synchronously and returns the report.
func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	query, err := decodeQuery(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.queryTimeout)
	defer cancel()

	start := time.Now()
	report, err := h.processor.Process(ctx, query)
	h.observeQuery(start, err)
	if err != nil {
		h.logger.Error().Err(err).Msg("Query failed")
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, report)
}
