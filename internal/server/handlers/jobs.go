package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/enjojoy/fredagent/internal/server/response"
)

// HandleStartJob handles POST /api/v1/jobs. It validates the query,
// registers a job, and runs the pipeline in the background.
func (h *Handlers) HandleStartJob(w http.ResponseWriter, r *http.Request) {
	query, err := decodeQuery(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	job := h.jobs.Create(query)
	h.metrics.JobsActive.Inc()

	go h.runJob(job.ID, query)

	response.Accepted(w, map[string]any{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// runJob executes the pipeline for a job, detached from the request.
// It runs outside the middleware chain, so it recovers on its own.
func (h *Handlers) runJob(jobID, query string) {
	defer h.metrics.JobsActive.Dec()
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().
				Interface("panic", rec).
				Str("job_id", jobID).
				Msg("Job panicked")
			h.jobs.Fail(jobID, "internal error")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), h.queryTimeout)
	defer cancel()

	h.jobs.SetRunning(jobID)
	start := time.Now()

	report, err := h.processor.Process(ctx, query)
	h.observeQuery(start, err)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Job failed")
		h.jobs.Fail(jobID, err.Error())
		return
	}

	h.jobs.Complete(jobID, report)
}

// HandleGetJob handles GET /api/v1/jobs/{id}.
func (h *Handlers) HandleGetJob(w http.ResponseWriter, _ *http.Request, jobID string) {
	job, err := h.jobs.Get(jobID)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, job)
}
