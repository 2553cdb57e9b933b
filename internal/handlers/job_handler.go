package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// JobHandler handles async job status and cancellation requests
type JobHandler struct {
	jobs   interfaces.JobService
	logger arbor.ILogger
}

// NewJobHandler creates a new job handler with dependencies
func NewJobHandler(jobs interfaces.JobService, logger arbor.ILogger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// GetJob handles GET /jobs/{id} requests
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	snapshot, err := h.jobs.Status(r.Context(), jobID)
	if err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job":     snapshot,
	})
}

// CancelJob handles DELETE /jobs/{id} requests. Cancelling a job that
// already reached a terminal state is a conflict, not a cancellation.
func (h *JobHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	cancelled, err := h.jobs.Cancel(r.Context(), jobID)
	if err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	if !cancelled {
		status := models.JobStatus("")
		if snapshot, serr := h.jobs.Status(r.Context(), jobID); serr == nil {
			status = snapshot.Status
		}
		WriteErrorResponse(w, r, &models.JobAlreadyCancelledError{JobID: jobID, Status: status})
		return
	}

	h.logger.Info().Str("job_id", jobID).Msg("Job cancelled")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job_id":  jobID,
		"status":  models.JobStatusCancelled,
	})
}

// GetJobStats handles GET /jobs/stats requests
func (h *JobHandler) GetJobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.jobs.Stats(r.Context())
	if err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"jobs":    stats,
	})
}
