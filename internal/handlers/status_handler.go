package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
)

// StatusHandler serves liveness and readiness information
type StatusHandler struct {
	storage interfaces.StorageManager
	jobs    interfaces.JobService
	runner  interfaces.LinterRunner
	started time.Time
	logger  arbor.ILogger
}

// NewStatusHandler creates a new status handler with dependencies
func NewStatusHandler(storage interfaces.StorageManager, jobs interfaces.JobService, runner interfaces.LinterRunner, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		storage: storage,
		jobs:    jobs,
		runner:  runner,
		started: time.Now().UTC(),
		logger:  logger,
	}
}

// Health handles GET /health requests. Storage unavailability degrades
// the service rather than failing the probe outright.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK
	checks := map[string]string{
		"storage": "ok",
	}

	if err := h.storage.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("Health check: storage ping failed")
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
		checks["storage"] = err.Error()
	}

	body := map[string]interface{}{
		"status":         status,
		"version":        common.GetVersion(),
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"checks":         checks,
	}

	if stats, err := h.jobs.Stats(r.Context()); err == nil {
		body["jobs"] = stats
	}

	linters := h.runner.List(r.Context())
	available := 0
	for _, info := range linters {
		if info.Available {
			available++
		}
	}
	body["linters"] = map[string]int{
		"total":     len(linters),
		"available": available,
	}

	WriteJSON(w, httpStatus, body)
}
