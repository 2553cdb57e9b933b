package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
)

// LintersHandler serves the linter catalog with runtime availability
type LintersHandler struct {
	runner interfaces.LinterRunner
	logger arbor.ILogger
}

// NewLintersHandler creates a new linters handler with dependencies
func NewLintersHandler(runner interfaces.LinterRunner, logger arbor.ILogger) *LintersHandler {
	return &LintersHandler{
		runner: runner,
		logger: logger,
	}
}

// ListLinters handles GET /linters requests
func (h *LintersHandler) ListLinters(w http.ResponseWriter, r *http.Request) {
	linters := h.runner.List(r.Context())

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(linters),
		"linters": linters,
	})
}
