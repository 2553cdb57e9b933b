package server

import (
	"net/http"

	"github.com/ArcBlock/super-linter-api-sub000/internal/handlers"
)

// Handlers bundles the HTTP handlers the router dispatches to
type Handlers struct {
	Lint      *handlers.LintHandler
	Jobs      *handlers.JobHandler
	Cache     *handlers.CacheHandler
	Linters   *handlers.LintersHandler
	Status    *handlers.StatusHandler
	WebSocket *handlers.WebSocketHandler
	Metrics   http.Handler
}

// buildRouter wires the route table. Literal segments take precedence
// over wildcards, so service routes like /jobs and /cache never collide
// with the {linter}/{format} lint routes.
func buildRouter(h *Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Status.Health)
	mux.HandleFunc("GET /linters", h.Linters.ListLinters)

	mux.HandleFunc("DELETE /cache", h.Cache.ClearCache)
	mux.HandleFunc("GET /cache/stats", h.Cache.GetCacheStats)

	mux.HandleFunc("GET /jobs/stats", h.Jobs.GetJobStats)
	mux.HandleFunc("GET /jobs/{id}", h.Jobs.GetJob)
	mux.HandleFunc("DELETE /jobs/{id}", h.Jobs.CancelJob)

	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}
	if h.WebSocket != nil {
		mux.HandleFunc("GET /ws", h.WebSocket.HandleWebSocket)
	}

	mux.HandleFunc("POST /{linter}/{format}", h.Lint.Lint)
	mux.HandleFunc("POST /{linter}/{format}/async", h.Lint.LintAsync)
	mux.HandleFunc("GET /{linter}/{format}/{encoded}", h.Lint.LintEncoded)

	return mux
}
