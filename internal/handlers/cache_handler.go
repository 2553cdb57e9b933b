package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
)

// CacheHandler handles cache invalidation and stats requests
type CacheHandler struct {
	cache  interfaces.CacheService
	logger arbor.ILogger
}

// NewCacheHandler creates a new cache handler with dependencies
func NewCacheHandler(cache interfaces.CacheService, logger arbor.ILogger) *CacheHandler {
	return &CacheHandler{
		cache:  cache,
		logger: logger,
	}
}

// ClearCache handles DELETE /cache requests. Scope narrows with the
// content_hash and linter query parameters; with neither, everything goes.
func (h *CacheHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	contentHash := r.URL.Query().Get("content_hash")
	linter := r.URL.Query().Get("linter")

	removed, err := h.cache.Invalidate(r.Context(), contentHash, linter)
	if err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	h.logger.Info().
		Str("content_hash", contentHash).
		Str("linter", linter).
		Int("removed", removed).
		Msg("Cache invalidated")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"removed": removed,
	})
}

// GetCacheStats handles GET /cache/stats requests
func (h *CacheHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"cache":   stats,
	})
}
