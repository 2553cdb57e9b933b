package interfaces

import (
	"context"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// CacheService provides fingerprinting and the two-tier result cache
type CacheService interface {
	// ContentHash returns the SHA-256 hex digest of raw submission bytes
	ContentHash(data []byte) string

	// OptionsHash returns the SHA-256 hex digest of the canonical options form
	OptionsHash(opts *models.LintOptions) (string, error)

	// Get returns the cached entry for the key, or nil on miss.
	// Read failures are demoted to a miss with a warning log.
	Get(ctx context.Context, linter, format, contentHash, optionsHash string) *models.CacheEntry

	// Put records a finished result with the configured TTL
	Put(ctx context.Context, entry *models.CacheEntry) error

	// Invalidate removes entries scoped by content hash and/or linter.
	// Empty arguments widen the scope; both empty removes everything.
	Invalidate(ctx context.Context, contentHash, linter string) (int, error)

	// Stats returns session hit/miss counters and durable totals
	Stats(ctx context.Context) (*models.CacheStats, error)
}
