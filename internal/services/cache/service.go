package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// Service implements the two-tier result cache: an in-process expirable
// LRU in front of the durable Badger store. The hot tier is an
// optimization only; the durable tier is the source of truth.
type Service struct {
	storage interfaces.CacheStorage
	hot     *expirable.LRU[string, *models.CacheEntry]
	ttl     time.Duration
	hits    atomic.Int64
	misses  atomic.Int64
	logger  arbor.ILogger
}

// NewService creates a new cache service
func NewService(storage interfaces.CacheStorage, config *common.CacheConfig, logger arbor.ILogger) interfaces.CacheService {
	return &Service{
		storage: storage,
		hot:     expirable.NewLRU[string, *models.CacheEntry](config.HotSize, nil, config.TTL),
		ttl:     config.TTL,
		logger:  logger,
	}
}

// ContentHash returns the SHA-256 hex digest of raw submission bytes
func (s *Service) ContentHash(data []byte) string {
	return ContentFingerprint(data)
}

// OptionsHash returns the SHA-256 hex digest of the canonical options form
func (s *Service) OptionsHash(opts *models.LintOptions) (string, error) {
	return OptionsFingerprint(opts)
}

func hotKey(linter, format, contentHash, optionsHash string) string {
	return contentHash + "|" + linter + "|" + format + "|" + optionsHash
}

// Get returns the cached entry for the key, or nil on miss. A durable
// read failure is logged and demoted to a miss so callers fall through
// to execution.
func (s *Service) Get(ctx context.Context, linter, format, contentHash, optionsHash string) *models.CacheEntry {
	key := hotKey(linter, format, contentHash, optionsHash)

	if entry, ok := s.hot.Get(key); ok {
		if entry.IsValid(time.Now().UTC()) {
			s.hits.Add(1)
			return entry
		}
		s.hot.Remove(key)
	}

	entry, err := s.storage.GetEntry(ctx, linter, format, contentHash, optionsHash)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("linter", linter).
			Msg("Cache read failed, treating as miss")
		s.misses.Add(1)
		return nil
	}
	if entry == nil {
		s.misses.Add(1)
		return nil
	}

	s.hits.Add(1)
	s.hot.Add(key, entry)
	return entry
}

// Put records a finished result in both tiers with the configured TTL
func (s *Service) Put(ctx context.Context, entry *models.CacheEntry) error {
	now := time.Now().UTC()
	if entry.ID == "" {
		entry.ID = common.NewCacheEntryID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = now.Add(s.ttl)
	}

	if err := s.storage.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}

	s.hot.Add(hotKey(entry.Linter, entry.Format, entry.ContentHash, entry.OptionsHash), entry)
	return nil
}

// Invalidate removes entries scoped by content hash and/or linter.
// Empty arguments widen the scope; both empty removes everything.
// The hot tier is purged wholesale since it cannot be queried by field.
func (s *Service) Invalidate(ctx context.Context, contentHash, linter string) (int, error) {
	var (
		count int
		err   error
	)

	switch {
	case contentHash != "" && linter != "":
		count, err = s.storage.DeleteByContentAndLinter(ctx, contentHash, linter)
	case contentHash != "":
		count, err = s.storage.DeleteByContent(ctx, contentHash)
	case linter != "":
		count, err = s.storage.DeleteByLinter(ctx, linter)
	default:
		count, err = s.storage.DeleteAll(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to invalidate cache: %w", err)
	}

	s.hot.Purge()

	s.logger.Info().
		Int("deleted", count).
		Str("content_hash", contentHash).
		Str("linter", linter).
		Msg("Cache invalidated")

	return count, nil
}

// Stats returns session hit/miss counters and durable totals
func (s *Service) Stats(ctx context.Context) (*models.CacheStats, error) {
	total, err := s.storage.CountEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count cache entries: %w", err)
	}

	return &models.CacheStats{
		Hits:         s.hits.Load(),
		Misses:       s.misses.Load(),
		TotalEntries: total,
		HotEntries:   s.hot.Len(),
	}, nil
}

// CleanupExpired removes expired durable rows; wired to the scheduler
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	return s.storage.CleanupExpired(ctx)
}
