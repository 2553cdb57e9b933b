package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// CacheStorage implements the CacheStorage interface for Badger
type CacheStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCacheStorage creates a new CacheStorage instance
func NewCacheStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CacheStorage {
	return &CacheStorage{
		db:     db,
		logger: logger,
	}
}

// GetEntry returns the newest unexpired entry for the key, or nil on miss.
// The freshness comparison uses a now evaluated here, inside the store.
func (s *CacheStorage) GetEntry(ctx context.Context, linter, format, contentHash, optionsHash string) (*models.CacheEntry, error) {
	now := time.Now().UTC()

	query := badgerhold.Where("ContentHash").Eq(contentHash).
		And("Linter").Eq(linter).
		And("Format").Eq(format).
		And("OptionsHash").Eq(optionsHash).
		And("ExpiresAt").Gt(now)

	var entries []models.CacheEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil
	}

	// Stale rows may coexist with a later write; serve the newest
	newest := entries[0]
	for _, e := range entries[1:] {
		if e.CreatedAt.After(newest.CreatedAt) {
			newest = e
		}
	}
	return &newest, nil
}

// PutEntry upserts an entry by id
func (s *CacheStorage) PutEntry(ctx context.Context, entry *models.CacheEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("cache entry ID is required")
	}
	if err := s.db.Store().Upsert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to save cache entry: %w", err)
	}
	return nil
}

// DeleteAll removes every cache entry
func (s *CacheStorage) DeleteAll(ctx context.Context) (int, error) {
	return s.deleteMatching(nil)
}

// DeleteByContent removes entries for one content hash
func (s *CacheStorage) DeleteByContent(ctx context.Context, contentHash string) (int, error) {
	return s.deleteMatching(badgerhold.Where("ContentHash").Eq(contentHash))
}

// DeleteByLinter removes entries for one linter
func (s *CacheStorage) DeleteByLinter(ctx context.Context, linter string) (int, error) {
	return s.deleteMatching(badgerhold.Where("Linter").Eq(linter))
}

// DeleteByContentAndLinter removes entries for one (content, linter) pair
func (s *CacheStorage) DeleteByContentAndLinter(ctx context.Context, contentHash, linter string) (int, error) {
	return s.deleteMatching(badgerhold.Where("ContentHash").Eq(contentHash).And("Linter").Eq(linter))
}

// CleanupExpired removes expired entries and returns the number removed
func (s *CacheStorage) CleanupExpired(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	return s.deleteMatching(badgerhold.Where("ExpiresAt").Le(now))
}

// CountEntries returns the number of durable entries, including expired ones
func (s *CacheStorage) CountEntries(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.CacheEntry{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return int(count), nil
}

// deleteMatching counts the matching rows, then removes them.
// BadgerHold's DeleteMatching does not report the affected row count.
func (s *CacheStorage) deleteMatching(query *badgerhold.Query) (int, error) {
	count, err := s.db.Store().Count(&models.CacheEntry{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count cache entries for deletion: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	if err := s.db.Store().DeleteMatching(&models.CacheEntry{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete cache entries: %w", err)
	}
	return int(count), nil
}
