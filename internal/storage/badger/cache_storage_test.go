package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

func newCacheEntry(id, linter, contentHash string, expiresAt time.Time) *models.CacheEntry {
	return &models.CacheEntry{
		ID:          id,
		Linter:      linter,
		Format:      "json",
		ContentHash: contentHash,
		OptionsHash: "opts-1",
		Payload:     []byte(`{"issues":[]}`),
		Status:      models.CacheStatusSuccess,
		CreatedAt:   time.Now().UTC(),
		ExpiresAt:   expiresAt,
	}
}

func TestCacheStorageGetEntry(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	fresh := newCacheEntry("cache-1", "eslint", "hash-a", time.Now().UTC().Add(time.Hour))
	require.NoError(t, storage.PutEntry(ctx, fresh))

	got, err := storage.GetEntry(ctx, "eslint", "json", "hash-a", "opts-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cache-1", got.ID)
	assert.Equal(t, models.CacheStatusSuccess, got.Status)

	// Different options hash is a miss
	got, err = storage.GetEntry(ctx, "eslint", "json", "hash-a", "opts-2")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Different linter is a miss
	got, err = storage.GetEntry(ctx, "pylint", "json", "hash-a", "opts-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheStorageExpiredEntryIsMiss(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	expired := newCacheEntry("cache-1", "eslint", "hash-a", time.Now().UTC().Add(-time.Minute))
	require.NoError(t, storage.PutEntry(ctx, expired))

	got, err := storage.GetEntry(ctx, "eslint", "json", "hash-a", "opts-1")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must not be served")

	// Still counted as a durable row until cleanup runs
	count, err := storage.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCacheStorageNewestEntryWins(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	older := newCacheEntry("cache-1", "eslint", "hash-a", time.Now().UTC().Add(time.Hour))
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newCacheEntry("cache-2", "eslint", "hash-a", time.Now().UTC().Add(time.Hour))

	require.NoError(t, storage.PutEntry(ctx, older))
	require.NoError(t, storage.PutEntry(ctx, newer))

	got, err := storage.GetEntry(ctx, "eslint", "json", "hash-a", "opts-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "cache-2", got.ID)
}

func TestCacheStorageInvalidation(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	expires := time.Now().UTC().Add(time.Hour)
	require.NoError(t, storage.PutEntry(ctx, newCacheEntry("c1", "eslint", "hash-a", expires)))
	require.NoError(t, storage.PutEntry(ctx, newCacheEntry("c2", "eslint", "hash-b", expires)))
	require.NoError(t, storage.PutEntry(ctx, newCacheEntry("c3", "pylint", "hash-a", expires)))

	n, err := storage.DeleteByContentAndLinter(ctx, "hash-a", "eslint")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = storage.DeleteByLinter(ctx, "eslint")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = storage.DeleteByContent(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = storage.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCacheStorageCleanupExpired(t *testing.T) {
	db := newTestDB(t)
	storage := NewCacheStorage(db, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, storage.PutEntry(ctx, newCacheEntry("c1", "eslint", "hash-a", time.Now().UTC().Add(-time.Minute))))
	require.NoError(t, storage.PutEntry(ctx, newCacheEntry("c2", "eslint", "hash-b", time.Now().UTC().Add(time.Hour))))

	n, err := storage.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := storage.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestManagerPing(t *testing.T) {
	logger := arbor.NewLogger()
	mgr, err := NewManager(logger, &common.BadgerConfig{Path: t.TempDir() + "/db"})
	require.NoError(t, err)
	defer mgr.Close()

	require.NoError(t, mgr.Ping(context.Background()))
}
