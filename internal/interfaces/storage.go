package interfaces

import (
	"context"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// CacheStorage - durable cache entry persistence.
// Freshness checks compare against a "now" evaluated by the store.
type CacheStorage interface {
	// GetEntry returns the newest unexpired entry for the key, or nil on miss
	GetEntry(ctx context.Context, linter, format, contentHash, optionsHash string) (*models.CacheEntry, error)

	// PutEntry upserts an entry by id
	PutEntry(ctx context.Context, entry *models.CacheEntry) error

	// Invalidation operations, each returning the number of rows deleted
	DeleteAll(ctx context.Context) (int, error)
	DeleteByContent(ctx context.Context, contentHash string) (int, error)
	DeleteByLinter(ctx context.Context, linter string) (int, error)
	DeleteByContentAndLinter(ctx context.Context, contentHash, linter string) (int, error)

	// CleanupExpired removes expired entries and returns the number removed
	CleanupExpired(ctx context.Context) (int, error)

	// CountEntries returns the number of durable entries (including expired)
	CountEntries(ctx context.Context) (int, error)
}

// JobStorage - durable lint job persistence
type JobStorage interface {
	CreateJob(ctx context.Context, job *models.LintJob) error
	GetJob(ctx context.Context, jobID string) (*models.LintJob, error)

	// UpdateJobStatus mutates the status and terminal fields of a job
	UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus, result []byte, errMsg string, durationMs int64) error

	// ListPendingJobs returns up to limit pending jobs, oldest first
	ListPendingJobs(ctx context.Context, limit int) ([]*models.LintJob, error)

	// CleanupOldJobs deletes terminal jobs older than the given number of days
	CleanupOldJobs(ctx context.Context, olderThanDays int) (int, error)

	// CountByStatus returns job counts grouped by status
	CountByStatus(ctx context.Context) (map[models.JobStatus]int, error)
}

// MetricStorage - best-effort durable request metrics
type MetricStorage interface {
	RecordMetric(ctx context.Context, metric *models.APIMetric) error
	CountMetrics(ctx context.Context) (int, error)
}

// StorageManager provides access to all storage services
type StorageManager interface {
	CacheStorage() CacheStorage
	JobStorage() JobStorage
	MetricStorage() MetricStorage

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error

	Close() error
}
