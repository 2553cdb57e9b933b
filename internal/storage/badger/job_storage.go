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

// JobStorage implements the JobStorage interface for Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) CreateJob(ctx context.Context, job *models.LintJob) error {
	if job.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, jobID string) (*models.LintJob, error) {
	var job models.LintJob
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, &models.JobNotFoundError{JobID: jobID}
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// UpdateJobStatus mutates the status and terminal fields of a job.
// Terminal states are final: any transition out of one is refused, so a
// cancel that lands before the running transition sticks. Writes are
// serialized per row by the store.
func (s *JobStorage) UpdateJobStatus(ctx context.Context, jobID string, status models.JobStatus, result []byte, errMsg string, durationMs int64) error {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if job.IsTerminal() {
		return &models.JobAlreadyCancelledError{JobID: jobID, Status: job.Status}
	}

	switch status {
	case models.JobStatusRunning:
		job.MarkStarted()
	case models.JobStatusCompleted:
		job.MarkCompleted(result, durationMs)
	case models.JobStatusFailed:
		job.MarkFailed(errMsg, durationMs)
	case models.JobStatusCancelled:
		job.Error = errMsg
		job.MarkCancelled()
	default:
		job.Status = status
	}

	if err := s.db.Store().Upsert(job.ID, job); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// ListPendingJobs returns up to limit pending jobs, oldest first
func (s *JobStorage) ListPendingJobs(ctx context.Context, limit int) ([]*models.LintJob, error) {
	query := badgerhold.Where("Status").Eq(models.JobStatusPending).SortBy("CreatedAt")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var jobs []models.LintJob
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to list pending jobs: %w", err)
	}

	result := make([]*models.LintJob, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

// CleanupOldJobs deletes terminal jobs older than the given number of days
func (s *JobStorage) CleanupOldJobs(ctx context.Context, olderThanDays int) (int, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	query := badgerhold.Where("Status").In(
		models.JobStatusCompleted,
		models.JobStatusFailed,
		models.JobStatusCancelled,
	).And("CreatedAt").Lt(cutoff)

	count, err := s.db.Store().Count(&models.LintJob{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count old jobs: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	if err := s.db.Store().DeleteMatching(&models.LintJob{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete old jobs: %w", err)
	}
	return int(count), nil
}

// CountByStatus returns job counts grouped by status
func (s *JobStorage) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	counts := make(map[models.JobStatus]int)
	statuses := []models.JobStatus{
		models.JobStatusPending,
		models.JobStatusRunning,
		models.JobStatusCompleted,
		models.JobStatusFailed,
		models.JobStatusCancelled,
	}
	for _, status := range statuses {
		count, err := s.db.Store().Count(&models.LintJob{}, badgerhold.Where("Status").Eq(status))
		if err != nil {
			return nil, fmt.Errorf("failed to count jobs by status %s: %w", status, err)
		}
		counts[status] = int(count)
	}
	return counts, nil
}
