package interfaces

import (
	"context"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// LintPipeline drives one validated request through cache, workspace and
// runner. Both the sync handlers and the async job manager use it.
type LintPipeline interface {
	Execute(ctx context.Context, linter string, format models.OutputFormat, req *models.LintRequest) (*models.LintResponse, error)
}

// JobService owns async job records and all their state transitions
type JobService interface {
	// Submit persists a pending job and schedules processing.
	// Submissions beyond the concurrency cap are rejected.
	Submit(ctx context.Context, linter string, format models.OutputFormat, req *models.LintRequest) (string, error)

	// Status returns the job snapshot, or a JobNotFoundError
	Status(ctx context.Context, jobID string) (*models.JobSnapshot, error)

	// Cancel aborts a pending or running job. Returns false without
	// mutating state when the job is already terminal.
	Cancel(ctx context.Context, jobID string) (bool, error)

	// Stats returns current and historical job counts
	Stats(ctx context.Context) (*models.JobStats, error)
}
