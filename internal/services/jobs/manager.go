package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// Manager owns async lint jobs: it is the only component that mutates
// job records. In-flight work is bounded by the configured concurrency
// cap; submissions beyond it are rejected rather than queued deep.
type Manager struct {
	storage  interfaces.JobStorage
	pipeline interfaces.LintPipeline
	runner   interfaces.LinterRunner
	events   interfaces.EventService
	logger   arbor.ILogger

	maxConcurrent int
	jobTimeout    time.Duration

	mu       sync.Mutex
	inFlight int
	cancels  map[string]context.CancelFunc
	wg       sync.WaitGroup
	stopped  bool
}

// NewManager creates the job manager
func NewManager(
	storage interfaces.JobStorage,
	pipeline interfaces.LintPipeline,
	runner interfaces.LinterRunner,
	events interfaces.EventService,
	config *common.JobsConfig,
	logger arbor.ILogger,
) *Manager {
	return &Manager{
		storage:       storage,
		pipeline:      pipeline,
		runner:        runner,
		events:        events,
		logger:        logger,
		maxConcurrent: config.MaxConcurrent,
		jobTimeout:    config.JobTimeout,
		cancels:       make(map[string]context.CancelFunc),
	}
}

// Start reschedules jobs that were persisted as pending before a
// restart, up to the concurrency cap
func (m *Manager) Start(ctx context.Context) error {
	pending, err := m.storage.ListPendingJobs(ctx, m.maxConcurrent)
	if err != nil {
		return fmt.Errorf("failed to list pending jobs: %w", err)
	}

	for _, job := range pending {
		m.mu.Lock()
		if m.inFlight >= m.maxConcurrent {
			m.mu.Unlock()
			break
		}
		m.schedule(job)
		m.mu.Unlock()
	}

	if len(pending) > 0 {
		m.logger.Info().Int("count", len(pending)).Msg("Rescheduled persisted pending jobs")
	}
	return nil
}

// Stop cancels all in-flight jobs and waits for their goroutines
func (m *Manager) Stop() {
	m.mu.Lock()
	m.stopped = true
	for _, cancel := range m.cancels {
		cancel()
	}
	m.mu.Unlock()

	m.wg.Wait()
}

// Submit persists a pending job and schedules processing. The job id is
// returned once the record is durable, so a status poll immediately
// after submit always finds it.
func (m *Manager) Submit(ctx context.Context, linter string, format models.OutputFormat, req *models.LintRequest) (string, error) {
	// Reject bad parameters at submission, not as a failed job later
	if !m.runner.Known(linter) {
		return "", &models.ParametersError{Message: fmt.Sprintf("unknown linter: %s", linter)}
	}
	if !models.ValidFormat(string(format)) {
		return "", &models.ParametersError{Message: fmt.Sprintf("unknown format: %s", format)}
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	canonical, err := req.Options.Normalize().CanonicalJSON()
	if err != nil {
		return "", &models.ValidationError{Message: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return "", &models.ServiceUnavailableError{Message: "job manager is shutting down"}
	}
	if m.inFlight >= m.maxConcurrent {
		return "", &models.ServiceUnavailableError{
			Message: fmt.Sprintf("job limit reached (%d in flight)", m.inFlight),
		}
	}

	job := &models.LintJob{
		ID:        common.NewJobID(),
		Linter:    linter,
		Format:    format,
		Options:   string(canonical),
		Content:   req.Content,
		Archive:   req.Archive,
		Filename:  req.Filename,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := m.storage.CreateJob(ctx, job); err != nil {
		return "", &models.DatabaseError{Message: "failed to persist job", Cause: err}
	}

	m.schedule(job)

	m.logger.Info().
		Str("job_id", job.ID).
		Str("linter", linter).
		Int("in_flight", m.inFlight).
		Msg("Job submitted")

	return job.ID, nil
}

// schedule registers the cancel handle and launches processing.
// Caller holds m.mu.
func (m *Manager) schedule(job *models.LintJob) {
	jobCtx, cancel := context.WithCancel(context.Background())
	m.cancels[job.ID] = cancel
	m.inFlight++

	m.wg.Add(1)
	go m.process(jobCtx, job)
}

func (m *Manager) release(jobID string) {
	m.mu.Lock()
	if cancel, ok := m.cancels[jobID]; ok {
		cancel()
		delete(m.cancels, jobID)
	}
	m.inFlight--
	m.mu.Unlock()
}

// process runs one job to a terminal state. Events publish only after
// the terminal status is persisted, so consumers reading on an event
// always observe the final record.
func (m *Manager) process(ctx context.Context, job *models.LintJob) {
	defer m.wg.Done()
	defer m.release(job.ID)

	runCtx, cancel := context.WithTimeout(ctx, m.jobTimeout)
	defer cancel()

	// The running transition loses to a cancel that landed first
	if err := m.storage.UpdateJobStatus(context.Background(), job.ID, models.JobStatusRunning, nil, "", 0); err != nil {
		var terminal *models.JobAlreadyCancelledError
		if errors.As(err, &terminal) {
			m.logger.Debug().
				Str("job_id", job.ID).
				Str("status", string(terminal.Status)).
				Msg("Job already terminal, skipping")
			return
		}
		m.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to mark job running")
		return
	}

	start := time.Now()
	req := &models.LintRequest{
		Content:  job.Content,
		Archive:  job.Archive,
		Filename: job.Filename,
	}
	req.Options = optionsFromCanonical(job.Options)

	resp, err := m.pipeline.Execute(runCtx, job.Linter, job.Format, req)
	durationMs := time.Since(start).Milliseconds()

	switch {
	case err == nil:
		m.finish(job, models.JobStatusCompleted, resp, "", durationMs, interfaces.EventJobCompleted)

	case ctx.Err() != nil && errors.Is(err, context.Canceled):
		// Cancel() persists the terminal state before firing the handle.
		// A job aborted by shutdown instead gets marked failed here.
		current, getErr := m.storage.GetJob(context.Background(), job.ID)
		if getErr == nil && !current.IsTerminal() {
			m.finish(job, models.JobStatusFailed, nil, "aborted by shutdown", durationMs, interfaces.EventJobFailed)
			return
		}
		m.logger.Debug().Str("job_id", job.ID).Msg("Job aborted by cancellation")

	case errors.Is(err, context.DeadlineExceeded):
		m.finish(job, models.JobStatusFailed,
			nil, fmt.Sprintf("job exceeded %s limit", m.jobTimeout), durationMs, interfaces.EventJobTimeout)

	default:
		m.finish(job, models.JobStatusFailed, nil, err.Error(), durationMs, interfaces.EventJobFailed)
	}
}

// finish persists the terminal state, then publishes the event
func (m *Manager) finish(job *models.LintJob, status models.JobStatus, resp *models.LintResponse, errMsg string, durationMs int64, event interfaces.EventType) {
	var payload []byte
	if resp != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			status = models.JobStatusFailed
			errMsg = fmt.Sprintf("failed to serialize result: %v", err)
			event = interfaces.EventJobFailed
		} else {
			payload = data
		}
	}

	if err := m.storage.UpdateJobStatus(context.Background(), job.ID, status, payload, errMsg, durationMs); err != nil {
		var terminal *models.JobAlreadyCancelledError
		if errors.As(err, &terminal) {
			m.logger.Debug().Str("job_id", job.ID).Msg("Job already terminal, keeping first result")
			return
		}
		m.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist terminal job state")
		return
	}

	m.events.Publish(context.Background(), interfaces.Event{
		Type: event,
		Payload: map[string]interface{}{
			"job_id":            job.ID,
			"linter":            job.Linter,
			"status":            string(status),
			"execution_time_ms": durationMs,
		},
	})

	m.logger.Info().
		Str("job_id", job.ID).
		Str("status", string(status)).
		Int64("duration_ms", durationMs).
		Msg("Job finished")
}

// Status returns the job snapshot, or a JobNotFoundError
func (m *Manager) Status(ctx context.Context, jobID string) (*models.JobSnapshot, error) {
	job, err := m.storage.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.JobSnapshot{
		ID:              job.ID,
		Linter:          job.Linter,
		Format:          job.Format,
		Status:          job.Status,
		Error:           job.Error,
		CreatedAt:       job.CreatedAt,
		StartedAt:       job.StartedAt,
		CompletedAt:     job.CompletedAt,
		ExecutionTimeMs: job.ExecutionTimeMs,
	}

	if len(job.Result) > 0 {
		var resp models.LintResponse
		if err := json.Unmarshal(job.Result, &resp); err == nil {
			snapshot.Result = resp.Result
			if snapshot.Result == nil {
				snapshot.Result = &models.LinterResult{
					Linter:          resp.Linter,
					Success:         resp.Success,
					ExitCode:        resp.ExitCode,
					ExecutionTimeMs: resp.Metadata.ExecutionTimeMs,
					FileCount:       resp.Metadata.FileCount,
					Issues:          resp.Issues,
					ParsedOutput:    resp.ParsedOutput,
				}
			}
		}
	}

	return snapshot, nil
}

// Cancel aborts a pending or running job. It is idempotent: terminal
// jobs return false with no state change.
func (m *Manager) Cancel(ctx context.Context, jobID string) (bool, error) {
	job, err := m.storage.GetJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if job.IsTerminal() {
		return false, nil
	}

	// Persist first so the abort path in process() sees a terminal record
	if err := m.storage.UpdateJobStatus(ctx, jobID, models.JobStatusCancelled, nil, "job cancelled", 0); err != nil {
		return false, &models.DatabaseError{Message: "failed to cancel job", Cause: err}
	}

	m.mu.Lock()
	if cancel, ok := m.cancels[jobID]; ok {
		cancel()
	}
	m.mu.Unlock()

	m.events.Publish(context.Background(), interfaces.Event{
		Type: interfaces.EventJobCancelled,
		Payload: map[string]interface{}{
			"job_id": jobID,
			"status": string(models.JobStatusCancelled),
		},
	})

	m.logger.Info().Str("job_id", jobID).Msg("Job cancelled")
	return true, nil
}

// Stats returns current and historical job counts
func (m *Manager) Stats(ctx context.Context) (*models.JobStats, error) {
	counts, err := m.storage.CountByStatus(ctx)
	if err != nil {
		return nil, &models.DatabaseError{Message: "failed to count jobs", Cause: err}
	}

	return &models.JobStats{
		Running:   counts[models.JobStatusRunning],
		Pending:   counts[models.JobStatusPending],
		Completed: counts[models.JobStatusCompleted],
		Failed:    counts[models.JobStatusFailed],
		Cancelled: counts[models.JobStatusCancelled],
	}, nil
}

// optionsFromCanonical rebuilds LintOptions from the canonical form
// persisted with the job. The canonical form is a superset of the
// options shape, so decode errors only occur on corrupt records.
func optionsFromCanonical(canonical string) *models.LintOptions {
	if canonical == "" {
		return nil
	}
	var opts models.LintOptions
	if err := json.Unmarshal([]byte(canonical), &opts); err != nil {
		return nil
	}
	return &opts
}

var _ interfaces.JobService = (*Manager)(nil)
