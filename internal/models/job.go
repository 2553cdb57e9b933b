package models

import "time"

// JobStatus tracks the lifecycle of an async lint job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// IsTerminal reports whether the status permits no further transitions
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// LintJob is the durable record of an async lint request. The job manager
// is the only component that mutates these records; result is present iff
// status is completed, error iff status is failed or cancelled.
type LintJob struct {
	ID       string       `json:"id" badgerhold:"key"`
	Linter   string       `json:"linter"`
	Format   OutputFormat `json:"format"`
	Options  string       `json:"options"` // canonical serialized form

	// Input: exactly one of Content or Archive is set
	Content  *string `json:"content,omitempty"`
	Archive  *string `json:"archive,omitempty"` // base64 gzip tar
	Filename string  `json:"filename,omitempty"`

	Status JobStatus `json:"status"`
	Result []byte    `json:"result,omitempty"`
	Error  string    `json:"error,omitempty"`

	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	ExecutionTimeMs int64      `json:"execution_time_ms,omitempty"`
}

// MarkStarted transitions the job to running
func (j *LintJob) MarkStarted() {
	j.Status = JobStatusRunning
	now := time.Now().UTC()
	j.StartedAt = &now
}

// MarkCompleted transitions the job to completed with its serialized result
func (j *LintJob) MarkCompleted(result []byte, durationMs int64) {
	j.Status = JobStatusCompleted
	j.Result = result
	j.Error = ""
	j.ExecutionTimeMs = durationMs
	now := time.Now().UTC()
	j.CompletedAt = &now
}

// MarkFailed transitions the job to failed with an error message
func (j *LintJob) MarkFailed(errMsg string, durationMs int64) {
	j.Status = JobStatusFailed
	j.Result = nil
	j.Error = errMsg
	j.ExecutionTimeMs = durationMs
	now := time.Now().UTC()
	j.CompletedAt = &now
}

// MarkCancelled transitions the job to cancelled
func (j *LintJob) MarkCancelled() {
	j.Status = JobStatusCancelled
	j.Result = nil
	if j.Error == "" {
		j.Error = "job cancelled"
	}
	now := time.Now().UTC()
	j.CompletedAt = &now
}

// IsTerminal reports whether the job reached a terminal state
func (j *LintJob) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// JobStats summarizes current and historical job counts
type JobStats struct {
	Running   int `json:"running"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
}

// JobSnapshot is the API view of a job returned by status reads
type JobSnapshot struct {
	ID              string        `json:"id"`
	Linter          string        `json:"linter"`
	Format          OutputFormat  `json:"format"`
	Status          JobStatus     `json:"status"`
	Result          *LinterResult `json:"result,omitempty"`
	Error           string        `json:"error,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	ExecutionTimeMs int64         `json:"execution_time_ms,omitempty"`
}
