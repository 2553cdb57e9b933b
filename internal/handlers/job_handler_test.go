package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

func TestGetJob(t *testing.T) {
	jobs := &stubJobs{
		snapshot: &models.JobSnapshot{
			ID:        "job_1",
			Linter:    "eslint",
			Format:    models.FormatJSON,
			Status:    models.JobStatusCompleted,
			CreatedAt: time.Now().UTC(),
		},
	}
	h := NewJobHandler(jobs, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodGet, "/jobs/job_1", "", map[string]string{"id": "job_1"})
	h.GetJob(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                `json:"success"`
		Job     *models.JobSnapshot `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "job_1", body.Job.ID)
	assert.Equal(t, models.JobStatusCompleted, body.Job.Status)
}

func TestGetJobNotFound(t *testing.T) {
	jobs := &stubJobs{statusErr: &models.JobNotFoundError{JobID: "missing"}}
	h := NewJobHandler(jobs, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodGet, "/jobs/missing", "", map[string]string{"id": "missing"})
	h.GetJob(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.ErrCodeJobNotFound, envelope.Error.Code)
}

func TestCancelJob(t *testing.T) {
	jobs := &stubJobs{cancelled: true}
	h := NewJobHandler(jobs, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodDelete, "/jobs/job_1", "", map[string]string{"id": "job_1"})
	h.CancelJob(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(models.JobStatusCancelled), body["status"])
}

func TestCancelJobAlreadyTerminal(t *testing.T) {
	jobs := &stubJobs{
		cancelled: false,
		snapshot:  &models.JobSnapshot{ID: "job_1", Status: models.JobStatusCompleted},
	}
	h := NewJobHandler(jobs, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodDelete, "/jobs/job_1", "", map[string]string{"id": "job_1"})
	h.CancelJob(rec, r)

	assert.Equal(t, http.StatusConflict, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, models.ErrCodeJobAlreadyCancelled, envelope.Error.Code)
}

func TestCancelUnknownJob(t *testing.T) {
	jobs := &stubJobs{cancelErr: &models.JobNotFoundError{JobID: "missing"}}
	h := NewJobHandler(jobs, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodDelete, "/jobs/missing", "", map[string]string{"id": "missing"})
	h.CancelJob(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJobStats(t *testing.T) {
	jobs := &stubJobs{stats: &models.JobStats{Running: 2, Completed: 5}}
	h := NewJobHandler(jobs, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodGet, "/jobs/stats", "", nil)
	h.GetJobStats(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool             `json:"success"`
		Jobs    *models.JobStats `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Jobs.Running)
	assert.Equal(t, 5, body.Jobs.Completed)
}
