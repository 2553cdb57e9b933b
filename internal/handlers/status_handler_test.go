package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

type stubStorageManager struct {
	pingErr error
}

func (m *stubStorageManager) CacheStorage() interfaces.CacheStorage   { return nil }
func (m *stubStorageManager) JobStorage() interfaces.JobStorage       { return nil }
func (m *stubStorageManager) MetricStorage() interfaces.MetricStorage { return nil }
func (m *stubStorageManager) Ping(ctx context.Context) error          { return m.pingErr }
func (m *stubStorageManager) Close() error                            { return nil }

func TestHealthHealthy(t *testing.T) {
	runner := &stubRunner{linters: []interfaces.LinterInfo{
		{Name: "eslint", Available: true},
		{Name: "pylint", Available: false},
	}}
	h := NewStatusHandler(&stubStorageManager{}, &stubJobs{stats: &models.JobStats{Running: 1}}, runner, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodGet, "/health", "", nil)
	h.Health(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["version"])
	assert.Contains(t, body, "jobs")

	linters, ok := body["linters"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, linters["total"])
	assert.EqualValues(t, 1, linters["available"])
}

func TestHealthDegradedOnStorageFailure(t *testing.T) {
	storage := &stubStorageManager{pingErr: &models.DatabaseError{Message: "store closed"}}
	h := NewStatusHandler(storage, &stubJobs{stats: &models.JobStats{}}, &stubRunner{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodGet, "/health", "", nil)
	h.Health(rec, r)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
}
