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

type stubRunner struct {
	linters []interfaces.LinterInfo
}

func (r *stubRunner) Run(ctx context.Context, linter string, workspace *models.Workspace, opts *models.NormalizedOptions) (*models.LinterResult, error) {
	return nil, nil
}

func (r *stubRunner) Known(linter string) bool { return false }

func (r *stubRunner) List(ctx context.Context) []interfaces.LinterInfo { return r.linters }

func TestListLinters(t *testing.T) {
	runner := &stubRunner{
		linters: []interfaces.LinterInfo{
			{Name: "eslint", Executable: "eslint", Available: true, Version: "9.1.0"},
			{Name: "pylint", Executable: "pylint", Available: false},
		},
	}
	h := NewLintersHandler(runner, arbor.NewLogger())

	rec := httptest.NewRecorder()
	r := lintRequest(t, http.MethodGet, "/linters", "", nil)
	h.ListLinters(rec, r)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool                    `json:"success"`
		Count   int                     `json:"count"`
		Linters []interfaces.LinterInfo `json:"linters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Linters, 2)
	assert.True(t, body.Linters[0].Available)
	assert.Equal(t, "9.1.0", body.Linters[0].Version)
}
