package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

func sampleResponse(format models.OutputFormat) *models.LintResponse {
	return &models.LintResponse{
		Success:  false,
		Linter:   "eslint",
		Format:   format,
		ExitCode: 1,
		Issues: []models.Issue{
			{
				File:     "app.js",
				Line:     3,
				Column:   10,
				Severity: models.SeverityError,
				Message:  "Unexpected console statement.",
				Rule:     "no-console",
			},
		},
		Metadata: models.LintResponseMetadata{ExecutionTimeMs: 120, FileCount: 1},
		Result: &models.LinterResult{
			Linter:   "eslint",
			ExitCode: 1,
			Stdout:   "app.js:3:10 error no-console\n",
			Stderr:   "",
		},
	}
}

func TestWriteLintResponseJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteLintResponse(rec, sampleResponse(models.FormatJSON)))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var body models.LintResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "eslint", body.Linter)
	assert.Len(t, body.Issues, 1)
	assert.Equal(t, "no-console", body.Issues[0].Rule)
}

func TestWriteLintResponseText(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteLintResponse(rec, sampleResponse(models.FormatText)))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "1", rec.Header().Get("X-Exit-Code"))
	assert.Contains(t, rec.Body.String(), "no-console")
}

func TestWriteLintResponseTextEmptyOutput(t *testing.T) {
	resp := sampleResponse(models.FormatText)
	resp.Success = true
	resp.Result.Stdout = ""

	rec := httptest.NewRecorder()
	require.NoError(t, WriteLintResponse(rec, resp))
	assert.Contains(t, rec.Body.String(), "no issues found")
}

func TestWriteLintResponseSARIF(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteLintResponse(rec, sampleResponse(models.FormatSARIF)))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/sarif+json", rec.Header().Get("Content-Type"))

	var log models.SARIFLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &log))
	assert.Equal(t, models.SARIFVersion, log.Version)
	require.Len(t, log.Runs, 1)
	assert.Equal(t, "eslint", log.Runs[0].Tool.Driver.Name)
	require.Len(t, log.Runs[0].Results, 1)
	assert.Equal(t, "no-console", log.Runs[0].Results[0].RuleID)
	assert.Equal(t, "error", log.Runs[0].Results[0].Level)
}
