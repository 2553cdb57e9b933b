package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// maxRequestBodyBytes caps lint submission bodies before decoding
const maxRequestBodyBytes = 64 * 1024 * 1024

// LintRecorder receives execution outcomes for the metrics pipeline
type LintRecorder interface {
	RecordLintRun(linter, outcome string)
	RecordCacheLookup(hit bool)
}

// LintHandler handles sync and async lint submissions
type LintHandler struct {
	pipeline interfaces.LintPipeline
	jobs     interfaces.JobService
	recorder LintRecorder
	logger   arbor.ILogger
}

// NewLintHandler creates a new lint handler with dependencies
func NewLintHandler(pipeline interfaces.LintPipeline, jobs interfaces.JobService, recorder LintRecorder, logger arbor.ILogger) *LintHandler {
	return &LintHandler{
		pipeline: pipeline,
		jobs:     jobs,
		recorder: recorder,
		logger:   logger,
	}
}

// Lint handles POST /{linter}/{format} requests
func (h *LintHandler) Lint(w http.ResponseWriter, r *http.Request) {
	linter := r.PathValue("linter")
	format := r.PathValue("format")

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req models.LintRequest
	if err := DecodeBody(r, &req); err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	h.execute(w, r, linter, format, &req)
}

// LintEncoded handles GET /{linter}/{format}/{encoded} requests. The
// path segment carries the source compressed with raw DEFLATE and
// base64-encoded; options beyond filename and fix come from the query.
func (h *LintHandler) LintEncoded(w http.ResponseWriter, r *http.Request) {
	linter := r.PathValue("linter")
	format := r.PathValue("format")

	content, err := DecodeURLPayload(r.PathValue("encoded"))
	if err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	req := models.LintRequest{
		Content:  &content,
		Filename: r.URL.Query().Get("filename"),
	}
	if opts := optionsFromQuery(r); opts != nil {
		req.Options = opts
	}

	h.execute(w, r, linter, format, &req)
}

// LintAsync handles POST /{linter}/{format}/async requests
func (h *LintHandler) LintAsync(w http.ResponseWriter, r *http.Request) {
	linter := r.PathValue("linter")
	format := r.PathValue("format")

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	var req models.LintRequest
	if err := DecodeBody(r, &req); err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	jobID, err := h.jobs.Submit(r.Context(), linter, models.OutputFormat(format), &req)
	if err != nil {
		WriteErrorResponse(w, r, err)
		return
	}

	h.logger.Info().
		Str("job_id", jobID).
		Str("linter", linter).
		Str("format", format).
		Msg("Async lint job accepted")

	WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"job_id":  jobID,
		"status":  models.JobStatusPending,
	})
}

func (h *LintHandler) execute(w http.ResponseWriter, r *http.Request, linter, format string, req *models.LintRequest) {
	resp, err := h.pipeline.Execute(r.Context(), linter, models.OutputFormat(format), req)
	if err != nil {
		h.record(linter, nil, err)
		WriteErrorResponse(w, r, err)
		return
	}

	resp.Metadata.RequestID = RequestIDFromContext(r.Context())
	if resp.Metadata.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	h.record(linter, resp, nil)

	if err := WriteLintResponse(w, resp); err != nil {
		h.logger.Warn().Err(err).Str("linter", linter).Msg("Failed to write lint response")
	}
}

func (h *LintHandler) record(linter string, resp *models.LintResponse, err error) {
	if h.recorder == nil {
		return
	}
	if err != nil {
		switch models.CodeForError(err) {
		case models.ErrCodeTimeout, models.ErrCodeLinterExecutionFailed:
			h.recorder.RecordLintRun(linter, "failed")
		}
		return
	}

	h.recorder.RecordCacheLookup(resp.Metadata.CacheHit)
	if !resp.Metadata.CacheHit {
		outcome := "success"
		if !resp.Success {
			outcome = "error"
		}
		h.recorder.RecordLintRun(linter, outcome)
	}
}

// optionsFromQuery maps supported query parameters onto lint options.
// Returns nil when no option parameter is present so defaults apply.
func optionsFromQuery(r *http.Request) *models.LintOptions {
	q := r.URL.Query()

	opts := &models.LintOptions{}
	found := false

	if v := q.Get("fix"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Fix = b
			found = true
		}
	}
	if v := q.Get("timeout"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.Timeout = n
			found = true
		}
	}
	if v := q.Get("log_level"); v != "" {
		opts.LogLevel = v
		found = true
	}
	if v := q.Get("validate_all"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.ValidateAll = b
			found = true
		}
	}

	if !found {
		return nil
	}
	return opts
}
