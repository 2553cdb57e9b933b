package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// Service is the synchronous lint pipeline: validate, consult the
// cache, materialize a workspace, run the linter, record the result.
type Service struct {
	cache      interfaces.CacheService
	workspaces interfaces.WorkspaceService
	runner     interfaces.LinterRunner
	validate   *validator.Validate
	logger     arbor.ILogger
}

// NewService creates the pipeline
func NewService(
	cache interfaces.CacheService,
	workspaces interfaces.WorkspaceService,
	runner interfaces.LinterRunner,
	logger arbor.ILogger,
) *Service {
	return &Service{
		cache:      cache,
		workspaces: workspaces,
		runner:     runner,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Execute drives one request end to end. Cache hits skip execution
// entirely; finished runs are recorded with the configured TTL, and a
// cache write failure degrades to a warning since the result is already
// in hand.
func (s *Service) Execute(ctx context.Context, linter string, format models.OutputFormat, req *models.LintRequest) (*models.LintResponse, error) {
	if !s.runner.Known(linter) {
		return nil, &models.ParametersError{Message: fmt.Sprintf("unknown linter: %s", linter)}
	}
	if !models.ValidFormat(string(format)) {
		return nil, &models.ParametersError{Message: fmt.Sprintf("unknown format: %s", format)}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, &models.ValidationError{Message: err.Error()}
	}

	opts := req.Options.Normalize()

	contentHash := s.contentHash(req)
	optionsHash, err := s.cache.OptionsHash(req.Options)
	if err != nil {
		return nil, &models.ValidationError{Message: err.Error()}
	}

	if entry := s.cache.Get(ctx, linter, string(format), contentHash, optionsHash); entry != nil {
		return s.responseFromCache(linter, format, contentHash, entry)
	}

	ws, err := s.materialize(ctx, req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.workspaces.Cleanup(ws.Root); err != nil {
			s.logger.Warn().Err(err).Str("workspace", ws.ID).Msg("Workspace cleanup failed")
		}
	}()

	if v := s.workspaces.Validate(ws.Root); !v.Valid {
		return nil, &models.WorkspaceError{
			Message: "workspace failed validation: " + strings.Join(v.Errors, "; "),
		}
	}

	// Timeouts and cancellations are never cached; only finished runs are
	result, runErr := s.runner.Run(ctx, linter, ws, opts)
	if runErr != nil {
		return nil, runErr
	}

	s.recordResult(ctx, linter, format, contentHash, optionsHash, result)

	return s.buildResponse(linter, format, contentHash, result, false), nil
}

func (s *Service) contentHash(req *models.LintRequest) string {
	if req.Content != nil {
		return s.cache.ContentHash([]byte(*req.Content))
	}
	return s.cache.ContentHash([]byte(*req.Archive))
}

func (s *Service) materialize(ctx context.Context, req *models.LintRequest) (*models.Workspace, error) {
	if req.Content != nil {
		return s.workspaces.CreateFromText(ctx, *req.Content, req.Filename)
	}
	return s.workspaces.CreateFromBase64(ctx, *req.Archive, req.Filename)
}

// recordResult caches a finished run. Linter failures within the exit
// band are cached as errors so repeated bad submissions stay cheap.
func (s *Service) recordResult(ctx context.Context, linter string, format models.OutputFormat, contentHash, optionsHash string, result *models.LinterResult) {
	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Warn().Err(err).Str("linter", linter).Msg("Failed to serialize result for cache")
		return
	}

	status := models.CacheStatusSuccess
	errMsg := ""
	if !result.Success {
		status = models.CacheStatusError
		errMsg = fmt.Sprintf("exit code %d", result.ExitCode)
	}

	entry := &models.CacheEntry{
		Linter:       linter,
		Format:       string(format),
		ContentHash:  contentHash,
		OptionsHash:  optionsHash,
		Payload:      payload,
		Status:       status,
		ErrorMessage: errMsg,
	}
	if err := s.cache.Put(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Str("linter", linter).Msg("Cache write failed, continuing")
	}
}

func (s *Service) responseFromCache(linter string, format models.OutputFormat, contentHash string, entry *models.CacheEntry) (*models.LintResponse, error) {
	if entry.Status == models.CacheStatusTimeout {
		return nil, &models.TimeoutError{Linter: linter}
	}

	var result models.LinterResult
	if err := json.Unmarshal(entry.Payload, &result); err != nil {
		return nil, &models.CacheError{Message: "corrupt cache payload", Cause: err}
	}

	return s.buildResponse(linter, format, contentHash, &result, true), nil
}

func (s *Service) buildResponse(linter string, format models.OutputFormat, contentHash string, result *models.LinterResult, cacheHit bool) *models.LintResponse {
	issues := result.Issues
	if issues == nil {
		issues = []models.Issue{}
	}

	return &models.LintResponse{
		Success:      result.Success,
		Linter:       linter,
		Format:       format,
		ExitCode:     result.ExitCode,
		Issues:       issues,
		ParsedOutput: result.ParsedOutput,
		Metadata: models.LintResponseMetadata{
			CacheHit:        cacheHit,
			ExecutionTimeMs: result.ExecutionTimeMs,
			FileCount:       result.FileCount,
			ContentHash:     contentHash,
		},
		Result: result,
	}
}

var _ interfaces.LintPipeline = (*Service)(nil)
