package linters

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

const (
	killGracePeriod = 5 * time.Second
	maxOutputBytes  = 10 * 1024 * 1024
)

// Service runs registered linters as subprocesses inside a workspace
type Service struct {
	registry         *Registry
	prober           *prober
	defaultTimeoutMs int64
	logger           arbor.ILogger
}

// NewService builds the runner from the registry, layering overrides
// from the configured YAML file when one is set
func NewService(config *common.LintersConfig, logger arbor.ILogger) (*Service, error) {
	registry, err := NewRegistryWithOverrides(config.OverridesFile)
	if err != nil {
		return nil, err
	}

	defaultTimeout := config.DefaultTimeoutMs
	if defaultTimeout <= 0 {
		defaultTimeout = models.DefaultTimeoutMs
	}

	return &Service{
		registry:         registry,
		prober:           newProber(),
		defaultTimeoutMs: defaultTimeout,
		logger:           logger,
	}, nil
}

// Known reports whether the linter identifier exists in the registry
func (s *Service) Known(linter string) bool {
	return s.registry.Get(linter) != nil
}

// List returns all registry entries with probed availability
func (s *Service) List(ctx context.Context) []interfaces.LinterInfo {
	names := s.registry.Names()
	infos := make([]interfaces.LinterInfo, 0, len(names))
	for _, name := range names {
		cfg := s.registry.Get(name)
		available, version := s.prober.Probe(ctx, cfg.Executable)
		infos = append(infos, interfaces.LinterInfo{
			Name:       name,
			Executable: cfg.Executable,
			Extensions: cfg.Extensions,
			FixSupport: cfg.SupportsFix,
			Available:  available,
			Version:    version,
		})
	}
	return infos
}

// Run executes a linter against the workspace and normalizes its output
func (s *Service) Run(ctx context.Context, linter string, workspace *models.Workspace, opts *models.NormalizedOptions) (*models.LinterResult, error) {
	cfg := s.registry.Get(linter)
	if cfg == nil {
		return nil, &models.LinterError{Kind: models.LinterNotFound, Linter: linter}
	}

	files, err := s.matchFiles(workspace, cfg, opts)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &models.LinterError{
			Kind:   models.LinterExecutionFailed,
			Linter: linter,
			Detail: "no supported files in workspace",
		}
	}

	// Caller timeout wins, then the linter's registry default, then the
	// service-wide default
	timeoutMs := opts.Timeout
	if timeoutMs <= 0 {
		timeoutMs = cfg.DefaultTimeoutMs
	}
	if timeoutMs <= 0 {
		timeoutMs = s.defaultTimeoutMs
	}

	argv := s.buildArgs(cfg, workspace, opts)
	env := s.buildEnv(cfg, workspace, opts)

	s.logger.Debug().
		Str("linter", linter).
		Str("workspace", workspace.ID).
		Int("files", len(files)).
		Int64("timeout_ms", timeoutMs).
		Msg("Spawning linter")

	start := time.Now()
	result, err := s.execute(ctx, cfg, argv, env, workspace.Root, timeoutMs)
	if err != nil {
		return nil, err
	}

	result.Linter = linter
	result.ExecutionTimeMs = time.Since(start).Milliseconds()
	result.FileCount = len(files)
	result.ParsedOutput, result.Issues = parseOutput(cfg, result.Stdout)
	if result.Issues == nil {
		result.Issues = []models.Issue{}
	}

	return result, nil
}

// matchFiles filters workspace files to the linter's extensions and the
// caller's include/exclude globs. A single-file workspace is aimed at the
// named linter by construction, so the extension filter only applies to
// multi-file trees; validate_all disables it entirely.
func (s *Service) matchFiles(workspace *models.Workspace, cfg *LinterConfig, opts *models.NormalizedOptions) ([]string, error) {
	skipExtensionFilter := opts.ValidateAll || len(workspace.Files) == 1

	var files []string
	for _, rel := range workspace.Files {
		if !skipExtensionFilter && !s.extensionMatches(rel, cfg.Extensions) {
			continue
		}
		slash := filepath.ToSlash(rel)
		if len(opts.IncludePatterns) > 0 && !matchesAny(opts.IncludePatterns, slash) {
			continue
		}
		if matchesAny(opts.ExcludePatterns, slash) {
			continue
		}
		files = append(files, rel)
	}
	return files, nil
}

func (s *Service) extensionMatches(rel string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	base := filepath.Base(rel)
	ext := strings.ToLower(filepath.Ext(base))
	for _, want := range extensions {
		if ext == want {
			return true
		}
		// Dockerfiles rarely carry the extension
		if want == ".dockerfile" && (base == "Dockerfile" || strings.HasPrefix(base, "Dockerfile.")) {
			return true
		}
	}
	return false
}

func matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

// buildArgs assembles [base_args..., option flags..., workspace_root]
func (s *Service) buildArgs(cfg *LinterConfig, workspace *models.Workspace, opts *models.NormalizedOptions) []string {
	argv := append([]string{}, cfg.BaseArgs...)

	if opts.Fix && cfg.SupportsFix && cfg.FixFlag != "" {
		argv = append(argv, cfg.FixFlag)
	}
	if opts.ConfigFile != "" && cfg.ConfigFlag != "" {
		argv = append(argv, cfg.ConfigFlag, opts.ConfigFile)
	}

	return append(argv, workspace.Root)
}

// buildEnv starts from a sanitized environment and layers the linter's
// additions plus the common run identification variables
func (s *Service) buildEnv(cfg *LinterConfig, workspace *models.Workspace, opts *models.NormalizedOptions) []string {
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"LANG=" + os.Getenv("LANG"),
		"TMPDIR=" + os.TempDir(),
		"LINT_WORKSPACE=" + workspace.Root,
		"LINT_WORKSPACE_ID=" + workspace.ID,
		"LINT_RUN_MODE=api",
	}
	for k, v := range cfg.Env {
		env = append(env, k+"="+v)
	}
	if cfg.LogLevelEnv != "" && opts.LogLevel != "" {
		env = append(env, cfg.LogLevelEnv+"="+opts.LogLevel)
	}
	return env
}

// execute spawns the subprocess and applies the TERM -> grace -> KILL
// termination ladder on timeout or context cancellation
func (s *Service) execute(ctx context.Context, cfg *LinterConfig, argv, env []string, dir string, timeoutMs int64) (*models.LinterResult, error) {
	cmd := exec.Command(cfg.Executable, argv...)
	cmd.Dir = dir
	cmd.Env = env
	// Own process group, so the termination ladder reaches spawned children
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = newBoundedWriter(&stdout, maxOutputBytes)
	cmd.Stderr = newBoundedWriter(&stderr, maxOutputBytes)

	if err := cmd.Start(); err != nil {
		return nil, &models.LinterError{
			Kind:   models.LinterExecutionFailed,
			Linter: cfg.Name,
			Detail: fmt.Sprintf("failed to start %s: %v", cfg.Executable, err),
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(time.Duration(timeoutMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case waitErr := <-done:
		return s.finish(cfg, &stdout, &stderr, waitErr)

	case <-timer.C:
		s.terminate(cmd, done)
		return nil, &models.TimeoutError{Linter: cfg.Name, TimeoutMs: timeoutMs}

	case <-ctx.Done():
		s.terminate(cmd, done)
		return nil, ctx.Err()
	}
}

// terminate asks nicely first, then kills after the grace period. The
// child is its own group leader, so signalling the negative pid covers
// every subprocess it spawned.
func (s *Service) terminate(cmd *exec.Cmd, done chan error) {
	if cmd.Process == nil {
		return
	}
	pgid := -cmd.Process.Pid
	if err := syscall.Kill(pgid, syscall.SIGTERM); err != nil {
		syscall.Kill(pgid, syscall.SIGKILL)
		cmd.Process.Kill()
		<-done
		return
	}

	select {
	case <-done:
	case <-time.After(killGracePeriod):
		syscall.Kill(pgid, syscall.SIGKILL)
		<-done
	}
}

func (s *Service) finish(cfg *LinterConfig, stdout, stderr *bytes.Buffer, waitErr error) (*models.LinterResult, error) {
	exitCode := 0
	if waitErr != nil {
		exitErr, ok := waitErr.(*exec.ExitError)
		if !ok {
			return nil, &models.LinterError{
				Kind:   models.LinterExecutionFailed,
				Linter: cfg.Name,
				Detail: fmt.Sprintf("wait failed: %v", waitErr),
			}
		}
		exitCode = exitErr.ExitCode()
	}

	return &models.LinterResult{
		Success:  cfg.ExitOK(exitCode),
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// ResetAvailability clears the probe cache; used by tests and by the
// health endpoint's deep check
func (s *Service) ResetAvailability() {
	s.prober.Reset()
}

// boundedWriter discards bytes past the cap so a chatty linter cannot
// balloon memory
type boundedWriter struct {
	buf *bytes.Buffer
	max int
}

func newBoundedWriter(buf *bytes.Buffer, max int) *boundedWriter {
	return &boundedWriter{buf: buf, max: max}
}

func (w *boundedWriter) Write(p []byte) (int, error) {
	remaining := w.max - w.buf.Len()
	if remaining <= 0 {
		return len(p), nil
	}
	if len(p) > remaining {
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}

var _ interfaces.LinterRunner = (*Service)(nil)
