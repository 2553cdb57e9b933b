package workspace

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ArcBlock/super-linter-api-sub000/internal/common"
	"github.com/ArcBlock/super-linter-api-sub000/internal/interfaces"
	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

const defaultTextFilename = "code.txt"

// Service materializes per-request sandbox directories under a single
// base directory and enforces the admission policies on everything
// written into them.
type Service struct {
	baseDir       string
	maxFileBytes  int64
	maxTotalBytes int64
	maxFiles      int
	maxAge        time.Duration
	logger        arbor.ILogger
}

// NewService resolves the base directory, creates it if missing, and
// returns the workspace service
func NewService(config *common.WorkspaceConfig, logger arbor.ILogger) (interfaces.WorkspaceService, error) {
	base, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace base directory: %w", err)
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace base directory: %w", err)
	}

	return &Service{
		baseDir:       base,
		maxFileBytes:  config.MaxFileBytes,
		maxTotalBytes: config.MaxTotalBytes,
		maxFiles:      config.MaxFiles,
		maxAge:        config.MaxAge,
		logger:        logger,
	}, nil
}

// CreateFromText writes a single file into a fresh workspace. The
// filename is a hint only; path separators in it are rejected.
func (s *Service) CreateFromText(ctx context.Context, content, filename string) (*models.Workspace, error) {
	if int64(len(content)) > s.maxFileBytes {
		return nil, &models.ContentTooLargeError{
			Message: "content exceeds per-file limit",
			Size:    int64(len(content)),
			Limit:   s.maxFileBytes,
		}
	}

	name := defaultTextFilename
	if filename != "" {
		if strings.ContainsAny(filename, "/\\") || filename == ".." {
			return nil, &models.WorkspaceError{Message: fmt.Sprintf("invalid filename: %s", filename)}
		}
		name = filename
	}

	ws, err := s.newWorkspaceDir()
	if err != nil {
		return nil, err
	}

	target := filepath.Join(ws.Root, name)
	if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
		s.removeDir(ws.Root)
		return nil, &models.WorkspaceError{Message: "failed to write file", Cause: err}
	}

	ws.Files = []string{name}
	ws.TotalBytes = int64(len(content))

	s.logger.Debug().
		Str("workspace", ws.ID).
		Str("file", name).
		Int64("bytes", ws.TotalBytes).
		Msg("Workspace created from text")

	return ws, nil
}

// CreateFromBytes dispatches on the gzip magic: 1f 8b means a gzipped
// tar archive, anything else is treated as plain text
func (s *Service) CreateFromBytes(ctx context.Context, data []byte, filename string) (*models.Workspace, error) {
	if !isGzip(data) {
		return s.CreateFromText(ctx, string(data), filename)
	}

	ws, err := s.newWorkspaceDir()
	if err != nil {
		return nil, err
	}

	files, total, err := s.extractArchive(ws.Root, data)
	if err != nil {
		s.removeDir(ws.Root)
		return nil, err
	}

	ws.Files = files
	ws.TotalBytes = total

	s.logger.Debug().
		Str("workspace", ws.ID).
		Int("files", len(files)).
		Int64("bytes", total).
		Msg("Workspace created from archive")

	return ws, nil
}

// CreateFromBase64 decodes then dispatches as CreateFromBytes
func (s *Service) CreateFromBase64(ctx context.Context, encoded, filename string) (*models.Workspace, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &models.WorkspaceError{Message: "malformed base64 content", Cause: err}
	}
	return s.CreateFromBytes(ctx, data, filename)
}

// Validate re-checks the invariants on an existing workspace directory
func (s *Service) Validate(path string) *models.WorkspaceValidation {
	result := &models.WorkspaceValidation{Valid: true}
	fail := func(msg string) {
		result.Valid = false
		result.Errors = append(result.Errors, msg)
	}

	abs, err := filepath.Abs(path)
	if err != nil || !s.insideBase(abs) {
		fail("workspace root is outside the base directory")
		return result
	}

	info, err := os.Stat(abs)
	if err != nil {
		fail("workspace root does not exist")
		return result
	}
	if !info.IsDir() {
		fail("workspace root is not a directory")
		return result
	}

	var (
		totalBytes int64
		fileCount  int
	)
	walkErr := filepath.Walk(abs, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(abs, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if fi.IsDir() {
			if blockedDirNames[fi.Name()] {
				fail(fmt.Sprintf("blocked directory present: %s", rel))
			}
			return nil
		}
		fileCount++
		totalBytes += fi.Size()
		if fi.Size() > s.maxFileBytes {
			fail(fmt.Sprintf("file exceeds size limit: %s", rel))
		}
		return nil
	})
	if walkErr != nil {
		fail(fmt.Sprintf("failed to scan workspace: %v", walkErr))
	}
	if fileCount > s.maxFiles {
		fail(fmt.Sprintf("workspace exceeds file limit of %d", s.maxFiles))
	}
	if totalBytes > s.maxTotalBytes {
		fail("workspace exceeds total size limit")
	}

	return result
}

// Cleanup removes a workspace directory. It refuses any path that does
// not resolve inside the base directory.
func (s *Service) Cleanup(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &models.WorkspaceError{Message: "invalid workspace path", Cause: err}
	}
	if !s.insideBase(abs) {
		return &models.WorkspaceError{Message: fmt.Sprintf("refusing to remove path outside base: %s", path)}
	}
	if err := os.RemoveAll(abs); err != nil {
		return &models.WorkspaceError{Message: "failed to remove workspace", Cause: err}
	}
	return nil
}

// CleanupExpired sweeps workspace directories older than the configured
// max age. Modification time stands in for creation time, which the
// filesystem does not portably expose.
func (s *Service) CleanupExpired(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read workspace base directory: %w", err)
	}

	cutoff := time.Now().Add(-s.maxAge)
	var removed int

	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "ws_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(s.baseDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn().Err(err).Str("workspace", entry.Name()).Msg("Failed to sweep workspace")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Swept expired workspaces")
	}
	return removed, nil
}

func (s *Service) newWorkspaceDir() (*models.Workspace, error) {
	id := common.NewWorkspaceID()
	root := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &models.WorkspaceError{Message: "failed to create workspace directory", Cause: err}
	}
	return &models.Workspace{
		ID:        id,
		Root:      root,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) insideBase(abs string) bool {
	return abs != s.baseDir && strings.HasPrefix(abs, s.baseDir+string(os.PathSeparator))
}

func (s *Service) removeDir(root string) {
	if err := os.RemoveAll(root); err != nil {
		s.logger.Warn().Err(err).Str("path", root).Msg("Failed to remove workspace after error")
	}
}
