package interfaces

import (
	"context"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// WorkspaceService materializes and destroys per-request sandbox directories
type WorkspaceService interface {
	// CreateFromText writes a single file (default name code.txt)
	CreateFromText(ctx context.Context, content, filename string) (*models.Workspace, error)

	// CreateFromBytes treats gzip-magic input as a tar archive, else as text
	CreateFromBytes(ctx context.Context, data []byte, filename string) (*models.Workspace, error)

	// CreateFromBase64 decodes then dispatches as CreateFromBytes
	CreateFromBase64(ctx context.Context, encoded, filename string) (*models.Workspace, error)

	// Validate re-checks all invariants on an existing workspace
	Validate(path string) *models.WorkspaceValidation

	// Cleanup removes a workspace; refuses paths outside the base directory
	Cleanup(path string) error

	// CleanupExpired sweeps workspaces older than the configured max age
	CleanupExpired(ctx context.Context) (int, error)
}
