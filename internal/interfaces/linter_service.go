package interfaces

import (
	"context"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// LinterInfo describes one registry entry plus its runtime availability
type LinterInfo struct {
	Name       string   `json:"name"`
	Executable string   `json:"executable"`
	Extensions []string `json:"extensions"`
	FixSupport bool     `json:"fix_support"`
	Available  bool     `json:"available"`
	Version    string   `json:"version,omitempty"`
}

// LinterRunner executes external linters against a workspace
type LinterRunner interface {
	// Run spawns the linter subprocess and parses its output into the
	// normalized issue schema. Cancellation of ctx terminates the
	// subprocess via the TERM -> grace -> KILL ladder.
	Run(ctx context.Context, linter string, workspace *models.Workspace, opts *models.NormalizedOptions) (*models.LinterResult, error)

	// Known reports whether the linter identifier exists in the registry
	Known(linter string) bool

	// List returns all registry entries with availability state
	List(ctx context.Context) []LinterInfo
}
