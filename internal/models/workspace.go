package models

import "time"

// Workspace is a per-request filesystem sandbox. The root path always
// resolves inside the configured base directory, and every file in Files
// resolves inside Root.
type Workspace struct {
	ID         string    `json:"id"`
	Root       string    `json:"root"`
	Files      []string  `json:"files"`
	TotalBytes int64     `json:"total_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// WorkspaceValidation is the result of re-checking workspace invariants
type WorkspaceValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
