package workspace

import (
	"path/filepath"
	"strings"
)

// allowedExtensions is the admission allowlist for archive entries,
// lowercase. Plain-text submissions bypass it; they land as a single
// caller-named file.
var allowedExtensions = map[string]bool{
	".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".ts": true, ".tsx": true, ".vue": true, ".svelte": true,
	".py": true, ".pyi": true,
	".go":   true,
	".rb":   true, ".rake": true,
	".sh":   true, ".bash": true, ".zsh": true, ".ksh": true,
	".yml":  true, ".yaml": true,
	".json": true, ".jsonc": true, ".json5": true,
	".md":   true, ".markdown": true,
	".html": true, ".htm": true, ".xhtml": true,
	".css":  true, ".scss": true, ".sass": true, ".less": true,
	".php":  true, ".phtml": true,
	".c":    true, ".h": true,
	".cpp":  true, ".cc": true, ".cxx": true, ".hpp": true, ".hh": true,
	".java": true,
	".kt":   true, ".kts": true,
	".swift": true,
	".rs":    true,
	".dockerfile": true,
	".sql":  true, ".xml": true, ".toml": true, ".ini": true, ".cfg": true,
	".txt":  true, ".env": true, ".tf": true, ".proto": true, ".groovy": true,
}

// blockedDirNames are directory segments that are never materialized
var blockedDirNames = map[string]bool{
	"node_modules":  true,
	".git":          true,
	".svn":          true,
	".hg":           true,
	"vendor":        true,
	"dist":          true,
	"build":         true,
	"target":        true,
	".idea":         true,
	".vscode":       true,
	"__pycache__":   true,
	".pytest_cache": true,
	"coverage":      true,
	".nyc_output":   true,
}

// extensionAllowed checks the allowlist case-insensitively. Bare
// "Dockerfile" (any directory, exact basename) is admitted too.
func extensionAllowed(name string) bool {
	base := filepath.Base(name)
	if base == "Dockerfile" {
		return true
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == "" {
		return false
	}
	return allowedExtensions[ext]
}

// hasBlockedSegment reports whether any path segment is blocklisted
func hasBlockedSegment(name string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(name), "/") {
		if blockedDirNames[seg] {
			return true
		}
	}
	return false
}
