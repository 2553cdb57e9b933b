package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// ContentFingerprint returns the lowercase hex SHA-256 of the raw bytes.
// Archives are hashed as submitted, before extraction, so the same upload
// always maps to the same key.
func ContentFingerprint(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// OptionsFingerprint hashes the canonical form of the options. Two
// requests that differ only in field order or omitted defaults produce
// the same digest.
func OptionsFingerprint(opts *models.LintOptions) (string, error) {
	normalized := opts.Normalize()
	canonical, err := normalized.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize options: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
