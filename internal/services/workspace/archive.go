package workspace

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArcBlock/super-linter-api-sub000/internal/models"
)

// isGzip reports whether data starts with the gzip magic bytes 1f 8b
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// extractArchive streams a gzipped tar into root. Entries are filtered
// before materialization: blocked directories, non-regular entries and
// disallowed extensions are skipped silently; a path escape or a size or
// count violation aborts with a typed error. The caller removes root on
// error.
func (s *Service) extractArchive(root string, data []byte) ([]string, int64, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, &models.WorkspaceError{Message: fmt.Sprintf("invalid gzip stream: %v", err)}
	}
	defer gz.Close()

	tr := tar.NewReader(gz)

	var (
		files      []string
		totalBytes int64
	)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, &models.WorkspaceError{Message: fmt.Sprintf("invalid tar stream: %v", err)}
		}

		name := filepath.ToSlash(header.Name)
		if name == "" || name == "." {
			continue
		}

		// Reject escapes before looking at anything else
		target, err := s.resolveEntry(root, name)
		if err != nil {
			return nil, 0, err
		}

		if hasBlockedSegment(name) {
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			continue
		case tar.TypeReg:
		default:
			// Symlinks, devices and the rest are never materialized
			continue
		}

		if !extensionAllowed(name) {
			continue
		}

		if header.Size > s.maxFileBytes {
			return nil, 0, &models.ContentTooLargeError{
				Message: fmt.Sprintf("file %s exceeds per-file limit", name),
				Size:    header.Size,
				Limit:   s.maxFileBytes,
			}
		}
		if totalBytes+header.Size > s.maxTotalBytes {
			return nil, 0, &models.ContentTooLargeError{
				Message: "archive exceeds total workspace limit",
				Size:    totalBytes + header.Size,
				Limit:   s.maxTotalBytes,
			}
		}
		if len(files) >= s.maxFiles {
			return nil, 0, &models.WorkspaceError{
				Message: fmt.Sprintf("archive exceeds file limit of %d", s.maxFiles),
			}
		}

		written, err := writeEntry(target, tr, s.maxFileBytes)
		if err != nil {
			return nil, 0, err
		}

		totalBytes += written
		if totalBytes > s.maxTotalBytes {
			return nil, 0, &models.ContentTooLargeError{
				Message: "archive exceeds total workspace limit",
				Size:    totalBytes,
				Limit:   s.maxTotalBytes,
			}
		}

		rel, err := filepath.Rel(root, target)
		if err != nil {
			return nil, 0, &models.WorkspaceError{Message: fmt.Sprintf("failed to relativize path: %v", err)}
		}
		files = append(files, rel)
	}

	if len(files) == 0 {
		return nil, 0, &models.WorkspaceError{Message: "archive contains no admissible files"}
	}

	return files, totalBytes, nil
}

// resolveEntry normalizes an entry name against root and rejects any
// path that would land outside it
func (s *Service) resolveEntry(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) {
		return "", &models.WorkspaceError{Message: fmt.Sprintf("absolute entry path not allowed: %s", name)}
	}

	target := filepath.Join(root, cleaned)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", &models.WorkspaceError{Message: fmt.Sprintf("entry path escapes workspace: %s", name)}
	}
	return target, nil
}

// writeEntry copies at most maxBytes from r into target, creating
// parent directories as needed. Header sizes are not trusted: the copy
// itself is bounded.
func writeEntry(target string, r io.Reader, maxBytes int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, &models.WorkspaceError{Message: fmt.Sprintf("failed to create directory: %v", err)}
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, &models.WorkspaceError{Message: fmt.Sprintf("failed to create file: %v", err)}
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	if err != nil {
		return 0, &models.WorkspaceError{Message: fmt.Sprintf("failed to write file: %v", err)}
	}
	if written > maxBytes {
		return 0, &models.ContentTooLargeError{
			Message: "file exceeds per-file limit",
			Size:    written,
			Limit:   maxBytes,
		}
	}
	return written, nil
}
