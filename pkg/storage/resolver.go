package storage

import (
	"path"
	"path/filepath"
	"strings"
)

// maxLogicalPathLen caps client-supplied paths before any other processing.
const maxLogicalPathLen = 1000

// Resolve turns an untrusted, slash-separated logical path into a validated
// absolute filesystem path confined to the storage root.
//
// Normalization is purely lexical: "." and ".." segments are collapsed on the
// logical path before the filesystem is consulted, so symlinks cannot
// influence the containment check. The candidate is then re-verified with a
// string-prefix check against the root rather than a symlink-following
// realpath, avoiding a check-to-use race. For every input the result is
// either a descendant of the root or an error; there is no third outcome.
//
// A symlink already inside the root that points outside it can still be
// followed by later I/O. That residual risk is deliberate and documented; a
// hardened deployment should not allow symlink creation within the root.
func (s *Service) Resolve(logical string) (string, error) {
	if strings.ContainsRune(logical, 0) {
		return "", invalidPath(logical)
	}
	if len(logical) > maxLogicalPathLen {
		return "", invalidPath(logical)
	}

	// Backslashes are treated as separators so Windows-style traversal
	// attempts normalize the same way as slash-separated ones.
	rel := strings.ReplaceAll(logical, "\\", "/")
	rel = strings.TrimLeft(rel, "/")
	rel = path.Clean(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", invalidPath(logical)
	}

	abs := filepath.Join(s.root, filepath.FromSlash(rel))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", invalidPath(logical)
	}
	return abs, nil
}

// logicalOf maps a resolved absolute path back to its slash-separated
// logical form. The root itself maps to "".
func (s *Service) logicalOf(abs string) string {
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
