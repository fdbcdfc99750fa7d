package storage

import (
	"context"
	"os"
	"path"
	"slices"
	"strings"
)

// List enumerates the direct children of a directory, sorted directories
// first and byte-wise by name within each kind. Entries whose metadata
// cannot be read are skipped and logged rather than failing the listing;
// partial results are acceptable because nothing stops a concurrent delete.
// An existing empty directory yields an empty slice, which is distinct from
// a missing path (not found) or a file (bad request).
func (s *Service) List(ctx context.Context, logical string) ([]FileInfo, error) {
	abs, err := s.Resolve(logical)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, notFound(logical)
	}
	if !info.IsDir() {
		return nil, badRequest(logical, "path is not a directory")
	}

	dirEntries, err := os.ReadDir(abs)
	if err != nil {
		return nil, internal(logical, "failed to read directory", err)
	}

	base := s.logicalOf(abs)
	entries := make([]FileInfo, 0, len(dirEntries))
	for _, ent := range dirEntries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		st, err := ent.Info()
		if err != nil {
			// Removed between enumeration and stat.
			s.log.WarnContext(ctx, "skipping unreadable entry",
				"dir", base, "name", ent.Name(), "error", err)
			continue
		}
		entries = append(entries, describe(st, path.Join(base, ent.Name())))
	}

	sortEntries(entries)
	return entries, nil
}

// sortEntries applies the listing order: directories before files, then
// case-sensitive byte-wise name comparison. Stable and deterministic for
// identical directory contents.
func sortEntries(entries []FileInfo) {
	slices.SortStableFunc(entries, func(a, b FileInfo) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})
}
