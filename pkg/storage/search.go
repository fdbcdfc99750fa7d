package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// maxSearchResults caps a single search response.
const maxSearchResults = 100

// SearchResult is one name match from a recursive scan.
type SearchResult struct {
	Path  string  `json:"path"`
	Name  string  `json:"name"`
	IsDir bool    `json:"is_dir"`
	Score float64 `json:"score"`
}

// Search walks the tree under start (the whole root when start is empty) and
// returns entries whose names contain the query, case-insensitively, ranked
// by a closeness score. Symlinks are not followed. Unreadable entries are
// skipped; the scan is O(n) over the subtree by design.
func (s *Service) Search(ctx context.Context, query, start string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, badRequest(start, "search query must not be empty")
	}

	abs, err := s.Resolve(start)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, notFound(start)
	}
	if !info.IsDir() {
		return nil, badRequest(start, "search path is not a directory")
	}

	lowerQuery := strings.ToLower(query)
	var results []SearchResult

	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if walkErr != nil {
			// Entry vanished or is unreadable; keep scanning.
			return nil
		}
		if p == abs {
			return nil
		}

		name := d.Name()
		lowerName := strings.ToLower(name)
		if !strings.Contains(lowerName, lowerQuery) {
			return nil
		}

		results = append(results, SearchResult{
			Path:  s.logicalOf(p),
			Name:  name,
			IsDir: d.IsDir(),
			Score: matchScore(lowerName, lowerQuery),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Path, b.Path)
		}
	})
	if len(results) > maxSearchResults {
		results = results[:maxSearchResults]
	}
	return results, nil
}

// matchScore ranks how closely a name matches the query: exact match 1.0,
// prefix 0.9, otherwise a blend of query-to-name length ratio and match
// position. Both inputs must already be lowercased.
func matchScore(name, query string) float64 {
	if name == query {
		return 1.0
	}
	if strings.HasPrefix(name, query) {
		return 0.9
	}

	lengthRatio := float64(len(query)) / float64(len(name))
	position := strings.Index(name, query)
	if position < 0 {
		position = len(name)
	}
	positionFactor := 1.0 - float64(position)/float64(len(name))

	return 0.5*lengthRatio + 0.3*positionFactor
}
