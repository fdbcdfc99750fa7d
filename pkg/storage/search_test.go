package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileharbor/fileharbor/pkg/storage"
)

func TestSearch(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "reports"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "report.txt"), []byte("r"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "reports", "annual-report.pdf"), []byte("r"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "unrelated.bin"), []byte("u"), 0o644))

	t.Run("ranked matches", func(t *testing.T) {
		t.Parallel()
		results, err := svc.Search(context.Background(), "report", "")
		require.NoError(t, err)
		require.Len(t, results, 3)

		// Prefix matches outrank substring matches; exact would outrank both.
		assert.Equal(t, "docs/report.txt", results[0].Path)
		assert.InDelta(t, 0.9, results[0].Score, 1e-9)
		assert.Equal(t, "docs/reports", results[1].Path)
		assert.True(t, results[1].IsDir)

		for i := 1; i < len(results); i++ {
			assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
		}
	})

	t.Run("case-insensitive", func(t *testing.T) {
		t.Parallel()
		results, err := svc.Search(context.Background(), "REPORT", "docs")
		require.NoError(t, err)
		assert.NotEmpty(t, results)
	})

	t.Run("scoped to subdirectory", func(t *testing.T) {
		t.Parallel()
		results, err := svc.Search(context.Background(), "report", "docs/reports")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "docs/reports/annual-report.pdf", results[0].Path)
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()
		results, err := svc.Search(context.Background(), "zzz-nothing", "")
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("empty query", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Search(context.Background(), "  ", "")
		assert.ErrorIs(t, err, storage.ErrBadRequest)
	})

	t.Run("missing start path", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Search(context.Background(), "x", "nowhere")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("start path outside root", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Search(context.Background(), "x", "../..")
		assert.ErrorIs(t, err, storage.ErrInvalidPath)
	})
}

func TestMatchScoreOrdering(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.WriteFile(filepath.Join(root, "log"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "logfile"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "catalog"), []byte("x"), 0o644))

	results, err := svc.Search(context.Background(), "log", "")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "log", results[0].Name)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.Equal(t, "logfile", results[1].Name)
	assert.InDelta(t, 0.9, results[1].Score, 1e-9)
	assert.Equal(t, "catalog", results[2].Name)
	assert.Less(t, results[2].Score, 0.9)
}
