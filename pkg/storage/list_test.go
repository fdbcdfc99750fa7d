package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileharbor/fileharbor/pkg/storage"
)

func TestList_SortOrder(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "zebra"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "alpha"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "A.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))

	entries, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 5)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	// Directories first, then byte-wise name order ('A' < 'a' < 'b').
	assert.Equal(t, []string{"alpha", "zebra", "A.txt", "a.txt", "b.txt"}, names)

	assert.True(t, entries[0].IsDir)
	assert.Zero(t, entries[0].Size)
	assert.Empty(t, entries[0].MIMEType)
	assert.False(t, entries[2].IsDir)
	assert.Equal(t, int64(1), entries[2].Size)
	assert.NotEmpty(t, entries[2].MIMEType)
}

func TestList_Idempotent(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "inner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "one.txt"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "two.txt"), []byte("22"), 0o644))

	first, err := svc.List(context.Background(), "docs")
	require.NoError(t, err)
	second, err := svc.List(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestList_EmptyVsMissing(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "plain.txt"), []byte("x"), 0o644))

	entries, err := svc.List(context.Background(), "empty")
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.List(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = svc.List(context.Background(), "plain.txt")
	assert.ErrorIs(t, err, storage.ErrBadRequest)
}

func TestList_LogicalPaths(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "c.txt"), []byte("c"), 0o644))

	entries, err := svc.List(context.Background(), "a/b")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a/b/c.txt", entries[0].Path)
	assert.Equal(t, "c.txt", entries[0].Name)
}

func TestStat_Descriptor(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "todo.txt"), []byte("buy milk"), 0o644))

	fi, err := svc.Stat("notes/todo.txt")
	require.NoError(t, err)
	assert.Equal(t, "todo.txt", fi.Name)
	assert.Equal(t, "notes/todo.txt", fi.Path)
	assert.Equal(t, int64(8), fi.Size)
	assert.False(t, fi.IsDir)
	assert.Equal(t, time.UTC, fi.Modified.Location())
	assert.Contains(t, fi.MIMEType, "text/plain")

	_, err = svc.Stat("notes/gone.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
