package storage_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileharbor/fileharbor/pkg/storage"
)

func TestRename(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "notes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes", "todo.txt"), []byte("x"), 0o644))

	t.Run("renames within parent", func(t *testing.T) {
		fi, err := svc.Rename(context.Background(), "notes/todo.txt", "done.txt")
		require.NoError(t, err)
		assert.Equal(t, "done.txt", fi.Name)
		assert.Equal(t, "notes/done.txt", fi.Path)

		_, err = os.Stat(filepath.Join(root, "notes", "todo.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := svc.Rename(context.Background(), "notes/absent.txt", "x.txt")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("separator in new name", func(t *testing.T) {
		for _, name := range []string{"a/b", `a\b`, "..", ".", ""} {
			_, err := svc.Rename(context.Background(), "notes/done.txt", name)
			assert.ErrorIs(t, err, storage.ErrBadRequest, "name=%q", name)
		}
	})

	t.Run("root is protected", func(t *testing.T) {
		// Renaming the root would relocate the whole tree next to it,
		// outside the sandbox.
		for _, logical := range []string{"", ".", "/"} {
			_, err := svc.Rename(context.Background(), logical, "pwned")
			assert.ErrorIs(t, err, storage.ErrBadRequest, "logical=%q", logical)
		}

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
		_, err = os.Stat(filepath.Join(filepath.Dir(root), "pwned"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestMove(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	require.NoError(t, os.WriteFile(filepath.Join(root, "loose.txt"), []byte("data"), 0o644))

	t.Run("moves and creates destination parents", func(t *testing.T) {
		err := svc.Move(context.Background(), "loose.txt", "archive/2026/loose.txt")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(root, "archive", "2026", "loose.txt"))
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), data)

		_, err = os.Stat(filepath.Join(root, "loose.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing source", func(t *testing.T) {
		err := svc.Move(context.Background(), "ghost.txt", "elsewhere.txt")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("traversal destination", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "victim.txt"), []byte("v"), 0o644))
		err := svc.Move(context.Background(), "victim.txt", "../../stolen.txt")
		assert.ErrorIs(t, err, storage.ErrInvalidPath)
	})

	t.Run("root is protected", func(t *testing.T) {
		for _, source := range []string{"", ".", "/"} {
			err := svc.Move(context.Background(), source, "elsewhere")
			assert.ErrorIs(t, err, storage.ErrBadRequest, "source=%q", source)
		}

		info, err := os.Stat(root)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestDelete(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	t.Run("file", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "bye.txt"), []byte("x"), 0o644))
		require.NoError(t, svc.Delete(context.Background(), "bye.txt"))
		_, err := os.Stat(filepath.Join(root, "bye.txt"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("directory is recursive", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "tree", "deep"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "tree", "deep", "leaf.txt"), []byte("x"), 0o644))

		require.NoError(t, svc.Delete(context.Background(), "tree"))
		_, err := os.Stat(filepath.Join(root, "tree"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing", func(t *testing.T) {
		err := svc.Delete(context.Background(), "never-was")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("root is protected", func(t *testing.T) {
		err := svc.Delete(context.Background(), "")
		assert.ErrorIs(t, err, storage.ErrBadRequest)
	})
}

func TestMkdir(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	t.Run("single level", func(t *testing.T) {
		fi, err := svc.Mkdir(context.Background(), "fresh", false)
		require.NoError(t, err)
		assert.True(t, fi.IsDir)
		assert.Equal(t, "fresh", fi.Path)
		assert.Empty(t, fi.MIMEType)
	})

	t.Run("recursive", func(t *testing.T) {
		fi, err := svc.Mkdir(context.Background(), "a/b/c", true)
		require.NoError(t, err)
		assert.Equal(t, "a/b/c", fi.Path)
	})

	t.Run("missing parent without recursive", func(t *testing.T) {
		_, err := svc.Mkdir(context.Background(), "no/parent/here", false)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("existing directory refused", func(t *testing.T) {
		_, err := svc.Mkdir(context.Background(), "fresh", false)
		assert.ErrorIs(t, err, storage.ErrBadRequest)

		_, err = svc.Mkdir(context.Background(), "fresh", true)
		assert.ErrorIs(t, err, storage.ErrBadRequest, "recursive mkdir is not idempotent either")
	})

	t.Run("existing file refused", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "flat.txt"), []byte("x"), 0o644))
		_, err := svc.Mkdir(context.Background(), "flat.txt", false)
		assert.ErrorIs(t, err, storage.ErrBadRequest)
	})
}

// Full lifecycle from the product's point of view: upload, list, download,
// rename, delete, and the final listing failure.
func TestStorage_Lifecycle(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	ctx := context.Background()

	fi, err := svc.Upload(ctx, "notes", "todo.txt", strings.NewReader("buy milk"))
	require.NoError(t, err)
	assert.Equal(t, "todo.txt", fi.Name)
	assert.Equal(t, "notes/todo.txt", fi.Path)
	assert.Equal(t, int64(8), fi.Size)
	assert.False(t, fi.IsDir)

	entries, err := svc.List(ctx, "notes")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notes/todo.txt", entries[0].Path)

	rc, _, err := svc.Download(ctx, "notes/todo.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "buy milk", string(data))

	renamed, err := svc.Rename(ctx, "notes/todo.txt", "done.txt")
	require.NoError(t, err)
	assert.Equal(t, "notes/done.txt", renamed.Path)

	require.NoError(t, svc.Delete(ctx, "notes"))

	_, err = svc.List(ctx, "notes")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

// Concurrent uploads to the same destination must end with exactly one
// winner; the loser sees file-exists. No other outcome is acceptable.
func TestUpload_ConcurrentSameDestination(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})

	const workers = 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() {
			_, err := svc.Upload(context.Background(), "race", "target.bin", strings.NewReader("payload"))
			errs <- err
		}()
	}

	var wins, conflicts int
	for i := 0; i < workers; i++ {
		err := <-errs
		switch {
		case err == nil:
			wins++
		case errors.Is(err, storage.ErrFileExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, workers-1, conflicts)
}
