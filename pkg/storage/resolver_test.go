package storage_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileharbor/fileharbor/pkg/storage"
)

func newTestService(t *testing.T, cfg storage.Config) *storage.Service {
	t.Helper()
	if cfg.RootDir == "" {
		cfg.RootDir = t.TempDir()
	}
	if cfg.AllowedExtensions == nil {
		cfg.AllowedExtensions = []string{"*"}
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 1 << 20
	}
	svc, err := storage.New(cfg)
	require.NoError(t, err)
	return svc
}

func TestResolve_Containment(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	valid := map[string]string{
		"":                      root,
		".":                     root,
		"/":                     root,
		"notes":                 filepath.Join(root, "notes"),
		"notes/todo.txt":        filepath.Join(root, "notes", "todo.txt"),
		"/leading/slash.txt":    filepath.Join(root, "leading", "slash.txt"),
		"a/./b":                 filepath.Join(root, "a", "b"),
		"a/b/../c":              filepath.Join(root, "a", "c"),
		"deep/../deep/file.bin": filepath.Join(root, "deep", "file.bin"),
	}
	for logical, want := range valid {
		got, err := svc.Resolve(logical)
		require.NoError(t, err, "logical=%q", logical)
		assert.Equal(t, want, got, "logical=%q", logical)
	}

	invalid := []string{
		"..",
		"../",
		"../etc/passwd",
		"../../..",
		"a/../../escape",
		"a/b/../../../escape",
		"/../../etc/shadow",
		"..\\..\\windows",
		"nul\x00byte.txt",
		strings.Repeat("a", 1001),
	}
	for _, logical := range invalid {
		got, err := svc.Resolve(logical)
		require.Error(t, err, "logical=%q", logical)
		assert.ErrorIs(t, err, storage.ErrInvalidPath, "logical=%q", logical)
		assert.Empty(t, got, "logical=%q", logical)
	}
}

// Every resolved path must be the root or a strict descendant of it,
// regardless of the dot-segment soup in the input.
func TestResolve_NeverEscapes(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})
	root := svc.Root()

	inputs := []string{
		"x", "./x", "x/..", "x/../y", ".././x", "//x//y//..//z",
		"..", "...", "....//....", "x/./../.", "\\x\\..\\y",
	}
	for _, logical := range inputs {
		got, err := svc.Resolve(logical)
		if err != nil {
			assert.ErrorIs(t, err, storage.ErrInvalidPath, "logical=%q", logical)
			continue
		}
		inside := got == root || strings.HasPrefix(got, root+string(filepath.Separator))
		assert.True(t, inside, "logical=%q resolved outside root: %s", logical, got)
	}
}

func TestResolve_LengthCapBoundary(t *testing.T) {
	t.Parallel()
	svc := newTestService(t, storage.Config{})

	_, err := svc.Resolve(strings.Repeat("b", 1000))
	assert.NoError(t, err)

	_, err = svc.Resolve(strings.Repeat("b", 1001))
	assert.ErrorIs(t, err, storage.ErrInvalidPath)
}
