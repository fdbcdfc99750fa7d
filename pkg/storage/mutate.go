package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Rename changes an entry's base name within its parent directory using a
// single atomic rename. Relocating across directories is Move's job, so a
// new name carrying a separator is rejected.
func (s *Service) Rename(ctx context.Context, logical, newName string) (FileInfo, error) {
	select {
	case <-ctx.Done():
		return FileInfo{}, ctx.Err()
	default:
	}

	if newName == "" || newName == "." || newName == ".." ||
		strings.ContainsAny(newName, `/\`) || strings.ContainsRune(newName, 0) {
		return FileInfo{}, badRequest(logical, "new name contains invalid characters")
	}

	abs, err := s.Resolve(logical)
	if err != nil {
		return FileInfo{}, err
	}
	if abs == s.root {
		// The root has no parent inside the sandbox; renaming it would
		// relocate the entire tree to a sibling outside the root.
		return FileInfo{}, badRequest(logical, "cannot rename the storage root")
	}
	if _, err := os.Lstat(abs); err != nil {
		return FileInfo{}, notFound(logical)
	}

	newAbs := filepath.Join(filepath.Dir(abs), newName)
	if err := os.Rename(abs, newAbs); err != nil {
		return FileInfo{}, internal(logical, "failed to rename", err)
	}

	return s.Describe(newAbs, s.logicalOf(newAbs))
}

// Move relocates an entry to a new logical path within the same root,
// creating the destination's parent directories first. The rename is atomic
// on a single volume; if the kernel reports a cross-device link the move
// falls back to copy-then-delete, which is not atomic.
func (s *Service) Move(ctx context.Context, source, dest string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	srcAbs, err := s.Resolve(source)
	if err != nil {
		return err
	}
	if srcAbs == s.root {
		return badRequest(source, "cannot move the storage root")
	}
	dstAbs, err := s.Resolve(dest)
	if err != nil {
		return err
	}

	info, err := os.Lstat(srcAbs)
	if err != nil {
		return notFound(source)
	}

	if err := os.MkdirAll(filepath.Dir(dstAbs), 0o755); err != nil {
		return internal(dest, "failed to create parent directories", err)
	}

	if err := os.Rename(srcAbs, dstAbs); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return s.moveAcrossDevices(srcAbs, dstAbs, source, dest, info.IsDir())
		}
		return internal(source, "failed to move", err)
	}
	return nil
}

// moveAcrossDevices is the copy-then-delete fallback for roots spanning
// mount points. Failure mid-copy can leave a partial destination behind.
func (s *Service) moveAcrossDevices(srcAbs, dstAbs, source, dest string, isDir bool) error {
	if isDir {
		if err := os.CopyFS(dstAbs, os.DirFS(srcAbs)); err != nil {
			return internal(dest, "failed to copy directory", err)
		}
		if err := os.RemoveAll(srcAbs); err != nil {
			return internal(source, "failed to remove source directory", err)
		}
		return nil
	}

	src, err := os.Open(srcAbs)
	if err != nil {
		return internal(source, "failed to open source", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(dstAbs, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return internal(dest, "failed to create destination", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstAbs)
		return internal(dest, "failed to copy file", err)
	}
	if err := dst.Close(); err != nil {
		return internal(dest, "failed to flush destination", err)
	}
	if err := os.Remove(srcAbs); err != nil {
		return internal(source, "failed to remove source", err)
	}
	return nil
}

// Delete removes a file or, recursively and unconditionally, a directory.
func (s *Service) Delete(ctx context.Context, logical string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	abs, err := s.Resolve(logical)
	if err != nil {
		return err
	}
	if abs == s.root {
		return badRequest(logical, "cannot delete the storage root")
	}

	info, err := os.Lstat(abs)
	if err != nil {
		return notFound(logical)
	}

	if info.IsDir() {
		if err := os.RemoveAll(abs); err != nil {
			return internal(logical, "failed to delete directory", err)
		}
		return nil
	}
	if err := os.Remove(abs); err != nil {
		return internal(logical, "failed to delete file", err)
	}
	return nil
}

// Mkdir creates a directory. An existing entry at the target, file or
// directory, is a bad request: mkdir never succeeds idempotently.
func (s *Service) Mkdir(ctx context.Context, logical string, recursive bool) (FileInfo, error) {
	select {
	case <-ctx.Done():
		return FileInfo{}, ctx.Err()
	default:
	}

	abs, err := s.Resolve(logical)
	if err != nil {
		return FileInfo{}, err
	}
	if _, err := os.Lstat(abs); err == nil {
		return FileInfo{}, badRequest(logical, "path already exists")
	}

	if recursive {
		err = os.MkdirAll(abs, 0o755)
	} else {
		err = os.Mkdir(abs, 0o755)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FileInfo{}, notFound(s.logicalOf(filepath.Dir(abs)))
		}
		return FileInfo{}, internal(logical, "failed to create directory", err)
	}

	return s.Describe(abs, s.logicalOf(abs))
}
