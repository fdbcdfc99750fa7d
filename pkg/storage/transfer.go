package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// copyBufferSize balances memory usage and syscall overhead. Peak memory per
// transfer is bounded by this buffer regardless of file size.
const copyBufferSize = 32 * 1024

// errTooLarge is an internal marker for the bounded copy loop.
var errTooLarge = errors.New("size limit exceeded")

// Download opens a file for streaming. The caller owns the returned reader
// and must close it; bytes are never buffered whole in memory.
func (s *Service) Download(ctx context.Context, logical string) (io.ReadCloser, FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, FileInfo{}, ctx.Err()
	default:
	}

	abs, err := s.Resolve(logical)
	if err != nil {
		return nil, FileInfo{}, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, FileInfo{}, notFound(logical)
	}
	if info.IsDir() {
		return nil, FileInfo{}, badRequest(logical, "cannot download a directory")
	}

	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, FileInfo{}, notFound(logical)
		}
		return nil, FileInfo{}, internal(logical, "failed to open file", err)
	}

	s.rec.BytesDownloaded(info.Size())
	return f, describe(info, s.logicalOf(abs)), nil
}

// Upload streams a single file into the target directory. Enforcement order:
// extension allow-list, then the incremental size cap during the copy, parent
// directories are pre-created, and an existing destination is refused rather
// than truncated. A mid-write I/O failure is reported and the partial file
// removed on a best-effort basis only; callers must treat a failed upload as
// leaving an indeterminate partial file.
func (s *Service) Upload(ctx context.Context, dir, filename string, src io.Reader) (FileInfo, error) {
	base := sanitizeFilename(filename)
	if base == "" {
		return FileInfo{}, badRequest(filename, "invalid filename")
	}
	if err := s.checkExtension(base); err != nil {
		return FileInfo{}, err
	}

	logical := path.Join(strings.Trim(filepath.ToSlash(dir), "/"), base)
	abs, err := s.Resolve(logical)
	if err != nil {
		return FileInfo{}, err
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return FileInfo{}, internal(logical, "failed to create parent directories", err)
	}

	// O_EXCL makes overwrite refusal atomic: two racing uploads to the same
	// destination see exactly one winner and one FileExists.
	dst, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return FileInfo{}, fileExists(logical)
		}
		return FileInfo{}, internal(logical, "failed to create file", err)
	}

	written, copyErr := s.copyBounded(ctx, dst, src)
	closeErr := dst.Close()

	if copyErr != nil {
		_ = os.Remove(abs)
		switch {
		case errors.Is(copyErr, errTooLarge):
			return FileInfo{}, fileTooLarge(logical, s.maxSize)
		case errors.Is(copyErr, context.Canceled) || errors.Is(copyErr, context.DeadlineExceeded):
			return FileInfo{}, copyErr
		default:
			return FileInfo{}, internal(logical, "failed to write file", copyErr)
		}
	}
	if closeErr != nil {
		_ = os.Remove(abs)
		return FileInfo{}, internal(logical, "failed to flush file", closeErr)
	}

	s.rec.BytesUploaded(written)

	info, err := os.Stat(abs)
	if err != nil {
		return FileInfo{}, notFound(logical)
	}
	return describe(info, logical), nil
}

// copyBounded copies src to dst in fixed-size chunks, checking context
// cancellation between chunks so an abandoned transfer stops promptly, and
// enforcing the size cap against the running counter as each chunk arrives
// rather than after buffering the payload.
func (s *Service) copyBounded(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var written int64
	buf := make([]byte, copyBufferSize)
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if s.maxSize > 0 && written+int64(n) > s.maxSize {
				return written, errTooLarge
			}
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)
			if writeErr != nil {
				return written, writeErr
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// BatchEntry is one file of a folder upload. RelPath may carry embedded
// separators describing the directory structure to reconstruct under the
// batch target. Open is called at most once, when the entry's turn comes.
type BatchEntry struct {
	RelPath string
	Open    func() (io.ReadCloser, error)
}

// UploadFailure reports one file of a batch that could not be stored.
type UploadFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// BatchResult enumerates every attempted file of a folder upload as either
// uploaded or failed, plus the directories newly created for the batch. The
// created-dir ledger lives inside the result value, so concurrent batches
// never interfere.
type BatchResult struct {
	Uploaded    []FileInfo      `json:"uploaded"`
	Failed      []UploadFailure `json:"failed"`
	CreatedDirs []string        `json:"created_dirs,omitempty"`
}

// UploadBatch stores a folder upload under the target directory. Each file is
// validated and written independently with the same rules as Upload; a
// failure never aborts sibling transfers. Files are streamed uniformly
// chunk-by-chunk, so aggregate batch size is unbounded while per-file memory
// stays constant.
func (s *Service) UploadBatch(ctx context.Context, dir string, entries []BatchEntry) BatchResult {
	res := BatchResult{
		Uploaded: []FileInfo{},
		Failed:   []UploadFailure{},
	}
	created := make(map[string]struct{})

	for _, ent := range entries {
		if err := ctx.Err(); err != nil {
			// Timeout or disconnect: report every file not yet completed.
			res.Failed = append(res.Failed, UploadFailure{Filename: ent.RelPath, Error: err.Error()})
			continue
		}

		fi, err := s.uploadBatchEntry(ctx, dir, ent, created, &res)
		if err != nil {
			res.Failed = append(res.Failed, UploadFailure{Filename: ent.RelPath, Error: err.Error()})
			continue
		}
		res.Uploaded = append(res.Uploaded, fi)
	}
	return res
}

func (s *Service) uploadBatchEntry(ctx context.Context, dir string, ent BatchEntry, created map[string]struct{}, res *BatchResult) (FileInfo, error) {
	rel := strings.Trim(strings.ReplaceAll(ent.RelPath, "\\", "/"), "/")
	if rel == "" || rel == "." {
		return FileInfo{}, badRequest(ent.RelPath, "invalid relative path")
	}

	sub := path.Dir(rel)
	base := path.Base(rel)
	targetDir := strings.Trim(filepath.ToSlash(dir), "/")
	if sub != "." {
		targetDir = path.Join(targetDir, sub)
	}

	if err := s.ensureBatchDir(targetDir, created, res); err != nil {
		return FileInfo{}, err
	}

	src, err := ent.Open()
	if err != nil {
		return FileInfo{}, internal(ent.RelPath, "failed to open upload source", err)
	}
	defer func() { _ = src.Close() }()

	return s.Upload(ctx, targetDir, base, src)
}

// ensureBatchDir creates the target directory if needed, recording every
// newly created level once in the batch's ledger so the response can report
// which directories are new. Directories that already existed, or were made
// earlier in the same batch, are not re-reported.
func (s *Service) ensureBatchDir(targetDir string, created map[string]struct{}, res *BatchResult) error {
	if targetDir == "" {
		return nil
	}
	if _, ok := created[targetDir]; ok {
		return nil
	}

	if _, err := s.Resolve(targetDir); err != nil {
		return err
	}

	segments := strings.Split(targetDir, "/")
	prefix := ""
	for _, seg := range segments {
		prefix = path.Join(prefix, seg)
		if _, ok := created[prefix]; ok {
			continue
		}

		abs, err := s.Resolve(prefix)
		if err != nil {
			return err
		}
		if _, err := os.Stat(abs); err == nil {
			created[prefix] = struct{}{}
			continue
		}
		if err := os.Mkdir(abs, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
			return internal(prefix, "failed to create directory", err)
		}
		created[prefix] = struct{}{}
		res.CreatedDirs = append(res.CreatedDirs, prefix)
	}
	return nil
}

// sanitizeFilename strips any path components and NUL bytes from a
// client-supplied filename, leaving only a base name.
func sanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = strings.ReplaceAll(filename, "\x00", "")
	filename = path.Base(filename)
	if filename == "." || filename == ".." || filename == "/" {
		return ""
	}
	return filename
}
