package storage

import (
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// FileInfo is the transport-level descriptor of one filesystem entry. It is
// produced fresh on every read and has no identity beyond its path: a rename
// changes Path, not some stable ID.
type FileInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	IsDir    bool      `json:"is_dir"`
	Modified time.Time `json:"modified"`
	MIMEType string    `json:"mime_type,omitempty"`
}

// Describe stats a resolved path into a FileInfo. Any stat failure surfaces
// as not-found: listings race concurrent mutation by design, so an entry that
// vanished mid-read is indistinguishable from one that never existed.
func (s *Service) Describe(resolved, logical string) (FileInfo, error) {
	info, err := os.Stat(resolved)
	if err != nil {
		return FileInfo{}, notFound(logical)
	}
	return describe(info, logical), nil
}

// Stat resolves a logical path and describes it in one step.
func (s *Service) Stat(logical string) (FileInfo, error) {
	abs, err := s.Resolve(logical)
	if err != nil {
		return FileInfo{}, err
	}
	return s.Describe(abs, s.logicalOf(abs))
}

// describe converts stat data to a descriptor. The MIME type is a guess from
// the extension only, never content sniffing; a wrong guess is not an error.
func describe(info fs.FileInfo, logical string) FileInfo {
	fi := FileInfo{
		Name:     info.Name(),
		Path:     logical,
		IsDir:    info.IsDir(),
		Modified: info.ModTime().UTC(),
	}
	if !info.IsDir() {
		fi.Size = info.Size()
		fi.MIMEType = guessMIMEType(info.Name())
	}
	return fi
}

func guessMIMEType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
