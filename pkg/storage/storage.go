package storage

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config describes one storage root and its upload policy. It is passed
// explicitly into New so tests can construct isolated roots per case.
type Config struct {
	RootDir           string        `env:"STORAGE_ROOT_DIR,required"`                         // RootDir is the directory all logical paths are confined to.
	AllowedExtensions []string      `env:"STORAGE_ALLOWED_EXTENSIONS" envDefault:"*"`         // AllowedExtensions is the upload allow-list; "*" allows everything.
	MaxUploadSize     int64         `env:"STORAGE_MAX_UPLOAD_SIZE" envDefault:"1073741824"`   // MaxUploadSize caps a single uploaded file, in bytes.
	RequestTimeout    time.Duration `env:"STORAGE_REQUEST_TIMEOUT" envDefault:"24h"`          // RequestTimeout bounds one file operation; large to allow huge folder uploads.
}

// TransferRecorder receives transfer byte counts. The storage engine stays
// transport-agnostic; the metrics package provides the real implementation.
type TransferRecorder interface {
	BytesUploaded(n int64)
	BytesDownloaded(n int64)
}

type noopRecorder struct{}

func (noopRecorder) BytesUploaded(int64)   {}
func (noopRecorder) BytesDownloaded(int64) {}

// Service is the sandboxed file-storage engine. All operations resolve
// client-supplied logical paths against the configured root and never touch
// anything outside it. The filesystem is the only shared state: there is no
// in-process locking, and concurrent operations racing on the same path rely
// on the atomicity of the underlying rename and exclusive-create syscalls.
type Service struct {
	root    string              // absolute, fixed for the process lifetime
	allowed map[string]struct{} // lowercased extensions with dot; nil means wildcard
	maxSize int64
	log     *slog.Logger
	rec     TransferRecorder
}

// Option configures the Service.
type Option func(*Service)

// WithLogger supplies the logger used for skipped-entry warnings. A nil
// logger is ignored.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRecorder supplies a transfer byte recorder.
func WithRecorder(rec TransferRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.rec = rec
		}
	}
}

// New creates a storage service rooted at cfg.RootDir. The root is resolved
// to an absolute path and created if absent.
func New(cfg Config, opts ...Option) (*Service, error) {
	if cfg.RootDir == "" {
		return nil, badRequest("", "storage root directory is not configured")
	}

	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, internal(cfg.RootDir, "failed to resolve storage root", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, internal(cfg.RootDir, "failed to create storage root", err)
	}

	s := &Service{
		root:    root,
		allowed: buildExtensionSet(cfg.AllowedExtensions),
		maxSize: cfg.MaxUploadSize,
		log:     slog.New(slog.DiscardHandler),
		rec:     noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute storage root.
func (s *Service) Root() string { return s.root }

// buildExtensionSet normalizes the allow-list to lowercased dot-prefixed
// extensions. An empty list or a "*" entry means everything is allowed.
func buildExtensionSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "*" {
			return nil
		}
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// checkExtension enforces the upload allow-list against a base filename.
func (s *Service) checkExtension(filename string) error {
	if s.allowed == nil {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.allowed[ext]; !ok {
		return invalidFileType(filename, ext)
	}
	return nil
}
