package storage

import (
	"fmt"
)

// Kind classifies a storage failure so callers can branch on the category
// without matching message strings.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidPath
	KindNotFound
	KindFileExists
	KindInvalidFileType
	KindFileTooLarge
	KindBadRequest
)

// String returns the wire-level error code for the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidPath:
		return "invalid_path"
	case KindNotFound:
		return "not_found"
	case KindFileExists:
		return "file_exists"
	case KindInvalidFileType:
		return "invalid_file_type"
	case KindFileTooLarge:
		return "file_too_large"
	case KindBadRequest:
		return "bad_request"
	default:
		return "internal_error"
	}
}

// Error is the tagged failure type returned by every public storage
// operation. The structured fields (Path, Size) are separate from the
// human-readable message so callers never need to parse it. Underlying OS
// errors are kept in Err for logging but never drive caller behavior.
type Error struct {
	Kind    Kind
	Path    string // logical path the operation failed on, when known
	Size    int64  // size limit or payload size for KindFileTooLarge
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, which makes the kind sentinels
// below usable with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Kind sentinels for errors.Is checks.
var (
	ErrInvalidPath     = &Error{Kind: KindInvalidPath}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrFileExists      = &Error{Kind: KindFileExists}
	ErrInvalidFileType = &Error{Kind: KindInvalidFileType}
	ErrFileTooLarge    = &Error{Kind: KindFileTooLarge}
	ErrBadRequest      = &Error{Kind: KindBadRequest}
	ErrInternal        = &Error{Kind: KindInternal}
)

func invalidPath(path string) *Error {
	return &Error{Kind: KindInvalidPath, Path: path, Message: fmt.Sprintf("invalid path: %s", path)}
}

func notFound(path string) *Error {
	return &Error{Kind: KindNotFound, Path: path, Message: fmt.Sprintf("not found: %s", path)}
}

func fileExists(path string) *Error {
	return &Error{Kind: KindFileExists, Path: path, Message: fmt.Sprintf("file already exists: %s", path)}
}

func invalidFileType(path, ext string) *Error {
	return &Error{Kind: KindInvalidFileType, Path: path, Message: fmt.Sprintf("file type %q is not allowed", ext)}
}

func fileTooLarge(path string, limit int64) *Error {
	return &Error{Kind: KindFileTooLarge, Path: path, Size: limit, Message: fmt.Sprintf("upload exceeds the maximum of %d bytes", limit)}
}

func badRequest(path, msg string) *Error {
	return &Error{Kind: KindBadRequest, Path: path, Message: msg}
}

func internal(path, msg string, err error) *Error {
	return &Error{Kind: KindInternal, Path: path, Message: msg, Err: err}
}
