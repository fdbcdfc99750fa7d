// Package storage implements a sandboxed file-storage engine: every
// operation takes a client-supplied logical path, resolves it against a
// single configured root directory, and is guaranteed never to touch
// anything outside that root.
//
// # Architecture
//
// The Service exposes the full operation set of a network file manager:
//
//   - Resolve / Describe / Stat - path validation and metadata
//   - List - sorted, non-recursive directory listings
//   - Download / Upload / UploadBatch - streaming transfers with
//     extension, size and overwrite policy
//   - Rename / Move / Delete / Mkdir - filesystem mutations
//   - Search - recursive name matching with a closeness score
//
// The filesystem is the only durable state. Descriptors are produced fresh
// on every read and nothing is cached in process memory, so concurrent
// requests coordinate solely through the atomicity of individual syscalls
// (rename, exclusive create). Racing operations on the same path may observe
// not-found, file-exists, or last-writer-wins; all are well-defined outcomes.
//
// # Usage
//
//	svc, err := storage.New(storage.Config{
//		RootDir:           "/data",
//		AllowedExtensions: []string{"*"},
//		MaxUploadSize:     1 << 30,
//	}, storage.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	fi, err := svc.Upload(ctx, "notes", "todo.txt", src)
//	if errors.Is(err, storage.ErrFileExists) {
//		// destination already present, nothing was overwritten
//	}
//
// # Error Handling
//
// Every public operation returns *Error, a tagged variant carrying a Kind
// plus structured Path/Size fields, so callers branch with errors.Is against
// the kind sentinels instead of matching message strings. Raw OS errors are
// wrapped and never escape the package contract. Context cancellation and
// deadline errors pass through unchanged.
package storage
