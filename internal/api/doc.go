// Package api mounts the JSON HTTP surface over the storage engine: file
// listing, streaming upload and download, directory and mutation operations,
// filename search, and the optional auth endpoints. Handlers translate the
// storage engine's tagged errors into stable HTTP status codes and a uniform
// error body.
package api
