package pg

import "errors"

var (
	// ErrParseConfig is returned when the connection string cannot be parsed.
	ErrParseConfig = errors.New("failed to parse postgres connection config")
	// ErrNotReady is returned when all connection attempts fail.
	ErrNotReady = errors.New("postgres is not ready")
	// ErrMigrate wraps migration failures.
	ErrMigrate = errors.New("failed to apply migrations")
)
