package redis

import "errors"

var (
	// ErrParseURL is returned when the connection URL cannot be parsed.
	ErrParseURL = errors.New("failed to parse redis connection url")
	// ErrNotReady is returned when all connection attempts fail.
	ErrNotReady = errors.New("redis is not ready")
)
