package auth

import "errors"

var (
	// ErrMissingSigningKey is returned when auth is enabled without a JWT secret.
	ErrMissingSigningKey = errors.New("jwt signing key is not configured")
	// ErrInvalidToken covers malformed, mis-signed and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked is returned for tokens invalidated by logout.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrInvalidCredentials is returned for unknown users, inactive accounts
	// and wrong passwords alike, so responses don't leak which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when registering an already-taken email.
	ErrUserExists = errors.New("user with this email already exists")
	// ErrWeakPassword is returned when a password fails the minimum policy.
	ErrWeakPassword = errors.New("password must be at least 8 characters long")
	// ErrUserNotFound is returned by stores when no row matches.
	ErrUserNotFound = errors.New("user not found")
)
