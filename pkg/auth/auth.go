package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role gates access to admin-only operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated identity attached to a request. The file
// endpoints treat it as an opaque capability: they check presence (and role
// for admin operations) and nothing else.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// IsAdmin reports whether the principal may perform admin-only operations.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Claims is the JWT payload. The registered jti claim carries the token ID
// used for revocation.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// User is a stored account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Config describes the auth collaborator.
type Config struct {
	Enabled   bool          `env:"AUTH_ENABLED" envDefault:"true"`  // Enabled turns authentication off entirely for local single-user setups.
	JWTSecret string        `env:"AUTH_JWT_SECRET"`                 // JWTSecret signs and verifies tokens; required when auth is enabled.
	TokenTTL  time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"` // TokenTTL is how long issued tokens stay valid.
}
