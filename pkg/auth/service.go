package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists accounts. The Postgres implementation lives in
// store_pg.go; tests substitute an in-memory fake.
type UserStore interface {
	// FindByEmail returns ErrUserNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (User, error)
	// Create inserts a new account, returning ErrUserExists on a duplicate email.
	Create(ctx context.Context, user User) error
}

// Revoker tracks tokens invalidated before their natural expiry. The Redis
// implementation lives in revoker.go.
type Revoker interface {
	// Revoke marks a token ID invalid for the given remaining lifetime.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether a token ID has been revoked.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Service implements login, logout and registration on top of a user store,
// a token service and a revocation list.
type Service struct {
	store  UserStore
	tokens *TokenService
	rev    Revoker
}

// NewService wires the auth service. The revoker may be nil, in which case
// logout is a no-op and tokens stay valid until expiry.
func NewService(store UserStore, tokens *TokenService, rev Revoker) *Service {
	return &Service{store: store, tokens: tokens, rev: rev}
}

// Login verifies credentials and issues a token. Unknown emails, inactive
// accounts and wrong passwords all come back as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *Claims, error) {
	user, err := s.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if !user.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	return s.tokens.Issue(user)
}

// Logout revokes the token's jti for its remaining lifetime.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if s.rev == nil || claims == nil || claims.ID == "" {
		return nil
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}
	return s.rev.Revoke(ctx, claims.ID, remaining)
}

// Register creates a new account with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, email, password string, role Role) (User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || len(email) < 3 {
		return User{}, errors.New("invalid email format")
	}
	if len(password) < 8 {
		return User{}, ErrWeakPassword
	}
	if !role.Valid() {
		role = RoleUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Verify validates a token and checks the revocation list.
func (s *Service) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if s.rev != nil && claims.ID != "" {
		revoked, err := s.rev.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
