package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/fileharbor/fileharbor/pkg/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string    `json:"id"`
	Email string    `json:"email"`
	Role  auth.Role `json:"role"`
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorBody(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	token, claims, err := rt.auth.Login(r.Context(), req.Email, req.Password)
	if rt.metrics != nil {
		rt.metrics.RecordAuthAttempt(err == nil)
	}
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondErrorBody(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		rt.respondError(w, r, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
		"user": userResponse{
			ID:    claims.Subject,
			Email: claims.Email,
			Role:  claims.Role,
		},
	})
}

func (rt *Router) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		respondErrorBody(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	if err := rt.auth.Logout(r.Context(), claims); err != nil {
		rt.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (rt *Router) handleValidate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		respondErrorBody(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"valid": true,
		"user": userResponse{
			ID:    p.UserID.String(),
			Email: p.Email,
			Role:  p.Role,
		},
	})
}

type registerRequest struct {
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     auth.Role `json:"role"`
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorBody(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	user, err := rt.auth.Register(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondErrorBody(w, http.StatusConflict, "user_exists", "an account with this email already exists")
		case errors.Is(err, auth.ErrWeakPassword):
			respondErrorBody(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters")
		default:
			respondErrorBody(w, http.StatusBadRequest, "bad_request", err.Error())
		}
		return
	}

	respond(w, http.StatusCreated, userResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  user.Role,
	})
}
