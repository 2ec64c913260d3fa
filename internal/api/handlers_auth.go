package api

import (
	"errors"
	"net/http"

	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/database"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type userResponse struct {
	User *auth.User `json:"user"`
}

type linkCodeResponse struct {
	Code      string `json:"code"`
	ExpiresIn int    `json:"expiresIn"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.deps.Auth.Signup(r.Context(), req.Email, req.Password, req.Name)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrMissingCredentials), errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrUserExists):
		respondError(w, http.StatusConflict, err.Error())
		return
	default:
		s.log.ErrorContext(r.Context(), "Signup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create account")
		return
	}

	auth.SetSessionCookie(w, u.ID, s.deps.Config.CookieSecure)
	respondJSON(w, http.StatusCreated, userResponse{User: u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := s.deps.Auth.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrMissingCredentials):
		respondError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	default:
		s.log.ErrorContext(r.Context(), "Login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	auth.SetSessionCookie(w, u.ID, s.deps.Config.CookieSecure)
	respondJSON(w, http.StatusOK, userResponse{User: u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, s.deps.Config.CookieSecure)
	respondOK(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := auth.UserIDFromContext(r.Context())
	if id == "" {
		respondJSON(w, http.StatusOK, userResponse{})
		return
	}

	u, err := s.deps.Auth.CurrentUser(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		auth.ClearSessionCookie(w, s.deps.Config.CookieSecure)
		respondJSON(w, http.StatusOK, userResponse{})
		return
	}
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to load current user", "user_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	respondJSON(w, http.StatusOK, userResponse{User: u})
}

func (s *Server) handleTelegramLink(w http.ResponseWriter, r *http.Request) {
	id := auth.UserIDFromContext(r.Context())
	code, err := cache.IssueLinkCode(r.Context(), s.deps.Cache, id, s.deps.LinkTTL)
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to issue link code", "user_id", id, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to create link code")
		return
	}
	respondJSON(w, http.StatusOK, linkCodeResponse{Code: code, ExpiresIn: int(s.deps.LinkTTL.Seconds())})
}
