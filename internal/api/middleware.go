package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/metrics"
)

// metricsMiddleware records request counts and latency by route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(route, r.Method, status, time.Since(start))
	})
}

// loadUser puts the cookie's user id, if any, on the request context.
func (s *Server) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := auth.UserIDFromRequest(r); id != "" {
			r = r.WithContext(auth.WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// requireUser rejects requests without a session for an existing user.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := auth.UserIDFromContext(r.Context())
		if id == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if _, err := s.deps.Store.GetUserByID(r.Context(), id); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				auth.ClearSessionCookie(w, s.deps.Config.CookieSecure)
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			s.log.ErrorContext(r.Context(), "Failed to load session user", "user_id", id, "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		next.ServeHTTP(w, r)
	})
}
