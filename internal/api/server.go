// Package api serves the REST API consumed by the web UI.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/logger"
	"github.com/edgard/maintain/internal/model"
	"github.com/edgard/maintain/internal/trending"
)

// Recommender produces suggestions; it never fails.
type Recommender interface {
	Recommend(ctx context.Context, userID string, req model.RecommendRequest) model.RecommendResponse
}

// TrendingSource returns trending content; it never fails.
type TrendingSource interface {
	Trending(ctx context.Context, category string, count int) trending.Response
}

// Deps are the collaborators of the HTTP server.
type Deps struct {
	Config      config.ServerConfig
	LinkTTL     time.Duration
	Store       database.Store
	Auth        *auth.Service
	Recommender Recommender
	Trending    TrendingSource
	Cache       cache.Cache
	Logger      *slog.Logger
}

// Server owns the router and the listening http.Server.
type Server struct {
	deps    Deps
	log     *slog.Logger
	handler http.Handler
}

// NewServer wires the routes.
func NewServer(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	if deps.LinkTTL <= 0 {
		deps.LinkTTL = 10 * time.Minute
	}
	s := &Server{deps: deps, log: deps.Logger.With("component", "api")}
	s.handler = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(logger.HTTPMiddleware(s.log))
	r.Use(metricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.deps.Config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.AllowContentType("application/json"))
		r.Use(s.loadUser)

		r.With(s.recommendLimit()).Post("/recommend", s.handleRecommend)
		r.Get("/trending", s.handleTrending)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.With(s.requireUser).Post("/telegram-link", s.handleTelegramLink)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Get("/likes", s.handleGetLikes)
			r.Post("/likes", s.handleAddLike)
			r.Delete("/likes", s.handleDeleteLike)

			r.Get("/saves", s.handleGetSaves)
			r.Post("/saves", s.handleAddSave)
			r.Delete("/saves", s.handleDeleteSave)

			r.Get("/history", s.handleGetHistory)
			r.Post("/history", s.handleAddHistory)
			r.Delete("/history", s.handleDeleteHistory)

			r.Get("/profile", s.handleGetProfile)
			r.Post("/profile", s.handleSaveProfile)

			r.Get("/stats", s.handleGetStats)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

func (s *Server) recommendLimit() func(http.Handler) http.Handler {
	if s.deps.Config.RecommendRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.deps.Config.RecommendRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, http.StatusTooManyRequests, "too many requests")
		}),
	)
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.deps.Config.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.deps.Config.ReadTimeout,
		WriteTimeout: s.deps.Config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.deps.Config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Store.Ping(r.Context()); err != nil {
		s.log.ErrorContext(r.Context(), "Health check failed", "error", err)
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
