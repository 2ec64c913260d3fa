package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/database"
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

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger      *slog.Logger
	Config      *config.Config
	Store       database.Store
	Recommender Recommender
	Trending    TrendingSource
	Cache       cache.Cache
}
