// Package tasks implements the scheduled jobs of the Maintain bot: the daily
// digest, history pruning, cache sweeping and SQL maintenance.
package tasks

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/trending"
)

// MessageSender delivers Telegram messages; *bot.Bot satisfies it.
type MessageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// TrendingSource returns trending content; it never fails.
type TrendingSource interface {
	Trending(ctx context.Context, category string, count int) trending.Response
}

// TaskDeps contains all dependencies required by scheduled tasks.
// Sender may be nil when the process runs without a Telegram token; tasks
// that message users are then skipped.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Config   *config.Config
	Trending TrendingSource
	Cache    cache.Cache
	Sender   MessageSender
}
