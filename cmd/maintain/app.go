package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/maintain/internal/api"
	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/bot"
	"github.com/edgard/maintain/internal/bot/handlers"
	"github.com/edgard/maintain/internal/bot/tasks"
	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/gemini"
	"github.com/edgard/maintain/internal/logger"
	"github.com/edgard/maintain/internal/recommend"
	"github.com/edgard/maintain/internal/telegram"
	"github.com/edgard/maintain/internal/trending"
)

// app holds the components shared by the subcommands. Fields are filled
// lazily by the open* methods; close releases whatever was opened.
type app struct {
	cfg   *config.Config
	log   *slog.Logger
	db    *sqlx.DB
	store database.Store
	cache cache.Cache

	recommender *recommend.Service
	trending    *trending.Service
}

// newApp loads the configuration and sets up logging.
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", configPath, "error", err)
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Debug("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)
	return &app{cfg: cfg, log: log}, nil
}

// openStore connects to the database and applies migrations.
func (a *app) openStore() error {
	if a.store != nil {
		return nil
	}
	db, err := database.NewDB(a.cfg.Database)
	if err != nil {
		a.log.Error("Failed to connect to database", "driver", a.cfg.Database.Driver, "error", err)
		return fmt.Errorf("connect to database: %w", err)
	}
	a.db = db
	a.store = database.NewStore(db, a.log)
	return nil
}

// openServices builds the cache and the recommendation and trending
// services. A missing Gemini key is not fatal: every request is then
// served from the fallback.
func (a *app) openServices(ctx context.Context) error {
	if err := a.openStore(); err != nil {
		return err
	}
	c, err := cache.New(a.cfg.Cache, a.log)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	a.cache = c

	client, err := gemini.NewClient(ctx, a.cfg.Gemini, a.log)
	if err != nil {
		if !errors.Is(err, gemini.ErrMissingAPIKey) {
			return fmt.Errorf("create gemini client: %w", err)
		}
		a.log.Warn("No Gemini API key configured, recommendations will use the fallback")
		client = nil
	}
	a.recommender = recommend.NewService(client, a.store, recommend.Options{Production: a.cfg.Server.Production}, a.log)
	a.trending = trending.NewService(a.cfg.YouTube, a.cfg.Server.Production, a.log)
	return nil
}

func (a *app) handlerDeps() handlers.HandlerDeps {
	return handlers.HandlerDeps{
		Logger:      a.log,
		Config:      a.cfg,
		Store:       a.store,
		Recommender: a.recommender,
		Trending:    a.trending,
		Cache:       a.cache,
	}
}

// newTelegram creates the bot with its middleware chain and handlers.
func (a *app) newTelegram() (*tgbot.Bot, error) {
	if err := a.cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	hDeps := a.handlerDeps()
	opts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(a.log), handlers.CountUpdates(), handlers.ResolveUser(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewTextHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(a.cfg.Telegram.Token, a.log, opts...)
	if err != nil {
		return nil, err
	}
	if err := telegram.RegisterHandlers(tg, a.log, handlers.RegisterAllCommands(hDeps)); err != nil {
		return nil, err
	}
	return tg, nil
}

// newTelegramClient creates a bot without handlers for one-off API calls.
func (a *app) newTelegramClient() (*tgbot.Bot, error) {
	if err := a.cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	return telegram.NewTelegramBot(a.cfg.Telegram.Token, a.log)
}

// newScheduler registers the tasks. sender may be nil.
func (a *app) newScheduler(sender tasks.MessageSender) (*bot.Scheduler, error) {
	taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   a.log,
		Store:    a.store,
		Config:   a.cfg,
		Trending: a.trending,
		Cache:    a.cache,
		Sender:   sender,
	})
	return bot.NewScheduler(a.log, &a.cfg.Scheduler, taskMap)
}

func (a *app) newAPI() *api.Server {
	return api.NewServer(api.Deps{
		Config:      a.cfg.Server,
		LinkTTL:     a.cfg.Cache.LinkTTL,
		Store:       a.store,
		Auth:        auth.NewService(a.store, a.log),
		Recommender: a.recommender,
		Trending:    a.trending,
		Cache:       a.cache,
		Logger:      a.log,
	})
}

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("Failed to close cache", "error", err)
		}
	}
	database.CloseDB(a.db)
}
