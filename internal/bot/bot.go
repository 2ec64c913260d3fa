// Package bot orchestrates the long-running components of Maintain: the
// Telegram listener, the task scheduler and the HTTP API.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"
)

// APIServer is the HTTP API; it returns once ctx is cancelled and the
// server has drained.
type APIServer interface {
	Run(ctx context.Context) error
}

// Bot represents the main application and manages its components' lifecycle.
// Any of the Telegram bot, the scheduler or the API server may be nil.
type Bot struct {
	logger    *slog.Logger
	tgBot     *tgbot.Bot
	scheduler *Scheduler
	api       APIServer
}

// NewBot creates the orchestrator. At least one component must be non-nil.
func NewBot(logger *slog.Logger, tgBot *tgbot.Bot, scheduler *Scheduler, api APIServer) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		tgBot:     tgBot,
		scheduler: scheduler,
		api:       api,
	}
}

// Run starts every configured component and blocks until ctx is cancelled
// or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	if b.tgBot == nil && b.scheduler == nil && b.api == nil {
		return errors.New("nothing to run: no telegram bot, scheduler or api server configured")
	}
	b.logger.Info("Starting orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	if b.tgBot != nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram bot listener...")
			b.tgBot.Start(gCtx)
			b.logger.Info("Telegram bot listener stopped.")

			if gCtx.Err() == nil {
				b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
				return fmt.Errorf("telegram listener stopped unexpectedly")
			}
			return nil
		})
	}

	if b.scheduler != nil {
		g.Go(func() error {
			b.logger.Info("Starting scheduler...")
			if err := b.scheduler.Start(); err != nil {
				b.logger.Error("Failed to start scheduler", "error", err)
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	if b.api != nil {
		g.Go(func() error {
			b.logger.Info("Starting HTTP API...")
			if err := b.api.Run(gCtx); err != nil {
				return fmt.Errorf("http api: %w", err)
			}
			return nil
		})
	}

	b.logger.Info("Orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Orchestrator stopped gracefully.")
	return nil
}
