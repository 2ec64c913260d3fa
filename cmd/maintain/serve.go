package main

import (
	"context"
	"errors"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/edgard/maintain/internal/bot"
	"github.com/edgard/maintain/internal/bot/tasks"
)

var serveWithBot bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduler",
	Long: `Run the HTTP API together with the maintenance scheduler.
With --bot the Telegram bot runs in the same process.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDaemon(cmd.Context(), true, serveWithBot)
	},
}

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot and the scheduler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDaemon(cmd.Context(), false, true)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveWithBot, "bot", false, "Also run the Telegram bot")
	rootCmd.AddCommand(serveCmd, botCmd)
}

func runDaemon(ctx context.Context, withAPI, withBot bool) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.openServices(ctx); err != nil {
		return err
	}

	var tg *tgbot.Bot
	var sender tasks.MessageSender
	if withBot {
		tg, err = a.newTelegram()
		if err != nil {
			a.log.Error("Failed to create Telegram bot", "error", err)
			return err
		}
		username, err := telegramUsername(ctx, tg)
		if err != nil {
			return err
		}
		a.log.Info("Retrieved bot info", "bot_username", username)
		sender = tg
	}

	sched, err := a.newScheduler(sender)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	var server bot.APIServer
	if withAPI {
		server = a.newAPI()
	}

	a.log.Info("Starting Maintain...", "api", withAPI, "bot", withBot)
	runErr := bot.NewBot(a.log, tg, sched, server).Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		a.log.Error("Stopped due to error", "error", runErr)
		return runErr
	}
	a.log.Info("Stopped gracefully.")
	return nil
}
