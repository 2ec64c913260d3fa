// Package main is the entrypoint for Maintain: the recommendation API, the
// Telegram bot and their maintenance commands.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "modernc.org/sqlite"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Content recommendations over HTTP and Telegram",
	Long: `Maintain recommends web content with Gemini, falls back to your saved
items when the model is unavailable, and serves trending YouTube videos.
It runs as an HTTP API, a Telegram bot, or both.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "Path to configuration file")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
