package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/spf13/cobra"

	"github.com/edgard/maintain/internal/gemini"
	"github.com/edgard/maintain/internal/telegram"
	"github.com/edgard/maintain/internal/trending"
)

const checkTimeout = 15 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration and upstream services",
	Long: `Load the configuration, ping the database and probe the Gemini,
Telegram and YouTube credentials. Optional services that are not
configured are reported but do not fail the check.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

type checkResult struct {
	name string
	err  error
	info string
	// optional results with errSkipped do not fail the run
	skipped bool
}

var errSkipped = errors.New("not configured")

func runCheck(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	results := []checkResult{{name: "config", info: fmt.Sprintf("database=%s", a.cfg.Database.Driver)}}
	results = append(results, checkDatabase(ctx, a))
	results = append(results, checkGemini(ctx, a))
	results = append(results, checkTelegram(ctx, a))
	results = append(results, checkYouTube(ctx, a))

	failed := printChecks(cmd.OutOrStdout(), results)
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

func printChecks(w io.Writer, results []checkResult) int {
	failed := 0
	for _, r := range results {
		switch {
		case r.skipped:
			fmt.Fprintf(w, "⚠️  %-9s %v\n", r.name, errSkipped)
		case r.err != nil:
			failed++
			fmt.Fprintf(w, "❌ %-9s %v\n", r.name, r.err)
		default:
			fmt.Fprintf(w, "✅ %-9s %s\n", r.name, r.info)
		}
	}
	return failed
}

func checkDatabase(ctx context.Context, a *app) checkResult {
	r := checkResult{name: "database"}
	if r.err = a.openStore(); r.err != nil {
		return r
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if r.err = a.store.Ping(ctx); r.err == nil {
		r.info = "reachable, migrations applied"
	}
	return r
}

func checkGemini(ctx context.Context, a *app) checkResult {
	r := checkResult{name: "gemini"}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	client, err := gemini.NewClient(ctx, a.cfg.Gemini, a.log)
	if errors.Is(err, gemini.ErrMissingAPIKey) {
		r.skipped = true
		return r
	}
	if err != nil {
		r.err = err
		return r
	}
	if _, r.err = client.Generate(ctx, "Answer with the single word OK.", "ping"); r.err == nil {
		r.info = "model " + client.ModelName()
	}
	return r
}

func checkTelegram(ctx context.Context, a *app) checkResult {
	r := checkResult{name: "telegram"}
	if a.cfg.RequireTelegram() != nil {
		r.skipped = true
		return r
	}
	tg, err := a.newTelegramClient()
	if err != nil {
		r.err = err
		return r
	}
	username, err := telegramUsername(ctx, tg)
	if err != nil {
		r.err = err
		return r
	}
	r.info = "@" + username
	return r
}

func checkYouTube(ctx context.Context, a *app) checkResult {
	r := checkResult{name: "youtube"}
	if a.cfg.YouTube.APIKey == "" {
		r.skipped = true
		return r
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	resp := trending.NewService(a.cfg.YouTube, false, a.log).Trending(ctx, "music", 1)
	if resp.Source != trending.SourceYouTube {
		r.err = fmt.Errorf("youtube api unavailable: %s", resp.Error)
		return r
	}
	r.info = fmt.Sprintf("region %s", a.cfg.YouTube.RegionCode)
	return r
}

// telegramUsername verifies the token with getMe.
func telegramUsername(ctx context.Context, tg *tgbot.Bot) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	return telegram.HealthCheck(ctx, tg)
}
