package tasks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
	"github.com/edgard/maintain/internal/trending"
)

const (
	digestCount = 3
	// digestPause keeps bursts well below Telegram's 30 messages per second.
	digestPause = 50 * time.Millisecond
)

// digestCategories maps favourite tags onto YouTube trending categories.
var digestCategories = map[string]string{
	"gaming":        "gaming",
	"games":         "gaming",
	"music":         "music",
	"podcast":       "music",
	"entertainment": "entertainment",
	"comedy":        "entertainment",
	"funny":         "entertainment",
	"education":     "education",
	"learning":      "education",
	"tutorial":      "education",
	"coding":        "education",
	"programming":   "education",
	"science":       "education",
	"tech":          "education",
}

// newDailyDigestTask sends every opted-in Telegram user a short list of
// trending content matched to their favourite category.
func newDailyDigestTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "daily_digest")

	return func(ctx context.Context) error {
		recipients, err := deps.Store.ListDigestRecipients(ctx)
		if err != nil {
			log.ErrorContext(ctx, "Failed to list digest recipients", "error", err)
			return fmt.Errorf("failed to list digest recipients: %w", err)
		}
		if len(recipients) == 0 {
			log.InfoContext(ctx, "No digest recipients")
			return nil
		}

		byCategory := map[string]trending.Response{}
		sent, failed := 0, 0
		for i, r := range recipients {
			if i > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(digestPause):
				}
			}

			category := digestCategory(r.FavoriteCategories.V)
			resp, ok := byCategory[category]
			if !ok {
				resp = deps.Trending.Trending(ctx, category, digestCount)
				byCategory[category] = resp
			}
			if len(resp.Suggestions) == 0 {
				continue
			}

			chatID, err := strconv.ParseInt(r.TelegramID, 10, 64)
			if err != nil {
				log.WarnContext(ctx, "Skipping recipient with invalid telegram id", "user_id", r.UserID, "telegram_id", r.TelegramID)
				failed++
				continue
			}
			if _, err := deps.Sender.SendMessage(ctx, &bot.SendMessageParams{
				ChatID:    chatID,
				Text:      formatDigest(r, resp),
				ParseMode: models.ParseModeMarkdown,
			}); err != nil {
				log.WarnContext(ctx, "Failed to send digest", "user_id", r.UserID, "error", err)
				failed++
				continue
			}
			sent++
		}

		log.InfoContext(ctx, "Daily digest finished", "recipients", len(recipients), "sent", sent, "failed", failed)
		if sent == 0 && failed > 0 {
			return fmt.Errorf("daily digest failed for all %d recipients", failed)
		}
		return nil
	}
}

// digestCategory picks the trending category for the most frequent mapped tag.
func digestCategory(favorites map[string]int) string {
	tags := make([]string, 0, len(favorites))
	for tag := range favorites {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if favorites[tags[i]] != favorites[tags[j]] {
			return favorites[tags[i]] > favorites[tags[j]]
		}
		return tags[i] < tags[j]
	})
	for _, tag := range tags {
		if c, ok := digestCategories[strings.ToLower(tag)]; ok {
			return c
		}
	}
	return trending.CategoryAll
}

func formatDigest(r database.DigestRecipient, resp trending.Response) string {
	var sb strings.Builder
	sb.WriteString("☀️ *Your Daily Digest*\n\n")
	if mood := model.Mood(r.CurrentMood.String); mood.Valid() {
		fmt.Fprintf(&sb, "%s %s\n\n", mood.Emoji(), bot.EscapeMarkdown("Picked for a "+string(mood)+" day."))
	}
	for i, s := range resp.Suggestions {
		fmt.Fprintf(&sb, "%d\\. *%s*\n", i+1, bot.EscapeMarkdown(s.Title))
		if s.CreatorName != "" {
			fmt.Fprintf(&sb, "   👤 %s\n", bot.EscapeMarkdown(s.CreatorName))
		}
		if s.URL != "" && s.URL != "#" {
			fmt.Fprintf(&sb, "   🔗 [Watch](%s)\n", strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(s.URL))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(bot.EscapeMarkdown("Turn this off any time with /notifications."))
	return sb.String()
}
