package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/model"
)

// NewMoodHandler returns a handler for /mood [mood]. Without an argument it
// shows the mood keyboard.
func NewMoodHandler(deps HandlerDeps) bot.HandlerFunc {
	return moodHandler{deps: deps}.Handle
}

// NewMoodShortcutHandler returns a handler for /<mood> shortcuts such as /tired.
func NewMoodShortcutHandler(deps HandlerDeps, mood model.Mood) bot.HandlerFunc {
	return moodHandler{deps: deps, fixed: mood}.Handle
}

type moodHandler struct {
	deps  HandlerDeps
	fixed model.Mood
}

func (h moodHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "mood")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	raw := string(h.fixed)
	if raw == "" {
		args := commandArgs(update.Message.Text)
		if len(args) == 0 {
			send(ctx, b, log, &bot.SendMessageParams{
				ChatID:      chatID,
				Text:        "Set your mood:\n\n" + moodShortcutList() + "\n\nOr use: /mood <mood>",
				ReplyMarkup: moodKeyboard(),
			})
			return
		}
		raw = args[0]
	}

	mood, ok := model.ParseMood(raw)
	if !ok {
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.InvalidMood)
		return
	}
	if err := h.deps.Store.UpdateTelegramMood(ctx, u.TelegramID.String, mood); err != nil {
		log.ErrorContext(ctx, "Failed to set mood", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	log.InfoContext(ctx, "Mood updated", "user_id", u.ID, "mood", mood)
	sendMarkdown(ctx, b, log, chatID, fmt.Sprintf(h.deps.Config.Messages.MoodSet, mood))
}

func moodShortcutList() string {
	lines := make([]string, 0, len(model.Moods))
	for _, m := range model.Moods {
		lines = append(lines, "• /"+string(m))
	}
	return strings.Join(lines, "\n")
}
