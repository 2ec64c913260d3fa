package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const sendTimeout = 10 * time.Second

func sendText(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	send(ctx, b, log, &tgbot.SendMessageParams{ChatID: chatID, Text: text})
}

// sendMarkdown sends legacy Markdown, used for configurable texts that
// contain *bold* markers but no escaping.
func sendMarkdown(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	send(ctx, b, log, &tgbot.SendMessageParams{ChatID: chatID, Text: text, ParseMode: models.ParseModeMarkdownV1})
}

// sendMarkdownV2 sends pre-escaped MarkdownV2, split into chunks when long.
func sendMarkdownV2(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64, text string) {
	for _, chunk := range SplitMessage(text, MaxMessageLength) {
		send(ctx, b, log, &tgbot.SendMessageParams{ChatID: chatID, Text: chunk, ParseMode: models.ParseModeMarkdown})
	}
}

func send(ctx context.Context, b *tgbot.Bot, log *slog.Logger, params *tgbot.SendMessageParams) *models.Message {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	msg, err := b.SendMessage(sendCtx, params)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", params.ChatID)
		return nil
	}
	return msg
}

// commandArgs returns the words after the command.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// callbackMessage returns the chat and message a callback came from.
func callbackMessage(q *models.CallbackQuery) (chatID int64, messageID int, ok bool) {
	if q == nil || q.Message.Message == nil {
		return 0, 0, false
	}
	return q.Message.Message.Chat.ID, q.Message.Message.ID, true
}
