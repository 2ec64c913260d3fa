package handlers

import (
	"context"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Telegram shows a chat action for about five seconds.
const (
	typingInterval      = 4 * time.Second
	typingActionTimeout = 2 * time.Second
)

// keepTyping shows the typing indicator until the returned stop func is called.
func keepTyping(ctx context.Context, b *tgbot.Bot, log *slog.Logger, chatID int64) (stop func()) {
	typingCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(typingInterval)
		defer ticker.Stop()

		for {
			if err := sendTypingAction(typingCtx, b, chatID); err != nil {
				if typingCtx.Err() != nil {
					return
				}
				log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
			}
			select {
			case <-typingCtx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func sendTypingAction(ctx context.Context, b *tgbot.Bot, chatID int64) error {
	actionCtx, cancel := context.WithTimeout(ctx, typingActionTimeout)
	defer cancel()
	_, err := b.SendChatAction(actionCtx, &tgbot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
	return err
}
