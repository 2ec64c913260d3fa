package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/database"
)

// NewLinkHandler returns a handler for /link <code>, which attaches this chat
// to the web account that issued the code.
func NewLinkHandler(deps HandlerDeps) bot.HandlerFunc {
	return linkHandler{deps}.Handle
}

type linkHandler struct {
	deps HandlerDeps
}

func (h linkHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "link")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	msgs := h.deps.Config.Messages

	identity, ok := identityOf(update)
	if !ok {
		return
	}
	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		sendText(ctx, b, log, chatID, "Usage: /link <code>\n\nGenerate a code from your account page in the web app.")
		return
	}

	userID, err := cache.RedeemLinkCode(ctx, h.deps.Cache, args[0])
	if err != nil {
		if !errors.Is(err, cache.ErrInvalidLinkCode) {
			log.ErrorContext(ctx, "Failed to redeem link code", "error", err)
		}
		sendText(ctx, b, log, chatID, msgs.LinkInvalid)
		return
	}

	err = h.deps.Store.LinkTelegramToWebUser(ctx, userID, identity)
	switch {
	case err == nil:
		log.InfoContext(ctx, "Telegram account linked", "user_id", userID, "telegram_id", identity.TelegramID)
		sendText(ctx, b, log, chatID, msgs.LinkSuccess)
	case errors.Is(err, database.ErrTelegramAlreadyLinked):
		sendText(ctx, b, log, chatID, "❌ This Telegram account is already linked to another web account.")
	case errors.Is(err, database.ErrUserAlreadyLinked):
		sendText(ctx, b, log, chatID, "❌ That web account is already linked to a different Telegram account.")
	case errors.Is(err, database.ErrNotFound):
		sendText(ctx, b, log, chatID, msgs.LinkInvalid)
	default:
		log.ErrorContext(ctx, "Failed to link telegram account", "user_id", userID, "error", err)
		sendText(ctx, b, log, chatID, msgs.Error)
	}
}
