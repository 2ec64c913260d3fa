// Package handlers contains Telegram bot command, message and callback
// handlers, along with their registration logic and middleware.
package handlers

import (
	"context"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/metrics"
)

type userKey struct{}

func withUser(ctx context.Context, u *database.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// userFrom returns the user resolved by ResolveUser, or nil.
func userFrom(ctx context.Context) *database.User {
	u, _ := ctx.Value(userKey{}).(*database.User)
	return u
}

// identityOf describes the sender of a message or callback.
func identityOf(update *models.Update) (database.TelegramIdentity, bool) {
	var from *models.User
	switch {
	case update.Message != nil:
		from = update.Message.From
	case update.CallbackQuery != nil:
		from = &update.CallbackQuery.From
	}
	if from == nil || from.IsBot {
		return database.TelegramIdentity{}, false
	}
	return database.TelegramIdentity{
		TelegramID:   strconv.FormatInt(from.ID, 10),
		Username:     from.Username,
		FirstName:    from.FirstName,
		LastName:     from.LastName,
		LanguageCode: from.LanguageCode,
	}, true
}

// ResolveUser finds or creates the sender's account and stores it on the
// context before the handler runs. Updates without a human sender pass
// through untouched.
func ResolveUser(deps HandlerDeps) tgbot.Middleware {
	log := deps.Logger.With("middleware", "resolve_user")
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			identity, ok := identityOf(update)
			if !ok {
				next(ctx, b, update)
				return
			}
			u, err := deps.Store.FindOrCreateTelegramUser(ctx, identity)
			if err != nil {
				log.ErrorContext(ctx, "Failed to resolve telegram user", "telegram_id", identity.TelegramID, "error", err)
				if update.Message != nil {
					sendText(ctx, b, log, update.Message.Chat.ID, deps.Config.Messages.Error)
				}
				return
			}
			next(withUser(ctx, u), b, update)
		}
	}
}

// CountUpdates records every update in the bot metrics.
func CountUpdates() tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			kind := "other"
			switch {
			case update.Message != nil:
				kind = "message"
			case update.CallbackQuery != nil:
				kind = "callback_query"
			}
			metrics.BotUpdatesTotal.WithLabelValues(kind).Inc()
			next(ctx, b, update)
		}
	}
}
