package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

const notificationsText = "🔔 Notification Settings\n\nTap to toggle:"

// NewNotificationsHandler returns a handler for /notifications.
func NewNotificationsHandler(deps HandlerDeps) bot.HandlerFunc {
	return notificationsHandler{deps}.Handle
}

type notificationsHandler struct {
	deps HandlerDeps
}

func (h notificationsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "notifications")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	settings, err := loadNotificationSettings(ctx, h.deps.Store, u.TelegramID.String)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load notification settings", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	send(ctx, b, log, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        notificationsText,
		ReplyMarkup: notificationsKeyboard(settings),
	})
}

// loadNotificationSettings creates the default settings row when missing.
func loadNotificationSettings(ctx context.Context, store database.Store, telegramID string) (model.NotificationSettings, error) {
	n, err := store.GetNotificationSettings(ctx, telegramID)
	if errors.Is(err, database.ErrNotFound) {
		n, err = store.UpdateNotificationSettings(ctx, telegramID, model.NotificationUpdate{})
	}
	if err != nil {
		return model.NotificationSettings{}, err
	}
	return n.ToModel(), nil
}
