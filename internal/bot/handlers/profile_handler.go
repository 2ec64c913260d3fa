package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

// NewProfileHandler returns a handler for /profile. It shows the current
// profile, or the setup instructions when empty, and waits for the next
// text message to be a profile.
func NewProfileHandler(deps HandlerDeps) bot.HandlerFunc {
	return profileHandler{deps}.Handle
}

type profileHandler struct {
	deps HandlerDeps
}

func (h profileHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "profile")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	var current model.Profile
	p, err := h.deps.Store.GetProfile(ctx, u.ID)
	switch {
	case err == nil:
		current = p.ToModel()
	case !errors.Is(err, database.ErrNotFound):
		log.ErrorContext(ctx, "Failed to load profile", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}

	if err := h.deps.Store.SetPendingProfileSetup(ctx, u.TelegramID.String, true); err != nil {
		log.ErrorContext(ctx, "Failed to start profile setup", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}

	if current.IsEmpty() {
		sendMarkdown(ctx, b, log, chatID, h.deps.Config.Messages.ProfileStart)
		return
	}
	sendMarkdownV2(ctx, b, log, chatID, formatProfile(current))
}

// NewSkipHandler returns a handler for /skip, which cancels a pending profile setup.
func NewSkipHandler(deps HandlerDeps) bot.HandlerFunc {
	return skipHandler{deps}.Handle
}

type skipHandler struct {
	deps HandlerDeps
}

func (h skipHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "skip")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	acc, err := h.deps.Store.GetTelegramAccount(ctx, u.TelegramID.String)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load telegram account", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	if !acc.PendingProfileSetup {
		sendText(ctx, b, log, chatID, "Nothing to skip right now.")
		return
	}
	if err := h.deps.Store.SetPendingProfileSetup(ctx, acc.TelegramID, false); err != nil {
		log.ErrorContext(ctx, "Failed to cancel profile setup", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	sendText(ctx, b, log, chatID, h.deps.Config.Messages.ProfileSkipped)
}

// NewResetHandler returns a handler for /reset, which clears the profile and mood.
func NewResetHandler(deps HandlerDeps) bot.HandlerFunc {
	return resetHandler{deps}.Handle
}

type resetHandler struct {
	deps HandlerDeps
}

func (h resetHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "reset")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if err := h.deps.Store.ResetProfile(ctx, u.ID); err != nil {
		log.ErrorContext(ctx, "Failed to reset profile", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	log.InfoContext(ctx, "Profile reset", "user_id", u.ID)
	sendText(ctx, b, log, chatID, h.deps.Config.Messages.ProfileReset)
}
