package handlers

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

// NewRecommendHandler returns a handler for /recommend <query>.
func NewRecommendHandler(deps HandlerDeps) bot.HandlerFunc {
	return recommendHandler{deps}.Handle
}

// NewTextHandler returns the default handler for plain text. It completes a
// pending profile setup, or treats the text as a recommendation query.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{deps}.Handle
}

type recommendHandler struct {
	deps HandlerDeps
}

func (h recommendHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "recommend")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	query := strings.Join(commandArgs(update.Message.Text), " ")
	if query == "" {
		sendText(ctx, b, log, chatID, "Please provide what you're looking for.\n\nExample: /recommend 30min coding tutorial")
		return
	}
	runRecommendation(ctx, h.deps, b, log, chatID, u, query)
}

type textHandler struct {
	deps HandlerDeps
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		log.DebugContext(ctx, "Ignoring empty message or unknown command", "chat_id", update.Message.Chat.ID)
		return
	}
	chatID := update.Message.Chat.ID

	acc, err := h.deps.Store.GetTelegramAccount(ctx, u.TelegramID.String)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load telegram account", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}

	if acc.PendingProfileSetup {
		h.completeProfile(ctx, b, log, chatID, u, text)
		return
	}
	runRecommendation(ctx, h.deps, b, log, chatID, u, text)
}

func (h textHandler) completeProfile(ctx context.Context, b *bot.Bot, log *slog.Logger, chatID int64, u *database.User, text string) {
	update := ParseProfileText(text)
	if update.IsEmpty() {
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.ProfileInvalid)
		return
	}
	if err := h.deps.Store.UpsertProfile(ctx, u.ID, update); err != nil {
		log.ErrorContext(ctx, "Failed to save profile", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	if err := h.deps.Store.SetPendingProfileSetup(ctx, u.TelegramID.String, false); err != nil {
		log.WarnContext(ctx, "Failed to clear pending profile setup", "user_id", u.ID, "error", err)
	}
	log.InfoContext(ctx, "Profile saved from chat", "user_id", u.ID)
	sendText(ctx, b, log, chatID, h.deps.Config.Messages.ProfileSaved)
}

// runRecommendation asks the engine for suggestions, records the session and
// sends one message per suggestion followed by a feedback keyboard.
func runRecommendation(ctx context.Context, deps HandlerDeps, b *bot.Bot, log *slog.Logger, chatID int64, u *database.User, query string) {
	msgs := deps.Config.Messages
	loading := send(ctx, b, log, &bot.SendMessageParams{ChatID: chatID, Text: msgs.Processing})
	stopTyping := keepTyping(ctx, b, log, chatID)

	req := model.RecommendRequest{Message: query, Count: deps.Config.Telegram.DefaultCount}
	if acc, err := deps.Store.GetTelegramAccount(ctx, u.TelegramID.String); err == nil {
		req.Mood = acc.Mood()
	}
	if p, err := deps.Store.GetProfile(ctx, u.ID); err == nil {
		if m := p.ToModel(); !m.IsEmpty() {
			req.Profile = &m
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		log.WarnContext(ctx, "Failed to load profile for recommendation", "user_id", u.ID, "error", err)
	}

	resp := deps.Recommender.Recommend(ctx, u.ID, req)
	stopTyping()

	if loading != nil {
		if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: loading.ID}); err != nil {
			log.DebugContext(ctx, "Failed to delete loading message", "error", err)
		}
	}

	if len(resp.Suggestions) == 0 {
		sendText(ctx, b, log, chatID, msgs.NoResults)
		return
	}

	session := &database.HistorySession{
		ID:          uuid.NewString(),
		Message:     query,
		Suggestions: database.NewJSON(resp.Suggestions),
	}
	if req.Mood != "" {
		session.Mood.String, session.Mood.Valid = string(req.Mood), true
	}
	recorded := true
	if err := deps.Store.AddHistory(ctx, u.ID, session); err != nil {
		log.ErrorContext(ctx, "Failed to record history", "user_id", u.ID, "error", err)
		recorded = false
	}

	for i, s := range resp.Suggestions {
		sendSuggestion(ctx, deps, b, log, chatID, s, i+1)
	}

	if recorded {
		send(ctx, b, log, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        "Were these suggestions helpful?",
			ReplyMarkup: feedbackKeyboard(session.ID),
		})
	}
	if resp.UsedFallback {
		sendText(ctx, b, log, chatID, msgs.FallbackNotice)
	}
	log.InfoContext(ctx, "Recommendations sent", "user_id", u.ID, "count", len(resp.Suggestions), "fallback", resp.UsedFallback)
}

// sendSuggestion sends a suggestion card, as a photo when a thumbnail exists.
// Formatting failures degrade to plain text.
func sendSuggestion(ctx context.Context, deps HandlerDeps, b *bot.Bot, log *slog.Logger, chatID int64, s model.Suggestion, index int) {
	ref, err := rememberSuggestion(ctx, deps.Cache, s)
	if err != nil {
		log.WarnContext(ctx, "Failed to cache suggestion", "video_id", s.ID, "error", err)
	}
	text := formatSuggestion(s, index)
	keyboard := videoActionsKeyboard(ref, s.URL, false)

	if s.ThumbnailURL != "" {
		_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
			ChatID:      chatID,
			Photo:       &models.InputFileString{Data: s.ThumbnailURL},
			Caption:     text,
			ParseMode:   models.ParseModeMarkdown,
			ReplyMarkup: keyboard,
		})
	} else {
		_, err = b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ParseMode:   models.ParseModeMarkdown,
			ReplyMarkup: keyboard,
		})
	}
	if err != nil {
		log.WarnContext(ctx, "Failed to send suggestion card, falling back to plain text", "video_id", s.ID, "error", err)
		sendText(ctx, b, log, chatID, strings.TrimSpace(s.Title+"\n"+s.URL))
	}
}
