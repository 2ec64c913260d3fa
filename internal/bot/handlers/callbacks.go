package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

const (
	ackError       = "❌ An error occurred"
	ackUnknown     = "Action not implemented yet"
	ackExpired     = "⌛ This suggestion expired. Ask me again for fresh picks."
	differentLimit = 50
)

// callbackAction is parsed callback data. Arg is the primary argument
// (mood, ref, session id, toggle) and Extra the secondary one (list, verdict).
type callbackAction struct {
	Kind  string
	Arg   string
	Extra string
}

// parseCallback splits callback data into an action. Unknown data yields
// ok == false.
func parseCallback(data string) (callbackAction, bool) {
	switch {
	case data == cbNoop:
		return callbackAction{Kind: cbNoop}, true
	case strings.HasPrefix(data, cbSaveTo):
		list, ref, found := strings.Cut(strings.TrimPrefix(data, cbSaveTo), "_")
		if !found || ref == "" {
			return callbackAction{}, false
		}
		return callbackAction{Kind: cbSaveTo, Arg: ref, Extra: list}, true
	case strings.HasPrefix(data, cbFeedback):
		verdict, id, found := strings.Cut(strings.TrimPrefix(data, cbFeedback), "_")
		if !found || id == "" {
			return callbackAction{}, false
		}
		return callbackAction{Kind: cbFeedback, Arg: id, Extra: verdict}, true
	}
	for _, prefix := range []string{cbMood, cbLike, cbSave, cbBack, cbNotify, cbMoreLike, cbDifferent} {
		if strings.HasPrefix(data, prefix) {
			arg := strings.TrimPrefix(data, prefix)
			if arg == "" {
				return callbackAction{}, false
			}
			return callbackAction{Kind: prefix, Arg: arg}, true
		}
	}
	return callbackAction{}, false
}

// NewCallbackHandler returns the handler for every inline keyboard button.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

// callbackResult is the toast shown to the user and an optional follow-up
// that runs after the callback is answered.
type callbackResult struct {
	ack  string
	then func()
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	q := update.CallbackQuery
	u := userFrom(ctx)
	if q == nil || u == nil {
		return
	}

	action, ok := parseCallback(q.Data)
	var res callbackResult
	if !ok {
		log.WarnContext(ctx, "Unknown callback data", "data", q.Data, "user_id", u.ID)
		res.ack = ackUnknown
	} else {
		var err error
		res, err = h.dispatch(ctx, b, log, q, u, action)
		if err != nil {
			log.ErrorContext(ctx, "Callback failed", "kind", action.Kind, "user_id", u.ID, "error", err)
			res = callbackResult{ack: ackError}
		}
	}

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: q.ID,
		Text:            res.ack,
	}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}
	if res.then != nil {
		res.then()
	}
}

func (h callbackHandler) dispatch(ctx context.Context, b *bot.Bot, log *slog.Logger, q *models.CallbackQuery, u *database.User, a callbackAction) (callbackResult, error) {
	switch a.Kind {
	case cbNoop:
		return callbackResult{}, nil
	case cbMood:
		return h.mood(ctx, b, q, u, a.Arg)
	case cbLike:
		return h.like(ctx, b, q, u, a.Arg)
	case cbSave:
		editMarkup(ctx, b, log, q, saveListKeyboard(a.Arg))
		return callbackResult{ack: "Choose a list"}, nil
	case cbSaveTo:
		return h.saveTo(ctx, b, log, q, u, a.Arg, a.Extra)
	case cbBack:
		return h.back(ctx, b, log, q, u, a.Arg)
	case cbFeedback:
		return h.feedback(ctx, b, log, q, u, a.Arg, a.Extra)
	case cbNotify:
		return h.notify(ctx, b, q, u, a.Arg)
	case cbMoreLike:
		return h.moreLike(ctx, b, log, q, u, a.Arg)
	case cbDifferent:
		return h.different(ctx, b, log, q, u, a.Arg)
	}
	return callbackResult{ack: ackUnknown}, nil
}

func (h callbackHandler) mood(ctx context.Context, b *bot.Bot, q *models.CallbackQuery, u *database.User, raw string) (callbackResult, error) {
	mood, ok := model.ParseMood(raw)
	if !ok {
		return callbackResult{ack: ackUnknown}, nil
	}
	if err := h.deps.Store.UpdateTelegramMood(ctx, u.TelegramID.String, mood); err != nil {
		return callbackResult{}, err
	}
	if chatID, msgID, ok := callbackMessage(q); ok {
		if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    chatID,
			MessageID: msgID,
			Text:      fmt.Sprintf(h.deps.Config.Messages.MoodSet, mood),
			ParseMode: models.ParseModeMarkdownV1,
		}); err != nil {
			h.deps.Logger.WarnContext(ctx, "Failed to edit mood message", "error", err)
		}
	}
	return callbackResult{ack: mood.Emoji() + " Mood set to " + mood.Title()}, nil
}

// resolveRef returns the video id and cached suggestion behind ref. The
// suggestion is nil once the cache entry expired; the id is then only known
// for refs that are plain video ids.
func (h callbackHandler) resolveRef(ctx context.Context, ref string) (string, *model.Suggestion, error) {
	s, err := lookupSuggestion(ctx, h.deps.Cache, ref)
	if err != nil {
		return "", nil, err
	}
	if s != nil {
		return s.ID, s, nil
	}
	if strings.HasPrefix(ref, tokenPrefix) {
		return "", nil, nil
	}
	return ref, nil, nil
}

func (h callbackHandler) like(ctx context.Context, b *bot.Bot, q *models.CallbackQuery, u *database.User, ref string) (callbackResult, error) {
	videoID, s, err := h.resolveRef(ctx, ref)
	if err != nil {
		return callbackResult{}, err
	}
	if videoID == "" {
		return callbackResult{ack: ackExpired}, nil
	}

	liked, err := h.deps.Store.IsVideoLiked(ctx, u.ID, videoID)
	if err != nil {
		return callbackResult{}, err
	}
	ack := "❤️ Liked!"
	if liked {
		if err := h.deps.Store.UnlikeVideo(ctx, u.ID, videoID); err != nil && !errors.Is(err, database.ErrNotFound) {
			return callbackResult{}, err
		}
		ack = "Removed like"
	} else if _, err := h.deps.Store.LikeVideo(ctx, u.ID, videoID, s); err != nil {
		return callbackResult{}, err
	}

	editMarkup(ctx, b, h.deps.Logger, q, videoActionsKeyboard(ref, urlOf(s), !liked))
	return callbackResult{ack: ack}, nil
}

func (h callbackHandler) saveTo(ctx context.Context, b *bot.Bot, log *slog.Logger, q *models.CallbackQuery, u *database.User, ref, rawList string) (callbackResult, error) {
	list, ok := model.ParseSaveList(rawList)
	if !ok {
		return callbackResult{ack: ackUnknown}, nil
	}
	_, s, err := h.resolveRef(ctx, ref)
	if err != nil {
		return callbackResult{}, err
	}
	if s == nil {
		return callbackResult{ack: ackExpired}, nil
	}
	if _, _, err := h.deps.Store.SaveVideo(ctx, u.ID, *s, list, ""); err != nil {
		return callbackResult{}, err
	}
	liked, err := h.deps.Store.IsVideoLiked(ctx, u.ID, s.ID)
	if err != nil {
		log.WarnContext(ctx, "Failed to check like state", "video_id", s.ID, "error", err)
	}
	editMarkup(ctx, b, log, q, videoActionsKeyboard(ref, s.URL, liked))
	return callbackResult{ack: fmt.Sprintf("💾 Saved to %s!", list.Title())}, nil
}

func (h callbackHandler) back(ctx context.Context, b *bot.Bot, log *slog.Logger, q *models.CallbackQuery, u *database.User, ref string) (callbackResult, error) {
	videoID, s, err := h.resolveRef(ctx, ref)
	if err != nil {
		return callbackResult{}, err
	}
	liked := false
	if videoID != "" {
		if liked, err = h.deps.Store.IsVideoLiked(ctx, u.ID, videoID); err != nil {
			return callbackResult{}, err
		}
	}
	editMarkup(ctx, b, log, q, videoActionsKeyboard(ref, urlOf(s), liked))
	return callbackResult{}, nil
}

func (h callbackHandler) feedback(ctx context.Context, b *bot.Bot, log *slog.Logger, q *models.CallbackQuery, u *database.User, sessionID, verdict string) (callbackResult, error) {
	fb := model.Feedback(verdict)
	if !fb.Valid() {
		return callbackResult{ack: ackUnknown}, nil
	}
	if err := h.deps.Store.SetHistoryFeedback(ctx, u.ID, sessionID, fb); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return callbackResult{ack: "This session no longer exists"}, nil
		}
		return callbackResult{}, err
	}
	editMarkup(ctx, b, log, q, emptyKeyboard())
	if fb == model.FeedbackHelpful {
		return callbackResult{ack: "👍 Thanks for the feedback!"}, nil
	}
	return callbackResult{ack: "👎 We'll try to improve"}, nil
}

func (h callbackHandler) notify(ctx context.Context, b *bot.Bot, q *models.CallbackQuery, u *database.User, toggle string) (callbackResult, error) {
	chatID, msgID, hasMsg := callbackMessage(q)

	if toggle == notifyDone {
		if hasMsg {
			if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
				ChatID:    chatID,
				MessageID: msgID,
				Text:      "✅ Notification settings saved!",
			}); err != nil {
				h.deps.Logger.WarnContext(ctx, "Failed to edit notifications message", "error", err)
			}
		}
		return callbackResult{ack: "Saved"}, nil
	}

	current, err := loadNotificationSettings(ctx, h.deps.Store, u.TelegramID.String)
	if err != nil {
		return callbackResult{}, err
	}
	var update model.NotificationUpdate
	switch toggle {
	case notifyDaily:
		update.DailyDigest = boolPtr(!current.DailyDigest)
	case notifyTrending:
		update.TrendingAlerts = boolPtr(!current.TrendingAlerts)
	case notifyReminders:
		update.Reminders = boolPtr(!current.Reminders)
	default:
		return callbackResult{ack: ackUnknown}, nil
	}

	n, err := h.deps.Store.UpdateNotificationSettings(ctx, u.TelegramID.String, update)
	if err != nil {
		return callbackResult{}, err
	}
	editMarkup(ctx, b, h.deps.Logger, q, notificationsKeyboard(n.ToModel()))
	return callbackResult{ack: "Updated"}, nil
}

func (h callbackHandler) moreLike(ctx context.Context, b *bot.Bot, log *slog.Logger, q *models.CallbackQuery, u *database.User, ref string) (callbackResult, error) {
	_, s, err := h.resolveRef(ctx, ref)
	if err != nil {
		return callbackResult{}, err
	}
	chatID, _, ok := callbackMessage(q)
	if s == nil || !ok {
		return callbackResult{ack: ackExpired}, nil
	}

	query := fmt.Sprintf("More videos like %q", s.Title)
	if s.CreatorName != "" {
		query += " by " + s.CreatorName
	}
	return callbackResult{
		ack:  "🔍 Finding similar videos...",
		then: func() { runRecommendation(ctx, h.deps, b, log, chatID, u, query) },
	}, nil
}

func (h callbackHandler) different(ctx context.Context, b *bot.Bot, log *slog.Logger, q *models.CallbackQuery, u *database.User, sessionID string) (callbackResult, error) {
	chatID, _, ok := callbackMessage(q)
	if !ok {
		return callbackResult{ack: ackUnknown}, nil
	}
	sessions, err := h.deps.Store.GetUserHistory(ctx, u.ID, differentLimit)
	if err != nil {
		return callbackResult{}, err
	}

	query := "Something completely different from my usual picks"
	for _, s := range sessions {
		if s.ID == sessionID && s.Message != "" {
			query = fmt.Sprintf("Something different from %q", s.Message)
			break
		}
	}
	return callbackResult{
		ack:  "🎲 Getting different suggestions...",
		then: func() { runRecommendation(ctx, h.deps, b, log, chatID, u, query) },
	}, nil
}

func editMarkup(ctx context.Context, b *bot.Bot, log *slog.Logger, q *models.CallbackQuery, markup *models.InlineKeyboardMarkup) {
	chatID, msgID, ok := callbackMessage(q)
	if !ok {
		return
	}
	if _, err := b.EditMessageReplyMarkup(ctx, &bot.EditMessageReplyMarkupParams{
		ChatID:      chatID,
		MessageID:   msgID,
		ReplyMarkup: markup,
	}); err != nil {
		log.WarnContext(ctx, "Failed to edit reply markup", "error", err)
	}
}

func urlOf(s *model.Suggestion) string {
	if s == nil {
		return ""
	}
	return s.URL
}

func boolPtr(v bool) *bool { return &v }
