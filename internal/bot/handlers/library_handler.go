package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/model"
)

const (
	globalHistoryLimit   = 5
	personalHistoryLimit = 10
	personalSavesLimit   = 10
)

// NewHistoryHandler returns a handler for /history, the most recent
// recommendation rounds across all users.
func NewHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return historyHandler{deps}.Handle
}

type historyHandler struct {
	deps HandlerDeps
}

func (h historyHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "history")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	entries, err := h.deps.Store.GetGlobalHistory(ctx, globalHistoryLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load global history", "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	if len(entries) == 0 {
		sendText(ctx, b, log, chatID, "📭 No history yet. Start by sending me a message!")
		return
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("📜 *Recent Recommendations:*\n\n")
	for i, e := range entries {
		s := e.ToModel()
		fmt.Fprintf(&sb, "%d\\. *%s*\n", i+1, escape(s.Message))
		if s.Author != "" {
			fmt.Fprintf(&sb, "   👤 %s\n", escape(s.Author))
		}
		if s.Mood != "" {
			fmt.Fprintf(&sb, "   %s %s\n", s.Mood.Emoji(), escape(s.Mood.Title()))
		}
		fmt.Fprintf(&sb, "   🎬 %d suggestions · %s\n\n", len(s.Suggestions), escape(TimeAgo(s.Timestamp, now)))
	}
	sendMarkdownV2(ctx, b, log, chatID, sb.String())
}

// NewMyHistoryHandler returns a handler for /myhistory.
func NewMyHistoryHandler(deps HandlerDeps) bot.HandlerFunc {
	return myHistoryHandler{deps}.Handle
}

type myHistoryHandler struct {
	deps HandlerDeps
}

func (h myHistoryHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "myhistory")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	rows, err := h.deps.Store.GetUserHistory(ctx, u.ID, personalHistoryLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load history", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	if len(rows) == 0 {
		sendText(ctx, b, log, chatID, "📭 You have no history yet. Send me what you'd like to watch!")
		return
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("📜 *Your History:*\n\n")
	for i, row := range rows {
		s := row.ToModel()
		fmt.Fprintf(&sb, "%d\\. %s *%s*\n", i+1, s.Mood.Emoji(), escape(s.Message))
		fmt.Fprintf(&sb, "   🎬 %d suggestions · %s", len(s.Suggestions), escape(TimeAgo(s.Timestamp, now)))
		switch s.Feedback {
		case model.FeedbackHelpful:
			sb.WriteString(" · 👍")
		case model.FeedbackNotHelpful:
			sb.WriteString(" · 👎")
		}
		sb.WriteString("\n\n")
	}
	sendMarkdownV2(ctx, b, log, chatID, sb.String())
}

// NewSavesHandler returns a handler for /saves [list]. Without a list it
// shows the count per list.
func NewSavesHandler(deps HandlerDeps) bot.HandlerFunc {
	return savesHandler{deps}.Handle
}

type savesHandler struct {
	deps HandlerDeps
}

func (h savesHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "saves")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := commandArgs(update.Message.Text)
	if len(args) == 0 {
		h.overview(ctx, b, chatID, u.ID)
		return
	}

	list, ok := model.ParseSaveList(args[0])
	if !ok {
		names := make([]string, 0, len(model.SaveLists))
		for _, l := range model.SaveLists {
			names = append(names, string(l))
		}
		sendText(ctx, b, log, chatID, "❌ Unknown list. Choose from: "+strings.Join(names, ", "))
		return
	}

	items, err := h.deps.Store.GetUserSaves(ctx, u.ID, list)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load saves", "user_id", u.ID, "list", list, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	if len(items) == 0 {
		sendText(ctx, b, log, chatID, fmt.Sprintf("%s %s is empty.", list.Emoji(), list.Title()))
		return
	}

	suggestions := make([]model.Suggestion, 0, len(items))
	for _, it := range items {
		suggestions = append(suggestions, it.Suggestion.V)
	}
	header := fmt.Sprintf("%s *%s* \\(%d\\)\n\n", list.Emoji(), escape(list.Title()), len(items))
	sendMarkdownV2(ctx, b, log, chatID, formatSuggestionList(header, suggestions))
}

func (h savesHandler) overview(ctx context.Context, b *bot.Bot, chatID int64, userID string) {
	log := h.deps.Logger.With("handler", "saves")

	counts, err := h.deps.Store.CountSavesByList(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to count saves", "user_id", userID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}

	var sb strings.Builder
	sb.WriteString("💾 *Your Saved Content:*\n\n")
	for _, l := range model.SaveLists {
		fmt.Fprintf(&sb, "%s %s: %d\n", l.Emoji(), escape(l.Title()), counts[l])
	}
	sb.WriteString("\n" + escape("Use /saves <list> to view items, e.g. /saves learn"))
	sendMarkdownV2(ctx, b, log, chatID, sb.String())
}

// NewMySavesHandler returns a handler for /mysaves, the newest saves across all lists.
func NewMySavesHandler(deps HandlerDeps) bot.HandlerFunc {
	return mySavesHandler{deps}.Handle
}

type mySavesHandler struct {
	deps HandlerDeps
}

func (h mySavesHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "mysaves")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	items, err := h.deps.Store.GetUserSaves(ctx, u.ID, "")
	if err != nil {
		log.ErrorContext(ctx, "Failed to load saves", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	if len(items) == 0 {
		sendText(ctx, b, log, chatID, "💾 You haven't saved anything yet. Tap 💾 Save on a recommendation!")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "💾 *Your Saves* \\(%d\\)\n\n", len(items))
	for i, it := range items {
		if i == personalSavesLimit {
			fmt.Fprintf(&sb, "%s\n", escape(fmt.Sprintf("…and %d more. Use /saves <list> to see everything.", len(items)-personalSavesLimit)))
			break
		}
		s := it.ToModel()
		fmt.Fprintf(&sb, "%d\\. %s *%s*\n", i+1, s.List.Emoji(), escape(s.Suggestion.Title))
		if s.Suggestion.CreatorName != "" {
			fmt.Fprintf(&sb, "   👤 %s\n", escape(s.Suggestion.CreatorName))
		}
		if s.Suggestion.URL != "" && s.Suggestion.URL != "#" {
			fmt.Fprintf(&sb, "   🔗 [Watch Video](%s)\n", escapeLinkURL(s.Suggestion.URL))
		}
		sb.WriteString("\n")
	}
	sendMarkdownV2(ctx, b, log, chatID, sb.String())
}

// NewStatsHandler returns a handler for /stats.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	u := userFrom(ctx)
	if update.Message == nil || u == nil {
		return
	}
	chatID := update.Message.Chat.ID

	row, err := h.deps.Store.GetUserStats(ctx, u.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load stats", "user_id", u.ID, "error", err)
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.Error)
		return
	}
	sendMarkdownV2(ctx, b, log, chatID, formatStats(row.ToModel()))
}

func formatStats(s model.Stats) string {
	var sb strings.Builder
	sb.WriteString("📊 *Your Stats*\n\n")
	fmt.Fprintf(&sb, "🔍 Queries: %d\n", s.TotalQueries)
	fmt.Fprintf(&sb, "❤️ Likes: %d\n", s.TotalLikes)
	fmt.Fprintf(&sb, "💾 Saves: %d\n", s.TotalSaves)
	fmt.Fprintf(&sb, "%s Streak: %d day%s \\(best: %d\\)\n", streakEmoji(s.Streak), s.Streak, plural(s.Streak), s.LongestStreak)

	if top := topCategories(s.FavoriteCategories, 5); len(top) > 0 {
		sb.WriteString("\n*Top Categories:*\n")
		for _, c := range top {
			fmt.Fprintf(&sb, "• %s \\(%d\\)\n", escape(c), s.FavoriteCategories[c])
		}
	}
	if !s.JoinedAt.IsZero() {
		fmt.Fprintf(&sb, "\n📅 Member since %s", escape(s.JoinedAt.Format("Jan 2, 2006")))
	}
	return sb.String()
}

func streakEmoji(streak int) string {
	switch {
	case streak >= 30:
		return "🏆"
	case streak >= 7:
		return "🔥"
	case streak > 0:
		return "✨"
	default:
		return "💤"
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
