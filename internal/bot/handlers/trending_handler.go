package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/trending"
)

const trendingCount = 5

// NewTrendingHandler returns a handler for /trending [category].
func NewTrendingHandler(deps HandlerDeps) bot.HandlerFunc {
	return trendingHandler{deps}.Handle
}

type trendingHandler struct {
	deps HandlerDeps
}

func (h trendingHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "trending")
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	category := trending.CategoryAll
	if args := commandArgs(update.Message.Text); len(args) > 0 {
		category = strings.ToLower(args[0])
	}

	stopTyping := keepTyping(ctx, b, log, chatID)
	resp := h.deps.Trending.Trending(ctx, category, trendingCount)
	stopTyping()
	if len(resp.Suggestions) == 0 {
		sendText(ctx, b, log, chatID, h.deps.Config.Messages.NoResults)
		return
	}

	header := fmt.Sprintf("🔥 *Trending Now* \\(%s\\)\n\n", escape(resp.Category))
	if resp.Source == trending.SourceFallback {
		header = fmt.Sprintf("🔥 *Popular Picks* \\(%s\\)\n\n", escape(resp.Category))
	}
	log.InfoContext(ctx, "Sending trending content", "category", resp.Category, "source", resp.Source, "count", len(resp.Suggestions))
	sendMarkdownV2(ctx, b, log, chatID, formatSuggestionList(header, resp.Suggestions))
}
