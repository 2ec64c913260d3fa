package handlers

import (
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/model"
)

// RegisteredHandler represents a command handler with its description and middleware.
// It encapsulates all information needed to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
	Description string
}

func command(pattern, description string, h tgbot.HandlerFunc) RegisteredHandler {
	return RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     pattern,
		Handler:     h,
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Description: description,
	}
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands, the mood shortcuts and the inline keyboard callback handler.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := map[string]RegisteredHandler{
		"/start":         command("start", "Start the bot", NewStartHandler(deps)),
		"/help":          command("help", "Show all commands", NewHelpHandler(deps)),
		"/mood":          command("mood", "Set your current mood", NewMoodHandler(deps)),
		"/profile":       command("profile", "Set your interests and preferences", NewProfileHandler(deps)),
		"/skip":          command("skip", "Skip profile setup", NewSkipHandler(deps)),
		"/reset":         command("reset", "Reset your profile", NewResetHandler(deps)),
		"/recommend":     command("recommend", "Get recommendations for a query", NewRecommendHandler(deps)),
		"/history":       command("history", "View recent recommendations", NewHistoryHandler(deps)),
		"/myhistory":     command("myhistory", "View your personal history", NewMyHistoryHandler(deps)),
		"/saves":         command("saves", "View saved content by list", NewSavesHandler(deps)),
		"/mysaves":       command("mysaves", "View your saved videos", NewMySavesHandler(deps)),
		"/trending":      command("trending", "Get trending videos", NewTrendingHandler(deps)),
		"/stats":         command("stats", "View your usage statistics", NewStatsHandler(deps)),
		"/notifications": command("notifications", "Manage daily digest settings", NewNotificationsHandler(deps)),
		"/link":          command("link", "Link this chat to your web account", NewLinkHandler(deps)),
	}

	for _, m := range model.Moods {
		handlers["/"+string(m)] = RegisteredHandler{
			HandlerType: tgbot.HandlerTypeMessageText,
			Pattern:     string(m),
			Handler:     NewMoodShortcutHandler(deps, m),
			MatchType:   tgbot.MatchTypeCommandStartOnly,
		}
	}

	handlers["callback"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "",
		Handler:     NewCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
	}

	return handlers
}

// menuOrder is the order commands appear in the Telegram menu.
var menuOrder = []string{
	"start", "mood", "profile", "recommend", "trending", "history", "myhistory",
	"saves", "mysaves", "stats", "notifications", "link", "reset", "help",
}

// BotCommands builds the setMyCommands list from the registered handlers.
func BotCommands(registered map[string]RegisteredHandler) []models.BotCommand {
	cmds := make([]models.BotCommand, 0, len(menuOrder))
	for _, name := range menuOrder {
		h, ok := registered["/"+name]
		if !ok || h.Description == "" {
			continue
		}
		cmds = append(cmds, models.BotCommand{Command: name, Description: h.Description})
	}
	return cmds
}
