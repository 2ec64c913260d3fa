package handlers

import (
	"github.com/go-telegram/bot/models"

	"github.com/edgard/maintain/internal/model"
)

// Callback data prefixes.
const (
	cbMood      = "mood_"
	cbLike      = "like_"
	cbSave      = "save_"
	cbSaveTo    = "saveto_"
	cbBack      = "back_"
	cbFeedback  = "feedback_"
	cbNotify    = "notify_"
	cbMoreLike  = "morelike_"
	cbDifferent = "different_"
	cbNoop      = "noop"
)

// Notification toggles carried by notify_ callbacks.
const (
	notifyDaily     = "daily"
	notifyTrending  = "trending"
	notifyReminders = "reminders"
	notifyDone      = "done"
)

func moodKeyboard() *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for i := 0; i < len(model.Moods); i += 3 {
		end := min(i+3, len(model.Moods))
		row := make([]models.InlineKeyboardButton, 0, 3)
		for _, m := range model.Moods[i:end] {
			row = append(row, models.InlineKeyboardButton{
				Text:         m.Emoji() + " " + m.Title(),
				CallbackData: cbMood + string(m),
			})
		}
		rows = append(rows, row)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// videoActionsKeyboard shows Like/Save/Watch and a "more like this" row.
func videoActionsKeyboard(ref, url string, liked bool) *models.InlineKeyboardMarkup {
	likeText := "🤍 Like"
	if liked {
		likeText = "❤️ Liked"
	}
	row := []models.InlineKeyboardButton{
		{Text: likeText, CallbackData: cbLike + ref},
		{Text: "💾 Save", CallbackData: cbSave + ref},
	}
	if url != "" && url != "#" {
		row = append(row, models.InlineKeyboardButton{Text: "▶️ Watch", URL: url})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		row,
		{{Text: "🔄 More Like This", CallbackData: cbMoreLike + ref}},
	}}
}

func saveListKeyboard(ref string) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(model.SaveLists)+1)
	for _, l := range model.SaveLists {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         l.Emoji() + " " + l.Title(),
			CallbackData: cbSaveTo + string(l) + "_" + ref,
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "« Back", CallbackData: cbBack + ref}})
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func feedbackKeyboard(sessionID string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{
			{Text: "👍 Helpful", CallbackData: cbFeedback + string(model.FeedbackHelpful) + "_" + sessionID},
			{Text: "👎 Not Helpful", CallbackData: cbFeedback + string(model.FeedbackNotHelpful) + "_" + sessionID},
		},
		{{Text: "🎲 Something Different", CallbackData: cbDifferent + sessionID}},
	}}
}

func notificationsKeyboard(s model.NotificationSettings) *models.InlineKeyboardMarkup {
	toggle := func(on bool, label, action string) []models.InlineKeyboardButton {
		mark := "⬜ "
		if on {
			mark = "✅ "
		}
		return []models.InlineKeyboardButton{{Text: mark + label, CallbackData: cbNotify + action}}
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		toggle(s.DailyDigest, "Daily Digest", notifyDaily),
		toggle(s.TrendingAlerts, "Trending Alerts", notifyTrending),
		toggle(s.Reminders, "Reminders", notifyReminders),
		{{Text: "✓ Done", CallbackData: cbNotify + notifyDone}},
	}}
}

func emptyKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{}}
}
