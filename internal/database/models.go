package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/edgard/maintain/internal/model"
)

// JSON stores a Go value in a TEXT column as JSON.
type JSON[T any] struct {
	V T
}

// NewJSON wraps v for storage.
func NewJSON[T any](v T) JSON[T] { return JSON[T]{V: v} }

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, fmt.Errorf("failed to encode json column: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL leaves the zero value.
func (j *JSON[T]) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.V = zero
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported json column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, &j.V)
}

// User is an account that may have an email login, a linked Telegram chat, or both.
type User struct {
	ID               string         `db:"id"`
	Email            sql.NullString `db:"email"`
	Password         sql.NullString `db:"password"`
	Name             sql.NullString `db:"name"`
	TelegramID       sql.NullString `db:"telegram_id"`
	TelegramUsername sql.NullString `db:"telegram_username"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// Profile holds a user's recommendation preferences.
type Profile struct {
	ID          string                 `db:"id"`
	UserID      string                 `db:"user_id"`
	Hobbies     JSON[[]string]         `db:"hobbies"`
	Interests   JSON[[]string]         `db:"interests"`
	Languages   JSON[[]string]         `db:"languages"`
	WorkContext sql.NullString         `db:"work_context"`
	Youtubers   JSON[[]model.Youtuber] `db:"youtubers"`
	UpdatedAt   time.Time              `db:"updated_at"`
}

// ToModel converts the row to the API representation.
func (p Profile) ToModel() model.Profile {
	return model.Profile{
		Hobbies:     orEmpty(p.Hobbies.V),
		Interests:   orEmpty(p.Interests.V),
		Languages:   orEmpty(p.Languages.V),
		WorkContext: p.WorkContext.String,
		Youtubers:   p.Youtubers.V,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// UserStats are per-user usage counters.
type UserStats struct {
	ID                 string               `db:"id"`
	UserID             string               `db:"user_id"`
	TotalQueries       int                  `db:"total_queries"`
	TotalLikes         int                  `db:"total_likes"`
	TotalSaves         int                  `db:"total_saves"`
	TotalVideosWatched int                  `db:"total_videos_watched"`
	Streak             int                  `db:"streak"`
	LongestStreak      int                  `db:"longest_streak"`
	LastActiveDate     time.Time            `db:"last_active_date"`
	FavoriteCategories JSON[map[string]int] `db:"favorite_categories"`
	CreatedAt          time.Time            `db:"created_at"`
}

// ToModel converts the row to the API representation.
func (s UserStats) ToModel() model.Stats {
	cats := s.FavoriteCategories.V
	if cats == nil {
		cats = map[string]int{}
	}
	return model.Stats{
		TotalQueries:       s.TotalQueries,
		TotalLikes:         s.TotalLikes,
		TotalSaves:         s.TotalSaves,
		TotalVideosWatched: s.TotalVideosWatched,
		Streak:             s.Streak,
		LongestStreak:      s.LongestStreak,
		LastActiveDate:     s.LastActiveDate,
		FavoriteCategories: cats,
		JoinedAt:           s.CreatedAt,
	}
}

// HistorySession is one recommendation round.
type HistorySession struct {
	ID          string                   `db:"id"`
	UserID      string                   `db:"user_id"`
	Message     string                   `db:"message"`
	Mood        sql.NullString           `db:"mood"`
	Suggestions JSON[[]model.Suggestion] `db:"suggestions"`
	Feedback    sql.NullString           `db:"feedback"`
	Timestamp   time.Time                `db:"timestamp"`
}

// ToModel converts the row to the API representation.
func (h HistorySession) ToModel() model.HistorySession {
	suggestions := h.Suggestions.V
	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	return model.HistorySession{
		ID:          h.ID,
		Message:     h.Message,
		Mood:        model.Mood(h.Mood.String),
		Suggestions: suggestions,
		Feedback:    model.Feedback(h.Feedback.String),
		Timestamp:   h.Timestamp,
	}
}

// HistoryEntry is a history session joined with its author for global listings.
type HistoryEntry struct {
	HistorySession
	AuthorName     sql.NullString `db:"author_name"`
	AuthorUsername sql.NullString `db:"author_username"`
}

// ToModel converts the row to the API representation.
func (h HistoryEntry) ToModel() model.HistorySession {
	m := h.HistorySession.ToModel()
	switch {
	case h.AuthorUsername.Valid && h.AuthorUsername.String != "":
		m.Author = "@" + h.AuthorUsername.String
	case h.AuthorName.Valid:
		m.Author = h.AuthorName.String
	}
	return m
}

// SavedItem is a suggestion saved into a list.
type SavedItem struct {
	ID         string                 `db:"id"`
	UserID     string                 `db:"user_id"`
	VideoID    string                 `db:"video_id"`
	Suggestion JSON[model.Suggestion] `db:"suggestion"`
	List       string                 `db:"list"`
	Notes      sql.NullString         `db:"notes"`
	AddedAt    time.Time              `db:"added_at"`
}

// ToModel converts the row to the API representation.
func (s SavedItem) ToModel() model.SavedItem {
	return model.SavedItem{
		ID:         s.VideoID,
		List:       model.SaveList(s.List),
		Notes:      s.Notes.String,
		AddedAt:    s.AddedAt,
		Suggestion: s.Suggestion.V,
	}
}

// Like marks a suggestion as liked.
type Like struct {
	ID         string                  `db:"id"`
	UserID     string                  `db:"user_id"`
	VideoID    string                  `db:"video_id"`
	Suggestion JSON[*model.Suggestion] `db:"suggestion"`
	LikedAt    time.Time               `db:"liked_at"`
}

// ToModel converts the row to the API representation.
func (l Like) ToModel() model.Like {
	return model.Like{VideoID: l.VideoID, Suggestion: l.Suggestion.V, LikedAt: l.LikedAt}
}

// TelegramAccount holds the chat-side state of a user.
type TelegramAccount struct {
	ID                  string         `db:"id"`
	UserID              string         `db:"user_id"`
	TelegramID          string         `db:"telegram_id"`
	Username            sql.NullString `db:"username"`
	FirstName           sql.NullString `db:"first_name"`
	LastName            sql.NullString `db:"last_name"`
	LanguageCode        sql.NullString `db:"language_code"`
	CurrentMood         sql.NullString `db:"current_mood"`
	PendingProfileSetup bool           `db:"pending_profile_setup"`
	LastActive          time.Time      `db:"last_active"`
	CreatedAt           time.Time      `db:"created_at"`
}

// Mood returns the account's current mood, or "" when unset.
func (a TelegramAccount) Mood() model.Mood {
	return model.Mood(a.CurrentMood.String)
}

// NotificationSettings are a Telegram account's digest preferences.
type NotificationSettings struct {
	ID                string `db:"id"`
	TelegramAccountID string `db:"telegram_account_id"`
	DailyDigest       bool   `db:"daily_digest"`
	DailyDigestTime   string `db:"daily_digest_time"`
	TrendingAlerts    bool   `db:"trending_alerts"`
	Reminders         bool   `db:"reminders"`
	Timezone          string `db:"timezone"`
}

// ToModel converts the row to the API representation.
func (n NotificationSettings) ToModel() model.NotificationSettings {
	return model.NotificationSettings{
		DailyDigest:     n.DailyDigest,
		DailyDigestTime: n.DailyDigestTime,
		TrendingAlerts:  n.TrendingAlerts,
		Reminders:       n.Reminders,
		Timezone:        n.Timezone,
	}
}

// TelegramIdentity is what the bot knows about a chat user.
type TelegramIdentity struct {
	TelegramID   string
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// DigestRecipient is a Telegram user opted into the daily digest.
type DigestRecipient struct {
	UserID             string               `db:"user_id"`
	TelegramID         string               `db:"telegram_id"`
	CurrentMood        sql.NullString       `db:"current_mood"`
	FavoriteCategories JSON[map[string]int] `db:"favorite_categories"`
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NewHistorySession builds a row from a client session. Invalid moods and
// feedback values are dropped.
func NewHistorySession(userID string, m model.HistorySession) *HistorySession {
	h := &HistorySession{
		ID:          m.ID,
		UserID:      userID,
		Message:     m.Message,
		Suggestions: NewJSON(m.Suggestions),
		Timestamp:   m.Timestamp,
	}
	if m.Mood.Valid() {
		h.Mood = nullString(string(m.Mood))
	}
	if m.Feedback.Valid() {
		h.Feedback = nullString(string(m.Feedback))
	}
	return h
}
