// Package model holds the domain types shared by the HTTP API, the bot and
// the recommendation engine.
package model

import "time"

// Well-known suggestion tags.
const (
	TagSaved    = "saved"
	TagFallback = "fallback"
	TagError    = "error"
	TagTrending = "trending"
	TagYouTube  = "youtube"
)

// Suggestion is a recommended content item (video, article or podcast).
type Suggestion struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	CreatorName      string   `json:"creatorName"`
	CreatorAvatarURL string   `json:"creatorAvatarUrl,omitempty"`
	ThumbnailURL     string   `json:"thumbnailUrl,omitempty"`
	DurationMinutes  *int     `json:"durationMinutes,omitempty"`
	Description      string   `json:"description,omitempty"`
	DatePublished    string   `json:"datePublished,omitempty"`
	Tags             []string `json:"tags"`
	Relevance        float64  `json:"relevance"`
	URL              string   `json:"url,omitempty"`
}

// Minutes returns the duration or 0 when unknown.
func (s Suggestion) Minutes() int {
	if s.DurationMinutes == nil {
		return 0
	}
	return *s.DurationMinutes
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int { return &v }

// RecommendRequest is the body of POST /api/recommend.
type RecommendRequest struct {
	Message string   `json:"message"`
	Mood    Mood     `json:"mood,omitempty"`
	Count   int      `json:"count,omitempty"`
	Profile *Profile `json:"profile,omitempty"`
}

// RecommendResponse is returned by the recommendation engine.
type RecommendResponse struct {
	Suggestions  []Suggestion `json:"suggestions"`
	Model        string       `json:"model,omitempty"`
	UsedFallback bool         `json:"usedFallback"`
	Error        string       `json:"error,omitempty"`
}

// HistorySession is one recommendation round as seen by clients.
type HistorySession struct {
	ID          string       `json:"id"`
	Message     string       `json:"message"`
	Mood        Mood         `json:"mood,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
	Feedback    Feedback     `json:"feedback,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	// Author is filled only for global listings.
	Author string `json:"author,omitempty"`
}

// SavedItem is a saved suggestion as seen by clients. ID is the suggestion id.
type SavedItem struct {
	ID         string     `json:"id"`
	List       SaveList   `json:"list"`
	Notes      string     `json:"notes,omitempty"`
	AddedAt    time.Time  `json:"addedAt"`
	Suggestion Suggestion `json:"suggestion"`
}

// Like is a liked suggestion. Suggestion may be nil for likes imported without data.
type Like struct {
	VideoID    string      `json:"videoId"`
	Suggestion *Suggestion `json:"suggestion,omitempty"`
	LikedAt    time.Time   `json:"likedAt"`
}

// Feedback is a user's verdict on a history session.
type Feedback string

// Feedback values.
const (
	FeedbackHelpful    Feedback = "helpful"
	FeedbackNotHelpful Feedback = "not-helpful"
)

// Valid reports whether f is a known feedback value.
func (f Feedback) Valid() bool {
	return f == FeedbackHelpful || f == FeedbackNotHelpful
}
