package handlers

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/maintain/internal/model"
)

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"hello"}, SplitMessage("hello", 10))
	assert.Empty(t, SplitMessage("  \n ", 10))

	chunks := SplitMessage("aaaa\nbbbb\ncccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb", "cccc"}, chunks)

	long := strings.Repeat("é", 25)
	chunks = SplitMessage(long, 10)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 10)
	}
	assert.Equal(t, long, strings.Join(chunks, ""))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{5 * time.Minute, "5min ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{30 * 24 * time.Hour, "Apr 10, 2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now))
	}
}

func TestFormatSuggestion(t *testing.T) {
	s := model.Suggestion{
		ID:              "abc",
		Title:           "Go 1.22 (new!)",
		CreatorName:     "Gopher_TV",
		DurationMinutes: model.IntPtr(12),
		Description:     strings.Repeat("x", 200),
		URL:             "https://youtube.com/watch?v=abc",
	}
	out := formatSuggestion(s, 2)

	assert.True(t, strings.HasPrefix(out, "*2\\. Go 1\\.22 \\(new\\!\\)*"))
	assert.Contains(t, out, "📺 Gopher\\_TV")
	assert.Contains(t, out, "⏱️ 12 min")
	assert.Contains(t, out, strings.Repeat("x", 150)+"\\.\\.\\.")
	assert.Contains(t, out, "[Watch on YouTube](https://youtube.com/watch?v=abc)")

	s.URL = "#"
	assert.NotContains(t, formatSuggestion(s, 1), "Watch on YouTube")
}

func TestFormatSuggestionList(t *testing.T) {
	out := formatSuggestionList("*Header*\n\n", []model.Suggestion{
		{Title: "One", CreatorName: "A", URL: "https://x.test/1"},
		{Title: "Two", CreatorName: "B", Description: "short"},
	})
	assert.True(t, strings.HasPrefix(out, "*Header*"))
	assert.Contains(t, out, "1\\. *One*")
	assert.Contains(t, out, "2\\. *Two*")
	assert.Contains(t, out, "📝 short")
	assert.Equal(t, 1, strings.Count(out, "Watch Video"))
}

func TestTopCategories(t *testing.T) {
	cats := map[string]int{"music": 3, "coding": 5, "art": 3, "news": 1}
	assert.Equal(t, []string{"coding", "art", "music"}, topCategories(cats, 3))
	assert.Empty(t, topCategories(nil, 3))
}

func TestFormatStats(t *testing.T) {
	out := formatStats(model.Stats{
		TotalQueries:       4,
		Streak:             1,
		LongestStreak:      9,
		FavoriteCategories: map[string]int{"coding": 2},
	})
	assert.Contains(t, out, "🔍 Queries: 4")
	assert.Contains(t, out, "✨ Streak: 1 day \\(best: 9\\)")
	assert.Contains(t, out, "• coding \\(2\\)")
	assert.Equal(t, "🔥", streakEmoji(7))
	assert.Equal(t, "💤", streakEmoji(0))
}

func TestParseProfileText(t *testing.T) {
	u := ParseProfileText("*Hobbies:* programming, gaming\nInterests: AI، web\nlanguages: English\nYouTubers: Fireship, ThePrimeagen")
	assert.Equal(t, []string{"programming", "gaming"}, u.Hobbies)
	assert.Equal(t, []string{"AI", "web"}, u.Interests)
	assert.Equal(t, []string{"English"}, u.Languages)
	require.Len(t, u.Youtubers, 2)
	assert.Equal(t, "Fireship", u.Youtubers[0].Name)
	assert.Nil(t, u.WorkContext)

	assert.True(t, ParseProfileText("just some words").IsEmpty())

	only := ParseProfileText("hobby: chess")
	assert.Equal(t, []string{"chess"}, only.Hobbies)
	assert.Nil(t, only.Interests)
}

func TestFormatProfile(t *testing.T) {
	out := formatProfile(model.Profile{
		Hobbies:   []string{"chess"},
		Youtubers: []model.Youtuber{{Name: "Fireship"}},
	})
	assert.Contains(t, out, "*Hobbies:* chess")
	assert.Contains(t, out, "*YouTubers:* Fireship")
	assert.NotContains(t, out, "Interests")
}
