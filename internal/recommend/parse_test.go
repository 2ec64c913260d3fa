package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		count   int
		wantIDs []string
	}{
		{
			name:    "plain array",
			input:   `[{"id":"a","title":"A"},{"id":"b","title":"B"}]`,
			count:   10,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "fenced array",
			input:   "```json\n[{\"id\":\"a\"},{\"id\":\"b\"}]\n```",
			count:   10,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "prose around array",
			input:   "Sure! Here you go:\n[{\"id\":\"a\"}]\nEnjoy.",
			count:   10,
			wantIDs: []string{"a"},
		},
		{
			name:    "brackets inside strings",
			input:   `[{"id":"a","title":"Arrays [] and \"quotes\" ]"},{"id":"b"}]`,
			count:   10,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "truncated keeps complete objects",
			input:   `[{"id":"a","title":"A"},{"id":"b","title":"B"},{"id":"c","ti`,
			count:   10,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "truncated after a complete object closes cleanly",
			input:   `[{"id":"a"},{"id":"b"}`,
			count:   10,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "truncated to count",
			input:   `[{"id":"a"},{"id":"b"},{"id":"c"}]`,
			count:   2,
			wantIDs: []string{"a", "b"},
		},
		{
			name:    "loose objects without array",
			input:   `first {"id":"a"} then {"id":"b"} and {broken`,
			count:   10,
			wantIDs: []string{"a", "b"},
		},
		{
			name:  "nothing usable",
			input: "I cannot help with that.",
			count: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ParseSuggestions(tt.input, tt.count)
			ids := make([]string, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}
			if len(tt.wantIDs) == 0 {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s := normalize(map[string]any{})
		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "Untitled", s.Title)
		assert.Equal(t, "Unknown", s.CreatorName)
		assert.Equal(t, 0.5, s.Relevance)
		assert.NotNil(t, s.Tags)
		assert.Empty(t, s.Tags)
		assert.Nil(t, s.DurationMinutes)
	})

	t.Run("fields and aliases", func(t *testing.T) {
		s := normalize(map[string]any{
			"id":              float64(42),
			"title":           "Go Concurrency",
			"creatorName":     "Gopher",
			"durationMinutes": 24.6,
			"date_published":  "2024-07-01",
			"tags":            []any{"go", 3, "", "talks"},
			"relevance":       1.7,
			"url":             "https://example.com/v",
			"thumbnailUrl":    "https://example.com/t.jpg",
		})
		assert.Equal(t, "42", s.ID)
		assert.Equal(t, "Go Concurrency", s.Title)
		require.NotNil(t, s.DurationMinutes)
		assert.Equal(t, 25, *s.DurationMinutes)
		assert.Equal(t, "2024-07-01", s.DatePublished)
		assert.Equal(t, []string{"go", "talks"}, s.Tags)
		assert.Equal(t, 1.0, s.Relevance)
		assert.Equal(t, "https://example.com/v", s.URL)
		assert.Equal(t, "https://example.com/t.jpg", s.ThumbnailURL)
	})

	t.Run("markup is stripped", func(t *testing.T) {
		s := normalize(map[string]any{
			"title":       "<b>Go</b> &amp; Rust",
			"creatorName": "<i></i>",
			"description": "A **deep** dive",
		})
		assert.Equal(t, "Go & Rust", s.Title)
		assert.Equal(t, "Unknown", s.CreatorName)
		assert.Equal(t, "A deep dive", s.Description)
	})

	t.Run("negative relevance clamps to zero", func(t *testing.T) {
		s := normalize(map[string]any{"relevance": -0.3})
		assert.Equal(t, 0.0, s.Relevance)
	})

	t.Run("camelCase date wins", func(t *testing.T) {
		s := normalize(map[string]any{"datePublished": "2023-01-01", "date_published": "2024-01-01"})
		assert.Equal(t, "2023-01-01", s.DatePublished)
	})
}

func TestExtractJSONArray(t *testing.T) {
	arr, ok := extractJSONArray(`x [1, [2, 3], "]"] y`)
	require.True(t, ok)
	assert.Equal(t, `[1, [2, 3], "]"]`, arr)

	_, ok = extractJSONArray("no array here")
	assert.False(t, ok)

	arr, ok = extractJSONArray(`[1, 2`)
	require.True(t, ok)
	assert.Equal(t, `[1, 2]`, arr)
}
