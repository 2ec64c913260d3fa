package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/model"
)

func TestRecommendPrompt(t *testing.T) {
	t.Run("unknown mood and empty profile", func(t *testing.T) {
		p := RecommendPrompt(3, `say "hi"`, "", nil)
		assert.Contains(t, p, "Please recommend 3 pieces of web content")
		assert.Contains(t, p, `Message: "say \"hi\""`)
		assert.Contains(t, p, "Mood: unknown")
		assert.Contains(t, p, "Profile: {}")
	})

	t.Run("profile is embedded as JSON", func(t *testing.T) {
		profile := &model.Profile{Hobbies: []string{"chess"}, Interests: []string{}, Languages: []string{"en"}}
		p := RecommendPrompt(10, "openings", model.MoodCurious, profile)
		assert.Contains(t, p, "Mood: curious")
		assert.Contains(t, p, `"hobbies":["chess"]`)
	})
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(t.Context(), config.GeminiConfig{ModelName: "gemini-2.0-flash"}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestContentConfig(t *testing.T) {
	cfg := contentConfig(config.GeminiConfig{Temperature: 0.7, TopP: 0.8, TopK: 40, MaxOutputTokens: 3048})
	assert.InDelta(t, 0.7, *cfg.Temperature, 1e-6)
	assert.InDelta(t, 0.8, *cfg.TopP, 1e-6)
	assert.InDelta(t, 40, *cfg.TopK, 1e-6)
	assert.Equal(t, int32(3048), cfg.MaxOutputTokens)
}
