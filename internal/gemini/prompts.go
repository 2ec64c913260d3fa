package gemini

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/edgard/maintain/internal/model"
)

// RecommendSystemInstruction tells the model the exact JSON shape to return.
const RecommendSystemInstruction = `You are a web content recommendation system. You recommend videos, articles, and podcasts based on user requests.

Always return ONLY valid JSON in this exact format - an array of suggestion objects:
[
  {
    "id": "unique_id",
    "title": "Content Title",
    "creatorName": "Creator Name",
    "thumbnailUrl": "https://youtube.com/thumb.jpg",
    "creatorAvatarUrl": "https://youtube.com/avatar.jpg",
    "durationMinutes": 25,
    "date_published": "2024-07-01",
    "description": "Brief description of the content",
    "tags": ["tag1", "tag2"],
    "relevance": 0.9,
    "url": "https://youtube.com/content"
  }
]

Consider the user's mood, profile (hobbies, interests, languages, work context), and favorite content creators. Prioritize matching channels when relevant to their interests. Avoid duplicates. Ensure relevance is a number between 0 and 1.`

// recommendPromptTemplate expects count, message, mood and profile JSON.
const recommendPromptTemplate = `Please recommend %d pieces of web content based on:

Message: %q
Mood: %s
Profile: %s

Return only the JSON array, no additional text.`

// RecommendPrompt builds the user prompt for a recommendation request.
func RecommendPrompt(count int, message string, mood model.Mood, profile *model.Profile) string {
	moodText := string(mood)
	if moodText == "" {
		moodText = "unknown"
	}

	profileJSON := []byte("{}")
	if profile != nil {
		if b, err := json.Marshal(profile); err == nil {
			profileJSON = b
		}
	}
	return fmt.Sprintf(recommendPromptTemplate, count, message, moodText, profileJSON)
}
