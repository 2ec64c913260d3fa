package recommend

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

// placeholderSuggestions is what users without saves get when the model is down.
func placeholderSuggestions(message string, count int) []model.Suggestion {
	out := make([]model.Suggestion, count)
	for i := range out {
		out[i] = model.Suggestion{
			ID:              fmt.Sprintf("fallback_%d", i+1),
			Title:           "No saved content yet - " + message,
			CreatorName:     "Your Saves",
			DurationMinutes: model.IntPtr(30),
			Description:     "Save some content to see personalized suggestions when AI is unavailable.",
			Tags:            []string{model.TagSaved, model.TagFallback},
			Relevance:       0.5,
			URL:             "#",
		}
	}
	return out
}

// savedSuggestions shuffles the saves and turns up to count of them into suggestions.
func savedSuggestions(items []database.SavedItem, count int, shuffle func(n int, swap func(i, j int))) []model.Suggestion {
	shuffled := make([]database.SavedItem, len(items))
	copy(shuffled, items)
	shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	if len(shuffled) > count {
		shuffled = shuffled[:count]
	}

	out := make([]model.Suggestion, 0, len(shuffled))
	for i, item := range shuffled {
		s := item.Suggestion.V
		desc := s.Description
		if desc == "" {
			desc = "Saved content"
		}
		tags := make([]string, 0, len(s.Tags)+2)
		tags = append(tags, s.Tags...)
		tags = append(tags, model.TagSaved, item.List)

		s.ID = fmt.Sprintf("saved_%s_%d", item.VideoID, i)
		s.Description = fmt.Sprintf("From your saves (%s) - %s", item.List, desc)
		s.Tags = tags
		s.Relevance = math.Max(0.4, 0.9-0.1*float64(i))
		out = append(out, s)
	}
	return out
}

// errorSuggestions is the last resort when even the saves can't be read.
func errorSuggestions(count int) []model.Suggestion {
	out := make([]model.Suggestion, count)
	for i := range out {
		out[i] = model.Suggestion{
			ID:              fmt.Sprintf("error_%d", i+1),
			Title:           "AI temporarily unavailable",
			CreatorName:     "System",
			DurationMinutes: model.IntPtr(0),
			Description:     "Please try again later. Error loading saved content.",
			Tags:            []string{model.TagError},
			Relevance:       0.1,
			URL:             "#",
		}
	}
	return out
}

func defaultShuffle(n int, swap func(i, j int)) {
	rand.Shuffle(n, swap)
}
