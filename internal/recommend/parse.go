package recommend

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/edgard/maintain/internal/model"
	"github.com/edgard/maintain/internal/sanitize"
)

var (
	leadingFence  = regexp.MustCompile("^\\s*```[a-zA-Z]*\\n?")
	trailingFence = regexp.MustCompile("```\\s*$")
)

// ParseSuggestions turns raw model text into at most count normalized
// suggestions. It tolerates code fences, prose around the JSON and output
// truncated mid-array.
func ParseSuggestions(text string, count int) []model.Suggestion {
	text = stripFences(text)

	var items []map[string]any
	if arr, ok := extractJSONArray(text); ok {
		if err := json.Unmarshal([]byte(arr), &items); err != nil {
			items = nil
		}
	}
	if len(items) == 0 {
		items = extractJSONObjects(text)
	}

	if count > 0 && len(items) > count {
		items = items[:count]
	}
	out := make([]model.Suggestion, 0, len(items))
	for _, raw := range items {
		if raw == nil {
			continue
		}
		out = append(out, normalize(raw))
	}
	return out
}

func stripFences(text string) string {
	text = leadingFence.ReplaceAllString(text, "")
	return trailingFence.ReplaceAllString(text, "")
}

// scanner tracks whether a position is inside a JSON string literal.
type scanner struct {
	inString bool
	escaped  bool
}

// step consumes ch and reports whether it is structural (outside a string).
func (s *scanner) step(ch byte) bool {
	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case ch == '\\':
			s.escaped = true
		case ch == '"':
			s.inString = false
		}
		return false
	}
	if ch == '"' {
		s.inString = true
		return false
	}
	return true
}

// extractJSONArray returns the first top-level array, closing it when the
// input ends before the matching bracket.
func extractJSONArray(source string) (string, bool) {
	start := strings.IndexByte(source, '[')
	if start < 0 {
		return "", false
	}
	var sc scanner
	depth := 0
	for i := start; i < len(source); i++ {
		ch := source[i]
		if !sc.step(ch) {
			continue
		}
		switch ch {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return source[start : i+1], true
			}
		}
	}
	return source[start:] + "]", true
}

// extractJSONObjects collects every complete top-level object that parses.
func extractJSONObjects(source string) []map[string]any {
	var (
		out   []map[string]any
		sc    scanner
		depth int
		start = -1
	)
	for i := 0; i < len(source); i++ {
		ch := source[i]
		if !sc.step(ch) {
			continue
		}
		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(source[start:i+1]), &obj); err == nil {
					out = append(out, obj)
				}
				start = -1
			}
		}
	}
	return out
}

func normalize(raw map[string]any) model.Suggestion {
	s := model.Suggestion{
		ID:               stringOr(raw["id"], ""),
		Title:            stringOr(sanitize.StripHTML(stringOr(raw["title"], "")), "Untitled"),
		CreatorName:      stringOr(sanitize.StripHTML(stringOr(raw["creatorName"], "")), "Unknown"),
		CreatorAvatarURL: optString(raw["creatorAvatarUrl"]),
		ThumbnailURL:     optString(raw["thumbnailUrl"]),
		Description:      sanitize.PlainText(optString(raw["description"])),
		URL:              optString(raw["url"]),
		Tags:             []string{},
		Relevance:        0.5,
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if v, ok := raw["durationMinutes"].(float64); ok {
		s.DurationMinutes = model.IntPtr(int(math.Round(v)))
	}
	if v, ok := raw["datePublished"].(string); ok {
		s.DatePublished = v
	} else if v, ok := raw["date_published"].(string); ok {
		s.DatePublished = v
	}
	if tags, ok := raw["tags"].([]any); ok {
		for _, t := range tags {
			if str, ok := t.(string); ok && str != "" {
				s.Tags = append(s.Tags, str)
			}
		}
	}
	if v, ok := raw["relevance"].(float64); ok {
		s.Relevance = math.Max(0, math.Min(1, v))
	}
	return s
}

// stringOr renders scalars as strings; nil and empty values yield def.
func stringOr(v any, def string) string {
	switch t := v.(type) {
	case nil:
		return def
	case string:
		if t == "" {
			return def
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func optString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
