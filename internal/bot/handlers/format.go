package handlers

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	tgbot "github.com/go-telegram/bot"

	"github.com/edgard/maintain/internal/model"
)

// MaxMessageLength keeps messages below Telegram's 4096 character limit.
const MaxMessageLength = 4000

// escape escapes text for MarkdownV2.
func escape(s string) string {
	return tgbot.EscapeMarkdown(s)
}

// escapeLinkURL escapes the URL part of a MarkdownV2 inline link.
func escapeLinkURL(u string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(u)
}

// truncateRunes cuts s to n runes and reports whether it was cut.
func truncateRunes(s string, n int) (string, bool) {
	if utf8.RuneCountInString(s) <= n {
		return s, false
	}
	return string([]rune(s)[:n]), true
}

// SplitMessage splits text into chunks of at most maxLen runes, preferring
// line boundaries.
func SplitMessage(text string, maxLen int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentLen = 0
	}

	for _, line := range strings.Split(text, "\n") {
		lineLen := utf8.RuneCountInString(line)
		if currentLen+lineLen+1 <= maxLen {
			current.WriteString(line)
			current.WriteByte('\n')
			currentLen += lineLen + 1
			continue
		}
		flush()
		runes := []rune(line)
		for len(runes) > maxLen {
			chunks = append(chunks, string(runes[:maxLen]))
			runes = runes[maxLen:]
		}
		current.WriteString(string(runes))
		current.WriteByte('\n')
		currentLen = len(runes) + 1
	}
	flush()
	return chunks
}

// TimeAgo renders t relative to now.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dmin ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// formatSuggestion renders one suggestion as a MarkdownV2 card.
func formatSuggestion(s model.Suggestion, index int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%d\\. %s*\n\n", index, escape(s.Title))
	if s.CreatorName != "" {
		fmt.Fprintf(&sb, "📺 %s\n", escape(s.CreatorName))
	}
	if m := s.Minutes(); m > 0 {
		fmt.Fprintf(&sb, "⏱️ %d min\n", m)
	}
	if s.Description != "" {
		desc, cut := truncateRunes(s.Description, 150)
		sb.WriteString("\n" + escape(desc))
		if cut {
			sb.WriteString("\\.\\.\\.")
		}
		sb.WriteString("\n")
	}
	if s.URL != "" && s.URL != "#" {
		fmt.Fprintf(&sb, "\n🔗 [Watch on YouTube](%s)", escapeLinkURL(s.URL))
	}
	return sb.String()
}

// formatSuggestionList renders a numbered MarkdownV2 list.
func formatSuggestionList(header string, suggestions []model.Suggestion) string {
	var sb strings.Builder
	sb.WriteString(header)
	for i, s := range suggestions {
		fmt.Fprintf(&sb, "%d\\. *%s*\n", i+1, escape(s.Title))
		fmt.Fprintf(&sb, "   👤 %s\n", escape(s.CreatorName))
		if m := s.Minutes(); m > 0 {
			fmt.Fprintf(&sb, "   ⏱️ %d min\n", m)
		}
		if s.Description != "" {
			desc, cut := truncateRunes(s.Description, 100)
			sb.WriteString("   📝 " + escape(desc))
			if cut {
				sb.WriteString("\\.\\.\\.")
			}
			sb.WriteString("\n")
		}
		if s.URL != "" && s.URL != "#" {
			fmt.Fprintf(&sb, "   🔗 [Watch Video](%s)\n", escapeLinkURL(s.URL))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// topCategories returns up to n categories by descending count.
func topCategories(cats map[string]int, n int) []string {
	keys := make([]string, 0, len(cats))
	for k := range cats {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if cats[keys[i]] != cats[keys[j]] {
			return cats[keys[i]] > cats[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
