package handlers

import (
	"regexp"
	"strings"

	"github.com/edgard/maintain/internal/model"
)

var (
	hobbiesLine   = regexp.MustCompile(`(?i)hobb(?:y|ies)\s*:\**\s*([^\n]+)`)
	interestsLine = regexp.MustCompile(`(?i)interests?\s*:\**\s*([^\n]+)`)
	languagesLine = regexp.MustCompile(`(?i)languages?\s*:\**\s*([^\n]+)`)
	youtubersLine = regexp.MustCompile(`(?i)youtubers?\s*:\**\s*([^\n]+)`)
	itemSeparator = regexp.MustCompile(`[,،]`)
)

// ParseProfileText reads "Hobbies: a, b" style lines. Items are split on
// commas, Latin or Arabic. Only the lines present end up in the update.
func ParseProfileText(text string) model.ProfileUpdate {
	var u model.ProfileUpdate
	if items := matchItems(hobbiesLine, text); items != nil {
		u.Hobbies = items
	}
	if items := matchItems(interestsLine, text); items != nil {
		u.Interests = items
	}
	if items := matchItems(languagesLine, text); items != nil {
		u.Languages = items
	}
	if names := matchItems(youtubersLine, text); names != nil {
		u.Youtubers = make([]model.Youtuber, 0, len(names))
		for _, name := range names {
			u.Youtubers = append(u.Youtubers, model.Youtuber{Name: name})
		}
	}
	return u
}

func matchItems(re *regexp.Regexp, text string) []string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	items := []string{}
	for _, part := range itemSeparator.Split(m[1], -1) {
		if item := strings.Trim(strings.TrimSpace(part), "*_ "); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// formatProfile renders a profile as MarkdownV2.
func formatProfile(p model.Profile) string {
	var sb strings.Builder
	sb.WriteString("📝 *Your Profile:*\n\n")
	line := func(label string, items []string) {
		if len(items) > 0 {
			sb.WriteString("*" + label + ":* " + escape(strings.Join(items, ", ")) + "\n")
		}
	}
	line("Hobbies", p.Hobbies)
	line("Interests", p.Interests)
	line("Languages", p.Languages)
	if len(p.Youtubers) > 0 {
		names := make([]string, 0, len(p.Youtubers))
		for _, y := range p.Youtubers {
			names = append(names, y.Name)
		}
		line("YouTubers", names)
	}
	if p.WorkContext != "" {
		sb.WriteString("*Work:* " + escape(p.WorkContext) + "\n")
	}
	sb.WriteString("\n" + escape("Send new profile details to update, or /reset to clear."))
	return sb.String()
}
