package model

import "strings"

// Mood is a small enum influencing prompt construction.
type Mood string

// Supported moods.
const (
	MoodTired     Mood = "tired"
	MoodCurious   Mood = "curious"
	MoodMotivated Mood = "motivated"
	MoodRelaxed   Mood = "relaxed"
	MoodBored     Mood = "bored"
	MoodChill     Mood = "chill"
)

// Moods lists every mood in display order.
var Moods = []Mood{MoodTired, MoodCurious, MoodMotivated, MoodRelaxed, MoodBored, MoodChill}

var moodEmojis = map[Mood]string{
	MoodTired:     "😴",
	MoodCurious:   "🧐",
	MoodMotivated: "⚡",
	MoodRelaxed:   "🧘",
	MoodBored:     "🤥",
	MoodChill:     "😌",
}

// ParseMood normalizes s and reports whether it names a known mood.
func ParseMood(s string) (Mood, bool) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	_, ok := moodEmojis[m]
	return m, ok
}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	_, ok := moodEmojis[m]
	return ok
}

// Emoji returns the mood's emoji, or a thought bubble for unknown moods.
func (m Mood) Emoji() string {
	if e, ok := moodEmojis[m]; ok {
		return e
	}
	return "💭"
}

// Title returns the mood with its first letter upper-cased.
func (m Mood) Title() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}
