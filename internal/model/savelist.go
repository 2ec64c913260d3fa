package model

import "strings"

// SaveList is a user-chosen bucket for saved suggestions.
type SaveList string

// Save lists.
const (
	ListListen    SaveList = "listen"
	ListLearn     SaveList = "learn"
	ListKnowledge SaveList = "knowledge"
	ListTomorrow  SaveList = "tomorrow"
	ListOther     SaveList = "other"
)

// SaveLists lists every save list in display order.
var SaveLists = []SaveList{ListListen, ListLearn, ListKnowledge, ListTomorrow, ListOther}

var listEmojis = map[SaveList]string{
	ListListen:    "🎧",
	ListLearn:     "📚",
	ListKnowledge: "🧠",
	ListTomorrow:  "📅",
	ListOther:     "📁",
}

// ParseSaveList normalizes s and reports whether it names a known list.
func ParseSaveList(s string) (SaveList, bool) {
	l := SaveList(strings.ToLower(strings.TrimSpace(s)))
	_, ok := listEmojis[l]
	return l, ok
}

// Valid reports whether l is a known list.
func (l SaveList) Valid() bool {
	_, ok := listEmojis[l]
	return ok
}

// Emoji returns the list's emoji.
func (l SaveList) Emoji() string {
	if e, ok := listEmojis[l]; ok {
		return e
	}
	return "📁"
}

// Title returns the list name with its first letter upper-cased.
func (l SaveList) Title() string {
	if l == "" {
		return ""
	}
	return strings.ToUpper(string(l[:1])) + string(l[1:])
}
