package model

import "time"

// Youtuber is a favourite content creator.
type Youtuber struct {
	Name       string `json:"name"`
	ChannelURL string `json:"channelUrl"`
}

// Profile holds the preferences that shape recommendations.
type Profile struct {
	Name        string     `json:"name,omitempty"`
	Hobbies     []string   `json:"hobbies"`
	Interests   []string   `json:"interests"`
	Languages   []string   `json:"languages"`
	WorkContext string     `json:"workContext,omitempty"`
	Youtubers   []Youtuber `json:"youtubers,omitempty"`
}

// IsEmpty reports whether no hobbies or interests are set.
func (p Profile) IsEmpty() bool {
	return len(p.Hobbies) == 0 && len(p.Interests) == 0
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	Hobbies     []string
	Interests   []string
	Languages   []string
	WorkContext *string
	Youtubers   []Youtuber
}

// IsEmpty reports whether the update changes nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Hobbies == nil && u.Interests == nil && u.Languages == nil && u.WorkContext == nil && u.Youtubers == nil
}

// FullUpdate turns a complete profile into an update that overwrites every field.
func FullUpdate(p Profile) ProfileUpdate {
	wc := p.WorkContext
	u := ProfileUpdate{
		Hobbies:     nonNil(p.Hobbies),
		Interests:   nonNil(p.Interests),
		Languages:   nonNil(p.Languages),
		WorkContext: &wc,
		Youtubers:   p.Youtubers,
	}
	if u.Youtubers == nil {
		u.Youtubers = []Youtuber{}
	}
	return u
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Stats are a user's usage counters.
type Stats struct {
	TotalQueries       int            `json:"totalQueries"`
	TotalLikes         int            `json:"totalLikes"`
	TotalSaves         int            `json:"totalSaves"`
	TotalVideosWatched int            `json:"totalVideosWatched"`
	Streak             int            `json:"streak"`
	LongestStreak      int            `json:"longestStreak"`
	LastActiveDate     time.Time      `json:"lastActiveDate"`
	FavoriteCategories map[string]int `json:"favoriteCategories"`
	JoinedAt           time.Time      `json:"joinedAt"`
}

// NotificationSettings are a Telegram account's digest preferences.
type NotificationSettings struct {
	DailyDigest     bool   `json:"dailyDigest"`
	DailyDigestTime string `json:"dailyDigestTime"`
	TrendingAlerts  bool   `json:"trendingAlerts"`
	Reminders       bool   `json:"reminders"`
	Timezone        string `json:"timezone"`
}

// NotificationUpdate is a partial notification settings change.
type NotificationUpdate struct {
	DailyDigest     *bool
	DailyDigestTime *string
	TrendingAlerts  *bool
	Reminders       *bool
	Timezone        *string
}
