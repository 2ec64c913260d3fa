package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/maintain/internal/model"
)

func newTestStore(t *testing.T) *sqlxStore {
	t.Helper()
	db, err := TestDB()
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })
	return NewStore(db, nil).(*sqlxStore)
}

func suggestion(id string, tags ...string) model.Suggestion {
	return model.Suggestion{ID: id, Title: "Video " + id, CreatorName: "Creator", Tags: tags, Relevance: 0.9}
}

func TestSQLiteDSN(t *testing.T) {
	dsn := SQLiteDSN("maintain.db")
	assert.Equal(t, "maintain.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", dsn)

	dsn = SQLiteDSN("file:test.db?mode=rwc&_pragma=foreign_keys(1)")
	assert.Equal(t, "file:test.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", dsn)
}

func TestMigrationVersion(t *testing.T) {
	s := newTestStore(t)
	version, dirty, err := MigrationVersion(s.db.DB, DriverSQLite)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// Applying again is a no-op.
	require.NoError(t, ApplyMigrations(s.db.DB, DriverSQLite))
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	user, err := s.CreateUser(ctx, "  Alice@Example.com ", "hash", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email.String)

	_, err = s.CreateUser(ctx, "alice@example.com", "hash", "Other")
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := s.GetUserByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	profile, err := s.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, profile.ToModel().Hobbies)

	stats, err := s.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalQueries)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindOrCreateTelegramUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	identity := TelegramIdentity{TelegramID: "42", Username: "bob", FirstName: "Bob"}

	first, err := s.FindOrCreateTelegramUser(ctx, identity)
	require.NoError(t, err)
	second, err := s.FindOrCreateTelegramUser(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	account, err := s.GetTelegramAccount(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, first.ID, account.UserID)
	assert.False(t, account.PendingProfileSetup)

	settings, err := s.GetNotificationSettings(ctx, "42")
	require.NoError(t, err)
	assert.True(t, settings.DailyDigest)
	assert.Equal(t, "09:00", settings.DailyDigestTime)
	assert.Equal(t, "UTC", settings.Timezone)
}

func TestHistoryUpdatesStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user, err := s.CreateUser(ctx, "h@example.com", "hash", "H")
	require.NoError(t, err)

	session := &HistorySession{
		Message:     "something calm",
		Mood:        nullString("chill"),
		Suggestions: NewJSON([]model.Suggestion{suggestion("a", "music", model.TagFallback), suggestion("b", "music", "lofi")}),
	}
	require.NoError(t, s.AddHistory(ctx, user.ID, session))
	assert.NotEmpty(t, session.ID)

	// Same id again is ignored.
	require.NoError(t, s.AddHistory(ctx, user.ID, session))

	other, err := s.CreateUser(ctx, "other@example.com", "hash", "O")
	require.NoError(t, err)
	taken := &HistorySession{ID: session.ID, Message: "not mine"}
	assert.ErrorIs(t, s.AddHistory(ctx, other.ID, taken), ErrHistoryIDTaken)
	otherStats, err := s.GetUserStats(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, otherStats.TotalQueries)

	stats, err := s.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalQueries)
	assert.Equal(t, 1, stats.Streak)
	assert.Equal(t, map[string]int{"music": 2, "lofi": 1}, stats.FavoriteCategories.V)

	history, err := s.GetUserHistory(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "chill", string(history[0].ToModel().Mood))
	assert.Len(t, history[0].ToModel().Suggestions, 2)

	require.NoError(t, s.SetHistoryFeedback(ctx, user.ID, session.ID, model.FeedbackHelpful))
	assert.Error(t, s.SetHistoryFeedback(ctx, user.ID, session.ID, model.Feedback("meh")))
	assert.ErrorIs(t, s.SetHistoryFeedback(ctx, user.ID, "missing", model.FeedbackHelpful), ErrNotFound)

	require.NoError(t, s.DeleteHistory(ctx, user.ID, session.ID))
	assert.ErrorIs(t, s.DeleteHistory(ctx, user.ID, session.ID), ErrNotFound)
}

func TestGlobalHistoryAndPrune(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user, err := s.FindOrCreateTelegramUser(ctx, TelegramIdentity{TelegramID: "7", Username: "carol", FirstName: "Carol"})
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddHistory(ctx, user.ID, &HistorySession{
			Message:   "query",
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	global, err := s.GetGlobalHistory(ctx, 3)
	require.NoError(t, err)
	require.Len(t, global, 3)
	assert.Equal(t, "@carol", global[0].ToModel().Author)
	assert.True(t, global[0].Timestamp.After(global[1].Timestamp))

	removed, err := s.PruneHistory(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	removed, err = s.TrimUserHistory(ctx, user.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	cleared, err := s.ClearHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)
}

func TestSavesAndLikes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user, err := s.CreateUser(ctx, "s@example.com", "hash", "S")
	require.NoError(t, err)

	item, created, err := s.SaveVideo(ctx, user.ID, suggestion("v1"), model.ListLearn, "for later")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "learn", item.List)

	item, created, err = s.SaveVideo(ctx, user.ID, suggestion("v1"), model.ListListen, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "listen", item.List)

	_, _, err = s.SaveVideo(ctx, user.ID, suggestion("v2"), model.ListLearn, "")
	require.NoError(t, err)
	_, _, err = s.SaveVideo(ctx, user.ID, suggestion("v3"), model.SaveList("bogus"), "")
	assert.Error(t, err)

	counts, err := s.CountSavesByList(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[model.SaveList]int{model.ListListen: 1, model.ListLearn: 1}, counts)

	learn, err := s.GetUserSaves(ctx, user.ID, model.ListLearn)
	require.NoError(t, err)
	require.Len(t, learn, 1)
	assert.Equal(t, "v2", learn[0].VideoID)

	require.NoError(t, s.RemoveSave(ctx, user.ID, "v2"))
	assert.ErrorIs(t, s.RemoveSave(ctx, user.ID, "v2"), ErrNotFound)

	sug := suggestion("v9")
	liked, err := s.LikeVideo(ctx, user.ID, "v9", &sug)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = s.LikeVideo(ctx, user.ID, "v9", &sug)
	require.NoError(t, err)
	assert.False(t, liked)

	ok, err := s.IsVideoLiked(ctx, user.ID, "v9")
	require.NoError(t, err)
	assert.True(t, ok)

	likes, err := s.GetUserLikes(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "Video v9", likes[0].ToModel().Suggestion.Title)

	stats, err := s.GetUserStats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSaves)
	assert.Equal(t, 1, stats.TotalLikes)

	require.NoError(t, s.UnlikeVideo(ctx, user.ID, "v9"))
	assert.ErrorIs(t, s.UnlikeVideo(ctx, user.ID, "v9"), ErrNotFound)
}

func TestProfileUpdates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user, err := s.FindOrCreateTelegramUser(ctx, TelegramIdentity{TelegramID: "11", FirstName: "Dan"})
	require.NoError(t, err)

	work := "backend engineer"
	require.NoError(t, s.UpsertProfile(ctx, user.ID, model.ProfileUpdate{
		Hobbies:     []string{"climbing"},
		WorkContext: &work,
	}))
	require.NoError(t, s.UpsertProfile(ctx, user.ID, model.ProfileUpdate{Interests: []string{"go", "databases"}}))

	profile, err := s.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	m := profile.ToModel()
	assert.Equal(t, []string{"climbing"}, m.Hobbies)
	assert.Equal(t, []string{"go", "databases"}, m.Interests)
	assert.Equal(t, "backend engineer", m.WorkContext)

	require.NoError(t, s.UpdateTelegramMood(ctx, "11", model.MoodCurious))
	require.NoError(t, s.SetPendingProfileSetup(ctx, "11", true))

	require.NoError(t, s.ResetProfile(ctx, user.ID))
	profile, err = s.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, profile.ToModel().IsEmpty())
	assert.Empty(t, profile.WorkContext.String)

	account, err := s.GetTelegramAccount(ctx, "11")
	require.NoError(t, err)
	assert.Empty(t, account.Mood())
	assert.False(t, account.PendingProfileSetup)
}

func TestNotificationSettingsAndDigest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	a, err := s.FindOrCreateTelegramUser(ctx, TelegramIdentity{TelegramID: "1"})
	require.NoError(t, err)
	_, err = s.FindOrCreateTelegramUser(ctx, TelegramIdentity{TelegramID: "2"})
	require.NoError(t, err)

	off := false
	at := "18:30"
	settings, err := s.UpdateNotificationSettings(ctx, "2", model.NotificationUpdate{DailyDigest: &off, DailyDigestTime: &at})
	require.NoError(t, err)
	assert.False(t, settings.DailyDigest)
	assert.Equal(t, "18:30", settings.DailyDigestTime)

	recipients, err := s.ListDigestRecipients(ctx)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, a.ID, recipients[0].UserID)
	assert.Equal(t, "1", recipients[0].TelegramID)

	_, err = s.UpdateNotificationSettings(ctx, "404", model.NotificationUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinkTelegramMergesBotUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	bot, err := s.FindOrCreateTelegramUser(ctx, TelegramIdentity{TelegramID: "99", Username: "erin"})
	require.NoError(t, err)
	_, err = s.LikeVideo(ctx, bot.ID, "shared", nil)
	require.NoError(t, err)
	_, err = s.LikeVideo(ctx, bot.ID, "only-bot", nil)
	require.NoError(t, err)
	require.NoError(t, s.AddHistory(ctx, bot.ID, &HistorySession{Message: "hi"}))

	web, err := s.CreateUser(ctx, "erin@example.com", "hash", "Erin")
	require.NoError(t, err)
	_, err = s.LikeVideo(ctx, web.ID, "shared", nil)
	require.NoError(t, err)

	require.NoError(t, s.LinkTelegramToWebUser(ctx, web.ID, TelegramIdentity{TelegramID: "99", Username: "erin"}))
	// Linking the same id again is a no-op.
	require.NoError(t, s.LinkTelegramToWebUser(ctx, web.ID, TelegramIdentity{TelegramID: "99"}))

	_, err = s.GetUserByID(ctx, bot.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	linked, err := s.FindOrCreateTelegramUser(ctx, TelegramIdentity{TelegramID: "99"})
	require.NoError(t, err)
	assert.Equal(t, web.ID, linked.ID)

	stats, err := s.GetUserStats(ctx, web.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLikes)
	assert.Equal(t, 1, stats.TotalQueries)

	err = s.LinkTelegramToWebUser(ctx, web.ID, TelegramIdentity{TelegramID: "100"})
	assert.ErrorIs(t, err, ErrUserAlreadyLinked)

	other, err := s.CreateUser(ctx, "other@example.com", "hash", "Other")
	require.NoError(t, err)
	err = s.LinkTelegramToWebUser(ctx, other.ID, TelegramIdentity{TelegramID: "99"})
	assert.ErrorIs(t, err, ErrTelegramAlreadyLinked)
}

func TestNextStreak(t *testing.T) {
	day := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		name            string
		streak, longest int
		last            time.Time
		wantStreak      int
		wantLongest     int
	}{
		{"first activity", 0, 0, day, 1, 1},
		{"same day", 3, 5, day.Add(-time.Hour), 3, 5},
		{"next day", 3, 3, day.Add(-25 * time.Hour), 4, 4},
		{"gap resets", 6, 6, day.Add(-72 * time.Hour), 1, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streak, longest := nextStreak(tt.streak, tt.longest, tt.last, day)
			assert.Equal(t, tt.wantStreak, streak)
			assert.Equal(t, tt.wantLongest, longest)
		})
	}
}

func TestUpdateStreak(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	user, err := s.CreateUser(ctx, "streak@example.com", "hash", "")
	require.NoError(t, err)

	start := time.Now().UTC()
	streak, longest, err := s.UpdateStreak(ctx, user.ID, start)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
	assert.Equal(t, 1, longest)

	streak, _, err = s.UpdateStreak(ctx, user.ID, start.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, streak)

	_, _, err = s.UpdateStreak(ctx, "missing", start)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunSQLMaintenance(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.RunSQLMaintenance(context.Background()))
}
