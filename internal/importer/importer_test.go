package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

const storeJSON = `{
  "likes": ["vid1", "vid2"],
  "likedSuggestions": {"vid1": {"id": "vid1", "title": "Liked One", "creatorName": "A", "tags": ["music"], "relevance": 0.8}},
  "saves": [
    {"id": "vid3", "suggestion": {"id": "vid3", "title": "Saved", "creatorName": "B", "tags": []}, "list": "learn", "addedAt": "2024-05-01T10:00:00.000Z"},
    {"id": "vid4", "suggestion": {"id": "vid4", "title": "Odd list", "creatorName": "C"}, "list": "someday", "addedAt": "2024-05-01T10:00:00.000Z"}
  ],
  "history": [
    {"id": "h1", "message": "chill music", "mood": "chill", "suggestions": [{"id": "vid1", "title": "Liked One", "creatorName": "A", "tags": ["music"]}], "timestamp": "2024-05-01T09:00:00.000Z"}
  ],
  "profile": {"name": "Ada", "hobbies": ["chess"], "interests": ["go"], "languages": ["English"]}
}`

const botJSON = `{
  "users": {
    "1001": {
      "userId": "1001",
      "username": "gopher",
      "firstName": "Go",
      "profile": {"hobbies": ["running"], "interests": [], "languages": []},
      "currentMood": "curious",
      "lastActive": "2024-05-02T09:00:00.000Z",
      "history": [
        {"id": "b1", "message": "space", "mood": "curious", "suggestions": [], "timestamp": "2024-05-02T09:00:00.000Z", "feedback": "helpful"}
      ],
      "saves": [{"id": "yt_1", "suggestion": {"id": "yt_1", "title": "Rockets", "creatorName": "NASA"}, "list": "knowledge", "addedAt": "2024-05-02T09:00:00.000Z"}],
      "likes": ["yt_1"],
      "stats": {"totalQueries": 1, "totalLikes": 1, "totalSaves": 1, "streak": 2, "favoriteCategories": {}},
      "notifications": {"dailyDigest": false, "dailyTime": "08:30", "trendingAlerts": true, "reminders": false}
    }
  }
}`

func setup(t *testing.T, files map[string]string) (database.Store, string) {
	t.Helper()
	db, err := database.TestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return database.NewStore(db, nil), dir
}

func TestImportWebStore(t *testing.T) {
	store, dir := setup(t, map[string]string{StoreFile: storeJSON})
	ctx := context.Background()

	report, err := New(store, nil).Run(ctx, Options{DataDir: dir, Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 1, History: 1, Saves: 2, Likes: 2, Profiles: 1}, report.Web)
	assert.Empty(t, report.GeneratedPassword)

	user, err := store.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, report.WebUserID, user.ID)
	assert.Equal(t, "Ada", user.Name.String)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password.String), []byte("secret1")))

	profile, err := store.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"chess"}, profile.ToModel().Hobbies)

	history, err := store.GetUserHistory(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "h1", history[0].ID)
	assert.Equal(t, "chill", history[0].Mood.String)

	saves, err := store.CountSavesByList(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, saves[model.ListLearn])
	assert.Equal(t, 1, saves[model.ListOther], "unknown lists fall back to other")

	likes, err := store.GetUserLikes(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, likes, 2)
	withData := 0
	for _, l := range likes {
		if l.Suggestion.V != nil {
			withData++
		}
	}
	assert.Equal(t, 1, withData, "only vid1 had suggestion data")
}

func TestImportBotProfiles(t *testing.T) {
	store, dir := setup(t, map[string]string{BotProfilesFile: botJSON})
	ctx := context.Background()

	report, err := New(store, nil).Run(ctx, Options{DataDir: dir})
	require.NoError(t, err)
	assert.Empty(t, report.WebUserID)
	assert.Equal(t, Counts{Users: 1, History: 1, Saves: 1, Likes: 1, Profiles: 1}, report.Bot)

	account, err := store.GetTelegramAccount(ctx, "1001")
	require.NoError(t, err)
	assert.Equal(t, model.MoodCurious, account.Mood())

	settings, err := store.GetNotificationSettings(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, settings.DailyDigest)
	assert.True(t, settings.TrendingAlerts)
	assert.Equal(t, "08:30", settings.DailyDigestTime)

	history, err := store.GetUserHistory(ctx, account.UserID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "helpful", history[0].Feedback.String)
}

func TestImportIsRepeatable(t *testing.T) {
	store, dir := setup(t, map[string]string{StoreFile: storeJSON, BotProfilesFile: botJSON})
	ctx := context.Background()
	im := New(store, nil)

	first, err := im.Run(ctx, Options{DataDir: dir})
	require.NoError(t, err)
	assert.NotEmpty(t, first.GeneratedPassword)
	assert.Equal(t, DefaultEmail, mustUser(t, store, first.WebUserID).Email.String)

	second, err := im.Run(ctx, Options{DataDir: dir})
	require.NoError(t, err)
	assert.Equal(t, first.WebUserID, second.WebUserID)
	assert.Empty(t, second.GeneratedPassword)

	total := second.Total()
	assert.Zero(t, total.Users)
	assert.Zero(t, total.History)
	assert.Zero(t, total.Saves)
	assert.Zero(t, total.Likes)
	// h1, vid3, vid4, vid1, vid2 on the web side; account, b1, yt_1 save and like on the bot side.
	assert.Equal(t, 9, total.Skipped)

	stats, err := store.GetUserStats(ctx, first.WebUserID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalQueries)
	assert.Equal(t, 2, stats.TotalSaves)
}

func TestImportMissingAndBrokenFiles(t *testing.T) {
	store, dir := setup(t, nil)
	report, err := New(store, nil).Run(context.Background(), Options{DataDir: dir})
	require.NoError(t, err)
	assert.Equal(t, Counts{}, report.Total())

	store, dir = setup(t, map[string]string{StoreFile: "{not json"})
	_, err = New(store, nil).Run(context.Background(), Options{DataDir: dir})
	assert.ErrorContains(t, err, "failed to parse")
}

func mustUser(t *testing.T, store database.Store, id string) *database.User {
	t.Helper()
	u, err := store.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
