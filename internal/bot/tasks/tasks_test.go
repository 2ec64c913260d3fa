package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/maintain/internal/cache"
	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/logger"
	"github.com/edgard/maintain/internal/model"
	"github.com/edgard/maintain/internal/trending"
)

type fakeSender struct {
	mu   sync.Mutex
	sent []*bot.SendMessageParams
	err  error
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &models.Message{ID: len(f.sent)}, nil
}

type fakeTrending struct {
	categories []string
}

func (f *fakeTrending) Trending(_ context.Context, category string, count int) trending.Response {
	f.categories = append(f.categories, category)
	return trending.Response{Suggestions: trending.FallbackItems(count), Source: trending.SourceFallback, Category: category}
}

func newTestDeps(t *testing.T) (TaskDeps, *fakeSender, *fakeTrending) {
	t.Helper()
	db, err := database.TestDB()
	require.NoError(t, err)
	t.Cleanup(func() { database.CloseDB(db) })

	sender := &fakeSender{}
	tr := &fakeTrending{}
	return TaskDeps{
		Logger:   logger.Discard(),
		Store:    database.NewStore(db, nil),
		Config:   &config.Config{},
		Trending: tr,
		Cache:    cache.NewMemory(time.Hour),
		Sender:   sender,
	}, sender, tr
}

func TestRegisterAllTasks(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	tasks := RegisterAllTasks(deps)
	assert.Len(t, tasks, 4)
	assert.Contains(t, tasks, config.TaskDailyDigest)

	deps.Sender = nil
	tasks = RegisterAllTasks(deps)
	assert.NotContains(t, tasks, config.TaskDailyDigest, "digest needs a telegram sender")
	assert.Contains(t, tasks, config.TaskSQLMaintenance)
}

func TestDigestCategory(t *testing.T) {
	assert.Equal(t, trending.CategoryAll, digestCategory(nil))
	assert.Equal(t, "education", digestCategory(map[string]int{"coding": 5, "music": 2}))
	assert.Equal(t, "music", digestCategory(map[string]int{"unknown": 9, "music": 2}))
	assert.Equal(t, trending.CategoryAll, digestCategory(map[string]int{"cooking": 3}))
}

func TestDailyDigest(t *testing.T) {
	ctx := context.Background()
	deps, sender, tr := newTestDeps(t)

	u, err := deps.Store.FindOrCreateTelegramUser(ctx, database.TelegramIdentity{TelegramID: "1001", FirstName: "Ana"})
	require.NoError(t, err)
	require.NoError(t, deps.Store.AddHistory(ctx, u.ID, &database.HistorySession{
		Message:     "music please",
		Suggestions: database.NewJSON([]model.Suggestion{{ID: "v1", Title: "Song", Tags: []string{"music"}}}),
	}))

	off, err := deps.Store.FindOrCreateTelegramUser(ctx, database.TelegramIdentity{TelegramID: "1002"})
	require.NoError(t, err)
	_, err = deps.Store.UpdateNotificationSettings(ctx, off.TelegramID.String, model.NotificationUpdate{DailyDigest: boolPtr(false)})
	require.NoError(t, err)

	require.NoError(t, newDailyDigestTask(deps)(ctx))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, int64(1001), sender.sent[0].ChatID)
	assert.Equal(t, models.ParseModeMarkdown, sender.sent[0].ParseMode)
	assert.Contains(t, sender.sent[0].Text, "Daily Digest")
	assert.Equal(t, []string{"music"}, tr.categories)
}

func TestDailyDigestAllFailures(t *testing.T) {
	ctx := context.Background()
	deps, sender, _ := newTestDeps(t)
	sender.err = errors.New("blocked by user")

	_, err := deps.Store.FindOrCreateTelegramUser(ctx, database.TelegramIdentity{TelegramID: "2001"})
	require.NoError(t, err)

	assert.Error(t, newDailyDigestTask(deps)(ctx))
}

func TestHistoryPrune(t *testing.T) {
	ctx := context.Background()
	deps, _, _ := newTestDeps(t)

	u, err := deps.Store.FindOrCreateTelegramUser(ctx, database.TelegramIdentity{TelegramID: "3001"})
	require.NoError(t, err)
	base := time.Now().Add(-time.Hour)
	for i := range HistoryKeep + 5 {
		require.NoError(t, deps.Store.AddHistory(ctx, u.ID, &database.HistorySession{
			ID:        fmt.Sprintf("s%03d", i),
			Message:   "q",
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	require.NoError(t, newHistoryPruneTask(deps)(ctx))

	rows, err := deps.Store.GetUserHistory(ctx, u.ID, 100)
	require.NoError(t, err)
	assert.Len(t, rows, HistoryKeep)
	assert.Equal(t, fmt.Sprintf("s%03d", HistoryKeep+4), rows[0].ID)
}

func TestCacheSweep(t *testing.T) {
	ctx := context.Background()
	deps, _, _ := newTestDeps(t)
	require.NoError(t, deps.Cache.Put(ctx, "k", "v", time.Nanosecond))
	time.Sleep(time.Millisecond)

	require.NoError(t, newCacheSweepTask(deps)(ctx))

	found, err := deps.Cache.Get(ctx, "k", new(string))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLMaintenance(t *testing.T) {
	deps, _, _ := newTestDeps(t)
	assert.NoError(t, newSQLMaintenanceTask(deps)(context.Background()))

	db, err := database.TestDB()
	require.NoError(t, err)
	database.CloseDB(db)
	deps.Store = database.NewStore(db, nil)
	deps.Config.Database.Driver = database.DriverSQLite

	err = newSQLMaintenanceTask(deps)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite maintenance")
}

func boolPtr(v bool) *bool { return &v }
