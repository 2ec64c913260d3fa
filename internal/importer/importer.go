// Package importer loads the legacy JSON data files into the database.
//
// Two files are read from the data directory:
//
//	store.json        likes, likedSuggestions, saves, history and profile of the single web user
//	bot-profiles.json {"users": {telegramID: state}} for every bot user
//
// Both are optional. Records already present in the database are skipped so an
// import can be repeated safely.
package importer

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/edgard/maintain/internal/auth"
	"github.com/edgard/maintain/internal/database"
	"github.com/edgard/maintain/internal/model"
)

// File names inside the data directory.
const (
	StoreFile       = "store.json"
	BotProfilesFile = "bot-profiles.json"
)

// DefaultEmail owns the web data when no email is given.
const DefaultEmail = "user@example.com"

// historyScan bounds how many existing sessions are read to detect duplicates.
const historyScan = 10000

// Options controls an import run.
type Options struct {
	DataDir string
	// Email of the web user receiving store.json. Created when missing.
	Email string
	// Password for a newly created web user. A random one is generated when empty.
	Password string
}

// Counts tallies what one source contributed.
type Counts struct {
	Users    int `json:"users"`
	History  int `json:"history"`
	Saves    int `json:"saves"`
	Likes    int `json:"likes"`
	Skipped  int `json:"skipped"`
	Profiles int `json:"profiles"`
}

func (c *Counts) add(o Counts) {
	c.Users += o.Users
	c.History += o.History
	c.Saves += o.Saves
	c.Likes += o.Likes
	c.Skipped += o.Skipped
	c.Profiles += o.Profiles
}

// Report is the outcome of Run.
type Report struct {
	Web Counts `json:"web"`
	Bot Counts `json:"bot"`
	// WebUserID is empty when store.json was absent.
	WebUserID string `json:"webUserId,omitempty"`
	// GeneratedPassword is set when the web user was created with a random password.
	GeneratedPassword string `json:"generatedPassword,omitempty"`
}

// Total sums both sources.
func (r Report) Total() Counts {
	var c Counts
	c.add(r.Web)
	c.add(r.Bot)
	return c
}

// Importer writes legacy data through the Store.
type Importer struct {
	store  database.Store
	logger *slog.Logger
}

// New creates an Importer.
func New(store database.Store, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Importer{store: store, logger: log.With("component", "importer")}
}

// Run imports both files found in opts.DataDir.
func (im *Importer) Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.DataDir == "" {
		opts.DataDir = ".data"
	}
	if opts.Email == "" {
		opts.Email = DefaultEmail
	}
	report := &Report{}

	var web webStore
	found, err := readJSON(filepath.Join(opts.DataDir, StoreFile), &web)
	if err != nil {
		return nil, err
	}
	if found {
		if err := im.importWeb(ctx, opts, &web, report); err != nil {
			return report, fmt.Errorf("failed to import %s: %w", StoreFile, err)
		}
	} else {
		im.logger.InfoContext(ctx, "No web store found, skipping", "file", StoreFile)
	}

	var bots botProfiles
	found, err = readJSON(filepath.Join(opts.DataDir, BotProfilesFile), &bots)
	if err != nil {
		return report, err
	}
	if found {
		if err := im.importBots(ctx, &bots, report); err != nil {
			return report, fmt.Errorf("failed to import %s: %w", BotProfilesFile, err)
		}
	} else {
		im.logger.InfoContext(ctx, "No bot profiles found, skipping", "file", BotProfilesFile)
	}

	total := report.Total()
	im.logger.InfoContext(ctx, "Import completed",
		"users", total.Users, "history", total.History, "saves", total.Saves,
		"likes", total.Likes, "skipped", total.Skipped)
	return report, nil
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}

func (im *Importer) importWeb(ctx context.Context, opts Options, web *webStore, report *Report) error {
	user, err := im.store.GetUserByEmail(ctx, opts.Email)
	switch {
	case err == nil:
		im.logger.InfoContext(ctx, "Importing into existing web user", "user_id", user.ID)
	case errors.Is(err, database.ErrNotFound):
		password := opts.Password
		if password == "" {
			password = randomPassword()
			report.GeneratedPassword = password
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), auth.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		name := "Web User"
		if web.Profile != nil && web.Profile.Name != "" {
			name = web.Profile.Name
		}
		user, err = im.store.CreateUser(ctx, opts.Email, string(hash), name)
		if err != nil {
			return err
		}
		report.Web.Users++
		im.logger.InfoContext(ctx, "Created web user", "user_id", user.ID, "email", opts.Email)
	default:
		return err
	}
	report.WebUserID = user.ID

	if web.Profile != nil && !web.Profile.IsEmpty() {
		if err := im.store.UpsertProfile(ctx, user.ID, model.FullUpdate(*web.Profile)); err != nil {
			return err
		}
		report.Web.Profiles++
	}

	c, err := im.importLibrary(ctx, user.ID, web.History, web.Saves, web.Likes, web.LikedSuggestions)
	report.Web.add(c)
	return err
}

func (im *Importer) importBots(ctx context.Context, bots *botProfiles, report *Report) error {
	ids := make([]string, 0, len(bots.Users))
	for id := range bots.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, telegramID := range ids {
		state := bots.Users[telegramID]
		if state.UserID != "" && state.UserID != telegramID {
			im.logger.WarnContext(ctx, "Bot user id differs from its key, using key", "key", telegramID, "user_id", state.UserID)
		}
		c, err := im.importBotUser(ctx, telegramID, state)
		report.Bot.add(c)
		if err != nil {
			return fmt.Errorf("bot user %s: %w", telegramID, err)
		}
	}
	return nil
}

func (im *Importer) importBotUser(ctx context.Context, telegramID string, state botUserState) (Counts, error) {
	var c Counts
	_, err := im.store.GetTelegramAccount(ctx, telegramID)
	existed := err == nil
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return c, err
	}

	user, err := im.store.FindOrCreateTelegramUser(ctx, database.TelegramIdentity{
		TelegramID: telegramID,
		Username:   state.Username,
		FirstName:  state.FirstName,
	})
	if err != nil {
		return c, err
	}

	// Account level settings only apply to accounts this run created.
	if !existed {
		c.Users++
		if !state.Profile.IsEmpty() {
			if err := im.store.UpsertProfile(ctx, user.ID, model.FullUpdate(state.Profile)); err != nil {
				return c, err
			}
			c.Profiles++
		}
		if mood, ok := model.ParseMood(state.CurrentMood); ok {
			if err := im.store.UpdateTelegramMood(ctx, telegramID, mood); err != nil {
				return c, err
			}
		}
		if state.PendingProfileSetup {
			if err := im.store.SetPendingProfileSetup(ctx, telegramID, true); err != nil {
				return c, err
			}
		}
		if state.Notifications != nil {
			if _, err := im.store.UpdateNotificationSettings(ctx, telegramID, state.Notifications.update()); err != nil {
				return c, err
			}
		}
	} else {
		c.Skipped++
	}

	lib, err := im.importLibrary(ctx, user.ID, state.History, state.Saves, state.Likes, nil)
	c.add(lib)
	return c, err
}

// importLibrary copies history, saves and likes, skipping those already stored.
func (im *Importer) importLibrary(ctx context.Context, userID string, history []legacySession, saves []legacySave, likes []string, liked map[string]model.Suggestion) (Counts, error) {
	var c Counts

	if len(history) > 0 {
		existing, err := im.store.GetUserHistory(ctx, userID, historyScan)
		if err != nil {
			return c, err
		}
		seen := make(map[string]bool, len(existing))
		for _, h := range existing {
			seen[h.ID] = true
		}
		// Oldest first keeps streak and category bookkeeping in order.
		sort.SliceStable(history, func(i, j int) bool { return history[i].Timestamp.Before(history[j].Timestamp) })
		for _, h := range history {
			if h.ID != "" && seen[h.ID] {
				c.Skipped++
				continue
			}
			session := h.row()
			if err := im.store.AddHistory(ctx, userID, session); err != nil {
				if errors.Is(err, database.ErrHistoryIDTaken) {
					im.logger.WarnContext(ctx, "History session id owned by another user", "session_id", session.ID, "user_id", userID)
					c.Skipped++
					continue
				}
				return c, err
			}
			seen[session.ID] = true
			c.History++
		}
	}

	for _, s := range saves {
		sug := s.Suggestion
		if sug.ID == "" {
			sug.ID = s.ID
		}
		if sug.ID == "" {
			c.Skipped++
			continue
		}
		if _, err := im.store.GetSavedItem(ctx, userID, sug.ID); err == nil {
			c.Skipped++
			continue
		} else if !errors.Is(err, database.ErrNotFound) {
			return c, err
		}
		list, ok := model.ParseSaveList(string(s.List))
		if !ok {
			list = model.ListOther
		}
		if _, _, err := im.store.SaveVideo(ctx, userID, sug, list, s.Notes); err != nil {
			return c, err
		}
		c.Saves++
	}

	for _, videoID := range likes {
		if videoID == "" {
			continue
		}
		var sug *model.Suggestion
		if s, ok := liked[videoID]; ok {
			sug = &s
		}
		created, err := im.store.LikeVideo(ctx, userID, videoID, sug)
		if err != nil {
			return c, err
		}
		if created {
			c.Likes++
		} else {
			c.Skipped++
		}
	}
	return c, nil
}

func randomPassword() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

type webStore struct {
	Likes            []string                    `json:"likes"`
	LikedSuggestions map[string]model.Suggestion `json:"likedSuggestions"`
	Saves            []legacySave                `json:"saves"`
	History          []legacySession             `json:"history"`
	Profile          *model.Profile              `json:"profile"`
}

type botProfiles struct {
	Users map[string]botUserState `json:"users"`
}

type botUserState struct {
	UserID              string                   `json:"userId"`
	Username            string                   `json:"username"`
	FirstName           string                   `json:"firstName"`
	Profile             model.Profile            `json:"profile"`
	CurrentMood         string                   `json:"currentMood"`
	LastActive          string                   `json:"lastActive"`
	PendingProfileSetup bool                     `json:"pendingProfileSetup"`
	History             []legacySession          `json:"history"`
	Saves               []legacySave             `json:"saves"`
	Likes               []string                 `json:"likes"`
	Notifications       *legacyNotificationPrefs `json:"notifications"`
}

type legacySession struct {
	ID          string             `json:"id"`
	Message     string             `json:"message"`
	Mood        string             `json:"mood"`
	Suggestions []model.Suggestion `json:"suggestions"`
	Timestamp   time.Time          `json:"timestamp"`
	Feedback    string             `json:"feedback"`
}

func (l legacySession) row() *database.HistorySession {
	session := &database.HistorySession{
		ID:          l.ID,
		Message:     l.Message,
		Suggestions: database.NewJSON(l.Suggestions),
		Timestamp:   l.Timestamp,
	}
	if mood, ok := model.ParseMood(l.Mood); ok {
		session.Mood = sql.NullString{String: string(mood), Valid: true}
	}
	if fb := model.Feedback(l.Feedback); fb.Valid() {
		session.Feedback = sql.NullString{String: string(fb), Valid: true}
	}
	return session
}

type legacySave struct {
	ID         string           `json:"id"`
	Suggestion model.Suggestion `json:"suggestion"`
	List       model.SaveList   `json:"list"`
	Notes      string           `json:"notes"`
	AddedAt    string           `json:"addedAt"`
}

type legacyNotificationPrefs struct {
	DailyDigest    bool   `json:"dailyDigest"`
	DailyTime      string `json:"dailyTime"`
	TrendingAlerts bool   `json:"trendingAlerts"`
	Reminders      bool   `json:"reminders"`
}

func (n legacyNotificationPrefs) update() model.NotificationUpdate {
	u := model.NotificationUpdate{
		DailyDigest:    &n.DailyDigest,
		TrendingAlerts: &n.TrendingAlerts,
		Reminders:      &n.Reminders,
	}
	if n.DailyTime != "" {
		u.DailyDigestTime = &n.DailyTime
	}
	return u
}
