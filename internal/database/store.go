package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edgard/maintain/internal/model"
)

// Sentinel errors returned by the Store.
var (
	ErrNotFound              = errors.New("record not found")
	ErrUserExists            = errors.New("user already exists")
	ErrTelegramAlreadyLinked = errors.New("telegram account already linked to another user")
	ErrUserAlreadyLinked     = errors.New("user already linked to a different telegram account")
	ErrHistoryIDTaken        = errors.New("history session id belongs to another user")
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateUser creates an email user with an empty profile and zeroed stats.
	CreateUser(ctx context.Context, email, passwordHash, name string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// FindOrCreateTelegramUser returns the user behind a Telegram id, creating it on first contact.
	FindOrCreateTelegramUser(ctx context.Context, identity TelegramIdentity) (*User, error)
	// LinkTelegramToWebUser attaches a Telegram account to an existing web user.
	LinkTelegramToWebUser(ctx context.Context, userID string, identity TelegramIdentity) error

	// AddHistory stores a session once. Re-adding the user's own session id is a
	// no-op; an id owned by someone else returns ErrHistoryIDTaken.
	AddHistory(ctx context.Context, userID string, session *HistorySession) error
	GetUserHistory(ctx context.Context, userID string, limit int) ([]HistorySession, error)
	GetGlobalHistory(ctx context.Context, limit int) ([]HistoryEntry, error)
	DeleteHistory(ctx context.Context, userID, id string) error
	ClearHistory(ctx context.Context, userID string) (int64, error)
	SetHistoryFeedback(ctx context.Context, userID, id string, feedback model.Feedback) error
	// TrimUserHistory keeps only the newest keep sessions of one user.
	TrimUserHistory(ctx context.Context, userID string, keep int) (int64, error)
	// PruneHistory keeps only the newest keep sessions of every user.
	PruneHistory(ctx context.Context, keep int) (int64, error)

	// SaveVideo saves a suggestion, or moves an existing save to another list.
	// The boolean reports whether a new row was created.
	SaveVideo(ctx context.Context, userID string, suggestion model.Suggestion, list model.SaveList, notes string) (*SavedItem, bool, error)
	GetUserSaves(ctx context.Context, userID string, list model.SaveList) ([]SavedItem, error)
	GetSavedItem(ctx context.Context, userID, videoID string) (*SavedItem, error)
	RemoveSave(ctx context.Context, userID, videoID string) error
	CountSavesByList(ctx context.Context, userID string) (map[model.SaveList]int, error)

	// LikeVideo is idempotent; the boolean reports whether a new like was recorded.
	LikeVideo(ctx context.Context, userID, videoID string, suggestion *model.Suggestion) (bool, error)
	UnlikeVideo(ctx context.Context, userID, videoID string) error
	GetUserLikes(ctx context.Context, userID string, limit int) ([]Like, error)
	IsVideoLiked(ctx context.Context, userID, videoID string) (bool, error)

	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, userID string, update model.ProfileUpdate) error
	ResetProfile(ctx context.Context, userID string) error

	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
	UpdateStreak(ctx context.Context, userID string, now time.Time) (streak, longest int, err error)

	GetTelegramAccount(ctx context.Context, telegramID string) (*TelegramAccount, error)
	UpdateTelegramMood(ctx context.Context, telegramID string, mood model.Mood) error
	SetPendingProfileSetup(ctx context.Context, telegramID string, pending bool) error
	GetNotificationSettings(ctx context.Context, telegramID string) (*NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, telegramID string, update model.NotificationUpdate) (*NotificationSettings, error)
	ListDigestRecipients(ctx context.Context) ([]DigestRecipient, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM/ANALYZE.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, committing on success.
func (s *sqlxStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// getOne wraps GetContext, translating sql.ErrNoRows into ErrNotFound.
func getOne(ctx context.Context, q sqlx.QueryerContext, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// execAffecting runs an exec and returns ErrNotFound when no row changed.
func execAffecting(ctx context.Context, e sqlx.ExecerContext, query string, args ...any) error {
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

// RunSQLMaintenance reclaims space and refreshes planner statistics.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	var stmts []string
	switch s.db.DriverName() {
	case DriverSQLite:
		stmts = []string{"PRAGMA optimize", "VACUUM", "ANALYZE"}
	default:
		stmts = []string{"VACUUM ANALYZE"}
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.ErrorContext(ctx, "SQL maintenance statement failed", "statement", stmt, "error", err)
			return fmt.Errorf("failed to run %q: %w", stmt, err)
		}
	}
	s.logger.InfoContext(ctx, "SQL maintenance completed", "statements", len(stmts))
	return nil
}
