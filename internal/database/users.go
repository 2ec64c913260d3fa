package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, password, name, telegram_id, telegram_username, created_at, updated_at`

// q rebinds ? placeholders for the active driver.
func (s *sqlxStore) q(query string) string {
	return s.db.Rebind(query)
}

// CreateUser creates an email user together with an empty profile and zeroed stats.
func (s *sqlxStore) CreateUser(ctx context.Context, email, passwordHash, name string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	now := s.now()
	user := &User{
		ID:        newID(),
		Email:     nullString(email),
		Password:  nullString(passwordHash),
		Name:      nullString(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var exists int
		if err := tx.GetContext(ctx, &exists, s.q(`SELECT COUNT(*) FROM users WHERE email = ?`), email); err != nil {
			return fmt.Errorf("failed to check existing user: %w", err)
		}
		if exists > 0 {
			return ErrUserExists
		}

		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO users (id, email, password, name, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			user.ID, user.Email, user.Password, user.Name, user.CreatedAt, user.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert user: %w", err)
		}
		return s.createUserDependents(ctx, tx, user.ID, now)
	})
	if err != nil {
		if !errors.Is(err, ErrUserExists) {
			s.logger.ErrorContext(ctx, "Failed to create user", "error", err)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "Created web user", "user_id", user.ID)
	return user, nil
}

// createUserDependents inserts the empty profile and stats rows every user owns.
func (s *sqlxStore) createUserDependents(ctx context.Context, tx *sqlx.Tx, userID string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO profiles (id, user_id, hobbies, interests, languages, youtubers, updated_at)
		VALUES (?, ?, '[]', '[]', '[]', '[]', ?)`), newID(), userID, now); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO user_stats (id, user_id, last_active_date, favorite_categories, created_at)
		VALUES (?, ?, ?, '{}', ?)`), newID(), userID, now, now); err != nil {
		return fmt.Errorf("failed to create stats: %w", err)
	}
	return nil
}

// GetUserByID returns ErrNotFound when no user has the id.
func (s *sqlxStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	var u User
	if err := getOne(ctx, s.db, &u, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail returns ErrNotFound when no user has the email.
func (s *sqlxStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := getOne(ctx, s.db, &u, s.q(`SELECT `+userColumns+` FROM users WHERE email = ?`), email); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindOrCreateTelegramUser touches last_active for known Telegram users and
// creates user, profile, stats, account and notification rows for new ones.
func (s *sqlxStore) FindOrCreateTelegramUser(ctx context.Context, identity TelegramIdentity) (*User, error) {
	if identity.TelegramID == "" {
		return nil, errors.New("telegram id is required")
	}
	now := s.now()

	var user User
	err := getOne(ctx, s.db, &user, s.q(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`), identity.TelegramID)
	if err == nil {
		if _, err := s.db.ExecContext(ctx, s.q(`
			UPDATE telegram_accounts SET last_active = ?, username = ?, first_name = ?, last_name = ?, language_code = ?
			WHERE telegram_id = ?`),
			now, nullString(identity.Username), nullString(identity.FirstName), nullString(identity.LastName),
			nullString(identity.LanguageCode), identity.TelegramID); err != nil {
			s.logger.WarnContext(ctx, "Failed to update telegram last_active", "telegram_id", identity.TelegramID, "error", err)
		}
		return &user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.ErrorContext(ctx, "Failed to look up telegram user", "telegram_id", identity.TelegramID, "error", err)
		return nil, fmt.Errorf("failed to look up telegram user: %w", err)
	}

	user = User{
		ID:               newID(),
		Name:             nullString(identity.FirstName),
		TelegramID:       nullString(identity.TelegramID),
		TelegramUsername: nullString(identity.Username),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO users (id, name, telegram_id, telegram_username, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`),
			user.ID, user.Name, user.TelegramID, user.TelegramUsername, now, now); err != nil {
			return fmt.Errorf("failed to insert telegram user: %w", err)
		}
		if err := s.createUserDependents(ctx, tx, user.ID, now); err != nil {
			return err
		}
		return s.createTelegramAccount(ctx, tx, user.ID, identity, now)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create telegram user", "telegram_id", identity.TelegramID, "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Created telegram user", "user_id", user.ID, "telegram_id", identity.TelegramID)
	return &user, nil
}

func (s *sqlxStore) createTelegramAccount(ctx context.Context, tx *sqlx.Tx, userID string, identity TelegramIdentity, now time.Time) error {
	accountID := newID()
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO telegram_accounts (id, user_id, telegram_id, username, first_name, last_name, language_code, last_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		accountID, userID, identity.TelegramID, nullString(identity.Username), nullString(identity.FirstName),
		nullString(identity.LastName), nullString(identity.LanguageCode), now, now); err != nil {
		return fmt.Errorf("failed to create telegram account: %w", err)
	}
	if _, err := tx.ExecContext(ctx, s.q(`
		INSERT INTO notification_settings (id, telegram_account_id) VALUES (?, ?)`),
		newID(), accountID); err != nil {
		return fmt.Errorf("failed to create notification settings: %w", err)
	}
	return nil
}

// LinkTelegramToWebUser attaches a Telegram identity to a web user. When the
// Telegram id already belongs to a bot-only user, that user's likes, saves and
// history move to the web user and the bot-only user is removed.
func (s *sqlxStore) LinkTelegramToWebUser(ctx context.Context, userID string, identity TelegramIdentity) error {
	if identity.TelegramID == "" {
		return errors.New("telegram id is required")
	}
	now := s.now()

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var web User
		if err := getOne(ctx, tx, &web, s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), userID); err != nil {
			return err
		}
		if web.TelegramID.Valid {
			if web.TelegramID.String == identity.TelegramID {
				return nil
			}
			return ErrUserAlreadyLinked
		}

		var existing User
		err := getOne(ctx, tx, &existing, s.q(`SELECT `+userColumns+` FROM users WHERE telegram_id = ?`), identity.TelegramID)
		switch {
		case errors.Is(err, ErrNotFound):
			if err := s.createTelegramAccount(ctx, tx, userID, identity, now); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to look up telegram user: %w", err)
		case existing.Email.Valid:
			return ErrTelegramAlreadyLinked
		default:
			if err := s.mergeBotUser(ctx, tx, existing.ID, userID); err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE users SET telegram_id = ?, telegram_username = ?, updated_at = ? WHERE id = ?`),
			identity.TelegramID, nullString(identity.Username), now, userID); err != nil {
			return fmt.Errorf("failed to link telegram id: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to link telegram account", "user_id", userID, "telegram_id", identity.TelegramID, "error", err)
		return err
	}

	s.logger.InfoContext(ctx, "Linked telegram account", "user_id", userID, "telegram_id", identity.TelegramID)
	return nil
}

// mergeBotUser moves a bot-only user's data to target and deletes the bot-only user.
func (s *sqlxStore) mergeBotUser(ctx context.Context, tx *sqlx.Tx, fromID, toID string) error {
	var queries int
	if err := tx.GetContext(ctx, &queries, s.q(`SELECT total_queries FROM user_stats WHERE user_id = ?`), fromID); err != nil {
		return fmt.Errorf("failed to read bot user stats: %w", err)
	}

	stmts := []struct {
		query string
		args  []any
	}{
		{`UPDATE likes SET user_id = ? WHERE user_id = ? AND video_id NOT IN (SELECT video_id FROM likes WHERE user_id = ?)`, []any{toID, fromID, toID}},
		{`UPDATE saved_items SET user_id = ? WHERE user_id = ? AND video_id NOT IN (SELECT video_id FROM saved_items WHERE user_id = ?)`, []any{toID, fromID, toID}},
		{`UPDATE history_sessions SET user_id = ? WHERE user_id = ?`, []any{toID, fromID}},
		{`UPDATE telegram_accounts SET user_id = ? WHERE user_id = ?`, []any{toID, fromID}},
		{`DELETE FROM likes WHERE user_id = ?`, []any{fromID}},
		{`DELETE FROM saved_items WHERE user_id = ?`, []any{fromID}},
		{`DELETE FROM profiles WHERE user_id = ?`, []any{fromID}},
		{`DELETE FROM user_stats WHERE user_id = ?`, []any{fromID}},
		{`DELETE FROM users WHERE id = ?`, []any{fromID}},
		{`UPDATE user_stats SET
			total_likes = (SELECT COUNT(*) FROM likes WHERE user_id = ?),
			total_saves = (SELECT COUNT(*) FROM saved_items WHERE user_id = ?),
			total_queries = total_queries + ?
		  WHERE user_id = ?`, []any{toID, toID, queries, toID}},
	}
	for _, st := range stmts {
		if _, err := tx.ExecContext(ctx, s.q(st.query), st.args...); err != nil {
			return fmt.Errorf("failed to merge bot user: %w", err)
		}
	}
	return nil
}
