package database

import (
	"context"
	"fmt"

	"github.com/edgard/maintain/internal/model"
)

const accountColumns = `id, user_id, telegram_id, username, first_name, last_name, language_code, current_mood, pending_profile_setup, last_active, created_at`

// GetTelegramAccount returns ErrNotFound for unknown chat users.
func (s *sqlxStore) GetTelegramAccount(ctx context.Context, telegramID string) (*TelegramAccount, error) {
	var a TelegramAccount
	if err := getOne(ctx, s.db, &a, s.q(`SELECT `+accountColumns+` FROM telegram_accounts WHERE telegram_id = ?`), telegramID); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateTelegramMood sets the current mood; an empty mood clears it.
func (s *sqlxStore) UpdateTelegramMood(ctx context.Context, telegramID string, mood model.Mood) error {
	return execAffecting(ctx, s.db, s.q(`UPDATE telegram_accounts SET current_mood = ? WHERE telegram_id = ?`),
		nullString(string(mood)), telegramID)
}

// SetPendingProfileSetup flags whether the next free-text message is a profile answer.
func (s *sqlxStore) SetPendingProfileSetup(ctx context.Context, telegramID string, pending bool) error {
	return execAffecting(ctx, s.db, s.q(`UPDATE telegram_accounts SET pending_profile_setup = ? WHERE telegram_id = ?`),
		pending, telegramID)
}

// GetNotificationSettings returns ErrNotFound when the account has no settings row.
func (s *sqlxStore) GetNotificationSettings(ctx context.Context, telegramID string) (*NotificationSettings, error) {
	var n NotificationSettings
	if err := getOne(ctx, s.db, &n, s.q(`
		SELECT n.id, n.telegram_account_id, n.daily_digest, n.daily_digest_time, n.trending_alerts, n.reminders, n.timezone
		FROM notification_settings n
		JOIN telegram_accounts a ON a.id = n.telegram_account_id
		WHERE a.telegram_id = ?`), telegramID); err != nil {
		return nil, err
	}
	return &n, nil
}

// UpdateNotificationSettings applies a partial update, creating defaults first when needed.
func (s *sqlxStore) UpdateNotificationSettings(ctx context.Context, telegramID string, update model.NotificationUpdate) (*NotificationSettings, error) {
	account, err := s.GetTelegramAccount(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO notification_settings (id, telegram_account_id) VALUES (?, ?)
		ON CONFLICT (telegram_account_id) DO NOTHING`), newID(), account.ID); err != nil {
		return nil, fmt.Errorf("failed to ensure notification settings: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, s.q(`
		UPDATE notification_settings SET
			daily_digest = COALESCE(?, daily_digest),
			daily_digest_time = COALESCE(?, daily_digest_time),
			trending_alerts = COALESCE(?, trending_alerts),
			reminders = COALESCE(?, reminders),
			timezone = COALESCE(?, timezone)
		WHERE telegram_account_id = ?`),
		update.DailyDigest, update.DailyDigestTime, update.TrendingAlerts, update.Reminders, update.Timezone,
		account.ID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update notification settings", "telegram_id", telegramID, "error", err)
		return nil, fmt.Errorf("failed to update notification settings: %w", err)
	}
	return s.GetNotificationSettings(ctx, telegramID)
}

// ListDigestRecipients returns Telegram users with the daily digest enabled.
func (s *sqlxStore) ListDigestRecipients(ctx context.Context) ([]DigestRecipient, error) {
	var out []DigestRecipient
	err := s.db.SelectContext(ctx, &out, s.q(`
		SELECT a.user_id, a.telegram_id, a.current_mood, COALESCE(st.favorite_categories, '{}') AS favorite_categories
		FROM telegram_accounts a
		JOIN notification_settings n ON n.telegram_account_id = a.id
		LEFT JOIN user_stats st ON st.user_id = a.user_id
		WHERE n.daily_digest = ?
		ORDER BY a.created_at`), true)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list digest recipients", "error", err)
		return nil, fmt.Errorf("failed to list digest recipients: %w", err)
	}
	return out, nil
}
