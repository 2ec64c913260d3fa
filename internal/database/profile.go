package database

import (
	"context"
	"fmt"

	"github.com/edgard/maintain/internal/model"
)

// GetProfile returns ErrNotFound when the user has no profile row.
func (s *sqlxStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	if err := getOne(ctx, s.db, &p, s.q(`
		SELECT id, user_id, hobbies, interests, languages, work_context, youtubers, updated_at
		FROM profiles WHERE user_id = ?`), userID); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile applies a partial update, creating the profile when missing.
func (s *sqlxStore) UpsertProfile(ctx context.Context, userID string, update model.ProfileUpdate) error {
	now := s.now()

	if _, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO profiles (id, user_id, hobbies, interests, languages, youtubers, updated_at)
		VALUES (?, ?, '[]', '[]', '[]', '[]', ?)
		ON CONFLICT (user_id) DO NOTHING`), newID(), userID, now); err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}

	var workContext any
	if update.WorkContext != nil {
		workContext = *update.WorkContext
	}
	_, err := s.db.ExecContext(ctx, s.q(`
		UPDATE profiles SET
			hobbies = COALESCE(?, hobbies),
			interests = COALESCE(?, interests),
			languages = COALESCE(?, languages),
			work_context = CASE WHEN ? THEN ? ELSE work_context END,
			youtubers = COALESCE(?, youtubers),
			updated_at = ?
		WHERE user_id = ?`),
		jsonOrNil(update.Hobbies), jsonOrNil(update.Interests), jsonOrNil(update.Languages),
		update.WorkContext != nil, workContext,
		jsonOrNil(update.Youtubers), now, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update profile", "user_id", userID, "error", err)
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// ResetProfile clears every preference of the user, and the bot mood and
// pending setup flag when a Telegram account exists.
func (s *sqlxStore) ResetProfile(ctx context.Context, userID string) error {
	empty := ""
	if err := s.UpsertProfile(ctx, userID, model.ProfileUpdate{
		Hobbies:     []string{},
		Interests:   []string{},
		Languages:   []string{},
		WorkContext: &empty,
		Youtubers:   []model.Youtuber{},
	}); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.q(`
		UPDATE telegram_accounts SET current_mood = NULL, pending_profile_setup = ? WHERE user_id = ?`), false, userID); err != nil {
		return fmt.Errorf("failed to reset telegram state: %w", err)
	}
	return nil
}

// jsonOrNil encodes a slice for a COALESCE update; nil slices become NULL.
func jsonOrNil[T any](v []T) any {
	if v == nil {
		return nil
	}
	return NewJSON(v)
}
