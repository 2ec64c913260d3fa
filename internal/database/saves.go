package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/maintain/internal/model"
)

const savedColumns = `id, user_id, video_id, suggestion, list, notes, added_at`

// SaveVideo saves a suggestion into a list. An existing save of the same video
// is moved to the new list instead, leaving the counters untouched.
func (s *sqlxStore) SaveVideo(ctx context.Context, userID string, suggestion model.Suggestion, list model.SaveList, notes string) (*SavedItem, bool, error) {
	if suggestion.ID == "" {
		return nil, false, errors.New("suggestion id is required")
	}
	if !list.Valid() {
		return nil, false, fmt.Errorf("invalid save list %q", list)
	}

	var item SavedItem
	created := false
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := getOne(ctx, tx, &item, s.q(`SELECT `+savedColumns+` FROM saved_items WHERE user_id = ? AND video_id = ?`), userID, suggestion.ID)
		switch {
		case err == nil:
			item.List = string(list)
			item.Notes = nullString(notes)
			if _, err := tx.ExecContext(ctx, s.q(`UPDATE saved_items SET list = ?, notes = ? WHERE id = ?`),
				item.List, item.Notes, item.ID); err != nil {
				return fmt.Errorf("failed to update saved item: %w", err)
			}
			return nil
		case !errors.Is(err, ErrNotFound):
			return fmt.Errorf("failed to look up saved item: %w", err)
		}

		item = SavedItem{
			ID:         newID(),
			UserID:     userID,
			VideoID:    suggestion.ID,
			Suggestion: NewJSON(suggestion),
			List:       string(list),
			Notes:      nullString(notes),
			AddedAt:    s.now(),
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO saved_items (id, user_id, video_id, suggestion, list, notes, added_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`),
			item.ID, item.UserID, item.VideoID, item.Suggestion, item.List, item.Notes, item.AddedAt); err != nil {
			return fmt.Errorf("failed to insert saved item: %w", err)
		}
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE user_stats SET total_saves = total_saves + 1 WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("failed to update stats: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save video", "user_id", userID, "video_id", suggestion.ID, "error", err)
		return nil, false, err
	}
	return &item, created, nil
}

// GetUserSaves returns saves newest first, optionally filtered by list.
func (s *sqlxStore) GetUserSaves(ctx context.Context, userID string, list model.SaveList) ([]SavedItem, error) {
	query := `SELECT ` + savedColumns + ` FROM saved_items WHERE user_id = ?`
	args := []any{userID}
	if list != "" {
		query += ` AND list = ?`
		args = append(args, string(list))
	}
	query += ` ORDER BY added_at DESC, id DESC`

	var out []SavedItem
	if err := s.db.SelectContext(ctx, &out, s.q(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get saves", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get saves: %w", err)
	}
	return out, nil
}

// GetSavedItem returns ErrNotFound when the video isn't saved.
func (s *sqlxStore) GetSavedItem(ctx context.Context, userID, videoID string) (*SavedItem, error) {
	var item SavedItem
	if err := getOne(ctx, s.db, &item, s.q(`SELECT `+savedColumns+` FROM saved_items WHERE user_id = ? AND video_id = ?`), userID, videoID); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveSave deletes a save and decrements the counter.
func (s *sqlxStore) RemoveSave(ctx context.Context, userID, videoID string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := execAffecting(ctx, tx, s.q(`DELETE FROM saved_items WHERE user_id = ? AND video_id = ?`), userID, videoID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE user_stats SET total_saves = CASE WHEN total_saves > 0 THEN total_saves - 1 ELSE 0 END
			WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("failed to update stats: %w", err)
		}
		return nil
	})
}

// CountSavesByList returns the number of saves per list.
func (s *sqlxStore) CountSavesByList(ctx context.Context, userID string) (map[model.SaveList]int, error) {
	var rows []struct {
		List  string `db:"list"`
		Count int    `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.q(`
		SELECT list, COUNT(*) AS n FROM saved_items WHERE user_id = ? GROUP BY list`), userID); err != nil {
		return nil, fmt.Errorf("failed to count saves: %w", err)
	}
	out := make(map[model.SaveList]int, len(rows))
	for _, r := range rows {
		out[model.SaveList(r.List)] = r.Count
	}
	return out, nil
}
