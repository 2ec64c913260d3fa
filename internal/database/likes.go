package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/maintain/internal/model"
)

// LikeVideo records a like. Liking twice is a no-op and doesn't touch the counter.
func (s *sqlxStore) LikeVideo(ctx context.Context, userID, videoID string, suggestion *model.Suggestion) (bool, error) {
	if videoID == "" {
		return false, errors.New("video id is required")
	}

	created := false
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO likes (id, user_id, video_id, suggestion, liked_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (user_id, video_id) DO NOTHING`),
			newID(), userID, videoID, NewJSON(suggestion), s.now())
		if err != nil {
			return fmt.Errorf("failed to insert like: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, s.q(`UPDATE user_stats SET total_likes = total_likes + 1 WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("failed to update stats: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to like video", "user_id", userID, "video_id", videoID, "error", err)
		return false, err
	}
	return created, nil
}

// UnlikeVideo removes a like; ErrNotFound when it didn't exist.
func (s *sqlxStore) UnlikeVideo(ctx context.Context, userID, videoID string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := execAffecting(ctx, tx, s.q(`DELETE FROM likes WHERE user_id = ? AND video_id = ?`), userID, videoID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE user_stats SET total_likes = CASE WHEN total_likes > 0 THEN total_likes - 1 ELSE 0 END
			WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("failed to update stats: %w", err)
		}
		return nil
	})
}

// GetUserLikes returns likes newest first; limit <= 0 means all.
func (s *sqlxStore) GetUserLikes(ctx context.Context, userID string, limit int) ([]Like, error) {
	query := `SELECT id, user_id, video_id, suggestion, liked_at FROM likes WHERE user_id = ? ORDER BY liked_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var out []Like
	if err := s.db.SelectContext(ctx, &out, s.q(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to get likes", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get likes: %w", err)
	}
	return out, nil
}

// IsVideoLiked reports whether the user liked the video.
func (s *sqlxStore) IsVideoLiked(ctx context.Context, userID, videoID string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.q(`SELECT COUNT(*) FROM likes WHERE user_id = ? AND video_id = ?`), userID, videoID); err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return n > 0, nil
}
