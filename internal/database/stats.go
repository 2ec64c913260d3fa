package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const statsColumns = `id, user_id, total_queries, total_likes, total_saves, total_videos_watched, streak, longest_streak, last_active_date, favorite_categories, created_at`

// GetUserStats returns ErrNotFound when the user has no stats row.
func (s *sqlxStore) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	var st UserStats
	if err := getOne(ctx, s.db, &st, s.q(`SELECT `+statsColumns+` FROM user_stats WHERE user_id = ?`), userID); err != nil {
		return nil, err
	}
	return &st, nil
}

// UpdateStreak marks the user active at now and returns the new streak values.
func (s *sqlxStore) UpdateStreak(ctx context.Context, userID string, now time.Time) (int, int, error) {
	var streak, longest int
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var st UserStats
		if err := getOne(ctx, tx, &st, s.q(`SELECT `+statsColumns+` FROM user_stats WHERE user_id = ?`), userID); err != nil {
			return err
		}
		streak, longest = nextStreak(st.Streak, st.LongestStreak, st.LastActiveDate, now)
		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE user_stats SET streak = ?, longest_streak = ?, last_active_date = ? WHERE user_id = ?`),
			streak, longest, now.UTC(), userID); err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return streak, longest, nil
}
