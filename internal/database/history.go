package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/maintain/internal/model"
)

const historyColumns = `id, user_id, message, mood, suggestions, feedback, timestamp`

// metaTags are bookkeeping tags that say nothing about a user's taste.
var metaTags = map[string]bool{
	model.TagSaved:    true,
	model.TagFallback: true,
	model.TagError:    true,
}

// AddHistory records a recommendation session. A missing id or timestamp is
// generated. The user's query counter, streak and favourite categories are
// updated in the same transaction.
func (s *sqlxStore) AddHistory(ctx context.Context, userID string, session *HistorySession) error {
	if session == nil {
		return fmt.Errorf("cannot save nil history session")
	}
	now := s.now()
	if session.ID == "" {
		session.ID = newID()
	}
	if session.Timestamp.IsZero() {
		session.Timestamp = now
	}
	session.UserID = userID
	if session.Suggestions.V == nil {
		session.Suggestions.V = []model.Suggestion{}
	}

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			INSERT INTO history_sessions (id, user_id, message, mood, suggestions, feedback, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO NOTHING`),
			session.ID, userID, session.Message, session.Mood, session.Suggestions, session.Feedback, session.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to insert history session: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var owner string
			if err := getOne(ctx, tx, &owner, s.q(`SELECT user_id FROM history_sessions WHERE id = ?`), session.ID); err != nil {
				return fmt.Errorf("failed to load history session owner: %w", err)
			}
			if owner != userID {
				return ErrHistoryIDTaken
			}
			return nil
		}

		var stats UserStats
		if err := getOne(ctx, tx, &stats, s.q(`SELECT `+statsColumns+` FROM user_stats WHERE user_id = ?`), userID); err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		streak, longest := nextStreak(stats.Streak, stats.LongestStreak, stats.LastActiveDate, now)
		cats := stats.FavoriteCategories.V
		if cats == nil {
			cats = map[string]int{}
		}
		for _, sug := range session.Suggestions.V {
			for _, tag := range sug.Tags {
				if tag != "" && !metaTags[tag] {
					cats[tag]++
				}
			}
		}

		if _, err := tx.ExecContext(ctx, s.q(`
			UPDATE user_stats
			SET total_queries = total_queries + 1, streak = ?, longest_streak = ?, last_active_date = ?, favorite_categories = ?
			WHERE user_id = ?`),
			streak, longest, now, NewJSON(cats), userID); err != nil {
			return fmt.Errorf("failed to update stats: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to add history", "user_id", userID, "error", err)
		return err
	}
	return nil
}

// GetUserHistory returns the newest sessions first.
func (s *sqlxStore) GetUserHistory(ctx context.Context, userID string, limit int) ([]HistorySession, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []HistorySession
	err := s.db.SelectContext(ctx, &out, s.q(`
		SELECT `+historyColumns+` FROM history_sessions
		WHERE user_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`), userID, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get user history", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return out, nil
}

// GetGlobalHistory returns the newest sessions across all users with author names.
func (s *sqlxStore) GetGlobalHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	var out []HistoryEntry
	err := s.db.SelectContext(ctx, &out, s.q(`
		SELECT h.id, h.user_id, h.message, h.mood, h.suggestions, h.feedback, h.timestamp,
		       u.name AS author_name, u.telegram_username AS author_username
		FROM history_sessions h
		JOIN users u ON u.id = h.user_id
		ORDER BY h.timestamp DESC, h.id DESC
		LIMIT ?`), limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get global history", "error", err)
		return nil, fmt.Errorf("failed to get global history: %w", err)
	}
	return out, nil
}

// DeleteHistory removes one session; ErrNotFound when it doesn't belong to the user.
func (s *sqlxStore) DeleteHistory(ctx context.Context, userID, id string) error {
	return execAffecting(ctx, s.db, s.q(`DELETE FROM history_sessions WHERE user_id = ? AND id = ?`), userID, id)
}

// ClearHistory removes every session of the user.
func (s *sqlxStore) ClearHistory(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM history_sessions WHERE user_id = ?`), userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

// SetHistoryFeedback stores the user's verdict on a session.
func (s *sqlxStore) SetHistoryFeedback(ctx context.Context, userID, id string, feedback model.Feedback) error {
	if !feedback.Valid() {
		return fmt.Errorf("invalid feedback %q", feedback)
	}
	return execAffecting(ctx, s.db, s.q(`UPDATE history_sessions SET feedback = ? WHERE user_id = ? AND id = ?`),
		string(feedback), userID, id)
}

// TrimUserHistory keeps only the newest keep sessions of one user.
func (s *sqlxStore) TrimUserHistory(ctx context.Context, userID string, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM history_sessions
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM history_sessions WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?
		)`), userID, userID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to trim history: %w", err)
	}
	return res.RowsAffected()
}

// PruneHistory keeps only the newest keep sessions of every user.
func (s *sqlxStore) PruneHistory(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.q(`
		DELETE FROM history_sessions WHERE id IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY user_id ORDER BY timestamp DESC, id DESC) AS rn
				FROM history_sessions
			) ranked
			WHERE rn > ?
		)`), keep)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to prune history", "keep", keep, "error", err)
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

// nextStreak applies the streak rules: one elapsed day extends the streak,
// more than one resets it to 1, same day leaves it alone (but starts it at 1).
func nextStreak(streak, longest int, lastActive, now time.Time) (int, int) {
	days := int(now.Sub(lastActive) / (24 * time.Hour))
	switch {
	case days == 1:
		streak++
	case days > 1:
		streak = 1
	case streak == 0:
		streak = 1
	}
	if streak > longest {
		longest = streak
	}
	return streak, longest
}
