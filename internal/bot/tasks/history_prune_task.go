package tasks

import (
	"context"
	"fmt"
	"time"
)

// HistoryKeep is the number of sessions kept per user.
const HistoryKeep = 50

// newHistoryPruneTask trims every user's history to the newest HistoryKeep
// sessions. Web clients trim on write; bot sessions are trimmed here.
func newHistoryPruneTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "history_prune")

	return func(ctx context.Context) error {
		startTime := time.Now()
		removed, err := deps.Store.PruneHistory(ctx, HistoryKeep)
		if err != nil {
			log.ErrorContext(ctx, "History prune failed", "error", err)
			return fmt.Errorf("history prune failed: %w", err)
		}
		log.InfoContext(ctx, "History pruned", "removed", removed, "keep", HistoryKeep, "duration", time.Since(startTime))
		return nil
	}
}
