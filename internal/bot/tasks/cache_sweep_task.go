package tasks

import (
	"context"
	"fmt"
)

// newCacheSweepTask drops expired entries from the in-memory cache. Redis
// expires keys itself and reports nothing.
func newCacheSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "cache_sweep")

	return func(ctx context.Context) error {
		if deps.Cache == nil {
			return nil
		}
		n, err := deps.Cache.Sweep(ctx)
		if err != nil {
			return fmt.Errorf("cache sweep failed: %w", err)
		}
		if n > 0 {
			log.DebugContext(ctx, "Swept expired cache entries", "count", n)
		}
		return nil
	}
}
