package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/maintain/internal/config"
	"github.com/edgard/maintain/internal/database"
)

// newSQLMaintenanceTask compacts the database and refreshes planner
// statistics: VACUUM ANALYZE on Postgres, PRAGMA optimize + VACUUM + ANALYZE
// on SQLite.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	driver := database.DriverSQLite
	if deps.Config != nil && deps.Config.Database.Driver != "" {
		driver = deps.Config.Database.Driver
	}
	log := deps.Logger.With("task", config.TaskSQLMaintenance, "driver", driver)

	return func(ctx context.Context) error {
		start := time.Now()
		if err := deps.Store.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Database maintenance failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("%s maintenance: %w", driver, err)
		}
		log.InfoContext(ctx, "Database compacted and statistics refreshed", "duration", time.Since(start))
		return nil
	}
}
