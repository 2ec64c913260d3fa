package tasks

import (
	"context"

	"github.com/edgard/maintain/internal/config"
)

// ScheduledTaskFunc defines the standard signature for all scheduled tasks.
// The context provided by the scheduler should be respected for cancellation.
type ScheduledTaskFunc func(ctx context.Context) error

// RegisterAllTasks initializes and returns a map of all registered scheduled
// tasks. The keys match the task names in the scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	tasks := map[string]ScheduledTaskFunc{
		config.TaskHistoryPrune:   newHistoryPruneTask(deps),
		config.TaskCacheSweep:     newCacheSweepTask(deps),
		config.TaskSQLMaintenance: newSQLMaintenanceTask(deps),
	}
	if deps.Sender != nil {
		tasks[config.TaskDailyDigest] = newDailyDigestTask(deps)
	}

	deps.Logger.Info("Initialized scheduled tasks", "count", len(tasks))
	return tasks
}
