package main

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/edgard/maintain/internal/bot/tasks"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect and run scheduled tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled tasks and their schedules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, name := range slices.Sorted(maps.Keys(a.cfg.Scheduler.Tasks)) {
			tc := a.cfg.Scheduler.Tasks[name]
			state := "disabled"
			if tc.Enabled {
				state = "enabled"
			}
			fmt.Fprintf(out, "%-16s %-8s %s\n", name, state, tc.Schedule)
		}
		return nil
	},
}

var taskRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a scheduled task once",
	Long:  `Run one scheduled task immediately, outside its schedule. The daily digest needs a Telegram token.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTask,
}

func init() {
	taskCmd.AddCommand(taskListCmd, taskRunCmd)
	rootCmd.AddCommand(taskCmd)
}

func runTask(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.openServices(ctx); err != nil {
		return err
	}

	var sender tasks.MessageSender
	if a.cfg.RequireTelegram() == nil {
		tg, err := a.newTelegramClient()
		if err != nil {
			return err
		}
		sender = tg
	}

	sched, err := a.newScheduler(sender)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(args[0])
	if err := sched.RunNow(ctx, name); err != nil {
		return fmt.Errorf("task %s: %w", name, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "task %s completed\n", name)
	return nil
}
