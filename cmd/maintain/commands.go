package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/maintain/internal/bot/handlers"
	"github.com/edgard/maintain/internal/telegram"
)

var commandsCmd = &cobra.Command{
	Use:       "commands [set|clear|show]",
	Short:     "Manage the bot's command menu",
	Long:      `Publish (set, the default), remove (clear) or print (show) the command menu Telegram clients display.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"set", "clear", "show"},
	RunE:      runCommands,
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}

func runCommands(cmd *cobra.Command, args []string) error {
	action := "set"
	if len(args) > 0 {
		action = args[0]
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	tg, err := a.newTelegramClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch action {
	case "set":
		// Handlers are only inspected for their descriptions; no services are needed.
		cmds := handlers.BotCommands(handlers.RegisterAllCommands(a.handlerDeps()))
		if err := telegram.SetCommands(ctx, tg, cmds); err != nil {
			return err
		}
		fmt.Fprintf(out, "published %d commands\n", len(cmds))
	case "clear":
		if err := telegram.DeleteCommands(ctx, tg); err != nil {
			return err
		}
		fmt.Fprintln(out, "command menu cleared")
	case "show":
		cmds, err := telegram.GetCommands(ctx, tg)
		if err != nil {
			return err
		}
		if len(cmds) == 0 {
			fmt.Fprintln(out, "no commands set")
		}
		for _, c := range cmds {
			fmt.Fprintf(out, "/%s - %s\n", c.Command, c.Description)
		}
	default:
		return fmt.Errorf("unknown commands action %q", action)
	}
	return nil
}
