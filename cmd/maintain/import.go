package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edgard/maintain/internal/importer"
)

var importOpts importer.Options

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import legacy JSON data files",
	Long: `Import store.json (the web user's likes, saves, history and profile)
and bot-profiles.json (Telegram users) from the data directory.
Records that already exist are skipped, so the import can be rerun.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importOpts.DataDir, "data-dir", ".data", "Directory holding the JSON files")
	importCmd.Flags().StringVar(&importOpts.Email, "email", importer.DefaultEmail, "Email of the web user that receives store.json")
	importCmd.Flags().StringVar(&importOpts.Password, "password", "", "Password for a newly created web user (random when empty)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.openStore(); err != nil {
		return err
	}

	report, err := importer.New(a.store, a.log).Run(cmd.Context(), importOpts)
	if report != nil {
		out := cmd.OutOrStdout()
		for _, part := range []struct {
			name string
			c    importer.Counts
		}{{"web", report.Web}, {"bot", report.Bot}} {
			fmt.Fprintf(out, "%s: users=%d history=%d saves=%d likes=%d profiles=%d skipped=%d\n",
				part.name, part.c.Users, part.c.History, part.c.Saves, part.c.Likes, part.c.Profiles, part.c.Skipped)
		}
		if report.GeneratedPassword != "" {
			fmt.Fprintf(out, "created %s with password %s, change it after signing in\n", importOpts.Email, report.GeneratedPassword)
		}
	}
	return err
}
