package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tempoit/internal/config"
	"github.com/Tiliavir/tempoit/internal/journal"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent upload attempts from the local journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fail(2, err)
		}
		j, err := openJournal(cfg)
		if err != nil {
			return fail(2, err)
		}
		defer j.Close()

		entries, err := j.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return fail(2, err)
		}
		printHistory(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show (0 for all)")
}

func printHistory(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, ":: No uploads recorded yet.")
		return
	}
	for _, e := range entries {
		outcome := successStyle.Render(e.Outcome)
		if e.Outcome != journal.OutcomeSuccess {
			outcome = failStyle.Render(e.Outcome)
		}
		fmt.Fprintf(w, "%s  %-5s %s %-7s [%s] '%s' %s\n",
			e.RecordedAt.Local().Format("2006-01-02 15:04"),
			e.IntervalID, e.Date, e.TimeSpent, e.Issue, e.Description, outcome)
		if e.Detail != "" {
			fmt.Fprintf(w, "   %s\n", e.Detail)
		}
	}
}
