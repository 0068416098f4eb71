package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the worklogs the next upload would file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s, err := openSession()
		if err != nil {
			return fail(2, err)
		}
		worklogs, rejected, err := s.ingest(cmd.Context())
		if err != nil {
			return fail(2, err)
		}
		printRejected(out, rejected)
		if len(worklogs) == 0 {
			fmt.Fprintln(out, ":: No worklogs to upload.")
			return nil
		}
		printPending(out, worklogs)
		return nil
	},
}
