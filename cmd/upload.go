package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tempoit/internal/model"
	"github.com/Tiliavir/tempoit/internal/pipeline"
	"github.com/Tiliavir/tempoit/internal/tempo"
)

var (
	uploadYes    bool
	uploadDryRun bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload pending intervals to Tempo",
	Long: `Exports pending intervals from timewarrior, shows the worklogs that would be
filed and, after confirmation, uploads them one by one. Each uploaded interval is
tagged as logged; failed ones are tagged as failed and retried on the next run.

Exit status is 0 when everything was uploaded (or there was nothing to do),
1 when some worklogs failed, and 2 when the run could not start or had to stop.`,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadYes, "yes", "y", false, "Upload without asking for confirmation")
	uploadCmd.Flags().BoolVar(&uploadDryRun, "dry-run", false, "Show what would be uploaded and stop")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	s, err := openSession()
	if err != nil {
		return fail(2, err)
	}
	worklogs, rejected, err := s.ingest(ctx)
	if err != nil {
		return fail(2, err)
	}

	printRejected(out, rejected)
	if len(worklogs) == 0 {
		fmt.Fprintln(out, ":: No worklogs to upload.")
		return nil
	}
	printPending(out, worklogs)

	if uploadDryRun {
		fmt.Fprintln(out, ":: Dry run, nothing uploaded.")
		return nil
	}
	if !uploadYes && !confirm(cmd.InOrStdin(), out) {
		fmt.Fprintln(out, ":: Canceled by user, aborting.")
		return nil
	}

	if err := s.cfg.CheckCredentials(); err != nil {
		return fail(2, err)
	}
	client, err := tempo.Login(ctx, s.cfg.BaseURL, tempo.Credentials{
		Username: s.cfg.Username,
		Password: s.cfg.Password,
		Token:    s.cfg.Token,
	}, s.cfg.Timeout)
	if err != nil {
		return fail(2, err)
	}

	rec, closeRec, err := s.recorder()
	if err != nil {
		return fail(2, err)
	}
	defer closeRec()

	return uploadBatch(ctx, out, worklogs, client, rec)
}

// confirm asks for a y/N answer. Anything but y is a no.
func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprint(out, ":: Confirm upload [y/N] ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(out)
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "y")
}

// uploadBatch runs the pipeline with progress output and maps the report to
// the command's exit status.
func uploadBatch(ctx context.Context, out io.Writer, worklogs []model.Worklog, up pipeline.Uploader, rec pipeline.Recorder) error {
	report, err := pipeline.Run(ctx, worklogs, up, rec, progressHooks(out))

	var recErr *pipeline.RecorderError
	if errors.As(err, &recErr) {
		fmt.Fprintln(out, failStyle.Render(":: Could not record the outcome, stopping."))
		if recErr.Outcome.Success() {
			fmt.Fprintf(out, "   %s was uploaded but is not marked as logged; tag it by hand before the next run.\n", recErr.Worklog.ID)
		}
		return fail(2, err)
	}
	if err != nil {
		return fail(2, err)
	}

	failed := report.Failed()
	if len(failed) == 0 {
		fmt.Fprintf(out, ":: Uploaded %d worklogs.\n", report.Succeeded())
		return nil
	}
	fmt.Fprintln(out, headerStyle.Render(":: Some worklogs failed to upload. Please try again:"))
	for _, res := range failed {
		fmt.Fprintf(out, "   %s\n", res.Worklog)
	}
	return fail(1, errors.New("Upload complete with errors."))
}

func progressHooks(out io.Writer) pipeline.Hooks {
	return pipeline.Hooks{
		BeforeUpload: func(wl model.Worklog) {
			fmt.Fprintf(out, ":: Uploading %s... ", wl)
		},
		AfterUpload: func(res pipeline.Result) {
			if res.Outcome.Success() {
				fmt.Fprintln(out, successStyle.Render(res.Outcome.String()))
				return
			}
			fmt.Fprintln(out, failStyle.Render(res.Outcome.String()))
			fmt.Fprintf(out, "   %v\n", res.Outcome.Err)
		},
	}
}
