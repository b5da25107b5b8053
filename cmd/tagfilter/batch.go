package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phyten/tagfilter/internal/batch"
	"github.com/phyten/tagfilter/internal/config"
	"github.com/phyten/tagfilter/internal/progress"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		outDir     string
		jobs       int
		asJSON     bool
		showProg   bool
		noProgress bool
	)
	cmd := &cobra.Command{
		Use:   "batch --out DIR files...",
		Short: "Strip tags from many files in parallel (.zst files stay compressed)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			warnProblems(cmd, snap.Settings)
			n := snap.UI.Jobs
			if cmd.Flags().Changed("jobs") {
				if err := config.ValidateJobs(jobs); err != nil {
					return err
				}
				n = jobs
			}

			var observer progress.Observer
			if progress.ShouldShow(showProg, noProgress, os.Stderr) {
				observer = progress.NewAutoObserver(cmd.ErrOrStderr())
			}
			res, err := batch.Run(cmd.Context(), args, snap.Settings.Tags, batch.Options{
				OutDir:   outDir,
				Jobs:     n,
				Engine:   a.engine(cmd),
				Progress: observer,
			})
			if res == nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(res); encErr != nil {
					return encErr
				}
			} else {
				_, _ = fmt.Fprintf(w, "processed %d file(s), %d changed, %d error(s) in %dms\n", len(res.Files), res.Changed, res.ErrorCount, res.ElapsedMS)
				for _, fe := range res.Errors {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", fe.Error())
				}
			}
			if err != nil {
				return err
			}
			if res.ErrorCount > 0 {
				return fmt.Errorf("batch: %d file(s) failed", res.ErrorCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "O", "", "output directory (required)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "parallel workers (default: settings or CPU count)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&showProg, "progress", false, "force progress output on stderr")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable progress output")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

