package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"callspace/internal/discover"
	"callspace/internal/driver"
	"callspace/internal/observ"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [dir|file...]",
		Short: "Report files a run would change, without writing them",
		Args:  cobra.ArbitraryArgs,
		RunE:  runCheck,
	}
	addConfigFlags(cmd)
	cmd.Flags().Int("jobs", runtime.GOMAXPROCS(0), "files checked concurrently")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	quiet := quietFlag(cmd)
	ctx := cmd.Context()
	timer := observ.NewTimer()

	doneDiscover := timer.Track("discover")
	files, err := discover.Paths(ctx, args, cfg.Files.Extension)
	doneDiscover(fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return err
	}

	doneCheck := timer.Track("check")
	results, err := driver.CheckFiles(ctx, files, driver.CheckOptions{
		Previewer: cfg.NewPreviewer(),
		Jobs:      jobs,
	})
	if err != nil {
		doneCheck("canceled")
		return err
	}

	var failed, changed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
			printError(cmd.ErrOrStderr(), fmt.Errorf("%s: %w", res.Path, res.Err))
		case res.Changed:
			changed++
			if !quiet {
				fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			}
		}
	}
	doneCheck(fmt.Sprintf("%d changed", changed))
	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if failed > 0 {
		return fmt.Errorf("check: failed to check %s", plural(failed, "file"))
	}
	if changed > 0 {
		return fmt.Errorf("check: %s would change", plural(changed, "file"))
	}
	return nil
}
