package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"callspace/internal/config"
	"callspace/internal/discover"
	"callspace/internal/formatter"
	"callspace/internal/observ"
	"callspace/internal/pipeline"
	"callspace/internal/report"
	"callspace/internal/version"
)

type rewriteOptions struct {
	diff       bool
	reportPath string
	ui         uiMode
	quiet      bool
	timings    bool
}

func readRewriteOptions(cmd *cobra.Command) (rewriteOptions, error) {
	var opts rewriteOptions
	var err error
	if opts.diff, err = cmd.Flags().GetBool("diff"); err != nil {
		return opts, err
	}
	if opts.reportPath, err = cmd.Flags().GetString("report"); err != nil {
		return opts, err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return opts, err
	}
	if opts.ui, err = readUIMode(uiValue); err != nil {
		return opts, err
	}
	if opts.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return opts, err
	}
	opts.quiet = quietFlag(cmd)
	return opts, nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	opts, err := readRewriteOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	started := time.Now()
	timer := observ.NewTimer()

	doneDiscover := timer.Track("discover")
	files, err := discover.Paths(ctx, args, cfg.Files.Extension)
	doneDiscover(fmt.Sprintf("%d files", len(files)))
	if errors.Is(err, discover.ErrNoFiles) {
		// Nothing to do is not a failure.
		if !opts.quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "no %s files to process\n", cfg.Files.Extension)
		}
		return nil
	}
	if err != nil {
		return err
	}

	req := &pipeline.Request{
		Files:     files,
		Formatter: cfg.NewFormatter(),
		Timer:     timer,
	}
	var res pipeline.Result
	if !opts.quiet && shouldUseTUI(opts.ui, out) {
		res, err = runWithUI(ctx, out, "callspace", files, req)
	} else {
		res, err = pipeline.Run(ctx, req)
	}
	if err != nil {
		return err
	}

	if !opts.quiet {
		for _, rw := range res.Changed() {
			fmt.Fprintf(out, "rewrote %s (%s)\n", rw.Path, plural(len(rw.Edits), "call"))
		}
	}
	if opts.diff {
		printDiff(out, res.Rewritten, terminalWidth(out))
	}
	if opts.timings {
		printStageTimings(cmd.ErrOrStderr(), res, timer)
	}
	if opts.reportPath != "" {
		if err := writeRunReport(opts.reportPath, cfg, started, res, timer); err != nil {
			return err
		}
	}
	return nil
}

func writeRunReport(path string, cfg config.Config, started time.Time, res pipeline.Result, timer *observ.Timer) error {
	meta := report.Meta{
		BaseDir:   ".",
		Version:   version.Current().Version,
		Extension: cfg.Files.Extension,
		Started:   started,
		Timings:   timer.Report(),
	}
	if cmd, ok := cfg.NewFormatter().(*formatter.Command); ok {
		meta.Formatter = cmd.CommandLine("<file>", true)
	}
	r, err := report.Build(meta, res)
	if err != nil {
		return err
	}
	return report.WriteFile(path, r)
}

func printStageTimings(out io.Writer, res pipeline.Result, timer *observ.Timer) {
	if res.Timings.Has(pipeline.StageFormat) {
		fmt.Fprintf(out, "formatted %d files in %.1f ms\n", res.Formatted, toMillis(res.Timings.Duration(pipeline.StageFormat)))
	}
	if res.Timings.Has(pipeline.StageRewrite) {
		fmt.Fprintf(out, "rewrote %s in %.1f ms\n", plural(res.Edits(), "call"), toMillis(res.Timings.Duration(pipeline.StageRewrite)))
	}
	fmt.Fprint(out, timer.Summary())
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
