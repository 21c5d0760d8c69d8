package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"callspace/internal/report"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <file>",
		Short: "Print a run report written with --report",
		Args:  cobra.ExactArgs(1),
		RunE:  runReport,
	}
	cmd.Flags().String("format", "text", "output format (text|json)")
	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("report: unsupported output format %q", format)
	}
	r, err := report.ReadFile(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	renderReportText(out, r)
	return nil
}

func renderReportText(out io.Writer, r *report.Report) {
	fmt.Fprintf(out, "callspace %s, %s\n", r.Version, r.Started.Format("2006-01-02 15:04:05 MST"))
	if r.Formatter != "" {
		fmt.Fprintf(out, "formatter: %s\n", r.Formatter)
	}
	fmt.Fprintf(out, "files: %d (%s), formatted: %d, changed: %d, calls: %d\n",
		r.Totals.Files, r.Extension, r.Totals.Formatted, r.Totals.Changed, r.Totals.Edits)
	for _, f := range r.Files {
		if len(f.Edits) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s (%d lines)\n", f.Path, f.Lines)
		for _, e := range f.Edits {
			fmt.Fprintf(out, "  %d:%d %s\n", e.Line, e.Col, e.Name)
		}
	}
	if r.Timings.TotalMS > 0 {
		fmt.Fprintf(out, "total: %.2f ms\n", r.Timings.TotalMS)
	}
}
