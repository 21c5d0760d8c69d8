package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"callspace/internal/rewrite"
	"callspace/internal/source"
)

func newLineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "line <text|->",
		Short: "Apply the call-spacing rule to one line, or to stdin with -",
		Long: "Apply the call-spacing rule to one line, or to every line of stdin with -.\n" +
			"Lines that do not start with whitespace are treated as definitions and kept.\n" +
			"Never rewritten: " + strings.Join(rewrite.ControlKeywords(), ", ") + ".",
		Args:  cobra.ExactArgs(1),
		RunE:  runLine,
	}
	cmd.Flags().Bool("explain", false, "list every identifier-paren pair and the decision taken for it")
	return cmd
}

func runLine(cmd *cobra.Command, args []string) error {
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if args[0] != "-" {
		fmt.Fprintln(out, rewrite.FixLine(args[0]))
		if explain {
			explainLine(out, 0, args[0])
		}
		return nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	lines := source.SplitLines(string(data))
	for i, line := range lines {
		fmt.Fprint(out, rewrite.FixLine(line))
		if explain {
			explainLine(cmd.ErrOrStderr(), i+1, line)
		}
	}
	return nil
}

func explainLine(w io.Writer, lineNo int, line string) {
	for _, m := range rewrite.Matches(source.TrimTerminator(line)) {
		if lineNo > 0 {
			fmt.Fprintf(w, "%d:", lineNo)
		}
		fmt.Fprintf(w, "%d: %s: %s\n", m.Paren+1, m.Name, m.Decision)
	}
}
