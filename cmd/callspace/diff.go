package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"callspace/internal/driver"
	"callspace/internal/ui"
)

var (
	diffBeforeColor = color.New(color.FgRed)
	diffAfterColor  = color.New(color.FgGreen)
	diffPosColor    = color.New(color.Faint)
)

// printDiff lists every rewritten line as "path:line: before -> after".
// When width is positive both sides are truncated so a row fits.
func printDiff(out io.Writer, results []driver.RewriteResult, width int) {
	for _, res := range results {
		if !res.Changed {
			continue
		}
		lines := make([]uint32, 0, len(res.After))
		for line := range res.After {
			lines = append(lines, line)
		}
		slices.Sort(lines)
		for _, line := range lines {
			pos := fmt.Sprintf("%s:%d:", res.Path, line)
			before := strings.TrimLeft(res.Before[line], " \t")
			after := strings.TrimLeft(res.After[line], " \t")
			if width > 0 {
				side := (width - runewidth.StringWidth(pos) - len(" ") - len(" -> ")) / 2
				side = max(side, 8)
				before = ui.Truncate(before, side)
				after = ui.Truncate(after, side)
			}
			fmt.Fprintf(out, "%s %s -> %s\n", diffPosColor.Sprint(pos), diffBeforeColor.Sprint(before), diffAfterColor.Sprint(after))
		}
	}
}
