package driver

import (
	"context"

	"callspace/internal/rewrite"
	"callspace/internal/source"
	"callspace/internal/trace"
)

// RewriteResult captures the result of rewriting a single file.
type RewriteResult struct {
	Path    string
	Lines   int
	Edits   []rewrite.Edit
	Changed bool
	// Before and After hold the lines touched by Edits, keyed by line number.
	Before map[uint32]string
	After  map[uint32]string
}

// writeLines is replaced in tests to simulate a failing disk.
var writeLines = source.Write

// RewriteFile loads path, applies the call-spacing rule to every line and
// writes all lines back, replacing the file. Line count and order never
// change. The write is not atomic.
func RewriteFile(ctx context.Context, path string) (RewriteResult, error) {
	result := RewriteResult{Path: path}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	_, span := trace.StartFile(ctx, "rewrite", path)

	f, err := source.Load(path)
	if err != nil {
		span.Fail(err)
		return result, err
	}

	fixed, edits := rewrite.FixLines(f.Lines)
	result.Lines = len(fixed)
	result.Edits = edits
	result.Changed = len(edits) > 0
	collectTouched(&result, f.Lines, fixed, edits)

	if err := writeLines(path, fixed); err != nil {
		span.Fail(err)
		return result, err
	}

	// edits are reported only once they are on disk
	if span.WantsEdits() {
		for _, e := range edits {
			span.Edit(e.Pos().String(), e.Name)
		}
	}
	span.SetInt("lines", result.Lines).SetInt("edits", len(edits))
	if f.Flags&source.FileHasCRLF != 0 {
		span.Set("crlf", "true")
	}
	if f.Flags&source.FileHadBOM != 0 {
		span.Set("bom", "true")
	}
	span.End("")
	return result, nil
}

// RewriteBytes applies the rule to in-memory content and returns the result
// without touching the disk.
func RewriteBytes(name string, content []byte) ([]byte, RewriteResult) {
	f := source.FromBytes(name, content)
	fixed, edits := rewrite.FixLines(f.Lines)
	result := RewriteResult{
		Path:    name,
		Lines:   len(fixed),
		Edits:   edits,
		Changed: len(edits) > 0,
	}
	collectTouched(&result, f.Lines, fixed, edits)
	out := make([]byte, 0, len(content)+len(edits))
	for _, line := range fixed {
		out = append(out, line...)
	}
	return out, result
}

func collectTouched(result *RewriteResult, before, after []string, edits []rewrite.Edit) {
	if len(edits) == 0 {
		return
	}
	result.Before = make(map[uint32]string)
	result.After = make(map[uint32]string)
	for _, e := range edits {
		idx := int(e.Line) - 1
		result.Before[e.Line] = source.TrimTerminator(before[idx])
		result.After[e.Line] = source.TrimTerminator(after[idx])
	}
}
