package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"callspace/internal/formatter"
	"callspace/internal/trace"
)

// CheckResult reports whether a file would change if a run processed it.
type CheckResult struct {
	Path    string
	Changed bool
	// Formatted is true when the external formatter alone changes the file.
	Formatted bool
	Rewrite   RewriteResult
	Output    []byte
	Err       error
}

// CheckOptions configures CheckFiles.
type CheckOptions struct {
	Previewer formatter.Previewer
	Jobs      int
}

// CheckFiles computes, without writing anything, what a run would produce for
// each file: the formatter output (taken from stdout) followed by the
// call-spacing rule. Files are processed concurrently; per-file failures are
// stored in CheckResult.Err and the results keep the order of files.
func CheckFiles(ctx context.Context, files []string, opts CheckOptions) ([]CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	previewer := opts.Previewer
	if previewer == nil {
		previewer = formatter.Nop{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, pass := trace.Start(ctx, trace.ScopePass, "check")
	pass.SetInt("files", len(files))
	defer pass.End("")

	results := make([]CheckResult, len(files))
	if len(files) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(gctx, path, previewer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func checkFile(ctx context.Context, path string, previewer formatter.Previewer) (res CheckResult) {
	res.Path = path
	_, span := trace.StartFile(ctx, "check", path)
	defer func() {
		if res.Err != nil {
			span.Fail(res.Err)
			return
		}
		span.SetInt("edits", len(res.Rewrite.Edits)).End("")
	}()

	// #nosec G304 -- path is provided by the caller
	original, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("read %s: %w", path, err)
		return res
	}
	formatted, err := previewer.Format(ctx, path)
	if err != nil {
		res.Err = err
		return res
	}
	res.Formatted = !bytes.Equal(original, formatted)

	out, rw := RewriteBytes(path, formatted)
	res.Rewrite = rw
	res.Output = out
	res.Changed = !bytes.Equal(original, out)
	return res
}
