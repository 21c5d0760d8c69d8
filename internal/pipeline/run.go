// Package pipeline runs the two passes over a file set: the external
// formatter in place, then the call-spacing rewrite.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"callspace/internal/driver"
	"callspace/internal/formatter"
	"callspace/internal/observ"
	"callspace/internal/trace"
)

// Request configures a run.
type Request struct {
	// Files is the file set, processed in order.
	Files []string
	// Formatter runs pass 1. Nil skips the format pass.
	Formatter formatter.Formatter
	Progress  ProgressSink
	// Timer, when set, receives one phase per pass.
	Timer *observ.Timer
}

// Result captures per-file rewrite results and stage timings.
type Result struct {
	Formatted int
	Rewritten []driver.RewriteResult
	Timings   Timings
}

// Changed returns the rewrite results that inserted at least one space.
func (r Result) Changed() []driver.RewriteResult {
	var out []driver.RewriteResult
	for _, res := range r.Rewritten {
		if res.Changed {
			out = append(out, res)
		}
	}
	return out
}

// Edits returns the total number of inserted spaces.
func (r Result) Edits() int {
	total := 0
	for _, res := range r.Rewritten {
		total += len(res.Edits)
	}
	return total
}

// Run formats every file in place and then rewrites every file. The passes
// are not interleaved: the rewrite pass starts only after the formatter
// succeeded on the whole file set. The first failure of either pass aborts
// the run; files already processed are left as they are.
func Run(ctx context.Context, req *Request) (Result, error) {
	var result Result
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, errors.New("missing run request")
	}

	ctx, runSpan := trace.Start(ctx, trace.ScopeRun, "run")
	runSpan.SetInt("files", len(req.Files))

	emitQueued(req.Progress, req.Files)

	if err := formatPass(ctx, req, &result); err != nil {
		runSpan.Fail(err)
		return result, fmt.Errorf("format pass: %w", err)
	}
	if err := rewritePass(ctx, req, &result); err != nil {
		runSpan.Fail(err)
		return result, fmt.Errorf("rewrite pass: %w", err)
	}

	runSpan.SetInt("edits", result.Edits()).End("")
	return result, nil
}

func formatPass(ctx context.Context, req *Request, result *Result) error {
	if req.Formatter == nil {
		for _, file := range req.Files {
			emit(req.Progress, Event{File: file, Stage: StageFormat, Status: StatusSkipped})
		}
		return nil
	}

	done := track(req.Timer, string(StageFormat))
	ctx, span := trace.Start(ctx, trace.ScopePass, string(StageFormat))
	start := time.Now()
	defer func() {
		result.Timings.Set(StageFormat, time.Since(start))
		done(strconv.Itoa(result.Formatted) + " files")
	}()

	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			span.Fail(err)
			return err
		}
		emit(req.Progress, Event{File: file, Stage: StageFormat, Status: StatusWorking})
		fileStart := time.Now()
		_, fileSpan := trace.StartFile(ctx, string(StageFormat), file)
		if err := req.Formatter.FormatInPlace(ctx, file); err != nil {
			fileSpan.Fail(err)
			span.Fail(err)
			emit(req.Progress, Event{File: file, Stage: StageFormat, Status: StatusError, Err: err, Elapsed: time.Since(fileStart)})
			return err
		}
		fileSpan.End("")
		result.Formatted++
		emit(req.Progress, Event{File: file, Stage: StageFormat, Status: StatusDone, Elapsed: time.Since(fileStart)})
	}
	span.End("")
	return nil
}

func rewritePass(ctx context.Context, req *Request, result *Result) error {
	done := track(req.Timer, string(StageRewrite))
	ctx, span := trace.Start(ctx, trace.ScopePass, string(StageRewrite))
	start := time.Now()
	defer func() {
		result.Timings.Set(StageRewrite, time.Since(start))
		done(strconv.Itoa(result.Edits()) + " edits")
	}()

	result.Rewritten = make([]driver.RewriteResult, 0, len(req.Files))
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			span.Fail(err)
			return err
		}
		emit(req.Progress, Event{File: file, Stage: StageRewrite, Status: StatusWorking})
		fileStart := time.Now()
		res, err := driver.RewriteFile(ctx, file)
		if err != nil {
			span.Fail(err)
			emit(req.Progress, Event{File: file, Stage: StageRewrite, Status: StatusError, Err: err, Elapsed: time.Since(fileStart)})
			return err
		}
		result.Rewritten = append(result.Rewritten, res)
		emit(req.Progress, Event{File: file, Stage: StageRewrite, Status: StatusDone, Elapsed: time.Since(fileStart), Edits: len(res.Edits)})
	}
	span.End("")
	return nil
}

func track(timer *observ.Timer, name string) func(string) {
	if timer == nil {
		return func(string) {}
	}
	return timer.Track(name)
}

func emitQueued(sink ProgressSink, files []string) {
	for _, file := range files {
		emit(sink, Event{File: file, Stage: StageFormat, Status: StatusQueued})
	}
}

func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(ev)
}
