// Package trace provides the diagnostic event stream of callspace.
//
// Every run is a tree of spans: the run itself, the format and rewrite
// passes, and one span per file. Each inserted space is reported as a point
// under its file span, after the file reached disk. The stream doubles as
// the structured log of the tool; nothing else writes diagnostics.
//
//	callspace --trace=- --trace-level=detail
//	callspace --trace=run.ndjson --trace-level=debug
//	callspace --trace-level=error --trace-mode=ring
//
// A Tracer streams events to a writer, keeps the last events in a ring for
// the dump printed after a failure, or both. Levels filter by scope:
// phase keeps run and pass spans, detail adds file spans and debug adds the
// per-edit points. The error level streams nothing and only feeds the ring.
//
// Spans travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, pass := trace.Start(ctx, trace.ScopePass, "rewrite")
//	defer pass.End("")
package trace
