package trace

import (
	"context"
	"strconv"
	"time"
)

// Span is an open run, pass or file. Spans filtered out by the level are
// inert but still time themselves.
type Span struct {
	tracer *Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	file   string
	start  time.Time
	extra  map[string]string
}

// Start opens a span below the innermost span of ctx. The returned context
// carries the new span when it is recorded.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := &Span{scope: scope, name: name, start: time.Now()}
	t := FromContext(ctx)
	if !t.Wants(scope) {
		return ctx, s
	}
	s.tracer = t
	s.id = t.spans.Add(1)
	s.parent = SpanFromContext(ctx).ID()
	t.record(Event{
		Time:     s.start,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     name,
	})
	return context.WithValue(ctx, spanKey{}, s), s
}

// StartFile opens the file span of stage for path. Edits reported on it
// carry the path.
func StartFile(ctx context.Context, stage, path string) (context.Context, *Span) {
	ctx, s := Start(ctx, ScopeFile, stage+":"+path)
	s.file = path
	return ctx, s
}

// ID returns the span ID, 0 for a nil or inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Set attaches key=value to the end event.
func (s *Span) Set(key, value string) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// SetInt is Set for counters.
func (s *Span) SetInt(key string, n int) *Span {
	if s == nil || s.tracer == nil {
		return s
	}
	return s.Set(key, strconv.Itoa(n))
}

// WantsEdits reports whether Edit records anything.
func (s *Span) WantsEdits() bool {
	return s != nil && s.tracer.Wants(ScopeLine)
}

// Edit records one inserted space at pos ("line:col") before the call name.
func (s *Span) Edit(pos, name string) {
	if !s.WantsEdits() {
		return
	}
	s.tracer.record(Event{
		Kind:     KindPoint,
		Scope:    ScopeLine,
		ParentID: s.id,
		Name:     "space",
		Detail:   name,
		Extra:    map[string]string{"file": s.file, "pos": pos},
	})
}

// End closes the span with an optional detail and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	dur := time.Since(s.start)
	if s.tracer == nil {
		return dur
	}
	s.tracer.record(Event{
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parent,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// Fail closes the span with err as its detail.
func (s *Span) Fail(err error) time.Duration {
	detail := "error"
	if err != nil {
		detail = "error: " + err.Error()
	}
	return s.End(detail)
}
