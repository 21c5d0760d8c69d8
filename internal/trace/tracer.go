package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the ring capacity used when Config.RingSize is unset.
const DefaultRingSize = 4096

// StorageMode selects where a Tracer keeps its events.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // write each event as it happens
	ModeRing                          // keep the last events for a failure dump
	ModeBoth
)

func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode converts a flag value to a StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
	}
}

// Config describes the tracer of one invocation.
type Config struct {
	Level  Level
	Mode   StorageMode
	Format Format
	// Output receives streamed events. When nil, OutputPath is opened
	// ("" and "-" mean stderr).
	Output     io.Writer
	OutputPath string
	RingSize   int
}

// Tracer records the run, pass, file and line events of one invocation.
// A nil *Tracer records nothing.
type Tracer struct {
	level  Level
	format Format

	mu     sync.Mutex
	seq    uint64
	out    io.Writer
	closer io.Closer
	ring   *ring

	spans atomic.Uint64
}

// New builds a tracer for cfg. LevelOff yields a nil tracer.
func New(cfg Config) (*Tracer, error) {
	if cfg.Level == LevelOff {
		return nil, nil
	}
	t := &Tracer{level: cfg.Level, format: cfg.Format}
	if t.format == FormatAuto {
		t.format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			t.format = FormatNDJSON
		}
	}

	switch cfg.Mode {
	case ModeStream, ModeBoth:
		if err := t.open(cfg); err != nil {
			return nil, err
		}
	case ModeRing:
	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
	if cfg.Mode != ModeStream {
		t.ring = newRing(cfg.RingSize)
	}
	return t, nil
}

func (t *Tracer) open(cfg Config) error {
	switch {
	case cfg.Output != nil:
		t.out = cfg.Output
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		t.out = os.Stderr
	default:
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to open trace output: %w", err)
		}
		t.out, t.closer = f, f
	}
	return nil
}

// Level returns the configured level.
func (t *Tracer) Level() Level {
	if t == nil {
		return LevelOff
	}
	return t.level
}

// Enabled reports whether t records anything.
func (t *Tracer) Enabled() bool {
	return t.Level() > LevelOff
}

// Wants reports whether events of scope pass the level filter.
func (t *Tracer) Wants(scope Scope) bool {
	return t.Level().ShouldEmit(scope)
}

func (t *Tracer) record(ev Event) {
	if !t.Wants(ev.Scope) {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	ev.Seq = t.seq
	if t.ring != nil {
		t.ring.push(ev)
	}
	// error level only feeds the ring
	if t.out != nil && t.level > LevelError {
		// a broken trace sink must not fail the run
		_, _ = t.out.Write(FormatEvent(&ev, t.format)) //nolint:errcheck
	}
}

// Snapshot returns the ring contents, oldest first. It is nil when t keeps
// no ring.
func (t *Tracer) Snapshot() []Event {
	if t == nil || t.ring == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ring.events()
}

// HasRing reports whether t keeps events for a failure dump.
func (t *Tracer) HasRing() bool {
	return t != nil && t.ring != nil
}

// Dump writes the ring contents to w as text.
func (t *Tracer) Dump(w io.Writer) error {
	events := t.Snapshot()
	for i := range events {
		if _, err := w.Write(FormatEvent(&events[i], FormatText)); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the stream and closes the trace file if New opened it.
func (t *Tracer) Close() error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if flusher, ok := t.out.(interface{ Flush() error }); ok {
		if err := flusher.Flush(); err != nil {
			return err
		}
	}
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer, t.out = nil, nil
	return err
}
