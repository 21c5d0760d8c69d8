// Package report stores the outcome of a run in a msgpack file.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"callspace/internal/observ"
	"callspace/internal/pipeline"
	"callspace/internal/source"
)

// SchemaVersion is bumped whenever the Report layout changes.
const SchemaVersion uint16 = 1

// ErrSchemaMismatch is returned when a report was written by an incompatible version.
var ErrSchemaMismatch = errors.New("report schema mismatch")

// Report summarizes one run.
type Report struct {
	Schema    uint16        `msgpack:"schema" json:"schema"`
	Version   string        `msgpack:"version" json:"version"`
	Formatter string        `msgpack:"formatter,omitempty" json:"formatter,omitempty"`
	Extension string        `msgpack:"extension" json:"extension"`
	Started   time.Time     `msgpack:"started" json:"started"`
	Files     []File        `msgpack:"files" json:"files"`
	Totals    Totals        `msgpack:"totals" json:"totals"`
	Timings   observ.Report `msgpack:"timings" json:"timings"`
}

// File lists the spaces inserted into one file.
type File struct {
	Path  string `msgpack:"path" json:"path"`
	Lines uint32 `msgpack:"lines" json:"lines"`
	Edits []Edit `msgpack:"edits,omitempty" json:"edits,omitempty"`
}

// Edit is one inserted space.
type Edit struct {
	Line uint32 `msgpack:"line" json:"line"`
	Col  uint32 `msgpack:"col" json:"col"`
	Name string `msgpack:"name" json:"name"`
}

// Totals aggregates the file list.
type Totals struct {
	Files     uint32 `msgpack:"files" json:"files"`
	Formatted uint32 `msgpack:"formatted" json:"formatted"`
	Changed   uint32 `msgpack:"changed" json:"changed"`
	Edits     uint32 `msgpack:"edits" json:"edits"`
}

// Meta carries run details that are not part of pipeline.Result.
type Meta struct {
	// BaseDir, when set, makes file paths relative to it.
	BaseDir   string
	Version   string
	Formatter string
	Extension string
	Started   time.Time
	Timings   observ.Report
}

// Build converts a pipeline result into a Report.
func Build(meta Meta, res pipeline.Result) (*Report, error) {
	r := &Report{
		Schema:    SchemaVersion,
		Version:   meta.Version,
		Formatter: meta.Formatter,
		Extension: meta.Extension,
		Started:   meta.Started.UTC(),
		Timings:   meta.Timings,
		Files:     make([]File, 0, len(res.Rewritten)),
	}
	var changed, edits int
	var err error
	for _, rw := range res.Rewritten {
		lines, err := safecast.Conv[uint32](rw.Lines)
		if err != nil {
			return nil, fmt.Errorf("%s: line count: %w", rw.Path, err)
		}
		path := rw.Path
		if meta.BaseDir != "" {
			if path, err = source.RelativePath(rw.Path, meta.BaseDir); err != nil {
				return nil, fmt.Errorf("%s: %w", rw.Path, err)
			}
		}
		f := File{Path: path, Lines: lines}
		for _, e := range rw.Edits {
			f.Edits = append(f.Edits, Edit{Line: e.Line, Col: e.Col, Name: e.Name})
		}
		if rw.Changed {
			changed++
		}
		edits += len(rw.Edits)
		r.Files = append(r.Files, f)
	}

	if r.Totals.Files, err = safecast.Conv[uint32](len(r.Files)); err != nil {
		return nil, fmt.Errorf("file count: %w", err)
	}
	if r.Totals.Formatted, err = safecast.Conv[uint32](res.Formatted); err != nil {
		return nil, fmt.Errorf("formatted count: %w", err)
	}
	if r.Totals.Changed, err = safecast.Conv[uint32](changed); err != nil {
		return nil, fmt.Errorf("changed count: %w", err)
	}
	if r.Totals.Edits, err = safecast.Conv[uint32](edits); err != nil {
		return nil, fmt.Errorf("edit count: %w", err)
	}
	return r, nil
}

// Encode writes r to w.
func Encode(w io.Writer, r *Report) error {
	return msgpack.NewEncoder(w).Encode(r)
}

// Decode reads a report from rd and checks its schema.
func Decode(rd io.Reader) (*Report, error) {
	var r Report
	if err := msgpack.NewDecoder(rd).Decode(&r); err != nil {
		return nil, err
	}
	if r.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchemaMismatch, r.Schema, SchemaVersion)
	}
	return &r, nil
}

// WriteFile encodes r into path, replacing it atomically.
func WriteFile(path string, r *Report) (err error) {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".callspace-report-*")
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, r); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	// CreateTemp makes the file owner-only
	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err = os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// ReadFile decodes the report stored at path.
func ReadFile(path string) (*Report, error) {
	// #nosec G304 -- path is provided by the user
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	defer f.Close()
	r, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	return r, nil
}
