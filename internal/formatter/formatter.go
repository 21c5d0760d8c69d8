// Package formatter wraps the external code formatter that runs before the
// call-spacing pass. The tool is a black box: it is invoked once per file and
// any failure to run it is fatal to the caller.
package formatter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrToolNotFound is wrapped by ToolError when the executable cannot be found.
var ErrToolNotFound = errors.New("formatter not found")

// Formatter formats a file in place.
type Formatter interface {
	FormatInPlace(ctx context.Context, path string) error
}

// Previewer returns the formatted content of a file without modifying it.
type Previewer interface {
	Format(ctx context.Context, path string) ([]byte, error)
}

// ToolError reports a formatter that could not run or exited with a non-zero
// status.
type ToolError struct {
	Tool     string
	Path     string
	ExitCode int // -1 when the process did not start or was killed
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString(e.Tool)
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *ToolError) Unwrap() error { return e.Err }

// Nop leaves files untouched. Format returns the file content as-is.
type Nop struct{}

// FormatInPlace does nothing.
func (Nop) FormatInPlace(ctx context.Context, _ string) error {
	return ctx.Err()
}

// Format reads path unchanged.
func (Nop) Format(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Func adapts a plain function to Formatter.
type Func func(ctx context.Context, path string) error

// FormatInPlace calls f.
func (f Func) FormatInPlace(ctx context.Context, path string) error {
	return f(ctx, path)
}
