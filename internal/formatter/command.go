package formatter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

const (
	// DefaultTool is the formatter used when nothing else is configured.
	DefaultTool = "clang-format"
	// DefaultInPlaceFlag asks DefaultTool to rewrite the file instead of
	// printing the result.
	DefaultInPlaceFlag = "-i"
)

// Command runs an external formatter executable.
type Command struct {
	Name        string   // executable name or path
	Args        []string // extra arguments placed before the file path
	InPlaceFlag string   // added only for FormatInPlace
	Dir         string   // working directory, empty for the current one
}

// NewClangFormat returns a Command running "clang-format -i <file>".
func NewClangFormat(args ...string) *Command {
	return &Command{
		Name:        DefaultTool,
		Args:        args,
		InPlaceFlag: DefaultInPlaceFlag,
	}
}

// FormatInPlace runs the formatter with the in-place flag on path.
func (c *Command) FormatInPlace(ctx context.Context, path string) error {
	_, err := c.run(ctx, path, true)
	return err
}

// Format runs the formatter without the in-place flag and returns its stdout.
func (c *Command) Format(ctx context.Context, path string) ([]byte, error) {
	return c.run(ctx, path, false)
}

// CommandLine renders the invocation used for path, for diagnostics.
func (c *Command) CommandLine(path string, inPlace bool) string {
	return strings.Join(append([]string{c.Name}, c.args(path, inPlace)...), " ")
}

func (c *Command) args(path string, inPlace bool) []string {
	args := slices.Clone(c.Args)
	if inPlace && c.InPlaceFlag != "" {
		args = append(args, c.InPlaceFlag)
	}
	return append(args, path)
}

func (c *Command) run(ctx context.Context, path string, inPlace bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bin, err := exec.LookPath(c.Name)
	if err != nil {
		return nil, &ToolError{
			Tool:     c.Name,
			Path:     path,
			ExitCode: -1,
			Err:      fmt.Errorf("%w: %w", ErrToolNotFound, err),
		}
	}

	cmd := exec.CommandContext(ctx, bin, c.args(path, inPlace)...)
	cmd.Dir = c.Dir
	var stdout bytes.Buffer
	var stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		toolErr := &ToolError{
			Tool:     c.Name,
			Path:     path,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			toolErr.ExitCode = exitErr.ExitCode()
		}
		return nil, toolErr
	}
	return stdout.Bytes(), nil
}
