package formatter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeStub(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-format")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCommandFormatInPlace(t *testing.T) {
	stub := writeStub(t, `for last; do :; done
case " $* " in
*" -i "*) printf 'int x;\n' > "$last" ;;
*) exit 9 ;;
esac`)
	target := filepath.Join(t.TempDir(), "a.c")
	if err := os.WriteFile(target, []byte("int   x ;\n"), 0o600); err != nil {
		t.Fatalf("write target: %v", err)
	}

	cmd := &Command{Name: stub, InPlaceFlag: "-i"}
	if err := cmd.FormatInPlace(context.Background(), target); err != nil {
		t.Fatalf("FormatInPlace: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "int x;\n" {
		t.Fatalf("content = %q", data)
	}
}

func TestCommandFormatReturnsStdout(t *testing.T) {
	stub := writeStub(t, `for a; do
  if [ "$a" = "-i" ]; then exit 9; fi
done
printf 'preview:%s\n' "$1"`)
	cmd := &Command{Name: stub, Args: []string{"-style=file"}, InPlaceFlag: "-i"}
	out, err := cmd.Format(context.Background(), "x.c")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if string(out) != "preview:-style=file\n" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestCommandNonZeroExitIsToolError(t *testing.T) {
	stub := writeStub(t, `echo "bad style option" >&2
exit 3`)
	cmd := &Command{Name: stub, InPlaceFlag: "-i"}
	err := cmd.FormatInPlace(context.Background(), "broken.c")
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ToolError, got %T (%v)", err, err)
	}
	if toolErr.ExitCode != 3 {
		t.Fatalf("ExitCode = %d, want 3", toolErr.ExitCode)
	}
	if toolErr.Path != "broken.c" {
		t.Fatalf("Path = %q", toolErr.Path)
	}
	if !strings.Contains(err.Error(), "bad style option") {
		t.Fatalf("error should carry stderr, got %q", err.Error())
	}
	if errors.Is(err, ErrToolNotFound) {
		t.Fatalf("non-zero exit must not be reported as missing tool")
	}
}

func TestCommandMissingTool(t *testing.T) {
	cmd := &Command{Name: "callspace-no-such-formatter-xyz", InPlaceFlag: "-i"}
	err := cmd.FormatInPlace(context.Background(), "a.c")
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.ExitCode != -1 {
		t.Fatalf("expected ToolError with exit code -1, got %#v", err)
	}
}

func TestCommandCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewClangFormat().FormatInPlace(ctx, "a.c")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestCommandLine(t *testing.T) {
	cmd := NewClangFormat("-style=file")
	if got := cmd.CommandLine("a.c", true); got != "clang-format -style=file -i a.c" {
		t.Fatalf("CommandLine(inPlace) = %q", got)
	}
	if got := cmd.CommandLine("a.c", false); got != "clang-format -style=file a.c" {
		t.Fatalf("CommandLine(preview) = %q", got)
	}
}

func TestNopFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "n.c")
	if err := os.WriteFile(path, []byte("int  x;\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := (Nop{}).FormatInPlace(context.Background(), path); err != nil {
		t.Fatalf("FormatInPlace: %v", err)
	}
	out, err := Nop{}.Format(context.Background(), path)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if string(out) != "int  x;\n" {
		t.Fatalf("Nop.Format changed content: %q", out)
	}
}

func TestToolErrorMessage(t *testing.T) {
	err := &ToolError{Tool: "clang-format", Path: "a.c", Err: errors.New("exit status 1"), Stderr: "oops\n"}
	if got := err.Error(); got != "clang-format: a.c: exit status 1: oops" {
		t.Fatalf("Error() = %q", got)
	}
}
