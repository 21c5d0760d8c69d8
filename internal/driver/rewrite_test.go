package driver

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"callspace/internal/rewrite"
	"callspace/internal/trace"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRewriteFile(t *testing.T) {
	dir := t.TempDir()
	src := "int main(void) {\n    printf(\"hi\");\n    if(x) {\n        foo(bar(1));\n    }\n}\n"
	path := writeFile(t, dir, "main.c", src)

	res, err := RewriteFile(context.Background(), path)
	if err != nil {
		t.Fatalf("RewriteFile: %v", err)
	}
	want := "int main(void) {\n    printf (\"hi\");\n    if(x) {\n        foo (bar (1));\n    }\n}\n"
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("content mismatch (-want +got):\n%s", diff)
	}
	if !res.Changed || res.Lines != 6 {
		t.Fatalf("unexpected result: changed=%v lines=%d", res.Changed, res.Lines)
	}
	wantEdits := []rewrite.Edit{
		{Line: 2, Col: 11, Name: "printf"},
		{Line: 4, Col: 12, Name: "foo"},
		{Line: 4, Col: 16, Name: "bar"},
	}
	if diff := cmp.Diff(wantEdits, res.Edits); diff != "" {
		t.Fatalf("edits mismatch (-want +got):\n%s", diff)
	}
	if res.Before[2] != "    printf(\"hi\");" || res.After[2] != "    printf (\"hi\");" {
		t.Fatalf("unexpected touched line: %q -> %q", res.Before[2], res.After[2])
	}
}

func TestRewriteFilePreservesTerminators(t *testing.T) {
	dir := t.TempDir()
	src := "void f(void)\r\n{\r\n\tg();\r\n}"
	path := writeFile(t, dir, "crlf.c", src)

	if _, err := RewriteFile(context.Background(), path); err != nil {
		t.Fatalf("RewriteFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "void f(void)\r\n{\r\n\tg ();\r\n}"
	if string(got) != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRewriteFileUnchangedStillWritten(t *testing.T) {
	dir := t.TempDir()
	src := "int x;\n    return(0);\n"
	path := writeFile(t, dir, "same.c", src)

	res, err := RewriteFile(context.Background(), path)
	if err != nil {
		t.Fatalf("RewriteFile: %v", err)
	}
	if res.Changed || len(res.Edits) != 0 {
		t.Fatalf("expected no edits, got %v", res.Edits)
	}
	got, _ := os.ReadFile(path)
	if string(got) != src {
		t.Fatalf("content changed: %q", got)
	}
}

func TestRewriteFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := RewriteFile(context.Background(), filepath.Join(dir, "missing.c")); err == nil {
		t.Fatal("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.c")
	if err := os.WriteFile(bad, []byte{0xff, 0xfe, '\n'}, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := RewriteFile(context.Background(), bad); err == nil {
		t.Fatal("expected decode error")
	}
	got, _ := os.ReadFile(bad)
	if !bytes.Equal(got, []byte{0xff, 0xfe, '\n'}) {
		t.Fatal("file with invalid encoding must not be rewritten")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := writeFile(t, dir, "ok.c", "  f();\n")
	if _, err := RewriteFile(ctx, path); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRewriteFileTracesLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.c", "  a();\n  b();\n")

	tracer := newRingTracer(t)
	ctx := trace.WithTracer(context.Background(), tracer)
	if _, err := RewriteFile(ctx, path); err != nil {
		t.Fatalf("RewriteFile: %v", err)
	}
	var positions []string
	for _, ev := range tracer.Snapshot() {
		if ev.Kind == trace.KindPoint && ev.Scope == trace.ScopeLine {
			positions = append(positions, ev.Extra["pos"]+" "+ev.Detail)
		}
	}
	if diff := cmp.Diff([]string{"1:4 a", "2:4 b"}, positions); diff != "" {
		t.Fatalf("edit points mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteFileWriteFailureReportsNoEdits(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.c", "  a();\n")

	diskFull := errors.New("no space left on device")
	orig := writeLines
	writeLines = func(string, []string) error { return diskFull }
	t.Cleanup(func() { writeLines = orig })

	tracer := newRingTracer(t)
	ctx := trace.WithTracer(context.Background(), tracer)
	if _, err := RewriteFile(ctx, path); !errors.Is(err, diskFull) {
		t.Fatalf("expected write error, got %v", err)
	}
	var failed bool
	for _, ev := range tracer.Snapshot() {
		if ev.Kind == trace.KindPoint {
			t.Fatalf("edit traced although the write failed: %+v", ev)
		}
		if ev.Kind == trace.KindSpanEnd && strings.Contains(ev.Detail, diskFull.Error()) {
			failed = true
		}
	}
	if !failed {
		t.Fatal("file span should end with the write error")
	}
}

func newRingTracer(t *testing.T) *trace.Tracer {
	t.Helper()
	tracer, err := trace.New(trace.Config{Level: trace.LevelDebug, Mode: trace.ModeRing, RingSize: 64})
	if err != nil {
		t.Fatalf("trace.New: %v", err)
	}
	return tracer
}

func TestRewriteBytes(t *testing.T) {
	out, res := RewriteBytes("<stdin>", []byte("    call(x);\nint f(y);\n"))
	if string(out) != "    call (x);\nint f(y);\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if !res.Changed || len(res.Edits) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}
