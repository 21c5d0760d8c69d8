package discover

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("int x;\n"), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFilesIsFlatAndFiltered(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.c"))
	touch(t, filepath.Join(dir, "a.c"))
	touch(t, filepath.Join(dir, "util.h"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "upper.C"))
	touch(t, filepath.Join(dir, ".hidden.c"))
	touch(t, filepath.Join(dir, "sub", "nested.c"))
	if err := os.Mkdir(filepath.Join(dir, "dir.c"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := Files(dir, ".c")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{filepath.Join(dir, "a.c"), filepath.Join(dir, "b.c")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Files mismatch (-want +got):\n%s", diff)
	}
}

func TestFilesFollowsSymlinkToFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "real.c"))
	if err := os.Symlink(filepath.Join(dir, "real.c"), filepath.Join(dir, "link.c")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "missing.c"), filepath.Join(dir, "dangling.c")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	got, err := Files(dir, ".c")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{filepath.Join(dir, "link.c"), filepath.Join(dir, "real.c")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Files mismatch (-want +got):\n%s", diff)
	}
}

func TestFilesMissingDir(t *testing.T) {
	if _, err := Files(filepath.Join(t.TempDir(), "nope"), ".c"); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestPathsMixesFilesAndDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "src", "one.c"))
	touch(t, filepath.Join(dir, "src", "two.c"))
	touch(t, filepath.Join(dir, "extra.c"))
	touch(t, filepath.Join(dir, "skip.h"))

	got, err := Paths(context.Background(), []string{
		filepath.Join(dir, "src"),
		filepath.Join(dir, "extra.c"),
		filepath.Join(dir, "src", "one.c"),
		filepath.Join(dir, "skip.h"),
	}, ".c")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	want := []string{
		filepath.Join(dir, "extra.c"),
		filepath.Join(dir, "src", "one.c"),
		filepath.Join(dir, "src", "two.c"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Paths mismatch (-want +got):\n%s", diff)
	}
}

func TestPathsNoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "x.h"))
	_, err := Paths(context.Background(), []string{dir}, ".c")
	if !errors.Is(err, ErrNoFiles) {
		t.Fatalf("expected ErrNoFiles, got %v", err)
	}
}

func TestPathsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Paths(ctx, []string{t.TempDir()}, ".c"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name string
		ext  string
		want bool
	}{
		{"main.c", ".c", true},
		{"main.cc", ".c", false},
		{"a.b.c", ".c", true},
		{".c", ".c", false},
		{"main.go", ".go", true},
	}
	for _, tc := range cases {
		if got := Matches(tc.name, tc.ext); got != tc.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tc.name, tc.ext, got, tc.want)
		}
	}
}
