package version

import (
	"testing"

	"github.com/fatih/color"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
}

func TestCurrent(t *testing.T) {
	withVersion(t, " 1.2.3 ", "abc123 ", "")
	info := Current()
	if info.Version != "1.2.3" || info.GitCommit != "abc123" || info.BuildDate != "" {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestCurrentEmptyVersion(t *testing.T) {
	withVersion(t, "", "", "")
	if got := Current().Version; got != "dev" {
		t.Fatalf("Version = %q, want dev", got)
	}
}

func TestColored(t *testing.T) {
	orig := color.NoColor
	t.Cleanup(func() { color.NoColor = orig })

	color.NoColor = true
	if got := Colored("1.2.3-rc.1"); got != "1.2.3-rc.1" {
		t.Fatalf("plain rendering = %q", got)
	}

	color.NoColor = false
	got := Colored("0.1.0-dev")
	if got == "0.1.0-dev" {
		t.Fatal("expected escape sequences")
	}
	want := majorColor.Sprint("0") + "." + minorColor.Sprint("1") + "." + patchColor.Sprint("0") + "-dev"
	if got != want {
		t.Fatalf("Colored = %q, want %q", got, want)
	}

	for _, v := range []string{"dev", "1.2", "1.x.3", "v1.2.3"} {
		if got := Colored(v); got != v {
			t.Errorf("Colored(%q) = %q, want unchanged", v, got)
		}
	}
}
