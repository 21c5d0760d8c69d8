package source

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitLinesKeepsTerminators(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single without newline", "int x;", []string{"int x;"}},
		{"lf", "a\nb\n", []string{"a\n", "b\n"}},
		{"crlf", "a\r\nb\r\n", []string{"a\r\n", "b\r\n"}},
		{"lone cr", "a\rb", []string{"a\r", "b"}},
		{"blank lines", "\n\n", []string{"\n", "\n"}},
		{"mixed", "x\r\n\ty\rz\n", []string{"x\r\n", "\ty\r", "z\n"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitLines(tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("SplitLines(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
			if joined := strings.Join(got, ""); joined != tc.text {
				t.Fatalf("joined lines = %q, want %q", joined, tc.text)
			}
		})
	}
}

func TestTrimTerminator(t *testing.T) {
	for in, want := range map[string]string{
		"foo\n":   "foo",
		"foo\r\n": "foo",
		"foo\r":   "foo",
		"foo":     "foo",
		"\n":      "",
	} {
		if got := TrimTerminator(in); got != want {
			t.Errorf("TrimTerminator(%q) = %q, want %q", in, got, want)
		}
	}
}
