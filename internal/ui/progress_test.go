package ui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"callspace/internal/pipeline"
)

func newModel(t *testing.T, files ...string) *progressModel {
	t.Helper()
	m, ok := NewProgressModel("callspace", files, make(chan pipeline.Event)).(*progressModel)
	if !ok {
		t.Fatal("unexpected model type")
	}
	return m
}

func TestApplyEventLabels(t *testing.T) {
	m := newModel(t, "a.c", "b.c")

	steps := []struct {
		ev     pipeline.Event
		file   int
		status string
		frac   float64
	}{
		{pipeline.Event{File: "a.c", Stage: pipeline.StageFormat, Status: pipeline.StatusWorking}, 0, "formatting", 0.25},
		{pipeline.Event{File: "a.c", Stage: pipeline.StageFormat, Status: pipeline.StatusDone}, 0, "formatted", 0.5},
		{pipeline.Event{File: "b.c", Stage: pipeline.StageFormat, Status: pipeline.StatusSkipped}, 1, "unformatted", 0.5},
		{pipeline.Event{File: "a.c", Stage: pipeline.StageRewrite, Status: pipeline.StatusWorking}, 0, "rewriting", 0.75},
		{pipeline.Event{File: "a.c", Stage: pipeline.StageRewrite, Status: pipeline.StatusDone, Edits: 3}, 0, "3 calls", 1},
		{pipeline.Event{File: "b.c", Stage: pipeline.StageRewrite, Status: pipeline.StatusDone, Edits: 1}, 1, "1 call", 1},
	}
	for i, step := range steps {
		m.applyEvent(step.ev)
		item := m.items[step.file]
		if item.status != step.status || item.frac != step.frac {
			t.Fatalf("step %d: got (%q, %v), want (%q, %v)", i, item.status, item.frac, step.status, step.frac)
		}
	}
	if m.stageLabel != "rewriting" || m.failed {
		t.Fatalf("unexpected header state: label=%q failed=%v", m.stageLabel, m.failed)
	}
}

func TestApplyEventError(t *testing.T) {
	m := newModel(t, "a.c")
	m.applyEvent(pipeline.Event{File: "a.c", Stage: pipeline.StageFormat, Status: pipeline.StatusError, Err: errors.New("boom")})
	if !m.failed || m.items[0].status != "error" {
		t.Fatalf("expected failed state, got %+v", m.items[0])
	}
	if _, cmd := m.Update(doneMsg{}); cmd == nil {
		t.Fatal("done must quit the program")
	}
	if view := m.View(); !strings.HasPrefix(stripANSI(view), "failed: callspace") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestApplyEventUnknownFile(t *testing.T) {
	m := newModel(t, "a.c")
	if cmd := m.applyEvent(pipeline.Event{File: "zzz.c", Stage: pipeline.StageFormat, Status: pipeline.StatusDone}); cmd != nil {
		t.Fatal("unknown file must be ignored")
	}
	if m.items[0].status != "queued" {
		t.Fatal("known file must stay queued")
	}
}

func TestViewTruncatesPaths(t *testing.T) {
	long := strings.Repeat("d/", 40) + "main.c"
	m := newModel(t, long)
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	view := stripANSI(m.View())
	if strings.Contains(view, long) || !strings.Contains(view, "...") {
		t.Fatalf("path not truncated:\n%s", view)
	}
}

func TestViewEmpty(t *testing.T) {
	if newModel(t).View() != "" {
		t.Fatal("empty model must render nothing")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"truncate me", 8, "trunc..."},
		{"abcdef", 3, "abc"},
		{"界界界界", 5, "界..."},
		{"any", 0, "any"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEsc = false
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func TestCtrlCInterrupts(t *testing.T) {
	m := newModel(t, "a.c")
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil || !Interrupted(model) {
		t.Fatal("ctrl+c must quit and mark the model interrupted")
	}
	if Interrupted(newModel(t, "b.c")) {
		t.Fatal("fresh model must not be interrupted")
	}
}
