package watch

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"clipper/internal/status"
)

func processingDoc() status.Status {
	doc := status.Idle(time.Now())
	doc.State = status.StateProcessing
	doc.Steps[0].State = status.StepCompleted
	doc.Steps[0].Detail = "Saved match.mp4 (1.0 MiB)"
	doc.Steps[1].State = status.StepInProgress
	doc.Steps[1].Detail = "Extracting audio track"
	return doc
}

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"in_progress": "In Progress",
		"idle":        "Idle",
		"error":       "Error",
	}
	for in, want := range cases {
		if got := Humanize(in); got != want {
			t.Fatalf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInitFetchesStatus(t *testing.T) {
	m := New(func() (status.Status, error) { return processingDoc(), nil }, time.Second, false)
	msg := m.Init()()
	updated, cmd := m.Update(msg)
	model := updated.(Model)
	if model.Status().State != status.StateProcessing {
		t.Fatalf("expected processing, got %s", model.Status().State)
	}
	if cmd == nil {
		t.Fatal("expected a follow-up tick")
	}
	view := model.View()
	for _, want := range []string{"Processing", "1/5", "Upload received", "Extracting audio track"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestExitWhenDone(t *testing.T) {
	doc := status.Idle(time.Now())
	doc.State = status.StateCompleted
	summary := "Created 2 clip(s)."
	doc.Summary = &summary

	m := New(func() (status.Status, error) { return doc, nil }, time.Second, true)
	updated, cmd := m.Update(statusMsg{doc: doc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if !strings.Contains(updated.(Model).View(), summary) {
		t.Fatal("expected summary in final view")
	}
}

func TestReadErrorIsShown(t *testing.T) {
	m := New(nil, 0, false)
	updated, _ := m.Update(statusMsg{err: errors.New("permission denied")})
	if view := updated.(Model).View(); !strings.Contains(view, "permission denied") {
		t.Fatalf("expected read error in view:\n%s", view)
	}
}

func TestQuitKey(t *testing.T) {
	m := New(nil, 0, false)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}
