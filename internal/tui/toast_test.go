package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestToastShowAndHide(t *testing.T) {
	m := NewToastModel()
	if m.View() != "" {
		t.Fatalf("fresh toast must render nothing")
	}

	m, cmd := m.Update(ShowToastMsg{Message: "Report downloaded."})
	if cmd == nil {
		t.Fatalf("show must schedule an auto-hide")
	}
	if !strings.Contains(m.View(), "Report downloaded.") {
		t.Fatalf("toast text missing from view: %q", m.View())
	}

	m, _ = m.Update(HideToastMsg{shownAt: m.timestamp})
	if m.View() != "" {
		t.Fatalf("toast must hide after its timer fires")
	}
}

func TestToastIgnoresStaleHide(t *testing.T) {
	m := NewToastModel()
	m, _ = m.Update(ShowToastMsg{Message: "first"})
	staleTimestamp := m.timestamp

	// A newer toast replaces the first before its hide timer fires
	time.Sleep(time.Millisecond)
	m, _ = m.Update(ShowToastMsg{Message: "second"})

	m, _ = m.Update(HideToastMsg{shownAt: staleTimestamp})
	if !strings.Contains(m.View(), "second") {
		t.Fatalf("stale hide must not dismiss a newer toast, view: %q", m.View())
	}

	m, _ = m.Update(HideToastMsg{shownAt: m.timestamp})
	if m.View() != "" {
		t.Fatalf("matching hide must dismiss the toast")
	}
}

func TestToastPlacementUsesWindowWidth(t *testing.T) {
	m := NewToastModel()
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = m.Update(ShowToastMsg{Message: "hello"})

	view := m.View()
	if !strings.Contains(view, "hello") {
		t.Fatalf("toast text missing: %q", view)
	}
}
