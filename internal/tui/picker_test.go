package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func pickerSessions() []SessionItem {
	return []SessionItem{
		{ID: "abc123", Title: "Turbine blades"},
		{ID: "def456", Title: "Hull materials", IsActive: true},
		{ID: "ghi789", Title: "New Chat"},
	}
}

func TestPickerOpensOnActiveSession(t *testing.T) {
	m := NewSessionPickerModel()
	m.Open(pickerSessions())

	if !m.IsActive() {
		t.Fatalf("picker not active after open")
	}
	if m.cursorPos != 1 {
		t.Fatalf("cursor must start on the active session, got %d", m.cursorPos)
	}
}

func TestPickerEnterSelectsSession(t *testing.T) {
	m := NewSessionPickerModel()
	m.Open(pickerSessions())

	m, _ = m.Update(key("down"))
	m, cmd := m.Update(key("enter"))
	if m.IsActive() {
		t.Fatalf("picker must close on selection")
	}
	if cmd == nil {
		t.Fatalf("expected a selection command")
	}
	msg, ok := cmd().(SelectSessionMsg)
	if !ok {
		t.Fatalf("expected SelectSessionMsg, got %T", msg)
	}
	if msg.SessionID != "ghi789" {
		t.Fatalf("wrong session selected: %q", msg.SessionID)
	}
}

func TestPickerNavigationStaysInBounds(t *testing.T) {
	m := NewSessionPickerModel()
	m.Open(pickerSessions())

	for i := 0; i < 10; i++ {
		m, _ = m.Update(key("up"))
	}
	if m.cursorPos != 0 {
		t.Fatalf("cursor escaped the top, got %d", m.cursorPos)
	}
	for i := 0; i < 10; i++ {
		m, _ = m.Update(key("down"))
	}
	if m.cursorPos != 2 {
		t.Fatalf("cursor escaped the bottom, got %d", m.cursorPos)
	}
}

func TestPickerNewChatShortcut(t *testing.T) {
	m := NewSessionPickerModel()
	m.Open(pickerSessions())

	m, cmd := m.Update(key("n"))
	if m.IsActive() {
		t.Fatalf("picker must close on new-chat")
	}
	if cmd == nil {
		t.Fatalf("expected a new-chat command")
	}
	if _, ok := cmd().(NewSessionMsg); !ok {
		t.Fatalf("expected NewSessionMsg")
	}
}

func TestPickerEnterOnEmptyListStartsNewChat(t *testing.T) {
	m := NewSessionPickerModel()
	m.Open(nil)

	m, cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatalf("expected a new-chat command for an empty list")
	}
	if _, ok := cmd().(NewSessionMsg); !ok {
		t.Fatalf("expected NewSessionMsg")
	}
	_ = m
}

func TestPickerEscCloses(t *testing.T) {
	m := NewSessionPickerModel()
	m.Open(pickerSessions())

	m, _ = m.Update(key("esc"))
	if m.IsActive() {
		t.Fatalf("esc must close the picker")
	}
	if m.View() != "" {
		t.Fatalf("closed picker must render nothing")
	}
}

func TestPickerIgnoresKeysWhenClosed(t *testing.T) {
	m := NewSessionPickerModel()

	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Fatalf("closed picker must not emit commands")
	}
	_ = m
}

func TestPickerViewMarksCurrentSession(t *testing.T) {
	m := NewSessionPickerModel()
	m.Open(pickerSessions())

	view := m.View()
	if !strings.Contains(view, "Hull materials (current)") {
		t.Fatalf("active session not marked: %q", view)
	}
	if !strings.Contains(view, "Conversations") {
		t.Fatalf("header missing: %q", view)
	}
}
