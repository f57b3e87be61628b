package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionItem is one row in the session picker.
type SessionItem struct {
	ID       string
	Title    string
	IsActive bool
}

// SelectSessionMsg is emitted when the user picks a session from the overlay.
type SelectSessionMsg struct{ SessionID string }

// NewSessionMsg is emitted when the user asks for a fresh conversation.
type NewSessionMsg struct{}

// SessionPickerModel is an overlay listing the stored conversations. Enter
// switches, "n" starts a new chat, ESC closes.
type SessionPickerModel struct {
	active    bool
	cursorPos int
	width     int
	height    int

	sessions []SessionItem

	headerStyle  lipgloss.Style
	focusedStyle lipgloss.Style
	dimmedStyle  lipgloss.Style
	activeStyle  lipgloss.Style
	hintStyle    lipgloss.Style
	borderStyle  lipgloss.Style
}

func NewSessionPickerModel() SessionPickerModel {
	m := SessionPickerModel{}
	m.headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	m.focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	m.dimmedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	m.activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	m.hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	m.borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("86")).Padding(1, 2)
	return m
}

func (m *SessionPickerModel) Open(sessions []SessionItem) {
	m.active = true
	m.sessions = sessions
	m.cursorPos = 0
	for i, s := range sessions {
		if s.IsActive {
			m.cursorPos = i
			break
		}
	}
}

func (m *SessionPickerModel) Close()        { m.active = false }
func (m SessionPickerModel) IsActive() bool { return m.active }

func (m SessionPickerModel) Update(msg tea.Msg) (SessionPickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if !m.active {
			return m, nil
		}
		switch msg.String() {
		case "esc", "q":
			m.active = false
		case "up", "k":
			if m.cursorPos > 0 {
				m.cursorPos--
			}
		case "down", "j":
			if m.cursorPos < len(m.sessions)-1 {
				m.cursorPos++
			}
		case "n":
			m.active = false
			return m, func() tea.Msg { return NewSessionMsg{} }
		case "enter":
			m.active = false
			if len(m.sessions) == 0 {
				return m, func() tea.Msg { return NewSessionMsg{} }
			}
			id := m.sessions[m.cursorPos].ID
			return m, func() tea.Msg { return SelectSessionMsg{SessionID: id} }
		}
	}
	return m, nil
}

func (m SessionPickerModel) View() string {
	if !m.active {
		return ""
	}

	var rows []string
	rows = append(rows, m.headerStyle.Render("Conversations"))
	rows = append(rows, "")

	if len(m.sessions) == 0 {
		rows = append(rows, m.dimmedStyle.Render("No conversations yet."))
	}
	for i, s := range m.sessions {
		cursor := "  "
		style := m.dimmedStyle
		if i == m.cursorPos {
			cursor = "> "
			style = m.focusedStyle
		}
		marker := ""
		if s.IsActive {
			marker = " (current)"
			if i != m.cursorPos {
				style = m.activeStyle
			}
		}
		rows = append(rows, fmt.Sprintf("%s%s", cursor, style.Render(s.Title+marker)))
	}

	rows = append(rows, "")
	rows = append(rows, m.hintStyle.Render("↑/↓: select | Enter: switch | n: new chat | ESC: close"))

	box := m.borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.width <= 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
}
