package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ChartItem is one chart in the gallery: either a saved file or a failure.
type ChartItem struct {
	Type string
	Path string
	Err  error
}

// OpenChartMsg asks the host to open a saved chart with the system viewer.
type OpenChartMsg struct{ Path string }

// ChartModalModel is the chart gallery overlay. While the fetch is running
// it shows a progress note; afterwards it lists each chart type with the
// saved file path, or the fixed empty-gallery text when nothing succeeded.
type ChartModalModel struct {
	active    bool
	loading   bool
	cursorPos int
	width     int

	charts []ChartItem

	headerStyle  lipgloss.Style
	focusedStyle lipgloss.Style
	dimmedStyle  lipgloss.Style
	errStyle     lipgloss.Style
	hintStyle    lipgloss.Style
	borderStyle  lipgloss.Style
}

func NewChartModalModel() ChartModalModel {
	m := ChartModalModel{}
	m.headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	m.focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	m.dimmedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	m.errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	m.hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	m.borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("86")).Padding(1, 2)
	return m
}

// OpenLoading shows the modal in its in-flight state.
func (m *ChartModalModel) OpenLoading() {
	m.active = true
	m.loading = true
	m.charts = nil
	m.cursorPos = 0
}

// SetCharts replaces the gallery contents once the fetch settles.
func (m *ChartModalModel) SetCharts(charts []ChartItem) {
	m.loading = false
	m.charts = charts
	m.cursorPos = 0
}

func (m *ChartModalModel) Close()        { m.active = false }
func (m ChartModalModel) IsActive() bool { return m.active }

func (m ChartModalModel) savedCharts() []ChartItem {
	var saved []ChartItem
	for _, c := range m.charts {
		if c.Err == nil && c.Path != "" {
			saved = append(saved, c)
		}
	}
	return saved
}

func (m ChartModalModel) Update(msg tea.Msg) (ChartModalModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if !m.active {
			return m, nil
		}
		switch msg.String() {
		case "esc", "q":
			// Always closable: a slow or stalled fetch must not trap the user
			m.active = false
		case "up", "k":
			if m.cursorPos > 0 {
				m.cursorPos--
			}
		case "down", "j":
			if m.cursorPos < len(m.savedCharts())-1 {
				m.cursorPos++
			}
		case "enter", "o":
			saved := m.savedCharts()
			if !m.loading && len(saved) > 0 && m.cursorPos < len(saved) {
				path := saved[m.cursorPos].Path
				return m, func() tea.Msg { return OpenChartMsg{Path: path} }
			}
		}
	}
	return m, nil
}

func (m ChartModalModel) View() string {
	if !m.active {
		return ""
	}

	var rows []string
	rows = append(rows, m.headerStyle.Render("Material Property Charts"))
	rows = append(rows, "")

	switch {
	case m.loading:
		rows = append(rows, m.dimmedStyle.Render("Generating charts from this conversation..."))
	case len(m.savedCharts()) == 0:
		rows = append(rows, m.dimmedStyle.Render("No charts available for this conversation yet."))
	default:
		i := 0
		for _, c := range m.charts {
			if c.Err != nil || c.Path == "" {
				rows = append(rows, m.errStyle.Render(fmt.Sprintf("  %s: not available", c.Type)))
				continue
			}
			cursor := "  "
			style := m.dimmedStyle
			if i == m.cursorPos {
				cursor = "> "
				style = m.focusedStyle
			}
			rows = append(rows, fmt.Sprintf("%s%s", cursor, style.Render(fmt.Sprintf("%s → %s", c.Type, c.Path))))
			i++
		}
	}

	rows = append(rows, "")
	if m.loading {
		rows = append(rows, m.hintStyle.Render("ESC: close"))
	} else {
		rows = append(rows, m.hintStyle.Render("↑/↓: select | Enter: open | ESC: close"))
	}

	box := m.borderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.width <= 0 {
		return box
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
}
