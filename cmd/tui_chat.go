package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/google/uuid"

	"matagent-cli/cmd/utils"
	uitk "matagent-cli/internal/tui"
)

var agentPrompt = "🧪 Agent:"

const gap = "\n\n"

const (
	roleClient      = "client"
	roleError       = "error"
	rolePlaceholder = "placeholder"
)

const sidebarWidth = 26

// Message is one transcript bubble. The ID keys transient placeholders so
// they can be removed no matter what else happened in between.
type Message struct {
	ID      string
	Role    string
	Content string
}

type serverStatusMsg struct{ err error }
type configReloadedMsg struct{}
type chartOpenedMsg struct{ err error }

// runChatTUI starts the Bubble Tea TUI for chat.
func runChatTUI() {
	api := NewAPIClient(serverURL, getHTTPClient())

	// Resume the previously active session when it still exists server-side
	var resumeID string
	if existing, err := readSessionContext(api.BaseURL); err != nil {
		logDebug(fmt.Sprintf("failed to read session context: %v", err))
	} else if existing != nil {
		resumeID = existing.SessionID
		logDebug(fmt.Sprintf("restored session ID: %s", resumeID))
	}

	m := newChatModel(api, resumeID)
	p := tea.NewProgram(m)

	stopWatcher, err := StartConfigWatcher(func(*Config) {
		p.Send(configReloadedMsg{})
	})
	if err != nil {
		logDebug(fmt.Sprintf("config watcher not started: %v", err))
	} else {
		defer stopWatcher()
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
	}
}

type chatModel struct {
	controller *Controller
	api        *APIClient

	spin     spinner.Model
	viewport viewport.Model
	textarea textarea.Model

	messages      []Message
	placeholderID string
	history       []string
	histIndex     int

	width      int
	termHeight int
	status     string
	serverUp   bool

	md     *markdownRenderer
	picker uitk.SessionPickerModel
	modal  uitk.ChartModalModel
	toast  uitk.ToastModel

	overlayActive bool
	bootstrapped  bool
	resumeID      string
}

func newChatModel(api *APIClient, resumeID string) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about a material..."
	ta.Focus()
	ta.Prompt = "> "
	ta.SetWidth(30)
	ta.SetHeight(1)
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(30, 5)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))

	width, _, _ := term.GetSize(uintptr(os.Stdout.Fd()))

	ctrl := NewController(api, func() string { return downloadDir }, State{})

	return chatModel{
		controller: ctrl,
		api:        api,
		spin:       s,
		viewport:   vp,
		textarea:   ta,
		width:      width,
		md:         newMarkdownRenderer(width),
		picker:     uitk.NewSessionPickerModel(),
		modal:      uitk.NewChartModalModel(),
		toast:      uitk.NewToastModel(),
		resumeID:   resumeID,
	}
}

func (m chatModel) Init() tea.Cmd {
	base := m.api.BaseURL
	checkServer := func() tea.Msg {
		return serverStatusMsg{err: utils.PingURL(base)}
	}
	return tea.Batch(m.spin.Tick, checkServer, m.controller.RefreshSessions())
}

// appendMessage adds one bubble to the transcript and scrolls to it.
func (m *chatModel) appendMessage(content, role string) {
	m.messages = append(m.messages, Message{ID: uuid.New().String(), Role: role, Content: content})
	m.refreshViewportBottom()
}

// showLoadingPlaceholder inserts the transient "Thinking" bubble and returns
// its handle.
func (m *chatModel) showLoadingPlaceholder() string {
	id := uuid.New().String()
	m.messages = append(m.messages, Message{ID: id, Role: rolePlaceholder})
	m.refreshViewportBottom()
	return id
}

// removePlaceholder drops the placeholder bubble if it is still present.
// No-op when it was already removed.
func (m *chatModel) removePlaceholder(id string) {
	if id == "" {
		return
	}
	for i, msg := range m.messages {
		if msg.ID == id {
			m.messages = append(m.messages[:i], m.messages[i+1:]...)
			break
		}
	}
	m.refreshViewportBottom()
}

// resetTranscript replaces the transcript with a session's history, or the
// welcome bubble when the history is empty.
func (m *chatModel) resetTranscript(history []HistoryEntry) {
	m.messages = nil
	m.placeholderID = ""
	for _, entry := range history {
		m.messages = append(m.messages, Message{ID: uuid.New().String(), Role: entry.Role, Content: entry.Content})
	}
	if len(m.messages) == 0 {
		m.messages = append(m.messages, Message{ID: uuid.New().String(), Role: roleAssistant, Content: welcomeMessage})
	}
	m.refreshViewportBottom()
}

// startSend runs the send protocol for a non-empty input: optimistic user
// bubble, cleared input, placeholder, then the network request (creating a
// session first when none is active).
func (m *chatModel) startSend(text string) tea.Cmd {
	m.history = append(m.history, text)
	m.histIndex = len(m.history)
	m.appendMessage(text, roleUser)
	m.textarea.Reset()
	m.placeholderID = m.showLoadingPlaceholder()
	if m.controller.ActiveSessionID() == "" {
		return m.controller.CreateNewChat(text)
	}
	return m.controller.SendMessage(text)
}

func (m *chatModel) lastAgentReply() string {
	for i := len(m.messages) - 1; i >= 0; i-- {
		if m.messages[i].Role == roleAssistant {
			return m.messages[i].Content
		}
	}
	return ""
}

func (m *chatModel) sessionItems() []uitk.SessionItem {
	items := make([]uitk.SessionItem, 0, len(m.controller.Sessions()))
	for _, s := range m.controller.Sessions() {
		items = append(items, uitk.SessionItem{
			ID:       s.ID,
			Title:    displayTitle(s.Title),
			IsActive: s.ID == m.controller.ActiveSessionID(),
		})
	}
	return items
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		cmd   tea.Cmd
		cmds  []tea.Cmd
	)

	m.picker, cmd = m.picker.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.modal, cmd = m.modal.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	// Lock chat input while an overlay owns the keyboard
	overlay := m.picker.IsActive() || m.modal.IsActive()
	if overlay && !m.overlayActive {
		m.textarea.Blur()
		m.overlayActive = true
	}
	if !overlay && m.overlayActive {
		m.textarea.Focus()
		m.overlayActive = false
	}

	if !overlay {
		m.textarea, tiCmd = m.textarea.Update(msg)
	}
	m.viewport, vpCmd = m.viewport.Update(msg)

	m.toast, cmd = m.toast.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	m.spin, cmd = m.spin.Update(msg)
	cmds = append(cmds, vpCmd, tiCmd, cmd)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 0
		footerHeight := lipgloss.Height(renderChatInput(m)) + lipgloss.Height(renderInfoBar(m))
		newHeight := msg.Height - footerHeight - headerHeight
		if newHeight < 1 {
			newHeight = 1
		}
		m.viewport.Width = msg.Width - sidebarWidth - 1
		if m.viewport.Width < 10 {
			m.viewport.Width = msg.Width
		}
		m.viewport.Height = newHeight

		newWidth := msg.Width - 2
		if newWidth < 10 {
			newWidth = 10
		}
		m.textarea.SetWidth(newWidth)
		m.width = msg.Width
		m.termHeight = msg.Height
		m.refreshViewportBottom()

	case tea.KeyMsg:
		// Quit must work even while an overlay owns the keyboard
		if msg.String() == "ctrl+c" {
			m.status = "Goodbye."
			return m, tea.Quit
		}
		if overlay {
			return m, tea.Batch(cmds...)
		}
		switch msg.String() {
		case "tab":
			m.picker.Open(m.sessionItems())
			return m, tea.Batch(cmds...)

		case "ctrl+n":
			if c := m.controller.CreateNewChat(""); c != nil {
				cmds = append(cmds, c)
			}
			return m, tea.Batch(cmds...)

		case "ctrl+g":
			cmds = append(cmds, m.openChartGallery()...)
			return m, tea.Batch(cmds...)

		case "ctrl+r":
			cmds = append(cmds, m.startReportDownload()...)
			return m, tea.Batch(cmds...)

		case "ctrl+y":
			if reply := m.lastAgentReply(); reply != "" {
				if err := clipboard.WriteAll(reply); err != nil {
					cmds = append(cmds, toastCmd("Could not copy to clipboard."))
				} else {
					cmds = append(cmds, toastCmd("Copied last reply to clipboard."))
				}
			}
			return m, tea.Batch(cmds...)

		case "up":
			if m.histIndex > 0 {
				m.histIndex--
				m.textarea.SetValue(m.history[m.histIndex])
				m.textarea.CursorEnd()
			}

		case "down":
			if m.histIndex < len(m.history)-1 {
				m.histIndex++
				m.textarea.SetValue(m.history[m.histIndex])
				m.textarea.CursorEnd()
			} else {
				m.histIndex = len(m.history)
				m.textarea.SetValue("")
			}

		case "enter":
			text := strings.TrimSpace(m.textarea.Value())
			if text == "" {
				break
			}
			if strings.HasPrefix(text, "/") {
				newModel, slashCmd := m.handleSlashCommand(text)
				return newModel, tea.Batch(append(cmds, slashCmd)...)
			}
			if m.controller.State().Sending || m.controller.State().Creating {
				break
			}
			if c := m.startSend(text); c != nil {
				cmds = append(cmds, c)
			}
		}

	case sessionsMsg:
		m.controller.ApplySessions(msg.sessions)
		if !m.bootstrapped {
			m.bootstrapped = true
			cmds = append(cmds, m.bootstrapSession(msg.sessions)...)
		}

	case sessionLoadedMsg:
		if msg.err != nil || msg.session == nil {
			logDebug(fmt.Sprintf("failed to load session: %v", msg.err))
			cmds = append(cmds, toastCmd("Could not load that conversation."))
			break
		}
		m.resetTranscript(msg.session.History)

	case sessionCreatedMsg:
		m.controller.ApplyCreated(msg)
		if msg.err != nil || msg.session == nil {
			logDebug(fmt.Sprintf("failed to create session: %v", msg.err))
			if msg.autoSend != "" {
				// the pending message cannot be delivered without a session
				m.removePlaceholder(m.placeholderID)
				m.placeholderID = ""
				m.appendMessage(errAgentUnreachable, roleError)
			}
			cmds = append(cmds, toastCmd("Could not create a new conversation."))
			break
		}
		cmds = append(cmds, m.controller.RefreshSessions())
		if msg.autoSend != "" {
			cmds = append(cmds, m.controller.SendMessage(msg.autoSend))
		} else {
			m.resetTranscript(nil)
		}

	case chatResultMsg:
		m.controller.FinishSend()
		// A reply for a conversation the user has since left stays out of the
		// current transcript; the backend already stored it in its own session
		if msg.sessionID != m.controller.ActiveSessionID() {
			logDebug(fmt.Sprintf("dropping chat result for inactive session %s", msg.sessionID))
			if msg.err == nil {
				cmds = append(cmds, toastCmd("Reply received in another conversation."), m.controller.RefreshSessions())
			}
			break
		}
		// The placeholder goes before either branch appends its bubble
		m.removePlaceholder(m.placeholderID)
		m.placeholderID = ""
		if msg.err != nil {
			logDebug(fmt.Sprintf("chat request failed: %v", msg.err))
			m.appendMessage(errAgentUnreachable, roleError)
			break
		}
		m.appendMessage(msg.reply, roleAssistant)
		// The backend may have retitled the session from its first exchange
		cmds = append(cmds, m.controller.RefreshSessions())

	case chartsResultMsg:
		m.controller.FinishCharts()
		items := make([]uitk.ChartItem, 0, len(msg.results))
		for _, r := range msg.results {
			items = append(items, uitk.ChartItem{Type: r.Type, Path: r.Path, Err: r.Err})
		}
		m.modal.SetCharts(items)

	case reportResultMsg:
		m.controller.FinishDownload()
		if msg.err != nil {
			logDebug(fmt.Sprintf("report download failed: %v", msg.err))
			cmds = append(cmds, toastCmd("Report generation failed."))
			break
		}
		m.appendMessage(fmt.Sprintf("Report saved to %s", msg.path), roleClient)
		cmds = append(cmds, toastCmd("Report downloaded."))

	case uitk.SelectSessionMsg:
		if c := m.controller.SwitchToSession(msg.SessionID); c != nil {
			m.messages = nil
			m.placeholderID = ""
			m.refreshViewportBottom()
			cmds = append(cmds, c)
		}

	case uitk.NewSessionMsg:
		if c := m.controller.CreateNewChat(""); c != nil {
			cmds = append(cmds, c)
		}

	case uitk.OpenChartMsg:
		cmds = append(cmds, openPath(msg.Path))

	case chartOpenedMsg:
		if msg.err != nil {
			cmds = append(cmds, toastCmd("Could not open chart viewer."))
		}

	case serverStatusMsg:
		m.serverUp = msg.err == nil
		if msg.err != nil {
			logDebug(fmt.Sprintf("server unreachable: %v", msg.err))
		}

	case configReloadedMsg:
		m.api.BaseURL = strings.TrimSuffix(serverURL, "/")
		cmds = append(cmds, toastCmd("Configuration reloaded."), m.controller.RefreshSessions())
	}

	return m, tea.Batch(cmds...)
}

// bootstrapSession picks the initial active session after the first list
// fetch: the persisted one when still present, else the first entry, else a
// brand-new session.
func (m *chatModel) bootstrapSession(sessions []SessionSummary) []tea.Cmd {
	var cmds []tea.Cmd
	if m.resumeID != "" {
		for _, s := range sessions {
			if s.ID == m.resumeID {
				if c := m.controller.SwitchToSession(s.ID); c != nil {
					cmds = append(cmds, c)
				}
				return cmds
			}
		}
	}
	if len(sessions) > 0 {
		if c := m.controller.SwitchToSession(sessions[0].ID); c != nil {
			cmds = append(cmds, c)
		}
		return cmds
	}
	if c := m.controller.CreateNewChat(""); c != nil {
		cmds = append(cmds, c)
	}
	return cmds
}

func (m chatModel) handleSlashCommand(text string) (chatModel, tea.Cmd) {
	fields := strings.Fields(strings.ToLower(text))
	var cmds []tea.Cmd
	switch fields[0] {
	case "/help":
		m.appendMessage("Commands:\n  /help - Show this help\n  /new - Start a new conversation\n  /sessions - Browse conversations\n  /charts - Show material property charts\n  /report - Download the PDF engineering report\n  /copy - Copy the last agent reply\n  /exit - Exit\n\nHotkeys:\n  Tab - Browse conversations\n  Ctrl+N - New conversation\n  Ctrl+G - Charts\n  Ctrl+R - Report\n  Ctrl+Y - Copy last reply", roleClient)
		m.textarea.Reset()
	case "/new":
		m.textarea.Reset()
		if c := m.controller.CreateNewChat(""); c != nil {
			cmds = append(cmds, c)
		}
	case "/sessions":
		m.textarea.Reset()
		m.picker.Open(m.sessionItems())
	case "/charts":
		m.textarea.Reset()
		cmds = append(cmds, m.openChartGallery()...)
	case "/report":
		m.textarea.Reset()
		cmds = append(cmds, m.startReportDownload()...)
	case "/copy":
		m.textarea.Reset()
		if reply := m.lastAgentReply(); reply != "" {
			if err := clipboard.WriteAll(reply); err != nil {
				cmds = append(cmds, toastCmd("Could not copy to clipboard."))
			} else {
				cmds = append(cmds, toastCmd("Copied last reply to clipboard."))
			}
		}
	case "/exit", "/quit":
		m.status = "Goodbye."
		return m, tea.Quit
	default:
		m.appendMessage(fmt.Sprintf("Unknown command '%s'. Type '/help' for available commands.", fields[0]), roleClient)
		m.textarea.Reset()
	}
	return m, tea.Batch(cmds...)
}

func (m *chatModel) openChartGallery() []tea.Cmd {
	c := m.controller.FetchCharts()
	if c == nil {
		return nil
	}
	if m.controller.State().FetchingCharts {
		m.modal.OpenLoading()
	}
	return []tea.Cmd{c}
}

func (m *chatModel) startReportDownload() []tea.Cmd {
	c := m.controller.DownloadReport()
	if c == nil {
		return nil
	}
	if m.controller.State().Downloading {
		return []tea.Cmd{c, toastCmd("Generating report...")}
	}
	return []tea.Cmd{c}
}

func toastCmd(message string) tea.Cmd {
	return func() tea.Msg { return uitk.ShowToastMsg{Message: message} }
}

func renderTranscript(m chatModel) string {
	var b strings.Builder
	baseStyle := lipgloss.NewStyle()
	for _, message := range m.messages {
		var line string
		switch message.Role {
		case roleAssistant:
			rendered := m.md.Render(message.Content, m.viewport.Width-2)
			labelStyle := baseStyle.Foreground(lipgloss.Color("11"))
			line = labelStyle.Render(agentPrompt) + "\n" + rendered + "\n"
		case roleUser:
			// Literal text: the user's own input is never treated as markup
			style := baseStyle.Foreground(lipgloss.Color("#ccc"))
			line = style.Bold(true).Render("> ") + style.Render(message.Content)
		case roleError:
			line = baseStyle.Foreground(lipgloss.Color("9")).Render(message.Content)
		case roleClient:
			line = baseStyle.Foreground(lipgloss.Color("#666666")).Render(message.Content)
		case rolePlaceholder:
			labelStyle := baseStyle.Foreground(lipgloss.Color("11"))
			line = labelStyle.Render(agentPrompt+" "+m.spin.View()+"Thinking...") + "\n"
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func renderSidebar(m chatModel) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	itemStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(sidebarWidth - 2)
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("86")).Bold(true).Width(sidebarWidth - 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Sessions") + "\n\n")
	for _, s := range m.controller.Sessions() {
		title := displayTitle(s.Title)
		if len([]rune(title)) > sidebarWidth-4 {
			title = string([]rune(title)[:sidebarWidth-4]) + "…"
		}
		if s.ID == m.controller.ActiveSessionID() {
			b.WriteString(activeStyle.Render(title) + "\n")
		} else {
			b.WriteString(itemStyle.Render(title) + "\n")
		}
	}
	if len(m.controller.Sessions()) == 0 {
		b.WriteString(itemStyle.Render("(none)") + "\n")
	}
	b.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render("Tab to switch"))

	return lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(m.viewport.Height).
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(lipgloss.Color("238")).
		Render(b.String())
}

// setViewportContent updates the viewport with the current transcript rendering.
func (m *chatModel) setViewportContent() {
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(renderTranscript(*m)))
}

// refreshViewportBottom updates the viewport and scrolls to the bottom.
func (m *chatModel) refreshViewportBottom() {
	m.setViewportContent()
	m.viewport.GotoBottom()
}

func renderChatInput(m chatModel) string {
	var b strings.Builder

	b.WriteString(gap)

	cbStyle := lipgloss.NewStyle().
		MarginBottom(1).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("63"))

	b.WriteString(cbStyle.Render(m.textarea.View()))

	helpText := "/help for commands | Up/Down: history | Tab: sessions | Ctrl+G: charts | Ctrl+R: report"
	b.WriteString("\n")
	wrappedHelp := lipgloss.NewStyle().Faint(true).Width(m.width - 2).Render(helpText)
	b.WriteString(wrappedHelp)
	b.WriteString("\n")

	return b.String()
}

func renderInfoBar(m chatModel) string {
	session := "none"
	if id := m.controller.ActiveSessionID(); id != "" {
		session = shortID(id)
	}

	statusIcon := "✅"
	if !m.serverUp {
		statusIcon = "❌"
	}

	serverHost := strings.TrimPrefix(strings.TrimPrefix(m.api.BaseURL, "https://"), "http://")

	var busy string
	switch {
	case m.controller.State().Downloading:
		busy = " | Generating report..."
	case m.controller.State().FetchingCharts:
		busy = " | Fetching charts..."
	}

	statusLine := fmt.Sprintf("🧪 MATERIAL INTELLIGENCE AGENT | Session: %s | Server: %s %s%s",
		session, statusIcon, serverHost, busy)

	style := lipgloss.NewStyle().
		Width(m.width).
		Background(lipgloss.Color("#2b6cb0")).
		Foreground(lipgloss.Color("#ffffff")).
		PaddingLeft(1).
		PaddingRight(1)

	if lipgloss.Width(statusLine) > m.width-2 {
		maxLen := m.width - 5
		if maxLen > 0 {
			statusLine = statusLine[:maxLen] + "..."
		}
	}

	return style.Render(statusLine)
}

func (m chatModel) View() string {
	var b strings.Builder

	body := lipgloss.JoinHorizontal(lipgloss.Top, renderSidebar(m), m.viewport.View())

	overlay := m.picker.IsActive() || m.modal.IsActive()
	if overlay {
		dim := lipgloss.NewStyle().Faint(true)
		b.WriteString(dim.Render(body))
		b.WriteString("\n")
		if m.picker.IsActive() {
			b.WriteString(m.picker.View())
		} else {
			b.WriteString(m.modal.View())
		}
		shadow := m
		shadow.textarea.Blur()
		b.WriteString(dim.Render(renderChatInput(shadow)))
	} else {
		b.WriteString(body)
		b.WriteString(renderChatInput(m))
	}

	b.WriteString(renderInfoBar(m))

	if v := m.toast.View(); v != "" {
		b.WriteString("\n")
		b.WriteString(v)
	}

	return b.String()
}

func openPath(path string) tea.Cmd {
	return func() tea.Msg {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.Command("open", path)
		case "linux":
			cmd = exec.Command("xdg-open", path)
		case "windows":
			cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
		default:
			return chartOpenedMsg{err: fmt.Errorf("unsupported platform for opening files: %s", runtime.GOOS)}
		}
		if err := cmd.Start(); err != nil {
			return chartOpenedMsg{err: fmt.Errorf("failed to open %s: %v", path, err)}
		}
		return chartOpenedMsg{}
	}
}
