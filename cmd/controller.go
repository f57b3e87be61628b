package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	uitk "matagent-cli/internal/tui"
)

// welcomeMessage is shown in place of an empty transcript.
const welcomeMessage = "Hello! I'm the Material Intelligence Agent. Ask me about materials, properties, and design constraints, and I'll help you find the right match."

// errAgentUnreachable is the fixed transcript bubble for a failed chat exchange.
const errAgentUnreachable = "Error: Could not connect to the agent."

// State is the shared application state decoupled from the UI model: the
// active session pointer, the cached session list, and per-action in-flight
// guards. At most one of each action runs at a time.
type State struct {
	Sessions        []SessionSummary
	ActiveSessionID string
	Sending         bool
	Creating        bool
	Downloading     bool
	FetchingCharts  bool
}

type sessionsMsg struct{ sessions []SessionSummary }

type sessionLoadedMsg struct {
	session *Session
	err     error
}

type sessionCreatedMsg struct {
	session *Session
	err     error
	// autoSend carries the pending message when the session was created on
	// behalf of a send into an empty client
	autoSend string
}

type chatResultMsg struct {
	sessionID string
	reply     string
	err       error
}

// ChartResult is the outcome of fetching a single chart type.
type ChartResult struct {
	Type string
	Path string
	Err  error
}

type chartsResultMsg struct{ results []ChartResult }

type reportResultMsg struct {
	path string
	err  error
}

// Controller owns data/state updates and produces Tea messages for the UI.
// All methods run on the UI goroutine; the returned commands do the blocking
// work and report back via messages.
type Controller struct {
	api *APIClient
	// downloadDir is read at dispatch time so config reloads take effect
	downloadDir func() string
	state       State
}

func NewController(api *APIClient, downloadDir func() string, initial State) *Controller {
	return &Controller{api: api, downloadDir: downloadDir, state: initial}
}

func (c *Controller) State() State             { return c.state }
func (c *Controller) ActiveSessionID() string  { return c.state.ActiveSessionID }
func (c *Controller) Sessions() []SessionSummary { return c.state.Sessions }
func (c *Controller) Busy() bool {
	return c.state.Sending || c.state.Creating || c.state.Downloading || c.state.FetchingCharts
}

// RefreshSessions re-fetches the session list. Failures surface as an empty
// list; the active pointer is never touched here.
func (c *Controller) RefreshSessions() tea.Cmd {
	api := c.api
	return func() tea.Msg {
		return sessionsMsg{sessions: api.ListSessions()}
	}
}

// ApplySessions stores a freshly fetched session list.
func (c *Controller) ApplySessions(sessions []SessionSummary) {
	c.state.Sessions = sessions
}

// SwitchToSession activates a session and loads its history. Switching to
// the already-active session is a no-op: no fetch, no re-render.
func (c *Controller) SwitchToSession(id string) tea.Cmd {
	if id == "" || id == c.state.ActiveSessionID {
		return nil
	}
	c.state.ActiveSessionID = id
	if err := writeSessionContext(c.api.BaseURL, id); err != nil {
		logDebug(fmt.Sprintf("failed to persist session context: %v", err))
	}
	api := c.api
	return func() tea.Msg {
		session, err := api.GetSession(id)
		return sessionLoadedMsg{session: session, err: err}
	}
}

// CreateNewChat requests a fresh session. pending, when non-empty, is a user
// message that should be sent as soon as the session exists.
func (c *Controller) CreateNewChat(pending string) tea.Cmd {
	if c.state.Creating {
		return nil
	}
	c.state.Creating = true
	api := c.api
	return func() tea.Msg {
		session, err := api.CreateSession()
		return sessionCreatedMsg{session: session, err: err, autoSend: pending}
	}
}

// ApplyCreated finishes a create: activates the new session on success.
func (c *Controller) ApplyCreated(msg sessionCreatedMsg) {
	c.state.Creating = false
	if msg.err != nil || msg.session == nil {
		return
	}
	c.state.ActiveSessionID = msg.session.ID
	if err := writeSessionContext(c.api.BaseURL, msg.session.ID); err != nil {
		logDebug(fmt.Sprintf("failed to persist session context: %v", err))
	}
}

// SendMessage posts one user message to the active session. The caller is
// responsible for the optimistic user bubble and the thinking placeholder;
// this only runs the network half. A second send while one is pending is
// refused.
func (c *Controller) SendMessage(text string) tea.Cmd {
	if c.state.Sending || c.state.ActiveSessionID == "" {
		return nil
	}
	c.state.Sending = true
	api := c.api
	id := c.state.ActiveSessionID
	return func() tea.Msg {
		reply, err := api.PostChatMessage(id, text)
		return chatResultMsg{sessionID: id, reply: reply, err: err}
	}
}

// FinishSend releases the send guard once the request has settled.
func (c *Controller) FinishSend() {
	c.state.Sending = false
}

// FetchCharts sequentially requests every chart type for the active session
// and writes the successful ones to the download directory. Refuses without
// an active session or while a fetch is already running.
func (c *Controller) FetchCharts() tea.Cmd {
	if c.state.ActiveSessionID == "" {
		return func() tea.Msg {
			return uitk.ShowToastMsg{Message: "Start a conversation before requesting charts."}
		}
	}
	if c.state.FetchingCharts {
		return nil
	}
	c.state.FetchingCharts = true
	api := c.api
	id := c.state.ActiveSessionID
	dir := c.downloadDir()
	return func() tea.Msg {
		results := make([]ChartResult, 0, len(chartTypes))
		for _, chartType := range chartTypes {
			data, err := api.FetchChart(id, chartType)
			if err != nil {
				logDebug(fmt.Sprintf("chart %s unavailable: %v", chartType, err))
				results = append(results, ChartResult{Type: chartType, Err: err})
				continue
			}
			path := filepath.Join(dir, fmt.Sprintf("%s_chart_%s.png", chartType, shortID(id)))
			if err := os.WriteFile(path, data, 0644); err != nil {
				results = append(results, ChartResult{Type: chartType, Err: err})
				continue
			}
			results = append(results, ChartResult{Type: chartType, Path: path})
		}
		return chartsResultMsg{results: results}
	}
}

// FinishCharts releases the chart guard.
func (c *Controller) FinishCharts() {
	c.state.FetchingCharts = false
}

// DownloadReport fetches the PDF report for the active session and writes it
// under the deterministic report name. The busy guard is released by
// FinishDownload on every outcome.
func (c *Controller) DownloadReport() tea.Cmd {
	if c.state.ActiveSessionID == "" {
		return func() tea.Msg {
			return uitk.ShowToastMsg{Message: "Start a conversation before downloading a report."}
		}
	}
	if c.state.Downloading {
		return nil
	}
	c.state.Downloading = true
	api := c.api
	id := c.state.ActiveSessionID
	dir := c.downloadDir()
	return func() tea.Msg {
		data, err := api.FetchReport(id)
		if err != nil {
			return reportResultMsg{err: err}
		}
		path := filepath.Join(dir, reportFileName(id))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return reportResultMsg{err: fmt.Errorf("failed to save report: %w", err)}
		}
		return reportResultMsg{path: path}
	}
}

// FinishDownload releases the report guard.
func (c *Controller) FinishDownload() {
	c.state.Downloading = false
}

// shortID truncates a session id for filenames and status lines.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
