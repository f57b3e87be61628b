package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"matagent-cli/cmd/utils"
)

// HistoryEntry is one message in a session, tagged with its author role.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// SessionSummary is the list-view shape of a session (no history).
type SessionSummary struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Session is a full conversation thread as returned by the backend.
type Session struct {
	ID        string         `json:"_id"`
	Title     string         `json:"title"`
	History   []HistoryEntry `json:"history"`
	CreatedAt string         `json:"created_at,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// chartTypes is the fixed set of chart renderings the backend can produce.
var chartTypes = []string{"tensile", "density", "radar"}

// defaultSessionTitle is what the backend assigns before the first exchange
// retitles the session.
const defaultSessionTitle = "New Chat"

// displayTitle returns a human-facing title, substituting the default for
// sessions the backend has not titled yet.
func displayTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return defaultSessionTitle
	}
	return title
}

// APIClient wraps the Material Intelligence Agent REST API. The base URL
// points at the server root; all endpoints live under /api.
type APIClient struct {
	BaseURL    string
	HTTPClient utils.HTTPClient
}

func NewAPIClient(baseURL string, client utils.HTTPClient) *APIClient {
	if client == nil {
		client = utils.GetHTTPClient()
	}
	return &APIClient{BaseURL: strings.TrimSuffix(baseURL, "/"), HTTPClient: client}
}

func (c *APIClient) apiURL(parts ...string) string {
	return utils.JoinURL(c.BaseURL, append([]string{"api"}, parts...)...)
}

// getJSON issues a GET and decodes a JSON body into out.
func (c *APIClient) getJSON(url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned error %d: %s", resp.StatusCode, utils.PrettyServerError(resp, body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListSessions returns the session summaries, most recent first. Any
// transport or server failure yields an empty list; the error is logged,
// not raised, so callers can always range over the result.
func (c *APIClient) ListSessions() []SessionSummary {
	var sessions []SessionSummary
	if err := c.getJSON(c.apiURL("sessions"), &sessions); err != nil {
		logDebug(fmt.Sprintf("failed to list sessions: %v", err))
		return nil
	}
	return sessions
}

// CreateSession asks the backend for a fresh session.
func (c *APIClient) CreateSession() (*Session, error) {
	req, err := http.NewRequest(http.MethodPost, c.apiURL("sessions"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned error %d: %s", resp.StatusCode, utils.PrettyServerError(resp, body))
	}
	var session Session
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("server returned a session without an id")
	}
	return &session, nil
}

// GetSession fetches a full session including its history.
func (c *APIClient) GetSession(id string) (*Session, error) {
	var session Session
	if err := c.getJSON(c.apiURL("sessions", id), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// PostChatMessage sends one user message to a session and returns the agent
// reply text. A non-OK status or transport error is returned as an error,
// distinct from a successful-but-empty reply.
func (c *APIClient) PostChatMessage(sessionID, text string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: text})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.apiURL("chat", sessionID), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned error %d: %s", resp.StatusCode, utils.PrettyServerError(resp, body))
	}
	var reply chatResponse
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", fmt.Errorf("failed to decode reply: %w", err)
	}
	return reply.Response, nil
}

// fetchBinary issues a GET for a binary resource and returns its bytes.
func (c *APIClient) fetchBinary(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned error %d: %s", resp.StatusCode, utils.PrettyServerError(resp, body))
	}
	return body, nil
}

// FetchChart retrieves one PNG chart for a session. chartType must be one of
// chartTypes; the backend 404s for charts it cannot build from the
// conversation so far.
func (c *APIClient) FetchChart(sessionID, chartType string) ([]byte, error) {
	return c.fetchBinary(c.apiURL("charts", chartType, sessionID))
}

// FetchReport retrieves the generated PDF engineering report for a session.
func (c *APIClient) FetchReport(sessionID string) ([]byte, error) {
	return c.fetchBinary(c.apiURL("generate-report", sessionID))
}

// reportFileName is the deterministic download name for a session's report.
func reportFileName(sessionID string) string {
	return fmt.Sprintf("Material_Report_%s.pdf", sessionID)
}
