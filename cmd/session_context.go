package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

// SessionContext is the on-disk record of the last active session, so a new
// invocation resumes the same conversation.
type SessionContext struct {
	SessionID string `yaml:"session_id"`
	ServerURL string `yaml:"server_url"`
	Timestamp string `yaml:"timestamp"`
}

func sessionContextPath() (string, error) {
	dataDir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "context.yaml"), nil
}

// readSessionContext reads the persisted session context if it exists and
// matches the given server. Returns nil (no error) when there is nothing to
// resume.
func readSessionContext(server string) (*SessionContext, error) {
	path, err := sessionContextPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read context file: %w", err)
	}

	var context SessionContext
	if err := yaml.Unmarshal(data, &context); err != nil {
		return nil, fmt.Errorf("failed to parse context YAML: %w", err)
	}

	if context.SessionID == "" {
		return nil, nil
	}
	// A session id from one deployment means nothing to another
	if context.ServerURL != "" && server != "" && context.ServerURL != server {
		return nil, nil
	}

	return &context, nil
}

// writeSessionContext persists the active session id for later resumption.
func writeSessionContext(server, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	path, err := sessionContextPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := yaml.Marshal(SessionContext{
		SessionID: sessionID,
		ServerURL: server,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal context data to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write context file: %w", err)
	}

	return nil
}
