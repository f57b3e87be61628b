package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSessionContextRoundTrip(t *testing.T) {
	useTempDataDir(t)

	if err := writeSessionContext("http://localhost:8000", "abc123"); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	saved, err := readSessionContext("http://localhost:8000")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if saved == nil {
		t.Fatalf("expected a persisted context")
	}
	if saved.SessionID != "abc123" {
		t.Fatalf("expected session abc123, got %q", saved.SessionID)
	}
	if saved.ServerURL != "http://localhost:8000" {
		t.Fatalf("expected server url persisted, got %q", saved.ServerURL)
	}
	if saved.Timestamp == "" {
		t.Fatalf("expected a timestamp")
	}
}

func TestReadSessionContextMissingFile(t *testing.T) {
	useTempDataDir(t)

	saved, err := readSessionContext("http://localhost:8000")
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if saved != nil {
		t.Fatalf("expected nil context, got %+v", saved)
	}
}

func TestReadSessionContextServerMismatch(t *testing.T) {
	useTempDataDir(t)

	if err := writeSessionContext("http://localhost:8000", "abc123"); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	saved, err := readSessionContext("http://other-host:9000")
	if err != nil {
		t.Fatalf("mismatch must not be an error: %v", err)
	}
	if saved != nil {
		t.Fatalf("context from another server must not be resumed, got %+v", saved)
	}
}

func TestReadSessionContextEmptySessionID(t *testing.T) {
	dir := t.TempDir()
	original := getDataDir
	getDataDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getDataDir = original })

	path := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(path, []byte("session_id: \"\"\nserver_url: http://localhost:8000\n"), 0644); err != nil {
		t.Fatalf("failed to seed context file: %v", err)
	}

	saved, err := readSessionContext("http://localhost:8000")
	if err != nil {
		t.Fatalf("empty id must not be an error: %v", err)
	}
	if saved != nil {
		t.Fatalf("empty session id must read as nothing to resume")
	}
}

func TestReadSessionContextMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	original := getDataDir
	getDataDir = func() (string, error) { return dir, nil }
	t.Cleanup(func() { getDataDir = original })

	path := filepath.Join(dir, "context.yaml")
	if err := os.WriteFile(path, []byte("{not yaml: ["), 0644); err != nil {
		t.Fatalf("failed to seed context file: %v", err)
	}

	if _, err := readSessionContext("http://localhost:8000"); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}

func TestWriteSessionContextEmptyIDIsNoOp(t *testing.T) {
	useTempDataDir(t)

	if err := writeSessionContext("http://localhost:8000", ""); err != nil {
		t.Fatalf("empty id write must be a no-op, got %v", err)
	}
	saved, err := readSessionContext("http://localhost:8000")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if saved != nil {
		t.Fatalf("no-op write must not create a context")
	}
}
