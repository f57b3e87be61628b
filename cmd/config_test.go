package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

// resetConfigGlobals restores the flag-backed globals after a test mutates
// them through applyConfig.
func resetConfigGlobals(t *testing.T) {
	t.Helper()
	originalServerURL := serverURL
	originalFromFlag := serverURLFromFlag
	originalDownloadDir := downloadDir
	t.Cleanup(func() {
		serverURL = originalServerURL
		serverURLFromFlag = originalFromFlag
		downloadDir = originalDownloadDir
	})
	serverURL = ""
	serverURLFromFlag = false
	downloadDir = ""
}

func TestLoadConfigFromWorkingDirectory(t *testing.T) {
	useTempDataDir(t)
	cwd := t.TempDir()
	content := "server_url = \"http://matagent.internal:8000\"\ndownload_dir = \"/tmp/reports\"\n"
	if err := os.WriteFile(filepath.Join(cwd, configFileName), []byte(content), 0644); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	cfg := loadConfig(cwd)
	if cfg == nil {
		t.Fatalf("expected config to load")
	}
	if cfg.ServerURL != "http://matagent.internal:8000" {
		t.Fatalf("unexpected server url: %q", cfg.ServerURL)
	}
	if cfg.DownloadDir != "/tmp/reports" {
		t.Fatalf("unexpected download dir: %q", cfg.DownloadDir)
	}
}

func TestLoadConfigFallsBackToDataDir(t *testing.T) {
	dataDir := useTempDataDir(t)
	cwd := t.TempDir()
	content := "server_url = \"http://fallback:8000\"\n"
	if err := os.WriteFile(filepath.Join(dataDir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}

	cfg := loadConfig(cwd)
	if cfg == nil {
		t.Fatalf("expected fallback config to load")
	}
	if cfg.ServerURL != "http://fallback:8000" {
		t.Fatalf("unexpected server url: %q", cfg.ServerURL)
	}
}

func TestLoadConfigMissingAndMalformed(t *testing.T) {
	useTempDataDir(t)
	cwd := t.TempDir()

	if cfg := loadConfig(cwd); cfg != nil {
		t.Fatalf("missing config must load as nil, got %+v", cfg)
	}

	if err := os.WriteFile(filepath.Join(cwd, configFileName), []byte("server_url = [broken"), 0644); err != nil {
		t.Fatalf("failed to seed config: %v", err)
	}
	if cfg := loadConfig(cwd); cfg != nil {
		t.Fatalf("malformed config must be skipped, got %+v", cfg)
	}
}

func TestApplyConfigPrecedence(t *testing.T) {
	resetConfigGlobals(t)

	// No flag, no file: defaults
	applyConfig(nil)
	if serverURL != defaultServerURL {
		t.Fatalf("expected default server url, got %q", serverURL)
	}

	// File value wins over default
	resetConfigGlobals(t)
	applyConfig(&Config{ServerURL: "http://from-file:8000/"})
	if serverURL != "http://from-file:8000" {
		t.Fatalf("expected file server url with trailing slash trimmed, got %q", serverURL)
	}

	// Flag value wins over file
	resetConfigGlobals(t)
	serverURL = "http://from-flag:8000"
	serverURLFromFlag = true
	applyConfig(&Config{ServerURL: "http://from-file:8000"})
	if serverURL != "http://from-flag:8000" {
		t.Fatalf("flag must win over file, got %q", serverURL)
	}
}

func TestApplyConfigReappliesOnReload(t *testing.T) {
	resetConfigGlobals(t)

	applyConfig(&Config{ServerURL: "http://first:8000"})
	if serverURL != "http://first:8000" {
		t.Fatalf("initial apply failed, got %q", serverURL)
	}

	// An edited config file must take effect on the next apply
	applyConfig(&Config{ServerURL: "http://second:9000"})
	if serverURL != "http://second:9000" {
		t.Fatalf("reload must re-resolve the server url, got %q", serverURL)
	}

	// Removing server_url from the file falls back to the default
	applyConfig(nil)
	if serverURL != defaultServerURL {
		t.Fatalf("reload without a file value must fall back, got %q", serverURL)
	}

	// A pinned flag survives reloads untouched
	serverURL = "http://from-flag:8000"
	serverURLFromFlag = true
	applyConfig(&Config{ServerURL: "http://third:7000"})
	if serverURL != "http://from-flag:8000" {
		t.Fatalf("reload must not override the flag, got %q", serverURL)
	}
}

func TestApplyConfigDownloadDir(t *testing.T) {
	resetConfigGlobals(t)

	applyConfig(&Config{DownloadDir: "/tmp/matagent-downloads"})
	if downloadDir != "/tmp/matagent-downloads" {
		t.Fatalf("expected configured download dir, got %q", downloadDir)
	}

	resetConfigGlobals(t)
	applyConfig(nil)
	if downloadDir != getEffectiveCWD() {
		t.Fatalf("expected working directory fallback, got %q", downloadDir)
	}
}
