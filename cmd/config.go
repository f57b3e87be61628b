package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const defaultServerURL = "http://localhost:8000"

// configFileName is looked up in the working directory first, then in the
// matagent data directory as config.toml.
const configFileName = "matagent.toml"

// Config holds the optional file-based settings. Flags win over file values.
type Config struct {
	ServerURL   string `toml:"server_url"`
	DownloadDir string `toml:"download_dir"`
}

var downloadDir string

// configFilePaths returns candidate config paths in priority order.
func configFilePaths(cwd string) []string {
	paths := []string{filepath.Join(cwd, configFileName)}
	if dataDir, err := getDataDir(); err == nil {
		paths = append(paths, filepath.Join(dataDir, "config.toml"))
	}
	return paths
}

// loadConfig reads the first config file found. A missing file is not an
// error; a malformed one is logged and skipped.
func loadConfig(cwd string) *Config {
	for _, path := range configFilePaths(cwd) {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var cfg Config
		if err := toml.Unmarshal(data, &cfg); err != nil {
			logDebug("ignoring malformed config " + path + ": " + err.Error())
			continue
		}
		logDebug("loaded config from " + path)
		return &cfg
	}
	return nil
}

// applyConfig resolves the effective server URL and download directory from
// flags, config file, and defaults, in that order. Called again on every
// config reload, so file values are re-resolved each time unless the flag
// pinned them.
func applyConfig(cfg *Config) {
	if !serverURLFromFlag {
		if cfg != nil && strings.TrimSpace(cfg.ServerURL) != "" {
			serverURL = strings.TrimSuffix(strings.TrimSpace(cfg.ServerURL), "/")
		} else {
			serverURL = defaultServerURL
		}
	}
	if cfg != nil && strings.TrimSpace(cfg.DownloadDir) != "" {
		downloadDir = cfg.DownloadDir
	}
	if downloadDir == "" {
		downloadDir = getEffectiveCWD()
	}
}
