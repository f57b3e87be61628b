package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"matagent-cli/cmd/utils"

	"github.com/spf13/cobra"
)

var debug bool
var serverURL string
var serverURLFromFlag bool
var requestTimeout time.Duration
var overrideCwd string

var rootCmd = &cobra.Command{
	Use:   "matagent",
	Short: "Material Intelligence Agent CLI - chat, charts and reports from your terminal",
	Long: `matagent is a terminal client for the Material Intelligence Agent service.
It manages chat sessions, sends questions about materials and design
constraints, and downloads property charts and PDF engineering reports.

Getting started:
  # Start an interactive chat session
  matagent chat

  # Send a one-time question
  matagent chat "What material resists 500°C?"

  # Download the engineering report for the current session
  matagent report`,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Flags are parsed at this point; honor --debug
		if debug {
			InitDebugLogger("")
			utils.InitDebugLogger("", true)
		}
		// An explicit --server-url pins the URL for the whole run, including
		// across config hot-reloads
		serverURLFromFlag = cmd.Root().PersistentFlags().Changed("server-url")
		applyConfig(loadConfig(getEffectiveCWD()))
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server-url", "", "Material Intelligence Agent server URL (default: http://localhost:8000)")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 60*time.Second, "HTTP request timeout for API calls (e.g. 30s, 2m)")
	rootCmd.PersistentFlags().StringVar(&overrideCwd, "cwd", "", "Override the current working directory for CLI operations")
}

// getDataDir returns the directory to store matagent data.
var getDataDir = func() (string, error) {
	dataDir := os.Getenv("MATAGENT_DATA_DIR")
	if dataDir != "" {
		return dataDir, nil
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".matagent"), nil
	} else {
		return "", fmt.Errorf("getDataDir: could not determine home directory: %w", err)
	}
}

// getEffectiveCWD returns the directory to treat as the working directory.
// If the global --cwd flag is provided, it returns its absolute path; otherwise os.Getwd().
func getEffectiveCWD() string {
	if strings.TrimSpace(overrideCwd) != "" {
		if filepath.IsAbs(overrideCwd) {
			return overrideCwd
		}
		abs, err := filepath.Abs(overrideCwd)
		if err != nil {
			return "."
		}
		return abs
	}

	wd, _ := os.Getwd()
	if wd == "" {
		return "."
	}

	return wd
}

func getHTTPClient() utils.HTTPClient {
	if requestTimeout > 0 {
		return utils.GetHTTPClientWithTimeout(requestTimeout)
	}
	return utils.GetHTTPClient()
}
