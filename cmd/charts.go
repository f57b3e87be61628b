package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var chartsOutputDir string

// chartsCmd downloads the material property charts for a session.
var chartsCmd = &cobra.Command{
	Use:   "charts [session-id]",
	Short: "Download material property charts for a conversation",
	Long: `Download the material property charts (tensile strength, density,
performance radar) generated from a conversation. Charts the backend cannot
build yet are skipped. Without a session id, the current conversation is
used.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		api := NewAPIClient(serverURL, getHTTPClient())

		sessionID, err := resolveSessionArg(api, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: no active conversation. Start one with 'matagent chat' first.")
			os.Exit(1)
		}

		outDir := chartsOutputDir
		if outDir == "" {
			outDir = downloadDir
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		saved := 0
		for _, chartType := range chartTypes {
			data, err := api.FetchChart(sessionID, chartType)
			if err != nil {
				logDebug(fmt.Sprintf("chart %s unavailable: %v", chartType, err))
				fmt.Printf("  %-8s not available\n", chartType)
				continue
			}
			path := filepath.Join(outDir, fmt.Sprintf("%s_chart_%s.png", chartType, shortID(sessionID)))
			if err := os.WriteFile(path, data, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Error saving %s chart: %v\n", chartType, err)
				continue
			}
			fmt.Printf("  %-8s %s\n", chartType, path)
			saved++
		}
		if saved == 0 {
			fmt.Println("No charts available for this conversation yet.")
		}
	},
}

// resolveSessionArg returns the explicit session id argument, or the
// persisted active session.
func resolveSessionArg(api *APIClient, args []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	existing, err := readSessionContext(api.BaseURL)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return "", fmt.Errorf("no active session")
	}
	return existing.SessionID, nil
}

func init() {
	chartsCmd.Flags().StringVarP(&chartsOutputDir, "output", "o", "", "directory to save charts into (default: download directory)")
	rootCmd.AddCommand(chartsCmd)
}
