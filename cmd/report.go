package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var reportOutputDir string

// reportCmd downloads the PDF engineering report for a session.
var reportCmd = &cobra.Command{
	Use:   "report [session-id]",
	Short: "Download the PDF engineering report for a conversation",
	Long: `Ask the backend to generate the engineering report for a conversation
and save it as Material_Report_<session-id>.pdf. Without a session id, the
current conversation is used. Report generation runs the analysis server-side
and can take a few seconds.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		api := NewAPIClient(serverURL, getHTTPClient())

		sessionID, err := resolveSessionArg(api, args)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: no active conversation. Start one with 'matagent chat' first.")
			os.Exit(1)
		}

		outDir := reportOutputDir
		if outDir == "" {
			outDir = downloadDir
		}
		if err := os.MkdirAll(outDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Generating report...")
		data, err := api.FetchReport(sessionID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		path := filepath.Join(outDir, reportFileName(sessionID))
		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Report saved to %s\n", path)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutputDir, "output", "o", "", "directory to save the report into (default: download directory)")
	rootCmd.AddCommand(reportCmd)
}
