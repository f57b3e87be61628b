package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// sessionsCmd lists the stored conversations.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored conversations",
	Long: `List the conversations stored on the Material Intelligence Agent server,
most recent first. The conversation the CLI currently targets is marked
with an asterisk.`,
	Run: func(cmd *cobra.Command, args []string) {
		api := NewAPIClient(serverURL, getHTTPClient())

		var activeID string
		if existing, err := readSessionContext(api.BaseURL); err == nil && existing != nil {
			activeID = existing.SessionID
		}

		sessions := api.ListSessions()
		if len(sessions) == 0 {
			fmt.Println("No conversations found.")
			return
		}

		headerStyle := lipgloss.NewStyle().Bold(true)
		activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

		fmt.Println(headerStyle.Render(fmt.Sprintf("  %-26s %s", "ID", "TITLE")))
		for _, s := range sessions {
			line := fmt.Sprintf("  %-26s %s", s.ID, displayTitle(s.Title))
			if s.ID == activeID {
				line = activeStyle.Render("* " + line[2:])
			}
			fmt.Println(line)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}
