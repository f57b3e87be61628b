package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	chatInputFile  string
	chatNewSession bool
)

// chatCmd represents the `matagent chat` command
var chatCmd = &cobra.Command{
	Use:   "chat [\"input\"]",
	Short: "Chat with the Material Intelligence Agent",
	Long: `Chat with the Material Intelligence Agent.

Examples:
  # Interactive chat session
  matagent chat

  # One-time question against the current session
  matagent chat "What material resists 500°C?"

  # Question from a file
  matagent chat -f ./question.txt

  # Start a fresh conversation for the question
  matagent chat --new "Compare titanium alloys for aerospace use"`,

	Args: func(cmd *cobra.Command, args []string) error {
		if chatInputFile != "" && len(args) > 0 {
			return fmt.Errorf("specify either --file or an inline input, not both")
		}
		if len(args) > 1 {
			return fmt.Errorf("provide the input as a single quoted argument")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		var input string
		if chatInputFile != "" {
			data, err := os.ReadFile(chatInputFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error reading file '%s': %v\n", chatInputFile, err)
				os.Exit(1)
			}
			input = string(data)
		} else if len(args) == 1 {
			input = args[0]
		}

		// Start an interactive chat session if no input is provided
		if strings.TrimSpace(input) == "" {
			runChatTUI()
			return
		}

		api := NewAPIClient(serverURL, getHTTPClient())

		sessionID, err := resolveSessionForSend(api, chatNewSession)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		reply, err := api.PostChatMessage(sessionID, strings.TrimSpace(input))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if reply == "" {
			fmt.Println("No response received")
		} else {
			fmt.Println(reply)
		}
	},
}

// resolveSessionForSend finds the session a one-shot message should target:
// the persisted session when it still exists, otherwise a new one. forceNew
// always creates.
func resolveSessionForSend(api *APIClient, forceNew bool) (string, error) {
	if !forceNew {
		if existing, err := readSessionContext(api.BaseURL); err == nil && existing != nil {
			if _, err := api.GetSession(existing.SessionID); err == nil {
				return existing.SessionID, nil
			}
			logDebug(fmt.Sprintf("persisted session %s no longer exists", existing.SessionID))
		}
	}
	session, err := api.CreateSession()
	if err != nil {
		return "", fmt.Errorf("failed to create a session: %w", err)
	}
	if err := writeSessionContext(api.BaseURL, session.ID); err != nil {
		logDebug(fmt.Sprintf("failed to persist session context: %v", err))
	}
	return session.ID, nil
}

func init() {
	chatCmd.Flags().StringVarP(&chatInputFile, "file", "f", "", "path to file containing input text")
	chatCmd.Flags().BoolVar(&chatNewSession, "new", false, "start a fresh conversation instead of resuming the last one")

	rootCmd.AddCommand(chatCmd)
}
