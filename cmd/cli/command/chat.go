package command

import (
	"fmt"

	c "chathub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat room related commands",
	Long:  `Commands to interact with chat rooms, send and receive messages in real-time.`,
}

var chatJoinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a chat room",
	RunE: func(cmd *cobra.Command, args []string) error {
		roomID, _ := cmd.Flags().GetString("room")
		if roomID == "" {
			return fmt.Errorf("--room is required")
		}

		// Get token from stored credentials if not provided.
		// An empty token still connects, as a read-only guest.
		token, _ := cmd.Flags().GetString("token")
		if token == "" {
			token = accessToken
		}

		return c.JoinChatRoom(apiURL, roomID, token)
	},
}

func init() {
	chatCmd.AddCommand(chatJoinCmd)
	rootCmd.AddCommand(chatCmd)

	chatJoinCmd.Flags().StringP("room", "r", "", "Room ID to join (required)")
	chatJoinCmd.Flags().StringP("token", "t", "", "JWT token (optional, uses stored token if logged in)")
	chatJoinCmd.MarkFlagRequired("room")
}
