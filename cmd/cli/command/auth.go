package command

// auth.go handles authentication commands for the chathubCLI application.

import (
	"fmt"

	"chathub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the ChatHub API server. Supports login, registration, logout.`,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new ChatHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var c client.RegisterRequest
		c.Username, _ = cmd.Flags().GetString("username")
		c.Password, _ = cmd.Flags().GetString("password")
		c.Email, _ = cmd.Flags().GetString("email")

		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Register(&c)
		if err != nil {
			return fmt.Errorf("registration process failed: %w", err)
		}

		fmt.Println("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", response.UserID)
		return nil
	},
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your ChatHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var c client.LoginRequest
		c.Username, _ = cmd.Flags().GetString("username")
		c.Password, _ = cmd.Flags().GetString("password")

		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Login(&c)
		if err != nil {
			return fmt.Errorf("login process failed: %w", err)
		}

		// save token to config
		accessToken = response.AccessToken
		if err := saveConfig(cliConfig{
			AccessToken:  response.AccessToken,
			RefreshToken: response.RefreshToken,
			Username:     response.Username,
		}); err != nil {
			return fmt.Errorf("failed to save credentials: %w", err)
		}

		fmt.Println("✓ Successfully logged in!")
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from your ChatHub account",
	Run: func(cmd *cobra.Command, args []string) {
		accessToken = ""
		saveConfig(cliConfig{})
		fmt.Println("✓ Successfully logged out.")
	},
}

// init function to add auth commands to root command
func init() {
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(authCmd)

	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("username", "u", "", "Username for the account")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}
