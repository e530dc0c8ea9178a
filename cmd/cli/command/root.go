package command

// root.go defines the root command for the chathubCLI application.
// set up the global flags and configuration here.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	apiURL      string // Global flag for API server URL
	cfgFile     string // config file path
	accessToken string // authentication token(jwt) loaded from config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chathubCLI",
	Short: "chathubCLI - ChatHub Command Line Interface",
	Long: `chathubCLI is a tool for user to interact with the chathub API.
User can use this application to:
- Register and login
- Join chat rooms and talk in real-time
- Send gifts and play with the room card-game bot

Use "chathubCLI command -help" or "chathubCLI command -h" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags = available to all subcommands
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8084", "API server URL")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath(), "config file path")

	// loadConfig() for now is load token from config file
	loadConfig()
}

type cliConfig struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".chathub/config.json"
	}
	return filepath.Join(home, ".chathub", "config.json")
}

// loadConfig reads the stored credentials, if any
func loadConfig() {
	data, err := os.ReadFile(defaultConfigPath())
	if err != nil {
		return // not logged in yet, that's fine
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return
	}
	accessToken = cfg.AccessToken
}

// saveConfig persists credentials to ~/.chathub/config.json
func saveConfig(cfg cliConfig) error {
	path := defaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
