package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information (injected at compile time via ldflags)
var (
	Version = "dev"
)

const defaultAPIAddr = "http://localhost:4096"

var (
	apiAddr    string
	authToken  string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "zerobyte",
	Short:         "Manage backup volumes and their mounts",
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		SetJSONOutput(jsonOutput)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiAddr, "api", defaultAPIAddr, "volume service API address")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "API auth token")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON instead of styled text")

	rootCmd.AddCommand(volumeCmd)
	rootCmd.AddCommand(secretCmd)
	rootCmd.AddCommand(serveCmd)
}

func newClient() *Client {
	return NewClient(apiAddr, authToken)
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println()
		PrintError(err)
		fmt.Println()
		os.Exit(1)
	}
}
