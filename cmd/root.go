package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "api-test-engine",
	Short: "Synthesizes and executes API test batteries",
	Long: `api-test-engine extracts endpoint metadata from annotated controller
source (or a live OpenAPI document), synthesizes functional, validation,
boundary and exception test cases, executes them against a running HTTP
target and writes multi-format reports.

Examples:
  api-test-engine extract --source UserController.java
  api-test-engine run --source UserController.java --base-url http://localhost:8080
  api-test-engine run --openapi --concurrent`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "Path to the run configuration file")
}
