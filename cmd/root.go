package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcp-monitoring",
	Short: "MCP server for Prometheus metrics and Alertmanager alerts",
	Long: `mcp-monitoring is a Model Context Protocol (MCP) server that gives AI
assistants access to a Prometheus server and an Alertmanager.

It exposes tools to run PromQL queries, check Prometheus health, list and
silence alerts, read resources such as the firing alerts and a dashboard
overview, and generate alert and performance analysis prompts.

Running mcp-monitoring without a subcommand is the same as running
"mcp-monitoring serve".`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version for the root command
func SetVersion(version string) {
	rootCmd.Version = version
}

func init() {
	serveCmd := newServeCmd()

	// The root command serves by default and accepts the same flags.
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())
	rootCmd.RunE = serveCmd.RunE

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newVersionCmd())
}
