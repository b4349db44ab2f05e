package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "dev"
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "workday",
	Short: "Workday - Working-time reports from machine activity",
	Long: `Workday reconstructs your active-computer-usage timeline from session
state-change events (suspend/resume, logind sessions) and reports the
working blocks of each calendar day.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default to report command when no subcommand is provided
		return runReport(cmd, args)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: user config dir)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
