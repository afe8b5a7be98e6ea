// Package main is the entry point for the switchboard CLI.
//
// Switchboard is a library first. The CLI replays YAML scenarios against a
// store, which is handy for exploring how updates, resets and selections
// behave without writing Go code.
//
// Usage:
//
//	switchboard run -c scenario.yaml      # Replay a scenario and print emissions
//	switchboard validate -c scenario.yaml # Validate a scenario
//	switchboard version                   # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "Replay pub/sub state scenarios",
	Long: `Switchboard is an in-process publish/subscribe library with a small
state store on top.

This CLI builds a store from a YAML scenario, watches the configured
channels, replays the scenario steps and prints every emission and
selection as a YAML document.

Quick start:
  1. Create a scenario file (scenario.yaml)
  2. Run: switchboard run -c scenario.yaml

Example scenario:
  groups: [ui]
  initial_state:
    count: 0
  steps:
    - update: {count: 1}
    - select: count
    - reset: {}`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this switchboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "switchboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
