package main

import (
	"fmt"

	"github.com/jpalmerr/switchboard/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a scenario file without replaying it.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a scenario file",
	Long: `Validate a switchboard scenario file without replaying it.

This command parses the YAML, expands environment variables, and checks
every group, watch entry and step. It's useful for CI pipelines that keep
scenarios next to the code they describe.

Exit codes:
  0 - Scenario is valid
  1 - Scenario is invalid (error details printed to stderr)

Example:
  switchboard validate -c scenario.yaml
  switchboard validate --config ./testdata/login.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to scenario file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	if _, err := config.BuildSteps(cfg); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scenario is valid!\n")
	fmt.Fprintf(out, "  Groups:        %d (+ state)\n", len(cfg.Groups.Names))
	fmt.Fprintf(out, "  Initial keys:  %d\n", len(cfg.InitialState))
	fmt.Fprintf(out, "  Watched:       %d channels\n", len(cfg.Watch))
	fmt.Fprintf(out, "  Steps:         %d\n", len(cfg.Steps))

	return nil
}
