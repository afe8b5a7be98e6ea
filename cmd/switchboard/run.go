package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/jpalmerr/switchboard"
	"github.com/jpalmerr/switchboard/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newLogger creates a JSON logger for CLI use.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// runCmd replays a scenario against a fresh store.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a scenario",
	Long: `Replay a switchboard scenario.

The command will:
  - Load the scenario from the specified YAML file
  - Build a store with the configured groups and initial state
  - Watch the configured channels (default: state/changed and state/reset)
  - Apply every step in order

Each emission on a watched channel and each select step is printed to
stdout as a YAML document. Logs, including listener failures, go to
stderr as JSON.

Example:
  switchboard run -c scenario.yaml
  switchboard run -c scenario.yaml --verbose`,
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to scenario file (required)")
	runCmd.Flags().BoolP("verbose", "v", false, "enable debug logging")
	_ = runCmd.MarkFlagRequired("config")
}

// emitRecord is printed for every emission on a watched channel.
type emitRecord struct {
	Event   string            `yaml:"event"`
	Group   string            `yaml:"group"`
	Channel string            `yaml:"channel"`
	Next    switchboard.State `yaml:"next"`
	Prev    switchboard.State `yaml:"prev"`
}

// selectRecord is printed for every select step.
type selectRecord struct {
	Event    string `yaml:"event"`
	Step     int    `yaml:"step"`
	Selected any    `yaml:"selected"`
}

func runRun(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger := newLogger(cmd.ErrOrStderr(), verbose)

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	steps, err := config.BuildSteps(cfg)
	if err != nil {
		return fmt.Errorf("failed to build steps: %w", err)
	}

	store, err := config.BuildStore(cfg, switchboard.WithStoreLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("scenario loaded",
		"groups", store.Groups(),
		"watch", len(cfg.Watch),
		"steps", len(steps),
	)

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)

	var (
		encErr  error
		encoded bool
	)
	encode := func(r any) {
		if encErr != nil {
			return
		}
		encErr = enc.Encode(r)
		encoded = true
	}

	stop, err := config.Watch(store, cfg, func(group, channel string, emitted []any) {
		r := emitRecord{Event: "emit", Group: group, Channel: channel}
		if len(emitted) == 2 {
			r.Next, _ = emitted[0].(switchboard.State)
			r.Prev, _ = emitted[1].(switchboard.State)
		}
		encode(r)
	})
	if err != nil {
		return err
	}
	defer stop()

	for i, step := range steps {
		out, err := step.Apply(store)
		if err != nil {
			return fmt.Errorf("steps[%d] (%s): %w", i, step.Kind, err)
		}
		if step.Kind == config.StepSelect {
			encode(selectRecord{Event: "select", Step: i, Selected: out.Selected})
		}
		if encErr != nil {
			return fmt.Errorf("failed to write output: %w", encErr)
		}
	}

	// only a started stream has an end to write
	if encoded {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	logger.Info("scenario complete", "keys", len(store.State()))
	return nil
}
