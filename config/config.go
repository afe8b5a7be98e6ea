// Package config provides YAML scenario parsing for switchboard.
//
// A scenario describes a store (its groups and initial state), the channels
// to observe, and a list of steps to replay against it. The switchboard CLI
// uses scenarios to exercise stores without writing Go code.
//
// Example scenario:
//
//	groups: [ui, network]
//
//	initial_state:
//	  user:
//	    name: ${USER_NAME:-Alice}
//	  count: 0
//
//	watch:
//	  - group: state
//	    channel: changed
//
//	steps:
//	  - update: {count: 1}
//	  - update: {online: true}
//	    group: network
//	    channel: status
//	  - select: user.name
//	  - reset: {count: 0}
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/jpalmerr/switchboard"
)

// Config is the root structure of a scenario file.
//
// It maps directly to the YAML structure. Use [Load] or [Parse] to create one.
type Config struct {
	// Groups lists the channel groups the store starts with.
	// Accepts a list of names or a mapping whose keys are the names.
	Groups GroupsConfig `yaml:"groups"`

	// InitialState is the state the store is created with.
	// String values support environment variable substitution: ${VAR} or ${VAR:-default}
	InitialState map[string]any `yaml:"initial_state"`

	// Watch lists the channels whose emissions are reported.
	// Defaults to state/changed and state/reset.
	Watch []WatchConfig `yaml:"watch"`

	// Steps are replayed in order against the store.
	Steps []StepConfig `yaml:"steps"`
}

// GroupsConfig holds group names given either as a list or as a mapping.
//
// Both YAML forms are accepted:
//
//	groups: [ui, network]
//
//	groups:
//	  ui: {}
//	  network: {}
type GroupsConfig struct {
	// Names are the group names, in file order.
	Names []string
}

// WatchConfig names one channel to observe.
type WatchConfig struct {
	// Group is the group name. Required.
	Group string `yaml:"group"`

	// Channel is the channel name within the group. Required.
	Channel string `yaml:"channel"`
}

// StepKind identifies what a step does.
type StepKind string

const (
	StepUpdate StepKind = "update"
	StepSelect StepKind = "select"
	StepReset  StepKind = "reset"
)

// StepConfig is a single scenario step. Exactly one of update, select or
// reset must be present:
//
//	steps:
//	  - update: {count: 1}   # mapping merged into the state
//	    group: ui            # optional, defaults to state
//	    channel: click       # optional, defaults to changed
//	  - select: user.name    # path, list of keys, or null for everything
//	  - reset: {count: 0}    # null resets to an empty state
type StepConfig struct {
	// Kind is the step type.
	Kind StepKind

	// Value is the raw YAML value of the update, select or reset key.
	Value any

	// Group is the update target group. Only valid for update steps.
	Group string

	// Channel is the update target channel. Only valid for update steps.
	Channel string
}

// UnmarshalYAML implements yaml.Unmarshaler for GroupsConfig.
func (g *GroupsConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var names []string
		if err := node.Decode(&names); err != nil {
			return fmt.Errorf("groups: %w", err)
		}
		g.Names = names
		return nil

	case yaml.MappingNode:
		// keys and values alternate in node.Content
		names := make([]string, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var name string
			if err := node.Content[i].Decode(&name); err != nil {
				return fmt.Errorf("groups: %w", err)
			}
			names = append(names, name)
		}
		g.Names = names
		return nil

	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
	}

	return fmt.Errorf("groups must be a list or a mapping, got %s", nodeKindName(node))
}

// Spec converts the configured names into a [switchboard.GroupSpec].
func (g GroupsConfig) Spec() switchboard.GroupSpec {
	return switchboard.GroupNames(slices.Clone(g.Names))
}

// UnmarshalYAML implements yaml.Unmarshaler for StepConfig.
func (s *StepConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("step must be a mapping, got %s", nodeKindName(node))
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := node.Content[i+1]

		switch key {
		case string(StepUpdate), string(StepSelect), string(StepReset):
			if s.Kind != "" {
				return fmt.Errorf("step has both %q and %q", s.Kind, key)
			}
			s.Kind = StepKind(key)
			if err := value.Decode(&s.Value); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		case "group":
			if err := value.Decode(&s.Group); err != nil {
				return fmt.Errorf("group: %w", err)
			}
		case "channel":
			if err := value.Decode(&s.Channel); err != nil {
				return fmt.Errorf("channel: %w", err)
			}
		default:
			return fmt.Errorf("unknown step key %q", key)
		}
	}

	if s.Kind == "" {
		return errors.New("step must have one of update, select or reset")
	}
	return nil
}

// nodeKindName describes a YAML node for error messages.
func nodeKindName(node *yaml.Node) string {
	switch node.Kind {
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return fmt.Sprintf("scalar %q", node.Value)
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		varName := submatches[1]
		hasDefault := submatches[2] != ""

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return submatches[3]
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// expandValue expands environment variables in every string leaf of v.
// Mappings and lists are rebuilt; other values are returned unchanged.
func expandValue(v any) (any, error) {
	switch val := v.(type) {
	case string:
		return expandEnvVars(val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			expanded, err := expandValue(item)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = expanded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			expanded, err := expandValue(item)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}

// Load reads and parses a YAML scenario file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML scenario data.
//
// Environment variables are expanded in the string values of initial_state
// and of update and reset steps. If no watch entries are given, state/changed
// and state/reset are watched.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(cfg.Watch) == 0 {
		cfg.Watch = []WatchConfig{
			{Group: switchboard.DefaultGroup, Channel: switchboard.ChangedChannel},
			{Group: switchboard.DefaultGroup, Channel: switchboard.ResetChannel},
		}
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	for i, name := range c.Groups.Names {
		if name == "" {
			return fmt.Errorf("groups[%d]: name is required", i)
		}
	}

	if c.InitialState != nil {
		expanded, err := expandValue(c.InitialState)
		if err != nil {
			return fmt.Errorf("initial_state.%w", err)
		}
		c.InitialState = expanded.(map[string]any)
	}

	for i, w := range c.Watch {
		if w.Group == "" {
			return fmt.Errorf("watch[%d]: group is required", i)
		}
		if w.Channel == "" {
			return fmt.Errorf("watch[%d] (%s): channel is required", i, w.Group)
		}
	}

	for i := range c.Steps {
		step := &c.Steps[i]

		if step.Kind != StepUpdate && (step.Group != "" || step.Channel != "") {
			return fmt.Errorf("steps[%d] (%s): group and channel only apply to update steps", i, step.Kind)
		}

		switch step.Kind {
		case StepUpdate:
			if _, err := switchboard.UpdaterFrom(step.Value); err != nil {
				return fmt.Errorf("steps[%d] (update): %w", i, err)
			}
		case StepReset:
			if step.Value != nil {
				if _, ok := step.Value.(map[string]any); !ok {
					return fmt.Errorf("steps[%d] (reset): value must be a mapping or null, got %T", i, step.Value)
				}
			}
		case StepSelect:
			if _, err := switchboard.SelectorFrom(step.Value); err != nil {
				return fmt.Errorf("steps[%d] (select): %w", i, err)
			}
			continue
		}

		if step.Value != nil {
			expanded, err := expandValue(step.Value)
			if err != nil {
				return fmt.Errorf("steps[%d] (%s): %w", i, step.Kind, err)
			}
			step.Value = expanded
		}
	}

	return nil
}
