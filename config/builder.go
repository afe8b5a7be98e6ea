package config

import (
	"fmt"

	"github.com/jpalmerr/switchboard"
)

// BuildStore creates the store described by cfg.
//
// opts are passed through to [switchboard.NewStore], typically to set a logger.
func BuildStore(cfg *Config, opts ...switchboard.StoreOption) (*switchboard.Store, error) {
	store, err := switchboard.NewStore(switchboard.State(cfg.InitialState), cfg.Groups.Spec(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	return store, nil
}

// Step is a scenario step converted to library values, ready to apply.
type Step struct {
	// Kind is the step type.
	Kind StepKind

	// Updater is set for update steps.
	Updater switchboard.Updater

	// Target holds the update options for update steps.
	Target []switchboard.UpdateOption

	// Selector is set for select steps. nil selects the whole state.
	Selector switchboard.Selector

	// State is the new state for reset steps.
	State switchboard.State
}

// Outcome is the result of applying a [Step].
type Outcome struct {
	// Kind is the step type.
	Kind StepKind

	// State is the store state after the step.
	State switchboard.State

	// Selected is the selection result for select steps.
	Selected any
}

// BuildSteps converts the configured steps to [Step] values.
//
// Update values go through [switchboard.UpdaterFrom] and select values
// through [switchboard.SelectorFrom], so anything the library would reject
// is rejected here.
func BuildSteps(cfg *Config) ([]Step, error) {
	steps := make([]Step, 0, len(cfg.Steps))

	for i, sc := range cfg.Steps {
		step, err := buildStep(sc)
		if err != nil {
			return nil, fmt.Errorf("steps[%d] (%s): %w", i, sc.Kind, err)
		}
		steps = append(steps, step)
	}

	return steps, nil
}

// buildStep converts a single StepConfig to a Step.
func buildStep(sc StepConfig) (Step, error) {
	step := Step{Kind: sc.Kind}

	switch sc.Kind {
	case StepUpdate:
		u, err := switchboard.UpdaterFrom(sc.Value)
		if err != nil {
			return Step{}, err
		}
		step.Updater = u
		if sc.Group != "" {
			step.Target = append(step.Target, switchboard.OnGroup(sc.Group))
		}
		if sc.Channel != "" {
			step.Target = append(step.Target, switchboard.OnChannel(sc.Channel))
		}

	case StepSelect:
		sel, err := switchboard.SelectorFrom(sc.Value)
		if err != nil {
			return Step{}, err
		}
		step.Selector = sel

	case StepReset:
		if sc.Value != nil {
			m, ok := sc.Value.(map[string]any)
			if !ok {
				return Step{}, fmt.Errorf("reset value must be a mapping or null, got %T", sc.Value)
			}
			step.State = switchboard.State(m)
		}

	default:
		return Step{}, fmt.Errorf("unknown step kind %q", sc.Kind)
	}

	return step, nil
}

// Apply runs the step against store.
func (s Step) Apply(store *switchboard.Store) (Outcome, error) {
	out := Outcome{Kind: s.Kind}

	switch s.Kind {
	case StepUpdate:
		next, err := store.Update(s.Updater, s.Target...)
		if err != nil {
			return Outcome{}, err
		}
		out.State = next

	case StepSelect:
		out.Selected = store.Select(s.Selector)
		out.State = store.State()

	case StepReset:
		out.State = store.Reset(s.State)

	default:
		return Outcome{}, fmt.Errorf("unknown step kind %q", s.Kind)
	}

	return out, nil
}

// Watch connects fn to every channel in cfg.Watch. fn receives the watched
// group and channel names along with the emitted arguments.
//
// The returned function disconnects everything Watch connected.
func Watch(store *switchboard.Store, cfg *Config, fn func(group, channel string, args []any)) (func(), error) {
	var disconnects []switchboard.Disconnect

	disconnectAll := func() {
		for _, d := range disconnects {
			d()
		}
	}

	for _, w := range cfg.Watch {
		group, channel := w.Group, w.Channel
		_, d, err := store.ConnectFunc(group, channel, func(args ...any) error {
			fn(group, channel, args)
			return nil
		})
		if err != nil {
			disconnectAll()
			return nil, fmt.Errorf("watch %s/%s: %w", group, channel, err)
		}
		disconnects = append(disconnects, d)
	}

	return disconnectAll, nil
}
