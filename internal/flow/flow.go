// Package flow implements the creative intake flow engine: the flow registry, step
// resolution, required-field validation, progress and smart defaults.
//
// Everything in this package is a pure function of its arguments and of immutable
// configuration injected at construction time, so a single Engine can serve any number
// of concurrent sessions without locking.
package flow

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// Error variables for registry lookups.
var (
	ErrUnknownService = errors.New("unknown service type")
	ErrUnknownStep    = errors.New("unknown step")
)

// ConfigError lists every integrity problem found while building a Registry.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid flow configuration: %s", strings.Join(e.Problems, "; "))
}

// Registry is the immutable set of flows, one per service type.
type Registry struct {
	flows map[models.ServiceType]FlowConfig
}

// NewRegistry validates flows and builds a Registry. Every service type in
// models.ServiceTypes must be covered exactly once.
func NewRegistry(flows ...FlowConfig) (*Registry, error) {
	slog.Debug("flow.NewRegistry: building registry", "flows", len(flows))
	var problems []string
	reg := &Registry{flows: make(map[models.ServiceType]FlowConfig, len(flows))}

	for _, fc := range flows {
		if _, dup := reg.flows[fc.ServiceType]; dup {
			problems = append(problems, fmt.Sprintf("%s: duplicate flow", fc.ServiceType))
			continue
		}
		problems = append(problems, checkFlow(fc)...)
		reg.flows[fc.ServiceType] = cloneFlow(fc)
	}
	for _, st := range models.ServiceTypes {
		if _, ok := reg.flows[st]; !ok {
			problems = append(problems, fmt.Sprintf("%s: no flow defined", st))
		}
	}

	if len(problems) > 0 {
		err := &ConfigError{Problems: problems}
		slog.Error("flow.NewRegistry: invalid flow configuration", "problems", len(problems), "error", err)
		return nil, err
	}
	slog.Debug("flow.NewRegistry: registry ready", "flows", len(reg.flows))
	return reg, nil
}

// DefaultRegistry builds the registry of built-in flows.
func DefaultRegistry() (*Registry, error) {
	return NewRegistry(DefaultFlows()...)
}

// MustDefaultRegistry is DefaultRegistry that panics on a malformed built-in flow.
func MustDefaultRegistry() *Registry {
	reg, err := DefaultRegistry()
	if err != nil {
		panic(err)
	}
	return reg
}

// DefaultFlows returns fresh copies of the built-in flows in catalog order.
func DefaultFlows() []FlowConfig {
	return []FlowConfig{
		launchVideoFlow(),
		videoEditFlow(),
		pitchDeckFlow(),
		brandPackageFlow(),
		socialAdsFlow(),
		socialContentFlow(),
	}
}

// FlowConfig returns a copy of the flow for st.
func (r *Registry) FlowConfig(st models.ServiceType) (FlowConfig, error) {
	fc, ok := r.flows[st]
	if !ok {
		return FlowConfig{}, fmt.Errorf("%w: %q", ErrUnknownService, st)
	}
	return cloneFlow(fc), nil
}

// Step returns the step id of the flow for st.
func (r *Registry) Step(st models.ServiceType, id models.StepID) (FlowStep, bool) {
	fc, ok := r.flows[st]
	if !ok {
		return FlowStep{}, false
	}
	step, ok := fc.Step(id)
	if !ok {
		return FlowStep{}, false
	}
	return cloneStep(step), true
}

// flow returns the stored flow without copying. Callers must not modify it.
func (r *Registry) flow(st models.ServiceType) (FlowConfig, bool) {
	fc, ok := r.flows[st]
	return fc, ok
}

// checkFlow reports integrity problems of a single flow.
func checkFlow(fc FlowConfig) []string {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf("%s: ", fc.ServiceType)+fmt.Sprintf(format, args...))
	}

	if !models.IsValidServiceType(fc.ServiceType) {
		add("not a known service type")
		return problems
	}
	if len(fc.Steps) == 0 {
		add("flow has no steps")
		return problems
	}

	index := make(map[models.StepID]int, len(fc.Steps))
	for i, s := range fc.Steps {
		if s.ID == "" {
			add("step %d has an empty id", i)
			continue
		}
		if _, dup := index[s.ID]; dup {
			add("duplicate step id %q", s.ID)
			continue
		}
		index[s.ID] = i
	}
	if _, ok := index[fc.InitialStep]; !ok {
		add("initial step %q not found", fc.InitialStep)
	}

	terminals := 0
	for i, s := range fc.Steps {
		for _, f := range append(append([]models.FieldID{}, s.RequiredFields...), s.Question.Fields()...) {
			if !models.HasField(fc.ServiceType, f) {
				add("step %q references unknown field %q", s.ID, f)
			}
		}

		if s.IsTerminal {
			terminals++
			if s.Next.Kind != TransitionNone {
				add("terminal step %q has an outgoing transition", s.ID)
			}
			if s.QuestionType != models.QuestionConfirmation {
				add("terminal step %q must be a confirmation", s.ID)
			}
			continue
		}
		if s.QuestionType == models.QuestionConfirmation {
			add("confirmation step %q must be terminal", s.ID)
		}

		switch s.Next.Kind {
		case TransitionStatic:
		case TransitionPredicate:
			if s.Next.When == nil {
				add("step %q has a predicate transition without a predicate", s.ID)
			} else if !models.HasField(fc.ServiceType, s.Next.When.Field) {
				add("step %q branches on unknown field %q", s.ID, s.Next.When.Field)
			}
		default:
			add("step %q has no outgoing transition", s.ID)
			continue
		}
		for _, target := range s.Next.Targets() {
			j, ok := index[target]
			switch {
			case !ok:
				add("step %q transitions to unknown step %q", s.ID, target)
			case j <= i:
				// Forward-only edges keep every path finite and progress non-decreasing.
				add("step %q transitions backwards to %q", s.ID, target)
			}
		}
	}
	if terminals != 1 {
		add("expected exactly one terminal step, found %d", terminals)
	}
	return problems
}

func cloneFlow(fc FlowConfig) FlowConfig {
	out := fc
	out.Steps = make([]FlowStep, len(fc.Steps))
	for i, s := range fc.Steps {
		out.Steps[i] = cloneStep(s)
	}
	return out
}

func cloneStep(s FlowStep) FlowStep {
	out := s
	out.RequiredFields = append([]models.FieldID(nil), s.RequiredFields...)
	out.Question.Options = append([]Choice(nil), s.Question.Options...)
	if s.Question.Items != nil {
		out.Question.Items = make([]SubQuestion, len(s.Question.Items))
		for i, item := range s.Question.Items {
			item.Options = append([]Choice(nil), item.Options...)
			out.Question.Items[i] = item
		}
	}
	if s.Next.When != nil {
		p := *s.Next.When
		out.Next.When = &p
	}
	return out
}
