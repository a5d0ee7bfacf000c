package flow

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// Opts holds optional Engine configuration.
type Opts struct {
	Catalog    *Catalog
	Tables     *DefaultsTables
	Inferences *InferenceTable
}

// Option configures an Engine.
type Option func(*Opts)

// WithCatalog replaces the built-in service catalog.
func WithCatalog(c Catalog) Option {
	return func(o *Opts) { o.Catalog = &c }
}

// WithDefaultsTables replaces the built-in smart-default tables.
func WithDefaultsTables(t DefaultsTables) Option {
	return func(o *Opts) {
		clone := t.Clone()
		o.Tables = &clone
	}
}

// WithInferenceTable replaces the built-in inference pattern table.
func WithInferenceTable(t *InferenceTable) Option {
	return func(o *Opts) { o.Inferences = t }
}

// Engine resolves steps, validates required fields, reports progress and applies
// smart defaults over an immutable Registry.
type Engine struct {
	registry   *Registry
	catalog    Catalog
	tables     DefaultsTables
	inferences *InferenceTable
}

// ValidationResult reports whether a step's required fields are satisfied.
type ValidationResult struct {
	Valid         bool             `json:"valid"`
	MissingFields []models.FieldID `json:"missing_fields"`
}

// Outcome is the result of Advance.
type Outcome struct {
	// Step is the step that was evaluated.
	Step models.StepID `json:"step"`
	// Next is the step to ask next. Empty when fields are missing or the flow is done.
	Next models.StepID `json:"next,omitempty"`
	// Terminal is set when Step is the confirmation step and it was satisfied.
	Terminal bool `json:"terminal"`
	// MissingFields lists the fields to re-prompt for; the dialog must not move on.
	MissingFields []models.FieldID `json:"missing_fields,omitempty"`
	// Progress is the completion percentage after this turn.
	Progress int `json:"progress"`
}

// Advanced reports whether the dialog may move past Step.
func (o Outcome) Advanced() bool {
	return len(o.MissingFields) == 0
}

// NewEngine creates an Engine over reg.
func NewEngine(reg *Registry, opts ...Option) *Engine {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{registry: reg, catalog: DefaultCatalog(), tables: DefaultTables(), inferences: DefaultInferenceTable()}
	if cfg.Catalog != nil {
		e.catalog = *cfg.Catalog
	}
	if cfg.Tables != nil {
		e.tables = *cfg.Tables
	}
	if cfg.Inferences != nil {
		e.inferences = cfg.Inferences
	}
	slog.Debug("flow.NewEngine: engine created", "hasRegistry", reg != nil, "customCatalog", cfg.Catalog != nil, "customTables", cfg.Tables != nil)
	return e
}

// Registry returns the flow registry the engine resolves against.
func (e *Engine) Registry() *Registry { return e.registry }

// Catalog returns the service catalog.
func (e *Engine) Catalog() Catalog { return e.catalog }

// Inferences returns the inference pattern table.
func (e *Engine) Inferences() *InferenceTable { return e.inferences }

// FlowConfig returns the flow for st.
func (e *Engine) FlowConfig(st models.ServiceType) (FlowConfig, error) {
	return e.registry.FlowConfig(st)
}

// Step returns a step descriptor for rendering.
func (e *Engine) Step(st models.ServiceType, id models.StepID) (FlowStep, bool) {
	return e.registry.Step(st, id)
}

// NextStep returns the step that follows current given the data collected so far.
// ok is false when current is terminal or unknown; that is the only terminal signal.
// The result depends only on the arguments.
func (e *Engine) NextStep(st models.ServiceType, current models.StepID, data models.IntakeData) (next models.StepID, ok bool) {
	fc, found := e.registry.flow(st)
	if !found {
		slog.Error("Engine.NextStep: unknown service type", "serviceType", st, "step", current)
		return "", false
	}
	step, found := fc.Step(current)
	if !found {
		slog.Error("Engine.NextStep: unknown step", "serviceType", st, "step", current)
		return "", false
	}
	if step.IsTerminal {
		return "", false
	}
	next = step.Next.Resolve(data)
	slog.Debug("Engine.NextStep: resolved", "serviceType", st, "from", current, "to", next, "edge", step.Next.Kind)
	return next, next != ""
}

// ValidateStep checks the required fields of a step against data. A field is missing
// when it is absent, a whitespace-only string, or an empty list. false and 0 are present.
func (e *Engine) ValidateStep(st models.ServiceType, id models.StepID, data models.IntakeData) ValidationResult {
	step, found := e.registry.Step(st, id)
	if !found {
		slog.Error("Engine.ValidateStep: unknown step", "serviceType", st, "step", id)
		return ValidationResult{Valid: true, MissingFields: []models.FieldID{}}
	}
	missing := missingFields(step.RequiredFields, data)
	return ValidationResult{Valid: len(missing) == 0, MissingFields: missing}
}

// Progress returns round((index(current)+1) / len(steps) * 100), or 0 when current is
// not part of the flow.
func (e *Engine) Progress(st models.ServiceType, current models.StepID) int {
	fc, found := e.registry.flow(st)
	if !found {
		slog.Error("Engine.Progress: unknown service type", "serviceType", st)
		return 0
	}
	idx := fc.Index(current)
	if idx < 0 {
		return 0
	}
	return int(math.Round(float64(idx+1) / float64(len(fc.Steps)) * 100))
}

// ApplySmartDefaults returns a copy of data with derived fields filled in. Fields the
// caller already set are never overwritten. An unknown service type, or data of another
// service, is returned unchanged and logged.
func (e *Engine) ApplySmartDefaults(st models.ServiceType, data models.IntakeData) models.IntakeData {
	if !models.IsValidServiceType(st) {
		slog.Error("Engine.ApplySmartDefaults: unknown service type", "serviceType", st)
		return data
	}
	if data == nil {
		empty, err := models.NewData(st)
		if err != nil {
			slog.Error("Engine.ApplySmartDefaults: cannot create data shape", "serviceType", st, "error", err)
			return data
		}
		data = empty
	}
	if data.Service() != st {
		slog.Error("Engine.ApplySmartDefaults: data belongs to another service", "serviceType", st, "dataService", data.Service())
		return data
	}
	return e.tables.applyDefaults(data)
}

// Advance validates the current step and, only if it is satisfied, resolves the next one.
// Missing fields are reported in the Outcome, not as an error. Errors signal a
// configuration fault: an unknown service or step, or data of another service.
func (e *Engine) Advance(st models.ServiceType, current models.StepID, data models.IntakeData) (Outcome, error) {
	fc, found := e.registry.flow(st)
	if !found {
		slog.Error("Engine.Advance: unknown service type", "serviceType", st)
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownService, st)
	}
	step, found := fc.Step(current)
	if !found {
		slog.Error("Engine.Advance: unknown step", "serviceType", st, "step", current)
		return Outcome{}, fmt.Errorf("%w: %q in %s", ErrUnknownStep, current, st)
	}
	if data != nil && data.Service() != st {
		slog.Error("Engine.Advance: data belongs to another service", "serviceType", st, "dataService", data.Service())
		return Outcome{}, fmt.Errorf("%w: %s data for %s", models.ErrServiceMismatch, data.Service(), st)
	}

	out := Outcome{Step: current}
	if missing := missingFields(step.RequiredFields, data); len(missing) > 0 {
		slog.Debug("Engine.Advance: required fields missing", "serviceType", st, "step", current, "missing", missing)
		out.MissingFields = missing
		out.Progress = e.Progress(st, current)
		return out, nil
	}
	if step.IsTerminal {
		out.Terminal = true
		out.Progress = 100
		return out, nil
	}
	out.Next = step.Next.Resolve(data)
	out.Progress = e.Progress(st, out.Next)
	slog.Debug("Engine.Advance: advanced", "serviceType", st, "from", current, "to", out.Next, "progress", out.Progress)
	return out, nil
}

func missingFields(required []models.FieldID, data models.IntakeData) []models.FieldID {
	missing := []models.FieldID{}
	for _, f := range required {
		var (
			v  any
			ok bool
		)
		if data != nil {
			v, ok = data.Lookup(f)
		}
		if !ok || isEmptyValue(v) {
			missing = append(missing, f)
		}
	}
	return missing
}
