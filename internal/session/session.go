// Package session drives intake dialogs: it owns IntakeState, persists it through a
// store and calls the flow engine once per user turn.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/BTreeMap/IntakeFlow/internal/store"
	"github.com/BTreeMap/IntakeFlow/internal/util"
)

// Error variables for session operations
var (
	ErrSessionNotFound        = errors.New("session not found")
	ErrNoServiceSelected      = errors.New("no service selected for session")
	ErrServiceAlreadySelected = errors.New("session already has a service; reset it first")
	ErrSessionComplete        = errors.New("session is already complete")
	ErrInvalidAnswer          = errors.New("invalid answer data")
)

// WelcomeMessage opens every session.
const WelcomeMessage = "Hi! What would you like us to create for you?"

// CompletionMessage closes a confirmed session.
const CompletionMessage = "Thanks! Your brief is complete and on its way to the team."

// Opts holds optional Service configuration.
type Opts struct {
	Now   func() time.Time
	NewID func() string
}

// Option configures a Service.
type Option func(*Opts)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Opts) { o.Now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(newID func() string) Option {
	return func(o *Opts) { o.NewID = newID }
}

// Service is the dialog driver. It is safe for concurrent use; turns on the same
// session are serialized.
type Service struct {
	engine *flow.Engine
	store  store.Store
	now    func() time.Time
	newID  func() string

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

// sessionLock serialises turns on one session. It is dropped from the map when
// the last holder or waiter releases it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// TurnResult is returned from operations that advance a dialog.
type TurnResult struct {
	State   *models.IntakeState `json:"state"`
	Outcome *flow.Outcome       `json:"outcome,omitempty"`
	// Prompt is the step the user should answer next; nil once the session is complete.
	Prompt *flow.FlowStep `json:"prompt,omitempty"`
}

// NewService creates a dialog driver over engine and st.
func NewService(engine *flow.Engine, st store.Store, opts ...Option) *Service {
	cfg := Opts{Now: time.Now, NewID: util.GenerateSessionID}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Service{
		engine: engine,
		store:  st,
		now:    cfg.Now,
		newID:  cfg.NewID,
		locks:  make(map[string]*sessionLock),
	}
}

// Engine returns the flow engine the service drives.
func (s *Service) Engine() *flow.Engine { return s.engine }

func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

// lockCount reports how many sessions currently hold or wait on a lock.
func (s *Service) lockCount() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	return len(s.locks)
}

func (s *Service) timestamp() time.Time { return s.now().UTC() }

// Start creates an empty session awaiting service selection.
func (s *Service) Start(ctx context.Context) (*models.IntakeState, error) {
	now := s.timestamp()
	state := models.IntakeState{
		ID:    s.newID(),
		Stage: models.IntakeStageServiceSelection,
		Messages: []models.Message{
			{Role: models.RoleAssistant, Content: WelcomeMessage, CreatedAt: now},
		},
		CompletionPercentage: StageProgress(models.IntakeStageServiceSelection),
		StartedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.SaveIntakeState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	slog.Info("Service.Start: session created", "id", state.ID)
	return &state, nil
}

// Get loads a session.
func (s *Service) Get(ctx context.Context, id string) (*models.IntakeState, error) {
	state, err := s.store.GetIntakeState(ctx, id)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return state, nil
}

// List returns every stored session, most recently updated first.
func (s *Service) List(ctx context.Context) ([]models.IntakeState, error) {
	return s.store.ListIntakeStates(ctx)
}

// Delete removes a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteIntakeState(ctx, id); err != nil {
		return err
	}
	slog.Info("Service.Delete: session deleted", "id", id)
	return nil
}

// PurgeIdle deletes sessions that have not been updated for longer than maxIdle and
// returns how many were removed. A non-positive maxIdle purges nothing.
func (s *Service) PurgeIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	if maxIdle <= 0 {
		return 0, nil
	}
	states, err := s.store.ListIntakeStates(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.timestamp().Add(-maxIdle)
	purged := 0
	for _, state := range states {
		if !state.UpdatedAt.Before(cutoff) {
			continue
		}
		ok, err := s.purgeIfIdle(ctx, state.ID, cutoff)
		if err != nil {
			return purged, fmt.Errorf("failed to purge session %s: %w", state.ID, err)
		}
		if ok {
			purged++
		}
	}
	if purged > 0 {
		slog.Info("Service.PurgeIdle: idle sessions purged", "count", purged, "maxIdle", maxIdle)
	}
	return purged, nil
}

// purgeIfIdle re-reads the session under its lock so a turn that landed after the
// listing keeps it alive.
func (s *Service) purgeIfIdle(ctx context.Context, id string, cutoff time.Time) (bool, error) {
	unlock := s.lock(id)
	defer unlock()
	current, err := s.store.GetIntakeState(ctx, id)
	if err != nil {
		return false, err
	}
	if current == nil || !current.UpdatedAt.Before(cutoff) {
		return false, nil
	}
	if err := s.store.DeleteIntakeState(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// Prompt returns the step the session is waiting on, if any.
func (s *Service) Prompt(state *models.IntakeState) *flow.FlowStep {
	if state == nil || state.ServiceType == nil || state.Stage == models.IntakeStageComplete {
		return nil
	}
	step, ok := s.engine.Step(*state.ServiceType, state.CurrentStep)
	if !ok {
		return nil
	}
	return &step
}

// SelectService chooses the service for a session and moves it to the flow's first step.
// Selecting the service a session already has is a no-op.
func (s *Service) SelectService(ctx context.Context, id string, st models.ServiceType) (*TurnResult, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.ServiceType != nil {
		if *state.ServiceType == st {
			return &TurnResult{State: state, Prompt: s.Prompt(state)}, nil
		}
		return nil, ErrServiceAlreadySelected
	}
	fc, err := s.engine.FlowConfig(st)
	if err != nil {
		return nil, err
	}
	data, err := models.NewData(st)
	if err != nil {
		return nil, err
	}
	initial, _ := fc.Step(fc.InitialStep)

	now := s.timestamp()
	label := string(st)
	if info, ok := s.engine.Catalog().Get(st); ok {
		label = info.Label
	}
	state.ServiceType = &st
	state.Data = data
	state.Stage = models.IntakeStageGathering
	state.CurrentStep = fc.InitialStep
	state.CompletionPercentage = 0
	state.Messages = append(state.Messages,
		models.Message{Role: models.RoleUser, Content: label, CreatedAt: now},
		models.Message{Role: models.RoleAssistant, Content: flow.RenderText(initial), Step: initial.ID, CreatedAt: now},
	)
	state.UpdatedAt = now

	if err := s.store.SaveIntakeState(ctx, *state); err != nil {
		return nil, err
	}
	slog.Info("Service.SelectService: service selected", "id", id, "serviceType", st, "step", fc.InitialStep)
	return &TurnResult{State: state, Prompt: &initial}, nil
}

// Submit records one user turn for the current step. fragment is a JSON merge patch
// applied to the collected data; message is the user's raw text for the transcript.
// Missing required fields keep the session on the current step and are reported in
// the outcome.
func (s *Service) Submit(ctx context.Context, id string, fragment []byte, message string) (*TurnResult, error) {
	unlock := s.lock(id)
	defer unlock()

	state, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if state.ServiceType == nil {
		return nil, ErrNoServiceSelected
	}
	if state.Stage == models.IntakeStageComplete {
		return nil, ErrSessionComplete
	}
	st := *state.ServiceType

	data := state.Data
	if data == nil {
		if data, err = models.NewData(st); err != nil {
			return nil, err
		}
	}
	if len(fragment) > 0 {
		merged, err := models.MergeData(data, fragment)
		if err != nil {
			slog.Warn("Service.Submit: rejected answer data", "id", id, "step", state.CurrentStep, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
		}
		data = merged
	}

	out, err := s.engine.Advance(st, state.CurrentStep, data)
	if err != nil {
		slog.Error("Service.Submit: engine rejected turn", "id", id, "serviceType", st, "step", state.CurrentStep, "error", err)
		return nil, err
	}

	now := s.timestamp()
	userText := strings.TrimSpace(message)
	if userText == "" {
		userText = string(fragment)
	}
	state.Messages = append(state.Messages, models.Message{Role: models.RoleUser, Content: userText, Step: state.CurrentStep, CreatedAt: now})
	state.Data = data
	state.UpdatedAt = now

	switch {
	case !out.Advanced():
		current, _ := s.engine.Step(st, state.CurrentStep)
		state.Messages = append(state.Messages, models.Message{
			Role:      models.RoleAssistant,
			Content:   missingPrompt(current, out.MissingFields),
			Step:      current.ID,
			CreatedAt: now,
		})
		slog.Debug("Service.Submit: waiting for required fields", "id", id, "step", state.CurrentStep, "missing", out.MissingFields)

	case out.Terminal:
		state.Data = s.engine.ApplySmartDefaults(st, state.Data)
		state.Stage = models.IntakeStageComplete
		state.CompletionPercentage = 100
		state.Messages = append(state.Messages, models.Message{Role: models.RoleAssistant, Content: CompletionMessage, Step: state.CurrentStep, CreatedAt: now})
		slog.Info("Service.Submit: session complete", "id", id, "serviceType", st)

	default:
		next, ok := s.engine.Step(st, out.Next)
		if !ok {
			return nil, fmt.Errorf("%w: %q in %s", flow.ErrUnknownStep, out.Next, st)
		}
		state.CurrentStep = next.ID
		state.CompletionPercentage = out.Progress
		state.Stage = models.IntakeStageGathering
		if next.IsTerminal {
			state.Stage = models.IntakeStageReview
			state.Data = s.engine.ApplySmartDefaults(st, state.Data)
		}
		state.Messages = append(state.Messages, models.Message{Role: models.RoleAssistant, Content: flow.RenderText(next), Step: next.ID, CreatedAt: now})
		slog.Debug("Service.Submit: advanced", "id", id, "from", out.Step, "to", next.ID, "progress", out.Progress)
	}

	if err := s.store.SaveIntakeState(ctx, *state); err != nil {
		return nil, err
	}
	return &TurnResult{State: state, Outcome: &out, Prompt: s.Prompt(state)}, nil
}

// Reset clears a session back to service selection, keeping its id.
func (s *Service) Reset(ctx context.Context, id string) (*models.IntakeState, error) {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	now := s.timestamp()
	state := models.IntakeState{
		ID:    id,
		Stage: models.IntakeStageServiceSelection,
		Messages: []models.Message{
			{Role: models.RoleAssistant, Content: WelcomeMessage, CreatedAt: now},
		},
		CompletionPercentage: StageProgress(models.IntakeStageServiceSelection),
		StartedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.SaveIntakeState(ctx, state); err != nil {
		return nil, err
	}
	slog.Info("Service.Reset: session reset", "id", id)
	return &state, nil
}

func missingPrompt(step flow.FlowStep, missing []models.FieldID) string {
	names := make([]string, len(missing))
	for i, f := range missing {
		names[i] = string(f)
		for _, item := range step.Question.Items {
			if item.Field == f {
				names[i] = item.Label
			}
		}
	}
	return "I still need: " + strings.Join(names, ", ") + "\n\n" + flow.RenderText(step)
}
