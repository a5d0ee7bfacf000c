package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// InMemoryStore keeps sessions in a map. States are copied on the way in and out
// so callers never share memory with the store.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]byte)}
}

func (s *InMemoryStore) SaveIntakeState(_ context.Context, state models.IntakeState) error {
	if state.ID == "" {
		return fmt.Errorf("intake state id is empty")
	}
	raw, err := json.Marshal(state)
	if err != nil {
		slog.Error("InMemoryStore.SaveIntakeState: marshal failed", "error", err, "id", state.ID)
		return fmt.Errorf("failed to encode intake state %s: %w", state.ID, err)
	}
	s.mu.Lock()
	s.sessions[state.ID] = raw
	s.mu.Unlock()
	slog.Debug("InMemoryStore.SaveIntakeState: saved", "id", state.ID, "stage", state.Stage)
	return nil
}

func (s *InMemoryStore) GetIntakeState(_ context.Context, id string) (*models.IntakeState, error) {
	s.mu.RLock()
	raw, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var state models.IntakeState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode intake state %s: %w", id, err)
	}
	return &state, nil
}

func (s *InMemoryStore) DeleteIntakeState(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	slog.Debug("InMemoryStore.DeleteIntakeState: deleted", "id", id)
	return nil
}

func (s *InMemoryStore) ListIntakeStates(_ context.Context) ([]models.IntakeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	states := make([]models.IntakeState, 0, len(s.sessions))
	for id, raw := range s.sessions {
		var state models.IntakeState
		if err := json.Unmarshal(raw, &state); err != nil {
			return nil, fmt.Errorf("failed to decode intake state %s: %w", id, err)
		}
		states = append(states, state)
	}
	sortByUpdatedDesc(states)
	return states, nil
}

// Close is a no-op.
func (s *InMemoryStore) Close() error { return nil }

func sortByUpdatedDesc(states []models.IntakeState) {
	sort.SliceStable(states, func(i, j int) bool {
		if !states[i].UpdatedAt.Equal(states[j].UpdatedAt) {
			return states[i].UpdatedAt.After(states[j].UpdatedAt)
		}
		return states[i].ID < states[j].ID
	})
}
