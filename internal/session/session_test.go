package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/BTreeMap/IntakeFlow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, store.Store) {
	t.Helper()
	st := store.NewInMemoryStore()
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	seq := 0
	svc := NewService(flow.NewEngine(flow.MustDefaultRegistry()), st,
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		}),
		WithIDGenerator(func() string {
			mu.Lock()
			defer mu.Unlock()
			seq++
			return fmt.Sprintf("s_test_%d", seq)
		}),
	)
	return svc, st
}

func TestStageProgress(t *testing.T) {
	assert.Equal(t, 0, StageProgress(models.IntakeStageServiceSelection))
	assert.Equal(t, 25, StageProgress(models.IntakeStageGathering))
	assert.Equal(t, 90, StageProgress(models.IntakeStageReview))
	assert.Equal(t, 100, StageProgress(models.IntakeStageComplete))
	assert.Equal(t, 0, StageProgress("unknown"))
}

func TestStart(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "s_test_1", state.ID)
	assert.Nil(t, state.ServiceType)
	assert.Nil(t, state.Data)
	assert.Equal(t, models.IntakeStageServiceSelection, state.Stage)
	assert.Equal(t, 0, state.CompletionPercentage)
	require.Len(t, state.Messages, 1)
	assert.Equal(t, WelcomeMessage, state.Messages[0].Content)

	stored, err := st.GetIntakeState(ctx, state.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, state.StartedAt, stored.StartedAt)
}

func TestSubmit_BeforeServiceSelection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	state, err := svc.Start(ctx)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, state.ID, []byte(`{"businessName":"Acme"}`), "")
	assert.ErrorIs(t, err, ErrNoServiceSelected)
}

func TestSessionNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.SelectService(ctx, "nope", models.ServicePitchDeck)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Submit(ctx, "nope", nil, "hi")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Reset(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrSessionNotFound)
}

func TestSelectService(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	state, err := svc.Start(ctx)
	require.NoError(t, err)

	res, err := svc.SelectService(ctx, state.ID, models.ServiceBrandPackage)
	require.NoError(t, err)
	assert.Equal(t, models.ServiceBrandPackage, res.State.Service())
	assert.Equal(t, models.IntakeStageGathering, res.State.Stage)
	assert.Equal(t, flow.StepBrandBusiness, res.State.CurrentStep)
	require.NotNil(t, res.Prompt)
	assert.Equal(t, flow.StepBrandBusiness, res.Prompt.ID)
	assert.IsType(t, &models.BrandPackageData{}, res.State.Data)

	// Same service again is a no-op; a different one is refused.
	again, err := svc.SelectService(ctx, state.ID, models.ServiceBrandPackage)
	require.NoError(t, err)
	assert.Len(t, again.State.Messages, len(res.State.Messages))

	_, err = svc.SelectService(ctx, state.ID, models.ServiceSocialAds)
	assert.ErrorIs(t, err, ErrServiceAlreadySelected)

	other, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SelectService(ctx, other.ID, "podcast")
	assert.ErrorIs(t, err, flow.ErrUnknownService)
}

func TestSubmit_BrandPackageDialog(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	state, err := svc.Start(ctx)
	require.NoError(t, err)
	_, err = svc.SelectService(ctx, state.ID, models.ServiceBrandPackage)
	require.NoError(t, err)

	// Partial answer: industry missing.
	res, err := svc.Submit(ctx, state.ID, []byte(`{"businessName":"Acme Bakery"}`), "We're Acme Bakery")
	require.NoError(t, err)
	require.NotNil(t, res.Outcome)
	assert.False(t, res.Outcome.Advanced())
	assert.Equal(t, []models.FieldID{models.FieldIndustry}, res.Outcome.MissingFields)
	assert.Equal(t, flow.StepBrandBusiness, res.State.CurrentStep)
	last := res.State.Messages[len(res.State.Messages)-1]
	assert.Contains(t, last.Content, "I still need: Industry")

	// Earlier answers are kept across turns.
	res, err = svc.Submit(ctx, state.ID, []byte(`{"industry":"bakery"}`), "")
	require.NoError(t, err)
	assert.True(t, res.Outcome.Advanced())
	assert.Equal(t, flow.StepBrandLogoCheck, res.State.CurrentStep)
	assert.Equal(t, 40, res.State.CompletionPercentage)

	// false is a real answer and takes the no-logo branch.
	res, err = svc.Submit(ctx, state.ID, []byte(`{"hasLogo":false}`), "No logo yet")
	require.NoError(t, err)
	assert.Equal(t, flow.StepBrandPackageOptions, res.State.CurrentStep)

	res, err = svc.Submit(ctx, state.ID, []byte(`{"deliverables":["logo","guidelines"]}`), "")
	require.NoError(t, err)
	assert.Equal(t, models.StepReview, res.State.CurrentStep)
	assert.Equal(t, models.IntakeStageReview, res.State.Stage)
	assert.Equal(t, 100, res.State.CompletionPercentage)
	data := res.State.Data.(*models.BrandPackageData)
	assert.Equal(t, flow.PackageFullIdentity, data.RecommendedPackage, "defaults are applied before review")

	res, err = svc.Submit(ctx, state.ID, nil, "Looks good")
	require.NoError(t, err)
	assert.True(t, res.Outcome.Terminal)
	assert.Equal(t, models.IntakeStageComplete, res.State.Stage)
	assert.Nil(t, res.Prompt)
	assert.Equal(t, CompletionMessage, res.State.Messages[len(res.State.Messages)-1].Content)

	_, err = svc.Submit(ctx, state.ID, nil, "one more thing")
	assert.ErrorIs(t, err, ErrSessionComplete)

	stored, err := st.GetIntakeState(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IntakeStageComplete, stored.Stage)
	assert.Equal(t, "Acme Bakery", stored.Data.(*models.BrandPackageData).BusinessName)
}

func TestSubmit_InvalidFragment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	state, _ := svc.Start(ctx)
	_, err := svc.SelectService(ctx, state.ID, models.ServiceSocialAds)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, state.ID, []byte(`{"monthlyBudget":"lots"}`), "")
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = svc.Submit(ctx, state.ID, []byte(`not json`), "")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestSubmit_NullClearsField(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	state, _ := svc.Start(ctx)
	_, err := svc.SelectService(ctx, state.ID, models.ServiceSocialContent)
	require.NoError(t, err)

	res, err := svc.Submit(ctx, state.ID, []byte(`{"brandName":"Acme"}`), "")
	require.NoError(t, err)
	assert.Equal(t, "Acme", res.State.Data.(*models.SocialContentData).BrandName)

	res, err = svc.Submit(ctx, state.ID, []byte(`{"brandName":null,"industry":"retail"}`), "")
	require.NoError(t, err)
	assert.Equal(t, []models.FieldID{models.FieldBrandName}, res.Outcome.MissingFields)
}

func TestReset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	state, _ := svc.Start(ctx)
	_, err := svc.SelectService(ctx, state.ID, models.ServicePitchDeck)
	require.NoError(t, err)

	reset, err := svc.Reset(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, reset.ID)
	assert.Nil(t, reset.ServiceType)
	assert.Equal(t, models.IntakeStageServiceSelection, reset.Stage)
	assert.Len(t, reset.Messages, 1)

	_, err = svc.SelectService(ctx, state.ID, models.ServiceVideoEdit)
	require.NoError(t, err)
}

func TestDeleteAndList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	a, _ := svc.Start(ctx)
	b, _ := svc.Start(ctx)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, b.ID, list[0].ID)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestSubmit_ConcurrentTurnsAreSerialized(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	state, _ := svc.Start(ctx)
	_, err := svc.SelectService(ctx, state.ID, models.ServiceSocialContent)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Submit(ctx, state.ID, nil, "hello")
		}()
	}
	wg.Wait()

	got, err := svc.Get(ctx, state.ID)
	require.NoError(t, err)
	// welcome + selection pair + 10 user turns, each with an assistant re-prompt
	assert.Len(t, got.Messages, 3+20)
}

func TestPurgeIdle(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	fresh := time.Date(2026, 3, 1, 8, 59, 0, 0, time.UTC)
	stale := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for id, updated := range map[string]time.Time{"s_fresh": fresh, "s_stale": stale} {
		require.NoError(t, st.SaveIntakeState(ctx, models.IntakeState{
			ID:        id,
			Stage:     models.IntakeStageServiceSelection,
			StartedAt: updated,
			UpdatedAt: updated,
		}))
	}

	n, err := svc.PurgeIdle(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = svc.PurgeIdle(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.Get(ctx, "s_stale")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = svc.Get(ctx, "s_fresh")
	assert.NoError(t, err)
}

func TestLocksReleasedForUnknownSessions(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		id := fmt.Sprintf("s_missing_%d", i)
		_, err := svc.Submit(ctx, id, []byte(`{}`), "")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = svc.SelectService(ctx, id, models.ServicePitchDeck)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = svc.Reset(ctx, id)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, svc.Delete(ctx, id), ErrSessionNotFound)
	}
	assert.Zero(t, svc.lockCount())
}

func TestLocksReleasedAfterConcurrentTurns(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	state, err := svc.Start(ctx)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.SelectService(ctx, state.ID, models.ServiceBrandPackage)
		}()
	}
	wg.Wait()
	assert.Zero(t, svc.lockCount())
}

// touchingStore updates a session right after it is listed, the way a turn
// arriving mid-purge would.
type touchingStore struct {
	store.Store
	id      string
	touched time.Time
}

func (s *touchingStore) ListIntakeStates(ctx context.Context) ([]models.IntakeState, error) {
	states, err := s.Store.ListIntakeStates(ctx)
	if err != nil {
		return nil, err
	}
	current, err := s.Store.GetIntakeState(ctx, s.id)
	if err != nil || current == nil {
		return states, err
	}
	current.UpdatedAt = s.touched
	return states, s.Store.SaveIntakeState(ctx, *current)
}

func TestPurgeIdle_KeepsSessionTouchedAfterListing(t *testing.T) {
	inner := store.NewInMemoryStore()
	ctx := context.Background()
	stale := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, inner.SaveIntakeState(ctx, models.IntakeState{
		ID:        "s_busy",
		Stage:     models.IntakeStageServiceSelection,
		StartedAt: stale,
		UpdatedAt: stale,
	}))

	st := &touchingStore{Store: inner, id: "s_busy", touched: now}
	svc := NewService(flow.NewEngine(flow.MustDefaultRegistry()), st,
		WithClock(func() time.Time { return now }))

	n, err := svc.PurgeIdle(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = svc.Get(ctx, "s_busy")
	assert.NoError(t, err)
}
