package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/BTreeMap/IntakeFlow/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingT records failures instead of failing the enclosing test. Fatal
// calls unwind with errFatal, which outcome recovers.
type recordingT struct {
	failures []string
}

var errFatal = errors.New("fatal")

func (r *recordingT) Helper() {}

func (r *recordingT) Errorf(format string, args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}

func (r *recordingT) Error(args ...interface{}) {
	r.failures = append(r.failures, fmt.Sprint(args...))
}

func (r *recordingT) Fatalf(format string, args ...interface{}) {
	r.Errorf(format, args...)
	panic(errFatal)
}

func (r *recordingT) Fatal(args ...interface{}) {
	r.Error(args...)
	panic(errFatal)
}

// outcome runs fn against a recordingT and returns the failures it reported.
func outcome(fn func(TB)) (failures []string) {
	rec := &recordingT{}
	defer func() {
		if p := recover(); p != nil && p != errFatal {
			panic(p)
		}
		failures = rec.failures
	}()
	fn(rec)
	return rec.failures
}

func TestNewTestSessions(t *testing.T) {
	svc, st := NewTestSessions()
	ctx := context.Background()

	state, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Empty(t, outcome(func(tb TB) { AssertSessionCount(tb, st, 1, "after start") }))

	_, err = svc.SelectService(ctx, state.ID, models.ServiceSocialContent)
	require.NoError(t, err)
	assert.Empty(t, outcome(func(tb TB) {
		AssertSessionStage(tb, st, state.ID, models.IntakeStageGathering, flow.StepContentBrand, "after selection")
	}))
}

func TestNewTestServer(t *testing.T) {
	server := NewTestServer()
	require.NotNil(t, server)

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, CreateHTTPRequest(t, http.MethodGet, "/api/v1/services", nil))
	AssertHTTPStatus(t, http.StatusOK, rr.Code, "services")
	resp := AssertJSONResponse(t, rr, "ok")
	assert.Len(t, resp["result"], len(models.ServiceTypes))
}

func TestCreateEngineRequest(t *testing.T) {
	req := CreateEngineRequest(t, "next", models.ServiceBrandPackage, flow.StepBrandLogoCheck,
		&models.BrandPackageData{HasLogo: models.Bool(true)})
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/engine/next", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	rr := httptest.NewRecorder()
	NewTestServer().Handler().ServeHTTP(rr, req)
	AssertHTTPStatus(t, http.StatusOK, rr.Code, "next step")
	resp := AssertJSONResponse(t, rr, "ok")
	result, ok := resp["result"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(flow.StepBrandLogoUpload), result["next_step"])
}

func TestCreateEngineRequest_OmitsNilData(t *testing.T) {
	req := CreateEngineRequest(t, "defaults", models.ServicePitchDeck, "", nil)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	MustUnmarshalJSON(t, raw, &body)
	assert.Equal(t, "pitch_deck", body["service_type"])
	assert.NotContains(t, body, "data")
	assert.NotContains(t, body, "step_id")
}

func TestSeedTestSessions(t *testing.T) {
	svc, st := NewTestSessions()
	seeds := SeedTestSessions(t, st)
	require.Len(t, seeds, 2)
	AssertSessionCount(t, st, 2, "seeded")
	AssertSessionStage(t, st, "s_seed_selection", models.IntakeStageServiceSelection, "", "selection seed")
	AssertSessionStage(t, st, "s_seed_brand", models.IntakeStageGathering, flow.StepBrandLogoCheck, "brand seed")

	// The brand seed is a live session the driver can continue.
	res, err := svc.Submit(context.Background(), "s_seed_brand", []byte(`{"hasLogo":false}`), "no logo yet")
	require.NoError(t, err)
	assert.True(t, res.Outcome.Advanced())
	AssertSessionStage(t, st, "s_seed_brand", models.IntakeStageGathering, flow.StepBrandPackageOptions, "after answer")

	got, err := st.GetIntakeState(context.Background(), "s_seed_brand")
	require.NoError(t, err)
	data, ok := got.Data.(*models.BrandPackageData)
	require.True(t, ok)
	assert.Equal(t, "Acme", data.BusinessName)
}

func TestSessionAssertionsReportFailures(t *testing.T) {
	st := store.NewInMemoryStore()
	SeedTestSessions(t, st)

	tests := []struct {
		name   string
		check  func(TB)
		fails  bool
	}{
		{"count matches", func(tb TB) { AssertSessionCount(tb, st, 2, "count") }, false},
		{"count differs", func(tb TB) { AssertSessionCount(tb, st, 3, "count") }, true},
		{"stage matches", func(tb TB) {
			AssertSessionStage(tb, st, "s_seed_brand", models.IntakeStageGathering, flow.StepBrandLogoCheck, "stage")
		}, false},
		{"step differs", func(tb TB) {
			AssertSessionStage(tb, st, "s_seed_brand", models.IntakeStageGathering, flow.StepBrandLogoUpload, "stage")
		}, true},
		{"unknown session", func(tb TB) {
			AssertSessionStage(tb, st, "s_nope", models.IntakeStageGathering, "", "stage")
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := outcome(tt.check)
			assert.Equal(t, tt.fails, len(failures) > 0, "failures=%v", failures)
		})
	}
}

func TestAssertJSONResponse_Envelopes(t *testing.T) {
	tests := []struct {
		name     string
		envelope models.APIResponse
		expected string
		fails    bool
	}{
		{"ok", models.Success(nil), "ok", false},
		{"incomplete", models.Incomplete("Required fields are missing", nil), "incomplete", false},
		{"status mismatch", models.Error("boom"), "ok", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := outcome(func(tb TB) {
				rr := httptest.NewRecorder()
				rr.Body.Write(MustMarshalJSON(tb, tt.envelope))
				AssertJSONResponse(tb, rr, tt.expected)
			})
			assert.Equal(t, tt.fails, len(failures) > 0, "failures=%v", failures)
		})
	}

	failures := outcome(func(tb TB) {
		rr := httptest.NewRecorder()
		rr.Body.WriteString(`{"status":}`)
		AssertJSONResponse(tb, rr, "ok")
	})
	assert.NotEmpty(t, failures, "malformed body")
}
