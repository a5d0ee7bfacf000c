// Package testutil provides common test utilities and helpers for IntakeFlow tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/api"
	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/BTreeMap/IntakeFlow/internal/session"
	"github.com/BTreeMap/IntakeFlow/internal/store"
)

// TB is the subset of testing.TB used by these helpers.
type TB interface {
	Helper()
	Errorf(format string, args ...interface{})
	Error(args ...interface{})
	Fatalf(format string, args ...interface{})
	Fatal(args ...interface{})
}

// NewTestSessions creates a session service over the default flows and an in-memory store.
func NewTestSessions() (*session.Service, *store.InMemoryStore) {
	st := store.NewInMemoryStore()
	return session.NewService(flow.NewEngine(flow.MustDefaultRegistry()), st), st
}

// NewTestServer creates a test API server with in-memory dependencies.
func NewTestServer() *api.Server {
	sessions, _ := NewTestSessions()
	return api.NewServer(sessions)
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t TB, expected, actual int, label string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", label, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t TB, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
		return nil
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t TB, method, url string, body interface{}) *http.Request {
	t.Helper()
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
			return nil
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateJSONRequest creates an HTTP request with a raw JSON string body.
func CreateJSONRequest(t TB, method, url, jsonBody string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(jsonBody))
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// CreateEngineRequest builds a POST to /api/v1/engine/{op} carrying an EngineRequest.
// step may be empty for operations that do not need one; nil data is omitted.
func CreateEngineRequest(t TB, op string, st models.ServiceType, step models.StepID, data models.IntakeData) *http.Request {
	t.Helper()
	body := models.EngineRequest{ServiceType: st, StepID: step}
	if data != nil {
		body.Data = MustMarshalJSON(t, data)
	}
	return CreateHTTPRequest(t, http.MethodPost, "/api/v1/engine/"+op, body)
}

// AssertSessionStage checks the stored stage and current step of session id.
func AssertSessionStage(t TB, st store.Store, id string, stage models.IntakeStage, step models.StepID, label string) {
	t.Helper()
	state, err := st.GetIntakeState(context.Background(), id)
	if err != nil {
		t.Fatalf("%s: failed to load session %s: %v", label, id, err)
		return
	}
	if state == nil {
		t.Fatalf("%s: session %s not found", label, id)
		return
	}
	if state.Stage != stage || state.CurrentStep != step {
		t.Errorf("%s: expected %s at %q, got %s at %q", label, stage, step, state.Stage, state.CurrentStep)
	}
}

// AssertSessionCount validates the number of sessions in the store matches expected.
func AssertSessionCount(t TB, st store.Store, expected int, label string) {
	t.Helper()
	states, err := st.ListIntakeStates(context.Background())
	if err != nil {
		t.Fatalf("%s: failed to list sessions: %v", label, err)
		return
	}
	if len(states) != expected {
		t.Errorf("%s: expected %d sessions, got %d", label, expected, len(states))
	}
}

// SeedTestSessions adds two sample sessions to the store: one awaiting a service choice
// and one part-way through the brand package flow.
func SeedTestSessions(t TB, st store.Store) []models.IntakeState {
	t.Helper()
	started := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	brand := models.ServiceBrandPackage
	seeds := []models.IntakeState{
		{
			ID:        "s_seed_selection",
			Stage:     models.IntakeStageServiceSelection,
			Messages:  []models.Message{{Role: models.RoleAssistant, Content: session.WelcomeMessage, CreatedAt: started}},
			StartedAt: started,
			UpdatedAt: started,
		},
		{
			ID:                   "s_seed_brand",
			ServiceType:          &brand,
			Stage:                models.IntakeStageGathering,
			CurrentStep:          flow.StepBrandLogoCheck,
			Messages:             []models.Message{},
			Data:                 &models.BrandPackageData{BusinessName: "Acme", Industry: "Retail"},
			CompletionPercentage: 40,
			StartedAt:            started,
			UpdatedAt:            started.Add(time.Minute),
		},
	}
	for _, state := range seeds {
		if err := st.SaveIntakeState(context.Background(), state); err != nil {
			t.Fatalf("failed to seed session %s: %v", state.ID, err)
			return nil
		}
	}
	return seeds
}

// MustMarshalJSON marshals an object to JSON and fails test on error.
func MustMarshalJSON(t TB, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t TB, data []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}
}

