package api

import (
	"log/slog"
	"net/http"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/BTreeMap/IntakeFlow/internal/session"
	"github.com/gorilla/mux"
)

// sessionResponse is a session with the step it is waiting on.
type sessionResponse struct {
	State  *models.IntakeState `json:"state"`
	Prompt *flow.FlowStep      `json:"prompt,omitempty"`
	Text   string              `json:"text,omitempty"`
}

func (s *Server) sessionResponse(state *models.IntakeState) sessionResponse {
	resp := sessionResponse{State: state, Prompt: s.sessions.Prompt(state)}
	if resp.Prompt != nil {
		resp.Text = flow.RenderText(*resp.Prompt)
	}
	return resp
}

// createSessionHandler handles POST /sessions
func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Start(r.Context())
	if err != nil {
		writeError(w, "createSessionHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Session created", s.sessionResponse(state)))
}

// listSessionsHandler handles GET /sessions
func (s *Server) listSessionsHandler(w http.ResponseWriter, r *http.Request) {
	states, err := s.sessions.List(r.Context())
	if err != nil {
		writeError(w, "listSessionsHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(states))
}

// getSessionHandler handles GET /sessions/{id}
func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "getSessionHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.sessionResponse(state)))
}

// deleteSessionHandler handles DELETE /sessions/{id}
func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, "deleteSessionHandler", err)
		return
	}
	slog.Info("Server.deleteSessionHandler: session deleted", "id", id)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session deleted", nil))
}

// resetSessionHandler handles POST /sessions/{id}/reset
func (s *Server) resetSessionHandler(w http.ResponseWriter, r *http.Request) {
	state, err := s.sessions.Reset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, "resetSessionHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session reset", s.sessionResponse(state)))
}

// selectServiceHandler handles POST /sessions/{id}/service
func (s *Server) selectServiceHandler(w http.ResponseWriter, r *http.Request) {
	var req models.SelectServiceRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		slog.Warn("Server.selectServiceHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	res, err := s.sessions.SelectService(r.Context(), mux.Vars(r)["id"], req.ServiceType)
	if err != nil {
		writeError(w, "selectServiceHandler", err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.turnResponse(res)))
}

// turnResponse is the result of one dialog turn.
type turnResponse struct {
	sessionResponse
	Outcome *flow.Outcome `json:"outcome,omitempty"`
}

func (s *Server) turnResponse(res *session.TurnResult) turnResponse {
	return turnResponse{sessionResponse: s.sessionResponse(res.State), Outcome: res.Outcome}
}

// answerHandler handles POST /sessions/{id}/answers
func (s *Server) answerHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		slog.Warn("Server.answerHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	res, err := s.sessions.Submit(r.Context(), mux.Vars(r)["id"], req.Data, req.Message)
	if err != nil {
		writeError(w, "answerHandler", err)
		return
	}
	if res.Outcome != nil && !res.Outcome.Advanced() {
		writeJSONResponse(w, http.StatusOK, models.Incomplete("Required fields are missing", s.turnResponse(res)))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.turnResponse(res)))
}
