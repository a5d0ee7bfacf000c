package api

import (
	"log/slog"
	"net/http"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// decodeEngineRequest parses an EngineRequest and its data shape. It writes the error
// response itself and reports whether the handler should continue.
func decodeEngineRequest(w http.ResponseWriter, r *http.Request, handler string, requireStep bool) (models.EngineRequest, models.IntakeData, bool) {
	var req models.EngineRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		slog.Warn("Server."+handler+": failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return req, nil, false
	}
	if err := req.Validate(requireStep); err != nil {
		slog.Warn("Server."+handler+": validation failed", "error", err, "serviceType", req.ServiceType)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return req, nil, false
	}
	data, err := models.DecodeData(req.ServiceType, req.Data)
	if err != nil {
		slog.Warn("Server."+handler+": invalid data", "error", err, "serviceType", req.ServiceType)
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return req, nil, false
	}
	return req, data, true
}

// nextStepResponse reports the resolved next step. HasNext is false at the end of the flow.
type nextStepResponse struct {
	NextStep models.StepID `json:"next_step"`
	HasNext  bool          `json:"has_next"`
}

// nextStepHandler handles POST /engine/next
func (s *Server) nextStepHandler(w http.ResponseWriter, r *http.Request) {
	req, data, ok := decodeEngineRequest(w, r, "nextStepHandler", true)
	if !ok {
		return
	}
	next, hasNext := s.engine.NextStep(req.ServiceType, req.StepID, data)
	writeJSONResponse(w, http.StatusOK, models.Success(nextStepResponse{NextStep: next, HasNext: hasNext}))
}

// validateStepHandler handles POST /engine/validate
func (s *Server) validateStepHandler(w http.ResponseWriter, r *http.Request) {
	req, data, ok := decodeEngineRequest(w, r, "validateStepHandler", true)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.engine.ValidateStep(req.ServiceType, req.StepID, data)))
}

// progressHandler handles POST /engine/progress
func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	req, _, ok := decodeEngineRequest(w, r, "progressHandler", true)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]int{
		"progress": s.engine.Progress(req.ServiceType, req.StepID),
	}))
}

// defaultsHandler handles POST /engine/defaults
func (s *Server) defaultsHandler(w http.ResponseWriter, r *http.Request) {
	req, data, ok := decodeEngineRequest(w, r, "defaultsHandler", false)
	if !ok {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]models.IntakeData{
		"data": s.engine.ApplySmartDefaults(req.ServiceType, data),
	}))
}

// advanceHandler handles POST /engine/advance. Missing fields produce an
// "incomplete" envelope rather than an error status.
func (s *Server) advanceHandler(w http.ResponseWriter, r *http.Request) {
	req, data, ok := decodeEngineRequest(w, r, "advanceHandler", true)
	if !ok {
		return
	}
	out, err := s.engine.Advance(req.ServiceType, req.StepID, data)
	if err != nil {
		writeError(w, "advanceHandler", err)
		return
	}
	if !out.Advanced() {
		writeJSONResponse(w, http.StatusOK, models.Incomplete("Required fields are missing", out))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(out))
}

// inferenceResponse lists suggestions for free text.
type inferenceResponse struct {
	Suggestions []flow.Suggestion `json:"suggestions"`
}

// inferenceHandler handles POST /inference
func (s *Server) inferenceHandler(w http.ResponseWriter, r *http.Request) {
	var req models.InferenceRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		slog.Warn("Server.inferenceHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error(err.Error()))
		return
	}
	suggestions := s.engine.Inferences().Suggest(req.ServiceType, req.Text)
	slog.Debug("Server.inferenceHandler: suggestions computed", "serviceType", req.ServiceType, "count", len(suggestions))
	writeJSONResponse(w, http.StatusOK, models.Success(inferenceResponse{Suggestions: suggestions}))
}
