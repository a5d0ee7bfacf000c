// Package api provides HTTP handlers for IntakeFlow endpoints.
package api

import (
	"net/http"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/gorilla/mux"
)

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  len(models.ServiceTypes),
	}

	// Listing sessions doubles as a store check
	sessions, err := s.sessions.List(r.Context())
	if err != nil {
		healthData["status"] = "degraded"
		healthData["error"] = "Failed to reach session store"
	} else {
		healthData["sessions"] = len(sessions)
	}

	statusCode := http.StatusOK
	if healthData["status"] == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, statusCode, healthData)
}

func (s *Server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown endpoint: "+r.URL.Path))
}

func (s *Server) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusMethodNotAllowed, models.Error("Method not allowed"))
}

// listServicesHandler handles GET /services
func (s *Server) listServicesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(s.engine.Catalog().List()))
}

// flowResponse describes one service flow.
type flowResponse struct {
	Service flow.ServiceInfo `json:"service"`
	Flow    flow.FlowConfig  `json:"flow"`
}

// getFlowHandler handles GET /services/{service}/flow
func (s *Server) getFlowHandler(w http.ResponseWriter, r *http.Request) {
	st := models.ServiceType(mux.Vars(r)["service"])
	fc, err := s.engine.FlowConfig(st)
	if err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error(err.Error()))
		return
	}
	info, _ := s.engine.Catalog().Get(st)
	writeJSONResponse(w, http.StatusOK, models.Success(flowResponse{Service: info, Flow: fc}))
}

// stepResponse is a step descriptor with its plain-text rendering.
type stepResponse struct {
	Step     flow.FlowStep `json:"step"`
	Text     string        `json:"text"`
	Progress int           `json:"progress"`
}

// getStepHandler handles GET /services/{service}/steps/{step}
func (s *Server) getStepHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	st := models.ServiceType(vars["service"])
	id := models.StepID(vars["step"])
	if !models.IsValidServiceType(st) {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown service type: "+string(st)))
		return
	}
	step, ok := s.engine.Step(st, id)
	if !ok {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Unknown step: "+string(id)))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(stepResponse{
		Step:     step,
		Text:     flow.RenderText(step),
		Progress: s.engine.Progress(st, id),
	}))
}
