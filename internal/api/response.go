// Package api provides HTTP response utilities for IntakeFlow.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/BTreeMap/IntakeFlow/internal/flow"
	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/BTreeMap/IntakeFlow/internal/session"
)

// Pre-marshaled fallback responses to avoid runtime JSON encoding failures
var (
	fallbackErrorResponse []byte
)

// init validates that our fallback responses can be marshaled
func init() {
	var err error
	fallbackErrorResponse, err = json.Marshal(models.Error("Internal server error"))
	if err != nil {
		panic(fmt.Sprintf("Failed to marshal fallback error response at startup: %v", err))
	}
}

// writeJSONResponse writes a JSON response to the http.ResponseWriter with the given status code.
func writeJSONResponse(w http.ResponseWriter, statusCode int, response interface{}) {
	// Marshal first so encoding errors are caught before headers are written
	jsonData, err := json.Marshal(response)
	if err != nil {
		slog.Error("Server.writeJSONResponse: failed to marshal JSON response", "error", err)
		jsonData = fallbackErrorResponse
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, writeErr := w.Write(jsonData); writeErr != nil {
		slog.Error("Server.writeJSONResponse: failed to write JSON response", "error", writeErr)
	}
}

// decodeJSONBody decodes a size-limited request body into v. An empty body leaves v untouched.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxRequestBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrServiceAlreadySelected),
		errors.Is(err, session.ErrSessionComplete),
		errors.Is(err, session.ErrNoServiceSelected):
		return http.StatusConflict
	case errors.Is(err, session.ErrInvalidAnswer),
		errors.Is(err, flow.ErrUnknownService),
		errors.Is(err, flow.ErrUnknownStep),
		errors.Is(err, models.ErrServiceMismatch),
		errors.Is(err, models.ErrUnknownServiceType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError writes err with the status derived from statusForError. Server faults
// are logged and their details hidden from the client.
func writeError(w http.ResponseWriter, handler string, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.Error("Server."+handler+": internal error", "error", err)
		writeJSONResponse(w, status, models.Error("Internal server error"))
		return
	}
	slog.Warn("Server."+handler+": request rejected", "status", status, "error", err)
	writeJSONResponse(w, status, models.Error(err.Error()))
}
