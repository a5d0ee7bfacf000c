// Package models defines the core data structures for IntakeFlow.
//
// It includes the per-service intake data shapes, the intake session state, and the
// request/response envelopes shared between the engine, the store and the API.
package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum allowed length for a dialog message
	MaxMessageLength = 4096
	// MaxInferenceTextLength defines the maximum text length accepted for inference lookups
	MaxInferenceTextLength = 8192
)

// Error variables for better error handling and testability
var (
	ErrInvalidServiceType = errors.New("invalid service type")
	ErrEmptyStepID        = errors.New("step id is required")
	ErrMessageTooLong     = errors.New("message exceeds maximum length")
	ErrEmptyInferenceText = errors.New("text is required")
	ErrInferenceTooLong   = errors.New("text exceeds maximum length")
	ErrEmptyAnswer        = errors.New("answer requires data or a message")
)

// EngineRequest is the payload of the stateless engine endpoints.
type EngineRequest struct {
	ServiceType ServiceType     `json:"service_type"`
	StepID      StepID          `json:"step_id,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

// Validate checks the discriminant and, when requireStep is set, the step id.
func (r *EngineRequest) Validate(requireStep bool) error {
	if !IsValidServiceType(r.ServiceType) {
		return ErrInvalidServiceType
	}
	if requireStep && strings.TrimSpace(string(r.StepID)) == "" {
		return ErrEmptyStepID
	}
	return nil
}

// SelectServiceRequest chooses the service for an intake session.
type SelectServiceRequest struct {
	ServiceType ServiceType `json:"service_type"`
}

// Validate validates a SelectServiceRequest.
func (r *SelectServiceRequest) Validate() error {
	if !IsValidServiceType(r.ServiceType) {
		return ErrInvalidServiceType
	}
	return nil
}

// AnswerRequest carries one user turn: a structured data fragment and the raw message text.
type AnswerRequest struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Validate validates an AnswerRequest.
func (r *AnswerRequest) Validate() error {
	if len(r.Data) == 0 && strings.TrimSpace(r.Message) == "" {
		return ErrEmptyAnswer
	}
	if len(r.Message) > MaxMessageLength {
		return ErrMessageTooLong
	}
	return nil
}

// InferenceRequest asks for field suggestions for free text.
type InferenceRequest struct {
	ServiceType ServiceType `json:"service_type,omitempty"`
	Text        string      `json:"text"`
}

// Validate validates an InferenceRequest. The service type is optional.
func (r *InferenceRequest) Validate() error {
	if r.ServiceType != "" && !IsValidServiceType(r.ServiceType) {
		return ErrInvalidServiceType
	}
	if strings.TrimSpace(r.Text) == "" {
		return ErrEmptyInferenceText
	}
	if len(r.Text) > MaxInferenceTextLength {
		return ErrInferenceTooLong
	}
	return nil
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
	// APIStatusIncomplete indicates required fields are still missing.
	APIStatusIncomplete APIStatus = "incomplete"
)

// API Response types for consistent JSON responses

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// APIResponseBuilder provides a fluent interface for building API responses.
type APIResponseBuilder struct {
	response APIResponse
}

// NewAPIResponseBuilder creates a new APIResponseBuilder instance.
func NewAPIResponseBuilder() *APIResponseBuilder {
	return &APIResponseBuilder{
		response: APIResponse{},
	}
}

// WithStatus sets the status of the API response.
func (b *APIResponseBuilder) WithStatus(status APIStatus) *APIResponseBuilder {
	b.response.Status = string(status)
	return b
}

// WithMessage sets the message of the API response.
func (b *APIResponseBuilder) WithMessage(message string) *APIResponseBuilder {
	b.response.Message = message
	return b
}

// WithResult sets the result of the API response.
func (b *APIResponseBuilder) WithResult(result interface{}) *APIResponseBuilder {
	b.response.Result = result
	return b
}

// Build returns the constructed APIResponse.
func (b *APIResponseBuilder) Build() APIResponse {
	return b.response
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithResult(result).
		Build()
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusOK).
		WithMessage(message).
		WithResult(result).
		Build()
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusError).
		WithMessage(message).
		Build()
}

// Incomplete creates a response reporting that required fields are missing.
func Incomplete(message string, result interface{}) APIResponse {
	return NewAPIResponseBuilder().
		WithStatus(APIStatusIncomplete).
		WithMessage(message).
		WithResult(result).
		Build()
}
