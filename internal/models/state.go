// Package models defines state management structures for IntakeFlow sessions.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// MessageRole identifies who authored a dialog message.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one turn of an intake dialog.
type Message struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Step      StepID      `json:"step,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// IntakeState is the dialog driver's view of one intake session.
// ServiceType is nil until a service has been chosen; Data is nil until then as well.
type IntakeState struct {
	ID                   string       `json:"id"`
	ServiceType          *ServiceType `json:"service_type"`
	Stage                IntakeStage  `json:"stage"`
	CurrentStep          StepID       `json:"current_step,omitempty"`
	Messages             []Message    `json:"messages"`
	Data                 IntakeData   `json:"data"`
	CompletionPercentage int          `json:"completion_percentage"`
	StartedAt            time.Time    `json:"started_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

// UnmarshalJSON decodes the polymorphic Data member using the ServiceType discriminant.
func (s *IntakeState) UnmarshalJSON(b []byte) error {
	type alias IntakeState
	aux := struct {
		*alias
		Data json.RawMessage `json:"data"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	s.Data = nil
	if s.ServiceType == nil {
		return nil
	}
	data, err := DecodeData(*s.ServiceType, aux.Data)
	if err != nil {
		return fmt.Errorf("intake state %s: %w", s.ID, err)
	}
	s.Data = data
	return nil
}

// Service returns the chosen service type, or the empty string when none is set.
func (s *IntakeState) Service() ServiceType {
	if s.ServiceType == nil {
		return ""
	}
	return *s.ServiceType
}
