package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// intakeRow is the column form of an IntakeState shared by the SQL stores.
type intakeRow struct {
	ID          string
	ServiceType interface{}
	Stage       string
	CurrentStep interface{}
	DataJSON    interface{}
	Messages    string
	Completion  int
	StartedAt   time.Time
	UpdatedAt   time.Time
}

func toIntakeRow(state models.IntakeState) (intakeRow, error) {
	row := intakeRow{
		ID:          state.ID,
		ServiceType: nilIfEmpty(string(state.Service())),
		Stage:       string(state.Stage),
		CurrentStep: nilIfEmpty(string(state.CurrentStep)),
		Completion:  state.CompletionPercentage,
		StartedAt:   state.StartedAt.UTC(),
		UpdatedAt:   state.UpdatedAt.UTC(),
	}
	if state.Data != nil {
		data, err := json.Marshal(state.Data)
		if err != nil {
			return row, fmt.Errorf("failed to encode data: %w", err)
		}
		row.DataJSON = string(data)
	}
	messages := state.Messages
	if messages == nil {
		messages = []models.Message{}
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return row, fmt.Errorf("failed to encode messages: %w", err)
	}
	row.Messages = string(raw)
	return row, nil
}

// intakeColumns is the column list matched by scanIntakeState.
const intakeColumns = `id, service_type, stage, current_step, data_json, messages_json, completion_percentage, started_at, updated_at`

// scanIntakeState scans one row selected with intakeColumns.
func scanIntakeState(rs rowScanner) (models.IntakeState, error) {
	var (
		state                       models.IntakeState
		serviceType, step, dataJSON sql.NullString
		stage, messagesJSON         string
	)
	err := rs.Scan(&state.ID, &serviceType, &stage, &step, &dataJSON, &messagesJSON,
		&state.CompletionPercentage, &state.StartedAt, &state.UpdatedAt)
	if err != nil {
		return state, err
	}
	state.Stage = models.IntakeStage(stage)
	state.CurrentStep = models.StepID(step.String)
	if serviceType.Valid && serviceType.String != "" {
		st := models.ServiceType(serviceType.String)
		state.ServiceType = &st
		data, err := models.DecodeData(st, []byte(dataJSON.String))
		if err != nil {
			return state, err
		}
		state.Data = data
	}
	if messagesJSON != "" {
		if err := json.Unmarshal([]byte(messagesJSON), &state.Messages); err != nil {
			return state, fmt.Errorf("failed to decode messages: %w", err)
		}
	}
	return state, nil
}
