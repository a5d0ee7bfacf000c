package flow

import "github.com/BTreeMap/IntakeFlow/internal/models"

// InputKind describes the widget used for a grouped sub-question.
type InputKind string

const (
	InputText        InputKind = "text"
	InputTextarea    InputKind = "textarea"
	InputURL         InputKind = "url"
	InputNumber      InputKind = "number"
	InputBoolean     InputKind = "boolean"
	InputSelect      InputKind = "select"
	InputMultiSelect InputKind = "multiselect"
)

// Choice is a selectable answer.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SubQuestion is one field of a grouped question.
type SubQuestion struct {
	Field          models.FieldID `json:"field"`
	Label          string         `json:"label"`
	Input          InputKind      `json:"input"`
	Options        []Choice       `json:"options,omitempty"`
	Recommendation string         `json:"recommendation,omitempty"`
}

// Question is the payload rendered for a step. Which members are set depends on the
// step's QuestionType:
//   - open: Prompt and Field
//   - grouped: Prompt (header) and Items
//   - quick: Prompt, Field and Options
//   - confirmation: Prompt
type Question struct {
	Prompt  string         `json:"prompt"`
	Field   models.FieldID `json:"field,omitempty"`
	Items   []SubQuestion  `json:"items,omitempty"`
	Options []Choice       `json:"options,omitempty"`
}

// Fields returns every field the question collects.
func (q Question) Fields() []models.FieldID {
	var out []models.FieldID
	if q.Field != "" {
		out = append(out, q.Field)
	}
	for _, item := range q.Items {
		out = append(out, item.Field)
	}
	return out
}

// FlowStep is one node in a service's flow.
type FlowStep struct {
	ID             models.StepID       `json:"id"`
	Stage          models.Stage        `json:"stage"`
	QuestionType   models.QuestionType `json:"question_type"`
	Question       Question            `json:"question"`
	RequiredFields []models.FieldID    `json:"required_fields,omitempty"`
	Next           Transition          `json:"next"`
	IsTerminal     bool                `json:"is_terminal,omitempty"`
}

// FlowConfig is the declarative flow of one service type.
type FlowConfig struct {
	ServiceType models.ServiceType `json:"service_type"`
	Steps       []FlowStep         `json:"steps"`
	InitialStep models.StepID      `json:"initial_step"`
}

// Step returns the step with the given id.
func (fc FlowConfig) Step(id models.StepID) (FlowStep, bool) {
	if i := fc.Index(id); i >= 0 {
		return fc.Steps[i], true
	}
	return FlowStep{}, false
}

// Index returns the position of id in Steps, or -1.
func (fc FlowConfig) Index(id models.StepID) int {
	for i, s := range fc.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Terminal returns the confirmation step of the flow.
func (fc FlowConfig) Terminal() (FlowStep, bool) {
	for _, s := range fc.Steps {
		if s.IsTerminal {
			return s, true
		}
	}
	return FlowStep{}, false
}

// options builds a Choice list from value/label pairs.
func options(pairs ...string) []Choice {
	out := make([]Choice, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Choice{Value: pairs[i], Label: pairs[i+1]})
	}
	return out
}

// reviewStep builds the terminal confirmation step.
func reviewStep(prompt string) FlowStep {
	return FlowStep{
		ID:           models.StepReview,
		Stage:        models.StageReview,
		QuestionType: models.QuestionConfirmation,
		Question:     Question{Prompt: prompt},
		IsTerminal:   true,
	}
}
