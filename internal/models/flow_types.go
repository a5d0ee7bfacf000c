// Package models defines flow type definitions to avoid circular imports.
package models

// ServiceType selects which flow and data shape apply to an intake session.
type ServiceType string

// StepID identifies a step within a single flow.
type StepID string

// FieldID identifies a field of an IntakeData shape. Values match the JSON keys.
type FieldID string

// Stage is a coarse phase tag used for UI grouping.
type Stage string

// QuestionType describes how a step is presented.
type QuestionType string

// IntakeStage is the lifecycle stage of an IntakeState.
type IntakeStage string

// Service type constants.
const (
	ServiceLaunchVideo   ServiceType = "launch_video"
	ServiceVideoEdit     ServiceType = "video_edit"
	ServicePitchDeck     ServiceType = "pitch_deck"
	ServiceBrandPackage  ServiceType = "brand_package"
	ServiceSocialAds     ServiceType = "social_ads"
	ServiceSocialContent ServiceType = "social_content"
)

// ServiceTypes lists every supported service in catalog order.
var ServiceTypes = []ServiceType{
	ServiceLaunchVideo,
	ServiceVideoEdit,
	ServicePitchDeck,
	ServiceBrandPackage,
	ServiceSocialAds,
	ServiceSocialContent,
}

// IsValidServiceType checks if the given service type is supported.
func IsValidServiceType(st ServiceType) bool {
	switch st {
	case ServiceLaunchVideo, ServiceVideoEdit, ServicePitchDeck,
		ServiceBrandPackage, ServiceSocialAds, ServiceSocialContent:
		return true
	default:
		return false
	}
}

// Stage constants.
const (
	StageContext Stage = "context"
	StageDetails Stage = "details"
	StageReview  Stage = "review"
)

// Question type constants.
const (
	QuestionOpen         QuestionType = "open"
	QuestionGrouped      QuestionType = "grouped"
	QuestionQuick        QuestionType = "quick"
	QuestionConfirmation QuestionType = "confirmation"
)

// Intake lifecycle stages.
const (
	IntakeStageServiceSelection IntakeStage = "service_selection"
	IntakeStageGathering        IntakeStage = "gathering"
	IntakeStageReview           IntakeStage = "review"
	IntakeStageComplete         IntakeStage = "complete"
)

// StepReview is the id of the terminal confirmation step shared by every built-in flow.
const StepReview StepID = "review"
