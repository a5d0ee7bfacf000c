package session

import "github.com/BTreeMap/IntakeFlow/internal/models"

// StageProgress is the coarse completion percentage for a lifecycle stage. It is
// used before a service is chosen, when there is no step position to measure.
func StageProgress(stage models.IntakeStage) int {
	switch stage {
	case models.IntakeStageServiceSelection:
		return 0
	case models.IntakeStageGathering:
		return 25
	case models.IntakeStageReview:
		return 90
	case models.IntakeStageComplete:
		return 100
	}
	return 0
}
