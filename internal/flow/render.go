package flow

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// Render formatting constants
const (
	// OptionFormat is the format string for quick-choice option display
	OptionFormat = "\n%d. %s"
	// ItemFormat is the format string for grouped sub-question display
	ItemFormat = "\n- %s"
	// RecommendationFormat is appended to items that carry a recommendation
	RecommendationFormat = " (tip: %s)"
)

// RenderText formats a step's question as plain text for transcripts and
// text-only channels.
func RenderText(step FlowStep) string {
	var sb strings.Builder
	sb.WriteString(step.Question.Prompt)
	switch step.QuestionType {
	case models.QuestionQuick:
		for i, opt := range step.Question.Options {
			fmt.Fprintf(&sb, OptionFormat, i+1, opt.Label)
		}
	case models.QuestionGrouped:
		for _, item := range step.Question.Items {
			fmt.Fprintf(&sb, ItemFormat, item.Label)
			if len(item.Options) > 0 {
				labels := make([]string, len(item.Options))
				for i, opt := range item.Options {
					labels[i] = opt.Label
				}
				sb.WriteString(": " + strings.Join(labels, ", "))
			}
			if item.Recommendation != "" {
				fmt.Fprintf(&sb, RecommendationFormat, item.Recommendation)
			}
		}
	}
	return sb.String()
}
