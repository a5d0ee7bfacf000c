package flow

import (
	"testing"

	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest_ServiceDetection(t *testing.T) {
	table := DefaultInferenceTable()

	got := table.Suggest("", "We're raising a seed round and need a Pitch Deck")
	require.NotEmpty(t, got)
	assert.Equal(t, FieldServiceType, got[0].Field)
	assert.Equal(t, string(models.ServicePitchDeck), got[0].Value)
	assert.Equal(t, "pitch deck", got[0].Trigger)

	// Service-specific patterns only apply once a service is known.
	for _, s := range got {
		assert.NotEqual(t, models.FieldPurpose, s.Field)
	}
}

func TestSuggest_ServiceScoped(t *testing.T) {
	table := DefaultInferenceTable()

	got := table.Suggest(models.ServiceBrandPackage, "We don't have a logo yet, just the name.")
	var hasLogo *Suggestion
	for i := range got {
		if got[i].Field == models.FieldHasLogo {
			hasLogo = &got[i]
		}
	}
	require.NotNil(t, hasLogo)
	assert.Equal(t, false, hasLogo.Value)
}

func TestSuggest_OnePerFieldHighestConfidence(t *testing.T) {
	table := NewInferenceTable([]InferencePattern{
		{Triggers: []string{"Reels"}, Field: models.FieldPlatforms, Value: []string{"instagram_reels"}, Confidence: 0.5},
		{Triggers: []string{"tiktok"}, Field: models.FieldPlatforms, Value: []string{"tiktok"}, Confidence: 0.9},
		{Triggers: []string{"sales"}, Field: models.FieldGoal, Value: "sales", Confidence: 0.6},
	})

	got := table.Suggest(models.ServiceSocialAds, "TikTok and reels, mostly for SALES")
	require.Len(t, got, 2)
	assert.Equal(t, models.FieldPlatforms, got[0].Field)
	assert.Equal(t, []string{"tiktok"}, got[0].Value)
	assert.Equal(t, models.FieldGoal, got[1].Field)
}

func TestSuggest_NoMatch(t *testing.T) {
	got := DefaultInferenceTable().Suggest(models.ServiceSocialAds, "hello there")
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestInferenceTable_PatternsIsCopy(t *testing.T) {
	table := DefaultInferenceTable()
	p := table.Patterns()
	p[0].Triggers[0] = "tampered"
	p[0].Confidence = 0

	again := table.Patterns()
	assert.NotEqual(t, 0.0, again[0].Confidence)
	assert.Equal(t, "launch video", again[0].Triggers[0])
}
