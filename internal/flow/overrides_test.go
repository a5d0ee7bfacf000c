package flow

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOverrides = `
catalog:
  pitch_deck:
    label: Investor Deck
    question_count: 6
defaults:
  ad_ctas:
    leads: Get a Quote
  launch_video_short_length: 10-20 seconds
`

func TestLoadOverrides(t *testing.T) {
	o, err := LoadOverrides(strings.NewReader(sampleOverrides))
	require.NoError(t, err)

	e := NewEngine(MustDefaultRegistry(), o.Options()...)

	info, ok := e.Catalog().Get(models.ServicePitchDeck)
	require.True(t, ok)
	assert.Equal(t, "Investor Deck", info.Label)
	assert.Equal(t, 6, info.QuestionCount)
	assert.Equal(t, "presentation", info.Icon, "unset members keep the built-in value")
	assert.Equal(t, models.ServicePitchDeck, info.Type)

	ads := e.ApplySmartDefaults(models.ServiceSocialAds, &models.SocialAdsData{Goal: "leads"}).(*models.SocialAdsData)
	assert.Equal(t, "Get a Quote", ads.RecommendedCta)
	ads = e.ApplySmartDefaults(models.ServiceSocialAds, &models.SocialAdsData{Goal: "sales"}).(*models.SocialAdsData)
	assert.Equal(t, "Shop Now", ads.RecommendedCta, "other keys are merged, not replaced")

	lv := e.ApplySmartDefaults(models.ServiceLaunchVideo, &models.LaunchVideoData{Platforms: []string{"tiktok"}}).(*models.LaunchVideoData)
	assert.Equal(t, "10-20 seconds", lv.RecommendedLength)
}

func TestLoadOverrides_Empty(t *testing.T) {
	o, err := LoadOverrides(strings.NewReader(""))
	require.NoError(t, err)

	e := NewEngine(MustDefaultRegistry(), o.Options()...)
	assert.Equal(t, DefaultCatalog().List(), e.Catalog().List())
}

func TestLoadOverrides_Rejects(t *testing.T) {
	_, err := LoadOverrides(strings.NewReader("catalog:\n  podcast:\n    label: Pod\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownService))

	_, err = LoadOverrides(strings.NewReader("flows:\n  - id: x\n"))
	require.Error(t, err, "unknown keys are rejected")
}

func TestLoadOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleOverrides), 0o600))

	o, err := LoadOverridesFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Investor Deck", o.Catalog[models.ServicePitchDeck].Label)

	_, err = LoadOverridesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
