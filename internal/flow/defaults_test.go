package flow

import (
	"testing"

	"github.com/BTreeMap/IntakeFlow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySmartDefaults_LaunchVideo(t *testing.T) {
	e := newTestEngine(t)

	out := e.ApplySmartDefaults(models.ServiceLaunchVideo, &models.LaunchVideoData{Platforms: []string{"youtube", "tiktok"}})
	d := out.(*models.LaunchVideoData)
	assert.Equal(t, "15-30 seconds", d.RecommendedLength)
	assert.Equal(t, models.StorylineCreateForMe, d.StorylinePreference)

	out = e.ApplySmartDefaults(models.ServiceLaunchVideo, &models.LaunchVideoData{Platforms: []string{"youtube"}, StorylinePreference: models.StorylineHaveIdeas})
	d = out.(*models.LaunchVideoData)
	assert.Equal(t, "60-90 seconds", d.RecommendedLength)
	assert.Equal(t, models.StorylineHaveIdeas, d.StorylinePreference, "caller value must not be overwritten")
}

func TestApplySmartDefaults_VideoEdit(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		name      string
		in        *models.VideoEditData
		length    string
		style     string
		subtitles bool
	}{
		{
			name:      "short form platform",
			in:        &models.VideoEditData{VideoType: "event_recap", Platforms: []string{"tiktok"}},
			length:    "30-60 seconds",
			style:     "fast_paced",
			subtitles: true,
		},
		{
			name:      "long form platform",
			in:        &models.VideoEditData{VideoType: "talking_head", Platforms: []string{"youtube"}},
			length:    "3-5 minutes",
			style:     "clean",
			subtitles: true,
		},
		{
			name:      "explicit opt out is kept",
			in:        &models.VideoEditData{Platforms: []string{"youtube"}, Subtitles: models.Bool(false)},
			length:    "3-5 minutes",
			subtitles: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := e.ApplySmartDefaults(models.ServiceVideoEdit, tc.in).(*models.VideoEditData)
			assert.Equal(t, tc.length, d.RecommendedLength)
			assert.Equal(t, tc.style, d.RecommendedStyle)
			require.NotNil(t, d.Subtitles)
			assert.Equal(t, tc.subtitles, *d.Subtitles)
			require.NotNil(t, d.TextOverlays)
			assert.True(t, *d.TextOverlays)
		})
	}
}

func TestApplySmartDefaults_VideoEditKeepsChosenStyle(t *testing.T) {
	e := newTestEngine(t)
	d := e.ApplySmartDefaults(models.ServiceVideoEdit, &models.VideoEditData{VideoType: "ad", Style: "documentary"}).(*models.VideoEditData)
	assert.Empty(t, d.RecommendedStyle)
	assert.Empty(t, d.RecommendedLength, "no platforms means no length recommendation")
}

func TestApplySmartDefaults_PitchDeckAndBrand(t *testing.T) {
	e := newTestEngine(t)

	deck := e.ApplySmartDefaults(models.ServicePitchDeck, &models.PitchDeckData{Purpose: "fundraising"}).(*models.PitchDeckData)
	assert.Equal(t, "10-12 slides", deck.RecommendedSlideCount)

	brand := e.ApplySmartDefaults(models.ServiceBrandPackage, &models.BrandPackageData{HasLogo: models.Bool(true)}).(*models.BrandPackageData)
	assert.Equal(t, PackageBrandRefresh, brand.RecommendedPackage)

	brand = e.ApplySmartDefaults(models.ServiceBrandPackage, &models.BrandPackageData{HasLogo: models.Bool(false)}).(*models.BrandPackageData)
	assert.Equal(t, PackageFullIdentity, brand.RecommendedPackage)

	brand = e.ApplySmartDefaults(models.ServiceBrandPackage, &models.BrandPackageData{}).(*models.BrandPackageData)
	assert.Empty(t, brand.RecommendedPackage)
}

func TestApplySmartDefaults_Social(t *testing.T) {
	e := newTestEngine(t)

	ads := e.ApplySmartDefaults(models.ServiceSocialAds, &models.SocialAdsData{Goal: "leads"}).(*models.SocialAdsData)
	assert.Equal(t, "Sign Up", ads.RecommendedCta)
	assert.Equal(t, "lead_form", ads.RecommendedFormat)

	content := e.ApplySmartDefaults(models.ServiceSocialContent, &models.SocialContentData{Goal: "thought_leadership"}).(*models.SocialContentData)
	assert.Equal(t, "2-3 posts per week", content.RecommendedFrequency)
	assert.Equal(t, 60, content.RecommendedContentMix["educational"])

	total := 0
	for _, pct := range content.RecommendedContentMix {
		total += pct
	}
	assert.Equal(t, 100, total)
}

func TestApplySmartDefaults_Idempotent(t *testing.T) {
	e := newTestEngine(t)

	inputs := []models.IntakeData{
		&models.LaunchVideoData{Platforms: []string{"instagram_reels"}},
		&models.VideoEditData{VideoType: "vlog", Platforms: []string{"youtube_shorts"}},
		&models.PitchDeckData{Purpose: "sales"},
		&models.BrandPackageData{HasLogo: models.Bool(false)},
		&models.SocialAdsData{Goal: "sales"},
		&models.SocialContentData{Goal: "engagement"},
	}
	for _, in := range inputs {
		once := e.ApplySmartDefaults(in.Service(), in)
		twice := e.ApplySmartDefaults(in.Service(), once)
		assert.Equal(t, once, twice, "service=%s", in.Service())
	}
}

func TestApplySmartDefaults_DoesNotMutateInput(t *testing.T) {
	e := newTestEngine(t)
	in := &models.SocialAdsData{Goal: "traffic"}

	_ = e.ApplySmartDefaults(models.ServiceSocialAds, in)
	assert.Empty(t, in.RecommendedCta)
	assert.Empty(t, in.RecommendedFormat)
}

func TestApplySmartDefaults_ResultSharesNoStorage(t *testing.T) {
	e := newTestEngine(t)

	edit := &models.VideoEditData{Platforms: []string{"tiktok"}, Subtitles: models.Bool(true)}
	editOut := e.ApplySmartDefaults(models.ServiceVideoEdit, edit).(*models.VideoEditData)
	editOut.Platforms[0] = "youtube"
	*editOut.Subtitles = false
	assert.Equal(t, []string{"tiktok"}, edit.Platforms)
	assert.True(t, *edit.Subtitles)

	brand := &models.BrandPackageData{HasLogo: models.Bool(true), Deliverables: []string{"logo"}}
	brandOut := e.ApplySmartDefaults(models.ServiceBrandPackage, brand).(*models.BrandPackageData)
	brandOut.Deliverables[0] = "website"
	assert.Equal(t, []string{"logo"}, brand.Deliverables)

	content := &models.SocialContentData{
		Goal:                  "community",
		ContentPillars:        []string{"events"},
		RecommendedContentMix: map[string]int{"educational": 100},
	}
	contentOut := e.ApplySmartDefaults(models.ServiceSocialContent, content).(*models.SocialContentData)
	contentOut.ContentPillars[0] = "memes"
	contentOut.RecommendedContentMix["educational"] = 0
	assert.Equal(t, []string{"events"}, content.ContentPillars)
	assert.Equal(t, 100, content.RecommendedContentMix["educational"])
}

func TestApplySmartDefaults_UnsetTableKeys(t *testing.T) {
	e := newTestEngine(t)

	deck := e.ApplySmartDefaults(models.ServicePitchDeck, &models.PitchDeckData{CompanyName: "Acme"}).(*models.PitchDeckData)
	assert.Empty(t, deck.RecommendedSlideCount)

	ads := e.ApplySmartDefaults(models.ServiceSocialAds, &models.SocialAdsData{Goal: "unlisted"}).(*models.SocialAdsData)
	assert.Empty(t, ads.RecommendedFormat)
	assert.Empty(t, ads.RecommendedCta)

	content := e.ApplySmartDefaults(models.ServiceSocialContent, &models.SocialContentData{}).(*models.SocialContentData)
	assert.Empty(t, content.RecommendedFrequency)
	assert.Nil(t, content.RecommendedContentMix)
}

func TestApplySmartDefaults_TypedNilIsEmpty(t *testing.T) {
	e := newTestEngine(t)

	var brand *models.BrandPackageData
	out := e.ApplySmartDefaults(models.ServiceBrandPackage, brand)
	require.NotNil(t, out)
	assert.Empty(t, out.(*models.BrandPackageData).RecommendedPackage)

	var edit *models.VideoEditData
	d := e.ApplySmartDefaults(models.ServiceVideoEdit, edit).(*models.VideoEditData)
	require.NotNil(t, d.Subtitles)
	assert.True(t, *d.Subtitles)
}

func TestApplySmartDefaults_Mismatches(t *testing.T) {
	e := newTestEngine(t)

	in := &models.PitchDeckData{Purpose: "sales"}
	assert.Same(t, in, e.ApplySmartDefaults("podcast", in))
	assert.Same(t, in, e.ApplySmartDefaults(models.ServiceSocialAds, in))

	out := e.ApplySmartDefaults(models.ServiceVideoEdit, nil)
	require.NotNil(t, out)
	assert.True(t, *out.(*models.VideoEditData).Subtitles)
}

func TestWithDefaultsTables(t *testing.T) {
	tables := DefaultTables()
	tables.AdCTAs["leads"] = "Get a Quote"
	e := NewEngine(MustDefaultRegistry(), WithDefaultsTables(tables))

	// The engine keeps its own copy.
	tables.AdCTAs["leads"] = "changed later"

	ads := e.ApplySmartDefaults(models.ServiceSocialAds, &models.SocialAdsData{Goal: "leads"}).(*models.SocialAdsData)
	assert.Equal(t, "Get a Quote", ads.RecommendedCta)
}
