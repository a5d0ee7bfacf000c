package flow

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// DefaultsTables holds the lookup tables behind smart defaults.
type DefaultsTables struct {
	// ShortFormPlatforms are platforms that favour short runtimes.
	ShortFormPlatforms []string `yaml:"short_form_platforms"`

	LaunchVideoShortLength string `yaml:"launch_video_short_length"`
	LaunchVideoLongLength  string `yaml:"launch_video_long_length"`
	VideoEditShortLength   string `yaml:"video_edit_short_length"`
	VideoEditLongLength    string `yaml:"video_edit_long_length"`

	// EditStyles maps videoType to a recommended editing style.
	EditStyles map[string]string `yaml:"edit_styles"`
	// DeckSlideCounts maps a deck purpose to a slide count band.
	DeckSlideCounts map[string]string `yaml:"deck_slide_counts"`
	// AdFormats and AdCTAs map a social_ads goal to a format and call to action.
	AdFormats map[string]string `yaml:"ad_formats"`
	AdCTAs    map[string]string `yaml:"ad_ctas"`
	// ContentFrequencies and ContentMixes map a social_content goal to a cadence and mix.
	ContentFrequencies map[string]string         `yaml:"content_frequencies"`
	ContentMixes       map[string]map[string]int `yaml:"content_mixes"`
}

// Recommended brand_package values.
const (
	PackageBrandRefresh = "brand_refresh"
	PackageFullIdentity = "full_identity"
)

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() DefaultsTables {
	return DefaultsTables{
		ShortFormPlatforms:     []string{"tiktok", "instagram_reels", "youtube_shorts"},
		LaunchVideoShortLength: "15-30 seconds",
		LaunchVideoLongLength:  "60-90 seconds",
		VideoEditShortLength:   "30-60 seconds",
		VideoEditLongLength:    "3-5 minutes",
		EditStyles: map[string]string{
			"talking_head": "clean",
			"product_demo": "clean",
			"event_recap":  "fast_paced",
			"tutorial":     "clean",
			"vlog":         "fast_paced",
			"ad":           "cinematic",
		},
		DeckSlideCounts: map[string]string{
			"fundraising": "10-12 slides",
			"sales":       "8-10 slides",
			"partnership": "8-10 slides",
			"internal":    "6-8 slides",
		},
		AdFormats: map[string]string{
			"awareness":    "video",
			"traffic":      "single_image",
			"leads":        "lead_form",
			"sales":        "carousel",
			"app_installs": "video",
		},
		AdCTAs: map[string]string{
			"awareness":    "Learn More",
			"traffic":      "Visit Website",
			"leads":        "Sign Up",
			"sales":        "Shop Now",
			"app_installs": "Install Now",
		},
		ContentFrequencies: map[string]string{
			"brand_awareness":    "5-7 posts per week",
			"engagement":         "4-5 posts per week",
			"community":          "3-4 posts per week",
			"sales":              "4-5 posts per week",
			"thought_leadership": "2-3 posts per week",
		},
		ContentMixes: map[string]map[string]int{
			"brand_awareness":    {"educational": 30, "entertaining": 40, "promotional": 10, "behind_the_scenes": 20},
			"engagement":         {"educational": 20, "entertaining": 50, "promotional": 10, "behind_the_scenes": 20},
			"community":          {"educational": 20, "entertaining": 30, "promotional": 10, "behind_the_scenes": 40},
			"sales":              {"educational": 20, "entertaining": 20, "promotional": 40, "behind_the_scenes": 20},
			"thought_leadership": {"educational": 60, "entertaining": 10, "promotional": 10, "behind_the_scenes": 20},
		},
	}
}

// Clone returns a deep copy of t.
func (t DefaultsTables) Clone() DefaultsTables {
	out := t
	out.ShortFormPlatforms = slices.Clone(t.ShortFormPlatforms)
	out.EditStyles = maps.Clone(t.EditStyles)
	out.DeckSlideCounts = maps.Clone(t.DeckSlideCounts)
	out.AdFormats = maps.Clone(t.AdFormats)
	out.AdCTAs = maps.Clone(t.AdCTAs)
	out.ContentFrequencies = maps.Clone(t.ContentFrequencies)
	if t.ContentMixes != nil {
		out.ContentMixes = make(map[string]map[string]int, len(t.ContentMixes))
		for k, v := range t.ContentMixes {
			out.ContentMixes[k] = maps.Clone(v)
		}
	}
	return out
}

func (t DefaultsTables) hasShortForm(platforms []string) bool {
	for _, p := range platforms {
		if slices.Contains(t.ShortFormPlatforms, p) {
			return true
		}
	}
	return false
}

// applyDefaults returns an enriched deep copy of data. Rules only fill fields that are
// currently unset, so applying them twice yields the same value. Table-keyed rules need
// their key: an unset or unlisted purpose or goal leaves the recommendation unset.
func (t DefaultsTables) applyDefaults(data models.IntakeData) models.IntakeData {
	switch d := data.(type) {
	case *models.LaunchVideoData:
		out := d.Clone()
		if out.RecommendedLength == "" && len(out.Platforms) > 0 {
			out.RecommendedLength = t.LaunchVideoLongLength
			if t.hasShortForm(out.Platforms) {
				out.RecommendedLength = t.LaunchVideoShortLength
			}
		}
		if out.StorylinePreference == "" {
			out.StorylinePreference = models.StorylineCreateForMe
		}
		return out

	case *models.VideoEditData:
		out := d.Clone()
		if out.Subtitles == nil {
			out.Subtitles = models.Bool(true)
		}
		if out.TextOverlays == nil {
			out.TextOverlays = models.Bool(true)
		}
		if out.RecommendedLength == "" && len(out.Platforms) > 0 {
			out.RecommendedLength = t.VideoEditLongLength
			if t.hasShortForm(out.Platforms) {
				out.RecommendedLength = t.VideoEditShortLength
			}
		}
		if out.Style == "" && out.RecommendedStyle == "" {
			out.RecommendedStyle = t.EditStyles[out.VideoType]
		}
		return out

	case *models.PitchDeckData:
		out := d.Clone()
		if out.RecommendedSlideCount == "" {
			out.RecommendedSlideCount = t.DeckSlideCounts[out.Purpose]
		}
		return out

	case *models.BrandPackageData:
		out := d.Clone()
		if out.RecommendedPackage == "" && out.HasLogo != nil {
			out.RecommendedPackage = PackageFullIdentity
			if *out.HasLogo {
				out.RecommendedPackage = PackageBrandRefresh
			}
		}
		return out

	case *models.SocialAdsData:
		out := d.Clone()
		if out.RecommendedFormat == "" {
			out.RecommendedFormat = t.AdFormats[out.Goal]
		}
		if out.RecommendedCta == "" {
			out.RecommendedCta = t.AdCTAs[out.Goal]
		}
		return out

	case *models.SocialContentData:
		out := d.Clone()
		if out.RecommendedFrequency == "" {
			out.RecommendedFrequency = t.ContentFrequencies[out.Goal]
		}
		if out.RecommendedContentMix == nil {
			out.RecommendedContentMix = maps.Clone(t.ContentMixes[out.Goal])
		}
		return out
	}

	slog.Error("flow.applyDefaults: unsupported data shape", "type", fmt.Sprintf("%T", data))
	return data
}
