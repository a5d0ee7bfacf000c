package flow

import (
	"sort"
	"strings"

	"github.com/BTreeMap/IntakeFlow/internal/models"
)

// FieldServiceType is the pseudo-field used by patterns that suggest a service rather
// than a data value.
const FieldServiceType models.FieldID = "serviceType"

// InferencePattern maps trigger phrases to a suggested field value. An empty Service
// applies to every service.
type InferencePattern struct {
	Service    models.ServiceType `json:"service,omitempty"`
	Triggers   []string           `json:"triggers"`
	Field      models.FieldID     `json:"field"`
	Value      any                `json:"value"`
	Confidence float64            `json:"confidence"`
}

// Suggestion is a non-binding hint for the language layer.
type Suggestion struct {
	Field      models.FieldID `json:"field"`
	Value      any            `json:"value"`
	Confidence float64        `json:"confidence"`
	Trigger    string         `json:"trigger"`
}

// InferenceTable is an immutable list of inference patterns.
type InferenceTable struct {
	patterns []InferencePattern
}

// NewInferenceTable copies patterns into a table. Triggers are matched case-insensitively.
func NewInferenceTable(patterns []InferencePattern) *InferenceTable {
	out := make([]InferencePattern, len(patterns))
	for i, p := range patterns {
		p.Triggers = append([]string(nil), p.Triggers...)
		for j, trig := range p.Triggers {
			p.Triggers[j] = strings.ToLower(strings.TrimSpace(trig))
		}
		out[i] = p
	}
	return &InferenceTable{patterns: out}
}

// Patterns returns a copy of the table's patterns.
func (t *InferenceTable) Patterns() []InferencePattern {
	out := make([]InferencePattern, len(t.patterns))
	for i, p := range t.patterns {
		p.Triggers = append([]string(nil), p.Triggers...)
		out[i] = p
	}
	return out
}

// Suggest returns at most one suggestion per field for text, highest confidence first.
// When st is empty, only service-agnostic patterns and service suggestions are considered.
func (t *InferenceTable) Suggest(st models.ServiceType, text string) []Suggestion {
	lower := strings.ToLower(text)
	best := make(map[models.FieldID]Suggestion)
	for _, p := range t.patterns {
		if p.Service != "" && p.Service != st {
			continue
		}
		for _, trig := range p.Triggers {
			if trig == "" || !strings.Contains(lower, trig) {
				continue
			}
			if cur, ok := best[p.Field]; !ok || p.Confidence > cur.Confidence {
				best[p.Field] = Suggestion{Field: p.Field, Value: p.Value, Confidence: p.Confidence, Trigger: trig}
			}
			break
		}
	}

	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// DefaultInferenceTable returns the built-in heuristics.
func DefaultInferenceTable() *InferenceTable {
	return NewInferenceTable([]InferencePattern{
		// Service detection
		{Triggers: []string{"launch video", "product launch", "announcement video"}, Field: FieldServiceType, Value: string(models.ServiceLaunchVideo), Confidence: 0.85},
		{Triggers: []string{"edit my video", "edit my footage", "video editing", "raw footage"}, Field: FieldServiceType, Value: string(models.ServiceVideoEdit), Confidence: 0.85},
		{Triggers: []string{"pitch deck", "investor deck", "slide deck"}, Field: FieldServiceType, Value: string(models.ServicePitchDeck), Confidence: 0.9},
		{Triggers: []string{"logo", "branding", "brand identity"}, Field: FieldServiceType, Value: string(models.ServiceBrandPackage), Confidence: 0.7},
		{Triggers: []string{"facebook ads", "instagram ads", "paid social", "ad campaign"}, Field: FieldServiceType, Value: string(models.ServiceSocialAds), Confidence: 0.85},
		{Triggers: []string{"social media manager", "content calendar", "posting schedule"}, Field: FieldServiceType, Value: string(models.ServiceSocialContent), Confidence: 0.8},

		// Platforms
		{Triggers: []string{"tiktok"}, Field: models.FieldPlatforms, Value: []string{"tiktok"}, Confidence: 0.8},
		{Triggers: []string{"reels"}, Field: models.FieldPlatforms, Value: []string{"instagram_reels"}, Confidence: 0.75},
		{Triggers: []string{"youtube shorts", "shorts"}, Field: models.FieldPlatforms, Value: []string{"youtube_shorts"}, Confidence: 0.75},
		{Triggers: []string{"linkedin"}, Field: models.FieldPlatforms, Value: []string{"linkedin"}, Confidence: 0.7},

		// launch_video
		{Service: models.ServiceLaunchVideo, Triggers: []string{"i have an idea", "i have ideas", "i know what i want"}, Field: models.FieldStorylinePreference, Value: models.StorylineHaveIdeas, Confidence: 0.7},
		{Service: models.ServiceLaunchVideo, Triggers: []string{"no idea", "surprise me", "you decide"}, Field: models.FieldStorylinePreference, Value: models.StorylineCreateForMe, Confidence: 0.7},

		// video_edit
		{Service: models.ServiceVideoEdit, Triggers: []string{"podcast", "interview", "talking head"}, Field: models.FieldVideoType, Value: "talking_head", Confidence: 0.7},
		{Service: models.ServiceVideoEdit, Triggers: []string{"demo", "walkthrough"}, Field: models.FieldVideoType, Value: "product_demo", Confidence: 0.65},
		{Service: models.ServiceVideoEdit, Triggers: []string{"wedding", "conference", "event"}, Field: models.FieldVideoType, Value: "event_recap", Confidence: 0.65},
		{Service: models.ServiceVideoEdit, Triggers: []string{"no subtitles", "without captions"}, Field: models.FieldSubtitles, Value: false, Confidence: 0.8},

		// pitch_deck
		{Service: models.ServicePitchDeck, Triggers: []string{"raising", "investors", "seed round", "fundraise"}, Field: models.FieldPurpose, Value: "fundraising", Confidence: 0.8},
		{Service: models.ServicePitchDeck, Triggers: []string{"sales deck", "prospects", "clients"}, Field: models.FieldPurpose, Value: "sales", Confidence: 0.7},
		{Service: models.ServicePitchDeck, Triggers: []string{"existing deck", "current deck", "old deck"}, Field: models.FieldHasExistingDeck, Value: true, Confidence: 0.75},

		// brand_package
		{Service: models.ServiceBrandPackage, Triggers: []string{"have a logo", "existing logo", "current logo"}, Field: models.FieldHasLogo, Value: true, Confidence: 0.75},
		{Service: models.ServiceBrandPackage, Triggers: []string{"no logo", "don't have a logo", "need a logo"}, Field: models.FieldHasLogo, Value: false, Confidence: 0.8},

		// social_ads
		{Service: models.ServiceSocialAds, Triggers: []string{"more sales", "sell more", "conversions"}, Field: models.FieldGoal, Value: "sales", Confidence: 0.75},
		{Service: models.ServiceSocialAds, Triggers: []string{"leads", "sign ups", "signups"}, Field: models.FieldGoal, Value: "leads", Confidence: 0.7},
		{Service: models.ServiceSocialAds, Triggers: []string{"downloads", "installs"}, Field: models.FieldGoal, Value: "app_installs", Confidence: 0.75},
		{Service: models.ServiceSocialAds, Triggers: []string{"have creatives", "have the creative", "existing ads"}, Field: models.FieldHasContent, Value: true, Confidence: 0.7},

		// social_content
		{Service: models.ServiceSocialContent, Triggers: []string{"followers", "get noticed", "awareness"}, Field: models.FieldGoal, Value: "brand_awareness", Confidence: 0.65},
		{Service: models.ServiceSocialContent, Triggers: []string{"engagement", "likes", "comments"}, Field: models.FieldGoal, Value: "engagement", Confidence: 0.65},
		{Service: models.ServiceSocialContent, Triggers: []string{"thought leader", "expert"}, Field: models.FieldGoal, Value: "thought_leadership", Confidence: 0.7},
	})
}
