package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Error variables for data decoding.
var (
	ErrUnknownServiceType = errors.New("unknown service type")
	ErrServiceMismatch    = errors.New("data does not belong to service type")
)

// IntakeData is the per-service data collected during an intake dialog.
// Implementations are the six *XxxData structs below; the engine only reads them
// and returns derived copies.
type IntakeData interface {
	// Service returns the discriminant of the data shape.
	Service() ServiceType
	// Lookup returns the value of field and whether it is present.
	// Pointer fields are dereferenced; nil pointers, nil slices and empty strings are absent.
	Lookup(field FieldID) (any, bool)
}

// LaunchVideoData is collected for product launch videos.
type LaunchVideoData struct {
	ProductName         string   `json:"productName,omitempty"`
	ProductDescription  string   `json:"productDescription,omitempty"`
	TargetAudience      string   `json:"targetAudience,omitempty"`
	Platforms           []string `json:"platforms,omitempty"`
	StorylinePreference string   `json:"storylinePreference,omitempty"`
	StorylineNotes      string   `json:"storylineNotes,omitempty"`
	Tone                string   `json:"tone,omitempty"`
	References          string   `json:"references,omitempty"`
	Deadline            string   `json:"deadline,omitempty"`
	RecommendedLength   string   `json:"recommendedLength,omitempty"`
}

// VideoEditData is collected for editing existing footage.
type VideoEditData struct {
	VideoType         string   `json:"videoType,omitempty"`
	FootageLink       string   `json:"footageLink,omitempty"`
	FootageMinutes    *int     `json:"footageMinutes,omitempty"`
	Platforms         []string `json:"platforms,omitempty"`
	Style             string   `json:"style,omitempty"`
	Music             string   `json:"music,omitempty"`
	Subtitles         *bool    `json:"subtitles,omitempty"`
	TextOverlays      *bool    `json:"textOverlays,omitempty"`
	Notes             string   `json:"notes,omitempty"`
	RecommendedLength string   `json:"recommendedLength,omitempty"`
	RecommendedStyle  string   `json:"recommendedStyle,omitempty"`
}

// PitchDeckData is collected for pitch decks.
type PitchDeckData struct {
	CompanyName           string `json:"companyName,omitempty"`
	OneLiner              string `json:"oneLiner,omitempty"`
	CompanyStage          string `json:"companyStage,omitempty"`
	Purpose               string `json:"purpose,omitempty"`
	HasExistingDeck       *bool  `json:"hasExistingDeck,omitempty"`
	ExistingDeckLink      string `json:"existingDeckLink,omitempty"`
	KeyMetrics            string `json:"keyMetrics,omitempty"`
	FundingAsk            string `json:"fundingAsk,omitempty"`
	Deadline              string `json:"deadline,omitempty"`
	RecommendedSlideCount string `json:"recommendedSlideCount,omitempty"`
}

// BrandPackageData is collected for brand identity packages.
type BrandPackageData struct {
	BusinessName       string   `json:"businessName,omitempty"`
	Industry           string   `json:"industry,omitempty"`
	TargetAudience     string   `json:"targetAudience,omitempty"`
	HasLogo            *bool    `json:"hasLogo,omitempty"`
	LogoLink           string   `json:"logoLink,omitempty"`
	Deliverables       []string `json:"deliverables,omitempty"`
	BrandPersonality   string   `json:"brandPersonality,omitempty"`
	RecommendedPackage string   `json:"recommendedPackage,omitempty"`
}

// SocialAdsData is collected for paid social campaigns.
type SocialAdsData struct {
	BusinessName      string   `json:"businessName,omitempty"`
	ProductOrService  string   `json:"productOrService,omitempty"`
	Website           string   `json:"website,omitempty"`
	Goal              string   `json:"goal,omitempty"`
	TargetAudience    string   `json:"targetAudience,omitempty"`
	MonthlyBudget     *int     `json:"monthlyBudget,omitempty"`
	Platforms         []string `json:"platforms,omitempty"`
	HasContent        *bool    `json:"hasContent,omitempty"`
	ContentLink       string   `json:"contentLink,omitempty"`
	RecommendedFormat string   `json:"recommendedFormat,omitempty"`
	RecommendedCta    string   `json:"recommendedCta,omitempty"`
}

// SocialContentData is collected for organic social content retainers.
type SocialContentData struct {
	BrandName             string         `json:"brandName,omitempty"`
	Industry              string         `json:"industry,omitempty"`
	Goal                  string         `json:"goal,omitempty"`
	Platforms             []string       `json:"platforms,omitempty"`
	BrandVoice            string         `json:"brandVoice,omitempty"`
	ContentPillars        []string       `json:"contentPillars,omitempty"`
	RecommendedFrequency  string         `json:"recommendedFrequency,omitempty"`
	RecommendedContentMix map[string]int `json:"recommendedContentMix,omitempty"`
}

func (*LaunchVideoData) Service() ServiceType   { return ServiceLaunchVideo }
func (*VideoEditData) Service() ServiceType     { return ServiceVideoEdit }
func (*PitchDeckData) Service() ServiceType     { return ServicePitchDeck }
func (*BrandPackageData) Service() ServiceType  { return ServiceBrandPackage }
func (*SocialAdsData) Service() ServiceType     { return ServiceSocialAds }
func (*SocialContentData) Service() ServiceType { return ServiceSocialContent }

func (d *LaunchVideoData) Lookup(field FieldID) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch field {
	case FieldProductName:
		return str(d.ProductName)
	case FieldProductDescription:
		return str(d.ProductDescription)
	case FieldTargetAudience:
		return str(d.TargetAudience)
	case FieldPlatforms:
		return list(d.Platforms)
	case FieldStorylinePreference:
		return str(d.StorylinePreference)
	case FieldStorylineNotes:
		return str(d.StorylineNotes)
	case FieldTone:
		return str(d.Tone)
	case FieldReferences:
		return str(d.References)
	case FieldDeadline:
		return str(d.Deadline)
	case FieldRecommendedLength:
		return str(d.RecommendedLength)
	}
	return nil, false
}

func (d *VideoEditData) Lookup(field FieldID) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch field {
	case FieldVideoType:
		return str(d.VideoType)
	case FieldFootageLink:
		return str(d.FootageLink)
	case FieldFootageMinutes:
		return intPtr(d.FootageMinutes)
	case FieldPlatforms:
		return list(d.Platforms)
	case FieldStyle:
		return str(d.Style)
	case FieldMusic:
		return str(d.Music)
	case FieldSubtitles:
		return boolPtr(d.Subtitles)
	case FieldTextOverlays:
		return boolPtr(d.TextOverlays)
	case FieldNotes:
		return str(d.Notes)
	case FieldRecommendedLength:
		return str(d.RecommendedLength)
	case FieldRecommendedStyle:
		return str(d.RecommendedStyle)
	}
	return nil, false
}

func (d *PitchDeckData) Lookup(field FieldID) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch field {
	case FieldCompanyName:
		return str(d.CompanyName)
	case FieldOneLiner:
		return str(d.OneLiner)
	case FieldCompanyStage:
		return str(d.CompanyStage)
	case FieldPurpose:
		return str(d.Purpose)
	case FieldHasExistingDeck:
		return boolPtr(d.HasExistingDeck)
	case FieldExistingDeckLink:
		return str(d.ExistingDeckLink)
	case FieldKeyMetrics:
		return str(d.KeyMetrics)
	case FieldFundingAsk:
		return str(d.FundingAsk)
	case FieldDeadline:
		return str(d.Deadline)
	case FieldRecommendedSlideCount:
		return str(d.RecommendedSlideCount)
	}
	return nil, false
}

func (d *BrandPackageData) Lookup(field FieldID) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch field {
	case FieldBusinessName:
		return str(d.BusinessName)
	case FieldIndustry:
		return str(d.Industry)
	case FieldTargetAudience:
		return str(d.TargetAudience)
	case FieldHasLogo:
		return boolPtr(d.HasLogo)
	case FieldLogoLink:
		return str(d.LogoLink)
	case FieldDeliverables:
		return list(d.Deliverables)
	case FieldBrandPersonality:
		return str(d.BrandPersonality)
	case FieldRecommendedPackage:
		return str(d.RecommendedPackage)
	}
	return nil, false
}

func (d *SocialAdsData) Lookup(field FieldID) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch field {
	case FieldBusinessName:
		return str(d.BusinessName)
	case FieldProductOrService:
		return str(d.ProductOrService)
	case FieldWebsite:
		return str(d.Website)
	case FieldGoal:
		return str(d.Goal)
	case FieldTargetAudience:
		return str(d.TargetAudience)
	case FieldMonthlyBudget:
		return intPtr(d.MonthlyBudget)
	case FieldPlatforms:
		return list(d.Platforms)
	case FieldHasContent:
		return boolPtr(d.HasContent)
	case FieldContentLink:
		return str(d.ContentLink)
	case FieldRecommendedFormat:
		return str(d.RecommendedFormat)
	case FieldRecommendedCta:
		return str(d.RecommendedCta)
	}
	return nil, false
}

func (d *SocialContentData) Lookup(field FieldID) (any, bool) {
	if d == nil {
		return nil, false
	}
	switch field {
	case FieldBrandName:
		return str(d.BrandName)
	case FieldIndustry:
		return str(d.Industry)
	case FieldGoal:
		return str(d.Goal)
	case FieldPlatforms:
		return list(d.Platforms)
	case FieldBrandVoice:
		return str(d.BrandVoice)
	case FieldContentPillars:
		return list(d.ContentPillars)
	case FieldRecommendedFrequency:
		return str(d.RecommendedFrequency)
	case FieldRecommendedContentMix:
		if d.RecommendedContentMix == nil {
			return nil, false
		}
		return d.RecommendedContentMix, true
	}
	return nil, false
}

func str(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	return s, true
}

func list(l []string) (any, bool) {
	if l == nil {
		return nil, false
	}
	return l, true
}

func boolPtr(b *bool) (any, bool) {
	if b == nil {
		return nil, false
	}
	return *b, true
}

func intPtr(i *int) (any, bool) {
	if i == nil {
		return nil, false
	}
	return *i, true
}

// Bool returns a pointer to b. Useful for building data literals.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i.
func Int(i int) *int { return &i }

// Clone returns a deep copy of d. A nil receiver yields an empty value.
func (d *LaunchVideoData) Clone() *LaunchVideoData {
	if d == nil {
		return &LaunchVideoData{}
	}
	out := *d
	out.Platforms = slices.Clone(d.Platforms)
	return &out
}

// Clone returns a deep copy of d. A nil receiver yields an empty value.
func (d *VideoEditData) Clone() *VideoEditData {
	if d == nil {
		return &VideoEditData{}
	}
	out := *d
	out.FootageMinutes = clonePtr(d.FootageMinutes)
	out.Platforms = slices.Clone(d.Platforms)
	out.Subtitles = clonePtr(d.Subtitles)
	out.TextOverlays = clonePtr(d.TextOverlays)
	return &out
}

// Clone returns a deep copy of d. A nil receiver yields an empty value.
func (d *PitchDeckData) Clone() *PitchDeckData {
	if d == nil {
		return &PitchDeckData{}
	}
	out := *d
	out.HasExistingDeck = clonePtr(d.HasExistingDeck)
	return &out
}

// Clone returns a deep copy of d. A nil receiver yields an empty value.
func (d *BrandPackageData) Clone() *BrandPackageData {
	if d == nil {
		return &BrandPackageData{}
	}
	out := *d
	out.HasLogo = clonePtr(d.HasLogo)
	out.Deliverables = slices.Clone(d.Deliverables)
	return &out
}

// Clone returns a deep copy of d. A nil receiver yields an empty value.
func (d *SocialAdsData) Clone() *SocialAdsData {
	if d == nil {
		return &SocialAdsData{}
	}
	out := *d
	out.MonthlyBudget = clonePtr(d.MonthlyBudget)
	out.Platforms = slices.Clone(d.Platforms)
	out.HasContent = clonePtr(d.HasContent)
	return &out
}

// Clone returns a deep copy of d. A nil receiver yields an empty value.
func (d *SocialContentData) Clone() *SocialContentData {
	if d == nil {
		return &SocialContentData{}
	}
	out := *d
	out.Platforms = slices.Clone(d.Platforms)
	out.ContentPillars = slices.Clone(d.ContentPillars)
	out.RecommendedContentMix = maps.Clone(d.RecommendedContentMix)
	return &out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NewData returns an empty data shape for st.
func NewData(st ServiceType) (IntakeData, error) {
	switch st {
	case ServiceLaunchVideo:
		return &LaunchVideoData{}, nil
	case ServiceVideoEdit:
		return &VideoEditData{}, nil
	case ServicePitchDeck:
		return &PitchDeckData{}, nil
	case ServiceBrandPackage:
		return &BrandPackageData{}, nil
	case ServiceSocialAds:
		return &SocialAdsData{}, nil
	case ServiceSocialContent:
		return &SocialContentData{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownServiceType, st)
}

// DecodeData decodes raw JSON into the data shape of st. Empty input yields an empty shape.
func DecodeData(st ServiceType, raw []byte) (IntakeData, error) {
	data, err := NewData(st)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return data, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to decode %s data: %w", st, err)
	}
	return data, nil
}

// MergeData folds a JSON fragment into data following RFC 7386 merge semantics
// and returns a new value. A null member in the fragment clears that field.
// The input is not modified.
func MergeData(data IntakeData, fragment []byte) (IntakeData, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: nil data", ErrUnknownServiceType)
	}
	current, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current data: %w", err)
	}
	if len(fragment) == 0 {
		return DecodeData(data.Service(), current)
	}
	merged, err := jsonpatch.MergePatch(current, fragment)
	if err != nil {
		return nil, fmt.Errorf("failed to merge data fragment: %w", err)
	}
	return DecodeData(data.Service(), merged)
}
