package flow

import "github.com/BTreeMap/IntakeFlow/internal/models"

// ServiceInfo describes a service for pickers and summaries.
type ServiceInfo struct {
	Type          models.ServiceType `json:"type" yaml:"-"`
	Label         string             `json:"label" yaml:"label"`
	Icon          string             `json:"icon" yaml:"icon"`
	Description   string             `json:"description" yaml:"description"`
	QuestionCount int                `json:"question_count" yaml:"question_count"`
}

// Catalog is the static registry of supported services.
type Catalog struct {
	entries []ServiceInfo
}

// DefaultCatalog returns the built-in service catalog.
func DefaultCatalog() Catalog {
	return Catalog{entries: []ServiceInfo{
		{Type: models.ServiceLaunchVideo, Label: "Launch Video", Icon: "rocket", Description: "A short video announcing a new product or feature.", QuestionCount: 5},
		{Type: models.ServiceVideoEdit, Label: "Video Editing", Icon: "scissors", Description: "Professional editing of footage you already have.", QuestionCount: 4},
		{Type: models.ServicePitchDeck, Label: "Pitch Deck", Icon: "presentation", Description: "An investor or sales deck, designed and written.", QuestionCount: 5},
		{Type: models.ServiceBrandPackage, Label: "Brand Package", Icon: "palette", Description: "Logo, colors, typography and brand guidelines.", QuestionCount: 4},
		{Type: models.ServiceSocialAds, Label: "Social Ads", Icon: "megaphone", Description: "Paid campaigns across social platforms.", QuestionCount: 5},
		{Type: models.ServiceSocialContent, Label: "Social Content", Icon: "calendar", Description: "An ongoing organic posting plan.", QuestionCount: 4},
	}}
}

// Get returns the catalog entry for st.
func (c Catalog) Get(st models.ServiceType) (ServiceInfo, bool) {
	for _, e := range c.entries {
		if e.Type == st {
			return e, true
		}
	}
	return ServiceInfo{}, false
}

// List returns every entry in catalog order.
func (c Catalog) List() []ServiceInfo {
	out := make([]ServiceInfo, len(c.entries))
	copy(out, c.entries)
	return out
}

// with returns a catalog where the entry for info.Type is replaced.
func (c Catalog) with(info ServiceInfo) Catalog {
	out := Catalog{entries: c.List()}
	for i, e := range out.entries {
		if e.Type == info.Type {
			out.entries[i] = info
			return out
		}
	}
	out.entries = append(out.entries, info)
	return out
}
