package flow

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/BTreeMap/IntakeFlow/internal/models"
	"gopkg.in/yaml.v3"
)

// Overrides replaces parts of the built-in catalog and smart-default tables.
// Flow steps are not overridable; they are reviewed as code.
//
//	catalog:
//	  pitch_deck:
//	    label: Investor Deck
//	defaults:
//	  ad_ctas:
//	    leads: Get a Quote
type Overrides struct {
	Catalog  map[models.ServiceType]ServiceInfo `yaml:"catalog"`
	Defaults DefaultsTables                     `yaml:"defaults"`
}

// LoadOverrides decodes YAML overrides from r. Unknown keys and unknown service types are errors.
func LoadOverrides(r io.Reader) (*Overrides, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var o Overrides
	if err := dec.Decode(&o); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode overrides: %w", err)
	}
	for st := range o.Catalog {
		if !models.IsValidServiceType(st) {
			return nil, fmt.Errorf("overrides: %w: %q", ErrUnknownService, st)
		}
	}
	return &o, nil
}

// LoadOverridesFile reads overrides from path.
func LoadOverridesFile(path string) (*Overrides, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open overrides file: %w", err)
	}
	defer f.Close()
	o, err := LoadOverrides(f)
	if err != nil {
		return nil, err
	}
	slog.Debug("flow.LoadOverridesFile: overrides loaded", "path", path, "catalogEntries", len(o.Catalog))
	return o, nil
}

// Options converts the overrides into Engine options layered on the built-in values.
// Empty members keep the built-in value; map members are merged key by key.
func (o *Overrides) Options() []Option {
	catalog := DefaultCatalog()
	for _, st := range models.ServiceTypes {
		patch, ok := o.Catalog[st]
		if !ok {
			continue
		}
		info, _ := catalog.Get(st)
		if patch.Label != "" {
			info.Label = patch.Label
		}
		if patch.Icon != "" {
			info.Icon = patch.Icon
		}
		if patch.Description != "" {
			info.Description = patch.Description
		}
		if patch.QuestionCount > 0 {
			info.QuestionCount = patch.QuestionCount
		}
		catalog = catalog.with(info)
	}

	tables := DefaultTables()
	d := o.Defaults
	if len(d.ShortFormPlatforms) > 0 {
		tables.ShortFormPlatforms = d.ShortFormPlatforms
	}
	setIf(&tables.LaunchVideoShortLength, d.LaunchVideoShortLength)
	setIf(&tables.LaunchVideoLongLength, d.LaunchVideoLongLength)
	setIf(&tables.VideoEditShortLength, d.VideoEditShortLength)
	setIf(&tables.VideoEditLongLength, d.VideoEditLongLength)
	mergeInto(tables.EditStyles, d.EditStyles)
	mergeInto(tables.DeckSlideCounts, d.DeckSlideCounts)
	mergeInto(tables.AdFormats, d.AdFormats)
	mergeInto(tables.AdCTAs, d.AdCTAs)
	mergeInto(tables.ContentFrequencies, d.ContentFrequencies)
	mergeInto(tables.ContentMixes, d.ContentMixes)

	return []Option{WithCatalog(catalog), WithDefaultsTables(tables)}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInto[V any](dst, src map[string]V) {
	for k, v := range src {
		dst[k] = v
	}
}
