// Package templates supplies garment profiles and per-stage task checklists
// from a TOML template file. Template data is owned by the shop, not the
// engine: a built-in set ships embedded and a configured file replaces it
// wholesale.
package templates

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"atelier/internal/workflow"
)

//go:embed sample_templates.toml
var builtinTemplates []byte

type taskEntry struct {
	Name      string `toml:"name"`
	Mandatory bool   `toml:"mandatory"`
	Order     int    `toml:"order"`
}

type garmentEntry struct {
	DisplayName string                 `toml:"display_name"`
	AariWork    bool                   `toml:"aari_work"`
	Stages      map[string][]taskEntry `toml:"stages"`
}

type fileSchema struct {
	Stages  map[string][]taskEntry  `toml:"stages"`
	Garment map[string]garmentEntry `toml:"garment"`
}

// Provider resolves garment profiles and task templates. Safe for concurrent
// reads; template data is immutable after construction.
type Provider struct {
	base     map[workflow.Stage][]workflow.TaskTemplateEntry
	garments map[string]garment
}

type garment struct {
	profile   workflow.GarmentProfile
	overrides map[workflow.Stage][]workflow.TaskTemplateEntry
}

// NewProvider loads templates from path, or the built-in set when path is
// empty.
func NewProvider(path string) (*Provider, error) {
	data := builtinTemplates
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read templates %s: %w", path, err)
		}
		data = raw
	}
	return parse(data)
}

func parse(data []byte) (*Provider, error) {
	var schema fileSchema
	if err := toml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if len(schema.Garment) == 0 {
		return nil, fmt.Errorf("templates: no garment types defined")
	}

	base, err := convertStages("stages", schema.Stages)
	if err != nil {
		return nil, err
	}

	titler := cases.Title(language.English)
	garments := make(map[string]garment, len(schema.Garment))
	for key, entry := range schema.Garment {
		name := strings.ToLower(strings.TrimSpace(key))
		if name == "" {
			return nil, fmt.Errorf("templates: empty garment type key")
		}
		overrides, err := convertStages("garment."+name+".stages", entry.Stages)
		if err != nil {
			return nil, err
		}
		display := strings.TrimSpace(entry.DisplayName)
		if display == "" {
			display = titler.String(strings.ReplaceAll(name, "_", " "))
		}
		garments[name] = garment{
			profile: workflow.GarmentProfile{
				Type:        name,
				DisplayName: display,
				AariWork:    entry.AariWork,
			},
			overrides: overrides,
		}
	}

	return &Provider{base: base, garments: garments}, nil
}

func convertStages(section string, stages map[string][]taskEntry) (map[workflow.Stage][]workflow.TaskTemplateEntry, error) {
	converted := make(map[workflow.Stage][]workflow.TaskTemplateEntry, len(stages))
	for key, entries := range stages {
		stage, ok := workflow.ParseStage(key)
		if !ok {
			return nil, fmt.Errorf("templates: %s: unknown stage %q", section, key)
		}
		if stage.IsTerminal() {
			return nil, fmt.Errorf("templates: %s: stage %q cannot have tasks", section, key)
		}
		list := make([]workflow.TaskTemplateEntry, 0, len(entries))
		for _, entry := range entries {
			name := strings.TrimSpace(entry.Name)
			if name == "" {
				return nil, fmt.Errorf("templates: %s.%s: task with empty name", section, key)
			}
			list = append(list, workflow.TaskTemplateEntry{
				Name:      name,
				Mandatory: entry.Mandatory,
				Order:     entry.Order,
			})
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
		converted[stage] = list
	}
	return converted, nil
}

// GarmentTypes returns the known garment type keys, sorted.
func (p *Provider) GarmentTypes() []string {
	types := make([]string, 0, len(p.garments))
	for key := range p.garments {
		types = append(types, key)
	}
	sort.Strings(types)
	return types
}

// Profile returns the garment profile for a type.
func (p *Provider) Profile(garmentType string) (workflow.GarmentProfile, error) {
	entry, ok := p.garments[strings.ToLower(strings.TrimSpace(garmentType))]
	if !ok {
		return workflow.GarmentProfile{}, workflow.Wrap(workflow.ErrNotFound,
			"templates", "profile", "unknown garment type "+garmentType, nil)
	}
	return entry.profile, nil
}

// TaskTemplate returns the checklist template for (garmentType, stage). A
// garment-specific stage list overrides the shared one; a stage with no
// entries in either yields an empty template.
func (p *Provider) TaskTemplate(garmentType string, stage workflow.Stage) ([]workflow.TaskTemplateEntry, error) {
	entry, ok := p.garments[strings.ToLower(strings.TrimSpace(garmentType))]
	if !ok {
		return nil, workflow.Wrap(workflow.ErrNotFound,
			"templates", "task template", "unknown garment type "+garmentType, nil)
	}
	if !stage.IsValid() {
		return nil, workflow.Wrap(workflow.ErrInvalidStage, "templates", "task template", string(stage), nil)
	}

	source := p.base[stage]
	if override, ok := entry.overrides[stage]; ok {
		source = override
	}
	out := make([]workflow.TaskTemplateEntry, len(source))
	copy(out, source)
	return out, nil
}
