// Package units holds the static lookup data shared by the ingredient
// parser and the enrichers: the cooking-unit vocabulary, the density table
// and the grocery category keywords.
//
// The data is embedded YAML, decoded once on first use and never written
// afterwards, so a *Tables can be shared freely between goroutines.
package units

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/units.yaml
var unitsYAML []byte

//go:embed data/density.yaml
var densityYAML []byte

//go:embed data/categories.yaml
var categoriesYAML []byte

type unitFile struct {
	Units struct {
		Volume []string `yaml:"volume"`
		Weight []string `yaml:"weight"`
		Count  []string `yaml:"count"`
		Size   []string `yaml:"size"`
	} `yaml:"units"`
	Canonical      map[string]string `yaml:"canonical"`
	Modifiers      []string          `yaml:"modifiers"`
	PrepNotes      []string          `yaml:"prep_notes"`
	Containers     []string          `yaml:"containers"`
	ContainerUnits []string          `yaml:"container_units"`
	Attached       []string          `yaml:"attached"`
}

type densityFile struct {
	Ingredients     map[string]float64           `yaml:"ingredients"`
	Aliases         map[string]*string           `yaml:"aliases"`
	DomainOverrides map[string]map[string]string `yaml:"domain_overrides"`
	Rewrites        map[string]string            `yaml:"rewrites"`
}

type categoryFile struct {
	Categories map[string]string `yaml:"categories"`
}

type keywordCategory struct {
	keyword  string
	category string
}

// Tables is the immutable set of lookup data
type Tables struct {
	units          []string // Longest first
	canonical      map[string]string
	modifiers      []string
	prepNotes      []string
	containers     []string
	containerUnits []string
	attached       []string

	densities map[string]float64
	aliases   map[string]*string // nil target = ambiguous
	overrides map[string]map[string]string
	rewrites  map[string]string

	categories []keywordCategory // Longest keyword first, then alphabetical
}

var defaultTables = sync.OnceValue(func() *Tables {
	t, err := Load(unitsYAML, densityYAML, categoriesYAML)
	if err != nil {
		panic(fmt.Sprintf("units: embedded tables: %v", err))
	}
	return t
})

// Default returns the process-wide tables built from the embedded data
func Default() *Tables {
	return defaultTables()
}

// Load builds tables from raw YAML documents
func Load(unitsDoc, densityDoc, categoriesDoc []byte) (*Tables, error) {
	var uf unitFile
	if err := yaml.Unmarshal(unitsDoc, &uf); err != nil {
		return nil, fmt.Errorf("decode units: %w", err)
	}
	var df densityFile
	if err := yaml.Unmarshal(densityDoc, &df); err != nil {
		return nil, fmt.Errorf("decode density: %w", err)
	}
	var cf categoryFile
	if err := yaml.Unmarshal(categoriesDoc, &cf); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	t := &Tables{
		canonical:      lowerKeys(uf.Canonical),
		modifiers:      uf.Modifiers,
		prepNotes:      uf.PrepNotes,
		containers:     uf.Containers,
		containerUnits: uf.ContainerUnits,
		attached:       uf.Attached,
		densities:      make(map[string]float64, len(df.Ingredients)),
		aliases:        make(map[string]*string, len(df.Aliases)),
		overrides:      make(map[string]map[string]string, len(df.DomainOverrides)),
		rewrites:       lowerKeys(df.Rewrites),
	}

	t.units = append(t.units, uf.Units.Volume...)
	t.units = append(t.units, uf.Units.Weight...)
	t.units = append(t.units, uf.Units.Count...)
	t.units = append(t.units, uf.Units.Size...)
	if len(t.units) == 0 {
		return nil, fmt.Errorf("unit vocabulary is empty")
	}
	sort.SliceStable(t.units, func(i, j int) bool {
		return len(t.units[i]) > len(t.units[j])
	})

	for name, grams := range df.Ingredients {
		if grams <= 0 {
			return nil, fmt.Errorf("density for %q must be positive, got %v", name, grams)
		}
		t.densities[strings.ToLower(name)] = grams
	}
	for alias, target := range df.Aliases {
		if target != nil {
			canonical := strings.ToLower(*target)
			if _, ok := t.densities[canonical]; !ok {
				return nil, fmt.Errorf("alias %q points at unknown ingredient %q", alias, *target)
			}
			target = &canonical
		}
		t.aliases[strings.ToLower(alias)] = target
	}
	for domain, names := range df.DomainOverrides {
		t.overrides[strings.ToLower(domain)] = lowerKeys(names)
	}

	for keyword, category := range cf.Categories {
		t.categories = append(t.categories, keywordCategory{
			keyword:  strings.ToLower(keyword),
			category: category,
		})
	}
	sort.Slice(t.categories, func(i, j int) bool {
		a, b := t.categories[i].keyword, t.categories[j].keyword
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})

	return t, nil
}

func lowerKeys(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = v
	}
	return out
}

// Units returns the unit vocabulary, longest entry first. Callers must not modify it.
func (t *Tables) Units() []string { return t.units }

// Modifiers returns measurement modifiers such as "heaping" and "lightly packed"
func (t *Tables) Modifiers() []string { return t.modifiers }

// PrepNotes returns the preparation-note vocabulary
func (t *Tables) PrepNotes() []string { return t.prepNotes }

// Containers returns container words that complete a compound unit ("can", "jar")
func (t *Tables) Containers() []string { return t.containers }

// ContainerUnits returns the units allowed between a number and a container
func (t *Tables) ContainerUnits() []string { return t.containerUnits }

// AttachedUnits returns the units recognized when glued to a number ("65g")
func (t *Tables) AttachedUnits() []string { return t.attached }
