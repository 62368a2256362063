package units

import "strings"

// densityModifiers are descriptive prefixes and suffixes that do not change
// an ingredient's density ("softened butter", "flour, sifted").
var densityModifiers = []string{
	"room temperature ",
	"cold ",
	"warm ",
	"melted ",
	"softened ",
	", softened",
	", melted",
	", cold",
	", at room temperature",
	", room temperature",
	", chilled",
	", sifted",
}

// Density returns grams per US cup for an ingredient name.
//
// Lookup order: direct entry, alias (an ambiguous alias stops the search),
// plural/singular variant; then the same again with descriptive modifiers
// stripped from the name.
func (t *Tables) Density(name string) (float64, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return 0, false
	}

	if grams, ok := t.lookupDensity(normalized); ok {
		return grams, true
	}

	stripped := stripDensityModifiers(normalized)
	if stripped != normalized {
		return t.lookupDensity(stripped)
	}
	return 0, false
}

// DensityForDomain is Density with the per-site overrides for domain applied first.
// The domain may carry a "www." prefix.
func (t *Tables) DensityForDomain(name, domain string) (float64, bool) {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	if overrides, ok := t.overrides[domain]; ok {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if canonical, ok := overrides[normalized]; ok {
			if grams, ok := t.densities[strings.ToLower(canonical)]; ok {
				return grams, true
			}
		}
	}
	return t.Density(name)
}

func (t *Tables) lookupDensity(name string) (float64, bool) {
	if grams, ok := t.densities[name]; ok {
		return grams, true
	}

	if target, ok := t.aliases[name]; ok {
		if target == nil {
			return 0, false
		}
		if grams, ok := t.densities[*target]; ok {
			return grams, true
		}
	}

	if grams, ok := t.densities[name+"s"]; ok {
		return grams, true
	}
	if singular, ok := strings.CutSuffix(name, "s"); ok {
		if grams, ok := t.densities[singular]; ok {
			return grams, true
		}
	}

	return 0, false
}

func stripDensityModifiers(s string) string {
	for _, modifier := range densityModifiers {
		s = strings.TrimPrefix(s, modifier)
		s = strings.TrimSuffix(s, modifier)
	}
	return s
}

// Rewrite returns the preferred spelling of an ingredient name, if one is known
func (t *Tables) Rewrite(name string) (string, bool) {
	rewritten, ok := t.rewrites[strings.ToLower(strings.TrimSpace(name))]
	return rewritten, ok
}

// Density looks up grams per cup using the default tables
func Density(name string) (float64, bool) {
	return Default().Density(name)
}
