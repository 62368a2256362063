package units

import "strings"

// Cups per canonical volume unit
const (
	CupsPerTbsp   = 1.0 / 16.0
	CupsPerTsp    = 1.0 / 48.0
	CupsPerFlOz   = 1.0 / 8.0
	CupsPerPint   = 2.0
	CupsPerQuart  = 4.0
	CupsPerGallon = 16.0
	CupsPerML     = 1.0 / 236.588
	CupsPerL      = 1000.0 / 236.588
)

// Grams per imperial weight unit
const (
	GramsPerOz = 28.3495
	GramsPerLb = 453.592
)

const eachSuffix = " each"

// CanonicalUnit maps a unit as written to its canonical form:
// "tablespoons" → "tbsp", "heaping cups" → "heaping cup", "ounces each" → "oz each".
// Unknown units are returned lowercased.
func (t *Tables) CanonicalUnit(unit string) string {
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return ""
	}

	suffix := ""
	if base, ok := strings.CutSuffix(unit, eachSuffix); ok && base != "" {
		unit, suffix = base, eachSuffix
	}

	for _, modifier := range t.modifiers {
		rest, ok := strings.CutPrefix(unit, modifier)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)
		if rest != "" {
			return modifier + " " + t.canonicalBase(rest) + suffix
		}
	}

	return t.canonicalBase(unit) + suffix
}

func (t *Tables) canonicalBase(unit string) string {
	if canonical, ok := t.canonical[unit]; ok {
		return canonical
	}
	return unit
}

// CanonicalUnit maps a unit to its canonical form using the default tables
func CanonicalUnit(unit string) string {
	return Default().CanonicalUnit(unit)
}

// IsMetricWeight reports whether a canonical unit is g, kg or mg
func IsMetricWeight(canonical string) bool {
	switch canonical {
	case "g", "kg", "mg":
		return true
	}
	return false
}

// IsWeight reports whether a canonical unit measures mass
func IsWeight(canonical string) bool {
	return IsMetricWeight(canonical) || canonical == "oz" || canonical == "lb"
}

// CupsPer returns how many cups one canonical volume unit holds
func CupsPer(canonical string) (float64, bool) {
	switch canonical {
	case "cup":
		return 1, true
	case "tbsp":
		return CupsPerTbsp, true
	case "tsp":
		return CupsPerTsp, true
	case "fl oz":
		return CupsPerFlOz, true
	case "pint":
		return CupsPerPint, true
	case "quart":
		return CupsPerQuart, true
	case "gallon":
		return CupsPerGallon, true
	case "ml":
		return CupsPerML, true
	case "l":
		return CupsPerL, true
	}
	return 0, false
}

// IsVolume reports whether a canonical unit can be converted to cups
func IsVolume(canonical string) bool {
	_, ok := CupsPer(canonical)
	return ok
}
