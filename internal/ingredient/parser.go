// Package ingredient decomposes free-text ingredient lines into amounts,
// units, an item name and an optional preparation note.
//
// Parsing is best effort and never fails: text that cannot be decomposed is
// passed through as the item. Units keep the spelling used in the line;
// units.CanonicalUnit maps them to a canonical form when needed.
package ingredient

import (
	"strings"
	"unicode"

	"github.com/ppiankov/larder/internal/model"
	"github.com/ppiankov/larder/internal/units"
)

// Parser parses ingredient lines against a set of unit tables
type Parser struct {
	tables *units.Tables
}

// NewParser creates a parser. A nil tables argument selects units.Default().
func NewParser(tables *units.Tables) *Parser {
	if tables == nil {
		tables = units.Default()
	}
	return &Parser{tables: tables}
}

var defaultParser = NewParser(nil)

// Parse parses one line with the default tables
func Parse(raw string) model.ParsedIngredient {
	return defaultParser.Parse(raw)
}

// ParseLines parses a newline-separated blob with the default tables
func ParseLines(blob string) []model.ParsedIngredient {
	return defaultParser.ParseLines(blob)
}

var optionalPrefixes = []string{"optional:", "optional -", "optional-"}

// Parse decomposes a single ingredient line.
//
//	"2 medium onions (8 ounces; 227 g each), finely chopped"
//	→ item "onions", note "finely chopped",
//	  measurements [2 medium] [8 ounces each] [227 g each]
func (p *Parser) Parse(raw string) model.ParsedIngredient {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.ParsedIngredient{
			Measurements: []model.Measurement{},
			Raw:          model.StringPtr(""),
		}
	}

	remaining := normalizeUnicode(decodeEntities(raw))
	remaining = stripListMarker(remaining)
	remaining = normalizeDigitLetterSpacing(remaining)
	remaining = normalizeWordNumbers(remaining)

	optional := false
	for _, prefix := range optionalPrefixes {
		if hasPrefixFold(remaining, prefix) {
			remaining = strings.TrimSpace(remaining[len(prefix):])
			optional = true
			break
		}
	}

	remaining = collapseDoubleParens(remaining)
	remaining = p.unwrapLeadingParen(remaining)

	var note string
	var alternates []model.Measurement

	// Parenthetical groups: a prep note, or alternate measurements.
	// Scanning stops at the first group that is neither.
	for {
		start := strings.IndexByte(remaining, '(')
		if start < 0 {
			break
		}
		end := strings.IndexByte(remaining[start:], ')')
		if end < 0 {
			break
		}
		end += start
		content := remaining[start+1 : end]

		if note == "" && p.isPrepNote(content) {
			note = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(content), ","))
			remaining = removeGroup(remaining, start, end)
			continue
		}

		found := p.parentheticalMeasurements(content)
		if len(found) == 0 {
			break
		}
		alternates = append(alternates, found...)
		remaining = removeGroup(remaining, start, end)
	}

	remaining = p.cutPlusClause(remaining, &note)

	preAmountModifier, rest := p.stripModifier(remaining)
	amount, rest := extractAmount(rest)
	preUnitModifier, rest := p.stripModifier(rest)
	unit, rest := p.extractUnit(rest)
	if unit == "" {
		if compound, after, ok := p.compoundUnit(rest); ok {
			unit, rest = compound, after
		}
	}
	unit = withModifier(firstNonEmpty(preUnitModifier, preAmountModifier), unit)
	remaining = rest

	// "1 pound or 3 heaping cups pineapple"
	if trimmed := strings.TrimLeftFunc(remaining, unicode.IsSpace); hasPrefixFold(trimmed, "or ") {
		if m, after, ok := p.measurement(trimmed[3:]); ok {
			alternates = append(alternates, m)
			remaining = after
		}
	}

	// "3/4 cup / 4 oz / 115g seeds"
	for {
		after, ok := strings.CutPrefix(strings.TrimLeftFunc(remaining, unicode.IsSpace), "/ ")
		if !ok {
			break
		}
		m, after, ok := p.measurement(after)
		if !ok {
			break
		}
		alternates = append(alternates, m)
		remaining = after
	}

	// "1/3 cup 65g sugar", "226g/8 oz. butter"
	foundAttached := false
	for {
		if foundAttached {
			if after, ok := strings.CutPrefix(strings.TrimLeftFunc(remaining, unicode.IsSpace), "/"); ok {
				a, afterAmount := extractAmount(after)
				u, afterUnit := p.extractUnit(afterAmount)
				if a != "" && u != "" {
					alternates = append(alternates, model.NewMeasurement(a, u))
					remaining = afterUnit
					continue
				}
			}
		}

		m, after, ok := p.attachedMetric(remaining)
		if !ok {
			break
		}
		alternates = append(alternates, m)
		remaining = after
		foundAttached = true
	}

	if note == "" {
		if comma := strings.LastIndexByte(remaining, ','); comma >= 0 {
			if candidate := strings.TrimSpace(remaining[comma+1:]); p.isPrepNote(candidate) {
				note = candidate
				remaining = strings.TrimSpace(remaining[:comma])
			}
		}
	}

	// "fresh dill or 1 teaspoon dried dill"
	if note == "" {
		if idx := strings.Index(lowerASCII(remaining), " or "); idx >= 0 {
			after := strings.TrimSpace(remaining[idx+4:])
			if _, _, ok := p.measurement(after); ok {
				note = "or " + after
				remaining = strings.TrimSpace(remaining[:idx])
			}
		}
	}

	measurements := make([]model.Measurement, 0, len(alternates)+1)
	if amount != "" || unit != "" {
		measurements = append(measurements, model.NewMeasurement(amount, unit))
	}
	measurements = append(measurements, alternates...)

	item := cleanItem(remaining)

	if optional {
		if note == "" {
			note = "optional"
		} else {
			note = "optional, " + note
		}
	}

	if item == "" && len(measurements) == 0 {
		return model.ParsedIngredient{
			Item:         raw,
			Measurements: []model.Measurement{},
			Raw:          model.StringPtr(raw),
		}
	}
	if item == "" {
		item = raw
	}

	parsed := model.ParsedIngredient{
		Item:         item,
		Measurements: measurements,
		Raw:          model.StringPtr(raw),
	}
	if note != "" {
		parsed.Note = model.StringPtr(note)
	}
	return parsed
}

// unwrapLeadingParen turns "(half stick) butter" into "1/2 stick butter".
// Only a quantity or a bare modifier is unwrapped; "(optional) 1/4 cup" is left alone.
func (p *Parser) unwrapLeadingParen(s string) string {
	if !strings.HasPrefix(s, "(") {
		return s
	}
	end := strings.IndexByte(s, ')')
	if end < 0 {
		return s
	}

	content := normalizeWordNumbers(strings.TrimSpace(s[1:end]))
	isQuantity := content != "" && content[0] >= '0' && content[0] <= '9'
	if !isQuantity && !p.isModifier(content) {
		return s
	}

	after := strings.TrimSpace(s[end+1:])
	if after == "" {
		return content
	}
	return content + " " + after
}

// parentheticalMeasurements parses "8 ounces; 227 g each" or "113g, 1/2 cup".
// A trailing "each" applies to every measurement in the group.
func (p *Parser) parentheticalMeasurements(content string) []model.Measurement {
	lower := strings.TrimSpace(strings.ToLower(content))
	trailingEach := strings.HasSuffix(lower, " each") ||
		strings.HasSuffix(lower, ";each") ||
		strings.HasSuffix(lower, ",each")

	normalized := strings.NewReplacer(" or ", ";", " Or ", ";", " OR ", ";").Replace(content)

	var out []model.Measurement
	for _, part := range strings.FieldsFunc(normalized, func(r rune) bool { return r == ';' || r == ',' }) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		m, ok := p.tryMeasurement(stripQualifiers(part))
		if !ok {
			continue
		}
		if trailingEach && m.Unit != nil && !strings.HasSuffix(*m.Unit, " each") {
			m.Unit = model.StringPtr(*m.Unit + " each")
		}
		out = append(out, m)
	}
	return out
}

// tryMeasurement parses an amount and/or unit, keeping an "each" qualifier on the unit
func (p *Parser) tryMeasurement(s string) (model.Measurement, bool) {
	amount, rest := extractAmount(strings.TrimSpace(s))
	unit, rest := p.extractUnit(rest)
	if unit != "" && strings.EqualFold(strings.TrimSpace(rest), "each") {
		unit += " each"
	}
	if amount == "" && unit == "" {
		return model.Measurement{}, false
	}
	return model.NewMeasurement(amount, unit), true
}

// measurement parses "[modifier] amount [modifier] unit" and succeeds only
// when both an amount and a unit are present.
func (p *Parser) measurement(s string) (model.Measurement, string, bool) {
	preAmount, rest := p.stripModifier(strings.TrimSpace(s))
	amount, rest := extractAmount(rest)
	preUnit, rest := p.stripModifier(rest)
	unit, rest := p.extractUnit(rest)
	if amount == "" || unit == "" {
		return model.Measurement{}, "", false
	}
	return model.NewMeasurement(amount, withModifier(firstNonEmpty(preUnit, preAmount), unit)), rest, true
}

// cutPlusClause moves ", plus 2 tablespoons" into the note (when unset) and truncates before it
func (p *Parser) cutPlusClause(s string, note *string) string {
	lower := lowerASCII(s)

	if idx := strings.Index(lower, ", plus "); idx >= 0 {
		if *note == "" {
			*note = strings.TrimSpace(s[idx+2:])
		}
		return strings.TrimSpace(s[:idx])
	}

	if idx := strings.Index(lower, " plus "); idx >= 0 && strings.TrimSpace(s[idx+6:]) != "" {
		if *note == "" {
			*note = strings.TrimSpace(s[idx+1:])
		}
		return strings.TrimSpace(s[:idx])
	}

	return s
}

var (
	trailingQualifiers = []string{" total", " about", " approximately", " approx", " roughly", " or so"}
	leadingQualifiers  = []string{"about ", "approximately ", "approx ", "roughly ", "~"}
)

// stripQualifiers turns "about 1 cup" into "1 cup" and "2 cups total" into "2 cups"
func stripQualifiers(s string) string {
	for _, q := range trailingQualifiers {
		if idx := strings.Index(lowerASCII(s), q); idx >= 0 {
			s = s[:idx]
		}
	}
	for _, q := range leadingQualifiers {
		if hasPrefixFold(s, q) {
			s = s[len(q):]
			break
		}
	}
	return strings.TrimSpace(s)
}

// removeGroup cuts s[start:end+1] and rejoins the halves, dropping a comma
// that preceded the group.
func removeGroup(s string, start, end int) string {
	before := strings.TrimRightFunc(s[:start], unicode.IsSpace)
	before = strings.TrimRightFunc(strings.TrimRight(before, ","), unicode.IsSpace)
	after := strings.TrimLeftFunc(s[end+1:], unicode.IsSpace)

	switch {
	case before == "":
		return after
	case after == "":
		return before
	}
	return before + " " + after
}

func cleanItem(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimLeft(s, ","))
	for strings.HasSuffix(s, " )") {
		s = strings.TrimSuffix(s, " )")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimRight(s, ","))
	return strings.ReplaceAll(s, " ,", ",")
}

func withModifier(modifier, unit string) string {
	switch {
	case modifier == "":
		return unit
	case unit == "":
		return modifier
	}
	return modifier + " " + unit
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
