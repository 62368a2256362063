package ingredient

import (
	"slices"
	"strings"
	"unicode"

	"github.com/ppiankov/larder/internal/model"
)

// extractUnit matches the longest unit at the start of s.
// The unit must end at a word boundary (end, whitespace, '.' or ','); a
// trailing period and a following "of" are consumed. The match comes back
// in its vocabulary spelling.
func (p *Parser) extractUnit(s string) (string, string) {
	s = strings.TrimSpace(s)

	for _, unit := range p.tables.Units() {
		if !hasPrefixFold(s, unit) {
			continue
		}
		after := s[len(unit):]
		if after != "" && !startsWithSpace(after) && after[0] != '.' && after[0] != ',' {
			continue
		}

		remaining := strings.TrimSpace(strings.TrimLeft(after, "."))
		if hasPrefixFold(remaining, "of ") || strings.EqualFold(remaining, "of") {
			remaining = strings.TrimLeftFunc(remaining[2:], unicode.IsSpace)
		}
		return unit, remaining
	}

	return "", s
}

// stripModifier removes a measurement modifier ("scant", "lightly packed")
// from the start of s, returning it separately.
func (p *Parser) stripModifier(s string) (string, string) {
	s = strings.TrimSpace(s)
	for _, modifier := range p.tables.Modifiers() {
		if !hasPrefixFold(s, modifier) {
			continue
		}
		after := s[len(modifier):]
		if after == "" || startsWithSpace(after) {
			return modifier, strings.TrimSpace(after)
		}
	}
	return "", s
}

func (p *Parser) isModifier(s string) bool {
	for _, modifier := range p.tables.Modifiers() {
		if strings.EqualFold(s, modifier) {
			return true
		}
	}
	return false
}

func (p *Parser) isPrepNote(s string) bool {
	lower := strings.ToLower(s)
	for _, note := range p.tables.PrepNotes() {
		if strings.Contains(lower, note) {
			return true
		}
	}
	return false
}

// compoundUnit recognizes "14 ounce can" and "28-oz. can" where no plain unit matched.
// The original spelling is kept.
func (p *Parser) compoundUnit(s string) (string, string, bool) {
	words := strings.Fields(s)
	if len(words) == 0 {
		return "", "", false
	}

	first := words[0]
	if number, unit, ok := strings.Cut(first, "-"); ok && isAmountLike(number) {
		unit = strings.TrimRight(strings.ToLower(unit), ".")
		if slices.Contains(p.tables.ContainerUnits(), unit) && len(words) >= 2 && slices.Contains(p.tables.Containers(), strings.ToLower(words[1])) {
			return first + " " + words[1], strings.Join(words[2:], " "), true
		}
	}

	if len(words) < 3 || !isAmountLike(first) {
		return "", "", false
	}

	unit := strings.ToLower(words[1])
	if !slices.Contains(p.tables.ContainerUnits(), unit) && !slices.Contains(p.tables.ContainerUnits(), strings.TrimSuffix(unit, ".")) {
		return "", "", false
	}
	if !slices.Contains(p.tables.Containers(), strings.ToLower(words[2])) {
		return "", "", false
	}

	return strings.Join(words[:3], " "), strings.Join(words[3:], " "), true
}

// attachedMetric reads a unit glued to its number ("65g", "120ml", "2.75oz.")
func (p *Parser) attachedMetric(s string) (model.Measurement, string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] < '0' || s[0] > '9' {
		return model.Measurement{}, "", false
	}

	end, hasDot := 0, false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !hasDot {
			hasDot = true
			end++
			continue
		}
		break
	}

	amount := strings.TrimRight(s[:end], ".")
	if amount == "" {
		return model.Measurement{}, "", false
	}
	afterNumber := s[end:]

	for _, unit := range p.tables.AttachedUnits() {
		if !hasPrefixFold(afterNumber, unit) {
			continue
		}
		afterUnit := afterNumber[len(unit):]
		if afterUnit != "" && !startsWithSpace(afterUnit) && !strings.ContainsRune(",/.", rune(afterUnit[0])) {
			continue
		}
		remaining := strings.TrimLeftFunc(strings.TrimLeft(afterUnit, "."), unicode.IsSpace)
		return model.NewMeasurement(amount, afterNumber[:len(unit)]), remaining, true
	}

	return model.Measurement{}, "", false
}
