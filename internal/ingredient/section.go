package ingredient

import (
	"strings"
	"unicode"

	"github.com/ppiankov/larder/internal/model"
)

// Whole lines that scrapers pick up from recipe cards but are not ingredients
var ignoredLines = []string{
	"gather your ingredients",
	"gather the ingredients",
	"here's what you'll need",
	"here's what you need",
	"what you'll need",
	"what you need",
	"you will need",
	"you'll need",
	"ingredients list",
}

var ignoredPrefixes = []string{
	"special equipment:",
	"equipment:",
	"tools:",
	"notes:",
	"note:",
	"tip:",
	"tips:",
}

var sectionKeywords = []string{
	"topping", "filling", "frosting", "icing", "glaze", "sauce", "marinade", "dressing",
	"crust", "batter", "drizzle", "garnish", "assembly", "serving", "optional", "coating",
	"base", "cream", "streusel", "crumble",
}

var smallWords = map[string]bool{
	"the": true, "and": true, "or": true, "of": true, "for": true,
	"a": true, "an": true, "to": true, "in": true, "with": true,
}

// ParseLines parses a newline-separated ingredient blob.
// Blank lines and scraper artifacts are skipped; section headers
// ("For the sauce:", "FILLING") are not emitted but label the lines after them.
func (p *Parser) ParseLines(blob string) []model.ParsedIngredient {
	var (
		section string
		out     []model.ParsedIngredient
	)

	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(stripListMarker(strings.TrimSpace(line)))
		if line == "" || ShouldIgnoreLine(line) {
			continue
		}

		if name, ok := p.DetectSectionHeader(line); ok {
			section = name
			continue
		}

		parsed := p.Parse(line)
		if section != "" {
			parsed.Section = model.StringPtr(section)
		}
		out = append(out, parsed)
	}

	return out
}

// ShouldIgnoreLine reports whether a line is a scraper artifact such as
// "Gather Your Ingredients" or "Special equipment: stand mixer".
func ShouldIgnoreLine(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, pattern := range ignoredLines {
		if lower == pattern {
			return true
		}
	}
	for _, prefix := range ignoredPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// DetectSectionHeader reports whether a line is a section header and returns
// its title-cased name: "FILLING" → "Filling", "for the sauce:" → "For the Sauce".
func (p *Parser) DetectSectionHeader(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)

	if len(trimmed) <= 40 && !strings.Contains(trimmed, ":") && !hasASCIIDigit(trimmed) && isUpperText(trimmed) {
		return titleCase(trimmed), true
	}

	name, ok := strings.CutSuffix(trimmed, ":")
	if !ok {
		return "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}

	// "2 cups flour:" is an ingredient with a stray colon
	parsed := p.Parse(line)
	if len(parsed.Measurements) > 0 && parsed.Measurements[0].Amount != nil && parsed.Measurements[0].Unit != nil {
		return "", false
	}

	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "ingredients"), strings.HasSuffix(lower, "ingredient"):
		return titleCase(name), true
	case strings.HasPrefix(lower, "for "):
		return titleCase(name), true
	case len(name) <= 40 && isUpperText(name):
		return titleCase(name), true
	}

	if len(name) <= 50 && !hasASCIIDigit(name) {
		for _, keyword := range sectionKeywords {
			if strings.Contains(lower, keyword) {
				return titleCase(name), true
			}
		}
	}

	if !strings.Contains(name, " ") && len(name) <= 20 && !hasASCIIDigit(name) {
		return titleCase(name), true
	}

	return "", false
}

// DetectSectionHeader uses the default tables
func DetectSectionHeader(line string) (string, bool) {
	return defaultParser.DetectSectionHeader(line)
}

// titleCase capitalizes each word, keeping small words lowercase after the first
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	first := true
	var word []rune
	flush := func() {
		if len(word) == 0 {
			return
		}
		lower := strings.ToLower(string(word))
		if !first && smallWords[lower] {
			b.WriteString(lower)
		} else {
			b.WriteRune(unicode.ToUpper(word[0]))
			b.WriteString(strings.ToLower(string(word[1:])))
		}
		word = word[:0]
		first = false
	}

	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) || r == ',' || r == '(' || r == ')' {
			flush()
			b.WriteRune(r)
			continue
		}
		word = append(word, r)
	}
	flush()

	return b.String()
}

// isUpperText reports whether s has letters and all of them are uppercase
func isUpperText(s string) bool {
	hasLetter := false
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		hasLetter = true
	}
	return hasLetter
}

func hasASCIIDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
