package ingredient

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

var vulgarFractions = map[rune]string{
	'½': "1/2",
	'⅓': "1/3",
	'⅔': "2/3",
	'¼': "1/4",
	'¾': "3/4",
	'⅕': "1/5",
	'⅖': "2/5",
	'⅗': "3/5",
	'⅘': "4/5",
	'⅙': "1/6",
	'⅚': "5/6",
	'⅛': "1/8",
	'⅜': "3/8",
	'⅝': "5/8",
	'⅞': "7/8",
}

// Word numbers recognized at the start of a line. Fractions are checked first.
var wordNumbers = []struct {
	word  string
	digit string
}{
	{"half", "1/2"},
	{"quarter", "1/4"},
	{"one", "1"},
	{"two", "2"},
	{"three", "3"},
	{"four", "4"},
	{"five", "5"},
	{"six", "6"},
	{"seven", "7"},
	{"eight", "8"},
	{"nine", "9"},
	{"ten", "10"},
	{"eleven", "11"},
	{"twelve", "12"},
}

var (
	reDigitUnitWord = regexp.MustCompile(`(?i)(\d+)(grams?)\b`)
	reDigitGram     = regexp.MustCompile(`(?i)(\d+g)([a-z])`)
	reDigitWord     = regexp.MustCompile(`(?i)(\d+)([a-z]{4,})`)
)

// decodeEntities decodes HTML entities twice so "&amp;#8531;" becomes "⅓"
func decodeEntities(s string) string {
	return html.UnescapeString(html.UnescapeString(s))
}

// normalizeUnicode maps non-breaking spaces, dashes and fraction glyphs to ASCII.
// A glyph directly after a digit gets a separating space: "1½" → "1 1/2".
func normalizeUnicode(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	prev := rune(0)
	for _, r := range s {
		switch r {
		case ' ':
			b.WriteByte(' ')
		case '–', '—':
			b.WriteByte('-')
		default:
			if frac, ok := vulgarFractions[r]; ok {
				if prev >= '0' && prev <= '9' {
					b.WriteByte(' ')
				}
				b.WriteString(frac)
			} else {
				b.WriteRune(r)
			}
		}
		prev = r
	}
	return b.String()
}

// normalizeWordNumbers converts a leading number word to digits.
// Only the start of the line is touched, and only at a word boundary.
func normalizeWordNumbers(s string) string {
	for _, wn := range wordNumbers {
		if !hasPrefixFold(s, wn.word) {
			continue
		}
		after := s[len(wn.word):]
		if after == "" || startsWithSpace(after) {
			return wn.digit + after
		}
	}
	return s
}

// stripListMarker removes bullets like "- ", "* " or "+(" left over from list markup
func stripListMarker(s string) string {
	remaining := strings.TrimLeftFunc(s, unicode.IsSpace)
	for remaining != "" {
		switch remaining[0] {
		case '-', '+', '*', '&':
		default:
			return remaining
		}
		rest := remaining[1:]
		if rest == "" {
			return remaining
		}
		next, _ := utf8.DecodeRuneInString(rest)
		if !unicode.IsDigit(next) && !unicode.IsSpace(next) && next != '(' {
			return remaining
		}
		remaining = strings.TrimLeftFunc(rest, unicode.IsSpace)
	}
	return remaining
}

// normalizeDigitLetterSpacing separates numbers from glued words:
// "450grams" → "450 grams", "450gpowdered" → "450g powdered", "1finely" → "1 finely".
func normalizeDigitLetterSpacing(s string) string {
	s = reDigitUnitWord.ReplaceAllString(s, "${1} ${2}")
	s = reDigitGram.ReplaceAllString(s, "${1} ${2}")
	return reDigitWord.ReplaceAllString(s, "${1} ${2}")
}

// collapseDoubleParens turns "((about 4 cloves))" into "(about 4 cloves)"
func collapseDoubleParens(s string) string {
	for strings.Contains(s, "((") {
		s = strings.ReplaceAll(s, "((", "(")
	}
	for strings.Contains(s, "))") {
		s = strings.ReplaceAll(s, "))", ")")
	}
	return s
}

// hasPrefixFold is an ASCII case-insensitive strings.HasPrefix.
// Every prefix passed in is ASCII, so byte offsets into s stay valid.
func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

// lowerASCII lowercases A-Z only, keeping byte offsets aligned with s
func lowerASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
