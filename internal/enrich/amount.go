package enrich

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts an amount string to a number.
// Supports integers, decimals, fractions ("1/2") and mixed numbers ("1 1/2").
func ParseAmount(amount string) (float64, bool) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, false
	}

	if parts := strings.Fields(amount); len(parts) == 2 {
		whole, err := strconv.ParseFloat(parts[0], 64)
		if err != nil || !finite(whole) {
			return 0, false
		}
		frac, ok := parseFraction(parts[1])
		if !ok {
			return 0, false
		}
		return whole + frac, true
	}

	if strings.Contains(amount, "/") {
		return parseFraction(amount)
	}

	v, err := strconv.ParseFloat(amount, 64)
	if err != nil || !finite(v) {
		return 0, false
	}
	return v, true
}

func parseFraction(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil || !finite(n) {
		return 0, false
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil || !finite(d) || d == 0 {
		return 0, false
	}
	return n / d, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// FormatGrams renders a gram value: one decimal below 10 g ("2.5", "7"),
// whole grams from 10 g up ("227").
func FormatGrams(grams float64) string {
	if grams < 10 {
		rounded := math.Round(grams*10) / 10
		if rounded == math.Trunc(rounded) {
			return strconv.FormatFloat(rounded, 'f', 0, 64)
		}
		return strconv.FormatFloat(rounded, 'f', 1, 64)
	}
	return strconv.FormatInt(int64(math.Round(grams)), 10)
}

// convertAmount scales an amount string by factor and formats the result as grams.
// Ranges keep their separator: "6-8" → "170-227", "6 to 8" → "170 to 227".
func convertAmount(amount string, factor float64) (string, bool) {
	amount = strings.TrimSpace(amount)

	for _, sep := range []string{" to ", " or "} {
		if low, high, ok := strings.Cut(amount, sep); ok {
			return convertRange(low, high, sep, factor)
		}
	}

	if idx := rangeHyphen(amount); idx >= 0 {
		return convertRange(amount[:idx], amount[idx+1:], "-", factor)
	}

	v, ok := ParseAmount(amount)
	if !ok {
		return "", false
	}
	return FormatGrams(v * factor), true
}

func convertRange(low, high, sep string, factor float64) (string, bool) {
	lo, ok := ParseAmount(low)
	if !ok {
		return "", false
	}
	hi, ok := ParseAmount(high)
	if !ok {
		return "", false
	}
	return FormatGrams(lo*factor) + sep + FormatGrams(hi*factor), true
}

// rangeHyphen finds a hyphen with digits directly on both sides and no '/'
// after it. "6-8" is a range; "1-1/2" is a mixed number.
func rangeHyphen(s string) int {
	for i := 1; i < len(s)-1; i++ {
		if s[i] != '-' {
			continue
		}
		if isDigit(s[i-1]) && isDigit(s[i+1]) && !strings.Contains(s[i+1:], "/") {
			return i
		}
	}
	return -1
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
