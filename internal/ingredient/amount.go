package ingredient

import "strings"

// extractAmount reads an amount from the start of s and returns it with the rest of the text.
//
// Recognized forms, in priority order: mixed-number range ("2 1/2 - 4"),
// mixed number ("1 1/2"), "2 and 1/2", "6 to 8", "3 or 4", "6-8",
// "1 - 2", a bare fraction, then a bare integer or decimal.
func extractAmount(s string) (string, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}

	words := strings.Fields(s)
	first := words[0]

	if len(words) >= 2 {
		second := words[1]

		if len(words) >= 4 && isDigits(first) && isFraction(second) && words[2] == "-" && isAmountLike(words[3]) {
			upper, next := words[3], 4
			if len(words) >= 5 && isFraction(words[4]) {
				upper, next = words[3]+" "+words[4], 5
			}
			return first + " " + second + "-" + upper, strings.Join(words[next:], " ")
		}

		if isDigits(first) && isFraction(second) {
			pos := strings.Index(s[len(first):], second)
			if pos >= 0 {
				end := len(first) + pos + len(second)
				return first + " " + second, strings.TrimSpace(s[end:])
			}
		}

		if len(words) >= 3 && (strings.EqualFold(second, "and") || second == "&") && isDigits(first) && isFraction(words[2]) {
			return first + " " + words[2], strings.Join(words[3:], " ")
		}

		if len(words) >= 3 && strings.EqualFold(second, "to") && isAmountLike(first) && isAmountLike(words[2]) {
			return first + " to " + words[2], strings.Join(words[3:], " ")
		}

		if len(words) >= 3 && strings.EqualFold(second, "or") && isAmountLike(first) && isAmountLike(words[2]) {
			return first + " or " + words[2], strings.Join(words[3:], " ")
		}
	}

	if amount, ok := hyphenAmount(first); ok {
		return amount, strings.Join(words[1:], " ")
	}

	if len(words) >= 3 && words[1] == "-" && isAmountLike(first) && isAmountLike(words[2]) {
		return first + "-" + words[2], strings.Join(words[3:], " ")
	}

	if isFraction(first) {
		return first, strings.TrimSpace(s[len(first):])
	}

	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end > 0 && s[:end] != "." {
		return s[:end], strings.TrimSpace(s[end:])
	}

	return "", s
}

// hyphenAmount handles a single hyphenated word. "6-8" is a range; "1-1/2"
// is a mixed number written with a hyphen and comes back as "1 1/2".
// A fraction on the right never makes a range.
func hyphenAmount(word string) (string, bool) {
	if strings.HasPrefix(word, "-") {
		return "", false
	}
	left, right, ok := strings.Cut(word, "-")
	if !ok || strings.Contains(right, "-") {
		return "", false
	}
	if strings.Contains(right, "/") {
		if isDigits(left) && isFraction(right) {
			return left + " " + right, true
		}
		return "", false
	}
	if isAmountLike(left) && isAmountLike(right) {
		return word, true
	}
	return "", false
}

// isAmountLike reports whether s is an integer, a fraction or a decimal
func isAmountLike(s string) bool {
	if s == "" {
		return false
	}
	if isDigits(s) || isFraction(s) {
		return true
	}
	hasDigit, hasDot := false, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c == '.' && !hasDot:
			hasDot = true
		default:
			return false
		}
	}
	return hasDigit
}

// isFraction reports whether s looks like "1/2"
func isFraction(s string) bool {
	num, den, ok := strings.Cut(s, "/")
	return ok && isDigits(num) && isDigits(den)
}
