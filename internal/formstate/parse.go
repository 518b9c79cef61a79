package formstate

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// parseFloatPrefix follows JavaScript parseFloat: leading whitespace is
// skipped and the longest numeric prefix is used. No prefix yields NaN.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return math.NaN()
	}

	// exponent only counts when followed by at least one digit
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		// out of range prefixes saturate like JavaScript does
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v
		}
		return math.NaN()
	}
	return v
}

// parseIntPrefix follows JavaScript parseInt with radix 10.
func parseIntPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return math.NaN()
	}

	v, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// numberString renders a number the way JavaScript String() does for the
// values parseInt sees, so integer fields given as numbers truncate the same.
func numberString(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
