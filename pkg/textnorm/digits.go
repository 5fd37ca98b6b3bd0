package textnorm

import "strings"

// persianDigits maps the Extended Arabic-Indic digit glyphs (U+06F0..U+06F9)
// used in Persian text to their ASCII counterparts.
var persianDigits = map[rune]rune{
	'۰': '0',
	'۱': '1',
	'۲': '2',
	'۳': '3',
	'۴': '4',
	'۵': '5',
	'۶': '6',
	'۷': '7',
	'۸': '8',
	'۹': '9',
}

// NormalizeDigits replaces every Persian digit glyph in s with its ASCII
// digit. All other characters pass through unchanged, so the function is
// total and idempotent.
func NormalizeDigits(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool {
		_, ok := persianDigits[r]
		return ok
	}) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if ascii, ok := persianDigits[r]; ok {
			b.WriteRune(ascii)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeDecimal prepares a user-entered numeric string for float parsing:
// Persian digits become ASCII and a decimal comma becomes a period.
func NormalizeDecimal(s string) string {
	return strings.ReplaceAll(NormalizeDigits(s), ",", ".")
}

// ContainsPersian reports whether s contains any character from the Arabic
// script block (U+0600..U+06FF), which covers Persian letters and digits.
func ContainsPersian(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return r >= 0x0600 && r <= 0x06FF
	})
}
