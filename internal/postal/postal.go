package postal

import (
	"strings"

	"github.com/recall-postcards/internal/textnorm"
)

// Sentinel stands in for any postal code that does not reduce to 7 digits.
const Sentinel = "000-0000"

// Normalize folds fullwidth digits, drops every non-digit rune and formats
// exactly seven remaining digits as NNN-NNNN. Anything else yields Sentinel.
func Normalize(raw string) string {
	digits := Digits(raw)
	if len(digits) != 7 {
		return Sentinel
	}
	return digits[:3] + "-" + digits[3:]
}

// Digits returns the ASCII digits of raw after fullwidth folding.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range textnorm.FoldDigits(raw) {
		if textnorm.IsASCIIDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Split returns the upper three and lower four digits of a normalised code.
func Split(code string) (top3, last4 string) {
	top3, last4, ok := strings.Cut(code, "-")
	if !ok {
		return "000", "0000"
	}
	return top3, last4
}

// IsSentinel reports whether code is the placeholder value.
func IsSentinel(code string) bool {
	return code == Sentinel
}
