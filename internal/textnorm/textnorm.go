// Package textnorm holds the small text clean-ups shared by the roster,
// postal and address packages: fullwidth digit folding, whitespace removal
// and freeform date parsing.
package textnorm

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/width"
)

// FoldDigits rewrites fullwidth digits (０-９) as ASCII digits and leaves
// every other rune alone. width.Narrow is not used on the whole string
// because it would also narrow katakana.
func FoldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			if n := width.LookupRune(r).Narrow(); n != 0 {
				return n
			}
		}
		return r
	}, s)
}

// StripSpace removes all whitespace, including the ideographic space U+3000.
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// IsASCIIDigit reports whether r is 0-9.
func IsASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

var dateLayouts = []string{
	"2006年1月2日",
	"2006/1/2",
	"2006-1-2",
	"20060102",
}

// ParseDate reads the date formats found in clinic exports, e.g.
// "２０２４年 ０１月 ０５日". The boolean is false when nothing matched.
func ParseDate(raw string) (time.Time, bool) {
	s := StripSpace(FoldDigits(raw))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
