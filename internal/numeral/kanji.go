// Package numeral converts ASCII digit runs into the positional kanji
// notation used by the postal reference data for chome and block numbers
// (21 -> 二十一, 20 -> 二十, 100 -> 百).
package numeral

import (
	"errors"
	"strconv"
	"strings"

	"github.com/recall-postcards/internal/textnorm"
)

var (
	// ErrMalformed is returned for runs that do not parse as a non-negative integer.
	ErrMalformed = errors.New("numeral: malformed digit run")
	// ErrOutOfRange is returned for values the units..thousands notation cannot express.
	ErrOutOfRange = errors.New("numeral: value exceeds 9999")
)

// Max is the largest value Kanji can render.
const Max = 9999

var digitGlyphs = [10]string{"〇", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

var places = []struct {
	value int
	glyph string
}{
	{1000, "千"},
	{100, "百"},
	{10, "十"},
}

// Kanji renders a digit string in positional notation. A place whose digit
// is 1 is written with the place glyph alone (十, not 一十) and zero places
// are skipped, so 20 is 二十 and 105 is 百五.
func Kanji(digits string) (string, error) {
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return "", ErrMalformed
	}
	if n > Max {
		return "", ErrOutOfRange
	}
	if n == 0 {
		return digitGlyphs[0], nil
	}

	var b strings.Builder
	for _, p := range places {
		d := n / p.value % 10
		if d == 0 {
			continue
		}
		if d > 1 {
			b.WriteString(digitGlyphs[d])
		}
		b.WriteString(p.glyph)
	}
	if d := n % 10; d != 0 {
		b.WriteString(digitGlyphs[d])
	}
	return b.String(), nil
}

// ConvertRuns replaces every run of ASCII digits in s with its Kanji form.
// A run Kanji rejects is replaced by the empty string; the second return
// value counts such runs so callers can report them.
func ConvertRuns(s string) (string, int) {
	var out, run strings.Builder
	failed := 0

	flush := func() {
		if run.Len() == 0 {
			return
		}
		k, err := Kanji(run.String())
		if err != nil {
			failed++
		}
		out.WriteString(k)
		run.Reset()
	}

	for _, r := range s {
		if textnorm.IsASCIIDigit(r) {
			run.WriteRune(r)
			continue
		}
		flush()
		out.WriteRune(r)
	}
	flush()

	return out.String(), failed
}
