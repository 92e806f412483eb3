// Package address rewrites a freeform Japanese home address into
// prefecture / city / remainder by greedy longest-prefix matching against
// the administrative reference data.
package address

import (
	"fmt"
	"strings"

	"github.com/recall-postcards/internal/gazetteer"
	"github.com/recall-postcards/internal/numeral"
	"github.com/recall-postcards/internal/postal"
	"github.com/recall-postcards/internal/textnorm"
)

const (
	// Sentinel fills a prefecture or city that could not be resolved.
	Sentinel = "#####"
	// UnknownPostalCode marks a postal code absent from the reference data.
	UnknownPostalCode = "#####郵便番号住所不明"
	// HandFill is appended to an area found only by postal code: the street
	// part still has to be completed by hand.
	HandFill = "*****"
)

// Reference is the read-only view of the administrative dataset the
// resolver needs. *gazetteer.Gazetteer implements it.
type Reference interface {
	SearchPrefectures(prefix string) []*gazetteer.Prefecture
	SearchCities(prefix string) []*gazetteer.City
	SearchAreas(prefix string, city *gazetteer.City) []*gazetteer.Area
	ByPostalCode(code string) []*gazetteer.Area
}

// Outcome says how far down the hierarchy a resolution got.
type Outcome int

const (
	// NoMatch: neither a city nor a prefecture was found.
	NoMatch Outcome = iota
	// PrefectureOnly: a prefecture matched but no city did.
	PrefectureOnly
	// CityMatched: the city matched but no area in it did.
	CityMatched
	// AreaMatched: the full hierarchy matched.
	AreaMatched
	// PostalCodeMatched: resolved from the postal code, the address was blank.
	PostalCodeMatched
)

var outcomeNames = map[Outcome]string{
	NoMatch:           "no_match",
	PrefectureOnly:    "prefecture_only",
	CityMatched:       "city_matched",
	AreaMatched:       "area_matched",
	PostalCodeMatched: "postal_code_matched",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// MarshalText lets outcomes appear by name in JSON.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (o *Outcome) UnmarshalText(text []byte) error {
	for k, v := range outcomeNames {
		if v == string(text) {
			*o = k
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Result is a resolved address. Prefecture and City are never empty after
// Resolve; unresolved levels carry Sentinel.
type Result struct {
	Prefecture string `json:"prefecture"`
	City       string `json:"city"`
	Remainder  string `json:"remainder"`
	// Area is the matched reference area name, empty when no area matched.
	Area    string  `json:"area,omitempty"`
	Outcome Outcome `json:"outcome"`
	// DroppedNumerals counts digit runs that could not be converted for
	// the area lookup key.
	DroppedNumerals int `json:"dropped_numerals,omitempty"`
}

// Resolver matches addresses against one shared Reference. It holds no
// mutable state and may be used from many goroutines.
type Resolver struct {
	ref Reference
}

// NewResolver wraps ref.
func NewResolver(ref Reference) *Resolver {
	return &Resolver{ref: ref}
}

// Resolve never fails: unmatched levels are reported through Sentinel
// values and Result.Outcome.
func (r *Resolver) Resolve(raw string) Result {
	addr := textnorm.FoldDigits(textnorm.StripSpace(raw))

	var pref *gazetteer.Prefecture
	if n := longestPrefix(addr, func(p string) bool { return len(r.ref.SearchPrefectures(p)) > 0 }); n > 0 {
		pref = r.ref.SearchPrefectures(prefixRunes(addr, n))[0]
		// Every occurrence is removed, not only the leading one.
		addr = strings.ReplaceAll(addr, pref.Name, "")
	}

	n := longestPrefix(addr, func(p string) bool { return len(r.ref.SearchCities(p)) > 0 })
	if n == 0 {
		if pref != nil {
			return Result{Prefecture: pref.Name, City: Sentinel, Remainder: addr, Outcome: PrefectureOnly}
		}
		return Result{Prefecture: Sentinel, City: Sentinel, Remainder: addr, Outcome: NoMatch}
	}
	city := pickCity(r.ref.SearchCities(prefixRunes(addr, n)), pref)
	rest := string([]rune(addr)[n:])

	key, dropped := numeral.ConvertRuns(rest)
	if m := longestPrefix(key, func(p string) bool { return len(r.ref.SearchAreas(p, city)) > 0 }); m > 0 {
		area := r.ref.SearchAreas(prefixRunes(key, m), city)[0]
		return Result{
			Prefecture:      area.City.Prefecture.Name,
			City:            area.City.Name,
			Remainder:       rest,
			Area:            area.Name,
			Outcome:         AreaMatched,
			DroppedNumerals: dropped,
		}
	}

	// The city's own prefecture wins over whatever step one found.
	return Result{
		Prefecture:      city.Prefecture.Name,
		City:            city.Name,
		Remainder:       rest,
		Outcome:         CityMatched,
		DroppedNumerals: dropped,
	}
}

// ResolveByPostalCode fills prefecture, city and area from a normalised
// postal code alone. It is the fallback for records without address text.
func (r *Resolver) ResolveByPostalCode(code string) Result {
	if postal.IsSentinel(code) {
		return Result{Prefecture: Sentinel, City: Sentinel, Outcome: NoMatch}
	}
	areas := r.ref.ByPostalCode(code)
	if len(areas) == 0 {
		return Result{Prefecture: UnknownPostalCode, City: Sentinel, Remainder: Sentinel, Outcome: NoMatch}
	}
	a := areas[0]
	return Result{
		Prefecture: a.City.Prefecture.Name,
		City:       a.City.Name,
		Remainder:  a.Name + HandFill,
		Area:       a.Name,
		Outcome:    PostalCodeMatched,
	}
}

// longestPrefix grows a prefix of s one rune at a time while matches
// reports candidates, and returns the length in runes of the longest prefix
// that matched. It stops at the first failing length or when s is used up;
// zero means even the first rune failed.
func longestPrefix(s string, matches func(prefix string) bool) int {
	runes := []rune(s)
	best := 0
	for n := 1; n <= len(runes); n++ {
		if !matches(string(runes[:n])) {
			break
		}
		best = n
	}
	return best
}

func prefixRunes(s string, n int) string {
	return string([]rune(s)[:n])
}

// pickCity takes the first candidate, preferring one inside the prefecture
// already matched so that same-named cities resolve to the right one.
func pickCity(cands []*gazetteer.City, pref *gazetteer.Prefecture) *gazetteer.City {
	if pref != nil {
		for _, c := range cands {
			if c.Prefecture != nil && c.Prefecture.Name == pref.Name {
				return c
			}
		}
	}
	return cands[0]
}
