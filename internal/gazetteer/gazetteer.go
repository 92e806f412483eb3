// Package gazetteer holds the read-only administrative reference dataset:
// prefectures, the cities inside them and the areas inside each city, with
// prefix search over the names. A Gazetteer is built once and is safe for
// concurrent readers.
package gazetteer

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmpty is returned when a build or load produced no prefectures.
var ErrEmpty = errors.New("gazetteer: no reference data loaded")

// Prefecture is the top administrative level (都道府県).
type Prefecture struct {
	Code string
	Name string
	Kana string
}

// City is a municipality (市区町村). It belongs to exactly one prefecture.
type City struct {
	Code       string
	Name       string
	Kana       string
	Prefecture *Prefecture
}

// Area is a town area (町域) inside a city.
type Area struct {
	Name        string
	Kana        string
	PostalCodes []string
	City        *City
}

// Entry is one flat row of reference data. An empty Area registers only the
// city; an empty City registers only the prefecture.
type Entry struct {
	PrefectureCode string
	Prefecture     string
	PrefectureKana string
	CityCode       string
	City           string
	CityKana       string
	Area           string
	AreaKana       string
	PostalCode     string
}

// Gazetteer answers prefix queries against the three levels.
type Gazetteer struct {
	prefectures []*Prefecture
	cities      []*City
	areas       map[*City][]*Area
	byPostal    map[string][]*Area
	entries     []Entry
	areaCount   int
}

// SearchPrefectures returns every prefecture whose name starts with prefix.
// An empty prefix matches nothing.
func (g *Gazetteer) SearchPrefectures(prefix string) []*Prefecture {
	return searchPrefix(g.prefectures, prefix, func(p *Prefecture) string { return p.Name })
}

// SearchCities returns every city, in any prefecture, whose name starts with prefix.
func (g *Gazetteer) SearchCities(prefix string) []*City {
	return searchPrefix(g.cities, prefix, func(c *City) string { return c.Name })
}

// SearchAreas returns the areas of city whose name starts with prefix.
func (g *Gazetteer) SearchAreas(prefix string, city *City) []*Area {
	if city == nil {
		return nil
	}
	return searchPrefix(g.areas[city], prefix, func(a *Area) string { return a.Name })
}

// ByPostalCode returns the areas registered under a 7-digit postal code.
// A hyphen between the third and fourth digit is accepted.
func (g *Gazetteer) ByPostalCode(code string) []*Area {
	return g.byPostal[strings.ReplaceAll(code, "-", "")]
}

// Prefectures returns all prefectures ordered by name.
func (g *Gazetteer) Prefectures() []*Prefecture {
	return append([]*Prefecture(nil), g.prefectures...)
}

// Cities returns all cities ordered by name.
func (g *Gazetteer) Cities() []*City {
	return append([]*City(nil), g.cities...)
}

// Areas returns the areas of city ordered by name.
func (g *Gazetteer) Areas(city *City) []*Area {
	return append([]*Area(nil), g.areas[city]...)
}

// Entries returns the rows the gazetteer was built from, in insertion order.
func (g *Gazetteer) Entries() []Entry {
	return append([]Entry(nil), g.entries...)
}

// Stats reports the number of prefectures, cities and areas.
func (g *Gazetteer) Stats() (prefectures, cities, areas int) {
	return len(g.prefectures), len(g.cities), g.areaCount
}

// searchPrefix relies on items being sorted by name: every name with the
// prefix sits in one contiguous run starting at the first name >= prefix.
func searchPrefix[T any](items []T, prefix string, name func(T) string) []T {
	if prefix == "" {
		return nil
	}
	i := sort.Search(len(items), func(i int) bool { return name(items[i]) >= prefix })

	var out []T
	for ; i < len(items) && strings.HasPrefix(name(items[i]), prefix); i++ {
		out = append(out, items[i])
	}
	return out
}
