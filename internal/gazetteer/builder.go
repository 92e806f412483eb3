package gazetteer

import (
	"slices"
	"sort"
	"strings"
)

type cityKey struct {
	prefecture string
	city       string
}

type areaKey struct {
	city *City
	area string
}

// Builder accumulates entries and produces an immutable Gazetteer.
type Builder struct {
	prefectures map[string]*Prefecture
	cities      map[cityKey]*City
	areas       map[areaKey]*Area
	prefOrder   []*Prefecture
	cityOrder   []*City
	areaOrder   []*Area
	entries     []Entry
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		prefectures: make(map[string]*Prefecture),
		cities:      make(map[cityKey]*City),
		areas:       make(map[areaKey]*Area),
	}
}

// Add registers one entry. Repeated names are merged; an area seen under
// several postal codes keeps all of them.
func (b *Builder) Add(e Entry) {
	e = trimEntry(e)
	if e.Prefecture == "" {
		return
	}
	b.entries = append(b.entries, e)

	pref, ok := b.prefectures[e.Prefecture]
	if !ok {
		pref = &Prefecture{Code: e.PrefectureCode, Name: e.Prefecture, Kana: e.PrefectureKana}
		b.prefectures[e.Prefecture] = pref
		b.prefOrder = append(b.prefOrder, pref)
	}
	if e.City == "" {
		return
	}

	ck := cityKey{prefecture: e.Prefecture, city: e.City}
	city, ok := b.cities[ck]
	if !ok {
		city = &City{Code: e.CityCode, Name: e.City, Kana: e.CityKana, Prefecture: pref}
		b.cities[ck] = city
		b.cityOrder = append(b.cityOrder, city)
	}
	if e.Area == "" {
		return
	}

	ak := areaKey{city: city, area: e.Area}
	area, ok := b.areas[ak]
	if !ok {
		area = &Area{Name: e.Area, Kana: e.AreaKana, City: city}
		b.areas[ak] = area
		b.areaOrder = append(b.areaOrder, area)
	}
	if e.PostalCode != "" && !slices.Contains(area.PostalCodes, e.PostalCode) {
		area.PostalCodes = append(area.PostalCodes, e.PostalCode)
	}
}

// Build sorts the indexes and returns the gazetteer. It fails with ErrEmpty
// when nothing was added.
func (b *Builder) Build() (*Gazetteer, error) {
	if len(b.prefOrder) == 0 {
		return nil, ErrEmpty
	}

	g := &Gazetteer{
		prefectures: append([]*Prefecture(nil), b.prefOrder...),
		cities:      append([]*City(nil), b.cityOrder...),
		areas:       make(map[*City][]*Area, len(b.cityOrder)),
		byPostal:    make(map[string][]*Area),
		entries:     append([]Entry(nil), b.entries...),
		areaCount:   len(b.areaOrder),
	}

	sort.SliceStable(g.prefectures, func(i, j int) bool { return g.prefectures[i].Name < g.prefectures[j].Name })
	sort.SliceStable(g.cities, func(i, j int) bool { return g.cities[i].Name < g.cities[j].Name })

	for _, a := range b.areaOrder {
		g.areas[a.City] = append(g.areas[a.City], a)
		for _, code := range a.PostalCodes {
			g.byPostal[code] = append(g.byPostal[code], a)
		}
	}
	for _, list := range g.areas {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}

	return g, nil
}

func trimEntry(e Entry) Entry {
	e.PrefectureCode = strings.TrimSpace(e.PrefectureCode)
	e.Prefecture = strings.TrimSpace(e.Prefecture)
	e.PrefectureKana = strings.TrimSpace(e.PrefectureKana)
	e.CityCode = strings.TrimSpace(e.CityCode)
	e.City = strings.TrimSpace(e.City)
	e.CityKana = strings.TrimSpace(e.CityKana)
	e.Area = strings.TrimSpace(e.Area)
	e.AreaKana = strings.TrimSpace(e.AreaKana)
	e.PostalCode = strings.ReplaceAll(strings.TrimSpace(e.PostalCode), "-", "")
	return e
}
