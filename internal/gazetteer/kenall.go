package gazetteer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// KEN_ALL.CSV column positions.
const (
	kenJISCode   = 0
	kenPostal    = 2
	kenPrefKana  = 3
	kenCityKana  = 4
	kenAreaKana  = 5
	kenPref      = 6
	kenCity      = 7
	kenArea      = 8
	kenMinFields = 9
)

// Area names that mean "no area level for this code".
var cityOnlyMarkers = []string{
	"以下に掲載がない場合",
	"の次に番地がくる場合",
	"一円",
}

// LoadKenAll reads the Japan Post KEN_ALL.CSV file, which is Shift_JIS encoded.
func LoadKenAll(r io.Reader) (*Gazetteer, error) {
	return LoadKenAllUTF8(transform.NewReader(r, japanese.ShiftJIS.NewDecoder()))
}

// LoadKenAllUTF8 reads KEN_ALL rows that are already UTF-8.
func LoadKenAllUTF8(r io.Reader) (*Gazetteer, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	b := NewBuilder()
	var pending *Entry
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("load ken_all: line %d: %w", line, err)
		}
		if len(record) < kenMinFields {
			return nil, fmt.Errorf("load ken_all: line %d: expected at least %d fields, got %d", line, kenMinFields, len(record))
		}

		e := Entry{
			CityCode:       record[kenJISCode],
			PostalCode:     record[kenPostal],
			PrefectureKana: record[kenPrefKana],
			CityKana:       record[kenCityKana],
			AreaKana:       record[kenAreaKana],
			Prefecture:     record[kenPref],
			City:           record[kenCity],
			Area:           record[kenArea],
		}
		if len(e.CityCode) >= 2 {
			e.PrefectureCode = e.CityCode[:2]
		}

		// Long area names are split over several rows inside one parenthesis.
		if pending != nil {
			pending.Area += e.Area
			pending.AreaKana += e.AreaKana
			if !strings.Contains(e.Area, "）") {
				continue
			}
			e = *pending
			pending = nil
		} else if strings.Contains(e.Area, "（") && !strings.Contains(e.Area, "）") {
			pending = &e
			continue
		}

		e.Area = cleanAreaName(e.Area)
		e.AreaKana = cleanAreaKana(e.AreaKana)
		if e.Area == "" {
			e.AreaKana = ""
		}
		b.Add(e)
	}

	if pending != nil {
		pending.Area = cleanAreaName(pending.Area)
		pending.AreaKana = cleanAreaKana(pending.AreaKana)
		b.Add(*pending)
	}

	return b.Build()
}

// cleanAreaName drops parenthesised annotations and the markers that mean
// the code covers the whole city.
func cleanAreaName(name string) string {
	if i := strings.Index(name, "（"); i >= 0 {
		name = name[:i]
	}
	for _, m := range cityOnlyMarkers {
		if strings.HasSuffix(name, m) {
			return ""
		}
	}
	return strings.TrimSpace(name)
}

func cleanAreaKana(kana string) string {
	if i := strings.Index(kana, "("); i >= 0 {
		kana = kana[:i]
	}
	return strings.TrimSpace(kana)
}
