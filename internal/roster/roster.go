// Package roster turns a clinic export into patient records.
package roster

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/cohort"
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/sheet"
	"github.com/recall-postcards/internal/textnorm"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("required column missing")

// PatientRecord is one roster row. The fields below the raw input are
// filled in as the record moves through a run.
type PatientRecord struct {
	// Row is the 1-based data row in the source file.
	Row int

	Name          string
	PatientID     string
	BirthDate     *time.Time
	LastVisit     *time.Time
	RawBirthDate  string
	RawLastVisit  string
	RawPostalCode string
	RawAddress    string

	Age                  int
	Cohort               cohort.Cohort
	NormalizedPostalCode string
	Resolved             address.Result
}

// Roster is a parsed export plus which optional columns it carried.
type Roster struct {
	Records []*PatientRecord

	HasPatientID bool
	HasBirthDate bool
	HasLastVisit bool
}

// Load reads a roster file. See sheet.ReadFile for supported formats.
func Load(path string, enc sheet.Encoding, cols config.Columns) (*Roster, error) {
	t, err := sheet.ReadFile(path, enc)
	if err != nil {
		return nil, fmt.Errorf("load roster: %w", err)
	}
	return FromTable(t, cols)
}

// FromTable maps table rows onto records. Unparsable dates become nil and
// are reported once per column.
func FromTable(t *sheet.Table, cols config.Columns) (*Roster, error) {
	for _, required := range []string{cols.PostalCode, cols.Address, cols.Name} {
		if !t.Has(required) {
			return nil, fmt.Errorf("%w: %q (present: %s)", ErrMissingColumn, required, strings.Join(t.Header, ", "))
		}
	}

	postalIdx := t.Index(cols.PostalCode)
	addressIdx := t.Index(cols.Address)
	nameIdx := t.Index(cols.Name)
	idIdx := t.Index(cols.PatientID)
	birthIdx := t.Index(cols.BirthDate)
	visitIdx := t.Index(cols.LastVisit)

	r := &Roster{
		Records:      make([]*PatientRecord, 0, len(t.Rows)),
		HasPatientID: idIdx >= 0,
		HasBirthDate: birthIdx >= 0,
		HasLastVisit: visitIdx >= 0,
	}

	badBirth, badVisit := 0, 0
	for i := range t.Rows {
		rec := &PatientRecord{
			Row:           i + 1,
			Name:          strings.TrimSpace(t.Cell(i, nameIdx)),
			PatientID:     strings.TrimSpace(t.Cell(i, idIdx)),
			RawPostalCode: t.Cell(i, postalIdx),
			RawAddress:    t.Cell(i, addressIdx),
			RawBirthDate:  t.Cell(i, birthIdx),
			RawLastVisit:  t.Cell(i, visitIdx),
			Age:           cohort.UnknownAge,
		}
		if r.HasBirthDate {
			rec.BirthDate = parseDate(rec.RawBirthDate, &badBirth)
		}
		if r.HasLastVisit {
			rec.LastVisit = parseDate(rec.RawLastVisit, &badVisit)
		}
		r.Records = append(r.Records, rec)
	}

	if badBirth > 0 {
		log.Printf("Warning: %d unreadable values in %s, treated as unknown", badBirth, cols.BirthDate)
	}
	if badVisit > 0 {
		log.Printf("Warning: %d unreadable values in %s, treated as unknown", badVisit, cols.LastVisit)
	}
	return r, nil
}

func parseDate(raw string, bad *int) *time.Time {
	t, ok := textnorm.ParseDate(raw)
	if !ok {
		*bad++
		return nil
	}
	return &t
}
