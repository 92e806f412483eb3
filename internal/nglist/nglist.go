// Package nglist holds the patient ids that must never receive a postcard.
package nglist

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/recall-postcards/internal/roster"
	"github.com/recall-postcards/internal/sheet"
)

// Set is a membership set of patient ids.
type Set map[string]struct{}

// Load reads the id column of the NG file at path. A missing file yields an
// empty set and a warning; a file without the id column is an error.
func Load(path, idColumn string, enc sheet.Encoding) (Set, error) {
	t, err := sheet.ReadFile(path, enc)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: NG list %s not found, no patients excluded", path)
		return Set{}, nil
	}
	if errors.Is(err, sheet.ErrNoHeader) {
		return Set{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load NG list: %w", err)
	}

	col := t.Index(idColumn)
	if col < 0 {
		return nil, fmt.Errorf("load NG list: %w: %q", roster.ErrMissingColumn, idColumn)
	}

	s := make(Set, len(t.Rows))
	for i := range t.Rows {
		s.Add(t.Cell(i, col))
	}
	return s, nil
}

// Add inserts id; blanks are ignored.
func (s Set) Add(id string) {
	if id = strings.TrimSpace(id); id != "" {
		s[id] = struct{}{}
	}
}

// Contains reports whether id is listed.
func (s Set) Contains(id string) bool {
	_, ok := s[strings.TrimSpace(id)]
	return ok
}

// Exclude returns the records whose patient id is not listed, in order, and
// the number removed.
func (s Set) Exclude(records []*roster.PatientRecord) ([]*roster.PatientRecord, int) {
	if len(s) == 0 {
		return records, 0
	}
	kept := make([]*roster.PatientRecord, 0, len(records))
	for _, rec := range records {
		if !s.Contains(rec.PatientID) {
			kept = append(kept, rec)
		}
	}
	return kept, len(records) - len(kept)
}
