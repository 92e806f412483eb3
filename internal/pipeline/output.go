package pipeline

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/recall-postcards/internal/cohort"
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/roster"
	"github.com/recall-postcards/internal/sheet"
	"github.com/recall-postcards/internal/webpost"
)

// WriteOptions says where and how to write a run's files.
type WriteOptions struct {
	Dir       string
	Format    string
	Honorific string
	Columns   config.Columns
}

// Write stores one upload file per batch plus the debug roster and returns
// the paths written.
func Write(res *Result, r *roster.Roster, opts WriteOptions) ([]string, error) {
	var paths []string
	for _, b := range res.Batches() {
		name := webpost.FileName(b.Window, b.Cohort == cohort.Pediatric, opts.Format)
		path := filepath.Join(opts.Dir, name)
		if err := sheet.WriteFile(path, webpost.Table(b.Records, opts.Honorific)); err != nil {
			return paths, fmt.Errorf("write %s batch: %w", b.Cohort, err)
		}
		log.Printf("Wrote %d records to %s", len(b.Records), path)
		paths = append(paths, path)
	}

	path := filepath.Join(opts.Dir, webpost.DebugFileName(opts.Format))
	if err := sheet.WriteFile(path, webpost.DebugTable(res.Records(), opts.Columns, r)); err != nil {
		return paths, fmt.Errorf("write debug roster: %w", err)
	}
	paths = append(paths, path)
	return paths, nil
}
