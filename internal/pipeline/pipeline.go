// Package pipeline runs a roster through exclusion, cohort split, window
// filtering and address resolution, and writes the upload files.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/cohort"
	"github.com/recall-postcards/internal/debug"
	"github.com/recall-postcards/internal/metrics"
	"github.com/recall-postcards/internal/nglist"
	"github.com/recall-postcards/internal/period"
	"github.com/recall-postcards/internal/postal"
	"github.com/recall-postcards/internal/roster"
)

// Options controls one run.
type Options struct {
	// Now is the reference date for ages and windows.
	Now    time.Time
	Offset period.CycleOffset

	PediatricThreshold      int
	AdultIntervalMonths     int
	PediatricIntervalMonths int

	Workers int
	Debug   bool

	NG      nglist.Set
	Metrics *metrics.Metrics
}

// Batch is one cohort's mailing: the window its patients last visited in
// and the records that fell inside it, in roster order.
type Batch struct {
	Cohort cohort.Cohort
	Window period.Window
	// Filtered is false when the roster had no last-visit column and every
	// record was kept.
	Filtered bool
	Records  []*roster.PatientRecord
}

// Result of a run.
type Result struct {
	RunID string
	// Adult holds the adult cohort, or the undivided one when the roster has
	// no birth dates.
	Adult Batch
	// Pediatric is nil when the split produced no pediatric patients.
	Pediatric *Batch

	Read         int
	NGExcluded   int
	UnknownVisit int
}

// Batches returns the non-nil batches, adult first.
func (r *Result) Batches() []*Batch {
	out := []*Batch{&r.Adult}
	if r.Pediatric != nil {
		out = append(out, r.Pediatric)
	}
	return out
}

// Records returns every surviving record, adult first.
func (r *Result) Records() []*roster.PatientRecord {
	var out []*roster.PatientRecord
	for _, b := range r.Batches() {
		out = append(out, b.Records...)
	}
	return out
}

// Run processes r. The roster's records are annotated in place.
func Run(ctx context.Context, r *roster.Roster, resolver *address.Resolver, opts Options) (*Result, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	res := &Result{RunID: uuid.New().String(), Read: len(r.Records)}
	defer debug.Section(opts.Debug, "run "+res.RunID)()
	opts.Metrics.AddRead(res.Read)

	records := r.Records
	if r.HasPatientID {
		records, res.NGExcluded = opts.NG.Exclude(records)
		opts.Metrics.AddExcluded("ng_list", res.NGExcluded)
		debug.Printf(opts.Debug, "NG list removed %d records", res.NGExcluded)
	} else {
		log.Printf("Warning: roster has no patient id column, NG list not applied")
	}

	adult, ped := split(records, r.HasBirthDate, opts)

	res.Adult = filter(adult, opts.AdultIntervalMonths, r.HasLastVisit, opts, res)
	if r.HasBirthDate {
		res.Adult.Cohort = cohort.Adult
		if len(ped) > 0 {
			b := filter(ped, opts.PediatricIntervalMonths, r.HasLastVisit, opts, res)
			b.Cohort = cohort.Pediatric
			res.Pediatric = &b
		}
	} else {
		log.Printf("Warning: roster has no birth date column, ages not considered")
		res.Adult.Cohort = cohort.Undivided
	}
	if !r.HasLastVisit {
		log.Printf("Warning: roster has no last visit column, visit dates not considered")
	}

	if err := resolveAll(ctx, resolver, res.Records(), opts); err != nil {
		return nil, err
	}

	for _, b := range res.Batches() {
		opts.Metrics.AddWritten(string(b.Cohort), len(b.Records))
	}
	return res, nil
}

// split assigns cohorts. Records with an unknown birth date stay adult.
func split(records []*roster.PatientRecord, hasBirth bool, opts Options) (adult, ped []*roster.PatientRecord) {
	if !hasBirth {
		for _, rec := range records {
			rec.Cohort = cohort.Undivided
		}
		return records, nil
	}

	for _, rec := range records {
		if rec.BirthDate == nil {
			rec.Age, rec.Cohort = cohort.UnknownAge, cohort.Adult
			adult = append(adult, rec)
			continue
		}
		rec.Age, rec.Cohort = cohort.Classify(*rec.BirthDate, opts.Now, opts.PediatricThreshold)
		if rec.Cohort == cohort.Pediatric {
			ped = append(ped, rec)
		} else {
			adult = append(adult, rec)
		}
	}
	return adult, ped
}

// filter keeps the records whose last visit lies in the window that looks
// back the cohort's recall interval from now.
func filter(records []*roster.PatientRecord, interval int, hasVisit bool, opts Options, res *Result) Batch {
	if !hasVisit {
		return Batch{Window: period.Today(opts.Now), Records: records}
	}

	w := period.ComputeWindow(opts.Now, -interval, opts.Offset)

	kept := make([]*roster.PatientRecord, 0, len(records))
	unknown, outside := 0, 0
	for _, rec := range records {
		switch {
		case rec.LastVisit == nil:
			unknown++
		case w.Contains(*rec.LastVisit):
			kept = append(kept, rec)
		default:
			outside++
		}
	}
	res.UnknownVisit += unknown
	opts.Metrics.AddExcluded("unknown_visit", unknown)
	opts.Metrics.AddExcluded("out_of_window", outside)
	debug.Printf(opts.Debug, "window %s kept %d of %d", w, len(kept), len(records))

	return Batch{Window: w, Filtered: true, Records: kept}
}

// resolveAll annotates records concurrently. Each worker writes only its own
// record, so order is preserved without collecting results.
func resolveAll(ctx context.Context, resolver *address.Resolver, records []*roster.PatientRecord, opts Options) error {
	defer debug.Timing(opts.Debug, fmt.Sprintf("resolve %d addresses", len(records)))()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			Annotate(resolver, rec, opts.Metrics)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("resolve addresses: %w", err)
	}
	return nil
}

// Annotate normalises the postal code and resolves the address of one
// record. A blank address is filled from the postal code.
func Annotate(resolver *address.Resolver, rec *roster.PatientRecord, m *metrics.Metrics) {
	start := time.Now()
	rec.NormalizedPostalCode = postal.Normalize(rec.RawPostalCode)
	if strings.TrimSpace(rec.RawAddress) == "" {
		rec.Resolved = resolver.ResolveByPostalCode(rec.NormalizedPostalCode)
	} else {
		rec.Resolved = resolver.Resolve(rec.RawAddress)
	}
	m.ObserveResolve(rec.Resolved.Outcome.String(), start)
}

// Summary is the operator-facing line per batch, e.g.
// "2024/06/01~10 adult patients: 42".
func (r *Result) Summary() []string {
	var lines []string
	for _, b := range r.Batches() {
		lines = append(lines, fmt.Sprintf("%s %s patients: %d", b.Window.Label(), b.Cohort, len(b.Records)))
	}
	return lines
}
