package period

import (
	"fmt"
	"time"
)

// CycleOffset shifts the mailing cycle relative to the one the reference
// date falls in.
type CycleOffset int

const (
	Previous CycleOffset = -1
	Current  CycleOffset = 0
	Next     CycleOffset = 1
)

// ParseOffset accepts the values an operator may pick: -1, 0 or 1.
func ParseOffset(v int) (CycleOffset, error) {
	if v < int(Previous) || v > int(Next) {
		return Current, fmt.Errorf("cycle offset %d out of range [-1,1]", v)
	}
	return CycleOffset(v), nil
}

// cycle is one entry of the mailing table: the days of a ten-day cycle and
// how many months past the reference month it lies.
type cycle struct {
	startDay   int
	endDay     int
	monthShift int
}

// endOfMonth marks an end day that is replaced by the month's true last day.
const endOfMonth = 31

var cycles = [...]cycle{
	{1, 10, 0},
	{11, 20, 0},
	{21, endOfMonth, 0},
	{1, 10, 1},
	{11, 20, 1},
	{21, endOfMonth, 1},
}

// Window is an inclusive date range inside a single calendar month.
type Window struct {
	Start time.Time
	End   time.Time
}

// Ordinal classifies a day of month into the lead-time buckets 1..4. The
// bucket boundaries (4, 14, 26) sit a few days before the cycle boundaries
// (1, 11, 21) so a cycle is prepared ahead of its mailing.
func Ordinal(day int) int {
	switch {
	case day < 4:
		return 1
	case day < 14:
		return 2
	case day < 26:
		return 3
	default:
		return 4
	}
}

// tableIndex maps an ordinal and offset onto the cycle table. Offsets beyond
// ±1 are clamped first, then the index is clamped to the table bounds.
func tableIndex(ordinal int, offset CycleOffset) int {
	if offset < Previous {
		offset = Previous
	}
	if offset > Next {
		offset = Next
	}
	idx := ordinal + int(offset)
	if idx < 0 {
		return 0
	}
	if idx >= len(cycles) {
		return len(cycles) - 1
	}
	return idx
}

// ComputeWindow returns the ten-day mailing window for the reference date,
// shifted by intervalMonths (negative looks back) and by the cycle offset.
func ComputeWindow(ref time.Time, intervalMonths int, offset CycleOffset) Window {
	c := cycles[tableIndex(Ordinal(ref.Day()), offset)]

	// Day 1 keeps time.Date from normalising into the following month.
	month := time.Date(ref.Year(), ref.Month()+time.Month(intervalMonths+c.monthShift), 1, 0, 0, 0, 0, ref.Location())

	endDay := c.endDay
	if endDay == endOfMonth {
		endDay = DaysIn(month.Year(), month.Month())
	}

	return Window{
		Start: time.Date(month.Year(), month.Month(), c.startDay, 0, 0, 0, 0, ref.Location()),
		End:   time.Date(month.Year(), month.Month(), endDay, 0, 0, 0, 0, ref.Location()),
	}
}

// DaysIn returns the number of days in the month, leap years included.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Today returns a window covering only the given day. It stands in for the
// window of a cohort that could not be filtered by visit date.
func Today(now time.Time) Window {
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{Start: d, End: d}
}

// Contains reports whether t falls on a calendar day inside the window.
// Only the civil date is compared, so the time of day and zone of t are ignored.
func (w Window) Contains(t time.Time) bool {
	k := civil(t)
	return k >= civil(w.Start) && k <= civil(w.End)
}

func civil(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

// Label renders the window the way the operator previews it: 2025/01/01~10.
func (w Window) Label() string {
	return w.Start.Format("2006/01/02") + "~" + w.End.Format("02")
}

// FileStem names output files after the window: 2025_01_01-2025_01_10.
func (w Window) FileStem() string {
	return w.Start.Format("2006_01_02") + "-" + w.End.Format("2006_01_02")
}

func (w Window) String() string {
	return w.Start.Format("2006-01-02") + ".." + w.End.Format("2006-01-02")
}
