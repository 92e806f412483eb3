package cohort

import "time"

// Cohort tags a patient group that shares a recall interval.
type Cohort string

const (
	Pediatric Cohort = "pediatric"
	Adult     Cohort = "adult"
	// Undivided is used when a roster carries no birth dates at all.
	Undivided Cohort = "undivided"
)

// UnknownAge is reported for records whose birth date could not be read.
const UnknownAge = -1

// Age returns completed years at ref: the calendar year difference, minus
// one when ref's month/day is strictly before the birthday's month/day.
func Age(birth, ref time.Time) int {
	age := ref.Year() - birth.Year()
	if ref.Month() < birth.Month() || (ref.Month() == birth.Month() && ref.Day() < birth.Day()) {
		age--
	}
	return age
}

// Classify computes the age at ref and places the patient in the pediatric
// cohort when the age is below threshold.
func Classify(birth, ref time.Time, threshold int) (int, Cohort) {
	age := Age(birth, ref)
	if age < threshold {
		return age, Pediatric
	}
	return age, Adult
}
