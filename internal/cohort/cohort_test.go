package cohort

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	tests := []struct {
		name  string
		birth time.Time
		ref   time.Time
		want  int
	}{
		{"birthday today", d(2000, 5, 10), d(2024, 5, 10), 24},
		{"day before birthday", d(2000, 5, 10), d(2024, 5, 9), 23},
		{"earlier month", d(2000, 5, 10), d(2024, 4, 30), 23},
		{"later month", d(2000, 5, 10), d(2024, 6, 1), 24},
		{"leap day birthday on feb 28", d(2012, 2, 29), d(2024, 2, 28), 11},
		{"leap day birthday on mar 1", d(2012, 2, 29), d(2023, 3, 1), 11},
		{"born this year", d(2024, 1, 1), d(2024, 12, 31), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Age(tt.birth, tt.ref))
		})
	}
}

func TestClassifyThresholdBoundary(t *testing.T) {
	ref := d(2024, 8, 15)

	age, c := Classify(d(2012, 8, 15), ref, 12)
	assert.Equal(t, 12, age)
	assert.Equal(t, Adult, c, "exactly threshold years old is adult")

	age, c = Classify(d(2012, 8, 16), ref, 12)
	assert.Equal(t, 11, age)
	assert.Equal(t, Pediatric, c, "one day short of threshold is pediatric")

	age, c = Classify(d(1980, 1, 1), ref, 12)
	assert.Equal(t, 44, age)
	assert.Equal(t, Adult, c)
}
