package fakeroster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/gazetteer"
	"github.com/recall-postcards/internal/roster"
)

var cols = config.Columns{
	PostalCode: "郵便番号",
	Name:       "患者漢字氏名",
	LastVisit:  "保険最終来院日",
	BirthDate:  "生年月日",
	Address:    "住所",
	PatientID:  "カルテ番号",
}

func TestGenerateIsReadableAsRoster(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	tbl := Generate(nil, cols, Options{Count: 50, Seed: 42, Now: now})
	require.Len(t, tbl.Rows, 50)

	r, err := roster.FromTable(tbl, cols)
	require.NoError(t, err)
	assert.True(t, r.HasBirthDate)
	assert.True(t, r.HasLastVisit)

	for _, rec := range r.Records {
		require.NotNil(t, rec.BirthDate, "row %d birth %q", rec.Row, rec.RawBirthDate)
		require.NotNil(t, rec.LastVisit, "row %d visit %q", rec.Row, rec.RawLastVisit)
		assert.Equal(t, 2024, rec.LastVisit.Year())
		assert.Contains(t, rec.RawLastVisit, "２０２４年")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)
	a := Generate(nil, cols, Options{Count: 5, Seed: 7, Now: now})
	b := Generate(nil, cols, Options{Count: 5, Seed: 7, Now: now})
	assert.Equal(t, a.Rows, b.Rows)
}

func TestGenerateSamplesGazetteer(t *testing.T) {
	bld := gazetteer.NewBuilder()
	bld.Add(gazetteer.Entry{Prefecture: "京都府", City: "京都市左京区", Area: "岡崎", PostalCode: "6068334"})
	bld.Add(gazetteer.Entry{Prefecture: "京都府", City: "宇治市"})
	g, err := bld.Build()
	require.NoError(t, err)

	tbl := Generate(g, cols, Options{Count: 10, Seed: 1})
	r, err := roster.FromTable(tbl, cols)
	require.NoError(t, err)

	res := address.NewResolver(g)
	for _, rec := range r.Records {
		assert.Equal(t, "606-8334", rec.RawPostalCode)
		got := res.Resolve(rec.RawAddress)
		assert.Equal(t, address.AreaMatched, got.Outcome, rec.RawAddress)
	}
}

func TestFullWidthDate(t *testing.T) {
	assert.Equal(t, "２０２４年　０６月　０５日", fullWidthDate(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)))
}
