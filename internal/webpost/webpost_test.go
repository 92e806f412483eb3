package webpost

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-postcards/internal/address"
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/period"
	"github.com/recall-postcards/internal/roster"
)

func TestColumnsOrder(t *testing.T) {
	require.Len(t, Columns, 15)
	assert.Equal(t, PostalCodeTop3, Columns[0])
	assert.Equal(t, Area, Columns[4])
	assert.Equal(t, Name, Columns[12])
	assert.Equal(t, Group, Columns[14])
}

func TestRow(t *testing.T) {
	rec := &roster.PatientRecord{
		Name:                 "山田太郎",
		NormalizedPostalCode: "100-0004",
		Resolved:             address.Result{Prefecture: "東京都", City: "千代田区", Remainder: "大手町1-2-3"},
	}

	row := Row(rec, "様")
	require.Len(t, row, len(Columns))

	want := map[string]string{
		PostalCodeTop3:  "100",
		PostalCodeLast4: "0004",
		Prefecture:      "東京都",
		City:            "千代田区",
		Area:            "大手町1-2-3",
		Name:            "山田太郎",
		NameHonorific:   "様",
	}
	for i, col := range Columns {
		assert.Equal(t, want[col], row[i], col)
	}
}

func TestRowNormalizesWhenNotAnnotated(t *testing.T) {
	row := Row(&roster.PatientRecord{RawPostalCode: "abc"}, "様")
	assert.Equal(t, "000", row[0])
	assert.Equal(t, "0000", row[1])
}

func TestDebugTableSkipsAbsentColumns(t *testing.T) {
	cols := config.Columns{PostalCode: "郵便番号", Name: "氏名", LastVisit: "来院", BirthDate: "生年月日", Address: "住所", PatientID: "ID"}
	visit := time.Date(2024, 6, 5, 0, 0, 0, 0, time.Local)
	records := []*roster.PatientRecord{
		{Name: "山田", PatientID: "1", LastVisit: &visit, NormalizedPostalCode: "100-0004", RawAddress: "東京都"},
	}

	tbl := DebugTable(records, cols, &roster.Roster{HasPatientID: true, HasLastVisit: true})
	assert.Equal(t, []string{"氏名", "ID", "来院", "郵便番号", "住所"}, tbl.Header)
	assert.Equal(t, [][]string{{"山田", "1", "2024-06-05", "100-0004", "東京都"}}, tbl.Rows)
}

func TestNaming(t *testing.T) {
	w := period.Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		End:   time.Date(2025, 1, 10, 0, 0, 0, 0, time.Local),
	}
	assert.Equal(t, "2025_01_01-2025_01_10.csv", FileName(w, false, config.FormatCSV))
	assert.Equal(t, "2025_01_01-2025_01_10_ped.csv", FileName(w, true, config.FormatCSV))
	assert.Equal(t, "2025_01_01-2025_01_10_ped.xlsx", FileName(w, true, config.FormatXLSX))
	assert.Equal(t, "debug.csv", DebugFileName(config.FormatCSV))

	base := t.TempDir()
	dir, err := OutputDir(base, "/data/roster_june.csv", time.Date(2024, 12, 5, 9, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "20241205_roster_june"), dir)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
