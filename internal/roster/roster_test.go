package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-postcards/internal/cohort"
	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/sheet"
)

var testColumns = config.Columns{
	PostalCode: "郵便番号",
	Name:       "患者漢字氏名",
	LastVisit:  "保険最終来院日",
	BirthDate:  "生年月日",
	Address:    "住所",
	PatientID:  "カルテ番号",
}

func TestFromTable(t *testing.T) {
	tbl, err := sheet.ReadCSV(strings.NewReader(
		"カルテ番号,患者漢字氏名,生年月日,保険最終来院日,郵便番号,住所\n"+
			"10001,山田 太郎,２０１０年 ０４月 ０１日,２０２４年 ０６月 ０５日,100-0004,東京都千代田区大手町1\n"+
			"10002,佐藤花子,不明,2024/6/7,１００００００５,\n",
	), sheet.UTF8)
	require.NoError(t, err)

	r, err := FromTable(tbl, testColumns)
	require.NoError(t, err)

	assert.True(t, r.HasPatientID)
	assert.True(t, r.HasBirthDate)
	assert.True(t, r.HasLastVisit)
	require.Len(t, r.Records, 2)

	first := r.Records[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "10001", first.PatientID)
	assert.Equal(t, "山田 太郎", first.Name)
	require.NotNil(t, first.BirthDate)
	assert.Equal(t, time.Date(2010, 4, 1, 0, 0, 0, 0, time.Local), *first.BirthDate)
	require.NotNil(t, first.LastVisit)
	assert.Equal(t, 5, first.LastVisit.Day())
	assert.Equal(t, cohort.UnknownAge, first.Age)

	second := r.Records[1]
	assert.Nil(t, second.BirthDate, "unparsable date is unknown")
	require.NotNil(t, second.LastVisit)
	assert.Equal(t, "", second.RawAddress)
	assert.Equal(t, "１００００００５", second.RawPostalCode)
}

func TestFromTableOptionalColumnsAbsent(t *testing.T) {
	tbl, err := sheet.ReadCSV(strings.NewReader("郵便番号,住所,患者漢字氏名\n100-0004,東京都,山田\n"), sheet.UTF8)
	require.NoError(t, err)

	r, err := FromTable(tbl, testColumns)
	require.NoError(t, err)

	assert.False(t, r.HasPatientID)
	assert.False(t, r.HasBirthDate)
	assert.False(t, r.HasLastVisit)
	assert.Nil(t, r.Records[0].BirthDate)
	assert.Equal(t, "", r.Records[0].PatientID)
}

func TestFromTableMissingRequired(t *testing.T) {
	tbl, err := sheet.ReadCSV(strings.NewReader("郵便番号,患者漢字氏名\n100-0004,山田\n"), sheet.UTF8)
	require.NoError(t, err)

	_, err = FromTable(tbl, testColumns)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "住所")
	assert.Contains(t, err.Error(), "present: 郵便番号, 患者漢字氏名")
}

func TestLoadExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	require.NoError(t, sheet.WriteFile(path, &sheet.Table{
		Header: []string{"郵便番号", "住所", "患者漢字氏名"},
		Rows:   [][]string{{"0600000", "北海道札幌市中央区", "鈴木"}},
	}))

	r, err := Load(path, sheet.ShiftJIS, testColumns)
	require.NoError(t, err)
	require.Len(t, r.Records, 1)
	assert.Equal(t, "0600000", r.Records[0].RawPostalCode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), sheet.ShiftJIS, testColumns)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
