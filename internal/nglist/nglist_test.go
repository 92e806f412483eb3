package nglist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-postcards/internal/roster"
	"github.com/recall-postcards/internal/sheet"
)

func TestLoadAndExclude(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nglist.csv")
	require.NoError(t, sheet.WriteFile(path, &sheet.Table{
		Header: []string{"カルテ番号", "理由"},
		Rows:   [][]string{{"10002", "転居"}, {" 10004 ", "死亡"}, {"", ""}},
	}))

	s, err := Load(path, "カルテ番号", sheet.ShiftJIS)
	require.NoError(t, err)
	assert.Len(t, s, 2)
	assert.True(t, s.Contains("10004"))

	records := []*roster.PatientRecord{
		{PatientID: "10001"}, {PatientID: "10002"}, {PatientID: "10003"}, {PatientID: "10004"},
	}
	kept, removed := s.Exclude(records)
	assert.Equal(t, 2, removed)
	require.Len(t, kept, 2)
	assert.Equal(t, "10001", kept[0].PatientID)
	assert.Equal(t, "10003", kept[1].PatientID)
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.csv"), "カルテ番号", sheet.ShiftJIS)
	require.NoError(t, err)
	assert.Empty(t, s)

	records := []*roster.PatientRecord{{PatientID: "1"}}
	kept, removed := s.Exclude(records)
	assert.Equal(t, records, kept)
	assert.Zero(t, removed)
}

func TestLoadWithoutIDColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nglist.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nfoo\n"), 0644))

	_, err := Load(path, "カルテ番号", sheet.UTF8)
	assert.ErrorIs(t, err, roster.ErrMissingColumn)
}
