// Package webpost lays records out in the postcard vendor's upload format
// and names the files a run produces.
package webpost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/period"
	"github.com/recall-postcards/internal/postal"
	"github.com/recall-postcards/internal/roster"
	"github.com/recall-postcards/internal/sheet"
)

// Vendor column headers, in upload order.
const (
	PostalCodeTop3      = "郵便番号上3桁"
	PostalCodeLast4     = "郵便番号下4桁"
	Prefecture          = "都道府県名"
	City                = "市区町村名"
	Area                = "町域名"
	Street              = "丁目・番地等"
	Building            = "アパート・ビル・マンション"
	Company             = "会社名等"
	CompanyHonorific    = "会社名等敬称"
	Department          = "部署名等"
	DepartmentHonorific = "部署名等敬称"
	Title               = "肩書・役職等"
	Name                = "氏名等"
	NameHonorific       = "氏名等敬称"
	Group               = "グループ名"
)

// Columns is the full upload schema.
var Columns = []string{
	PostalCodeTop3,
	PostalCodeLast4,
	Prefecture,
	City,
	Area,
	Street,
	Building,
	Company,
	CompanyHonorific,
	Department,
	DepartmentHonorific,
	Title,
	Name,
	NameHonorific,
	Group,
}

var columnIndex = func() map[string]int {
	m := make(map[string]int, len(Columns))
	for i, c := range Columns {
		m[c] = i
	}
	return m
}()

// Row renders one annotated record. Only the postal code, address and name
// fields are filled; the vendor accepts the rest blank.
func Row(rec *roster.PatientRecord, honorific string) []string {
	row := make([]string, len(Columns))
	set := func(col, v string) { row[columnIndex[col]] = v }

	code := rec.NormalizedPostalCode
	if code == "" {
		code = postal.Normalize(rec.RawPostalCode)
	}
	top3, last4 := postal.Split(code)
	set(PostalCodeTop3, top3)
	set(PostalCodeLast4, last4)
	set(Prefecture, rec.Resolved.Prefecture)
	set(City, rec.Resolved.City)
	set(Area, rec.Resolved.Remainder)
	set(Name, rec.Name)
	set(NameHonorific, honorific)
	return row
}

// Table renders records as an upload table.
func Table(records []*roster.PatientRecord, honorific string) *sheet.Table {
	t := &sheet.Table{Header: Columns, Rows: make([][]string, 0, len(records))}
	for _, rec := range records {
		t.Rows = append(t.Rows, Row(rec, honorific))
	}
	return t
}

// DebugTable lists the source fields of every record so an operator can
// check a postcard against the roster. Columns absent from the roster are
// left out.
func DebugTable(records []*roster.PatientRecord, cols config.Columns, r *roster.Roster) *sheet.Table {
	type field struct {
		header string
		value  func(*roster.PatientRecord) string
	}
	fields := []field{{cols.Name, func(p *roster.PatientRecord) string { return p.Name }}}
	if r.HasPatientID {
		fields = append(fields, field{cols.PatientID, func(p *roster.PatientRecord) string { return p.PatientID }})
	}
	if r.HasBirthDate {
		fields = append(fields, field{cols.BirthDate, func(p *roster.PatientRecord) string { return formatDate(p.BirthDate, p.RawBirthDate) }})
	}
	if r.HasLastVisit {
		fields = append(fields, field{cols.LastVisit, func(p *roster.PatientRecord) string { return formatDate(p.LastVisit, p.RawLastVisit) }})
	}
	fields = append(fields,
		field{cols.PostalCode, func(p *roster.PatientRecord) string { return p.NormalizedPostalCode }},
		field{cols.Address, func(p *roster.PatientRecord) string { return p.RawAddress }},
	)

	t := &sheet.Table{Rows: make([][]string, 0, len(records))}
	for _, f := range fields {
		t.Header = append(t.Header, f.header)
	}
	for _, rec := range records {
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = f.value(rec)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func formatDate(t *time.Time, raw string) string {
	if t == nil {
		return raw
	}
	return t.Format("2006-01-02")
}

// OutputDir creates and returns <base>/<YYYYMMDD>_<input stem>.
func OutputDir(base, inputPath string, now time.Time) (string, error) {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	dir := filepath.Join(base, now.Format("20060102")+"_"+stem)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

// FileName names the upload file for a cohort window, for example
// 2024_06_01-2024_06_10_ped.csv.
func FileName(w period.Window, pediatric bool, format string) string {
	ext := "." + config.FormatCSV
	if format == config.FormatXLSX {
		ext = "." + config.FormatXLSX
	}
	suffix := ""
	if pediatric {
		suffix = "_ped"
	}
	return w.FileStem() + suffix + ext
}

// DebugFileName is the debug roster's name inside the output directory.
func DebugFileName(format string) string {
	if format == config.FormatXLSX {
		return "debug.xlsx"
	}
	return "debug.csv"
}
