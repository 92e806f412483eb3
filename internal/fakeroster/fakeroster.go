// Package fakeroster generates synthetic clinic exports for trying the tool
// without real patient data.
package fakeroster

import (
	"fmt"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/text/width"

	"github.com/recall-postcards/internal/config"
	"github.com/recall-postcards/internal/gazetteer"
	"github.com/recall-postcards/internal/sheet"
)

// Options controls generation. Zero values pick sensible defaults.
type Options struct {
	Count int
	// Seed makes output reproducible; 0 picks a random seed.
	Seed int64
	// VisitYear bounds the generated last visit dates. Defaults to the
	// year before Now.
	VisitYear int
	Now       time.Time
}

type person struct{ kanji, kana string }

var surnames = []person{
	{"佐藤", "サトウ"}, {"鈴木", "スズキ"}, {"高橋", "タカハシ"}, {"田中", "タナカ"},
	{"伊藤", "イトウ"}, {"渡辺", "ワタナベ"}, {"山本", "ヤマモト"}, {"中村", "ナカムラ"},
	{"小林", "コバヤシ"}, {"加藤", "カトウ"}, {"吉田", "ヨシダ"}, {"山田", "ヤマダ"},
}

var givenNames = []person{
	{"太郎", "タロウ"}, {"花子", "ハナコ"}, {"翔太", "ショウタ"}, {"陽菜", "ヒナ"},
	{"大輔", "ダイスケ"}, {"美咲", "ミサキ"}, {"健一", "ケンイチ"}, {"結衣", "ユイ"},
	{"蓮", "レン"}, {"さくら", "サクラ"},
}

// fallbackEntries stand in for the gazetteer when none is loaded.
var fallbackEntries = []gazetteer.Entry{
	{Prefecture: "東京都", City: "千代田区", Area: "丸の内", PostalCode: "1000005"},
	{Prefecture: "東京都", City: "新宿区", Area: "西新宿", PostalCode: "1600023"},
	{Prefecture: "大阪府", City: "大阪市北区", Area: "梅田", PostalCode: "5300001"},
	{Prefecture: "北海道", City: "札幌市中央区", Area: "北一条西", PostalCode: "0600001"},
	{Prefecture: "福岡県", City: "福岡市博多区", Area: "博多駅前", PostalCode: "8120011"},
}

// Extra columns a real export carries that the tool ignores.
const (
	kanaNameColumn = "患者カナ氏名"
	ageColumn      = "年齢"
	sexColumn      = "性別"
	phoneColumn    = "電話番号"
)

// Generate builds a roster table with the columns named in cols plus a few
// the tool ignores. Addresses are sampled from g when it is non-nil.
func Generate(g *gazetteer.Gazetteer, cols config.Columns, opts Options) *sheet.Table {
	if opts.Count <= 0 {
		opts.Count = 1000
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.VisitYear == 0 {
		opts.VisitYear = opts.Now.Year() - 1
	}

	entries := fallbackEntries
	if g != nil {
		entries = withAreas(g.Entries())
		if len(entries) == 0 {
			entries = fallbackEntries
		}
	}

	faker := gofakeit.New(opts.Seed)
	visitStart := time.Date(opts.VisitYear, 1, 1, 0, 0, 0, 0, time.Local)
	visitEnd := time.Date(opts.VisitYear, 12, 31, 0, 0, 0, 0, time.Local)

	t := &sheet.Table{Header: []string{
		kanaNameColumn, cols.Name, cols.PatientID, cols.BirthDate, ageColumn, sexColumn,
		cols.PostalCode, cols.Address, phoneColumn, cols.LastVisit,
	}}

	for i := 0; i < opts.Count; i++ {
		sur := surnames[faker.Number(0, len(surnames)-1)]
		given := givenNames[faker.Number(0, len(givenNames)-1)]

		age := faker.Number(2, 89)
		birth := faker.DateRange(
			opts.Now.AddDate(-age-1, 0, 1),
			opts.Now.AddDate(-age, 0, 0),
		).In(time.Local)
		visit := faker.DateRange(visitStart, visitEnd).In(time.Local)
		e := entries[faker.Number(0, len(entries)-1)]

		t.Rows = append(t.Rows, []string{
			sur.kana + " " + given.kana,
			sur.kanji + " " + given.kanji,
			strconv.Itoa(faker.Number(10000, 99999)),
			fullWidthDate(birth),
			strconv.Itoa(age),
			faker.RandomString([]string{"男", "女"}),
			formatPostal(e.PostalCode),
			fmt.Sprintf("%s%s%s%d-%d-%d", e.Prefecture, e.City, e.Area,
				faker.Number(1, 9), faker.Number(1, 30), faker.Number(1, 20)),
			faker.Numerify("0#0-####-####"),
			fullWidthDate(visit),
		})
	}
	return t
}

func withAreas(all []gazetteer.Entry) []gazetteer.Entry {
	out := make([]gazetteer.Entry, 0, len(all))
	for _, e := range all {
		if e.Area != "" && len(e.PostalCode) == 7 {
			out = append(out, e)
		}
	}
	return out
}

// fullWidthDate renders dates the way the records system exports them:
// "２０２４年　０６月　０５日".
func fullWidthDate(t time.Time) string {
	return width.Widen.String(t.Format("2006年 01月 02日"))
}

func formatPostal(digits string) string {
	if len(digits) != 7 {
		return digits
	}
	return digits[:3] + "-" + digits[3:]
}
