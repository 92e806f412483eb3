package address

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recall-postcards/internal/gazetteer"
)

func buildTestResolver(t *testing.T) *Resolver {
	t.Helper()

	b := gazetteer.NewBuilder()
	for _, e := range []gazetteer.Entry{
		{Prefecture: "東京都", City: "千代田区", Area: "大手町", PostalCode: "1000004"},
		{Prefecture: "東京都", City: "千代田区", Area: "丸の内", PostalCode: "1000005"},
		{Prefecture: "東京都", City: "千代田区", Area: "三番町", PostalCode: "1020075"},
		{Prefecture: "東京都", City: "府中市", Area: "宮町", PostalCode: "1830023"},
		{Prefecture: "広島県", City: "府中市", Area: "府川町", PostalCode: "7260005"},
		{Prefecture: "奈良県", City: "大和郡山市", Area: "北郡山町", PostalCode: "6391011"},
		{Prefecture: "奈良県", City: "大和高田市", Area: "大中", PostalCode: "6350095"},
		{Prefecture: "千葉県", City: "千葉市中央区", Area: "中央", PostalCode: "2600013"},
		{Prefecture: "テスト県", City: "AB", Area: "x", PostalCode: "9990001"},
		{Prefecture: "テスト県", City: "ABC", Area: "xyz", PostalCode: "9990002"},
		{Prefecture: "テスト県", City: "本町村", Area: "二十一丁目", PostalCode: "9990003"},
		{Prefecture: "テスト県", City: "本町村", Area: "二十丁目", PostalCode: "9990004"},
	} {
		b.Add(e)
	}

	g, err := b.Build()
	require.NoError(t, err)
	return NewResolver(g)
}

func TestResolve(t *testing.T) {
	r := buildTestResolver(t)

	tests := []struct {
		name  string
		input string
		want  Result
	}{
		{
			name:  "full hierarchy",
			input: "東京都千代田区大手町1-2-3",
			want:  Result{Prefecture: "東京都", City: "千代田区", Remainder: "大手町1-2-3", Area: "大手町", Outcome: AreaMatched},
		},
		{
			name:  "whitespace and fullwidth digits",
			input: "東京都　千代田区 大手町１－２",
			want:  Result{Prefecture: "東京都", City: "千代田区", Remainder: "大手町1－2", Area: "大手町", Outcome: AreaMatched},
		},
		{
			name:  "numeral conversion only affects the lookup key",
			input: "東京都千代田区3番町5",
			want:  Result{Prefecture: "東京都", City: "千代田区", Remainder: "3番町5", Area: "三番町", Outcome: AreaMatched},
		},
		{
			name:  "twenty one converts with unit glyph",
			input: "テスト県本町村21丁目4",
			want:  Result{Prefecture: "テスト県", City: "本町村", Remainder: "21丁目4", Area: "二十一丁目", Outcome: AreaMatched},
		},
		{
			name:  "longest city wins",
			input: "ABCxyz",
			want:  Result{Prefecture: "テスト県", City: "ABC", Remainder: "xyz", Area: "xyz", Outcome: AreaMatched},
		},
		{
			name:  "city grows past shared prefix",
			input: "奈良県大和郡山市北郡山町248",
			want:  Result{Prefecture: "奈良県", City: "大和郡山市", Remainder: "北郡山町248", Area: "北郡山町", Outcome: AreaMatched},
		},
		{
			name:  "missing prefecture taken from area",
			input: "千代田区丸の内1-1",
			want:  Result{Prefecture: "東京都", City: "千代田区", Remainder: "丸の内1-1", Area: "丸の内", Outcome: AreaMatched},
		},
		{
			name:  "same named city follows matched prefecture",
			input: "広島県府中市府川町315",
			want:  Result{Prefecture: "広島県", City: "府中市", Remainder: "府川町315", Area: "府川町", Outcome: AreaMatched},
		},
		{
			name:  "prefecture name removed wherever it repeats",
			input: "東京都千代田区大手町東京都ビル",
			want:  Result{Prefecture: "東京都", City: "千代田区", Remainder: "大手町ビル", Area: "大手町", Outcome: AreaMatched},
		},
		{
			name:  "unknown area falls back to city",
			input: "東京都千代田区永田町1-7",
			want:  Result{Prefecture: "東京都", City: "千代田区", Remainder: "永田町1-7", Outcome: CityMatched},
		},
		{
			name:  "address ends at city",
			input: "東京都千代田区",
			want:  Result{Prefecture: "東京都", City: "千代田区", Remainder: "", Outcome: CityMatched},
		},
		{
			name:  "prefecture only",
			input: "東京都港区芝公園4-2-8",
			want:  Result{Prefecture: "東京都", City: Sentinel, Remainder: "港区芝公園4-2-8", Outcome: PrefectureOnly},
		},
		{
			name:  "partial prefecture name",
			input: "東京",
			want:  Result{Prefecture: "東京都", City: Sentinel, Remainder: "東京", Outcome: PrefectureOnly},
		},
		{
			name:  "total miss keeps the address",
			input: "不明な住所123",
			want:  Result{Prefecture: Sentinel, City: Sentinel, Remainder: "不明な住所123", Outcome: NoMatch},
		},
		{
			name:  "empty",
			input: "",
			want:  Result{Prefecture: Sentinel, City: Sentinel, Remainder: "", Outcome: NoMatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.input))
		})
	}
}

func TestResolveMultipleOfTenDropsUnitGlyph(t *testing.T) {
	r := buildTestResolver(t)

	got := r.Resolve("テスト県本町村20丁目")
	assert.Equal(t, AreaMatched, got.Outcome)
	assert.Equal(t, "二十丁目", got.Area)
	assert.Equal(t, "20丁目", got.Remainder)
}

func TestResolveCountsDroppedNumerals(t *testing.T) {
	r := buildTestResolver(t)

	got := r.Resolve("東京都千代田区大手町123456")
	assert.Equal(t, AreaMatched, got.Outcome)
	assert.Equal(t, 1, got.DroppedNumerals)
	assert.Equal(t, "大手町123456", got.Remainder)
}

func TestResolveNeverReturnsBlankLevels(t *testing.T) {
	r := buildTestResolver(t)

	for _, in := range []string{"", " ", "東", "千", "A", "ABC", "東京都千代田区", "???", "１２３"} {
		got := r.Resolve(in)
		assert.NotEmpty(t, got.Prefecture, "input %q", in)
		assert.NotEmpty(t, got.City, "input %q", in)
	}
}

func TestResolveByPostalCode(t *testing.T) {
	r := buildTestResolver(t)

	assert.Equal(t,
		Result{Prefecture: "東京都", City: "千代田区", Remainder: "大手町" + HandFill, Area: "大手町", Outcome: PostalCodeMatched},
		r.ResolveByPostalCode("100-0004"))

	assert.Equal(t,
		Result{Prefecture: UnknownPostalCode, City: Sentinel, Remainder: Sentinel, Outcome: NoMatch},
		r.ResolveByPostalCode("999-9999"))

	assert.Equal(t,
		Result{Prefecture: Sentinel, City: Sentinel, Outcome: NoMatch},
		r.ResolveByPostalCode("000-0000"))
}

func TestLongestPrefixStopsAtFirstFailure(t *testing.T) {
	var asked []string
	n := longestPrefix("abcde", func(p string) bool {
		asked = append(asked, p)
		return p == "a" || p == "ab" || p == "abcd"
	})

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"a", "ab", "abc"}, asked, "no lengths are tried past the first failure")

	assert.Equal(t, 0, longestPrefix("xyz", func(string) bool { return false }))
	assert.Equal(t, 3, longestPrefix("東京都", func(string) bool { return true }), "exhausting the input stops the scan")
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "area_matched", AreaMatched.String())
	assert.Equal(t, "no_match", NoMatch.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestResolveConcurrent(t *testing.T) {
	r := buildTestResolver(t)
	want := r.Resolve("東京都千代田区大手町1-2-3")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, r.Resolve("東京都千代田区大手町1-2-3"))
			}
		}()
	}
	wg.Wait()
}

func TestOutcomeTextRoundTrip(t *testing.T) {
	for o := range outcomeNames {
		text, err := o.MarshalText()
		require.NoError(t, err)

		var back Outcome
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, o, back)
	}

	var o Outcome
	assert.Error(t, o.UnmarshalText([]byte("partial")))
}
