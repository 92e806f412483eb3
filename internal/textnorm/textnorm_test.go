package textnorm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldDigits(t *testing.T) {
	assert.Equal(t, "0123456789", FoldDigits("０１２３４５６７８９"))
	assert.Equal(t, "大手町1-2", FoldDigits("大手町１-２"))
	assert.Equal(t, "アイウ", FoldDigits("アイウ"), "katakana must stay wide")
	assert.Equal(t, "ＡＢ", FoldDigits("ＡＢ"), "only digits are folded")
}

func TestStripSpace(t *testing.T) {
	assert.Equal(t, "東京都千代田区", StripSpace(" 東京都　千代田区 \t"))
	assert.Equal(t, "", StripSpace("　 "))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"２０２４年 ０１月 ０５日", time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local), true},
		{"2024年1月5日", time.Date(2024, 1, 5, 0, 0, 0, 0, time.Local), true},
		{"2024/12/31", time.Date(2024, 12, 31, 0, 0, 0, 0, time.Local), true},
		{"2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local), true},
		{"20230301", time.Date(2023, 3, 1, 0, 0, 0, 0, time.Local), true},
		{"", time.Time{}, false},
		{"2023-02-29", time.Time{}, false},
		{"unknown", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			}
		})
	}
}
