package eventdate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokyo = time.FixedZone("Asia/Tokyo", 9*60*60)

func TestParse(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, tokyo)
	at := func(month time.Month, day, hour, minute int) time.Time {
		return time.Date(2026, month, day, hour, minute, 0, 0, tokyo)
	}

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "空文字は当日21時", input: "", want: at(10, 16, 21, 0)},
		{name: "空白のみも当日21時", input: "   ", want: at(10, 16, 21, 0)},
		{name: "今日", input: "今日", want: at(10, 16, 21, 0)},
		{name: "明日と時刻", input: "明日 22:30", want: at(10, 17, 22, 30)},
		{name: "明日と時刻(空白なし)", input: "明日22時30分", want: at(10, 17, 22, 30)},
		{name: "明後日", input: "明後日", want: at(10, 18, 21, 0)},
		{name: "N日後", input: "3日後 20時", want: at(10, 19, 20, 0)},
		{name: "月日", input: "12/25", want: at(12, 25, 21, 0)},
		{name: "月日と時刻", input: "12/25 15:30", want: at(12, 25, 15, 30)},
		{name: "年月日", input: "2026/11/03 9:05", want: at(11, 3, 9, 5)},
		{name: "ハイフン区切り", input: "2026-11-03", want: at(11, 3, 21, 0)},
		{name: "漢字の月日", input: "11月3日 20時半", want: at(11, 3, 20, 30)},
		{name: "全角数字", input: "１２／２５ １５：３０", want: at(12, 25, 15, 30)},
		{name: "時刻のみで未来なら当日", input: "22:00", want: at(10, 16, 22, 0)},
		{name: "時刻のみで過ぎていれば翌日", input: "10時", want: at(10, 17, 10, 0)},
		{name: "存在しない日付は当日21時", input: "2/30 12:00", want: at(10, 16, 21, 0)},
		{name: "存在しない時刻は当日21時", input: "5/5 25:70", want: at(10, 16, 21, 0)},
		{name: "午後", input: "明日 午後9時半", want: at(10, 17, 21, 30)},
		{name: "午前のみで過ぎていれば翌日", input: "午前10時5分", want: at(10, 17, 10, 5)},
		{name: "tomorrow", input: "Tomorrow 9pm", want: at(10, 17, 21, 0)},
		{name: "in N days", input: "in 2 days 8:15 PM", want: at(10, 18, 20, 15)},
		{name: "N days later", input: "4 days later", want: at(10, 20, 21, 0)},
		{name: "月名と日", input: "Dec 31", want: at(12, 31, 21, 0)},
		{name: "序数と月名", input: "31st December 6am", want: at(12, 31, 6, 0)},
		{name: "half past", input: "half past 22", want: at(10, 16, 22, 30)},
		{name: "quarter to", input: "quarter to 13", want: at(10, 16, 12, 45)},
		{name: "RFC3339はそのまま", input: "2026-10-20T01:00:00Z", want: at(10, 20, 10, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(now, tt.input, tokyo)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "Parse(%q) = %v, want %v", tt.input, got, tt.want)
			assert.Equal(t, tokyo, got.Location())
		})
	}
}

func TestParse_Unparseable(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, tokyo)

	for _, input := range []string{"そのうち", "明日の夜", "12/25 nightly", "next week"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(now, input, tokyo)
			assert.ErrorIs(t, err, ErrUnparseable)
		})
	}
}

func TestParse_ConvertsNowToLocation(t *testing.T) {
	// UTCでは前日でも東京の日付で判定する
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC)

	got, err := Parse(now, "", tokyo)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 10, 16, 21, 0, 0, 0, tokyo).Equal(got))
}

func TestParse_LateEvening(t *testing.T) {
	// 21時を過ぎてからの募集
	now := time.Date(2026, 10, 16, 22, 0, 0, 0, tokyo)
	tomorrow21 := time.Date(2026, 10, 17, 21, 0, 0, 0, tokyo)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{name: "空文字は翌日21時", input: "", want: tomorrow21},
		{name: "存在しない日付は翌日21時", input: "13/40", want: tomorrow21},
		{name: "存在しない時刻は翌日21時", input: "25時", want: tomorrow21},
		{name: "存在しない分は翌日21時", input: "12:60", want: tomorrow21},
		{name: "今日を過ぎた月日は翌年", input: "10/1", want: time.Date(2027, 10, 1, 21, 0, 0, 0, tokyo)},
		{name: "今日を過ぎた漢字の月日は翌年", input: "1月5日 20時", want: time.Date(2027, 1, 5, 20, 0, 0, 0, tokyo)},
		{name: "今日の月日はその日のまま", input: "10/16 23:30", want: time.Date(2026, 10, 16, 23, 30, 0, 0, tokyo)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(now, tt.input, tokyo)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "Parse(%q) = %v, want %v", tt.input, got, tt.want)
			assert.True(t, got.After(now), "Parse(%q) = %v should be after now", tt.input, got)
		})
	}
}

func TestDefault(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "21時前は当日", now: time.Date(2026, 10, 16, 20, 59, 0, 0, tokyo), want: time.Date(2026, 10, 16, 21, 0, 0, 0, tokyo)},
		{name: "ちょうど21時は翌日", now: time.Date(2026, 10, 16, 21, 0, 0, 0, tokyo), want: time.Date(2026, 10, 17, 21, 0, 0, 0, tokyo)},
		{name: "月末の21時過ぎは翌月1日", now: time.Date(2026, 10, 31, 23, 0, 0, 0, tokyo), want: time.Date(2026, 11, 1, 21, 0, 0, 0, tokyo)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(Default(tt.now)), "Default(%v) = %v, want %v", tt.now, Default(tt.now), tt.want)
		})
	}
}
