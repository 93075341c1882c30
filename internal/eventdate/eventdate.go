// Package eventdate は募集コマンドに入力された開催日時の文字列を解釈する
package eventdate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// 時刻を省略したときの開催時刻
const DefaultHour = 21

var ErrUnparseable = errors.New("unable to parse date string")

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

const monthPattern = `(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?`

// dateRule は入力の先頭から日付部分を読み取る。
// ok=false は日付として読めたが存在しない日付だったことを表す
type dateRule struct {
	re    *regexp.Regexp
	build func(m []string, now time.Time) (day time.Time, ok bool)
}

type timeRule struct {
	re    *regexp.Regexp
	build func(m []string) (hour, minute int, ok bool)
}

var dateRules = []dateRule{
	{regexp.MustCompile(`^(?:今日|きょう|today)`), relative(0)},
	{regexp.MustCompile(`^(?:明後日|あさって|day after tomorrow)`), relative(2)},
	{regexp.MustCompile(`^(?:明日|あした|tomorrow)`), relative(1)},
	{regexp.MustCompile(`^(\d{1,3})\s*日後`), relativeN},
	{regexp.MustCompile(`^(\d{1,3})\s*days?\s+later`), relativeN},
	{regexp.MustCompile(`^in\s+(\d{1,3})\s*days?`), relativeN},
	{regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})`), func(m []string, now time.Time) (time.Time, bool) {
		return calendarDay(atoi(m[1]), atoi(m[2]), atoi(m[3]), now.Location())
	}},
	{regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日`), func(m []string, now time.Time) (time.Time, bool) {
		return calendarDay(atoi(m[1]), atoi(m[2]), atoi(m[3]), now.Location())
	}},
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})`), func(m []string, now time.Time) (time.Time, bool) {
		return upcomingDay(atoi(m[1]), atoi(m[2]), now)
	}},
	{regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日`), func(m []string, now time.Time) (time.Time, bool) {
		return upcomingDay(atoi(m[1]), atoi(m[2]), now)
	}},
	{regexp.MustCompile(`^` + monthPattern + `\s*(\d{1,2})(?:st|nd|rd|th)?\b`), func(m []string, now time.Time) (time.Time, bool) {
		return upcomingDay(int(months[m[1]]), atoi(m[2]), now)
	}},
	{regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)?\s+` + monthPattern), func(m []string, now time.Time) (time.Time, bool) {
		return upcomingDay(int(months[m[2]]), atoi(m[1]), now)
	}},
}

var timeRules = []timeRule{
	{regexp.MustCompile(`^(\d{1,2}):(\d{2})$`), func(m []string) (int, int, bool) {
		return clock(atoi(m[1]), atoi(m[2]))
	}},
	{regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(am|pm)$`), func(m []string) (int, int, bool) {
		return meridiem(atoi(m[1]), atoi(m[2]), m[3])
	}},
	{regexp.MustCompile(`^(\d{1,2})\s*(am|pm)$`), func(m []string) (int, int, bool) {
		return meridiem(atoi(m[1]), 0, m[2])
	}},
	{regexp.MustCompile(`^(午前|午後)\s*(\d{1,2})時(?:(\d{1,2})分|(半))?$`), func(m []string) (int, int, bool) {
		minute := 0
		switch {
		case m[3] != "":
			minute = atoi(m[3])
		case m[4] != "":
			minute = 30
		}
		suffix := "am"
		if m[1] == "午後" {
			suffix = "pm"
		}
		return meridiem(atoi(m[2]), minute, suffix)
	}},
	{regexp.MustCompile(`^(\d{1,2})時(\d{1,2})分$`), func(m []string) (int, int, bool) {
		return clock(atoi(m[1]), atoi(m[2]))
	}},
	{regexp.MustCompile(`^(\d{1,2})時半$`), func(m []string) (int, int, bool) {
		return clock(atoi(m[1]), 30)
	}},
	{regexp.MustCompile(`^(\d{1,2})時$`), func(m []string) (int, int, bool) {
		return clock(atoi(m[1]), 0)
	}},
	{regexp.MustCompile(`^half\s+past\s+(\d{1,2})$`), func(m []string) (int, int, bool) {
		return clock(atoi(m[1]), 30)
	}},
	{regexp.MustCompile(`^quarter\s+past\s+(\d{1,2})$`), func(m []string) (int, int, bool) {
		return clock(atoi(m[1]), 15)
	}},
	{regexp.MustCompile(`^quarter\s+to\s+(\d{1,2})$`), func(m []string) (int, int, bool) {
		return clock(atoi(m[1])-1, 45)
	}},
}

// Default は当日21:00を返す。既に過ぎていれば翌日21:00
func Default(now time.Time) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), DefaultHour, 0, 0, 0, now.Location())
	if !t.After(now) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// Parse は input を loc の日時として解釈する。
//
// 空文字は当日21:00、時刻のみは当日(過ぎていれば翌日)、日付のみはその日の21:00になる。
// 年のない日付が今日より前なら翌年とみなす。
// 形式としては読めても存在しない日時(2/30, 25:70など)は Default に丸める。
// どの形式にも当てはまらなければ ErrUnparseable を返す。
func Parse(now time.Time, input string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	raw := strings.TrimSpace(input)
	if raw == "" {
		return Default(now), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}

	s := normalize(raw)

	day, rest, dateFound, dateValid := matchDate(s, now)
	rest = strings.TrimSpace(rest)

	hour, minute := DefaultHour, 0
	timeFound, timeValid := false, true
	if rest != "" {
		h, m, found, valid := matchTime(rest)
		if !found {
			return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, input)
		}
		hour, minute, timeFound, timeValid = h, m, true, valid
	}

	if !dateValid || !timeValid {
		return Default(now), nil
	}

	if !dateFound {
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
		if timeFound && t.Before(now) {
			t = t.AddDate(0, 0, 1)
		}
		return t, nil
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

// normalize は全角英数字を半角にそろえて小文字化する
func normalize(s string) string {
	s = width.Fold.String(s)
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func matchDate(s string, now time.Time) (day time.Time, rest string, found, valid bool) {
	for _, rule := range dateRules {
		idx := rule.re.FindStringSubmatchIndex(s)
		if idx == nil {
			continue
		}
		day, ok := rule.build(submatches(s, idx), now)
		return day, s[idx[1]:], true, ok
	}
	return time.Time{}, s, false, true
}

func matchTime(s string) (hour, minute int, found, valid bool) {
	for _, rule := range timeRules {
		m := rule.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		h, mi, ok := rule.build(m)
		return h, mi, true, ok
	}
	return 0, 0, false, true
}

func submatches(s string, idx []int) []string {
	m := make([]string, len(idx)/2)
	for i := range m {
		if idx[2*i] >= 0 {
			m[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return m
}

func relative(days int) func([]string, time.Time) (time.Time, bool) {
	return func(_ []string, now time.Time) (time.Time, bool) {
		return now.AddDate(0, 0, days), true
	}
}

func relativeN(m []string, now time.Time) (time.Time, bool) {
	return now.AddDate(0, 0, atoi(m[1])), true
}

// upcomingDay は年のない月日を今日以降で最も近い日付にする
func upcomingDay(month, day int, now time.Time) (time.Time, bool) {
	t, ok := calendarDay(now.Year(), month, day, now.Location())
	if !ok {
		return t, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if t.Before(today) {
		return calendarDay(now.Year()+1, month, day, now.Location())
	}
	return t, true
}

// calendarDay は繰り上がりが起きる日付(2/30など)を不正として扱う
func calendarDay(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func clock(hour, minute int) (int, int, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

func meridiem(hour, minute int, suffix string) (int, int, bool) {
	if hour < 1 || hour > 12 {
		return 0, 0, false
	}
	hour %= 12
	if suffix == "pm" {
		hour += 12
	}
	return clock(hour, minute)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
