// utils/dates.go
package utils

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// EachDate returns every calendar date from start to end inclusive.
func EachDate(start, end time.Time) []time.Time {
	start = BeginningOfDay(start)
	end = BeginningOfDay(end)
	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// ISOWeekday maps time.Weekday onto 1 (Monday) .. 7 (Sunday).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (datatypes.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
}

func NewDate(t time.Time) datatypes.Date {
	return datatypes.Date(BeginningOfDay(t))
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}
