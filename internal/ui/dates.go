package ui

import (
	"fmt"
	"strings"
	"time"
)

// InputDateLayout is the format the date inputs display.
const InputDateLayout = "2006-01-02"

// ParseDay parses a local calendar day written as YYYY-MM-DD or in the
// table's "Mon Jan 02 2006" form. The result is midnight local time.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{InputDateLayout, DateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

// EndOfDay is the last millisecond of t's local day, so a range ending on
// a day includes everything added that day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.Local).Add(-time.Millisecond)
}
