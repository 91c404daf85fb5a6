package timeutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// LayoutDay is the wire format for calendar days.
	LayoutDay = "2006-01-02"
	// LayoutMonth is the month token used to scope date-bound reads.
	LayoutMonth = "2006-01"
)

// Day is a calendar date without a time of day or location. Two instants
// that fall on the same local date map to equal Days.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in t's location.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

// NewDay builds a normalised Day (out of range values roll over like time.Date).
func NewDay(year int, month time.Month, day int) Day {
	return DayOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDay accepts "YYYY-MM-DD" and anything that starts with it, such as an
// RFC3339 timestamp exported by a spreadsheet. Timestamps with an offset are
// converted to loc before the date is taken.
func ParseDay(s string, loc *time.Location) (Day, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Day{}, fmt.Errorf("empty date")
	}
	if len(s) > len(LayoutDay) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			if loc != nil {
				t = t.In(loc)
			}
			return DayOf(t), nil
		}
		s = s[:len(LayoutDay)]
	}
	t, err := time.Parse(LayoutDay, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DayOf(t), nil
}

// MustParseDay is ParseDay for literals in tests and defaults.
func MustParseDay(s string) Day {
	d, err := ParseDay(s, nil)
	if err != nil {
		panic(err)
	}
	return d
}

// IsZero reports whether d is the zero Day.
func (d Day) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At returns the instant of d at hm in loc.
func (d Day) At(hm HourMinute, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, hm.Hour, hm.Minute, 0, 0, loc)
}

// AddDays moves d by n calendar days. It is immune to DST because it works in UTC.
func (d Day) AddDays(n int) Day {
	return DayOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the day of the week for d.
func (d Day) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Compare returns -1, 0, or 1.
func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Before reports whether d is strictly earlier than o.
func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly later than o.
func (d Day) After(o Day) bool { return d.Compare(o) > 0 }

// Equal reports whether d and o are the same date.
func (d Day) Equal(o Day) bool { return d.Compare(o) == 0 }

// DaysUntil returns the number of calendar days from d to o (negative if o is earlier).
func (d Day) DaysUntil(o Day) int {
	return int(o.Time(time.UTC).Sub(d.Time(time.UTC)).Hours() / 24)
}

// MonthToken renders the "YYYY-MM" scope used for month-bound reads.
func (d Day) MonthToken() string {
	return d.Time(time.UTC).Format(LayoutMonth)
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time(time.UTC).Format(LayoutDay)
}

// MarshalJSON renders the day as "YYYY-MM-DD".
func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses "YYYY-MM-DD"; an empty string yields the zero Day.
func (d *Day) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if strings.TrimSpace(s) == "" {
		*d = Day{}
		return nil
	}
	parsed, err := ParseDay(s, nil)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
