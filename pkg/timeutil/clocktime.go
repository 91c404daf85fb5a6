package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// HourMinute is a wall-clock time of day.
type HourMinute struct {
	Hour   int
	Minute int
}

// ParseHourMinute accepts "H:MM", "HH:MM" and "HH:MM:SS" (seconds dropped).
func ParseHourMinute(s string) (HourMinute, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return HourMinute{}, fmt.Errorf("invalid time of day %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return HourMinute{}, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return HourMinute{}, fmt.Errorf("invalid minute in %q", s)
	}
	return HourMinute{Hour: h, Minute: m}, nil
}

// HourMinuteOf returns the wall-clock time of t.
func HourMinuteOf(t time.Time) HourMinute {
	return HourMinute{Hour: t.Hour(), Minute: t.Minute()}
}

func (hm HourMinute) String() string {
	return fmt.Sprintf("%02d:%02d", hm.Hour, hm.Minute)
}

// Compact renders hm without a colon, safe for storage keys.
func (hm HourMinute) Compact() string {
	return fmt.Sprintf("%02d%02d", hm.Hour, hm.Minute)
}
