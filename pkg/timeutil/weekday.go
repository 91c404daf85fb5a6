package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var weekdayTokens = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday, "su": time.Sunday,
	"mon": time.Monday, "monday": time.Monday, "mo": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday, "tu": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday, "we": time.Wednesday,
	"thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday, "th": time.Thursday,
	"fri": time.Friday, "friday": time.Friday, "fr": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday, "sa": time.Saturday,
}

// ParseWeekday accepts English names and abbreviations in any case, or a
// number 0-6 with Sunday as 0.
func ParseWeekday(token string) (time.Weekday, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if wd, ok := weekdayTokens[t]; ok {
		return wd, nil
	}
	if n, err := strconv.Atoi(t); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	return 0, fmt.Errorf("unknown weekday %q", token)
}

// ParseWeekdays parses a list of tokens, skipping blanks. Unknown tokens are
// reported together with the weekdays that did parse.
func ParseWeekdays(tokens []string) ([]time.Weekday, error) {
	var (
		out     []time.Weekday
		unknown []string
		seen    = make(map[time.Weekday]bool)
	)
	for _, tok := range tokens {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		wd, err := ParseWeekday(tok)
		if err != nil {
			unknown = append(unknown, tok)
			continue
		}
		if !seen[wd] {
			seen[wd] = true
			out = append(out, wd)
		}
	}
	if len(unknown) > 0 {
		return out, fmt.Errorf("unknown weekdays %s", strings.Join(unknown, ","))
	}
	return out, nil
}

// WeekdayToken is the three letter token written back to the store.
func WeekdayToken(wd time.Weekday) string {
	return wd.String()[:3]
}
