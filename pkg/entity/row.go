package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tableflip.dev/daybook/pkg/timeutil"
)

// Row is one record as the remote store returns it: a bag of loosely typed
// columns. Decode* functions turn rows into typed entities.
type Row map[string]interface{}

// Clone returns a shallow copy of r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ID returns the row identifier rendered as a string.
func (r Row) ID() string {
	return r.str("id")
}

func (r Row) lookup(keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func (r Row) str(keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func (r Row) boolean(keys ...string) bool {
	v, ok := r.lookup(keys...)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "1", "y", "done":
			return true
		}
	}
	return false
}

func (r Row) integer(keys ...string) int {
	v, ok := r.lookup(keys...)
	if !ok {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	}
	return 0
}

// day returns the parsed date, or nil. bad is true when a value was present
// but could not be parsed.
func (r Row) day(loc *time.Location, keys ...string) (day *timeutil.Day, bad bool) {
	s := r.str(keys...)
	if s == "" {
		return nil, false
	}
	d, err := timeutil.ParseDay(s, loc)
	if err != nil {
		return nil, true
	}
	return &d, false
}

func (r Row) clock(keys ...string) (hm *timeutil.HourMinute, bad bool) {
	s := r.str(keys...)
	if s == "" {
		return nil, false
	}
	// Spreadsheets sometimes hand back a full timestamp for a time cell.
	if i := strings.IndexByte(s, 'T'); i >= 0 && len(s) > i+5 {
		s = s[i+1:]
		s = strings.TrimSuffix(s, "Z")
	}
	v, err := timeutil.ParseHourMinute(s)
	if err != nil {
		return nil, true
	}
	return &v, false
}

func (r Row) weekdays(keys ...string) ([]time.Weekday, bool) {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil, false
	}
	var tokens []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			tokens = append(tokens, fmt.Sprint(item))
		}
	case []string:
		tokens = t
	case string:
		s := strings.Trim(strings.TrimSpace(t), "[]")
		for _, part := range strings.Split(s, ",") {
			tokens = append(tokens, strings.Trim(strings.TrimSpace(part), `"'`))
		}
	default:
		return nil, true
	}
	days, err := timeutil.ParseWeekdays(tokens)
	return days, err != nil
}

func (r Row) rule(loc *time.Location) (Rule, bool) {
	rule := Rule{Frequency: ParseFrequency(r.str("recurrence", "frequency"))}
	days, badDays := r.weekdays("days", "recurrence_days", "recurrenceDays")
	rule.Days = days
	end, badEnd := r.day(loc, "recurrence_end", "recurrenceEnd", "end_date")
	rule.End = end
	return rule, badDays || badEnd
}

func ruleColumns(row Row, rule Rule) {
	freq := rule.Frequency
	if freq == "" {
		freq = FrequencyNone
	}
	row["recurrence"] = string(freq)
	if len(rule.Days) > 0 {
		tokens := make([]string, 0, len(rule.Days))
		for _, d := range rule.Days {
			tokens = append(tokens, timeutil.WeekdayToken(d))
		}
		row["days"] = strings.Join(tokens, ",")
	}
	if rule.End != nil {
		row["recurrence_end"] = rule.End.String()
	}
}
