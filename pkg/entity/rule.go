package entity

import (
	"fmt"
	"strings"
	"time"

	"tableflip.dev/daybook/pkg/timeutil"
)

// Frequency is the recurrence pattern of a task, habit, or event.
type Frequency string

const (
	FrequencyNone    Frequency = "none"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency maps stored values onto a Frequency. Blank and unknown
// values mean no recurrence.
func ParseFrequency(s string) Frequency {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "everyday":
		return FrequencyDaily
	case "weekly", "week":
		return FrequencyWeekly
	case "monthly", "month":
		return FrequencyMonthly
	default:
		return FrequencyNone
	}
}

// Rule describes which calendar dates a recurring entity is active on.
// Days only matters for weekly rules. End is an inclusive upper bound.
type Rule struct {
	Frequency Frequency
	Days      []time.Weekday
	End       *timeutil.Day
}

// Recurring reports whether the rule repeats at all.
func (r Rule) Recurring() bool {
	return r.Frequency != "" && r.Frequency != FrequencyNone
}

// HasDay reports whether wd is in Days. An empty set contains every day.
func (r Rule) HasDay(wd time.Weekday) bool {
	if len(r.Days) == 0 {
		return true
	}
	for _, d := range r.Days {
		if d == wd {
			return true
		}
	}
	return false
}

// Ended reports whether date is past the rule's end date.
func (r Rule) Ended(date timeutil.Day) bool {
	return r.End != nil && date.After(*r.End)
}

// Repeat is how a reminder's trigger advances after it fires.
type Repeat string

const (
	RepeatNone    Repeat = "none"
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatCustom  Repeat = "custom"
)

// RepeatRule pairs a Repeat with the interval used by custom repeats.
type RepeatRule struct {
	Kind         Repeat
	IntervalDays int
}

// ParseRepeat maps stored values onto a RepeatRule. A custom repeat without a
// positive interval does not repeat.
func ParseRepeat(s string, intervalDays int) RepeatRule {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return RepeatRule{Kind: RepeatDaily}
	case "weekly":
		return RepeatRule{Kind: RepeatWeekly}
	case "monthly":
		return RepeatRule{Kind: RepeatMonthly}
	case "custom", "interval":
		if intervalDays > 0 {
			return RepeatRule{Kind: RepeatCustom, IntervalDays: intervalDays}
		}
	}
	return RepeatRule{Kind: RepeatNone}
}

// Repeats reports whether the trigger should advance after firing.
func (r RepeatRule) Repeats() bool {
	return r.Kind != "" && r.Kind != RepeatNone
}

func (r RepeatRule) String() string {
	if r.Kind == RepeatCustom {
		return fmt.Sprintf("every %d days", r.IntervalDays)
	}
	if r.Kind == "" {
		return string(RepeatNone)
	}
	return string(r.Kind)
}
