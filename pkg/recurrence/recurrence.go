// Package recurrence answers whether a task, habit, or event is due on a
// given calendar day. Every function here is pure: "today" is passed in, never
// read from the wall clock.
package recurrence

import (
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Schedule is a recurrence rule plus the entity's reference date (due date,
// start date, or event date). Ref may be nil.
type Schedule struct {
	Rule entity.Rule
	Ref  *timeutil.Day
}

// ForTask returns the schedule of a task.
func ForTask(t entity.Task) Schedule {
	return Schedule{Rule: t.Rule, Ref: t.DueDate}
}

// ForHabit returns the schedule of a habit.
func ForHabit(h entity.Habit) Schedule {
	return Schedule{Rule: h.Rule, Ref: h.StartDate}
}

// ForEvent returns the schedule of a planner event.
func ForEvent(e entity.PlannerEvent) Schedule {
	return Schedule{Rule: e.Rule, Ref: e.Date}
}

// IsDue reports whether s is active on date. today only matters for monthly
// rules without a reference date, which then repeat on today's day of month.
//
//   - none: due on Ref, or always when Ref is unset
//   - daily: due every day
//   - weekly: due when date's weekday is in Days (empty means every day)
//   - monthly: due when date's day of month matches Ref's
//
// Nothing is due after Rule.End.
func IsDue(s Schedule, date, today timeutil.Day) bool {
	if s.Rule.Ended(date) {
		return false
	}
	switch s.Rule.Frequency {
	case entity.FrequencyDaily:
		return true
	case entity.FrequencyWeekly:
		return s.Rule.HasDay(date.Weekday())
	case entity.FrequencyMonthly:
		anchor := today.Day
		if s.Ref != nil {
			anchor = s.Ref.Day
		}
		return date.Day == anchor
	default:
		return s.Ref == nil || s.Ref.Equal(date)
	}
}

// Scheduled returns a predicate over days for streak accounting.
func Scheduled(s Schedule, today timeutil.Day) func(timeutil.Day) bool {
	return func(d timeutil.Day) bool {
		return IsDue(s, d, today)
	}
}

// Occurrences lists the days in [from, to] on which s is due. Undated
// non-recurring schedules yield nothing because they have no calendar anchor.
func Occurrences(s Schedule, from, to, today timeutil.Day) []timeutil.Day {
	if to.Before(from) {
		return nil
	}
	if !s.Rule.Recurring() && s.Ref == nil {
		return nil
	}
	var out []timeutil.Day
	for d := from; !d.After(to); d = d.AddDays(1) {
		if IsDue(s, d, today) {
			out = append(out, d)
		}
	}
	return out
}

// Evaluator binds IsDue to a clock for callers that work in "now" terms.
type Evaluator struct {
	Clock timeutil.Clock
}

// IsDue evaluates s on date with today taken from the clock.
func (e Evaluator) IsDue(s Schedule, date timeutil.Day) bool {
	return IsDue(s, date, timeutil.Today(e.Clock))
}

// DueToday evaluates s on the clock's current day.
func (e Evaluator) DueToday(s Schedule) bool {
	today := timeutil.Today(e.Clock)
	return IsDue(s, today, today)
}
