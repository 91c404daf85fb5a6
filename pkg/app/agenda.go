package app

import (
	"sort"
	"strings"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/recurrence"
	"tableflip.dev/daybook/pkg/streak"
	"tableflip.dev/daybook/pkg/timeutil"
)

// TaskItem is a task as it appears on one day.
type TaskItem struct {
	Task entity.Task
	Done bool
}

// HabitItem is a habit as it appears on one day.
type HabitItem struct {
	Habit  entity.Habit
	Done   bool
	Streak streak.Result
}

// Agenda is everything scheduled on one day.
type Agenda struct {
	Day       timeutil.Day
	Tasks     []TaskItem
	Overdue   []entity.Task
	Habits    []HabitItem
	Events    []entity.PlannerEvent
	Reminders []entity.Reminder
}

// Agenda assembles the in-memory view of day. Malformed entities are left
// out.
func (s *Service) Agenda(day timeutil.Day) Agenda {
	today := s.Today()
	a := Agenda{Day: day}

	for _, t := range s.Tasks.List() {
		if t.Malformed || !recurrence.IsDue(recurrence.ForTask(t), day, today) {
			continue
		}
		a.Tasks = append(a.Tasks, TaskItem{Task: t, Done: s.taskDone(t, day)})
	}
	sort.SliceStable(a.Tasks, func(i, j int) bool {
		return lessTask(a.Tasks[i].Task, a.Tasks[j].Task)
	})
	a.Overdue = s.Overdue(day)

	for _, h := range s.Habits.List() {
		if h.Malformed || !recurrence.IsDue(recurrence.ForHabit(h), day, today) {
			continue
		}
		_, done := s.completionOn(h.ID, day)
		a.Habits = append(a.Habits, HabitItem{Habit: h, Done: done, Streak: s.streakOf(h, day)})
	}
	sort.SliceStable(a.Habits, func(i, j int) bool {
		return strings.ToLower(a.Habits[i].Habit.Name) < strings.ToLower(a.Habits[j].Habit.Name)
	})

	for _, e := range s.Events.List() {
		if e.Malformed || (e.Date == nil && !e.Rule.Recurring()) {
			continue
		}
		if recurrence.IsDue(recurrence.ForEvent(e), day, today) {
			a.Events = append(a.Events, e)
		}
	}
	sort.SliceStable(a.Events, func(i, j int) bool {
		return clockLess(a.Events[i].Time, a.Events[j].Time)
	})

	for _, r := range s.Reminders.List() {
		if !r.HasTrigger() || r.Dismissed {
			continue
		}
		if timeutil.DayOf(r.At.In(s.loc)).Equal(day) {
			a.Reminders = append(a.Reminders, r)
		}
	}
	sort.SliceStable(a.Reminders, func(i, j int) bool {
		return a.Reminders[i].At.Before(a.Reminders[j].At)
	})
	return a
}

// Overdue lists one-off tasks that are still open and were due before day.
func (s *Service) Overdue(day timeutil.Day) []entity.Task {
	var out []entity.Task
	for _, t := range s.Tasks.List() {
		if t.Malformed || t.Completed || t.Rule.Recurring() || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(day) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return lessTask(out[i], out[j]) })
	return out
}

// HabitStreak pairs a habit with its streaks.
type HabitStreak struct {
	Habit  entity.Habit
	Streak streak.Result
}

// Streaks computes the streaks of every well-formed habit as of asOf.
func (s *Service) Streaks(asOf timeutil.Day) []HabitStreak {
	var out []HabitStreak
	for _, h := range s.Habits.List() {
		if h.Malformed {
			continue
		}
		out = append(out, HabitStreak{Habit: h, Streak: s.streakOf(h, asOf)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Habit.Name) < strings.ToLower(out[j].Habit.Name)
	})
	return out
}

// Streak computes the streaks of one habit as of asOf.
func (s *Service) Streak(habitID string, asOf timeutil.Day) (streak.Result, error) {
	h, ok := s.Habits.Get(habitID)
	if !ok {
		return streak.Result{}, apperr.NewNotFoundError("habit", habitID)
	}
	if h.Malformed {
		return streak.Result{}, apperr.NewInvalidInputError("habit", habitID, "habit has unparseable dates")
	}
	return s.streakOf(h, asOf), nil
}

func (s *Service) streakOf(h entity.Habit, asOf timeutil.Day) streak.Result {
	days := streak.CompletedDays(s.Logs.List(), h.ID)
	return streak.Compute(days, recurrence.Scheduled(recurrence.ForHabit(h), s.Today()), asOf)
}

func (s *Service) taskDone(t entity.Task, day timeutil.Day) bool {
	if t.Rule.Recurring() {
		_, done := s.completionOn(t.ID, day)
		return done
	}
	return t.Completed
}

func lessTask(a, b entity.Task) bool {
	if a.Urgent != b.Urgent {
		return a.Urgent
	}
	if !clockEqual(a.DueTime, b.DueTime) {
		return clockLess(a.DueTime, b.DueTime)
	}
	return strings.ToLower(a.Title) < strings.ToLower(b.Title)
}

// clockLess orders times of day with unset times last.
func clockLess(a, b *timeutil.HourMinute) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	if a.Hour != b.Hour {
		return a.Hour < b.Hour
	}
	return a.Minute < b.Minute
}

func clockEqual(a, b *timeutil.HourMinute) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
