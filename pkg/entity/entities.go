package entity

import (
	"time"

	"tableflip.dev/daybook/pkg/timeutil"
)

// Task is a to-do item, optionally dated and optionally recurring.
type Task struct {
	ID        string
	Title     string
	DueDate   *timeutil.Day
	DueTime   *timeutil.HourMinute
	Completed bool
	Rule      Rule
	Urgent    bool
	// Malformed marks rows whose dates could not be parsed; they are left
	// out of recurrence, streak, and reminder passes.
	Malformed bool
}

// EntityID implements Entity.
func (t Task) EntityID() string { return t.ID }

// DecodeTask builds a Task from a store row.
func DecodeTask(r Row, loc *time.Location) Task {
	t := Task{
		ID:        r.ID(),
		Title:     r.str("title", "name", "text"),
		Completed: r.boolean("completed", "done"),
		Urgent:    r.boolean("urgent", "priority_urgent"),
	}
	var badDate, badTime, badRule bool
	t.DueDate, badDate = r.day(loc, "due_date", "dueDate", "date")
	t.DueTime, badTime = r.clock("due_time", "dueTime", "time")
	t.Rule, badRule = r.rule(loc)
	t.Malformed = badDate || badTime || badRule
	return t
}

// Row renders the task as store columns.
func (t Task) Row() Row {
	row := Row{"id": t.ID, "title": t.Title, "completed": t.Completed}
	if t.DueDate != nil {
		row["due_date"] = t.DueDate.String()
	}
	if t.DueTime != nil {
		row["due_time"] = t.DueTime.String()
	}
	if t.Urgent {
		row["urgent"] = true
	}
	ruleColumns(row, t.Rule)
	return row
}

// Habit is a recurring check-in target.
type Habit struct {
	ID   string
	Name string
	Rule Rule
	// StartDate anchors monthly habits to a day of the month.
	StartDate    *timeutil.Day
	ReminderTime *timeutil.HourMinute
	Urgent       bool
	Malformed    bool
}

// EntityID implements Entity.
func (h Habit) EntityID() string { return h.ID }

// DecodeHabit builds a Habit from a store row. Habits default to daily.
func DecodeHabit(r Row, loc *time.Location) Habit {
	h := Habit{
		ID:     r.ID(),
		Name:   r.str("name", "title"),
		Urgent: r.boolean("urgent"),
	}
	var badRule, badStart, badTime bool
	h.Rule, badRule = r.rule(loc)
	if r.str("recurrence", "frequency") == "" {
		h.Rule.Frequency = FrequencyDaily
	}
	h.StartDate, badStart = r.day(loc, "start_date", "startDate", "created_at")
	h.ReminderTime, badTime = r.clock("reminder_time", "reminderTime")
	h.Malformed = badRule || badStart || badTime
	return h
}

// Row renders the habit as store columns.
func (h Habit) Row() Row {
	row := Row{"id": h.ID, "name": h.Name}
	if h.StartDate != nil {
		row["start_date"] = h.StartDate.String()
	}
	if h.ReminderTime != nil {
		row["reminder_time"] = h.ReminderTime.String()
	}
	if h.Urgent {
		row["urgent"] = true
	}
	ruleColumns(row, h.Rule)
	return row
}

// PlannerEvent is a calendar entry.
type PlannerEvent struct {
	ID        string
	Title     string
	Date      *timeutil.Day
	Time      *timeutil.HourMinute
	Rule      Rule
	Malformed bool
}

// EntityID implements Entity.
func (e PlannerEvent) EntityID() string { return e.ID }

// DecodeEvent builds a PlannerEvent from a store row.
func DecodeEvent(r Row, loc *time.Location) PlannerEvent {
	e := PlannerEvent{ID: r.ID(), Title: r.str("title", "name")}
	var badDate, badTime, badRule bool
	e.Date, badDate = r.day(loc, "date", "start_date", "startDate")
	e.Time, badTime = r.clock("time", "start_time", "startTime")
	e.Rule, badRule = r.rule(loc)
	e.Malformed = badDate || badTime || badRule
	return e
}

// Row renders the event as store columns.
func (e PlannerEvent) Row() Row {
	row := Row{"id": e.ID, "title": e.Title}
	if e.Date != nil {
		row["date"] = e.Date.String()
	}
	if e.Time != nil {
		row["time"] = e.Time.String()
	}
	ruleColumns(row, e.Rule)
	return row
}

// Reminder is a standalone alert with an absolute trigger instant.
type Reminder struct {
	ID        string
	Title     string
	Body      string
	At        time.Time
	Repeat    RepeatRule
	Urgent    bool
	Dismissed bool
	Malformed bool
}

// EntityID implements Entity.
func (r Reminder) EntityID() string { return r.ID }

// HasTrigger reports whether the reminder carries a usable trigger instant.
func (r Reminder) HasTrigger() bool {
	return !r.At.IsZero() && !r.Malformed
}

// DecodeReminder builds a Reminder from a store row. The trigger comes from a
// single "datetime" column or from separate "date" and "time" columns.
func DecodeReminder(r Row, loc *time.Location) Reminder {
	if loc == nil {
		loc = time.Local
	}
	rem := Reminder{
		ID:        r.ID(),
		Title:     r.str("title", "name", "text"),
		Body:      r.str("body", "message", "notes"),
		Repeat:    ParseRepeat(r.str("repeat", "repeat_rule"), r.integer("repeat_interval", "repeatInterval", "interval_days")),
		Urgent:    r.boolean("urgent"),
		Dismissed: r.boolean("dismissed", "completed", "done"),
	}
	if s := r.str("datetime", "dateTime", "trigger_at"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			rem.At = t.In(loc)
		} else if t, err := time.ParseInLocation("2006-01-02T15:04", s, loc); err == nil {
			rem.At = t
		} else if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
			rem.At = t
		} else {
			rem.Malformed = true
		}
		return rem
	}
	day, badDay := r.day(loc, "date")
	hm, badTime := r.clock("time")
	switch {
	case badDay || badTime:
		rem.Malformed = true
	case day != nil && hm != nil:
		rem.At = day.At(*hm, loc)
	case day != nil || hm != nil:
		// Half a trigger is no trigger.
		rem.Malformed = true
	}
	return rem
}

// Row renders the reminder as store columns.
func (r Reminder) Row() Row {
	row := Row{"id": r.ID, "title": r.Title, "dismissed": r.Dismissed}
	if r.Body != "" {
		row["body"] = r.Body
	}
	if !r.At.IsZero() {
		row["datetime"] = r.At.Format(time.RFC3339)
	}
	if r.Repeat.Repeats() {
		row["repeat"] = string(r.Repeat.Kind)
		if r.Repeat.Kind == RepeatCustom {
			row["repeat_interval"] = r.Repeat.IntervalDays
		}
	}
	if r.Urgent {
		row["urgent"] = true
	}
	return row
}

// Completion is one entry of the append-only completion log. OwnerID is the
// habit (or recurring task) the check-in belongs to.
type Completion struct {
	ID        string
	OwnerID   string
	Date      timeutil.Day
	Completed bool
	Malformed bool
}

// EntityID implements Entity.
func (c Completion) EntityID() string { return c.ID }

// DecodeCompletion builds a Completion from a store row. Rows without an
// explicit completed column count as completed.
func DecodeCompletion(r Row, loc *time.Location) Completion {
	c := Completion{
		ID:        r.ID(),
		OwnerID:   r.str("habit_id", "habitId", "task_id", "entity_id"),
		Completed: true,
	}
	if _, ok := r.lookup("completed", "done"); ok {
		c.Completed = r.boolean("completed", "done")
	}
	day, bad := r.day(loc, "date")
	switch {
	case bad || day == nil:
		c.Malformed = true
	default:
		c.Date = *day
	}
	return c
}

// Row renders the completion as store columns.
func (c Completion) Row() Row {
	return Row{
		"id":        c.ID,
		"habit_id":  c.OwnerID,
		"date":      c.Date.String(),
		"completed": c.Completed,
	}
}
