package printers

import (
	"time"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/streak"
	"tableflip.dev/daybook/pkg/timeutil"
)

// TaskDTO is a transport-friendly projection of a task on one day.
type TaskDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	DueDate   string `json:"dueDate,omitempty"`
	DueTime   string `json:"dueTime,omitempty"`
	Recurring string `json:"recurrence,omitempty"`
	Urgent    bool   `json:"urgent,omitempty"`
	Done      bool   `json:"done"`
}

// HabitDTO is a habit on one day with its streaks.
type HabitDTO struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Recurrence    string `json:"recurrence,omitempty"`
	Done          bool   `json:"done"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
}

// EventDTO is a planner event.
type EventDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
}

// ReminderDTO is a standalone reminder.
type ReminderDTO struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Body      string `json:"body,omitempty"`
	At        string `json:"at"`
	Repeat    string `json:"repeat,omitempty"`
	Urgent    bool   `json:"urgent,omitempty"`
	Dismissed bool   `json:"dismissed,omitempty"`
}

// AgendaDTO is everything scheduled on one day.
type AgendaDTO struct {
	Date      string        `json:"date"`
	Tasks     []TaskDTO     `json:"tasks"`
	Overdue   []TaskDTO     `json:"overdue"`
	Habits    []HabitDTO    `json:"habits"`
	Events    []EventDTO    `json:"events"`
	Reminders []ReminderDTO `json:"reminders"`
}

// CheckInDTO is the outcome of one habit in a batch check-in.
type CheckInDTO struct {
	HabitID string `json:"habitId"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

// LoadDTO describes where a scope was read from.
type LoadDTO struct {
	Kind     string `json:"kind"`
	Scope    string `json:"scope"`
	Source   string `json:"source,omitempty"`
	Rows     int    `json:"rows"`
	CachedAt string `json:"cachedAt,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ReportItemDTO is one habit or recurring task in a report.
type ReportItemDTO struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  string   `json:"kind,omitempty"`
	Days  []string `json:"days"`
}

// ReportDTO summarises completions over a window.
type ReportDTO struct {
	Since string          `json:"since"`
	Until string          `json:"until"`
	Items []ReportItemDTO `json:"items"`
	Tasks []TaskDTO       `json:"tasks"`
	Total int             `json:"total"`
}

// ErrorDTO is returned in tool error results.
type ErrorDTO struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func dayString(d *timeutil.Day) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func clockString(hm *timeutil.HourMinute) string {
	if hm == nil {
		return ""
	}
	return hm.String()
}

func recurrenceString(r entity.Rule) string {
	if !r.Recurring() {
		return ""
	}
	return string(r.Frequency)
}

func taskDTO(t entity.Task, done bool) TaskDTO {
	return TaskDTO{
		ID: t.ID, Title: t.Title, DueDate: dayString(t.DueDate), DueTime: clockString(t.DueTime),
		Recurring: recurrenceString(t.Rule), Urgent: t.Urgent, Done: done,
	}
}

func habitDTO(h entity.Habit, done bool, s streak.Result) HabitDTO {
	return HabitDTO{
		ID: h.ID, Name: h.Name, Recurrence: recurrenceString(h.Rule), Done: done,
		CurrentStreak: s.Current, LongestStreak: s.Longest,
	}
}

func reminderDTO(r entity.Reminder) ReminderDTO {
	out := ReminderDTO{ID: r.ID, Title: r.Title, Body: r.Body, Urgent: r.Urgent, Dismissed: r.Dismissed}
	if !r.At.IsZero() {
		out.At = r.At.Format(time.RFC3339)
	}
	if r.Repeat.Repeats() {
		out.Repeat = r.Repeat.String()
	}
	return out
}

func agendaDTO(a app.Agenda) AgendaDTO {
	out := AgendaDTO{
		Date:      a.Day.String(),
		Tasks:     []TaskDTO{},
		Overdue:   []TaskDTO{},
		Habits:    []HabitDTO{},
		Events:    []EventDTO{},
		Reminders: []ReminderDTO{},
	}
	for _, t := range a.Tasks {
		out.Tasks = append(out.Tasks, taskDTO(t.Task, t.Done))
	}
	for _, t := range a.Overdue {
		out.Overdue = append(out.Overdue, taskDTO(t, false))
	}
	for _, h := range a.Habits {
		out.Habits = append(out.Habits, habitDTO(h.Habit, h.Done, h.Streak))
	}
	for _, e := range a.Events {
		out.Events = append(out.Events, EventDTO{ID: e.ID, Title: e.Title, Date: dayString(e.Date), Time: clockString(e.Time)})
	}
	for _, r := range a.Reminders {
		out.Reminders = append(out.Reminders, reminderDTO(r))
	}
	return out
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Present converts a dispatcher result into its JSON projection. Values of
// other types are returned unchanged.
func Present(v interface{}) interface{} {
	switch v := v.(type) {
	case app.Agenda:
		return agendaDTO(v)
	case app.TaskItem:
		return taskDTO(v.Task, v.Done)
	case app.HabitItem:
		return habitDTO(v.Habit, v.Done, v.Streak)
	case []app.HabitStreak:
		out := make([]HabitDTO, 0, len(v))
		for _, hs := range v {
			out = append(out, habitDTO(hs.Habit, false, hs.Streak))
		}
		return map[string]interface{}{"streaks": out, "count": len(out)}
	case []app.CheckInResult:
		out := make([]CheckInDTO, 0, len(v))
		for _, r := range v {
			out = append(out, CheckInDTO{HabitID: r.HabitID, OK: r.Err == nil, Error: errorString(r.Err)})
		}
		return map[string]interface{}{"results": out, "count": len(out)}
	case []app.LoadResult:
		out := make([]LoadDTO, 0, len(v))
		for _, r := range v {
			dto := LoadDTO{Kind: string(r.Kind), Scope: r.Scope, Source: string(r.Source), Rows: r.Rows, Error: errorString(r.Err)}
			if !r.CachedAt.IsZero() {
				dto.CachedAt = r.CachedAt.Format(time.RFC3339)
			}
			out = append(out, dto)
		}
		return map[string]interface{}{"scopes": out}
	case app.ReportResult:
		out := ReportDTO{Since: v.Since.String(), Until: v.Until.String(), Items: []ReportItemDTO{}, Tasks: []TaskDTO{}, Total: v.Total}
		for _, it := range v.Items {
			item := ReportItemDTO{ID: it.ID, Label: it.Label, Kind: string(it.Kind), Days: []string{}}
			for _, d := range it.Days {
				item.Days = append(item.Days, d.String())
			}
			out.Items = append(out.Items, item)
		}
		for _, t := range v.Tasks {
			out.Tasks = append(out.Tasks, taskDTO(t, true))
		}
		return out
	case entity.Reminder:
		return reminderDTO(v)
	case entity.Task:
		return taskDTO(v, v.Completed)
	case entity.Habit:
		return habitDTO(v, false, streak.Result{})
	}
	return v
}

// PresentError converts err into its JSON projection.
func PresentError(err error) ErrorDTO {
	if ae, ok := apperr.AsAppError(err); ok {
		return ErrorDTO{Type: ae.Type.String(), Message: apperr.UserMessage(err), Context: ae.Context}
	}
	return ErrorDTO{Type: "internal", Message: err.Error()}
}
