package printers

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/reminder"
	"tableflip.dev/daybook/pkg/streak"
	"tableflip.dev/daybook/pkg/timeutil"
)

func init() {
	color.NoColor = true
}

func TestAgenda(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, ShowID: true, Location: time.UTC}
	day := timeutil.MustParseDay("2024-06-12")
	due := timeutil.MustParseDay("2024-06-10")

	pp.Agenda(app.Agenda{
		Day: day,
		Tasks: []app.TaskItem{
			{Task: entity.Task{ID: "t1", Title: "pay rent", Urgent: true}, Done: true},
			{Task: entity.Task{ID: "t2", Title: "water plants", DueTime: &timeutil.HourMinute{Hour: 8}}},
		},
		Overdue: []entity.Task{{ID: "t3", Title: "taxes", DueDate: &due}},
		Habits: []app.HabitItem{
			{Habit: entity.Habit{ID: "h1", Name: "run"}, Streak: streak.Result{Current: 4}},
		},
		Reminders: []entity.Reminder{
			{ID: "r1", Title: "dentist", At: time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC), Repeat: entity.RepeatRule{Kind: entity.RepeatCustom, IntervalDays: 3}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "2024-06-12 Wednesday")
	assert.Contains(t, out, "Tasks - 2 entries")
	assert.Contains(t, out, "! pay rent")
	assert.Contains(t, out, "08:00")
	assert.Contains(t, out, "2024-06-10")
	assert.Contains(t, out, "4 day streak")
	assert.Contains(t, out, "Events - 0 entries")
	assert.Contains(t, out, "2024-06-12 15:30")
	assert.Contains(t, out, "(every 3 days)")
	assert.Contains(t, out, "t2")
}

func TestStreaksAndCheckIns(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	pp.Streaks([]app.HabitStreak{{Habit: entity.Habit{ID: "h1", Name: "read"}, Streak: streak.Result{Current: 2, Longest: 9}}})
	pp.CheckIns([]app.CheckInResult{{HabitID: "h1"}, {HabitID: "h2", Err: errors.New("offline")}}, map[string]string{"h1": "read"})

	out := buf.String()
	assert.Contains(t, out, "LONGEST")
	assert.Contains(t, out, "9")
	assert.Contains(t, out, "read")
	assert.Contains(t, out, "h2")
	assert.Contains(t, out, "offline")
}

func TestScanQuietWhenIdle(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf, Location: time.UTC}
	pp.Scan(reminder.Report{At: time.Now()})
	assert.Empty(t, buf.String())

	pp.Scan(reminder.Report{
		At:    time.Date(2024, 6, 12, 9, 0, 5, 0, time.UTC),
		Fired: []reminder.Occurrence{{Family: reminder.FamilyHabit, Title: "stretch"}},
	})
	assert.Equal(t, "09:00:05 fired    habit stretch\n", buf.String())
}

func TestHabitMonth(t *testing.T) {
	var buf bytes.Buffer
	pp := &PrettyPrint{Out: &buf}
	day := timeutil.MustParseDay("2024-06-12")
	pp.HabitMonth(day, day, map[timeutil.Day]bool{day: true}, nil)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "June 2024", strings.TrimSpace(lines[0]))
	// June 2024 starts on a Saturday.
	assert.Equal(t, strings.Repeat("   ", 6)+" 1 ", lines[1])
	assert.Equal(t, 30, DaysIn(timeutil.MustParseDay("2024-06-01")))
	assert.Equal(t, 29, DaysIn(timeutil.MustParseDay("2024-02-01")))
}
