package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/cache"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/remote"
	"tableflip.dev/daybook/pkg/store"
	"tableflip.dev/daybook/pkg/timeutil"
)

var (
	now      = time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC) // Wednesday
	today    = timeutil.MustParseDay("2024-06-12")
	errStore = errors.New("sheet unavailable")
)

type fixture struct {
	remote *remote.Memory
	clock  *timeutil.FixedClock
	svc    *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	rm := remote.NewMemory()
	rm.Seed(entity.KindTasks,
		entity.Row{"id": "t1", "title": "pay rent", "due_date": "2024-06-12", "completed": false},
		entity.Row{"id": "t2", "title": "stretch", "recurrence": "daily"},
		entity.Row{"id": "t3", "title": "file taxes", "due_date": "2024-06-01"},
		entity.Row{"id": "t4", "title": "broken", "due_date": "someday"},
	)
	rm.Seed(entity.KindHabits,
		entity.Row{"id": "h1", "name": "run", "recurrence": "weekly", "days": "mon,wed"},
		entity.Row{"id": "h2", "name": "read", "recurrence": "daily"},
		entity.Row{"id": "h3", "name": "piano", "recurrence": "weekly", "days": []interface{}{"fri"}},
	)
	rm.Seed(entity.KindHabitLogs,
		entity.Row{"id": "l1", "habit_id": "h1", "date": "2024-06-10"},
		entity.Row{"id": "l2", "habit_id": "h1", "date": "2024-06-05"},
		entity.Row{"id": "l3", "habit_id": "h2", "date": "2024-06-11"},
		entity.Row{"id": "l4", "habit_id": "h2", "date": "2024-05-31"},
	)
	rm.Seed(entity.KindEvents,
		entity.Row{"id": "e1", "title": "dentist", "date": "2024-06-12", "time": "15:30"},
		entity.Row{"id": "e2", "title": "standup", "date": "2024-06-03", "time": "09:00", "recurrence": "weekly", "days": "wed"},
	)
	rm.Seed(entity.KindReminders,
		entity.Row{"id": "r1", "title": "call mum", "datetime": "2024-06-12T18:00:00Z"},
		entity.Row{"id": "r2", "title": "old", "datetime": "2024-06-10T18:00:00Z"},
	)
	clock := timeutil.NewFixedClock(now)
	c := cache.New(store.NewMemory(), cache.WithClock(clock))
	opts = append([]Option{WithClock(clock), WithLocation(time.UTC)}, opts...)
	return &fixture{remote: rm, clock: clock, svc: New(rm, c, opts...)}
}

func (f *fixture) load(t *testing.T) {
	t.Helper()
	_, err := f.svc.Load(context.Background(), today)
	require.NoError(t, err)
}

func TestLoad(t *testing.T) {
	f := newFixture(t)
	results, err := f.svc.Load(context.Background(), today)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, SourceRemote, r.Source, "%s %s", r.Kind, r.Scope)
	}
	assert.Equal(t, 4, f.svc.Tasks.Len())
	assert.Equal(t, 3, f.svc.Habits.Len())
	assert.Equal(t, 4, f.svc.Logs.Len())
	assert.Equal(t, 2, f.svc.Events.Len())

	var months []string
	for _, c := range f.remote.Calls() {
		if c.Kind == entity.KindHabitLogs {
			months = append(months, c.Month)
		}
	}
	assert.Equal(t, []string{""}, months)
}

func TestLoadHistoryWindow(t *testing.T) {
	f := newFixture(t, WithHistoryMonths(3))
	f.load(t)

	var months []string
	for _, c := range f.remote.Calls() {
		if c.Kind == entity.KindHabitLogs {
			months = append(months, c.Month)
		}
	}
	assert.Equal(t, []string{"2024-06", "2024-05", "2024-04"}, months)
	assert.True(t, f.svc.logsCover(timeutil.MustParseDay("2024-04-01")))
	assert.False(t, f.svc.logsCover(timeutil.MustParseDay("2024-03-31")))
}

// seedDailyLogs logs habit id on every day from first to last.
func seedDailyLogs(rm *remote.Memory, id string, first, last timeutil.Day) int {
	n := 0
	for d := first; !last.Before(d); d = d.AddDays(1) {
		rm.Seed(entity.KindHabitLogs, entity.Row{"id": id + "-" + d.String(), "habit_id": id, "date": d.String()})
		n++
	}
	return n
}

func TestStreakLongerThanHistoryWindow(t *testing.T) {
	f := newFixture(t, WithHistoryMonths(3))
	f.remote.Seed(entity.KindHabits, entity.Row{"id": "h9", "name": "floss", "recurrence": "daily"})
	days := seedDailyLogs(f.remote, "h9", timeutil.MustParseDay("2024-01-01"), today)
	require.Equal(t, 164, days)
	f.load(t)

	windowed, err := f.svc.Streak("h9", today)
	require.NoError(t, err)
	assert.Equal(t, 73, windowed.Current)

	res, err := NewDispatcher(f.svc).Dispatch(context.Background(), ActionStreaks, Params{"id": "h9", "date": today.String()})
	require.NoError(t, err)
	got := res.([]HabitStreak)
	require.Len(t, got, 1)
	assert.Equal(t, 164, got[0].Streak.Current)
	assert.Equal(t, 164, got[0].Streak.Longest)
}

func TestStreakWholeSheetByDefault(t *testing.T) {
	f := newFixture(t)
	f.remote.Seed(entity.KindHabits, entity.Row{"id": "h9", "name": "floss", "recurrence": "daily"})
	seedDailyLogs(f.remote, "h9", timeutil.MustParseDay("2024-01-01"), today)
	f.load(t)

	res, err := f.svc.Streak("h9", today)
	require.NoError(t, err)
	assert.Equal(t, 164, res.Current)
	assert.Equal(t, 164, res.Longest)
}

func TestCheckInBeforeHistoryWindowToggles(t *testing.T) {
	f := newFixture(t, WithHistoryMonths(3))
	f.remote.Seed(entity.KindHabitLogs, entity.Row{"id": "old", "habit_id": "h2", "date": "2024-01-15"})
	f.load(t)
	ctx := context.Background()
	before := len(f.remote.Rows(entity.KindHabitLogs))

	ch, err := f.svc.CheckInHabit(ctx, "h2", timeutil.MustParseDay("2024-01-15"))
	require.NoError(t, err)
	require.NoError(t, <-ch)
	assert.Len(t, f.remote.Rows(entity.KindHabitLogs), before-1)
	_, done := f.svc.completionOn("h2", timeutil.MustParseDay("2024-01-15"))
	assert.False(t, done)
}

func TestLoadFallsBackToCache(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	f.remote.Hook = func(context.Context, remote.Call) error { return errStore }
	f.clock.Advance(cache.DefaultTTL - time.Minute)
	results, err := f.svc.Load(context.Background(), today)
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, SourceCache, r.Source)
		assert.Equal(t, now, r.CachedAt.UTC())
	}
	assert.Equal(t, 4, f.svc.Tasks.Len())

	f.clock.Advance(2 * time.Minute)
	_, err = f.svc.Load(context.Background(), today)
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.TypeRemote))
	// Previously loaded state is kept.
	assert.Equal(t, 4, f.svc.Tasks.Len())
}

func TestToggleTask(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	ch, err := f.svc.ToggleTask(ctx, "t1", today)
	require.NoError(t, err)
	require.NoError(t, <-ch)
	task, _ := f.svc.Tasks.Get("t1")
	assert.True(t, task.Completed)
	assert.Equal(t, true, f.remote.Rows(entity.KindTasks)[0]["completed"])

	f.remote.Hook = func(context.Context, remote.Call) error { return errStore }
	before, _ := f.svc.Tasks.Get("t1")
	ch, err = f.svc.ToggleTask(ctx, "t1", today)
	require.NoError(t, err)
	assert.Error(t, <-ch)
	after, _ := f.svc.Tasks.Get("t1")
	assert.Equal(t, before, after)

	_, err = f.svc.ToggleTask(ctx, "missing", today)
	assert.True(t, apperr.IsType(err, apperr.TypeNotFound))
}

func TestToggleRecurringTaskLogsCompletion(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	ch, err := f.svc.ToggleTask(ctx, "t2", today)
	require.NoError(t, err)
	require.NoError(t, <-ch)

	task, _ := f.svc.Tasks.Get("t2")
	assert.False(t, task.Completed)
	assert.True(t, f.svc.taskDone(task, today))
	assert.False(t, f.svc.taskDone(task, today.AddDays(1)))

	var found bool
	for _, r := range f.remote.Rows(entity.KindHabitLogs) {
		if r["task_id"] == "t2" {
			found = true
			assert.Equal(t, "2024-06-12", r["date"])
			assert.Nil(t, r["habit_id"])
		}
	}
	assert.True(t, found)

	ch, err = f.svc.ToggleTask(ctx, "t2", today)
	require.NoError(t, err)
	require.NoError(t, <-ch)
	assert.False(t, f.svc.taskDone(task, today))
}

func TestCheckInHabitToggles(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	ch, err := f.svc.CheckInHabit(ctx, "h1", today)
	require.NoError(t, err)
	require.NoError(t, <-ch)
	assert.Len(t, f.remote.Rows(entity.KindHabitLogs), 5)
	res, err := f.svc.Streak("h1", today)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Current)

	ch, err = f.svc.CheckInHabit(ctx, "h1", today)
	require.NoError(t, err)
	require.NoError(t, <-ch)
	assert.Len(t, f.remote.Rows(entity.KindHabitLogs), 4)
	_, done := f.svc.completionOn("h1", today)
	assert.False(t, done)
}

func TestCheckInHabitRollback(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	f.remote.Hook = func(context.Context, remote.Call) error { return errStore }

	before := f.svc.Logs.List()
	ch, err := f.svc.CheckInHabit(context.Background(), "h2", today)
	require.NoError(t, err)
	assert.True(t, apperr.IsType(<-ch, apperr.TypeRemote))
	assert.Equal(t, before, f.svc.Logs.List())
}

func TestCheckInAllPartialFailure(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	var creates int32
	f.remote.Hook = func(_ context.Context, c remote.Call) error {
		if c.Action == remote.ActionCreate && atomic.AddInt32(&creates, 1) == 1 {
			return errStore
		}
		return nil
	}

	// h1 (mon/wed) and h2 (daily) are due on Wednesday; h3 (fri) is not.
	results, err := f.svc.CheckInAll(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, results, 2)
	failed := 0
	for _, r := range results {
		_, done := f.svc.completionOn(r.HabitID, today)
		if r.Err != nil {
			failed++
			assert.False(t, done, r.HabitID)
		} else {
			assert.True(t, done, r.HabitID)
		}
	}
	assert.Equal(t, 1, failed)

	// Running again only retries the habit that is still open.
	f.remote.Hook = nil
	results, err = f.svc.CheckInAll(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NoError(t, results[0].Err)
}

func TestAgenda(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	a := f.svc.Agenda(today)
	var tasks []string
	for _, item := range a.Tasks {
		tasks = append(tasks, item.Task.ID)
	}
	assert.ElementsMatch(t, []string{"t1", "t2"}, tasks)
	require.Len(t, a.Overdue, 1)
	assert.Equal(t, "t3", a.Overdue[0].ID)

	require.Len(t, a.Habits, 2)
	assert.Equal(t, "read", a.Habits[0].Habit.Name)
	assert.Equal(t, 1, a.Habits[0].Streak.Current)
	assert.Equal(t, "run", a.Habits[1].Habit.Name)
	assert.Equal(t, 2, a.Habits[1].Streak.Current)

	require.Len(t, a.Events, 2)
	assert.Equal(t, "e2", a.Events[0].ID)
	assert.Equal(t, "e1", a.Events[1].ID)
	require.Len(t, a.Reminders, 1)
	assert.Equal(t, "r1", a.Reminders[0].ID)
}

func TestAddTaskOptimistic(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	ctx := context.Background()

	_, _, err := f.svc.AddTask(ctx, entity.Task{})
	assert.True(t, apperr.IsType(err, apperr.TypeInvalidInput))

	f.remote.Hook = func(context.Context, remote.Call) error { return errStore }
	task, ch, err := f.svc.AddTask(ctx, entity.Task{Title: "buy milk"})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Error(t, <-ch)
	_, ok := f.svc.Tasks.Get(task.ID)
	assert.False(t, ok)

	f.remote.Hook = nil
	task, ch, err = f.svc.AddTask(ctx, entity.Task{Title: "buy milk"})
	require.NoError(t, err)
	require.NoError(t, <-ch)
	got, ok := f.svc.Tasks.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, entity.FrequencyNone, got.Rule.Frequency)
	assert.Len(t, f.remote.Rows(entity.KindTasks), 5)
}

func TestUpdateReminderTrigger(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	next := time.Date(2024, 6, 13, 18, 0, 0, 0, time.UTC)

	ch, err := f.svc.UpdateReminderTrigger(context.Background(), "r1", next)
	require.NoError(t, err)
	require.NoError(t, <-ch)
	r, _ := f.svc.Reminders.Get("r1")
	assert.True(t, next.Equal(r.At))
	assert.Equal(t, "2024-06-13T18:00:00Z", f.remote.Rows(entity.KindReminders)[0]["datetime"])
}

func TestBackgroundRefresh(t *testing.T) {
	f := newFixture(t, WithBackgroundRefresh())
	f.load(t)

	// A server side change that the next refresh should absorb.
	f.remote.Seed(entity.KindTasks, entity.Row{"id": "t9", "title": "from elsewhere"})
	ch, err := f.svc.ToggleTask(context.Background(), "t1", today)
	require.NoError(t, err)
	require.NoError(t, <-ch)
	f.svc.Wait()
	_, ok := f.svc.Tasks.Get("t9")
	assert.True(t, ok)
}

func TestReport(t *testing.T) {
	f := newFixture(t)
	f.load(t)

	res := f.svc.Report(today, today.AddDays(-7))
	assert.Equal(t, timeutil.MustParseDay("2024-06-05"), res.Since)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "read", res.Items[0].Label)
	assert.Equal(t, "run", res.Items[1].Label)
	assert.Len(t, res.Items[1].Days, 2)
	assert.Equal(t, 3, res.Total)
}

func TestDispatcher(t *testing.T) {
	f := newFixture(t)
	f.load(t)
	d := NewDispatcher(f.svc)
	ctx := context.Background()

	_, err := d.Dispatch(ctx, "explode", nil)
	assert.True(t, apperr.IsType(err, apperr.TypeInvalidInput))

	_, err = d.Dispatch(ctx, ActionCheckIn, Params{"date": "2024-06-12"})
	assert.True(t, apperr.IsType(err, apperr.TypeInvalidInput))

	_, err = d.Dispatch(ctx, ActionAgenda, Params{"date": "June"})
	assert.True(t, apperr.IsType(err, apperr.TypeInvalidInput))

	out, err := d.Dispatch(ctx, ActionCheckIn, Params{"id": "h2"})
	require.NoError(t, err)
	item := out.(HabitItem)
	assert.True(t, item.Done)
	assert.Equal(t, 2, item.Streak.Current)

	out, err = d.Dispatch(ctx, ActionStreaks, Params{"id": "h2"})
	require.NoError(t, err)
	assert.Len(t, out.([]HabitStreak), 1)

	assert.Contains(t, d.Actions(), ActionCheckInAll)
	assert.Contains(t, d.Actions(), ActionRefresh)
}
