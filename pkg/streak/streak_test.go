package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/recurrence"
	"tableflip.dev/daybook/pkg/timeutil"
)

func days(ss ...string) []timeutil.Day {
	out := make([]timeutil.Day, 0, len(ss))
	for _, s := range ss {
		out = append(out, timeutil.MustParseDay(s))
	}
	return out
}

func weekly(wds ...time.Weekday) func(timeutil.Day) bool {
	s := recurrence.Schedule{Rule: entity.Rule{Frequency: entity.FrequencyWeekly, Days: wds}}
	return recurrence.Scheduled(s, timeutil.MustParseDay("2024-06-01"))
}

func TestCompute(t *testing.T) {
	asOf := timeutil.MustParseDay("2024-06-12") // Wednesday
	tests := []struct {
		name      string
		completed []timeutil.Day
		scheduled func(timeutil.Day) bool
		want      Result
	}{
		{name: "empty", want: Result{}},
		{name: "only today", completed: days("2024-06-12"), want: Result{Current: 1, Longest: 1}},
		{name: "three days ending today", completed: days("2024-06-10", "2024-06-11", "2024-06-12"), want: Result{Current: 3, Longest: 3}},
		{name: "today missing does not break", completed: days("2024-06-10", "2024-06-11"), want: Result{Current: 2, Longest: 2}},
		{name: "yesterday missing breaks", completed: days("2024-06-09", "2024-06-10"), want: Result{Current: 0, Longest: 2}},
		{name: "duplicates collapse", completed: days("2024-06-12", "2024-06-12", "2024-06-11", "2024-06-11"), want: Result{Current: 2, Longest: 2}},
		{name: "longer history wins", completed: days("2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04", "2024-06-11", "2024-06-12"), want: Result{Current: 2, Longest: 4}},
		{name: "weekly skips unscheduled days", completed: days("2024-06-10", "2024-06-12"), scheduled: weekly(time.Monday, time.Wednesday), want: Result{Current: 2, Longest: 2}},
		{name: "weekly missed monday", completed: days("2024-06-05", "2024-06-12"), scheduled: weekly(time.Monday, time.Wednesday), want: Result{Current: 1, Longest: 1}},
		{name: "future completions ignored for current", completed: days("2024-06-13", "2024-06-14"), want: Result{Current: 0, Longest: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.completed, tt.scheduled, asOf)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got.Longest, got.Current)
		})
	}
}

func TestComputeWeeklyScenario(t *testing.T) {
	// Mon 2024-06-03 and the following Wed 2024-06-05, as of that Wednesday.
	got := Compute(days("2024-06-03", "2024-06-05"), weekly(time.Monday, time.Wednesday), timeutil.MustParseDay("2024-06-05"))
	assert.Equal(t, Result{Current: 2, Longest: 2}, got)
}

func TestComputeLongestAtLeastCurrent(t *testing.T) {
	asOf := timeutil.MustParseDay("2024-06-30")
	sched := weekly(time.Saturday, time.Sunday)
	for n := 0; n < 40; n++ {
		var completed []timeutil.Day
		for i := 0; i < n; i++ {
			if i%3 != 1 {
				completed = append(completed, asOf.AddDays(-i))
			}
		}
		got := Compute(completed, sched, asOf)
		assert.GreaterOrEqual(t, got.Longest, got.Current, "n=%d", n)
	}
}

func TestCompletedDays(t *testing.T) {
	logs := []entity.Completion{
		{ID: "1", OwnerID: "h1", Date: timeutil.MustParseDay("2024-06-02"), Completed: true},
		{ID: "2", OwnerID: "h1", Date: timeutil.MustParseDay("2024-06-01"), Completed: true},
		{ID: "3", OwnerID: "h1", Date: timeutil.MustParseDay("2024-06-02"), Completed: true},
		{ID: "4", OwnerID: "h2", Date: timeutil.MustParseDay("2024-06-03"), Completed: true},
		{ID: "5", OwnerID: "h1", Date: timeutil.MustParseDay("2024-06-04"), Completed: false},
		{ID: "6", OwnerID: "h1", Malformed: true, Completed: true},
	}
	assert.Equal(t, days("2024-06-01", "2024-06-02"), CompletedDays(logs, "h1"))
}
