package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/timeutil"
)

func day(s string) timeutil.Day { return timeutil.MustParseDay(s) }

func dayPtr(s string) *timeutil.Day {
	d := day(s)
	return &d
}

func TestIsDue(t *testing.T) {
	today := day("2024-06-10") // Monday
	tests := []struct {
		name  string
		sched Schedule
		date  string
		want  bool
	}{
		{name: "none on due date", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyNone}, Ref: dayPtr("2024-06-01")}, date: "2024-06-01", want: true},
		{name: "none day after", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyNone}, Ref: dayPtr("2024-06-01")}, date: "2024-06-02", want: false},
		{name: "none undated is always due", sched: Schedule{}, date: "2030-01-01", want: true},
		{name: "daily", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyDaily}}, date: "1999-12-31", want: true},
		{name: "daily on end", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyDaily, End: dayPtr("2024-06-30")}}, date: "2024-06-30", want: true},
		{name: "daily after end", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyDaily, End: dayPtr("2024-06-30")}}, date: "2024-07-01", want: false},
		{name: "weekly member", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyWeekly, Days: []time.Weekday{time.Monday, time.Wednesday}}}, date: "2024-06-12", want: true},
		{name: "weekly non member", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyWeekly, Days: []time.Weekday{time.Monday, time.Wednesday}}}, date: "2024-06-13", want: false},
		{name: "weekly empty days means every day", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyWeekly}}, date: "2024-06-13", want: true},
		{name: "monthly matches ref day", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyMonthly}, Ref: dayPtr("2024-01-15")}, date: "2024-06-15", want: true},
		{name: "monthly other day", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyMonthly}, Ref: dayPtr("2024-01-15")}, date: "2024-06-16", want: false},
		{name: "monthly without ref uses today", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyMonthly}}, date: "2024-07-10", want: true},
		{name: "monthly after end", sched: Schedule{Rule: entity.Rule{Frequency: entity.FrequencyMonthly, End: dayPtr("2024-06-01")}, Ref: dayPtr("2024-01-15")}, date: "2024-06-15", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDue(tt.sched, day(tt.date), today))
		})
	}
}

func TestIsDueNeverAfterEnd(t *testing.T) {
	end := dayPtr("2024-06-15")
	rules := []entity.Rule{
		{Frequency: entity.FrequencyNone, End: end},
		{Frequency: entity.FrequencyDaily, End: end},
		{Frequency: entity.FrequencyWeekly, End: end},
		{Frequency: entity.FrequencyWeekly, Days: []time.Weekday{time.Sunday}, End: end},
		{Frequency: entity.FrequencyMonthly, End: end},
	}
	today := day("2024-06-01")
	for _, rule := range rules {
		for d := day("2024-06-16"); d.Before(day("2024-09-01")); d = d.AddDays(1) {
			for _, ref := range []*timeutil.Day{nil, dayPtr("2024-06-20"), dayPtr("2024-06-16")} {
				s := Schedule{Rule: rule, Ref: ref}
				assert.False(t, IsDue(s, d, today), "rule %s ref %v date %s", rule.Frequency, ref, d)
			}
		}
	}
}

func TestIsDueIsPure(t *testing.T) {
	s := Schedule{Rule: entity.Rule{Frequency: entity.FrequencyWeekly, Days: []time.Weekday{time.Friday}}}
	today := day("2024-06-10")
	for d := day("2024-06-01"); d.Before(day("2024-07-01")); d = d.AddDays(1) {
		assert.Equal(t, IsDue(s, d, today), IsDue(s, d, today))
	}
}

func TestTaskScenario(t *testing.T) {
	task := entity.Task{ID: "t1", DueDate: dayPtr("2024-06-01"), Rule: entity.Rule{Frequency: entity.FrequencyNone}}
	ev := Evaluator{Clock: timeutil.NewFixedClock(time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC))}
	assert.True(t, ev.IsDue(ForTask(task), day("2024-06-01")))
	assert.False(t, ev.IsDue(ForTask(task), day("2024-06-02")))
	assert.True(t, ev.DueToday(ForTask(task)))
}

func TestOccurrences(t *testing.T) {
	s := Schedule{Rule: entity.Rule{Frequency: entity.FrequencyWeekly, Days: []time.Weekday{time.Monday, time.Wednesday}}}
	got := Occurrences(s, day("2024-06-01"), day("2024-06-10"), day("2024-06-01"))
	assert.Equal(t, []timeutil.Day{day("2024-06-03"), day("2024-06-05"), day("2024-06-10")}, got)

	assert.Nil(t, Occurrences(Schedule{}, day("2024-06-01"), day("2024-06-10"), day("2024-06-01")))
	assert.Nil(t, Occurrences(s, day("2024-06-10"), day("2024-06-01"), day("2024-06-01")))
}

func TestScheduledPredicate(t *testing.T) {
	h := entity.Habit{Rule: entity.Rule{Frequency: entity.FrequencyWeekly, Days: []time.Weekday{time.Tuesday}}}
	pred := Scheduled(ForHabit(h), day("2024-06-10"))
	assert.True(t, pred(day("2024-06-11")))
	assert.False(t, pred(day("2024-06-12")))
}
