// Package streak computes current and longest habit streaks from a
// completion log.
package streak

import (
	"sort"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Result holds both streak counts. Longest is never smaller than Current.
type Result struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

// UniqueDays collapses days to a sorted set.
func UniqueDays(days []timeutil.Day) []timeutil.Day {
	seen := make(map[timeutil.Day]bool, len(days))
	out := make([]timeutil.Day, 0, len(days))
	for _, d := range days {
		if d.IsZero() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// CompletedDays extracts the completed days logged for ownerID. Duplicate
// entries for a day count once; malformed entries are ignored.
func CompletedDays(logs []entity.Completion, ownerID string) []timeutil.Day {
	var days []timeutil.Day
	for _, c := range logs {
		if c.OwnerID != ownerID || !c.Completed || c.Malformed {
			continue
		}
		days = append(days, c.Date)
	}
	return UniqueDays(days)
}

// Compute returns the streaks for a set of completion days as of asOf.
//
// Longest is the longest run of consecutive calendar days anywhere in the
// history. Current walks backwards from asOf over the days scheduled says are
// due, skipping the rest, and stops at the first scheduled day that was
// missed. An incomplete asOf does not break the streak because the day may not
// be over yet. A nil scheduled treats every day as scheduled.
func Compute(completed []timeutil.Day, scheduled func(timeutil.Day) bool, asOf timeutil.Day) Result {
	days := UniqueDays(completed)
	if len(days) == 0 {
		return Result{}
	}
	if scheduled == nil {
		scheduled = func(timeutil.Day) bool { return true }
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i-1].AddDays(1).Equal(days[i]) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	set := make(map[timeutil.Day]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	start := asOf
	if !set[asOf] {
		start = asOf.AddDays(-1)
	}
	earliest := days[0]
	current := 0
	for d := start; !d.Before(earliest); d = d.AddDays(-1) {
		if !scheduled(d) {
			continue
		}
		if !set[d] {
			break
		}
		current++
	}

	if current > longest {
		longest = current
	}
	return Result{Current: current, Longest: longest}
}
