package app

import (
	"sort"
	"strings"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/timeutil"
)

// ReportItem is one habit or recurring task with the days it was completed
// inside the report window.
type ReportItem struct {
	ID    string
	Label string
	Kind  entity.Kind
	Days  []timeutil.Day
}

// ReportResult summarises completions between two days, inclusive.
type ReportResult struct {
	Since timeutil.Day
	Until timeutil.Day
	Items []ReportItem
	// Tasks are one-off tasks marked complete whose due date falls in the
	// window.
	Tasks []entity.Task
	Total int
}

// Report collects completions from the in-memory log between since and until.
// Log entries of unknown owners are reported under their id.
func (s *Service) Report(since, until timeutil.Day) ReportResult {
	if since.After(until) {
		since, until = until, since
	}
	res := ReportResult{Since: since, Until: until}

	grouped := make(map[string]map[timeutil.Day]struct{})
	for _, c := range s.Logs.List() {
		if !c.Completed || c.Malformed || c.Date.Before(since) || c.Date.After(until) {
			continue
		}
		if grouped[c.OwnerID] == nil {
			grouped[c.OwnerID] = make(map[timeutil.Day]struct{})
		}
		grouped[c.OwnerID][c.Date] = struct{}{}
	}

	for owner, set := range grouped {
		item := ReportItem{ID: owner, Label: owner}
		if h, ok := s.Habits.Get(owner); ok {
			item.Label, item.Kind = h.Name, entity.KindHabits
		} else if t, ok := s.Tasks.Get(owner); ok {
			item.Label, item.Kind = t.Title, entity.KindTasks
		}
		for d := range set {
			item.Days = append(item.Days, d)
		}
		sort.Slice(item.Days, func(i, j int) bool { return item.Days[i].Before(item.Days[j]) })
		res.Total += len(item.Days)
		res.Items = append(res.Items, item)
	}
	sort.Slice(res.Items, func(i, j int) bool {
		return strings.ToLower(res.Items[i].Label) < strings.ToLower(res.Items[j].Label)
	})

	for _, t := range s.Tasks.List() {
		if !t.Completed || t.Rule.Recurring() || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(since) || t.DueDate.After(until) {
			continue
		}
		res.Tasks = append(res.Tasks, t)
	}
	sort.SliceStable(res.Tasks, func(i, j int) bool { return res.Tasks[i].DueDate.Before(*res.Tasks[j].DueDate) })
	res.Total += len(res.Tasks)
	return res
}
