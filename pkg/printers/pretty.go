package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/glyph"
	"tableflip.dev/daybook/pkg/reminder"
	"tableflip.dev/daybook/pkg/timeutil"
)

type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
	// Location is used to print reminder triggers. Defaults to time.Local.
	Location *time.Location
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) loc() *time.Location {
	if pp.Location == nil {
		return time.Local
	}
	return pp.Location
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(pp.out(), " entry")
	default:
		_, _ = c.Fprintln(pp.out(), " entries")
	}
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

func (pp *PrettyPrint) table() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = " "
	return tbl
}

func (pp *PrettyPrint) flush(tbl *uitable.Table) {
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

func (pp *PrettyPrint) row(tbl *uitable.Table, id string, cells ...interface{}) {
	if pp.ShowID {
		y := color.New(color.FgHiYellow, color.Italic, color.Faint)
		cells = append([]interface{}{y.Sprint(id)}, cells...)
	}
	tbl.AddRow(cells...)
}

func mark(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint(glyph.Done)
	}
	return glyph.Open.String()
}

func urgent(title string, isUrgent bool) string {
	if isUrgent {
		return color.New(color.FgRed, color.Bold).Sprint(glyph.Urgent.String() + " " + title)
	}
	return title
}

func clock(hm *timeutil.HourMinute) string {
	if hm == nil {
		return "     "
	}
	return hm.String()
}

// Agenda prints one day: tasks, overdue tasks, habits, events, reminders.
func (pp *PrettyPrint) Agenda(a app.Agenda) {
	pp.Title(a.Day.String() + " " + a.Day.Weekday().String())
	pp.NewLine()

	pp.Tasks(a.Tasks)

	if len(a.Overdue) > 0 {
		pp.TitleWithCount("Overdue", len(a.Overdue))
		tbl := pp.table()
		r := color.New(color.FgRed)
		for _, t := range a.Overdue {
			pp.row(tbl, t.ID, glyph.CarriedOver.String(), r.Sprint(t.DueDate.String()), urgent(t.Title, t.Urgent))
		}
		pp.flush(tbl)
	}

	pp.Habits(a.Habits)

	pp.TitleWithCount("Events", len(a.Events))
	if len(a.Events) == 0 {
		pp.none()
	} else {
		tbl := pp.table()
		for _, e := range a.Events {
			pp.row(tbl, e.ID, glyph.Event.String(), clock(e.Time), e.Title, rule(e.Rule))
		}
		pp.flush(tbl)
	}

	if len(a.Reminders) > 0 {
		pp.Reminders(a.Reminders)
	}
}

// Tasks lists tasks with their state on one day.
func (pp *PrettyPrint) Tasks(items []app.TaskItem) {
	pp.TitleWithCount("Tasks", len(items))
	if len(items) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, t := range items {
		title := urgent(t.Task.Title, t.Task.Urgent)
		if t.Done {
			title = glyph.Strike(title)
		}
		pp.row(tbl, t.Task.ID, mark(t.Done), clock(t.Task.DueTime), title, rule(t.Task.Rule))
	}
	pp.flush(tbl)
}

// Habits lists habits with their check-in state and current streak.
func (pp *PrettyPrint) Habits(items []app.HabitItem) {
	pp.TitleWithCount("Habits", len(items))
	if len(items) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, h := range items {
		pp.row(tbl, h.Habit.ID, mark(h.Done), h.Habit.Name, streakCell(h.Streak.Current))
	}
	pp.flush(tbl)
}

// Reminders lists reminders with their trigger and repeat.
func (pp *PrettyPrint) Reminders(rs []entity.Reminder) {
	pp.TitleWithCount("Reminders", len(rs))
	if len(rs) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, r := range rs {
		repeat := ""
		if r.Repeat.Repeats() {
			repeat = color.New(color.Faint).Sprintf("(%s)", r.Repeat)
		}
		pp.row(tbl, r.ID, glyph.Reminder.String(), r.At.In(pp.loc()).Format("2006-01-02 15:04"), urgent(r.Title, r.Urgent), repeat)
	}
	pp.flush(tbl)
}

func rule(r entity.Rule) string {
	if !r.Recurring() {
		return ""
	}
	s := string(r.Frequency)
	if len(r.Days) > 0 {
		days := make([]string, 0, len(r.Days))
		for _, d := range r.Days {
			days = append(days, d.String()[:3])
		}
		s += " " + strings.Join(days, ",")
	}
	return color.New(color.Faint).Sprintf("(%s)", s)
}

func streakCell(n int) string {
	if n == 0 {
		return ""
	}
	return color.New(color.FgYellow).Sprintf("%d day streak", n)
}

// Streaks prints current and longest streak per habit.
func (pp *PrettyPrint) Streaks(items []app.HabitStreak) {
	pp.TitleWithCount("Streaks", len(items))
	if len(items) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	b := color.New(color.Bold)
	header := []interface{}{b.Sprint("HABIT"), b.Sprint("CURRENT"), b.Sprint("LONGEST")}
	if pp.ShowID {
		header = append([]interface{}{b.Sprint("ID")}, header...)
	}
	tbl.AddRow(header...)
	for _, it := range items {
		pp.row(tbl, it.Habit.ID, it.Habit.Name, it.Streak.Current, it.Streak.Longest)
	}
	pp.flush(tbl)
}

// CheckIns prints the outcome of a batch check-in.
func (pp *PrettyPrint) CheckIns(results []app.CheckInResult, names map[string]string) {
	pp.TitleWithCount("Checked in", len(results))
	if len(results) == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	r := color.New(color.FgRed)
	for _, res := range results {
		name := names[res.HabitID]
		if name == "" {
			name = res.HabitID
		}
		if res.Err != nil {
			pp.row(tbl, res.HabitID, r.Sprint("✗"), name, r.Sprint(res.Err.Error()))
			continue
		}
		pp.row(tbl, res.HabitID, mark(true), name)
	}
	pp.flush(tbl)
}

// Loads prints where each scope was read from.
func (pp *PrettyPrint) Loads(results []app.LoadResult) {
	tbl := pp.table()
	f := color.New(color.Faint)
	w := color.New(color.FgYellow)
	r := color.New(color.FgRed)
	for _, res := range results {
		scope := string(res.Kind) + "/" + res.Scope
		switch {
		case res.Err != nil:
			tbl.AddRow(scope, r.Sprint("failed"), r.Sprint(res.Err.Error()))
		case res.Source == app.SourceCache:
			tbl.AddRow(scope, w.Sprint("cache"), f.Sprintf("%d rows from %s", res.Rows, res.CachedAt.In(pp.loc()).Format(time.Kitchen)))
		default:
			tbl.AddRow(scope, "remote", f.Sprintf("%d rows", res.Rows))
		}
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Report prints completions per habit or recurring task.
func (pp *PrettyPrint) Report(res app.ReportResult) {
	pp.Title(fmt.Sprintf("%s to %s", res.Since, res.Until))
	pp.NewLine()
	if res.Total == 0 {
		pp.none()
		return
	}
	tbl := pp.table()
	for _, it := range res.Items {
		days := make([]string, 0, len(it.Days))
		for _, d := range it.Days {
			days = append(days, d.String()[5:])
		}
		pp.row(tbl, it.ID, it.Label, len(it.Days), color.New(color.Faint).Sprint(strings.Join(days, " ")))
	}
	for _, t := range res.Tasks {
		pp.row(tbl, t.ID, t.Title, mark(true), color.New(color.Faint).Sprint(t.DueDate.String()[5:]))
	}
	pp.flush(tbl)
	_, _ = color.New(color.Faint).Fprintf(pp.out(), "%d completions\n", res.Total)
}

// Scan prints one reminder scan when anything happened.
func (pp *PrettyPrint) Scan(rep reminder.Report) {
	if len(rep.Fired)+len(rep.Released)+len(rep.Suppressed)+len(rep.Stale)+len(rep.Failed) == 0 {
		return
	}
	f := color.New(color.Faint)
	ts := rep.At.In(pp.loc()).Format("15:04:05")
	for _, o := range rep.Fired {
		_, _ = fmt.Fprintf(pp.out(), "%s fired    %s %s\n", f.Sprint(ts), o.Family, o.Title)
	}
	for _, o := range rep.Released {
		_, _ = fmt.Fprintf(pp.out(), "%s released %s %s\n", f.Sprint(ts), o.Family, o.Title)
	}
	for _, o := range rep.Suppressed {
		_, _ = fmt.Fprintf(pp.out(), "%s held     %s %s\n", f.Sprint(ts), o.Family, o.Title)
	}
	for _, o := range rep.Stale {
		_, _ = fmt.Fprintf(pp.out(), "%s dropped  %s %s\n", f.Sprint(ts), o.Family, o.Title)
	}
	for _, o := range rep.Failed {
		_, _ = color.New(color.FgRed).Fprintf(pp.out(), "%s failed   %s %s\n", ts, o.Family, o.Title)
	}
}
