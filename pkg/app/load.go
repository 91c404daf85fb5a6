package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/daybook/pkg/cache"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Source says where a read was served from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceCache  Source = "cache"
)

// LoadResult describes one scope read by Load.
type LoadResult struct {
	Kind     entity.Kind
	Scope    string
	Source   Source
	Rows     int
	CachedAt time.Time
	Err      error
}

// Fetch reads one scope. A successful remote read overwrites the cache entry
// of the scope; a failed one falls back to the cache entry when it is still
// within its TTL. Without a usable entry the remote error is returned.
func (s *Service) Fetch(ctx context.Context, kind entity.Kind, month string) ([]entity.Row, LoadResult, error) {
	res := LoadResult{Kind: kind, Scope: month}
	if res.Scope == "" {
		res.Scope = cache.ScopeAll
	}
	if s.Remote == nil {
		res.Err = errNoRemote
		return nil, res, errNoRemote
	}
	key := cache.Key(kind, month)

	rows, err := s.Remote.List(ctx, kind, month)
	if err == nil {
		if s.Cache != nil {
			s.Cache.Put(key, rows)
		}
		res.Source = SourceRemote
		res.Rows = len(rows)
		return rows, res, nil
	}

	if s.Cache != nil {
		if entry, ok := s.Cache.Get(key); ok {
			logging.Warnf("app: %s unavailable, using cache from %s: %v", key, entry.Written().Format(time.Kitchen), err)
			res.Source = SourceCache
			res.Rows = len(entry.Data)
			res.CachedAt = entry.Written()
			return entry.Data, res, nil
		}
	}
	res.Err = err
	return nil, res, err
}

// Load reads every kind the core works with into memory: tasks, habits, and
// reminders in full, and events plus completion logs for the months around
// day. Kinds that cannot be read from either source keep their previous
// content and are reported in the joined error.
func (s *Service) Load(ctx context.Context, day timeutil.Day) ([]LoadResult, error) {
	var results []LoadResult
	var errs []error

	load := func(kind entity.Kind, months []string, apply func([]entity.Row)) {
		var all []entity.Row
		failed := false
		for _, month := range months {
			rows, res, err := s.Fetch(ctx, kind, month)
			results = append(results, res)
			if err != nil {
				errs = append(errs, fmt.Errorf("app: load %s: %w", cache.Key(kind, month), err))
				failed = true
				continue
			}
			all = append(all, rows...)
		}
		if !failed {
			apply(all)
		}
	}

	load(entity.KindTasks, []string{""}, s.applyTasks)
	load(entity.KindHabits, []string{""}, s.applyHabits)
	load(entity.KindReminders, []string{""}, s.applyReminders)
	load(entity.KindEvents, []string{day.MonthToken()}, s.applyEvents)
	months, from := s.historyMonths(day)
	load(entity.KindHabitLogs, months, func(rows []entity.Row) {
		s.applyLogs(rows)
		s.markLogs(from)
	})

	return results, errors.Join(errs...)
}

// Refresh reloads everything around today.
func (s *Service) Refresh(ctx context.Context) ([]LoadResult, error) {
	return s.Load(ctx, s.Today())
}

// Sync reads a pass-through kind (diary, finances, ...) so its cache entry is
// fresh. The rows are returned as read.
func (s *Service) Sync(ctx context.Context, kind entity.Kind, day timeutil.Day) ([]entity.Row, LoadResult, error) {
	month := ""
	if kind.MonthScoped() {
		month = day.MonthToken()
	}
	return s.Fetch(ctx, kind, month)
}

// historyMonths lists the habit_logs scopes read around day: the whole sheet
// when history is zero, otherwise day's month and the ones before it. from is
// the first day covered, zero for the whole sheet.
func (s *Service) historyMonths(day timeutil.Day) (months []string, from timeutil.Day) {
	if s.history <= 0 {
		return []string{""}, timeutil.Day{}
	}
	months = make([]string, 0, s.history)
	first := timeutil.NewDay(day.Year, day.Month, 1)
	for i := 0; i < s.history; i++ {
		from = timeutil.NewDay(first.Year, first.Month-time.Month(i), 1)
		months = append(months, from.MonthToken())
	}
	return months, from
}

func (s *Service) markLogs(from timeutil.Day) {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	s.logsFrom = from
	s.logsFull = from.IsZero()
}

// logsCover reports whether the loaded completion logs include day.
func (s *Service) logsCover(day timeutil.Day) bool {
	s.histMu.Lock()
	defer s.histMu.Unlock()
	return s.logsFull || (!s.logsFrom.IsZero() && !day.Before(s.logsFrom))
}

// FullHistory reads the whole habit_logs sheet when Load only read a window
// of months, so streaks see every completion.
func (s *Service) FullHistory(ctx context.Context) error {
	s.histMu.Lock()
	full := s.logsFull
	s.histMu.Unlock()
	if full {
		return nil
	}
	rows, _, err := s.Fetch(ctx, entity.KindHabitLogs, "")
	if err != nil {
		return fmt.Errorf("app: load full history: %w", err)
	}
	s.applyLogs(rows)
	s.markLogs(timeutil.Day{})
	return nil
}

// ensureLogs widens the loaded logs to the whole sheet when day falls
// before the loaded window. Failing that, the window is used as is.
func (s *Service) ensureLogs(ctx context.Context, day timeutil.Day) {
	if s.logsCover(day) {
		return
	}
	if err := s.FullHistory(ctx); err != nil {
		logging.Warnf("%v", err)
	}
}

func (s *Service) reloader(kind entity.Kind) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		today := s.Today()
		switch kind {
		case entity.KindTasks:
			return s.reload(ctx, kind, []string{""}, s.applyTasks)
		case entity.KindHabits:
			return s.reload(ctx, kind, []string{""}, s.applyHabits)
		case entity.KindReminders:
			return s.reload(ctx, kind, []string{""}, s.applyReminders)
		case entity.KindEvents:
			return s.reload(ctx, kind, []string{today.MonthToken()}, s.applyEvents)
		case entity.KindHabitLogs:
			months, from := s.historyMonths(today)
			return s.reload(ctx, kind, months, func(rows []entity.Row) {
				s.applyLogs(rows)
				s.markLogs(from)
			})
		}
		return nil
	}
}

func (s *Service) reload(ctx context.Context, kind entity.Kind, months []string, apply func([]entity.Row)) error {
	var all []entity.Row
	for _, month := range months {
		rows, err := s.Remote.List(ctx, kind, month)
		if err != nil {
			return err
		}
		if s.Cache != nil {
			s.Cache.Put(cache.Key(kind, month), rows)
		}
		all = append(all, rows...)
	}
	apply(all)
	return nil
}

func (s *Service) applyTasks(rows []entity.Row) {
	items := make([]entity.Task, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.DecodeTask(r, s.loc))
	}
	s.Tasks.Replace(items)
}

func (s *Service) applyHabits(rows []entity.Row) {
	items := make([]entity.Habit, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.DecodeHabit(r, s.loc))
	}
	s.Habits.Replace(items)
}

func (s *Service) applyReminders(rows []entity.Row) {
	items := make([]entity.Reminder, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.DecodeReminder(r, s.loc))
	}
	s.Reminders.Replace(items)
}

func (s *Service) applyEvents(rows []entity.Row) {
	items := make([]entity.PlannerEvent, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.DecodeEvent(r, s.loc))
	}
	s.Events.Replace(items)
}

func (s *Service) applyLogs(rows []entity.Row) {
	items := make([]entity.Completion, 0, len(rows))
	for _, r := range rows {
		items = append(items, entity.DecodeCompletion(r, s.loc))
	}
	s.Logs.Replace(items)
}
