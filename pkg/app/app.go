// Package app is the client core shared by the CLI, the reminder daemon, and
// the MCP tools. It loads entities from the remote store with a cache
// fallback, keeps them in optimistic in-memory collections, and exposes the
// user-facing operations over them.
package app

import (
	"errors"
	"sync"
	"time"

	"tableflip.dev/daybook/pkg/cache"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/remote"
	"tableflip.dev/daybook/pkg/state"
	"tableflip.dev/daybook/pkg/timeutil"
)

// DefaultHistoryMonths is how many months of completion logs Load reads.
// Zero reads the whole habit_logs sheet.
const DefaultHistoryMonths = 0

var errNoRemote = errors.New("app: no remote store configured")

// Service provides high-level operations over tasks, habits, events, and
// reminders.
type Service struct {
	Remote remote.Store
	Cache  *cache.Cache

	clock   timeutil.Clock
	loc     *time.Location
	history int

	// histMu guards logsFrom, the first day the loaded completion logs
	// cover, and logsFull, set when they are the whole sheet.
	histMu   sync.Mutex
	logsFrom timeutil.Day
	logsFull bool

	Tasks     *state.Collection[entity.Task]
	Habits    *state.Collection[entity.Habit]
	Logs      *state.Collection[entity.Completion]
	Events    *state.Collection[entity.PlannerEvent]
	Reminders *state.Collection[entity.Reminder]
}

type options struct {
	clock        timeutil.Clock
	loc          *time.Location
	history      int
	refresh      bool
	stateOptions []state.Option
}

// Option configures a Service.
type Option func(*options)

// WithClock injects the clock used for "today".
func WithClock(c timeutil.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithLocation sets the zone dates and times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithHistoryMonths sets how many months of completion logs are loaded,
// counting back from the day given to Load. Zero loads all of them.
func WithHistoryMonths(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.history = n
		}
	}
}

// WithBackgroundRefresh reloads a kind from the remote store after each
// confirmed edit of it.
func WithBackgroundRefresh() Option {
	return func(o *options) {
		o.refresh = true
	}
}

// WithStateOptions passes options to every collection.
func WithStateOptions(opts ...state.Option) Option {
	return func(o *options) {
		o.stateOptions = append(o.stateOptions, opts...)
	}
}

// New returns a Service reading from rs and falling back to c. c may be nil.
func New(rs remote.Store, c *cache.Cache, opts ...Option) *Service {
	o := options{clock: timeutil.SystemClock{}, loc: time.Local, history: DefaultHistoryMonths}
	for _, opt := range opts {
		opt(&o)
	}
	s := &Service{
		Remote:  rs,
		Cache:   c,
		clock:   o.clock,
		loc:     o.loc,
		history: o.history,
	}
	collOpts := func(kind entity.Kind) []state.Option {
		out := append([]state.Option(nil), o.stateOptions...)
		if o.refresh {
			out = append(out, state.WithRefresh(s.reloader(kind)))
		}
		return out
	}
	s.Tasks = state.New(entity.KindTasks, entity.Task.EntityID, collOpts(entity.KindTasks)...)
	s.Habits = state.New(entity.KindHabits, entity.Habit.EntityID, collOpts(entity.KindHabits)...)
	s.Logs = state.New(entity.KindHabitLogs, entity.Completion.EntityID, collOpts(entity.KindHabitLogs)...)
	s.Events = state.New(entity.KindEvents, entity.PlannerEvent.EntityID, collOpts(entity.KindEvents)...)
	s.Reminders = state.New(entity.KindReminders, entity.Reminder.EntityID, collOpts(entity.KindReminders)...)
	return s
}

// Clock returns the clock the service reads "now" from.
func (s *Service) Clock() timeutil.Clock {
	return s.clock
}

// Location returns the zone of the service.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Today is the current calendar day in the service's zone.
func (s *Service) Today() timeutil.Day {
	return timeutil.DayOf(s.clock.Now().In(s.loc))
}

// Wait blocks until every in-flight remote call has settled.
func (s *Service) Wait() {
	s.Tasks.Wait()
	s.Habits.Wait()
	s.Logs.Wait()
	s.Events.Wait()
	s.Reminders.Wait()
}
