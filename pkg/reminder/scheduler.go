// Package reminder fires notifications for reminders, habit reminder times,
// and timed tasks when they come due.
//
// The Scheduler polls: every interval (and whenever Wake is called) it scans
// the three families for triggers that fell due within the tolerance window,
// skips occurrences that already fired, holds back non-urgent ones during
// quiet hours, and dispatches the rest.
package reminder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/notify"
	"tableflip.dev/daybook/pkg/recurrence"
	"tableflip.dev/daybook/pkg/timeutil"
)

const (
	// DefaultInterval is the polling period.
	DefaultInterval = time.Minute
	// DefaultTolerance is how late a trigger may be noticed and still fire.
	DefaultTolerance = time.Minute
	// MaxTolerance caps the tolerance window.
	MaxTolerance = time.Minute

	// maxCatchUp bounds how many missed periods a repeating reminder is
	// rolled over in one scan.
	maxCatchUp = 1 << 16
)

// Family is the kind of entity an occurrence comes from. It is also the
// dedup key prefix.
type Family string

const (
	FamilyReminder Family = "reminder"
	FamilyHabit    Family = "habit"
	FamilyTask     Family = "task"
)

// State is the scheduler state.
type State int32

const (
	Idle State = iota
	Scanning
)

func (s State) String() string {
	if s == Scanning {
		return "scanning"
	}
	return "idle"
}

// Source supplies the entities to scan and applies repeat updates.
type Source interface {
	Reminders() []entity.Reminder
	Habits() []entity.Habit
	Tasks() []entity.Task
	// CompletedOn reports whether the habit or recurring task was already
	// completed on day.
	CompletedOn(ownerID string, day timeutil.Day) bool
	// UpdateReminderTrigger stores the next trigger of a repeating reminder.
	UpdateReminderTrigger(ctx context.Context, id string, next time.Time) (<-chan error, error)
}

// Notifier delivers a notification by method.
type Notifier interface {
	Send(ctx context.Context, n notify.Notification, method notify.Method) error
}

// Override adjusts delivery for one entity.
type Override struct {
	Disabled bool
	Urgent   bool
	Method   notify.Method
}

// Config is the hot-reloadable part of the scheduler.
type Config struct {
	Interval  time.Duration
	Tolerance time.Duration
	Quiet     QuietHours
	Method    notify.Method
	Overrides map[string]Override
	// ReleaseHeld fires occurrences held back by quiet hours on the first
	// scan after the window ends. Without it they only fire if they are
	// still within the tolerance window.
	ReleaseHeld bool
}

// override finds the entry for id. Settings files lower-case their keys, so
// a case-insensitive match is accepted as well.
func (c Config) override(id string) (Override, bool) {
	if ov, ok := c.Overrides[id]; ok {
		return ov, true
	}
	ov, ok := c.Overrides[strings.ToLower(id)]
	return ov, ok
}

// Validate rejects a tolerance above MaxTolerance and an interval longer than
// the tolerance. Scans further apart than the tolerance leave gaps in which a
// trigger is never inside any window.
func (c Config) Validate() error {
	c = normalize(c)
	if c.Tolerance > MaxTolerance {
		return apperr.NewInvalidInputError("reminders.tolerance", c.Tolerance.String(),
			fmt.Sprintf("must be at most %s", MaxTolerance))
	}
	if c.Interval > c.Tolerance {
		return apperr.NewInvalidInputError("reminders.interval", c.Interval.String(),
			fmt.Sprintf("must not be longer than the tolerance (%s)", c.Tolerance))
	}
	return nil
}

// DefaultConfig is a 60s poll with a 60s tolerance and no quiet hours.
func DefaultConfig() Config {
	return Config{
		Interval:    DefaultInterval,
		Tolerance:   DefaultTolerance,
		Method:      notify.MethodBoth,
		ReleaseHeld: true,
	}
}

// Occurrence is one trigger of one entity.
type Occurrence struct {
	Family   Family
	EntityID string
	Title    string
	Body     string
	At       time.Time
	Urgent   bool
	Repeat   entity.RepeatRule
}

// Key is the dedup key of the occurrence.
func (o Occurrence) Key() string {
	return Key(string(o.Family), o.EntityID, o.At)
}

// Report summarises one scan.
type Report struct {
	At         time.Time
	Fired      []Occurrence
	Released   []Occurrence
	Duplicate  []Occurrence
	Suppressed []Occurrence
	Disabled   []Occurrence
	Failed     []Occurrence

	// Stale are held occurrences dropped on release because their entity
	// was removed or no longer notifies at that instant.
	Stale []Occurrence
}

// Scheduler is the polling reminder loop.
type Scheduler struct {
	src      Source
	notifier Notifier
	dedup    *Dedup
	clock    timeutil.Clock
	loc      *time.Location

	mu   sync.Mutex
	cfg  Config
	held map[string]Occurrence

	scanMu sync.Mutex
	state  int32
	wake   chan struct{}
	onScan func(Report)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock injects the clock.
func WithClock(c timeutil.Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLocation sets the zone quiet hours and dedup keys are computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithConfig sets the initial configuration.
func WithConfig(cfg Config) Option {
	return func(s *Scheduler) {
		s.cfg = normalize(cfg)
	}
}

// OnScan registers a callback that receives every scan report.
func OnScan(fn func(Report)) Option {
	return func(s *Scheduler) {
		s.onScan = fn
	}
}

// New returns an idle scheduler.
func New(src Source, n Notifier, d *Dedup, opts ...Option) *Scheduler {
	s := &Scheduler{
		src:      src,
		notifier: n,
		dedup:    d,
		clock:    timeutil.SystemClock{},
		loc:      time.Local,
		cfg:      DefaultConfig(),
		held:     make(map[string]Occurrence),
		wake:     make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalize(cfg Config) Config {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.Method == "" {
		cfg.Method = notify.MethodBoth
	}
	return cfg
}

// SetConfig swaps the configuration. It takes effect from the next scan.
func (s *Scheduler) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = normalize(cfg)
}

// Config returns the active configuration.
func (s *Scheduler) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// State reports whether a scan is running.
func (s *Scheduler) State() State {
	return State(atomic.LoadInt32(&s.state))
}

// Held lists occurrences waiting for quiet hours to end.
func (s *Scheduler) Held() []Occurrence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Occurrence, 0, len(s.held))
	for _, o := range s.held {
		out = append(out, o)
	}
	sortOccurrences(out)
	return out
}

// Wake requests an immediate scan from Run, as when the client becomes
// visible again. Requests made while one is pending are merged.
func (s *Scheduler) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run scans once immediately and then on every tick or Wake until ctx ends.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Config().Interval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Scan(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-s.wake:
		}
		if next := s.Config().Interval; next != interval {
			interval = next
			ticker.Reset(interval)
		}
		s.Scan(ctx)
	}
}

// Scan runs one pass. Scans never overlap.
func (s *Scheduler) Scan(ctx context.Context) Report {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	atomic.StoreInt32(&s.state, int32(Scanning))
	defer atomic.StoreInt32(&s.state, int32(Idle))

	cfg := s.Config()
	now := s.clock.Now().In(s.loc)
	rep := Report{At: now}
	quiet := cfg.Quiet.Contains(now)

	if !quiet {
		for _, o := range s.takeHeld() {
			if !cfg.ReleaseHeld || s.dedup.Seen(o.Key()) {
				continue
			}
			cur, ok := s.recheck(o)
			if !ok {
				rep.Stale = append(rep.Stale, o)
				continue
			}
			if ov, _ := cfg.override(cur.EntityID); ov.Disabled {
				rep.Disabled = append(rep.Disabled, cur)
				continue
			}
			if s.fire(ctx, cfg, cur) {
				rep.Released = append(rep.Released, cur)
			} else {
				rep.Failed = append(rep.Failed, cur)
			}
		}
	}

	for _, o := range s.due(ctx, now, cfg.Tolerance) {
		key := o.Key()
		if s.dedup.Seen(key) {
			rep.Duplicate = append(rep.Duplicate, o)
			continue
		}
		ov, _ := cfg.override(o.EntityID)
		if ov.Disabled {
			rep.Disabled = append(rep.Disabled, o)
			continue
		}
		if ov.Urgent {
			o.Urgent = true
		}
		if quiet && !o.Urgent {
			s.hold(key, o)
			rep.Suppressed = append(rep.Suppressed, o)
			continue
		}
		if s.fire(ctx, cfg, o) {
			rep.Fired = append(rep.Fired, o)
		} else {
			rep.Failed = append(rep.Failed, o)
		}
	}

	if s.onScan != nil {
		s.onScan(rep)
	}
	return rep
}

// fire dispatches o, records its marker, and schedules the next repeat. It
// reports whether delivery succeeded. The marker is written either way so a
// broken channel does not retrigger on every tick.
func (s *Scheduler) fire(ctx context.Context, cfg Config, o Occurrence) bool {
	method := cfg.Method
	if ov, ok := cfg.override(o.EntityID); ok && ov.Method != "" {
		method = ov.Method
	}
	n := notify.Notification{
		Title:              o.Title,
		Body:               o.Body,
		Tag:                o.Key(),
		RequireInteraction: o.Urgent,
		Urgent:             o.Urgent,
	}
	err := s.notifier.Send(ctx, n, method)
	if err != nil {
		logging.Warnf("reminder: %s %s: %v", o.Family, o.EntityID, err)
	}
	s.dedup.Mark(o.Key())

	if o.Family == FamilyReminder && o.Repeat.Repeats() {
		s.advance(ctx, o)
	}
	return err == nil
}

// advance stores the next trigger of a repeating reminder that just fired.
func (s *Scheduler) advance(ctx context.Context, o Occurrence) {
	next, ok := NextTrigger(o.At, o.Repeat)
	if !ok {
		return
	}
	s.storeTrigger(ctx, o.EntityID, next)
}

// storeTrigger updates a reminder's trigger without waiting for or retrying
// the remote update.
func (s *Scheduler) storeTrigger(ctx context.Context, id string, next time.Time) {
	ch, err := s.src.UpdateReminderTrigger(ctx, id, next)
	if err != nil {
		logging.Warnf("reminder: repeat %s: %v", id, err)
		return
	}
	go func() {
		if err := <-ch; err != nil {
			logging.Warnf("reminder: repeat %s to %s: %v", id, next.Format(time.RFC3339), err)
		}
	}()
}

// catchUp rolls a repeating reminder whose trigger was missed forward to its
// first instant after now-tolerance. An instant that is not due yet is stored
// right away. A due one is stored by fire once it has been delivered.
func (s *Scheduler) catchUp(ctx context.Context, o Occurrence, now time.Time, tolerance time.Duration) time.Time {
	cutoff := now.Add(-tolerance)
	next := o.At
	for i := 0; !next.After(cutoff); i++ {
		n, ok := NextTrigger(next, o.Repeat)
		if !ok || i == maxCatchUp {
			return o.At
		}
		next = n
	}
	if next.After(now) {
		logging.Debugf("reminder: %s missed %s, next %s", o.EntityID,
			o.At.Format(time.RFC3339), next.Format(time.RFC3339))
		s.storeTrigger(ctx, o.EntityID, next)
	}
	return next
}

func (s *Scheduler) hold(key string, o Occurrence) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held[key] = o
}

func (s *Scheduler) takeHeld() []Occurrence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Occurrence, 0, len(s.held))
	for _, o := range s.held {
		out = append(out, o)
	}
	s.held = make(map[string]Occurrence)
	sortOccurrences(out)
	return out
}

func (s *Scheduler) heldFor(f Family, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.held {
		if o.Family == f && o.EntityID == id {
			return true
		}
	}
	return false
}

// due lists occurrences whose trigger t satisfies 0 <= now-t < tolerance.
// Repeating reminders left behind by a missed trigger are rolled forward
// first, unless quiet hours are holding one of their occurrences.
func (s *Scheduler) due(ctx context.Context, now time.Time, tolerance time.Duration) []Occurrence {
	inWindow := func(at time.Time) bool {
		d := now.Sub(at)
		return d >= 0 && d < tolerance
	}
	var out []Occurrence

	for _, r := range s.src.Reminders() {
		o, ok := s.reminderOccurrence(r)
		if !ok {
			continue
		}
		if o.Repeat.Repeats() && now.Sub(o.At) >= tolerance && !s.heldFor(FamilyReminder, o.EntityID) {
			o.At = s.catchUp(ctx, o, now, tolerance)
		}
		if inWindow(o.At) {
			out = append(out, o)
		}
	}

	// A window that straddles midnight looks at yesterday as well.
	days := []timeutil.Day{timeutil.DayOf(now)}
	if earlier := timeutil.DayOf(now.Add(-tolerance)); !earlier.Equal(days[0]) {
		days = append(days, earlier)
	}

	for _, day := range days {
		for _, h := range s.src.Habits() {
			if o, ok := s.habitOccurrence(h, day); ok && inWindow(o.At) {
				out = append(out, o)
			}
		}
		for _, t := range s.src.Tasks() {
			if o, ok := s.taskOccurrence(t, day); ok && inWindow(o.At) {
				out = append(out, o)
			}
		}
	}
	sortOccurrences(out)
	return out
}

// recheck looks a held occurrence up in the source again. It reports false
// when the entity is gone or would no longer notify for that instant.
func (s *Scheduler) recheck(o Occurrence) (Occurrence, bool) {
	day := timeutil.DayOf(o.At)
	switch o.Family {
	case FamilyReminder:
		for _, r := range s.src.Reminders() {
			if r.ID != o.EntityID {
				continue
			}
			cur, ok := s.reminderOccurrence(r)
			if !ok || cur.At.After(o.At) {
				return o, false
			}
			cur.At = o.At
			return cur, true
		}
	case FamilyHabit:
		for _, h := range s.src.Habits() {
			if h.ID == o.EntityID {
				cur, ok := s.habitOccurrence(h, day)
				return cur, ok && cur.At.Equal(o.At)
			}
		}
	case FamilyTask:
		for _, t := range s.src.Tasks() {
			if t.ID == o.EntityID {
				cur, ok := s.taskOccurrence(t, day)
				return cur, ok && cur.At.Equal(o.At)
			}
		}
	}
	return o, false
}

func (s *Scheduler) reminderOccurrence(r entity.Reminder) (Occurrence, bool) {
	if !r.HasTrigger() || r.Dismissed {
		return Occurrence{}, false
	}
	return Occurrence{
		Family: FamilyReminder, EntityID: r.ID, Title: r.Title, Body: r.Body,
		At: r.At.In(s.loc), Urgent: r.Urgent, Repeat: r.Repeat,
	}, true
}

// habitOccurrence is the habit's reminder on day, if it is scheduled and not
// checked in yet.
func (s *Scheduler) habitOccurrence(h entity.Habit, day timeutil.Day) (Occurrence, bool) {
	if h.Malformed || h.ReminderTime == nil {
		return Occurrence{}, false
	}
	if !recurrence.IsDue(recurrence.ForHabit(h), day, day) || s.src.CompletedOn(h.ID, day) {
		return Occurrence{}, false
	}
	return Occurrence{
		Family: FamilyHabit, EntityID: h.ID, Title: h.Name, Body: "Time to check in",
		At: day.At(*h.ReminderTime, s.loc), Urgent: h.Urgent,
	}, true
}

// taskOccurrence is the task's due time on day, if it is due and still open.
func (s *Scheduler) taskOccurrence(t entity.Task, day timeutil.Day) (Occurrence, bool) {
	if t.Malformed || t.DueDate == nil || t.DueTime == nil {
		return Occurrence{}, false
	}
	if !recurrence.IsDue(recurrence.ForTask(t), day, day) {
		return Occurrence{}, false
	}
	if t.Rule.Recurring() {
		if s.src.CompletedOn(t.ID, day) {
			return Occurrence{}, false
		}
	} else if t.Completed {
		return Occurrence{}, false
	}
	return Occurrence{
		Family: FamilyTask, EntityID: t.ID, Title: t.Title, Body: "Task due now",
		At: day.At(*t.DueTime, s.loc), Urgent: t.Urgent,
	}, true
}

func sortOccurrences(out []Occurrence) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].At.Equal(out[j].At) {
			return out[i].At.Before(out[j].At)
		}
		return out[i].Key() < out[j].Key()
	})
}
