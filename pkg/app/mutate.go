package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/recurrence"
	"tableflip.dev/daybook/pkg/state"
	"tableflip.dev/daybook/pkg/timeutil"
)

// ToggleTask flips the completion of a task on day. One-off tasks flip their
// completed column; recurring tasks record or remove a completion log entry
// for day instead. The returned channel yields the remote outcome; the in
// memory change is already visible when ToggleTask returns.
func (s *Service) ToggleTask(ctx context.Context, id string, day timeutil.Day) (<-chan error, error) {
	if s.Remote == nil {
		return nil, errNoRemote
	}
	task, ok := s.Tasks.Get(id)
	if !ok {
		return nil, apperr.NewNotFoundError("task", id)
	}
	if task.Rule.Recurring() {
		s.ensureLogs(ctx, day)
		return s.toggleCompletion(ctx, id, "task_id", day), nil
	}

	var patch entity.Row
	mutate := func(cur entity.Task, exists bool) (entity.Task, bool) {
		cur.Completed = !cur.Completed
		patch = entity.Row{"completed": cur.Completed}
		return cur, exists
	}
	return s.Tasks.ApplyAndSync(ctx, id, mutate, func(ctx context.Context) error {
		return s.Remote.Update(ctx, entity.KindTasks, id, patch)
	}), nil
}

// CheckInHabit toggles the check-in of a habit on day: an existing completed
// log entry for that day is deleted, otherwise a new one is created.
func (s *Service) CheckInHabit(ctx context.Context, habitID string, day timeutil.Day) (<-chan error, error) {
	if s.Remote == nil {
		return nil, errNoRemote
	}
	if _, ok := s.Habits.Get(habitID); !ok {
		return nil, apperr.NewNotFoundError("habit", habitID)
	}
	s.ensureLogs(ctx, day)
	return s.toggleCompletion(ctx, habitID, "habit_id", day), nil
}

func (s *Service) toggleCompletion(ctx context.Context, ownerID, ownerColumn string, day timeutil.Day) <-chan error {
	if existing, ok := s.completionOn(ownerID, day); ok {
		return s.Logs.ApplyAndSync(ctx, existing.ID, removeCompletion, func(ctx context.Context) error {
			return s.Remote.Delete(ctx, entity.KindHabitLogs, existing.ID)
		})
	}
	op := s.newCompletionOp(ownerID, ownerColumn, day)
	return s.Logs.ApplyAndSync(ctx, op.ID, op.Mutate, op.Remote)
}

// CheckInResult is the outcome of one habit of a batch check-in.
type CheckInResult struct {
	HabitID string
	Err     error
}

// CheckInAll checks in every habit that is due on day and not yet done. Each
// habit is an independent optimistic edit: failures roll back only that
// habit's entry. CheckInAll waits for every remote call to settle.
func (s *Service) CheckInAll(ctx context.Context, day timeutil.Day) ([]CheckInResult, error) {
	if s.Remote == nil {
		return nil, errNoRemote
	}
	s.ensureLogs(ctx, day)
	today := s.Today()
	var ops []state.Op[entity.Completion]
	var ids []string
	for _, h := range s.Habits.List() {
		if h.Malformed || !recurrence.IsDue(recurrence.ForHabit(h), day, today) {
			continue
		}
		if _, done := s.completionOn(h.ID, day); done {
			continue
		}
		ops = append(ops, s.newCompletionOp(h.ID, "habit_id", day))
		ids = append(ids, h.ID)
	}
	errs := s.Logs.ApplyAll(ctx, ops)
	results := make([]CheckInResult, len(ops))
	for i := range ops {
		results[i] = CheckInResult{HabitID: ids[i], Err: errs[i]}
	}
	return results, nil
}

func (s *Service) newCompletionOp(ownerID, ownerColumn string, day timeutil.Day) state.Op[entity.Completion] {
	c := entity.Completion{ID: uuid.NewString(), OwnerID: ownerID, Date: day, Completed: true}
	row := c.Row()
	if ownerColumn != "habit_id" {
		delete(row, "habit_id")
		row[ownerColumn] = ownerID
	}
	return state.Op[entity.Completion]{
		ID: c.ID,
		Mutate: func(entity.Completion, bool) (entity.Completion, bool) {
			return c, true
		},
		Remote: func(ctx context.Context) error {
			_, err := s.Remote.Create(ctx, entity.KindHabitLogs, row)
			return err
		},
	}
}

func removeCompletion(entity.Completion, bool) (entity.Completion, bool) {
	return entity.Completion{}, false
}

// completionOn finds a completed log entry of ownerID on day.
func (s *Service) completionOn(ownerID string, day timeutil.Day) (entity.Completion, bool) {
	for _, c := range s.Logs.List() {
		if c.OwnerID == ownerID && c.Completed && !c.Malformed && c.Date.Equal(day) {
			return c, true
		}
	}
	return entity.Completion{}, false
}

// AddTask creates a task optimistically.
func (s *Service) AddTask(ctx context.Context, t entity.Task) (entity.Task, <-chan error, error) {
	if strings.TrimSpace(t.Title) == "" {
		return t, nil, apperr.NewInvalidInputError("title", t.Title, "a task needs a title")
	}
	t.ID = newID(t.ID)
	if t.Rule.Frequency == "" {
		t.Rule.Frequency = entity.FrequencyNone
	}
	ch, err := create(ctx, s, s.Tasks, entity.KindTasks, t, t.Row())
	return t, ch, err
}

// AddHabit creates a habit optimistically.
func (s *Service) AddHabit(ctx context.Context, h entity.Habit) (entity.Habit, <-chan error, error) {
	if strings.TrimSpace(h.Name) == "" {
		return h, nil, apperr.NewInvalidInputError("name", h.Name, "a habit needs a name")
	}
	h.ID = newID(h.ID)
	if h.Rule.Frequency == "" || h.Rule.Frequency == entity.FrequencyNone {
		h.Rule.Frequency = entity.FrequencyDaily
	}
	ch, err := create(ctx, s, s.Habits, entity.KindHabits, h, h.Row())
	return h, ch, err
}

// AddReminder creates a standalone reminder optimistically.
func (s *Service) AddReminder(ctx context.Context, r entity.Reminder) (entity.Reminder, <-chan error, error) {
	if strings.TrimSpace(r.Title) == "" {
		return r, nil, apperr.NewInvalidInputError("title", r.Title, "a reminder needs a title")
	}
	if r.At.IsZero() {
		return r, nil, apperr.NewInvalidInputError("at", r.At, "a reminder needs a trigger time")
	}
	r.ID = newID(r.ID)
	ch, err := create(ctx, s, s.Reminders, entity.KindReminders, r, r.Row())
	return r, ch, err
}

func create[T any](ctx context.Context, s *Service, coll *state.Collection[T], kind entity.Kind, item T, row entity.Row) (<-chan error, error) {
	if s.Remote == nil {
		return nil, errNoRemote
	}
	id := row.ID()
	mutate := func(T, bool) (T, bool) { return item, true }
	return coll.ApplyAndSync(ctx, id, mutate, func(ctx context.Context) error {
		_, err := s.Remote.Create(ctx, kind, row)
		return err
	}), nil
}

func newID(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return uuid.NewString()
}

// UpdateReminderTrigger moves the trigger of a standalone reminder to next.
// It is the repeat step of the scheduler and is not retried on failure.
func (s *Service) UpdateReminderTrigger(ctx context.Context, id string, next time.Time) (<-chan error, error) {
	if s.Remote == nil {
		return nil, errNoRemote
	}
	if _, ok := s.Reminders.Get(id); !ok {
		return nil, apperr.NewNotFoundError("reminder", id)
	}
	var patch entity.Row
	mutate := func(cur entity.Reminder, exists bool) (entity.Reminder, bool) {
		cur.At = next
		patch = entity.Row{"datetime": next.Format(time.RFC3339)}
		return cur, exists
	}
	return s.Reminders.ApplyAndSync(ctx, id, mutate, func(ctx context.Context) error {
		return s.Remote.Update(ctx, entity.KindReminders, id, patch)
	}), nil
}

// DismissReminder marks a standalone reminder as dismissed so it no longer
// fires.
func (s *Service) DismissReminder(ctx context.Context, id string) (<-chan error, error) {
	if s.Remote == nil {
		return nil, errNoRemote
	}
	if _, ok := s.Reminders.Get(id); !ok {
		return nil, apperr.NewNotFoundError("reminder", id)
	}
	mutate := func(cur entity.Reminder, exists bool) (entity.Reminder, bool) {
		cur.Dismissed = true
		return cur, exists
	}
	return s.Reminders.ApplyAndSync(ctx, id, mutate, func(ctx context.Context) error {
		return s.Remote.Update(ctx, entity.KindReminders, id, entity.Row{"dismissed": true})
	}), nil
}
