package app

import (
	"context"
	"time"

	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/reminder"
	"tableflip.dev/daybook/pkg/timeutil"
)

// ReminderSource exposes the in-memory state to a reminder.Scheduler.
func (s *Service) ReminderSource() reminder.Source {
	return schedulerSource{svc: s}
}

type schedulerSource struct {
	svc *Service
}

func (src schedulerSource) Reminders() []entity.Reminder { return src.svc.Reminders.List() }
func (src schedulerSource) Habits() []entity.Habit       { return src.svc.Habits.List() }
func (src schedulerSource) Tasks() []entity.Task         { return src.svc.Tasks.List() }

func (src schedulerSource) CompletedOn(ownerID string, day timeutil.Day) bool {
	_, ok := src.svc.completionOn(ownerID, day)
	return ok
}

func (src schedulerSource) UpdateReminderTrigger(ctx context.Context, id string, next time.Time) (<-chan error, error) {
	return src.svc.UpdateReminderTrigger(ctx, id, next)
}
