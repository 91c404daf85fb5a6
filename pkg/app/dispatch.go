package app

import (
	"context"
	"sort"
	"strings"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Action names understood by the Dispatcher.
const (
	ActionAgenda          = "agenda"
	ActionToggleTask      = "toggle_task"
	ActionCheckIn         = "check_in"
	ActionCheckInAll      = "check_in_all"
	ActionStreaks         = "streaks"
	ActionRefresh         = "refresh"
	ActionReport          = "report"
	ActionDismissReminder = "dismiss_reminder"
)

// Params carries the string arguments of an action: "id", "date", "since",
// "until". Dates are YYYY-MM-DD and default to today.
type Params map[string]string

// Handler runs one action.
type Handler func(ctx context.Context, p Params) (interface{}, error)

// Dispatcher maps action identifiers to handlers so any front end (CLI
// verbs, MCP tools, key bindings) triggers the same operations.
type Dispatcher struct {
	handlers map[string]Handler
}

// NewDispatcher registers the built-in actions of svc.
func NewDispatcher(svc *Service) *Dispatcher {
	d := &Dispatcher{handlers: make(map[string]Handler)}

	d.Register(ActionAgenda, func(ctx context.Context, p Params) (interface{}, error) {
		day, err := p.day(svc, "date")
		if err != nil {
			return nil, err
		}
		return svc.Agenda(day), nil
	})
	d.Register(ActionToggleTask, func(ctx context.Context, p Params) (interface{}, error) {
		id, day, err := p.idAndDay(svc)
		if err != nil {
			return nil, err
		}
		ch, err := svc.ToggleTask(ctx, id, day)
		if err != nil {
			return nil, err
		}
		if err := <-ch; err != nil {
			return nil, err
		}
		task, _ := svc.Tasks.Get(id)
		return TaskItem{Task: task, Done: svc.taskDone(task, day)}, nil
	})
	d.Register(ActionCheckIn, func(ctx context.Context, p Params) (interface{}, error) {
		id, day, err := p.idAndDay(svc)
		if err != nil {
			return nil, err
		}
		ch, err := svc.CheckInHabit(ctx, id, day)
		if err != nil {
			return nil, err
		}
		if err := <-ch; err != nil {
			return nil, err
		}
		h, _ := svc.Habits.Get(id)
		_, done := svc.completionOn(id, day)
		return HabitItem{Habit: h, Done: done, Streak: svc.streakOf(h, day)}, nil
	})
	d.Register(ActionCheckInAll, func(ctx context.Context, p Params) (interface{}, error) {
		day, err := p.day(svc, "date")
		if err != nil {
			return nil, err
		}
		return svc.CheckInAll(ctx, day)
	})
	d.Register(ActionStreaks, func(ctx context.Context, p Params) (interface{}, error) {
		day, err := p.day(svc, "date")
		if err != nil {
			return nil, err
		}
		if err := svc.FullHistory(ctx); err != nil {
			logging.Warnf("%v; streaks use the loaded months only", err)
		}
		if id := strings.TrimSpace(p["id"]); id != "" {
			res, err := svc.Streak(id, day)
			if err != nil {
				return nil, err
			}
			h, _ := svc.Habits.Get(id)
			return []HabitStreak{{Habit: h, Streak: res}}, nil
		}
		return svc.Streaks(day), nil
	})
	d.Register(ActionRefresh, func(ctx context.Context, p Params) (interface{}, error) {
		return svc.Refresh(ctx)
	})
	d.Register(ActionReport, func(ctx context.Context, p Params) (interface{}, error) {
		until, err := p.day(svc, "until")
		if err != nil {
			return nil, err
		}
		since := until.AddDays(-6)
		if _, ok := p["since"]; ok {
			if since, err = p.day(svc, "since"); err != nil {
				return nil, err
			}
		}
		return svc.Report(since, until), nil
	})
	d.Register(ActionDismissReminder, func(ctx context.Context, p Params) (interface{}, error) {
		id := strings.TrimSpace(p["id"])
		if id == "" {
			return nil, apperr.NewInvalidInputError("id", id, "required")
		}
		ch, err := svc.DismissReminder(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := <-ch; err != nil {
			return nil, err
		}
		r, _ := svc.Reminders.Get(id)
		return r, nil
	})
	return d
}

// Register adds or replaces the handler of an action.
func (d *Dispatcher) Register(action string, h Handler) {
	d.handlers[action] = h
}

// Dispatch runs the handler registered for action.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, p Params) (interface{}, error) {
	h, ok := d.handlers[action]
	if !ok {
		return nil, apperr.NewInvalidInputError("action", action, "unknown action")
	}
	if p == nil {
		p = Params{}
	}
	return h(ctx, p)
}

// Actions lists the registered action names.
func (d *Dispatcher) Actions() []string {
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p Params) day(svc *Service, key string) (timeutil.Day, error) {
	raw := strings.TrimSpace(p[key])
	if raw == "" {
		return svc.Today(), nil
	}
	day, err := timeutil.ParseDay(raw, svc.Location())
	if err != nil {
		return timeutil.Day{}, apperr.NewInvalidInputError(key, raw, "expected YYYY-MM-DD")
	}
	return day, nil
}

func (p Params) idAndDay(svc *Service) (string, timeutil.Day, error) {
	id := strings.TrimSpace(p["id"])
	if id == "" {
		return "", timeutil.Day{}, apperr.NewInvalidInputError("id", id, "required")
	}
	day, err := p.day(svc, "date")
	return id, day, err
}
