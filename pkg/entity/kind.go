// Package entity defines the typed records the client keeps in memory: one
// struct per row kind held by the remote store, plus the recurrence and repeat
// rules attached to them.
package entity

import (
	"fmt"
	"strings"
)

// Kind names a sheet in the remote store.
type Kind string

const (
	KindTasks     Kind = "tasks"
	KindHabits    Kind = "habits"
	KindHabitLogs Kind = "habit_logs"
	KindEvents    Kind = "events"
	KindReminders Kind = "reminders"
	KindDiary     Kind = "diary"
	KindFinances  Kind = "finances"
)

// Kinds lists every kind in refresh order.
func Kinds() []Kind {
	return []Kind{KindTasks, KindHabits, KindHabitLogs, KindEvents, KindReminders, KindDiary, KindFinances}
}

// MonthScoped reports whether reads of k are parameterised by a month token.
func (k Kind) MonthScoped() bool {
	switch k {
	case KindHabitLogs, KindEvents, KindDiary, KindFinances:
		return true
	default:
		return false
	}
}

// ParseKind accepts a kind name in any case, with or without a trailing "s".
func ParseKind(s string) (Kind, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if t == string(k) || t+"s" == string(k) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Entity is anything addressable by a store identifier.
type Entity interface {
	EntityID() string
}
