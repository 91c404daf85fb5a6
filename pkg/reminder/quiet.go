package reminder

import (
	"fmt"
	"time"

	"tableflip.dev/daybook/pkg/apperr"
)

// QuietHours is a local time-of-day window in whole hours during which
// non-urgent notifications are held back. Start > End wraps midnight;
// Start == End is an empty window.
type QuietHours struct {
	Enabled bool
	Start   int
	End     int
}

// Validate checks the hours are in 0-23.
func (q QuietHours) Validate() error {
	for _, h := range []int{q.Start, q.End} {
		if h < 0 || h > 23 {
			return apperr.NewInvalidInputError("quiet_hours", h, "hours must be 0-23")
		}
	}
	return nil
}

// Contains reports whether t falls inside the window, using t's location.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled || q.Start == q.End {
		return false
	}
	h := t.Hour()
	if q.Start < q.End {
		return h >= q.Start && h < q.End
	}
	return h >= q.Start || h < q.End
}

func (q QuietHours) String() string {
	if !q.Enabled {
		return "off"
	}
	return fmt.Sprintf("%02d:00-%02d:00", q.Start, q.End)
}
