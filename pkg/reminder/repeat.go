package reminder

import (
	"time"

	"tableflip.dev/daybook/pkg/entity"
)

// NextTrigger advances at by one period of rule. Monthly repeats use calendar
// months, so the 31st rolls into the next month the way time.AddDate does.
func NextTrigger(at time.Time, rule entity.RepeatRule) (time.Time, bool) {
	switch rule.Kind {
	case entity.RepeatDaily:
		return at.AddDate(0, 0, 1), true
	case entity.RepeatWeekly:
		return at.AddDate(0, 0, 7), true
	case entity.RepeatMonthly:
		return at.AddDate(0, 1, 0), true
	case entity.RepeatCustom:
		if rule.IntervalDays > 0 {
			return at.AddDate(0, 0, rule.IntervalDays), true
		}
	}
	return time.Time{}, false
}
