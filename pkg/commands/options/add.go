package options

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/timeutil"
)

// AddOptions are the flags shared by the add verbs.
type AddOptions struct {
	Title      string
	Due        string
	Time       string
	Recurrence string
	Days       string
	Until      string
	Urgent     bool

	Body   string
	Repeat string
	Every  int
}

// AddScheduleArgs registers the recurrence flags of tasks and habits.
func AddScheduleArgs(cmd *cobra.Command, o *AddOptions) {
	cmd.Flags().StringVar(&o.Recurrence, "every", "",
		"Recurrence: daily, weekly, or monthly.")
	cmd.Flags().StringVar(&o.Days, "days", "",
		`Weekdays for weekly recurrence, example: --days=mon,wed,fri.`)
	cmd.Flags().StringVar(&o.Until, "until", "",
		"Last day the recurrence is active.")
	cmd.Flags().BoolVarP(&o.Urgent, "urgent", "u", false,
		"Mark as urgent; urgent notifications ignore quiet hours.")
}

// AddDueArgs registers the date and time flags.
func AddDueArgs(cmd *cobra.Command, o *AddOptions, timeHelp string) {
	cmd.Flags().StringVar(&o.Due, "on", "",
		`Specify a date, example: --on="2020-2-28" or --on=tomorrow.`)
	cmd.Flags().StringVar(&o.Time, "at", "", timeHelp)
}

// AddRepeatArgs registers the reminder repeat flags.
func AddRepeatArgs(cmd *cobra.Command, o *AddOptions) {
	cmd.Flags().StringVar(&o.Body, "body", "",
		"Notification body.")
	cmd.Flags().StringVar(&o.Repeat, "repeat", "",
		"Repeat after firing: daily, weekly, monthly, or a number of days.")
	cmd.Flags().BoolVarP(&o.Urgent, "urgent", "u", false,
		"Mark as urgent; urgent notifications ignore quiet hours.")
}

// Rule builds the recurrence rule from the flags.
func (o *AddOptions) Rule(today timeutil.Day) (entity.Rule, error) {
	freq := entity.ParseFrequency(o.Recurrence)
	if o.Recurrence != "" && freq == entity.FrequencyNone && !strings.EqualFold(o.Recurrence, "none") {
		return entity.Rule{}, apperr.NewInvalidInputError("every", o.Recurrence, "expected daily, weekly, or monthly")
	}
	rule := entity.Rule{Frequency: freq}
	if o.Days != "" {
		for _, tok := range strings.Split(o.Days, ",") {
			wd, err := timeutil.ParseWeekday(tok)
			if err != nil {
				return entity.Rule{}, apperr.NewInvalidInputError("days", tok, "expected a weekday such as mon")
			}
			rule.Days = append(rule.Days, wd)
		}
	}
	if o.Until != "" {
		end, err := ParseDay(o.Until, today)
		if err != nil {
			return entity.Rule{}, err
		}
		rule.End = &end
	}
	return rule, nil
}

// DueDate returns the --on day, or nil when unset.
func (o *AddOptions) DueDate(today timeutil.Day) (*timeutil.Day, error) {
	if strings.TrimSpace(o.Due) == "" {
		return nil, nil
	}
	d, err := ParseDay(o.Due, today)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DueTime returns the --at time of day, or nil when unset.
func (o *AddOptions) DueTime() (*timeutil.HourMinute, error) {
	if strings.TrimSpace(o.Time) == "" {
		return nil, nil
	}
	hm, err := timeutil.ParseHourMinute(o.Time)
	if err != nil {
		return nil, apperr.NewInvalidInputError("at", o.Time, "expected HH:MM")
	}
	return &hm, nil
}

// Trigger combines --on and --at into a reminder trigger in loc.
func (o *AddOptions) Trigger(today timeutil.Day, loc *time.Location) (time.Time, error) {
	day, err := ParseDay(o.Due, today)
	if err != nil {
		return time.Time{}, err
	}
	hm, err := o.DueTime()
	if err != nil {
		return time.Time{}, err
	}
	if hm == nil {
		return time.Time{}, apperr.NewInvalidInputError("at", "", "reminders need a time, example: --at=18:30")
	}
	return day.At(*hm, loc), nil
}

// RepeatRule parses --repeat.
func (o *AddOptions) RepeatRule() (entity.RepeatRule, error) {
	s := strings.TrimSpace(o.Repeat)
	if s == "" {
		return entity.RepeatRule{Kind: entity.RepeatNone}, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return entity.RepeatRule{}, apperr.NewInvalidInputError("repeat", s, "interval must be positive")
		}
		return entity.RepeatRule{Kind: entity.RepeatCustom, IntervalDays: n}, nil
	}
	rule := entity.ParseRepeat(s, 0)
	if !rule.Repeats() && !strings.EqualFold(s, "none") {
		return entity.RepeatRule{}, apperr.NewInvalidInputError("repeat", s, "expected daily, weekly, monthly, or a number of days")
	}
	return rule, nil
}
