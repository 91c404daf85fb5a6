package options

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/timeutil"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// OnOptions selects the day a command works on.
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on="2020-2-28", --on="2/28" or --on=yesterday.`)
}

// GetDay resolves --on against today. A short month/day form is taken in
// today's year.
func (o *OnOptions) GetDay(today timeutil.Day) (timeutil.Day, error) {
	return ParseDay(o.OnString, today)
}

// ParseDay reads the date forms accepted by --on.
func ParseDay(s string, today timeutil.Day) (timeutil.Day, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	case "tomorrow":
		return today.AddDays(1), nil
	}
	t, err := time.Parse(layoutISO, s)
	if err != nil {
		t, err = time.Parse(layoutISOShort, s)
		if err != nil {
			return timeutil.Day{}, apperr.NewInvalidInputError("on", s, "expected YYYY-MM-DD, M/D, today, yesterday or tomorrow")
		}
		return timeutil.NewDay(today.Year, t.Month(), t.Day()), nil
	}
	return timeutil.DayOf(t), nil
}
