// Package get provides the runner that prints the agenda of a day.
package get

import (
	"context"
	"errors"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/printers"
	"tableflip.dev/daybook/pkg/timeutil"
)

// Get prints everything scheduled on Day.
type Get struct {
	ShowID  bool
	Day     timeutil.Day
	Service *app.Service
	Printer *printers.PrettyPrint
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	pp := n.Printer
	if pp == nil {
		pp = &printers.PrettyPrint{}
	}
	pp.ShowID = n.ShowID
	if pp.Location == nil {
		pp.Location = n.Service.Location()
	}
	day := n.Day
	if day.IsZero() {
		day = n.Service.Today()
	}

	pp.NewLine()
	pp.Agenda(n.Service.Agenda(day))
	return nil
}
