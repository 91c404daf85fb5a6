// Package glyph holds the symbols printed in front of agenda rows.
package glyph

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

type Glyph struct {
	Symbol  string
	Meaning string
}

const (
	escape     = "\x1b"
	resetCode  = 0
	strikeCode = 9
)

// Strike renders in struck through, unless color output is off.
func Strike(in string) string {
	if color.NoColor {
		return in
	}
	return fmt.Sprintf("%s[%dm%s%s[%dm", escape, strikeCode, in, escape, resetCode)
}

type Mark int

const (
	Open Mark = iota
	Done
	CarriedOver
	Event
	Reminder
	Urgent
)

func DefaultGlyphs() []Glyph {
	return []Glyph{
		Open:        {Symbol: "·", Meaning: "open"},
		Done:        {Symbol: "✓", Meaning: "done"},
		CarriedOver: {Symbol: "›", Meaning: "overdue, carried over"},
		Event:       {Symbol: "○", Meaning: "event"},
		Reminder:    {Symbol: "◷", Meaning: "reminder"},
		Urgent:      {Symbol: "!", Meaning: "urgent, ignores quiet hours"},
	}
}

func (m Mark) Glyph() Glyph {
	return DefaultGlyphs()[m]
}

func (m Mark) String() string {
	return m.Glyph().Symbol
}

// Legend lists every symbol with its meaning, one per line.
func Legend() string {
	var b strings.Builder
	for _, g := range DefaultGlyphs() {
		fmt.Fprintf(&b, "%s  %s\n", g.Symbol, g.Meaning)
	}
	return b.String()
}
