package notify

import (
	"context"
	"io"
	"strings"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/logging"
)

// Sound names a notification cue.
type Sound string

const (
	SoundNone  Sound = "none"
	SoundChime Sound = "chime"
	SoundBell  Sound = "bell"
)

// ParseSound accepts the configured sound names.
func ParseSound(s string) (Sound, error) {
	switch Sound(strings.ToLower(strings.TrimSpace(s))) {
	case "", SoundNone, "off":
		return SoundNone, nil
	case SoundChime, "default":
		return SoundChime, nil
	case SoundBell:
		return SoundBell, nil
	}
	return "", apperr.NewInvalidInputError("notifications.sound", s, "expected none, chime, or bell")
}

// Cue is the audible signal after a notification. Terminals only know the
// bell character, so a chime rings twice. Vibration is forwarded through the
// bridge when one is configured.
type Cue struct {
	Out     io.Writer
	Sound   Sound
	Vibrate bool
	Bridge  *Bridge
}

// Play emits the cue. Failures are logged only.
func (c *Cue) Play(_ context.Context, n Notification) {
	if c == nil {
		return
	}
	var bells string
	switch c.Sound {
	case SoundBell:
		bells = "\a"
	case SoundChime:
		bells = "\a\a"
	}
	if bells != "" && c.Out != nil {
		if _, err := io.WriteString(c.Out, bells); err != nil {
			logging.Debugf("notify: cue: %v", err)
		}
	}
	if c.Vibrate && c.Bridge != nil {
		if err := c.Bridge.send("vibrate", n); err != nil {
			logging.Debugf("notify: vibrate: %v", err)
		}
	}
}
