// Package notify delivers reminder notifications through the desktop, an
// in-terminal banner, or a JSON bridge to a host shell.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/logging"
)

// Notification is what gets shown to the user.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	// Tag groups notifications of the same occurrence so a platform can
	// replace rather than stack them.
	Tag                string `json:"tag"`
	RequireInteraction bool   `json:"requireInteraction"`
	Urgent             bool   `json:"urgent,omitempty"`
}

// Channel delivers a notification one way.
type Channel interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Method selects the channels a notification goes through.
type Method string

const (
	MethodBrowser Method = "browser"
	MethodInApp   Method = "in-app"
	MethodBoth    Method = "both"
)

// ParseMethod accepts the configured method names. "desktop" and "platform"
// are accepted for browser.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return MethodBoth, nil
	case "browser", "desktop", "platform", "system":
		return MethodBrowser, nil
	case "in-app", "inapp", "banner":
		return MethodInApp, nil
	}
	return "", apperr.NewInvalidInputError("notifications.method", s, "expected browser, in-app, or both")
}

// Dispatcher routes notifications to channels by method.
type Dispatcher struct {
	// Platform is the native notification channel.
	Platform Channel
	// InApp is the transient banner channel.
	InApp Channel
	// Bridge, when set, takes over platform delivery if the platform
	// channel is unavailable.
	Bridge Channel
	// Cue plays after a successful delivery. May be nil.
	Cue *Cue
}

// Send delivers n through the channels of method. Every selected channel is
// tried; the joined error reports the ones that failed. The cue plays when at
// least one channel delivered.
func (d *Dispatcher) Send(ctx context.Context, n Notification, method Method) error {
	var targets []Channel
	switch method {
	case MethodBrowser:
		targets = []Channel{d.platform()}
	case MethodInApp:
		targets = []Channel{d.InApp}
	default:
		targets = []Channel{d.platform(), d.InApp}
	}

	var errs []error
	delivered := 0
	for _, ch := range targets {
		if ch == nil {
			continue
		}
		err := ch.Notify(ctx, n)
		if err != nil && ch == d.Platform && d.Bridge != nil && apperr.IsType(err, apperr.TypePermission) {
			logging.Debugf("notify: %s unavailable, using %s: %v", ch.Name(), d.Bridge.Name(), err)
			err = d.Bridge.Notify(ctx, n)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("notify: %s: %w", ch.Name(), err))
			continue
		}
		delivered++
	}
	if delivered == 0 && len(errs) == 0 {
		return errors.New("notify: no channel configured")
	}
	if delivered > 0 && d.Cue != nil {
		d.Cue.Play(ctx, n)
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) platform() Channel {
	if d.Platform != nil {
		return d.Platform
	}
	return d.Bridge
}
