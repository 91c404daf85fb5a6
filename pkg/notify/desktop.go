package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"tableflip.dev/daybook/pkg/apperr"
)

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) error

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Desktop shows notifications through the operating system: notify-send on
// Linux and BSD, osascript on macOS.
type Desktop struct {
	AppName string
	GOOS    string
	Run     Runner
}

var _ Channel = (*Desktop)(nil)

// NewDesktop returns a Desktop for the running platform.
func NewDesktop(appName string) *Desktop {
	return &Desktop{AppName: appName, GOOS: runtime.GOOS, Run: ExecRunner}
}

func (d *Desktop) Name() string { return "desktop" }

// Notify reports a permission error when the platform has no supported
// notifier or it is not installed.
func (d *Desktop) Notify(ctx context.Context, n Notification) error {
	name, args, err := d.command(n)
	if err != nil {
		return apperr.NewPermissionError("notify", "desktop", err)
	}
	if err := d.Run(ctx, name, args...); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return apperr.NewPermissionError("notify", "desktop", err)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (d *Desktop) command(n Notification) (string, []string, error) {
	switch d.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		args := []string{"--app-name", d.AppName}
		if n.Urgent || n.RequireInteraction {
			args = append(args, "--urgency", "critical")
		}
		// Titles and bodies are operands even when they start with a dash.
		args = append(args, "--", n.Title)
		if n.Body != "" {
			args = append(args, n.Body)
		}
		return "notify-send", args, nil
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleQuote(n.Body), appleQuote(n.Title))
		if d.AppName != "" {
			script += " subtitle " + appleQuote(d.AppName)
		}
		return "osascript", []string{"-e", script}, nil
	}
	return "", nil, fmt.Errorf("no desktop notifier for %s", d.GOOS)
}

func appleQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
