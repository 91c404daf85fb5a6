package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/apperr"
)

type recorder struct {
	name string
	err  error
	got  []Notification
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

var sample = Notification{Title: "Stand up", Body: "stretch for five minutes", Tag: "r1_2024-06-12_0900"}

func TestDispatcherMethods(t *testing.T) {
	tests := []struct {
		method          Method
		platform, inApp int
	}{
		{MethodBrowser, 1, 0},
		{MethodInApp, 0, 1},
		{MethodBoth, 1, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			p, b := &recorder{name: "p"}, &recorder{name: "b"}
			d := &Dispatcher{Platform: p, InApp: b}
			require.NoError(t, d.Send(context.Background(), sample, tt.method))
			assert.Len(t, p.got, tt.platform)
			assert.Len(t, b.got, tt.inApp)
		})
	}
}

func TestDispatcherTriesEveryChannel(t *testing.T) {
	p := &recorder{name: "p", err: errors.New("dbus down")}
	b := &recorder{name: "b"}
	var bell bytes.Buffer
	d := &Dispatcher{Platform: p, InApp: b, Cue: &Cue{Out: &bell, Sound: SoundBell}}

	err := d.Send(context.Background(), sample, MethodBoth)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbus down")
	assert.Len(t, b.got, 1)
	assert.Equal(t, "\a", bell.String())
}

func TestDispatcherFallsBackToBridge(t *testing.T) {
	p := &recorder{name: "p", err: apperr.NewPermissionError("notify", "desktop", errors.New("denied"))}
	bridge := &recorder{name: "bridge"}
	d := &Dispatcher{Platform: p, Bridge: bridge}

	require.NoError(t, d.Send(context.Background(), sample, MethodBrowser))
	assert.Len(t, bridge.got, 1)
}

func TestDispatcherNoChannels(t *testing.T) {
	var bell bytes.Buffer
	d := &Dispatcher{Cue: &Cue{Out: &bell, Sound: SoundChime}}
	assert.Error(t, d.Send(context.Background(), sample, MethodBoth))
	assert.Empty(t, bell.String())
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{"": MethodBoth, "Browser": MethodBrowser, "in-app": MethodInApp, "both": MethodBoth, "desktop": MethodBrowser} {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMethod("pigeon")
	assert.True(t, apperr.IsType(err, apperr.TypeInvalidInput))
}

func TestParseSound(t *testing.T) {
	got, err := ParseSound("Bell")
	require.NoError(t, err)
	assert.Equal(t, SoundBell, got)
	got, err = ParseSound("")
	require.NoError(t, err)
	assert.Equal(t, SoundNone, got)
	_, err = ParseSound("trumpet")
	assert.Error(t, err)
}

func TestDesktopCommands(t *testing.T) {
	var calls []string
	run := func(_ context.Context, name string, args ...string) error {
		calls = append(calls, name+" "+strings.Join(args, "|"))
		return nil
	}
	urgent := sample
	urgent.Urgent = true

	linux := &Desktop{AppName: "daybook", GOOS: "linux", Run: run}
	require.NoError(t, linux.Notify(context.Background(), urgent))
	mac := &Desktop{AppName: "daybook", GOOS: "darwin", Run: run}
	require.NoError(t, mac.Notify(context.Background(), Notification{Title: `say "hi"`}))
	require.NoError(t, linux.Notify(context.Background(), Notification{Title: "-5 minutes", Body: "--help"}))

	require.Len(t, calls, 3)
	assert.Equal(t, "notify-send --app-name|daybook|--urgency|critical|--|Stand up|stretch for five minutes", calls[0])
	assert.Equal(t, `osascript -e|display notification "" with title "say \"hi\"" subtitle "daybook"`, calls[1])
	assert.Equal(t, "notify-send --app-name|daybook|--|-5 minutes|--help", calls[2])
}

func TestDesktopUnavailable(t *testing.T) {
	d := &Desktop{GOOS: "plan9", Run: func(context.Context, string, ...string) error { return nil }}
	assert.True(t, apperr.IsType(d.Notify(context.Background(), sample), apperr.TypePermission))

	missing := &Desktop{GOOS: "linux", Run: func(context.Context, string, ...string) error {
		return fmt.Errorf("start: %w", exec.ErrNotFound)
	}}
	assert.True(t, apperr.IsType(missing.Notify(context.Background(), sample), apperr.TypePermission))

	failing := &Desktop{GOOS: "linux", Run: func(context.Context, string, ...string) error { return errors.New("exit 1") }}
	err := failing.Notify(context.Background(), sample)
	require.Error(t, err)
	assert.False(t, apperr.IsType(err, apperr.TypePermission))
}

func TestBannerPlainWhenNotTerminal(t *testing.T) {
	var out bytes.Buffer
	b := NewBanner(&out)
	require.NoError(t, b.Notify(context.Background(), sample))
	assert.Equal(t, "🔔 Stand up stretch for five minutes [r1_2024-06-12_0900]\n", out.String())
}

func TestBridge(t *testing.T) {
	var out bytes.Buffer
	b := NewBridge(&out)
	b.Now = func() time.Time { return time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, b.Notify(context.Background(), sample))

	cue := &Cue{Sound: SoundNone, Vibrate: true, Bridge: b}
	cue.Play(context.Background(), sample)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	var msg BridgeMessage
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &msg))
	assert.Equal(t, "notification", msg.Type)
	assert.Equal(t, sample, msg.Notification)
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &msg))
	assert.Equal(t, "vibrate", msg.Type)
}
