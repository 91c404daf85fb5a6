package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/notify"
	"tableflip.dev/daybook/pkg/reminder"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, s)
	assert.Equal(t, "", s.File)
	assert.Equal(t, 6*time.Hour, s.CacheTTL)
	assert.Equal(t, time.Minute, s.Interval)
	assert.Equal(t, DefaultStorePath, s.BasePath())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.yaml")
	writeFile(t, path, `
remote:
  endpoint: https://example.com/exec
  timeout: 10s
cache:
  ttl: 2h
history:
  months: 6
reminders:
  interval: 30s
  tolerance: 45s
  release_held: false
quiet_hours:
  enabled: true
  start: 22
  end: 7
notifications:
  method: in-app
  sound: bell
overrides:
  R1:
    urgent: true
  h2:
    disabled: true
    method: browser
`)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.File)
	assert.Equal(t, "https://example.com/exec", s.Endpoint)
	assert.Equal(t, 10*time.Second, s.RemoteTimeout)
	assert.Equal(t, 2*time.Hour, s.CacheTTL)
	assert.Equal(t, 6, s.HistoryMonths)
	assert.Equal(t, notify.SoundBell, s.NotifySound())
	assert.Equal(t, []string{"h2", "r1"}, s.OverrideIDs())

	cfg := s.ReminderConfig()
	assert.Equal(t, 30*time.Second, cfg.Interval)
	assert.Equal(t, 45*time.Second, cfg.Tolerance)
	assert.False(t, cfg.ReleaseHeld)
	assert.Equal(t, reminder.QuietHours{Enabled: true, Start: 22, End: 7}, cfg.Quiet)
	assert.Equal(t, notify.MethodInApp, cfg.Method)
	assert.Equal(t, reminder.Override{Urgent: true}, cfg.Overrides["r1"])
	assert.Equal(t, reminder.Override{Disabled: true, Method: notify.MethodBrowser}, cfg.Overrides["h2"])
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.yaml")
	writeFile(t, path, "quiet_hours:\n  start: 21\n")
	t.Setenv("DAYBOOK_QUIET_HOURS_START", "23")
	t.Setenv("DAYBOOK_REMOTE_ENDPOINT", "https://env.example.com")

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 23, s.QuietStart)
	assert.Equal(t, "https://env.example.com", s.Endpoint)
}

func TestLoadUsesConfigEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.yaml")
	writeFile(t, path, "store:\n  path: /tmp/somewhere\n")
	t.Setenv(EnvConfig, path)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/somewhere", s.BasePath())
}

func TestValidation(t *testing.T) {
	tests := map[string]string{
		"method":      "notifications:\n  method: pigeon\n",
		"sound":       "notifications:\n  sound: trumpet\n",
		"quiet hours": "quiet_hours:\n  start: 25\n",
		"interval":    "reminders:\n  interval: 0s\n",
		"slow poll":   "reminders:\n  interval: 5m\n",
		"tolerance":   "reminders:\n  interval: 30s\n  tolerance: 2m\n",
		"history":     "history:\n  months: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "daybook.yaml")
			writeFile(t, path, body)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.True(t, apperr.IsType(err, apperr.TypeInvalidInput), "%v", err)
		})
	}

	path := filepath.Join(t.TempDir(), "daybook.yaml")
	writeFile(t, path, "overrides:\n  x:\n    method: smoke\n")
	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestInitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "daybook.toml")

	written, err := Init(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.File)
	s.File = ""
	assert.Equal(t, Default(), s)

	_, err = Init(path, false)
	assert.True(t, apperr.IsType(err, apperr.TypeInvalidInput))
	_, err = Init(path, true)
	assert.NoError(t, err)
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.yaml")
	writeFile(t, path, "quiet_hours:\n  enabled: false\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := Watch(ctx, path)
	require.NoError(t, err)

	writeFile(t, path, "quiet_hours:\n  enabled: true\n  start: 20\n  end: 6\n")

	select {
	case s := <-updates:
		require.NotNil(t, s)
		assert.Equal(t, reminder.QuietHours{Enabled: true, Start: 20, End: 6}, s.Quiet())
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}

	cancel()
	for range updates {
	}
}
