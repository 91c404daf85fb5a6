// Package settings loads the daybook configuration with viper. Values come
// from defaults, then the settings file, then DAYBOOK_* environment
// variables.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/cache"
	"tableflip.dev/daybook/pkg/notify"
	"tableflip.dev/daybook/pkg/reminder"
	"tableflip.dev/daybook/pkg/remote"
)

const (
	// EnvConfig overrides the settings file location.
	EnvConfig = "DAYBOOK_CONFIG"
	envPrefix = "DAYBOOK"

	configName = ".daybook"
	// DefaultFile is where Init writes when no path is given.
	DefaultFile = "~/.daybook.toml"
	// DefaultStorePath is the diskv directory for cache entries and dedup
	// markers.
	DefaultStorePath = "~/.daybook.db"
)

// Override is the per-entity notification setting.
type Override struct {
	Method   string `toml:"method,omitempty"`
	Disabled bool   `toml:"disabled,omitempty"`
	Urgent   bool   `toml:"urgent,omitempty"`
}

// Settings is the resolved configuration record.
type Settings struct {
	Endpoint      string
	RemoteTimeout time.Duration
	StorePath     string
	CacheTTL      time.Duration
	// HistoryMonths is how many months of habit logs are read, counting back
	// from the day in view. Zero reads the whole sheet.
	HistoryMonths int

	Interval    time.Duration
	Tolerance   time.Duration
	ReleaseHeld bool

	QuietEnabled bool
	QuietStart   int
	QuietEnd     int

	Method  string
	Sound   string
	Vibrate bool
	// Bridge is a file path for host bridge messages, "-" for stdout, or
	// empty for none.
	Bridge string

	Overrides map[string]Override

	// File is the settings file that was read, if any.
	File string
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		RemoteTimeout: remote.DefaultTimeout,
		StorePath:     DefaultStorePath,
		CacheTTL:      cache.DefaultTTL,
		Interval:      reminder.DefaultInterval,
		Tolerance:     reminder.DefaultTolerance,
		ReleaseHeld:   true,
		QuietStart:    22,
		QuietEnd:      8,
		Method:        string(notify.MethodBoth),
		Sound:         string(notify.SoundNone),
		Overrides:     map[string]Override{},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("remote.endpoint", d.Endpoint)
	v.SetDefault("remote.timeout", d.RemoteTimeout)
	v.SetDefault("store.path", d.StorePath)
	v.SetDefault("cache.ttl", d.CacheTTL)
	v.SetDefault("history.months", d.HistoryMonths)
	v.SetDefault("reminders.interval", d.Interval)
	v.SetDefault("reminders.tolerance", d.Tolerance)
	v.SetDefault("reminders.release_held", d.ReleaseHeld)
	v.SetDefault("quiet_hours.enabled", d.QuietEnabled)
	v.SetDefault("quiet_hours.start", d.QuietStart)
	v.SetDefault("quiet_hours.end", d.QuietEnd)
	v.SetDefault("notifications.method", d.Method)
	v.SetDefault("notifications.sound", d.Sound)
	v.SetDefault("notifications.vibrate", d.Vibrate)
	v.SetDefault("notifications.bridge", d.Bridge)
}

// Load reads the file named by DAYBOOK_CONFIG, or .daybook.* from the home
// directory or the working directory.
func Load() (*Settings, error) {
	return LoadFile(os.Getenv(EnvConfig))
}

// LoadFile reads path, or searches the default locations when path is
// empty. A missing file yields the defaults.
func LoadFile(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, fmt.Errorf("settings: expand %s: %w", path, err)
		}
		v.SetConfigFile(expanded)
	} else {
		v.SetConfigName(configName)
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath("./")
	}

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("settings: read config: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	s := &Settings{
		Endpoint:      v.GetString("remote.endpoint"),
		RemoteTimeout: v.GetDuration("remote.timeout"),
		StorePath:     v.GetString("store.path"),
		CacheTTL:      v.GetDuration("cache.ttl"),
		HistoryMonths: v.GetInt("history.months"),
		Interval:      v.GetDuration("reminders.interval"),
		Tolerance:     v.GetDuration("reminders.tolerance"),
		ReleaseHeld:   v.GetBool("reminders.release_held"),
		QuietEnabled:  v.GetBool("quiet_hours.enabled"),
		QuietStart:    v.GetInt("quiet_hours.start"),
		QuietEnd:      v.GetInt("quiet_hours.end"),
		Method:        v.GetString("notifications.method"),
		Sound:         v.GetString("notifications.sound"),
		Vibrate:       v.GetBool("notifications.vibrate"),
		Bridge:        v.GetString("notifications.bridge"),
		Overrides:     map[string]Override{},
		File:          used,
	}
	for id := range v.GetStringMap("overrides") {
		prefix := "overrides." + id + "."
		s.Overrides[id] = Override{
			Method:   v.GetString(prefix + "method"),
			Disabled: v.GetBool(prefix + "disabled"),
			Urgent:   v.GetBool(prefix + "urgent"),
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks enumerations, hours, and durations.
func (s *Settings) Validate() error {
	if _, err := notify.ParseMethod(s.Method); err != nil {
		return err
	}
	if _, err := notify.ParseSound(s.Sound); err != nil {
		return err
	}
	if err := s.Quiet().Validate(); err != nil {
		return err
	}
	for _, d := range []struct {
		field string
		value time.Duration
	}{
		{"remote.timeout", s.RemoteTimeout},
		{"cache.ttl", s.CacheTTL},
		{"reminders.interval", s.Interval},
		{"reminders.tolerance", s.Tolerance},
	} {
		if d.value <= 0 {
			return apperr.NewInvalidInputError(d.field, d.value.String(), "must be positive")
		}
	}
	if s.HistoryMonths < 0 {
		return apperr.NewInvalidInputError("history.months", s.HistoryMonths, "must be zero (everything) or positive")
	}
	if err := (reminder.Config{Interval: s.Interval, Tolerance: s.Tolerance}).Validate(); err != nil {
		return err
	}
	for id, ov := range s.Overrides {
		if ov.Method == "" {
			continue
		}
		if _, err := notify.ParseMethod(ov.Method); err != nil {
			return fmt.Errorf("settings: override %s: %w", id, err)
		}
	}
	return nil
}

// BasePath implements store.Config.
func (s *Settings) BasePath() string {
	return s.StorePath
}

// Quiet returns the quiet hours window.
func (s *Settings) Quiet() reminder.QuietHours {
	return reminder.QuietHours{Enabled: s.QuietEnabled, Start: s.QuietStart, End: s.QuietEnd}
}

// NotifyMethod returns the parsed default method.
func (s *Settings) NotifyMethod() notify.Method {
	m, err := notify.ParseMethod(s.Method)
	if err != nil {
		return notify.MethodBoth
	}
	return m
}

// NotifySound returns the parsed sound cue.
func (s *Settings) NotifySound() notify.Sound {
	snd, err := notify.ParseSound(s.Sound)
	if err != nil {
		return notify.SoundNone
	}
	return snd
}

// ReminderConfig converts the settings to a scheduler configuration.
func (s *Settings) ReminderConfig() reminder.Config {
	cfg := reminder.Config{
		Interval:    s.Interval,
		Tolerance:   s.Tolerance,
		Quiet:       s.Quiet(),
		Method:      s.NotifyMethod(),
		ReleaseHeld: s.ReleaseHeld,
		Overrides:   make(map[string]reminder.Override, len(s.Overrides)),
	}
	for id, ov := range s.Overrides {
		out := reminder.Override{Disabled: ov.Disabled, Urgent: ov.Urgent}
		if ov.Method != "" {
			out.Method, _ = notify.ParseMethod(ov.Method)
		}
		cfg.Overrides[id] = out
	}
	return cfg
}

type fileRemote struct {
	Endpoint string `toml:"endpoint"`
	Timeout  string `toml:"timeout"`
}

type fileStore struct {
	Path string `toml:"path"`
}

type fileCache struct {
	TTL string `toml:"ttl"`
}

type fileHistory struct {
	Months int `toml:"months"`
}

type fileReminders struct {
	Interval    string `toml:"interval"`
	Tolerance   string `toml:"tolerance"`
	ReleaseHeld bool   `toml:"release_held"`
}

type fileQuiet struct {
	Enabled bool `toml:"enabled"`
	Start   int  `toml:"start"`
	End     int  `toml:"end"`
}

type fileNotifications struct {
	Method  string `toml:"method"`
	Sound   string `toml:"sound"`
	Vibrate bool   `toml:"vibrate"`
	Bridge  string `toml:"bridge"`
}

type file struct {
	Remote        fileRemote          `toml:"remote"`
	Store         fileStore           `toml:"store"`
	Cache         fileCache           `toml:"cache"`
	History       fileHistory         `toml:"history"`
	Reminders     fileReminders       `toml:"reminders"`
	QuietHours    fileQuiet           `toml:"quiet_hours"`
	Notifications fileNotifications   `toml:"notifications"`
	Overrides     map[string]Override `toml:"overrides,omitempty"`
}

// TOML renders s in settings file form.
func (s *Settings) TOML() ([]byte, error) {
	f := file{
		Remote:        fileRemote{Endpoint: s.Endpoint, Timeout: s.RemoteTimeout.String()},
		Store:         fileStore{Path: s.StorePath},
		Cache:         fileCache{TTL: s.CacheTTL.String()},
		History:       fileHistory{Months: s.HistoryMonths},
		Reminders:     fileReminders{Interval: s.Interval.String(), Tolerance: s.Tolerance.String(), ReleaseHeld: s.ReleaseHeld},
		QuietHours:    fileQuiet{Enabled: s.QuietEnabled, Start: s.QuietStart, End: s.QuietEnd},
		Notifications: fileNotifications{Method: s.Method, Sound: s.Sound, Vibrate: s.Vibrate, Bridge: s.Bridge},
	}
	if len(s.Overrides) > 0 {
		f.Overrides = s.Overrides
	}
	b, err := toml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("settings: encode: %w", err)
	}
	return b, nil
}

// OverrideIDs lists the override keys in order.
func (s *Settings) OverrideIDs() []string {
	ids := make([]string, 0, len(s.Overrides))
	for id := range s.Overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Init writes the default settings to path (DefaultFile when empty) and
// returns the path written. An existing file is left alone unless force is
// set.
func Init(path string, force bool) (string, error) {
	if path == "" {
		path = DefaultFile
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("settings: expand %s: %w", path, err)
	}
	if _, err := os.Stat(expanded); err == nil && !force {
		return expanded, apperr.NewInvalidInputError("path", expanded, "settings file already exists")
	}
	b, err := Default().TOML()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return "", apperr.NewStorageError("settings init", err)
	}
	if err := os.WriteFile(expanded, b, 0o644); err != nil {
		return "", apperr.NewStorageError("settings init", err)
	}
	return expanded, nil
}
