package commands

import (
	"context"
	"fmt"

	"tableflip.dev/daybook/pkg/app"
	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/cache"
	"tableflip.dev/daybook/pkg/commands/options"
	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/remote"
	"tableflip.dev/daybook/pkg/settings"
	"tableflip.dev/daybook/pkg/store"
	"tableflip.dev/daybook/pkg/timeutil"
)

// runtime is what most verbs need: settings, the local store, and a loaded
// service.
type runtime struct {
	Settings *settings.Settings
	Disk     *store.Disk
	Service  *app.Service
}

func loadSettings() (*settings.Settings, error) {
	if gopts.ConfigPath != "" {
		return settings.LoadFile(gopts.ConfigPath)
	}
	return settings.Load()
}

// openRuntime wires settings, store, remote client, and cache into a service.
// With load set the service is filled before returning.
func openRuntime(ctx context.Context, load bool, opts ...app.Option) (*runtime, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	disk, err := store.Open(s)
	if err != nil {
		return nil, err
	}
	client, err := remote.NewClient(s.Endpoint, remote.WithTimeout(s.RemoteTimeout))
	if err != nil {
		if apperr.IsType(err, apperr.TypeInvalidInput) && s.Endpoint == "" {
			return nil, fmt.Errorf("%w: run `daybook settings init` and set remote.endpoint", err)
		}
		return nil, err
	}
	opts = append([]app.Option{app.WithHistoryMonths(s.HistoryMonths)}, opts...)
	rt := &runtime{
		Settings: s,
		Disk:     disk,
		Service:  app.New(client, cache.New(disk, cache.WithTTL(s.CacheTTL)), opts...),
	}
	if load {
		if _, err := rt.Load(ctx, rt.Service.Today()); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// openRuntimeOn is openRuntime for verbs taking --on: the service is loaded
// around the chosen day rather than today.
func openRuntimeOn(ctx context.Context, on *options.OnOptions, opts ...app.Option) (*runtime, timeutil.Day, error) {
	rt, err := openRuntime(ctx, false, opts...)
	if err != nil {
		return nil, timeutil.Day{}, err
	}
	day, err := on.GetDay(rt.Service.Today())
	if err != nil {
		return nil, timeutil.Day{}, err
	}
	if _, err := rt.Load(ctx, day); err != nil {
		return nil, timeutil.Day{}, err
	}
	return rt, day, nil
}

// Load reads everything around day. Scopes that failed are logged; the
// error is returned only when nothing could be read at all.
func (rt *runtime) Load(ctx context.Context, day timeutil.Day) ([]app.LoadResult, error) {
	results, err := rt.Service.Load(ctx, day)
	if err == nil {
		return results, nil
	}
	ok := 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		}
	}
	if ok == 0 {
		return results, err
	}
	logging.Warnf("%v", err)
	return results, nil
}
