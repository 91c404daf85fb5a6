package reminder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tableflip.dev/daybook/pkg/logging"
	"tableflip.dev/daybook/pkg/store"
	"tableflip.dev/daybook/pkg/timeutil"
)

const markerValue = "true"

// Dedup remembers which occurrences have fired. Markers are never expired.
// Storage failures are logged and read as "not fired".
type Dedup struct {
	kv store.KV
}

// NewDedup keeps markers in kv.
func NewDedup(kv store.KV) *Dedup {
	return &Dedup{kv: kv}
}

// Key identifies one occurrence: the entity and the local day and minute it
// triggers at.
func Key(prefix, entityID string, at time.Time) string {
	return fmt.Sprintf("%s_triggered_%s_%s_%s", prefix, entityID, timeutil.DayOf(at), timeutil.HourMinuteOf(at).Compact())
}

// Seen reports whether a marker exists for key. Only presence matters.
func (d *Dedup) Seen(key string) bool {
	_, ok, err := d.kv.Get(key)
	if err != nil {
		logging.Warnf("reminder: read marker %s: %v", key, err)
		return false
	}
	return ok
}

// Mark records that key fired.
func (d *Dedup) Mark(key string) {
	if err := d.kv.Put(key, markerValue); err != nil {
		logging.Warnf("reminder: write marker %s: %v", key, err)
	}
}

// Count reports how many markers have accumulated.
func (d *Dedup) Count(ctx context.Context) (int, error) {
	keys, err := d.kv.Keys(ctx, "")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, k := range keys {
		if strings.Contains(k, "_triggered_") {
			n++
		}
	}
	return n, nil
}
