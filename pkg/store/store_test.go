package store

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func testKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := kv.Get("cache_tasks_all"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := kv.Put("cache_tasks_all", `{"ts":1}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Put("cache_events_2024-06", `{"ts":2}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := kv.Put("reminder_triggered_r1_2024-06-10_0900", "true"); err != nil {
		t.Fatalf("put: %v", err)
	}
	v, ok, err := kv.Get("cache_tasks_all")
	if err != nil || !ok || v != `{"ts":1}` {
		t.Fatalf("get: %q %v %v", v, ok, err)
	}

	keys, err := kv.Keys(ctx, "cache_")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	want := []string{"cache_events_2024-06", "cache_tasks_all"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys: got %v want %v", keys, want)
	}

	if err := kv.Delete("cache_tasks_all"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := kv.Delete("cache_tasks_all"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if _, ok, _ := kv.Get("cache_tasks_all"); ok {
		t.Fatal("expected key to be gone")
	}
	all, _ := kv.Keys(ctx, "")
	if len(all) != 2 {
		t.Fatalf("expected 2 keys, got %v", all)
	}
}

func TestMemory(t *testing.T) {
	testKV(t, NewMemory())
}

func TestDisk(t *testing.T) {
	d, err := Open(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	testKV(t, d)
}

func TestDiskSurvivesReopen(t *testing.T) {
	base := t.TempDir()
	d, err := Open(testConfig{path: base})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := d.Put("reminder_triggered_x_2024-06-10_0900", "true"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "reminder")); err != nil {
		t.Fatalf("expected bucket directory: %v", err)
	}

	again, err := Open(testConfig{path: base})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	v, ok, err := again.Get("reminder_triggered_x_2024-06-10_0900")
	if err != nil || !ok || v != "true" {
		t.Fatalf("get after reopen: %q %v %v", v, ok, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(testConfig{}); err == nil {
		t.Fatal("expected error for empty base path")
	}
}

func TestTransformRoundTrip(t *testing.T) {
	for _, key := range []string{"cache_tasks_all", "reminder_triggered_a/b_2024-01-01_0000", "plain"} {
		pk := keyToPathTransform(key)
		if got := pathToKeyTransform(pk); got != key {
			t.Errorf("round trip %q: got %q", key, got)
		}
	}
	if got := keyToPathTransform("plain").Path[0]; got != "misc" {
		t.Errorf("bucket for key without prefix: %q", got)
	}
}
