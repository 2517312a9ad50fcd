package cli

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/matzehuels/weekflow/pkg/config"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestOpenFileCacheMissingDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	fc, err := openFileCache()
	if err != nil {
		t.Fatalf("openFileCache: %v", err)
	}
	if fc != nil {
		t.Error("openFileCache should return nil before anything was cached")
	}
}

func TestNewCacheBackends(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	c := newTestCLI(t)
	store, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	fc, err := openFileCache()
	if err != nil || fc == nil {
		t.Fatalf("file cache not created: %v", err)
	}
	stats, _ := fc.Stats()
	if stats.Entries != 1 {
		t.Errorf("Entries = %d, want 1", stats.Entries)
	}
	if n, _ := fc.Clear(false); n != 1 {
		t.Errorf("Clear removed %d entries, want 1", n)
	}

	c.cfg.Cache.Backend = config.CacheNone
	store, _ = c.newCache(ctx, false)
	if _, hit, _ := store.Get(ctx, "k"); hit {
		t.Error("none backend should never hit")
	}

	// An unreachable Redis falls back to the file cache.
	c.cfg.Cache.Backend = config.CacheRedis
	c.cfg.Cache.RedisAddr = "127.0.0.1:1"
	store, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache(redis down): %v", err)
	}
	if err := store.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Errorf("fallback cache Set: %v", err)
	}
}

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	return New(io.Discard, LogInfo)
}
