//go:build unit

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"category-api/internal/config"
	"category-api/internal/logger"
)

// newTestStore creates a new in-memory SQLite cache for testing.
func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	c, err := NewSQLite("file::memory:")
	if err != nil {
		t.Fatalf("failed to create test cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLite_SetGetDelete(t *testing.T) {
	c := newTestStore(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected miss, got %q", got)
	}

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err = c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("expected 'v', got %q", got)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ = c.Get(ctx, "k")
	if got != nil {
		t.Errorf("expected miss after delete, got %q", got)
	}
}

func TestSQLite_ExpiredItemIsAMiss(t *testing.T) {
	c := newTestStore(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if _, err := c.db.Exec(`UPDATE cache SET expires_at = ? WHERE key = ?`, time.Now().Add(-time.Minute).Unix(), "k"); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected expired item to be a miss, got %q", got)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New(config.CacheConfig{Driver: "memcached"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestEntry_LoadsOnceUntilInvalidated(t *testing.T) {
	c := newTestStore(t)
	ctx := context.Background()
	entry := NewEntry[[]string](c, "names", 0, logger.Nop())

	loads := 0
	current := []string{"a", "b"}
	load := func(context.Context) ([]string, error) {
		loads++
		return append([]string(nil), current...), nil
	}

	for i := 0; i < 3; i++ {
		got, err := entry.Get(ctx, load)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 names, got %v", got)
		}
	}
	if loads != 1 {
		t.Errorf("expected a single load, got %d", loads)
	}

	current = []string{"c"}
	if err := entry.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	got, err := entry.Get(ctx, load)
	if err != nil {
		t.Fatal(err)
	}
	if loads != 2 || len(got) != 1 || got[0] != "c" {
		t.Errorf("expected fresh value after invalidate, got %v after %d loads", got, loads)
	}
}

func TestEntry_ReturnsCopies(t *testing.T) {
	c := newTestStore(t)
	ctx := context.Background()
	entry := NewEntry[[]string](c, "names", 0, logger.Nop())
	load := func(context.Context) ([]string, error) { return []string{"a"}, nil }

	first, _ := entry.Get(ctx, load)
	first[0] = "mutated"

	second, err := entry.Get(ctx, load)
	if err != nil {
		t.Fatal(err)
	}
	if second[0] != "a" {
		t.Errorf("cached value was mutated through a returned slice: %v", second)
	}
}

func TestEntry_LoadErrorIsNotCached(t *testing.T) {
	c := newTestStore(t)
	ctx := context.Background()
	entry := NewEntry[[]string](c, "names", 0, logger.Nop())

	boom := errors.New("db down")
	if _, err := entry.Get(ctx, func(context.Context) ([]string, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	raw, _ := c.Get(ctx, "names")
	if raw != nil {
		t.Errorf("expected nothing cached after a failed load, got %q", raw)
	}
}

func TestEntry_UndecodableValueIsReloaded(t *testing.T) {
	c := newTestStore(t)
	ctx := context.Background()
	entry := NewEntry[[]string](c, "names", 0, logger.Nop())

	if err := c.Set(ctx, "names", []byte("not json"), 0); err != nil {
		t.Fatal(err)
	}
	got, err := entry.Get(ctx, func(context.Context) ([]string, error) { return []string{"ok"}, nil })
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "ok" {
		t.Errorf("expected reloaded value, got %v", got)
	}
}
