package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key1", []byte("hello"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, hit, err := c.Get(ctx, "key1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if string(data) != "hello" {
		t.Errorf("data = %q, want hello", data)
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	_, hit, err := c.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expected miss for unknown key")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "ephemeral", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, hit, err := c.Get(ctx, "ephemeral")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheNoTTL(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, hit, err := c.Get(ctx, "forever")
	if err != nil || !hit {
		t.Errorf("Get = hit %v, err %v; want hit without expiration", hit, err)
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	ctx := context.Background()

	_ = c.Set(ctx, "key", []byte("x"), time.Hour)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("deleted key should miss")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestNullCacheNeverHits(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get = hit %v, err %v; want miss", hit, err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestDefaultKeyerDistinguishesOptions(t *testing.T) {
	k := NewDefaultKeyer()

	base := k.LayoutKey("hash", LayoutKeyOpts{VizType: "sunburst"})
	focused := k.LayoutKey("hash", LayoutKeyOpts{VizType: "sunburst", Focus: []string{"root", "Summer"}})
	if base == focused {
		t.Error("focused layout must key differently from the base layout")
	}

	geo := k.LayoutKey("hash", LayoutKeyOpts{VizType: "sunburst", RingWidth: 40})
	if base == geo {
		t.Error("geometry changes must key differently")
	}

	if k.LayoutKey("hash", LayoutKeyOpts{VizType: "sunburst"}) != base {
		t.Error("identical options must produce identical keys")
	}

	a1 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "svg"})
	a2 := k.ArtifactKey("hash", ArtifactKeyOpts{Format: "png"})
	if a1 == a2 {
		t.Error("artifact format must be part of the key")
	}
}

func TestDefaultKeyerPrefixes(t *testing.T) {
	k := NewDefaultKeyer()
	if key := k.DatasetKey("r", "u", DatasetKeyOpts{}); !strings.HasPrefix(key, "dataset:") {
		t.Errorf("dataset key = %q", key)
	}
	if key := k.LayoutKey("d", LayoutKeyOpts{}); !strings.HasPrefix(key, "layout:") {
		t.Errorf("layout key = %q", key)
	}
	if key := k.ArtifactKey("l", ArtifactKeyOpts{}); !strings.HasPrefix(key, "artifact:") {
		t.Errorf("artifact key = %q", key)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:abc:")

	got := scoped.LayoutKey("hash", LayoutKeyOpts{VizType: "sunburst"})
	want := "tenant:abc:" + inner.LayoutKey("hash", LayoutKeyOpts{VizType: "sunburst"})
	if got != want {
		t.Errorf("scoped key = %q, want %q", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "p:")
	if key := scoped.DatasetKey("a", "b", DatasetKeyOpts{}); !strings.HasPrefix(key, "p:dataset:") {
		t.Errorf("key = %q", key)
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("hello"))
	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("hello")) {
		t.Error("hash must be deterministic")
	}
	if h == Hash([]byte("world")) {
		t.Error("different inputs must hash differently")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 2 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RetryWithBackoff: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetryWithBackoffStopsOnPermanent(t *testing.T) {
	calls := 0
	permanent := errors.New("permanent")
	err := RetryWithBackoff(context.Background(), func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("err = %v, want permanent", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry for non-retryable errors)", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Retryable(errors.New("x"))) {
		t.Error("wrapped error should be retryable")
	}
	if IsRetryable(errors.New("x")) {
		t.Error("plain error should not be retryable")
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
