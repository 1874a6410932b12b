package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("NullCache.Get() reported a hit")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}
	if err := c.Set(ctx, "k", []byte("hello"), 0); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	data, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(data) != "hello" {
		t.Fatalf("Get(k) = %q, %v, %v", data, ok, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("Get() after Delete() reported a hit")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(time.Millisecond)
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("expired entry reported as hit")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileCacheCorrupt(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("corrupt entry: Get() = %v, %v", ok, err)
	}
}

func TestFileCacheCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c, _ := NewFileCache(t.TempDir())
	if err := c.Set(ctx, "k", nil, 0); err == nil {
		t.Error("Set() with canceled context should fail")
	}
}

func TestLayoutKey(t *testing.T) {
	opts := LayoutKeyOpts{Layout: "radial", Seed: 1}
	a := LayoutKey("(a,b);", opts)
	if a != LayoutKey("(a,b);", opts) {
		t.Error("LayoutKey() is not deterministic")
	}
	if a == LayoutKey("(a,c);", opts) {
		t.Error("LayoutKey() ignores the input")
	}
	opts.Optimize = true
	if a == LayoutKey("(a,b);", opts) {
		t.Error("LayoutKey() ignores options")
	}
	if len(a) != len("layout:")+64 {
		t.Errorf("LayoutKey() = %q, unexpected length", a)
	}
}
