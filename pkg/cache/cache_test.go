package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should never hit")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// testBackend runs the shared Cache and Guard contract against c.
func testBackend(t *testing.T, c interface {
	Cache
	Guard
}) {
	ctx := context.Background()
	key := "test:" + t.Name()
	t.Cleanup(func() { _ = c.Delete(ctx, key) })

	t.Run("miss", func(t *testing.T) {
		if _, hit, err := c.Get(ctx, key); err != nil || hit {
			t.Fatalf("Get on empty = hit %v, err %v", hit, err)
		}
	})

	t.Run("set get delete", func(t *testing.T) {
		if err := c.Set(ctx, key, []byte("png"), time.Minute); err != nil {
			t.Fatal(err)
		}
		data, hit, err := c.Get(ctx, key)
		if err != nil || !hit || string(data) != "png" {
			t.Fatalf("Get = %q, %v, %v", data, hit, err)
		}
		if err := c.Delete(ctx, key); err != nil {
			t.Fatal(err)
		}
		if _, hit, _ := c.Get(ctx, key); hit {
			t.Error("entry should be gone after Delete")
		}
	})

	t.Run("guard", func(t *testing.T) {
		ok, err := c.Acquire(ctx, key, time.Minute)
		if err != nil || !ok {
			t.Fatalf("first Acquire = %v, %v", ok, err)
		}
		if ok, _ := c.Acquire(ctx, key, time.Minute); ok {
			t.Error("second Acquire should fail while the claim is held")
		}
		if err := c.Release(ctx, key); err != nil {
			t.Fatal(err)
		}
		if ok, _ := c.Acquire(ctx, key, time.Minute); !ok {
			t.Error("Acquire after Release should succeed")
		}
	})
}

func TestMemoryCache(t *testing.T) {
	testBackend(t, NewMemoryCache())
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 5, 21, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "short", []byte("a"), time.Minute)
	_ = c.Set(ctx, "forever", []byte("b"), 0)
	if ok, _ := c.Acquire(ctx, "claim", time.Minute); !ok {
		t.Fatal("Acquire should succeed")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should miss")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without TTL should not expire")
	}
	if ok, _ := c.Acquire(ctx, "claim", time.Minute); !ok {
		t.Error("expired claim should be re-acquirable")
	}
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	buf := []byte("abc")
	_ = c.Set(ctx, "k", buf, 0)
	buf[0] = 'x'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("stored value changed with caller buffer: %q", got)
	}
	got[1] = 'y'
	again, _, _ := c.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value changed with returned buffer: %q", again)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("POLLCARD_TEST_REDIS_URL")
	if url == "" {
		t.Skip("POLLCARD_TEST_REDIS_URL not set")
	}
	c, err := NewRedisCache(context.Background(), url)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	testBackend(t, c)
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	type req struct {
		Question string
		Overall  int
	}

	base := k.RenderKey(req{"q", 30}, RenderKeyOpts{Kind: "main"})
	if !strings.HasPrefix(base, "render:main:") {
		t.Errorf("RenderKey = %q, want render:main: prefix", base)
	}
	if base != k.RenderKey(req{"q", 30}, RenderKeyOpts{Kind: "main"}) {
		t.Error("RenderKey should be deterministic")
	}

	variants := []string{
		k.RenderKey(req{"q", 31}, RenderKeyOpts{Kind: "main"}),
		k.RenderKey(req{"q", 30}, RenderKeyOpts{Kind: "avatar"}),
		k.RenderKey(req{"q", 30}, RenderKeyOpts{Kind: "main", Glitch: true, Seed: 7}),
		k.RenderKey(req{"q", 30}, RenderKeyOpts{Kind: "main", Params: "abc"}),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d should produce a different key", i)
		}
	}

	if got := k.ResponseKey("u1", "q1"); got != "respond:q1:u1" {
		t.Errorf("ResponseKey = %q", got)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "staging")
	if got := scoped.ResponseKey("u1", "q1"); got != "staging:respond:q1:u1" {
		t.Errorf("ResponseKey = %q", got)
	}
	if got := scoped.RenderKey("x", RenderKeyOpts{Kind: "avatar"}); !strings.HasPrefix(got, "staging:render:avatar:") {
		t.Errorf("RenderKey = %q", got)
	}

	inner := NewDefaultKeyer()
	if NewScopedKeyer(inner, "") != inner {
		t.Error("empty prefix should return the inner keyer")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })

	ctx := context.Background()
	transient := Retryable(context.DeadlineExceeded)

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	permanent := context.Canceled
	if err := RetryWithBackoff(ctx, func() error { calls++; return permanent }); err != permanent || calls != 1 {
		t.Errorf("permanent: err %v, calls %d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return transient
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("transient: err %v, calls %d", err, calls)
	}

	calls = 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return transient }); !IsRetryable(err) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := RetryWithBackoff(cctx, func() error { return transient }); err != context.Canceled {
		t.Errorf("cancelled: err %v", err)
	}
}
