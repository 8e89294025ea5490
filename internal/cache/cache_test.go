package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be present")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Fatalf("%s should be present", k)
		}
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
	if st := c.Stats(); st.Hits != 3 || st.Misses != 1 || st.Evictions != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.now)
	c.Set("k", "v")
	c.Set("other", "v")

	clock.t = clock.t.Add(30 * time.Second)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("Get before expiry = %q, %v", v, ok)
	}

	clock.t = clock.t.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired removed %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("u1|a", 1)
	c.Set("u1|b", 2)
	c.Set("u2|a", 3)

	if n := c.DeletePrefix("u1|"); n != 2 {
		t.Fatalf("DeletePrefix removed %d", n)
	}
	if _, ok := c.Get("u2|a"); !ok {
		t.Fatal("other user's entry was removed")
	}
}

func TestManagerCleanNow(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := NewLRUCache[int](10, time.Second).WithClock(clock.now)
	b := NewLRUCache[int](10, time.Hour).WithClock(clock.now)
	a.Set("x", 1)
	b.Set("y", 2)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)
	clock.t = clock.t.Add(time.Minute)

	if n := m.CleanNow(); n != 1 {
		t.Fatalf("CleanNow = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()

	NewManager(nil).Stop()
}

func testViewCache(t *testing.T, v ViewCache) {
	t.Helper()
	ctx := context.Background()

	version := func(userID string) int64 {
		t.Helper()
		n, err := v.Version(ctx, userID)
		if err != nil {
			t.Fatalf("Version: %v", err)
		}
		return n
	}

	if _, ok, err := v.Get(ctx, "u1", "dashboard"); err != nil || ok {
		t.Fatalf("empty cache Get = %v, %v", ok, err)
	}
	if err := v.Set(ctx, "u1", "dashboard", version("u1"), []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := v.Set(ctx, "u2", "dashboard", version("u2"), []byte(`{"b":2}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := v.Get(ctx, "u1", "dashboard")
	if err != nil || !ok || string(got) != `{"a":1}` {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	if err := v.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := v.Get(ctx, "u1", "dashboard"); ok {
		t.Fatal("u1 view survived invalidation")
	}
	if _, ok, _ := v.Get(ctx, "u2", "dashboard"); !ok {
		t.Fatal("u2 view was invalidated")
	}

	// a view computed before an invalidation must not be served after it
	before := version("u1")
	if err := v.Invalidate(ctx, "u1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if err := v.Set(ctx, "u1", "dashboard", before, []byte(`{"stale":true}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok, _ := v.Get(ctx, "u1", "dashboard"); ok {
		t.Fatalf("stale view served after invalidation: %s", got)
	}
	if err := v.Set(ctx, "u1", "dashboard", version("u1"), []byte(`{"a":2}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok, _ := v.Get(ctx, "u1", "dashboard"); !ok || string(got) != `{"a":2}` {
		t.Fatalf("fresh view = %q, %v", got, ok)
	}
}

func TestLocalViews(t *testing.T) {
	testViewCache(t, NewLocalViews(NewLRUCache[[]byte](100, time.Minute)))
}

// TestRedisViews runs against a real server when TEST_REDIS_URL is set.
func TestRedisViews(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	v, err := NewRedisViews(context.Background(), url, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisViews: %v", err)
	}
	defer v.Close()
	v.prefix = "financas-test:" + time.Now().Format("150405.000000")
	testViewCache(t, v)
}

func TestRedisViewsRejectsBadURL(t *testing.T) {
	if _, err := NewRedisViews(context.Background(), "http://nope", time.Minute); err == nil {
		t.Fatal("expected error for non-redis url")
	}
}
