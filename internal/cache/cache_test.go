package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func testCache(cfg Config) (*Cache, *time.Time) {
	c := New(cfg)
	now := time.Now()
	c.now = func() time.Time { return now }
	return c, &now
}

func TestKeyIsStable(t *testing.T) {
	a := Key("owner", "repo", "src/app.py")
	b := Key("owner", "repo", "src/app.py")
	if a != b {
		t.Fatalf("same inputs produced different keys: %s vs %s", a, b)
	}
	if Key("owner", "repo", "other.py") == a {
		t.Fatal("different paths produced the same key")
	}
	if Key("owner", "repo", "src/app.py", "sha1") == a {
		t.Fatal("version hint did not change the key")
	}
	if Key("owner", "repo", "src/app.py", "") != a {
		t.Fatal("empty hint should be ignored")
	}
}

func TestRoundTripIncrementsAccessCount(t *testing.T) {
	c, _ := testCache(DefaultConfig())
	key := Key("o", "r", "a.py")

	c.Put(key, "X", 4, "a.py")
	got, ok := c.Get(key)
	if !ok || got != "X" {
		t.Fatalf("get = %q, %v", got, ok)
	}

	stats := c.Stats()
	if stats.TotalAccesses != 2 {
		t.Fatalf("accesses = %d, want 2 (1 on insert + 1 on hit)", stats.TotalAccesses)
	}

	c.Get(key)
	if got := c.Stats().TotalAccesses; got != 3 {
		t.Fatalf("accesses = %d, want 3", got)
	}
}

func TestAdmissionBelowMinScore(t *testing.T) {
	c, _ := testCache(DefaultConfig()) // MinScore 3
	key := Key("o", "r", "low.py")

	c.Put(key, "X", 2, "low.py")
	if _, ok := c.Get(key); ok {
		t.Fatal("entry below the admission score should not be cached")
	}
}

func TestDisabledCacheIsAlwaysMiss(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	c, _ := testCache(cfg)
	key := Key("o", "r", "a.py")

	c.Put(key, "X", 5, "a.py")
	if _, ok := c.Get(key); ok {
		t.Fatal("disabled cache returned a hit")
	}
}

func TestTTLExpiry(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 0
	c, now := testCache(cfg)
	key := Key("o", "r", "a.py")

	c.Put(key, "X", 4, "a.py")
	*now = now.Add(time.Second)

	if _, ok := c.Get(key); ok {
		t.Fatal("entry with TTL 0 should be a miss one second later")
	}
	if c.Len() != 0 {
		t.Fatal("expired entry should be deleted on access")
	}
}

func TestEvictionPrefersLeastValuable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEntries = 4
	c, now := testCache(cfg)

	for i := 0; i < 4; i++ {
		path := fmt.Sprintf("f%d.py", i)
		c.Put(Key("o", "r", path), "X", 3+i%3, path)
		*now = now.Add(time.Minute)
	}
	// Make f1 and f2 clearly more valuable than f0.
	c.Get(Key("o", "r", "f1.py"))
	c.Get(Key("o", "r", "f2.py"))
	c.Get(Key("o", "r", "f2.py"))

	c.Put(Key("o", "r", "new.py"), "Y", 5, "new.py")

	if _, ok := c.Get(Key("o", "r", "new.py")); !ok {
		t.Fatal("newly inserted entry must be present after eviction")
	}
	if _, ok := c.Get(Key("o", "r", "f0.py")); ok {
		t.Fatal("least-accessed lowest-score entry should have been evicted")
	}
	if c.Len() > 4 {
		t.Fatalf("cache over capacity: %d", c.Len())
	}
}

func TestClear(t *testing.T) {
	c, _ := testCache(DefaultConfig())
	c.Put(Key("o", "r", "a.py"), "X", 4, "a.py")
	c.Put(Key("o", "r", "b.py"), "Y", 4, "b.py")

	if n := c.Clear(); n != 2 {
		t.Fatalf("clear removed %d entries, want 2", n)
	}
	if c.Len() != 0 {
		t.Fatal("cache not empty after clear")
	}
}

func TestStats(t *testing.T) {
	c, _ := testCache(DefaultConfig())
	c.Put(Key("o", "r", "a.py"), "aaaa", 3, "a.py")
	c.Put(Key("o", "r", "b.py"), "bb", 5, "b.py")
	c.Get(Key("o", "r", "b.py"))

	stats := c.Stats()
	if !stats.Enabled || stats.TotalFiles != 2 || stats.TotalChars != 6 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.AvgScore != 4 {
		t.Fatalf("avg score = %v, want 4", stats.AvgScore)
	}
	if len(stats.MostAccessed) != 2 || stats.MostAccessed[0].Path != "b.py" {
		t.Fatalf("unexpected most-accessed ordering: %+v", stats.MostAccessed)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New(DefaultConfig())
	key := Key("o", "r", "shared.py")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Put(key, "X", 4, "shared.py")
			c.Get(key)
		}()
	}
	wg.Wait()

	got, ok := c.Get(key)
	if !ok || got != "X" {
		t.Fatalf("get after concurrent churn = %q, %v", got, ok)
	}
}
