// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package cache

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestLRU_GetAdd(t *testing.T) {
	t.Parallel()

	c := New[string, int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("a", 10)

	if v, ok := c.Get("a"); !ok || v != 10 {
		t.Errorf("Get(a) = %d, %v, want 10, true", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) should miss")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.HitRate() != 0.5 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c := New[string, int](3, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Add("c", 3)
	c.Get("a")
	c.Add("d", 4)

	if c.Contains("b") {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c", "d"} {
		if !c.Contains(k) {
			t.Errorf("%s should be present", k)
		}
	}
}

func TestLRU_ContainsDoesNotRefresh(t *testing.T) {
	t.Parallel()

	c := New[string, int](2, time.Minute)
	c.Add("a", 1)
	c.Add("b", 2)
	c.Contains("a")
	c.Add("c", 3)

	if c.Contains("a") {
		t.Error("Contains must not mark a as recently used")
	}
}

func TestLRU_Expiry(t *testing.T) {
	t.Parallel()

	clock := newClock()
	c := New[int64, string](10, time.Minute).WithClock(clock.Now)
	c.Add(1, "x")
	c.Add(2, "y")

	clock.Advance(30 * time.Second)
	c.Add(2, "y")
	clock.Advance(31 * time.Second)

	if _, ok := c.Get(1); ok {
		t.Error("key 1 should be expired")
	}
	if _, ok := c.Get(2); !ok {
		t.Error("key 2 was refreshed and should still be live")
	}

	clock.Advance(time.Minute)
	if n := c.CleanupExpired(); n != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", n)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after cleanup, want 0", c.Len())
	}
}

func TestLRU_Seen(t *testing.T) {
	t.Parallel()

	clock := newClock()
	c := New[string, struct{}](100, time.Minute).WithClock(clock.Now)

	if c.Seen("k", struct{}{}) {
		t.Error("first Seen should report false")
	}
	if !c.Seen("k", struct{}{}) {
		t.Error("second Seen should report true")
	}
	if c.Seen("other", struct{}{}) {
		t.Error("a different key is not a duplicate")
	}

	clock.Advance(2 * time.Minute)
	if c.Seen("k", struct{}{}) {
		t.Error("Seen after expiry should report false")
	}
}

func TestLRU_SeenConcurrent(t *testing.T) {
	t.Parallel()

	c := New[string, struct{}](1000, time.Minute)
	var firsts atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !c.Seen("same", struct{}{}) {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	if firsts.Load() != 1 {
		t.Errorf("exactly one goroutine should see the key first, got %d", firsts.Load())
	}
}

func TestLRU_RemoveClear(t *testing.T) {
	t.Parallel()

	c := New[string, int](10, time.Minute)
	for i := 0; i < 5; i++ {
		c.Add(fmt.Sprintf("k%d", i), i)
	}

	if !c.Remove("k2") {
		t.Error("Remove(k2) = false, want true")
	}
	if c.Remove("k2") {
		t.Error("second Remove(k2) = true, want false")
	}
	if c.Len() != 4 {
		t.Errorf("Len() = %d, want 4", c.Len())
	}

	c.Clear()
	if c.Len() != 0 || c.Stats().Hits != 0 {
		t.Errorf("Clear() left %d entries", c.Len())
	}
	c.Add("after", 1)
	if !c.Contains("after") {
		t.Error("cache should be usable after Clear")
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	c := New[string, int](0, 0)
	if c.capacity != defaultCapacity || c.ttl != defaultTTL {
		t.Errorf("defaults = %d, %v", c.capacity, c.ttl)
	}
}
