package cache

import (
	"sync"
	"testing"
	"time"
)

func TestSimpleCache_SetGet_NoTTL(t *testing.T) {
	c := NewSimpleCache[string, int](Options{})
	c.Set("a", 1, 0)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected hit with value 1, got ok=%v v=%v", ok, v)
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestSimpleCache_TTL_Expiry(t *testing.T) {
	c := NewSimpleCache[string, string](Options{})

	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	c.Set("AB12CD", "room", time.Second)
	if v, ok := c.Get("AB12CD"); !ok || v != "room" {
		t.Fatalf("expected hit before expiry")
	}

	base = base.Add(2 * time.Second)
	if _, ok := c.Get("AB12CD"); ok {
		t.Fatalf("expected miss after expiry")
	}
	c.PurgeExpired()
	if c.Len() != 0 {
		t.Fatalf("expected Len=0 after purge, got %d", c.Len())
	}
}

func TestSimpleCache_Delete(t *testing.T) {
	c := NewSimpleCache[int, int](Options{})
	c.Set(1, 10, 0)
	c.Set(2, 20, 0)
	c.Delete(1)
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected key 1 to be deleted")
	}
	if c.Len() != 1 {
		t.Fatalf("expected Len=1, got %d", c.Len())
	}
}

func TestSimpleCache_MaxEntries(t *testing.T) {
	base := time.Now()
	now = func() time.Time { return base }
	t.Cleanup(func() { now = time.Now })

	c := NewSimpleCache[int, int](Options{MaxEntries: 2})
	c.Set(1, 1, time.Second)
	c.Set(2, 2, 0)
	c.Set(3, 3, 0)
	if _, ok := c.Get(3); ok {
		t.Fatalf("expected full cache to reject a new key")
	}

	// overwriting an existing key is always allowed
	c.Set(2, 22, 0)
	if v, _ := c.Get(2); v != 22 {
		t.Fatalf("expected overwrite, got %d", v)
	}

	// once key 1 expires there is room again
	base = base.Add(2 * time.Second)
	c.Set(3, 3, 0)
	if v, ok := c.Get(3); !ok || v != 3 {
		t.Fatalf("expected key 3 after expiry freed a slot")
	}
}

func TestSimpleCache_Concurrent(t *testing.T) {
	keys := 100
	rounds := 200

	c := NewSimpleCache[int, int](Options{})
	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				c.Set(i, r, 0)
				_, _ = c.Get(i)
			}
		}()
	}
	wg.Wait()
	for i := 0; i < keys; i++ {
		if _, ok := c.Get(i); !ok {
			t.Fatalf("expected key %d", i)
		}
	}
}
