package cache

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestCache_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{t: time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)}
	c := New[int](time.Hour, clock.now)

	c.Put("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get=(%v,%v), want (1,true)", v, ok)
	}

	clock.t = clock.t.Add(59 * time.Minute)
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("entry expired too early")
	}

	clock.t = clock.t.Add(time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("entry should be expired")
	}
	if c.Len() != 0 {
		t.Fatalf("Len=%d, want 0", c.Len())
	}
}

func TestKey_ContentAddressed(t *testing.T) {
	t.Parallel()

	a := Key([]byte("same bytes"), "rules")
	b := Key([]byte("same bytes"), "rules")
	if a != b {
		t.Fatalf("same input produced different keys")
	}
	if Key([]byte("same bytes"), "flat:50") == a {
		t.Fatalf("settings must change the key")
	}
	if Key([]byte("other bytes"), "rules") == a {
		t.Fatalf("content must change the key")
	}
	if len(FileHash([]byte("x"))) != 64 {
		t.Fatalf("unexpected hash length")
	}
}
