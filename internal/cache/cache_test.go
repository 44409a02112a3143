package cache

import (
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New[[]string](5*time.Minute, 10*time.Minute)

	t.Run("Set and Get", func(t *testing.T) {
		c.Set("ERR1", []string{"a", "b"})

		val, found := c.Get("ERR1")
		if !found {
			t.Fatal("expected ERR1 to be found")
		}
		if len(val) != 2 || val[1] != "b" {
			t.Errorf("unexpected value %v", val)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, found := c.Get("nonexistent"); found {
			t.Error("expected nonexistent key to not be found")
		}
	})

	t.Run("Delete and Clear", func(t *testing.T) {
		c.Set("ERR2", nil)
		c.Delete("ERR2")
		if _, found := c.Get("ERR2"); found {
			t.Error("expected ERR2 to be deleted")
		}

		c.Set("ERR3", []string{"x"})
		c.Clear()
		if n := c.ItemCount(); n != 0 {
			t.Errorf("expected empty cache after Clear, got %d items", n)
		}
	})
}

func TestCacheExpiration(t *testing.T) {
	c := New[int](time.Minute, time.Minute)
	c.SetWithTTL("short", 1, 10*time.Millisecond)
	c.Set("long", 2)

	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("expected short-lived entry to expire")
	}
	if v, found := c.Get("long"); !found || v != 2 {
		t.Errorf("expected long-lived entry, got %v %v", v, found)
	}
}
