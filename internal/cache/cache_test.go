package cache

import (
	"sync"
	"testing"
	"time"
)

func svg(body string) *Image {
	return &Image{ContentType: "image/svg+xml", Body: []byte(body)}
}

func TestChartCache_GetSet(t *testing.T) {
	c := New(5*time.Second, 100)

	key := MakeKey([]string{"SSO", "SDS"}, "svg", 900, 420)
	c.Set(key, svg("<svg/>"))

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.ContentType != "image/svg+xml" {
		t.Errorf("unexpected content-type: %s", got.ContentType)
	}
	if string(got.Body) != "<svg/>" {
		t.Errorf("unexpected body: %s", got.Body)
	}
}

func TestChartCache_Miss(t *testing.T) {
	c := New(5*time.Second, 100)

	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected cache miss for nonexistent key")
	}
}

func TestChartCache_TTLExpiration(t *testing.T) {
	c := New(50*time.Millisecond, 100)

	key := MakeKey([]string{"SSO"}, "svg", 900, 420)
	c.Set(key, svg("data"))

	if _, ok := c.Get(key); !ok {
		t.Fatal("expected cache hit before expiry")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("expected cache miss after TTL expiration")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entry to be removed, got %d entries", c.Len())
	}
}

func TestChartCache_InvalidateTicker(t *testing.T) {
	c := New(5*time.Second, 100)

	both := MakeKey([]string{"SSO", "SDS"}, "svg", 900, 420)
	sso := MakeKey([]string{"SSO"}, "png", 400, 200)
	prefix := MakeKey([]string{"SSOX"}, "svg", 900, 420)
	c.Set(both, svg("a"))
	c.Set(sso, svg("b"))
	c.Set(prefix, svg("c"))

	c.InvalidateTicker("SSO")

	if _, ok := c.Get(both); ok {
		t.Error("expected selection containing SSO to be invalidated")
	}
	if _, ok := c.Get(sso); ok {
		t.Error("expected SSO chart to be invalidated")
	}
	if _, ok := c.Get(prefix); !ok {
		t.Error("ticker sharing a prefix must survive")
	}
}

func TestChartCache_Purge(t *testing.T) {
	c := New(5*time.Second, 100)
	c.Set("a", svg("a"))
	c.Set("b", svg("b"))

	c.Purge()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestChartCache_MaxEntries(t *testing.T) {
	c := New(5*time.Second, 3)

	c.Set("key1", svg("1"))
	c.Set("key2", svg("2"))
	c.Set("key3", svg("3"))
	c.Set("key4", svg("4"))

	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be evicted")
	}
	for _, k := range []string{"key2", "key3", "key4"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %s to be in cache", k)
		}
	}
}

func TestChartCache_OverwriteExistingKey(t *testing.T) {
	c := New(5*time.Second, 2)

	c.Set("key1", svg("old"))
	c.Set("key2", svg("x"))
	c.Set("key1", svg("new"))

	got, ok := c.Get("key1")
	if !ok || string(got.Body) != "new" {
		t.Errorf("expected overwritten value, got %v", got)
	}
	if _, ok := c.Get("key2"); !ok {
		t.Error("overwrite must not evict other entries")
	}
}

func TestChartCache_ThreadSafety(t *testing.T) {
	c := New(5*time.Second, 1000)
	tickers := []string{"SSO", "SDS", "TQQQ", "SQQQ"}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			c.Set(MakeKey(tickers[:1+n%4], "svg", 900, 420), svg("data"))
		}(i)
		go func(n int) {
			defer wg.Done()
			c.Get(MakeKey(tickers[:1+n%4], "svg", 900, 420))
		}(i)
	}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.InvalidateTicker(tickers[n%4])
		}(i)
	}
	wg.Wait()
}

func TestMakeKey(t *testing.T) {
	key := MakeKey([]string{"SSO", "SDS"}, "svg", 900, 420)
	expected := "SSO,SDS|svg|900x420"
	if key != expected {
		t.Errorf("expected key %q, got %q", expected, key)
	}
	if MakeKey([]string{"SDS", "SSO"}, "svg", 900, 420) == key {
		t.Error("display order is part of the key")
	}
}

func TestChartCache_MaxEntriesZero(t *testing.T) {
	c := New(5*time.Second, 0)

	c.Set("key1", svg("1"))
	c.Set("key2", svg("2"))

	if c.Len() > 1 {
		t.Errorf("with maxEntries=0, expected at most 1 item, got %d", c.Len())
	}
}
