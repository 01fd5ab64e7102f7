package cache

import (
	"testing"
	"time"

	"github.com/trackshare/trackauth/internal/cache/memory"
	"github.com/trackshare/trackauth/internal/cache/redis"
)

func TestNew_MemoryRoundTrip(t *testing.T) {
	t.Parallel()
	c := New(Config{Kind: "memory", DefaultTTL: time.Minute})
	if _, ok := c.(*memory.Mem); !ok {
		t.Fatalf("backend = %T", c)
	}

	if err := c.Set("k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, ok)
	}
	if err := c.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatal("key survived Delete")
	}
}

func TestNew_UnknownKindFallsToMemory(t *testing.T) {
	t.Parallel()
	if _, ok := New(Config{Kind: "flatfile"}).(*memory.Mem); !ok {
		t.Fatal("unknown kind should fall back to memory")
	}
}

func TestNew_Redis(t *testing.T) {
	t.Parallel()
	// Sólo construcción: el client no conecta hasta el primer uso.
	c := New(Config{Kind: "redis", Addr: "localhost:6379", Prefix: "t:"})
	if _, ok := c.(*redis.Cache); !ok {
		t.Fatalf("backend = %T", c)
	}
}
