package redisx

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestLockerExclusiveUntilReleased(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLocker(rdb)
	ctx := context.Background()

	tok, ok, err := l.Acquire(ctx, "generation:lock:2026-03-14", 20*time.Minute)
	if err != nil || !ok || tok == "" {
		t.Fatalf("first acquire: tok=%q ok=%v err=%v", tok, ok, err)
	}
	if ttl := mr.TTL("generation:lock:2026-03-14"); ttl != 20*time.Minute {
		t.Fatalf("ttl: want=20m got=%v", ttl)
	}
	if _, ok, err := l.Acquire(ctx, "generation:lock:2026-03-14", time.Minute); err != nil || ok {
		t.Fatalf("second acquire: ok=%v err=%v", ok, err)
	}

	// A stale holder must not delete a lock it no longer owns.
	if err := l.Release(ctx, "generation:lock:2026-03-14", "someone-else"); err != nil {
		t.Fatalf("foreign release: %v", err)
	}
	if !mr.Exists("generation:lock:2026-03-14") {
		t.Fatalf("foreign release deleted the lock")
	}

	if err := l.Release(ctx, "generation:lock:2026-03-14", tok); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, ok, _ := l.Acquire(ctx, "generation:lock:2026-03-14", time.Minute); !ok {
		t.Fatalf("acquire after release failed")
	}
}

func TestLockerExpires(t *testing.T) {
	mr, rdb := newRedis(t)
	l := NewLocker(rdb)
	ctx := context.Background()

	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); !ok {
		t.Fatalf("acquire failed")
	}
	mr.FastForward(2 * time.Minute)
	if _, ok, _ := l.Acquire(ctx, "k", time.Minute); !ok {
		t.Fatalf("expired lock should be acquirable")
	}
}

func TestLockerSurfacesConnectionErrors(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	if _, _, err := NewLocker(rdb).Acquire(context.Background(), "k", time.Minute); err == nil {
		t.Fatalf("want error with redis down")
	}
}

func TestHashCache(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewHashCache(rdb)
	ctx := context.Background()

	if hit, err := c.Exists(ctx, "abc"); err != nil || hit {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}
	if err := c.Remember(ctx, []string{"abc", "def"}, 30*24*time.Hour); err != nil {
		t.Fatalf("Remember: %v", err)
	}
	if hit, err := c.Exists(ctx, "def"); err != nil || !hit {
		t.Fatalf("after remember: hit=%v err=%v", hit, err)
	}
	if ttl := mr.TTL("qhash:abc"); ttl != 30*24*time.Hour {
		t.Fatalf("hash ttl: %v", ttl)
	}
	if err := c.Remember(ctx, nil, time.Hour); err != nil {
		t.Fatalf("empty Remember: %v", err)
	}
}

func TestPaperCache(t *testing.T) {
	_, rdb := newRedis(t)
	c := NewPaperCache(rdb)
	ctx := context.Background()

	type payload struct {
		Date  string `json:"date"`
		Count int    `json:"count"`
	}
	var got payload
	if hit, err := c.Get(ctx, "2026-03-14", &got); err != nil || hit {
		t.Fatalf("miss: hit=%v err=%v", hit, err)
	}
	if err := c.Set(ctx, "2026-03-14", payload{Date: "2026-03-14", Count: 100}, 24*time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if hit, err := c.Get(ctx, "2026-03-14", &got); err != nil || !hit || got.Count != 100 {
		t.Fatalf("hit: hit=%v got=%+v err=%v", hit, got, err)
	}
	if err := c.Invalidate(ctx, "2026-03-14"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if hit, _ := c.Get(ctx, "2026-03-14", &got); hit {
		t.Fatalf("entry survived invalidation")
	}
}
