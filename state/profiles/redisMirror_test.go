package profiles

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sasha-s/go-deadlock"
)

func newTestMirror(t *testing.T) *RedisMirror {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisMirror(rdb, time.Hour)
}

func TestRedisMirrorKeepsNewest(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	if _, ok, err := m.Load(ctx, alice); ok || err != nil {
		t.Fatalf("expected empty mirror, got ok=%v err=%v", ok, err)
	}
	steps := []struct {
		picture string
		ts      int64
		want    string
	}{
		{"https://example.com/2.png", 2, "https://example.com/2.png"},
		{"https://example.com/1.png", 1, "https://example.com/2.png"},
		{"https://example.com/same.png", 2, "https://example.com/2.png"},
		{"https://example.com/3.png", 3, "https://example.com/3.png"},
	}
	for _, s := range steps {
		if err := m.Store(ctx, alice, profileAt(s.picture, s.ts)); err != nil {
			t.Fatalf("Store(%d): %v", s.ts, err)
		}
		p, ok, err := m.Load(ctx, alice)
		if err != nil || !ok || p.Profile.Picture != s.want {
			t.Fatalf("after Store(%d): got %+v ok=%v err=%v", s.ts, p, ok, err)
		}
	}
}

func TestRedisMirrorConcurrentStores(t *testing.T) {
	m := newTestMirror(t)
	ctx := context.Background()
	const n = 20
	wg := &deadlock.WaitGroup{}
	for i := int64(1); i <= n; i++ {
		wg.Add(1)
		go func(ts int64) {
			defer wg.Done()
			if err := m.Store(ctx, alice, profileAt("https://example.com/p.png", ts)); err != nil {
				t.Errorf("Store(%d): %v", ts, err)
			}
		}(i)
	}
	wg.Wait()
	p, ok, err := m.Load(ctx, alice)
	if err != nil || !ok || p.Timestamp != n {
		t.Fatalf("expected newest timestamp %d, got %+v ok=%v err=%v", n, p, ok, err)
	}
}
