package gifcache

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	c, err := New(fmt.Sprintf("redis://%s/0", mr.Addr()), time.Minute)
	if err != nil {
		t.Fatalf("gifcache.New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestGetMissReturnsNil(t *testing.T) {
	c, _ := newTestCache(t)
	got, err := c.Get(context.Background(), Key("absent"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Fatalf("miss should yield nil, got %d bytes", len(got))
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	key := Key("game", "e2e4 e7e5", "flip=false")
	payload := []byte("GIF89a\x00\x01\x02")
	if err := c.Set(ctx, key, payload); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got % x", got)
	}
}

func TestSetAppliesTTL(t *testing.T) {
	c, mr := newTestCache(t)
	key := Key("expiring")
	if err := c.Set(context.Background(), key, []byte("x")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mr.TTL(key) != time.Minute {
		t.Fatalf("ttl = %v, want 1m", mr.TTL(key))
	}
	mr.FastForward(2 * time.Minute)
	got, err := c.Get(context.Background(), key)
	if err != nil || got != nil {
		t.Fatalf("expired entry should miss: %v %v", got, err)
	}
}

func TestKeyStableAndSeparating(t *testing.T) {
	if Key("a", "b") != Key("a", "b") {
		t.Fatalf("key not stable")
	}
	// The separator keeps ("ab","c") distinct from ("a","bc").
	if Key("ab", "c") == Key("a", "bc") {
		t.Fatalf("key concatenation ambiguity")
	}
	if !strings.HasPrefix(Key("a"), "gif:") {
		t.Fatalf("key namespace missing: %q", Key("a"))
	}
	if len(Key("a")) != len("gif:")+32 {
		t.Fatalf("key length = %d", len(Key("a")))
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("not-a-url", time.Minute); err == nil {
		t.Fatalf("bad url should fail")
	}
}
