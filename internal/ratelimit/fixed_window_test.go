package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestFixedWindowLimiterRedis(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 2, time.Minute)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	defer limiter.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "ip-1")
		if err != nil || !ok {
			t.Fatalf("request %d should pass, got ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := limiter.Allow(ctx, "ip-1"); ok {
		t.Fatalf("third request should be blocked")
	}
	if ok, err := limiter.Allow(ctx, "ip-2"); err != nil || !ok {
		t.Fatalf("other keys keep their own quota, got ok=%v err=%v", ok, err)
	}
}

func TestFixedWindowLimiterReportsRedisErrors(t *testing.T) {
	redis := miniredis.RunT(t)
	limiter, err := NewRedisFixedWindowLimiter(redis.Addr(), "", "test:ratelimit", 1, time.Second)
	if err != nil {
		t.Fatalf("new redis limiter: %v", err)
	}
	defer limiter.Close()
	redis.Close()

	ok, err := limiter.Allow(context.Background(), "ip-1")
	if ok || err == nil {
		t.Fatalf("expected ok=false with error, got ok=%v err=%v", ok, err)
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var limiter *FixedWindowLimiter
	if ok, err := limiter.Allow(context.Background(), "ip-1"); !ok || err != nil {
		t.Fatalf("nil limiter should allow, got ok=%v err=%v", ok, err)
	}
}

func TestFixedWindowLimiterRequiresRedisAddr(t *testing.T) {
	limiter, err := NewRedisFixedWindowLimiter("", "", "test:ratelimit", 1, time.Second)
	if err == nil || limiter != nil {
		t.Fatalf("expected constructor error for empty redis addr")
	}
}
