package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limitPerSec int64, nowFn func() time.Time, sleepFn func(ctx context.Context, d time.Duration) error) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run() error = %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter, err := newRedisRateLimiter(rdb, limitPerSec, nowFn, sleepFn)
	if err != nil {
		t.Fatalf("newRedisRateLimiter() error = %v", err)
	}
	return limiter, mr
}

func TestRedisRateLimiterAllowWithinWindow(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	limiter, mr := newTestLimiter(t, 2, func() time.Time { return now }, sleepWithContext)

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(context.Background(), "email")
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !allowed {
			t.Fatalf("call %d should fit the window", i+1)
		}
	}

	allowed, err := limiter.Allow(context.Background(), "email")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("call over the window limit should be rejected")
	}

	// The counter key is namespaced per channel and per second.
	wantKey := fmt.Sprintf("%s:email:%d", keyPrefix, now.UTC().Unix())
	if !mr.Exists(wantKey) {
		t.Fatalf("counter key %q was not written, keys = %v", wantKey, mr.Keys())
	}

	now = now.Add(time.Second)
	allowed, err = limiter.Allow(context.Background(), "email")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("the next second opens a fresh window")
	}
}

func TestRedisRateLimiterChannelsAreIndependent(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_100, 0)
	limiter, _ := newTestLimiter(t, 1, func() time.Time { return now }, sleepWithContext)

	allowed, err := limiter.Allow(context.Background(), "sms")
	if err != nil {
		t.Fatalf("Allow(sms) error = %v", err)
	}
	if !allowed {
		t.Fatal("sms first request should be allowed")
	}

	allowed, err = limiter.Allow(context.Background(), "email")
	if err != nil {
		t.Fatalf("Allow(email) error = %v", err)
	}
	if !allowed {
		t.Fatal("email budget must not be consumed by sms traffic")
	}

	allowed, err = limiter.Allow(context.Background(), "SMS")
	if err != nil {
		t.Fatalf("Allow(SMS) error = %v", err)
	}
	if allowed {
		t.Fatal("channel names are case-insensitive, second sms request should be rejected")
	}
}

func TestRedisRateLimiterAllowRejectsEmptyChannel(t *testing.T) {
	t.Parallel()

	limiter, _ := newTestLimiter(t, 1, time.Now, sleepWithContext)

	if _, err := limiter.Allow(context.Background(), "   "); err == nil {
		t.Fatal("Allow() should reject a blank channel")
	}
}

func TestRedisRateLimiterWaitBlocksUntilNextWindow(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_200, 0)
	sleepCalls := 0
	limiter, _ := newTestLimiter(t, 1,
		func() time.Time { return now },
		func(ctx context.Context, d time.Duration) error {
			sleepCalls++
			if sleepCalls == 1 {
				now = now.Add(time.Second)
			}
			return nil
		},
	)

	allowed, err := limiter.Allow(context.Background(), "sms")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("expected first call to be allowed")
	}

	if err := limiter.Wait(context.Background(), "sms"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if sleepCalls == 0 {
		t.Fatal("expected Wait() to sleep at least once")
	}
}

func TestRedisRateLimiterWaitHonorsContextDeadline(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_300, 0)
	limiter, _ := newTestLimiter(t, 1, func() time.Time { return now }, sleepWithContext)

	allowed, err := limiter.Allow(context.Background(), "sms")
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if !allowed {
		t.Fatal("expected first call to be allowed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	err = limiter.Wait(ctx, "sms")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() error = %v, want %v", err, context.DeadlineExceeded)
	}
}
