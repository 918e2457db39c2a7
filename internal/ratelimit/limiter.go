package ratelimit

import "context"

// RateLimiter bounds outbound provider calls per delivery channel. Allow is
// a single non-blocking check; Wait blocks until budget is available or the
// context ends.
type RateLimiter interface {
	Allow(ctx context.Context, channel string) (bool, error)
	Wait(ctx context.Context, channel string) error
}
