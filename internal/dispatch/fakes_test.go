package dispatch

import (
	"context"
	"time"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"github.com/claimdesk/claim-notifier/internal/provider"
)

type fakeQueueRepo struct {
	fetchPendingFn   func(ctx context.Context, limit int, claimID string) ([]domain.NotificationJob, error)
	fetchExhaustedFn func(ctx context.Context, limit int) ([]domain.NotificationJob, error)
	leaseFn          func(ctx context.Context, id string, until time.Time) (bool, error)
	markSuccessFn    func(ctx context.Context, id string) error
	markFailureFn    func(ctx context.Context, id string, currentAttempts int, detail string) error
}

func (f *fakeQueueRepo) FetchPending(ctx context.Context, limit int, claimID string) ([]domain.NotificationJob, error) {
	if f.fetchPendingFn == nil {
		return nil, nil
	}
	return f.fetchPendingFn(ctx, limit, claimID)
}

func (f *fakeQueueRepo) FetchExhausted(ctx context.Context, limit int) ([]domain.NotificationJob, error) {
	if f.fetchExhaustedFn == nil {
		return nil, nil
	}
	return f.fetchExhaustedFn(ctx, limit)
}

func (f *fakeQueueRepo) Lease(ctx context.Context, id string, until time.Time) (bool, error) {
	if f.leaseFn == nil {
		return true, nil
	}
	return f.leaseFn(ctx, id, until)
}

func (f *fakeQueueRepo) MarkSuccess(ctx context.Context, id string) error {
	if f.markSuccessFn == nil {
		return nil
	}
	return f.markSuccessFn(ctx, id)
}

func (f *fakeQueueRepo) MarkFailure(ctx context.Context, id string, currentAttempts int, detail string) error {
	if f.markFailureFn == nil {
		return nil
	}
	return f.markFailureFn(ctx, id, currentAttempts, detail)
}

type fakeRunRepo struct {
	createFn func(ctx context.Context, run *domain.DispatchRun) error
}

func (f *fakeRunRepo) Create(ctx context.Context, run *domain.DispatchRun) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, run)
}

func (f *fakeRunRepo) ListRecent(ctx context.Context, limit int) ([]domain.DispatchRun, error) {
	return nil, nil
}

type fakeEmailSender struct {
	sendFn func(ctx context.Context, to, subject, htmlBody string) provider.Outcome
}

func (f *fakeEmailSender) Send(ctx context.Context, to, subject, htmlBody string) provider.Outcome {
	if f.sendFn == nil {
		return provider.Sent(200)
	}
	return f.sendFn(ctx, to, subject, htmlBody)
}

type fakeSMSSender struct {
	sendFn func(ctx context.Context, to, body string) provider.Outcome
}

func (f *fakeSMSSender) Send(ctx context.Context, to, body string) provider.Outcome {
	if f.sendFn == nil {
		return provider.Sent(201)
	}
	return f.sendFn(ctx, to, body)
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, channel string) (bool, error)
	waitFn  func(ctx context.Context, channel string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, channel string) (bool, error) {
	if f.allowFn == nil {
		return true, nil
	}
	return f.allowFn(ctx, channel)
}

func (f *fakeRateLimiter) Wait(ctx context.Context, channel string) error {
	if f.waitFn == nil {
		return nil
	}
	return f.waitFn(ctx, channel)
}
