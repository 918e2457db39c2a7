package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"github.com/claimdesk/claim-notifier/internal/observability"
	"github.com/claimdesk/claim-notifier/internal/provider"
	"github.com/claimdesk/claim-notifier/internal/ratelimit"
	"github.com/claimdesk/claim-notifier/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultBatchLimit = 50
	defaultLeaseTTL   = 60 * time.Second

	channelEmail = "email"
	channelSMS   = "sms"
)

// JobResult reports one queue job's outcome within a batch.
type JobResult struct {
	ID          string            `json:"id"`
	ClaimID     string            `json:"claim_id"`
	EmailResult *provider.Outcome `json:"email_result,omitempty"`
	SMSResult   *provider.Outcome `json:"sms_result,omitempty"`
	Error       string            `json:"error,omitempty"`
	Success     bool              `json:"success"`
}

// BatchResult summarizes one dispatcher invocation.
type BatchResult struct {
	Found     int         `json:"found"`
	Processed int         `json:"processed"`
	Results   []JobResult `json:"results"`
}

// Dispatcher drains one bounded batch of pending notification jobs per Run.
// Channels fail or succeed independently, but the job is retried as a unit:
// any failed channel routes the whole job to MarkFailure, which means an
// already-delivered email may be re-sent on the next attempt. That trade-off
// is inherited deliberately; the alternative would need per-channel delivery
// state on the queue row.
type Dispatcher struct {
	queue      repository.QueueRepository
	runs       repository.RunRepository
	email      provider.EmailSender
	sms        provider.SMSSender
	limiter    ratelimit.RateLimiter
	logger     *zap.Logger
	metrics    *observability.Metrics
	batchLimit int
	leaseTTL   time.Duration
	now        func() time.Time
}

func NewDispatcher(
	queue repository.QueueRepository,
	runs repository.RunRepository,
	email provider.EmailSender,
	sms provider.SMSSender,
	limiter ratelimit.RateLimiter,
	batchLimit int,
	leaseTTL time.Duration,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if queue == nil {
		return nil, fmt.Errorf("queue repository is required")
	}
	if email == nil || sms == nil {
		return nil, fmt.Errorf("email and sms senders are required")
	}
	if batchLimit < 1 {
		batchLimit = defaultBatchLimit
	}
	if leaseTTL <= 0 {
		leaseTTL = defaultLeaseTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		queue:      queue,
		runs:       runs,
		email:      email,
		sms:        sms,
		limiter:    limiter,
		logger:     logger,
		batchLimit: batchLimit,
		leaseTTL:   leaseTTL,
		now:        time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Run executes one batch pass. claimID, when non-empty, scopes the batch to a
// single claim (manual re-trigger). Per-job failures are isolated: they are
// recorded and the batch continues. Only batch setup failure (queue
// unreachable) returns an error.
func (d *Dispatcher) Run(ctx context.Context, claimID string) (*BatchResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := d.now()

	jobs, err := d.queue.FetchPending(ctx, d.batchLimit, strings.TrimSpace(claimID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending jobs: %w", err)
	}

	scope := "full"
	if strings.TrimSpace(claimID) != "" {
		scope = "claim"
	}
	d.metrics.IncDispatchRun(scope)
	d.metrics.ObserveBatchFound(len(jobs))

	result := &BatchResult{
		Found:   len(jobs),
		Results: make([]JobResult, 0, len(jobs)),
	}

	for i := range jobs {
		jobResult := d.processJob(ctx, jobs[i])
		if jobResult.Success {
			result.Processed++
			d.metrics.IncJobResult("success")
		} else if jobResult.Error == leasedError {
			d.metrics.IncJobResult("leased")
		} else {
			d.metrics.IncJobResult("failure")
		}
		result.Results = append(result.Results, jobResult)
	}

	d.recordRun(ctx, claimID, result, d.now().Sub(start))

	return result, nil
}

const leasedError = "job is leased by a concurrent run"

func (d *Dispatcher) processJob(ctx context.Context, job domain.NotificationJob) JobResult {
	result := JobResult{ID: job.ID, ClaimID: job.ClaimID}

	leased, err := d.queue.Lease(ctx, job.ID, d.now().Add(d.leaseTTL))
	if err != nil {
		return d.failJob(ctx, job, result, fmt.Sprintf("lease failed: %v", err))
	}
	if !leased {
		d.logger.Info("skipping job held by another run",
			zap.String("jobId", job.ID),
			zap.String("claimId", job.ClaimID),
		)
		result.Error = leasedError
		return result
	}

	emailOutcome := d.sendEmail(ctx, job)
	smsOutcome := d.sendSMS(ctx, job)

	result.EmailResult = &emailOutcome
	result.SMSResult = &smsOutcome
	d.metrics.IncChannelOutcome(channelEmail, string(emailOutcome.State))
	d.metrics.IncChannelOutcome(channelSMS, string(smsOutcome.State))

	// Any failed channel fails the job as a unit.
	if emailOutcome.IsFailed() || smsOutcome.IsFailed() {
		detail := fmt.Sprintf("[Email] %s , [SMS] %s", emailOutcome.Summary(), smsOutcome.Summary())
		return d.failJob(ctx, job, result, detail)
	}

	if err := d.queue.MarkSuccess(ctx, job.ID); err != nil {
		d.logger.Error("failed to mark job success",
			zap.String("jobId", job.ID),
			zap.Error(err),
		)
		result.Error = fmt.Sprintf("mark success failed: %v", err)
		return result
	}

	d.logger.Info("job processed",
		zap.String("jobId", job.ID),
		zap.String("claimId", job.ClaimID),
		zap.String("email", string(emailOutcome.State)),
		zap.String("sms", string(smsOutcome.State)),
	)

	result.Success = true
	return result
}

func (d *Dispatcher) sendEmail(ctx context.Context, job domain.NotificationJob) provider.Outcome {
	if job.Email == nil || strings.TrimSpace(*job.Email) == "" {
		return provider.Skipped("no email address")
	}

	if err := d.wait(ctx, channelEmail); err != nil {
		return provider.Failed(0, fmt.Sprintf("rate limiter wait failed: %v", err))
	}

	start := d.now()
	outcome := d.email.Send(ctx, strings.TrimSpace(*job.Email), Subject(job.ClaimID, job.NewStatus), EmailBody(job))
	d.metrics.ObserveChannelSendDuration(channelEmail, d.now().Sub(start))

	return outcome
}

func (d *Dispatcher) sendSMS(ctx context.Context, job domain.NotificationJob) provider.Outcome {
	to, ok := NormalizePhone(job.PhoneNumber)
	if !ok {
		return provider.Skipped("no valid phone number")
	}

	if err := d.wait(ctx, channelSMS); err != nil {
		return provider.Failed(0, fmt.Sprintf("rate limiter wait failed: %v", err))
	}

	start := d.now()
	outcome := d.sms.Send(ctx, to, SMSBody(job))
	d.metrics.ObserveChannelSendDuration(channelSMS, d.now().Sub(start))

	return outcome
}

func (d *Dispatcher) wait(ctx context.Context, channel string) error {
	if d.limiter == nil {
		return nil
	}
	return d.limiter.Wait(ctx, channel)
}

func (d *Dispatcher) failJob(ctx context.Context, job domain.NotificationJob, result JobResult, detail string) JobResult {
	if err := d.queue.MarkFailure(ctx, job.ID, job.Attempts, detail); err != nil {
		d.logger.Error("failed to mark job failure",
			zap.String("jobId", job.ID),
			zap.Error(err),
		)
	}

	d.logger.Warn("job failed",
		zap.String("jobId", job.ID),
		zap.String("claimId", job.ClaimID),
		zap.Int("attempt", job.Attempts+1),
		zap.String("detail", detail),
	)

	result.Error = detail
	return result
}

func (d *Dispatcher) recordRun(ctx context.Context, claimID string, result *BatchResult, elapsed time.Duration) {
	if d.runs == nil {
		return
	}

	run := &domain.DispatchRun{
		ID:         uuid.NewString(),
		Found:      result.Found,
		Processed:  result.Processed,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  d.now().UTC(),
	}
	if trimmed := strings.TrimSpace(claimID); trimmed != "" {
		run.ClaimID = &trimmed
	}

	if err := d.runs.Create(ctx, run); err != nil {
		d.logger.Error("failed to record dispatch run", zap.Error(err))
	}
}
