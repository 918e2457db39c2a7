package repository

import (
	"context"
	"time"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"gorm.io/gorm"
)

// QueueRepository is the dispatcher's contract with the notification queue.
//
// A job is pending iff processed_at IS NULL AND attempts < maxAttempts; that
// filter is applied at fetch time, so a job that exhausts its attempts simply
// stops being returned. MarkSuccess is terminal: processed_at is set once and
// never unset.
type QueueRepository interface {
	FetchPending(ctx context.Context, limit int, claimID string) ([]domain.NotificationJob, error)
	FetchExhausted(ctx context.Context, limit int) ([]domain.NotificationJob, error)
	Lease(ctx context.Context, id string, until time.Time) (bool, error)
	MarkSuccess(ctx context.Context, id string) error
	MarkFailure(ctx context.Context, id string, currentAttempts int, detail string) error
}

type GormQueueRepo struct {
	db          *gorm.DB
	maxAttempts int
	now         func() time.Time
}

func NewGormQueueRepo(db *gorm.DB, maxAttempts int) *GormQueueRepo {
	return &GormQueueRepo{
		db:          db,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

func (r *GormQueueRepo) FetchPending(ctx context.Context, limit int, claimID string) ([]domain.NotificationJob, error) {
	query := r.db.WithContext(ctx).
		Where("processed_at IS NULL AND attempts < ?", r.maxAttempts)

	if claimID != "" {
		query = query.Where("claim_id = ?", claimID)
	}

	var models []NotificationJobModel
	err := query.
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.NotificationJob, 0, len(models))
	for i := range models {
		jobs = append(jobs, *jobModelToDomain(&models[i]))
	}

	return jobs, nil
}

func (r *GormQueueRepo) FetchExhausted(ctx context.Context, limit int) ([]domain.NotificationJob, error) {
	var models []NotificationJobModel
	err := r.db.WithContext(ctx).
		Where("processed_at IS NULL AND attempts >= ?", r.maxAttempts).
		Order("created_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]domain.NotificationJob, 0, len(models))
	for i := range models {
		jobs = append(jobs, *jobModelToDomain(&models[i]))
	}

	return jobs, nil
}

// Lease atomically claims a job for one run by stamping leased_until, but
// only when no live lease exists. It reports false when another run holds
// the job. Overlapping invocations therefore duplicate at most the jobs
// fetched before either run leased them.
func (r *GormQueueRepo) Lease(ctx context.Context, id string, until time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&NotificationJobModel{}).
		Where("id = ? AND processed_at IS NULL AND (leased_until IS NULL OR leased_until < ?)", id, r.now()).
		Update("leased_until", until)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormQueueRepo) MarkSuccess(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationJobModel{}).
		Where("id = ? AND processed_at IS NULL", id).
		Updates(map[string]any{
			"processed_at": r.now().UTC(),
			"last_error":   nil,
			"leased_until": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *GormQueueRepo) MarkFailure(ctx context.Context, id string, currentAttempts int, detail string) error {
	result := r.db.WithContext(ctx).
		Model(&NotificationJobModel{}).
		Where("id = ? AND processed_at IS NULL", id).
		Updates(map[string]any{
			"attempts":     currentAttempts + 1,
			"last_error":   detail,
			"leased_until": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}
