package repository

import (
	"context"

	"github.com/claimdesk/claim-notifier/internal/domain"
	"gorm.io/gorm"
)

type RunRepository interface {
	Create(ctx context.Context, run *domain.DispatchRun) error
	ListRecent(ctx context.Context, limit int) ([]domain.DispatchRun, error)
}

type GormRunRepo struct {
	db *gorm.DB
}

func NewGormRunRepo(db *gorm.DB) *GormRunRepo {
	return &GormRunRepo{db: db}
}

func (r *GormRunRepo) Create(ctx context.Context, run *domain.DispatchRun) error {
	model := runModelFromDomain(run)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if run != nil {
		*run = *runModelToDomain(model)
	}
	return nil
}

func (r *GormRunRepo) ListRecent(ctx context.Context, limit int) ([]domain.DispatchRun, error) {
	var models []DispatchRunModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	runs := make([]domain.DispatchRun, 0, len(models))
	for i := range models {
		runs = append(runs, *runModelToDomain(&models[i]))
	}

	return runs, nil
}
