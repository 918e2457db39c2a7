package repository

import (
	"time"

	"github.com/claimdesk/claim-notifier/internal/domain"
)

// NotificationJobModel is the persistence model for the notification_queue table.
type NotificationJobModel struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	ClaimID     string     `gorm:"type:varchar(32);not null"`
	ClaimType   string     `gorm:"type:varchar(20);not null"`
	NewStatus   string     `gorm:"type:varchar(40);not null"`
	PrevStatus  *string    `gorm:"type:varchar(40)"`
	Email       *string    `gorm:"type:varchar(255)"`
	PhoneNumber *string    `gorm:"type:varchar(32)"`
	UserID      *string    `gorm:"type:uuid"`
	Attempts    int        `gorm:"not null;default:0"`
	ProcessedAt *time.Time `gorm:"type:timestamptz"`
	LastError   *string    `gorm:"type:text"`
	LeasedUntil *time.Time `gorm:"type:timestamptz"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (NotificationJobModel) TableName() string {
	return "notification_queue"
}

// DispatchRunModel is the persistence model for dispatch_runs.
type DispatchRunModel struct {
	ID         string  `gorm:"type:uuid;primaryKey"`
	ClaimID    *string `gorm:"type:varchar(32)"`
	Found      int     `gorm:"not null"`
	Processed  int     `gorm:"not null"`
	DurationMS int64   `gorm:"not null"`
	CreatedAt  time.Time
}

func (DispatchRunModel) TableName() string {
	return "dispatch_runs"
}

func jobModelFromDomain(j *domain.NotificationJob) *NotificationJobModel {
	if j == nil {
		return nil
	}

	return &NotificationJobModel{
		ID:          j.ID,
		ClaimID:     j.ClaimID,
		ClaimType:   j.ClaimType,
		NewStatus:   j.NewStatus,
		PrevStatus:  j.PrevStatus,
		Email:       j.Email,
		PhoneNumber: j.PhoneNumber,
		UserID:      j.UserID,
		Attempts:    j.Attempts,
		ProcessedAt: j.ProcessedAt,
		LastError:   j.LastError,
		LeasedUntil: j.LeasedUntil,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func jobModelToDomain(m *NotificationJobModel) *domain.NotificationJob {
	if m == nil {
		return nil
	}

	return &domain.NotificationJob{
		ID:          m.ID,
		ClaimID:     m.ClaimID,
		ClaimType:   m.ClaimType,
		NewStatus:   m.NewStatus,
		PrevStatus:  m.PrevStatus,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		UserID:      m.UserID,
		Attempts:    m.Attempts,
		ProcessedAt: m.ProcessedAt,
		LastError:   m.LastError,
		LeasedUntil: m.LeasedUntil,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func runModelFromDomain(r *domain.DispatchRun) *DispatchRunModel {
	if r == nil {
		return nil
	}

	return &DispatchRunModel{
		ID:         r.ID,
		ClaimID:    r.ClaimID,
		Found:      r.Found,
		Processed:  r.Processed,
		DurationMS: r.DurationMS,
		CreatedAt:  r.CreatedAt,
	}
}

func runModelToDomain(m *DispatchRunModel) *domain.DispatchRun {
	if m == nil {
		return nil
	}

	return &domain.DispatchRun{
		ID:         m.ID,
		ClaimID:    m.ClaimID,
		Found:      m.Found,
		Processed:  m.Processed,
		DurationMS: m.DurationMS,
		CreatedAt:  m.CreatedAt,
	}
}
