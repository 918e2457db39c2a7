package domain

import (
	"fmt"
	"strings"
	"time"
)

// ClaimType categorizes a claim. It drives identifier prefixes and is
// otherwise informational on queue rows.
type ClaimType string

const (
	ClaimTypeGeneral ClaimType = "General"
	ClaimTypeBenefit ClaimType = "Benefit"
)

func (t ClaimType) String() string { return string(t) }

func (t ClaimType) IsValid() bool {
	switch t {
	case ClaimTypeGeneral, ClaimTypeBenefit:
		return true
	}
	return false
}

func ParseClaimTypeFromString(s string) (ClaimType, error) {
	normalized := strings.TrimSpace(s)
	for _, t := range []ClaimType{ClaimTypeGeneral, ClaimTypeBenefit} {
		if strings.EqualFold(normalized, t.String()) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: invalid claim type %q", ErrValidation, s)
}

// NotificationJob is one queued status-change event awaiting delivery.
// Rows are inserted by a database trigger when a claim changes status and
// are only ever mutated by the dispatcher; they are never deleted here.
type NotificationJob struct {
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

// Pending reports whether the job is still eligible for dispatch.
// processed_at is terminal: once set it is never unset.
func (j *NotificationJob) Pending(maxAttempts int) bool {
	if j == nil {
		return false
	}
	return j.ProcessedAt == nil && j.Attempts < maxAttempts
}

// Exhausted reports whether the job ran out of attempts without success.
func (j *NotificationJob) Exhausted(maxAttempts int) bool {
	if j == nil {
		return false
	}
	return j.ProcessedAt == nil && j.Attempts >= maxAttempts
}

func (j *NotificationJob) Validate() error {
	if j == nil {
		return fmt.Errorf("%w: job is required", ErrValidation)
	}
	if strings.TrimSpace(j.ID) == "" {
		return fmt.Errorf("%w: job id is required", ErrValidation)
	}
	if strings.TrimSpace(j.ClaimID) == "" {
		return fmt.Errorf("%w: claim id is required", ErrValidation)
	}
	if strings.TrimSpace(j.NewStatus) == "" {
		return fmt.Errorf("%w: new status is required", ErrValidation)
	}
	if j.Attempts < 0 {
		return fmt.Errorf("%w: attempts must not be negative", ErrValidation)
	}
	return nil
}
