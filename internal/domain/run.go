package domain

import "time"

// DispatchRun records one completed dispatcher invocation for audit.
type DispatchRun struct {
	ID         string  `gorm:"type:uuid;primaryKey"`
	ClaimID    *string `gorm:"type:varchar(32)"`
	Found      int     `gorm:"not null"`
	Processed  int     `gorm:"not null"`
	DurationMS int64   `gorm:"not null"`
	CreatedAt  time.Time
}
