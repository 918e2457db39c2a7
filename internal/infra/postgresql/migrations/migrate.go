package migrations

import (
	"github.com/claimdesk/claim-notifier/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_notification_queue",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.NotificationJobModel{}); err != nil {
					return err
				}
				// Partial index keeps dispatch scans off processed rows.
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_queue_pending ON notification_queue (created_at) WHERE processed_at IS NULL`,
					`CREATE INDEX IF NOT EXISTS idx_queue_claim_id ON notification_queue (claim_id)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.NotificationJobModel{})
			},
		},
		{
			ID: "000002_create_dispatch_runs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&repository.DispatchRunModel{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.DispatchRunModel{})
			},
		},
	})

	return m.Migrate()
}
