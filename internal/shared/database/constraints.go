package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds constraints AutoMigrate cannot express
func MigrateConstraints(db *gorm.DB) error {
	// A seat can appear in at most one booking, ever
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS unique_booked_seat
		ON booked_seats (seat_id);
	`).Error
	if err != nil {
		return err
	}

	// Speeds up the restart reload of ACTIVE holds and the expiry sweep
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_holds_status_expires_at
		ON holds (status, expires_at);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
