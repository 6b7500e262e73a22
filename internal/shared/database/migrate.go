package database

import (
	"boxoffice/internal/bookings"
	"boxoffice/internal/holds"
	"boxoffice/internal/seats"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&seats.Seat{},
		&holds.Hold{},
		&holds.HoldSeat{},
		&bookings.PaymentOrder{},
		&bookings.Booking{},
		&bookings.BookedSeat{},
	)
}
