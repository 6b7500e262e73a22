package seats

import (
	"time"

	"github.com/google/uuid"
)

// Seat defines the structure for individual seats of the showing
type Seat struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SeatNumber string     `gorm:"unique;not null" json:"seat_number"`
	Price      int64      `gorm:"not null" json:"price"` // minor currency units
	Status     Status     `gorm:"type:varchar(20);check:status IN ('AVAILABLE', 'HELD', 'BOOKED');default:'AVAILABLE'" json:"status"`
	HoldID     *uuid.UUID `gorm:"type:uuid;index" json:"hold_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

func (s *Seat) IsAvailable() bool {
	return s.Status == StatusAvailable
}

func (s *Seat) IsHeld() bool {
	return s.Status == StatusHeld
}

func (s *Seat) IsBooked() bool {
	return s.Status == StatusBooked
}

// HeldBy reports whether the seat is currently held under the given hold
func (s *Seat) HeldBy(holdID uuid.UUID) bool {
	return s.Status == StatusHeld && s.HoldID != nil && *s.HoldID == holdID
}

// ToResponse converts a Seat to the wire representation
func (s *Seat) ToResponse() SeatResponse {
	return SeatResponse{
		ID:         s.ID.String(),
		SeatNumber: s.SeatNumber,
		Status:     s.Status.String(),
		Price:      s.Price,
	}
}
