package holds

import (
	"time"

	"github.com/google/uuid"
)

// Contact is the buyer snapshot captured at hold time. It never changes for
// the lifetime of the hold, so a buyer editing their details mid-checkout
// cannot alter an in-flight transaction.
type Contact struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,min=7,max=20"`
}

// Hold is a time-bounded exclusive claim on a set of seats
type Hold struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CustomerName  string    `gorm:"not null" json:"customer_name"`
	CustomerEmail string    `gorm:"not null" json:"customer_email"`
	CustomerPhone string    `gorm:"not null" json:"customer_phone"`
	Status        Status    `gorm:"type:varchar(20);check:status IN ('ACTIVE', 'CONFIRMED', 'EXPIRED', 'CANCELLED');default:'ACTIVE'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `gorm:"index;not null" json:"expires_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Seats []HoldSeat `json:"seats,omitempty" gorm:"foreignKey:HoldID;constraint:OnDelete:CASCADE;"`
}

// HoldSeat links a hold to one of its seats
type HoldSeat struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	HoldID uuid.UUID `gorm:"type:uuid;index;not null" json:"hold_id"`
	SeatID uuid.UUID `gorm:"type:uuid;index;not null" json:"seat_id"`
}

// TableName sets the table name for Hold
func (Hold) TableName() string {
	return "holds"
}

// TableName sets the table name for HoldSeat
func (HoldSeat) TableName() string {
	return "hold_seats"
}

// SeatIDs returns the ids of every seat claimed by the hold
func (h *Hold) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(h.Seats))
	for _, hs := range h.Seats {
		ids = append(ids, hs.SeatID)
	}
	return ids
}

// Contact returns the buyer snapshot
func (h *Hold) Contact() Contact {
	return Contact{
		Name:  h.CustomerName,
		Email: h.CustomerEmail,
		Phone: h.CustomerPhone,
	}
}

func (h *Hold) IsActive() bool {
	return h.Status == StatusActive
}

// ExpiredAt reports whether the hold's TTL had elapsed at the given instant
func (h *Hold) ExpiredAt(t time.Time) bool {
	return !t.Before(h.ExpiresAt)
}
