package bookings

import (
	"time"

	"github.com/google/uuid"
)

// PaymentOrder is the engine's record of a gateway order raised for a hold.
// The gateway order id is the reference the client echoes back on confirm.
type PaymentOrder struct {
	ID             uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	HoldID         uuid.UUID   `json:"hold_id" gorm:"type:uuid;not null;index"`
	GatewayOrderID string      `json:"gateway_order_id" gorm:"uniqueIndex;not null"`
	Amount         int64       `json:"amount" gorm:"not null"` // minor currency units
	Currency       string      `json:"currency" gorm:"not null"`
	Status         OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:'CREATED'"`
	FailureReason  string      `json:"failure_reason,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// Booking is the immutable record written once payment is verified and the
// seats flip to BOOKED. It never transitions afterwards.
type Booking struct {
	ID            uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	HoldID        uuid.UUID    `json:"hold_id" gorm:"type:uuid;not null;uniqueIndex"`
	OrderRef      string       `json:"order_ref" gorm:"not null"`
	PaymentRef    string       `json:"payment_ref" gorm:"uniqueIndex;not null"`
	CustomerName  string       `json:"customer_name" gorm:"not null"`
	CustomerEmail string       `json:"customer_email" gorm:"not null"`
	CustomerPhone string       `json:"customer_phone" gorm:"not null"`
	Amount        int64        `json:"amount" gorm:"not null"`
	Currency      string       `json:"currency" gorm:"not null"`
	Seats         []BookedSeat `json:"seats" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	BookedAt      time.Time    `json:"booked_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookedSeat pins one seat to a booking
type BookedSeat struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `json:"booking_id" gorm:"type:uuid;not null;index"`
	SeatID    uuid.UUID `json:"seat_id" gorm:"type:uuid;not null;index"`
}

func (BookedSeat) TableName() string {
	return "booked_seats"
}

// SeatIDs returns the booked seat ids in stored order
func (b *Booking) SeatIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.SeatID)
	}
	return ids
}
