package bookings

import "time"

// BookingResponse is the read model for a settled booking
type BookingResponse struct {
	ID            string    `json:"id"`
	OrderRef      string    `json:"orderRef"`
	PaymentRef    string    `json:"paymentRef"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	SeatIDs       []string  `json:"seatIds"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	BookedAt      time.Time `json:"bookedAt"`
}

// ToResponse converts a booking to its read model
func (b *Booking) ToResponse() BookingResponse {
	seatIDs := make([]string, 0, len(b.Seats))
	for _, s := range b.Seats {
		seatIDs = append(seatIDs, s.SeatID.String())
	}
	return BookingResponse{
		ID:            b.ID.String(),
		OrderRef:      b.OrderRef,
		PaymentRef:    b.PaymentRef,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		SeatIDs:       seatIDs,
		Amount:        b.Amount,
		Currency:      b.Currency,
		BookedAt:      b.BookedAt,
	}
}
