package seats

// SeatResponse is the seat representation consumed by the presentation layer
type SeatResponse struct {
	ID         string `json:"id"`
	SeatNumber string `json:"seatNumber"`
	Status     string `json:"status"`
	Price      int64  `json:"price"`
}
