package holds

// HoldSeatsRequest is the hold-creation payload from the presentation layer
type HoldSeatsRequest struct {
	SeatIDs     []string `json:"seatIds" binding:"required,min=1"`
	UserDetails Contact  `json:"userDetails" binding:"required"`
}
