package seats

// CreateSeatsRequest creates seats in bulk at the default price
type CreateSeatsRequest struct {
	SeatNumbers []string `json:"seatNumbers" binding:"required,min=1,dive,required"`
}
