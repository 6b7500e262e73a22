package bookings

// CreateOrderRequest is the pre-checkout payload. HoldIDs is an array for
// contract compatibility; one hold backs one order.
type CreateOrderRequest struct {
	Amount  int64    `json:"amount" binding:"required,gt=0"`
	HoldIDs []string `json:"holdIds" binding:"required,min=1"`
}

// ConfirmPaymentRequest echoes the gateway checkout result back
type ConfirmPaymentRequest struct {
	HoldIDs   []string `json:"holdIds" binding:"required,min=1"`
	OrderID   string   `json:"orderId" binding:"required"`
	PaymentID string   `json:"paymentId" binding:"required"`
	Signature string   `json:"signature" binding:"required"`
}
