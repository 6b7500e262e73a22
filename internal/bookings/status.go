package bookings

// OrderStatus tracks a payment order through its lifecycle
type OrderStatus string

const (
	OrderCreated OrderStatus = "CREATED"
	OrderPaid    OrderStatus = "PAID"
	OrderFailed  OrderStatus = "FAILED"
)

// IsOpen reports whether the order still blocks a new one for its hold.
// A FAILED order does not; the buyer may retry with a fresh order.
func (s OrderStatus) IsOpen() bool {
	return s == OrderCreated || s == OrderPaid
}
