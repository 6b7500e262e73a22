package payments

import "context"

// Order is a gateway-side payment order
type Order struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	Key      string `json:"key"` // publishable key the checkout widget needs
}

// Gateway is the boundary to the external payment provider. It owns no seat
// state; the coordinator never trusts a client-reported payment without the
// verification step.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
	Key() string
}
