package bookings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"boxoffice/internal/holds"
	"boxoffice/internal/notifications"
	"boxoffice/internal/payments"
	"boxoffice/internal/seats"
	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

var (
	// ErrOrderNotFound is returned when the confirmed order reference does
	// not match any payment order
	ErrOrderNotFound = fmt.Errorf("payment order not found")

	// ErrOrderNotPayable is returned when the referenced order has already
	// failed and cannot be confirmed
	ErrOrderNotPayable = fmt.Errorf("payment order is not payable")

	// ErrPaymentVerification is returned when the gateway signature does not
	// check out. The hold is left untouched so the buyer can retry within
	// the TTL.
	ErrPaymentVerification = fmt.Errorf("payment verification failed")

	// ErrBookingNotFound is returned for an unknown booking id
	ErrBookingNotFound = fmt.Errorf("booking not found")
)

// AmountMismatchError reports a client-quoted total that disagrees with the
// authoritative sum of the held seats' prices
type AmountMismatchError struct {
	Expected int64
	Got      int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("amount mismatch: expected %d, got %d", e.Expected, e.Got)
}

// ConfirmPaymentInput carries the gateway callback fields the client echoes
// back after checkout
type ConfirmPaymentInput struct {
	HoldID    uuid.UUID
	OrderRef  string
	PaymentID string
	Signature string
}

// Service coordinates the two-phase booking flow: raise a gateway payment
// order against an active hold, then on verified payment flip the hold to
// CONFIRMED and the seats to BOOKED and cut the immutable booking record.
// Orders and bookings live in memory as the authoritative copy with the
// repository as a write-through mirror.
type Service struct {
	mu            sync.Mutex
	orders        map[uuid.UUID]*PaymentOrder
	ordersByRef   map[string]uuid.UUID
	bookings      map[uuid.UUID]*Booking
	byPaymentRef  map[string]uuid.UUID
	bookingByHold map[uuid.UUID]uuid.UUID

	manager   *holds.Manager
	inventory *seats.Inventory
	gateway   payments.Gateway
	repo      Repository // optional durability mirror
	events    notifications.Producer
	currency  string
}

func NewService(manager *holds.Manager, inventory *seats.Inventory, gateway payments.Gateway, repo Repository, events notifications.Producer, currency string) *Service {
	return &Service{
		orders:        make(map[uuid.UUID]*PaymentOrder),
		ordersByRef:   make(map[string]uuid.UUID),
		bookings:      make(map[uuid.UUID]*Booking),
		byPaymentRef:  make(map[string]uuid.UUID),
		bookingByHold: make(map[uuid.UUID]uuid.UUID),
		manager:       manager,
		inventory:     inventory,
		gateway:       gateway,
		repo:          repo,
		events:        events,
		currency:      currency,
	}
}

// Load restores orders and bookings from the repository after a restart
func (s *Service) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	orders, err := s.repo.GetAllPaymentOrders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load payment orders: %w", err)
	}
	bookings, err := s.repo.GetAllBookings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range orders {
		order := orders[i]
		s.orders[order.ID] = &order
		s.ordersByRef[order.GatewayOrderID] = order.ID
	}
	for i := range bookings {
		booking := bookings[i]
		s.bookings[booking.ID] = &booking
		s.byPaymentRef[booking.PaymentRef] = booking.ID
		s.bookingByHold[booking.HoldID] = booking.ID
	}
	return nil
}

// CreatePaymentOrder raises a gateway order for an active hold. The quoted
// amount must equal the sum of the held seats' prices. While a CREATED or
// PAID order exists for the hold it is returned as-is instead of raising a
// second one.
func (s *Service) CreatePaymentOrder(ctx context.Context, holdID uuid.UUID, amount int64) (*payments.Order, error) {
	hold, err := s.manager.Get(ctx, holdID)
	if err != nil {
		return nil, err
	}

	if open := s.openOrderForHold(holdID); open != nil {
		// A still-CREATED order on a dead hold is abandoned, not replayable
		if open.Status == OrderCreated && !hold.IsActive() {
			return nil, holds.ErrHoldNotActive
		}
		if amount != open.Amount {
			return nil, &AmountMismatchError{Expected: open.Amount, Got: amount}
		}
		return s.gatewayOrderFor(open), nil
	}

	if !hold.IsActive() {
		return nil, holds.ErrHoldNotActive
	}

	expected, err := s.holdTotal(hold)
	if err != nil {
		return nil, err
	}
	if amount != expected {
		return nil, &AmountMismatchError{Expected: expected, Got: amount}
	}

	gatewayOrder, err := s.gateway.CreateOrder(ctx, amount, s.currency, holdID.String())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &PaymentOrder{
		ID:             uuid.New(),
		HoldID:         holdID,
		GatewayOrderID: gatewayOrder.OrderID,
		Amount:         amount,
		Currency:       gatewayOrder.Currency,
		Status:         OrderCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	s.mu.Lock()
	// Re-check before inserting: a concurrent request for the same hold may
	// have raised its own order while the gateway call above was in flight.
	// The first insert wins; the duplicate gateway order is never paid and
	// lapses at the gateway.
	if winner := s.openOrderForHoldLocked(holdID); winner != nil {
		s.mu.Unlock()
		logger.GetDefault().WithHoldID(holdID.String()).Warn("discarding duplicate gateway order for hold")
		if amount != winner.Amount {
			return nil, &AmountMismatchError{Expected: winner.Amount, Got: amount}
		}
		return s.gatewayOrderFor(winner), nil
	}
	s.orders[order.ID] = order
	s.ordersByRef[order.GatewayOrderID] = order.ID
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.CreatePaymentOrder(ctx, order); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to mirror payment order", err, map[string]interface{}{
				"order_id": order.ID.String(),
				"hold_id":  holdID.String(),
			})
		}
	}

	return gatewayOrder, nil
}

// ConfirmPayment settles a payment order. The signature is verified before
// anything else moves; a bad signature fails the order and leaves the hold
// ACTIVE. A hold that expired in the meantime fails the order without
// touching the inventory. Replays with an already-settled payment reference
// return the existing booking.
func (s *Service) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*Booking, error) {
	log := logger.GetDefault()

	// Idempotent replay of a settled payment
	if booking := s.bookingForPaymentRef(input.PaymentID); booking != nil {
		return booking, nil
	}

	s.mu.Lock()
	orderID, ok := s.ordersByRef[input.OrderRef]
	if !ok {
		s.mu.Unlock()
		return nil, ErrOrderNotFound
	}
	order := s.orders[orderID]
	if order.HoldID != input.HoldID {
		s.mu.Unlock()
		return nil, ErrOrderNotFound
	}
	status := order.Status
	s.mu.Unlock()

	switch status {
	case OrderPaid:
		if booking := s.bookingForHold(order.HoldID); booking != nil {
			return booking, nil
		}
		return nil, ErrOrderNotPayable
	case OrderFailed:
		return nil, ErrOrderNotPayable
	}

	if !s.gateway.VerifySignature(input.OrderRef, input.PaymentID, input.Signature) {
		s.failOrder(ctx, order, "signature verification failed")
		log.LogPaymentRejected(ctx, order.HoldID.String(), input.OrderRef, "signature verification failed")
		return nil, ErrPaymentVerification
	}

	hold, err := s.manager.Confirm(ctx, order.HoldID)
	if err != nil {
		// A concurrent confirmation of the same payment may have beaten this
		// one to the hold; answer with its booking instead of failing an
		// order that actually settled.
		if booking := s.bookingForPaymentRef(input.PaymentID); booking != nil {
			return booking, nil
		}
		if booking := s.bookingForHold(order.HoldID); booking != nil {
			return booking, nil
		}
		if current, getErr := s.manager.Get(ctx, order.HoldID); getErr == nil && current.Status == holds.StatusConfirmed {
			// The winner confirmed the hold but has not cut its booking
			// record yet. Leave the order alone; a retry replays the booking.
			return nil, err
		}
		s.failOrder(ctx, order, "hold expired before payment completed")
		s.publishAbandoned(ctx, order)
		log.LogPaymentRejected(ctx, order.HoldID.String(), input.OrderRef, "hold no longer active")
		return nil, err
	}

	seatIDs := hold.SeatIDs()
	if err := s.inventory.Confirm(ctx, seatIDs, hold.ID); err != nil {
		return nil, fmt.Errorf("failed to book seats: %w", err)
	}

	booking := &Booking{
		ID:            uuid.New(),
		HoldID:        hold.ID,
		OrderRef:      order.GatewayOrderID,
		PaymentRef:    input.PaymentID,
		CustomerName:  hold.CustomerName,
		CustomerEmail: hold.CustomerEmail,
		CustomerPhone: hold.CustomerPhone,
		Amount:        order.Amount,
		Currency:      order.Currency,
		BookedAt:      time.Now(),
	}
	for _, seatID := range seatIDs {
		booking.Seats = append(booking.Seats, BookedSeat{
			ID:        uuid.New(),
			BookingID: booking.ID,
			SeatID:    seatID,
		})
	}

	s.mu.Lock()
	order.Status = OrderPaid
	order.UpdatedAt = time.Now()
	s.bookings[booking.ID] = booking
	s.byPaymentRef[booking.PaymentRef] = booking.ID
	s.bookingByHold[booking.HoldID] = booking.ID
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.CreateBooking(ctx, booking); err != nil {
			log.ErrorWithContext(ctx, "failed to mirror booking", err, map[string]interface{}{
				"booking_id": booking.ID.String(),
			})
		}
		if err := s.repo.UpdatePaymentOrder(ctx, order.ID, OrderPaid, ""); err != nil {
			log.ErrorWithContext(ctx, "failed to mirror order status", err, map[string]interface{}{
				"order_id": order.ID.String(),
			})
		}
	}

	s.publishConfirmed(ctx, booking)
	log.LogBookingConfirmed(ctx, booking.ID.String(), booking.HoldID.String(), booking.PaymentRef, booking.Amount)

	snapshot := *booking
	return &snapshot, nil
}

// GetBooking returns a snapshot of a booking by id
func (s *Service) GetBooking(ctx context.Context, bookingID uuid.UUID) (*Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, ErrBookingNotFound
	}
	snapshot := *booking
	return &snapshot, nil
}

// ReconcileAbandoned fails CREATED orders whose hold has already expired or
// been cancelled, so stale orders do not linger open forever. Returns the
// number of orders closed.
func (s *Service) ReconcileAbandoned(ctx context.Context) int {
	s.mu.Lock()
	var stale []*PaymentOrder
	for _, order := range s.orders {
		if order.Status == OrderCreated {
			stale = append(stale, order)
		}
	}
	s.mu.Unlock()

	closed := 0
	for _, order := range stale {
		hold, err := s.manager.Get(ctx, order.HoldID)
		if err == nil && (hold.IsActive() || hold.Status == holds.StatusConfirmed) {
			continue
		}
		s.failOrder(ctx, order, "hold abandoned")
		s.publishAbandoned(ctx, order)
		closed++
	}
	return closed
}

// holdTotal sums the authoritative prices of the hold's seats
func (s *Service) holdTotal(hold *holds.Hold) (int64, error) {
	heldSeats, err := s.inventory.GetSeats(hold.SeatIDs())
	if err != nil {
		return 0, err
	}
	var total int64
	for _, seat := range heldSeats {
		total += seat.Price
	}
	return total, nil
}

func (s *Service) openOrderForHold(holdID uuid.UUID) *PaymentOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openOrderForHoldLocked(holdID)
}

func (s *Service) openOrderForHoldLocked(holdID uuid.UUID) *PaymentOrder {
	for _, order := range s.orders {
		if order.HoldID == holdID && order.Status.IsOpen() {
			snapshot := *order
			return &snapshot
		}
	}
	return nil
}

// gatewayOrderFor rebuilds the checkout payload for an order raised earlier
func (s *Service) gatewayOrderFor(order *PaymentOrder) *payments.Order {
	return &payments.Order{
		OrderID:  order.GatewayOrderID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Key:      s.gateway.Key(),
	}
}

func (s *Service) bookingForPaymentRef(paymentRef string) *Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byPaymentRef[paymentRef]; ok {
		snapshot := *s.bookings[id]
		return &snapshot
	}
	return nil
}

func (s *Service) bookingForHold(holdID uuid.UUID) *Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.bookingByHold[holdID]; ok {
		snapshot := *s.bookings[id]
		return &snapshot
	}
	return nil
}

func (s *Service) failOrder(ctx context.Context, order *PaymentOrder, reason string) {
	s.mu.Lock()
	order.Status = OrderFailed
	order.FailureReason = reason
	order.UpdatedAt = time.Now()
	orderID := order.ID
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.UpdatePaymentOrder(ctx, orderID, OrderFailed, reason); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to mirror order status", err, map[string]interface{}{
				"order_id": orderID.String(),
			})
		}
	}
}

func (s *Service) publishConfirmed(ctx context.Context, booking *Booking) {
	if s.events == nil {
		return
	}
	event := notifications.NewBookingEvent(notifications.EventBookingConfirmed, booking.HoldID.String())
	event.BookingID = booking.ID.String()
	event.OrderRef = booking.OrderRef
	event.Amount = booking.Amount
	for _, seatID := range booking.SeatIDs() {
		event.SeatIDs = append(event.SeatIDs, seatID.String())
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.GetDefault().WithError(err).Warn("failed to publish booking event")
	}
}

func (s *Service) publishAbandoned(ctx context.Context, order *PaymentOrder) {
	if s.events == nil {
		return
	}
	event := notifications.NewBookingEvent(notifications.EventOrderAbandoned, order.HoldID.String())
	event.OrderRef = order.GatewayOrderID
	event.Amount = order.Amount
	if err := s.events.Publish(ctx, event); err != nil {
		logger.GetDefault().WithError(err).Warn("failed to publish order event")
	}
}
