package bookings

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/holds"
	"boxoffice/internal/payments"
	"boxoffice/internal/seats"
)

// fakeGateway accepts exactly the signature "valid-signature" and mints
// sequential order ids
type fakeGateway struct {
	created int
}

func (f *fakeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payments.Order, error) {
	f.created++
	return &payments.Order{
		OrderID:  fmt.Sprintf("order_fake%d", f.created),
		Amount:   amount,
		Currency: currency,
		Key:      "rzp_test_key",
	}, nil
}

func (f *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "valid-signature"
}

func (f *fakeGateway) Key() string {
	return "rzp_test_key"
}

type fixture struct {
	inventory *seats.Inventory
	manager   *holds.Manager
	gateway   *fakeGateway
	service   *Service
	seatIDs   []uuid.UUID
}

func newFixture(t *testing.T, ttl time.Duration) *fixture {
	t.Helper()

	inventory := seats.NewInventory(nil)
	seatIDs := make([]uuid.UUID, 0, 3)
	var rows []seats.Seat
	for i := 0; i < 3; i++ {
		id := uuid.New()
		seatIDs = append(seatIDs, id)
		rows = append(rows, seats.Seat{
			ID:         id,
			SeatNumber: fmt.Sprintf("A%d", i+1),
			Price:      30000,
			Status:     seats.StatusAvailable,
		})
	}
	require.NoError(t, inventory.Add(context.Background(), rows))

	manager := holds.NewManager(inventory, nil, nil, ttl)
	gateway := &fakeGateway{}
	service := NewService(manager, inventory, gateway, nil, nil, "INR")

	return &fixture{
		inventory: inventory,
		manager:   manager,
		gateway:   gateway,
		service:   service,
		seatIDs:   seatIDs,
	}
}

func testContact() holds.Contact {
	return holds.Contact{
		Name:  "Asha Rao",
		Email: "asha@example.com",
		Phone: "9876543210",
	}
}

func (f *fixture) holdSeats(t *testing.T, ids ...uuid.UUID) *holds.Hold {
	t.Helper()
	hold, err := f.manager.Create(context.Background(), ids, testContact())
	require.NoError(t, err)
	return hold
}

func TestConfirmPaymentHappyPath(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0], f.seatIDs[1])

	order, err := f.service.CreatePaymentOrder(ctx, hold.ID, 60000)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_key", order.Key)

	booking, err := f.service.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_abc",
		Signature: "valid-signature",
	})
	require.NoError(t, err)
	assert.Equal(t, hold.ID, booking.HoldID)
	assert.Equal(t, int64(60000), booking.Amount)
	assert.Len(t, booking.Seats, 2)

	// Seats flipped to BOOKED, hold is CONFIRMED
	booked, err := f.inventory.GetSeats([]uuid.UUID{f.seatIDs[0], f.seatIDs[1]})
	require.NoError(t, err)
	for _, seat := range booked {
		assert.Equal(t, seats.StatusBooked, seat.Status)
	}
	confirmed, err := f.manager.Get(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, holds.StatusConfirmed, confirmed.Status)

	// Third seat untouched
	rest, err := f.inventory.GetSeats([]uuid.UUID{f.seatIDs[2]})
	require.NoError(t, err)
	assert.Equal(t, seats.StatusAvailable, rest[0].Status)

	fetched, err := f.service.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRef, fetched.PaymentRef)
}

func TestConfirmPaymentIdempotentReplay(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0])
	order, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	input := ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_abc",
		Signature: "valid-signature",
	}
	first, err := f.service.ConfirmPayment(ctx, input)
	require.NoError(t, err)

	second, err := f.service.ConfirmPayment(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreateOrderAmountMismatch(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0], f.seatIDs[1])

	_, err := f.service.CreatePaymentOrder(ctx, hold.ID, 59999)
	require.Error(t, err)

	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(60000), mismatch.Expected)
	assert.Equal(t, int64(59999), mismatch.Got)
	assert.Equal(t, 0, f.gateway.created)
}

func TestCreateOrderIdempotentWhileOpen(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0])

	first, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)
	second, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, f.gateway.created)
	assert.Equal(t, "rzp_test_key", second.Key)
}

// rendezvousGateway blocks inside CreateOrder until two callers are in
// flight at once, then mints distinct order ids
type rendezvousGateway struct {
	barrier sync.WaitGroup
	created atomic.Int32
}

func (g *rendezvousGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*payments.Order, error) {
	g.barrier.Done()
	g.barrier.Wait()
	n := g.created.Add(1)
	return &payments.Order{
		OrderID:  fmt.Sprintf("order_race%d", n),
		Amount:   amount,
		Currency: currency,
		Key:      "rzp_test_key",
	}, nil
}

func (g *rendezvousGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "valid-signature"
}

func (g *rendezvousGateway) Key() string { return "rzp_test_key" }

func TestConcurrentCreateOrderKeepsOneOpenOrder(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	gw := &rendezvousGateway{}
	gw.barrier.Add(2)
	svc := NewService(f.manager, f.inventory, gw, nil, nil, "INR")

	hold := f.holdSeats(t, f.seatIDs[0])

	var results [2]*payments.Order
	var errs [2]error
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.CreatePaymentOrder(ctx, hold.ID, 30000)
		}(i)
	}
	wg.Wait()

	// Both callers end up on the same order; the duplicate gateway order
	// was discarded before insertion
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0].OrderID, results[1].OrderID)

	svc.mu.Lock()
	open := 0
	for _, order := range svc.orders {
		if order.HoldID == hold.ID && order.Status.IsOpen() {
			open++
		}
	}
	svc.mu.Unlock()
	assert.Equal(t, 1, open)

	// The surviving order settles normally
	booking, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  results[0].OrderID,
		PaymentID: "pay_race",
		Signature: "valid-signature",
	})
	require.NoError(t, err)
	assert.Equal(t, hold.ID, booking.HoldID)
}

// verifyRendezvousGateway stalls signature checks until two confirmations
// are in flight at once
type verifyRendezvousGateway struct {
	fakeGateway
	barrier sync.WaitGroup
}

func (g *verifyRendezvousGateway) VerifySignature(orderID, paymentID, signature string) bool {
	g.barrier.Done()
	g.barrier.Wait()
	return signature == "valid-signature"
}

func TestConcurrentConfirmLeavesOrderPaid(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	gw := &verifyRendezvousGateway{}
	gw.barrier.Add(2)
	svc := NewService(f.manager, f.inventory, gw, nil, nil, "INR")

	hold := f.holdSeats(t, f.seatIDs[0])
	order, err := svc.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	input := ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_dup",
		Signature: "valid-signature",
	}

	var bookings [2]*Booking
	var errs [2]error
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			bookings[i], errs[i] = svc.ConfirmPayment(ctx, input)
		}(i)
	}
	wg.Wait()

	// At least one caller gets the booking; the other either replays it or
	// reports the hold taken, but never flips the settled order to FAILED
	var winner *Booking
	for i := 0; i < 2; i++ {
		if errs[i] == nil {
			require.NotNil(t, bookings[i])
			if winner != nil {
				assert.Equal(t, winner.ID, bookings[i].ID)
			}
			winner = bookings[i]
		} else {
			assert.ErrorIs(t, errs[i], holds.ErrHoldNotActive)
		}
	}
	require.NotNil(t, winner)

	svc.mu.Lock()
	status := svc.orders[svc.ordersByRef[order.OrderID]].Status
	svc.mu.Unlock()
	assert.Equal(t, OrderPaid, status)

	// A replay after the dust settles returns the booking
	replay, err := svc.ConfirmPayment(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, winner.ID, replay.ID)
}

func TestDuplicateSeatInHoldPricedOnce(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold, err := f.manager.Create(ctx, []uuid.UUID{f.seatIDs[0], f.seatIDs[0]}, testContact())
	require.NoError(t, err)

	// Double the single-seat price is not the authoritative total
	_, err = f.service.CreatePaymentOrder(ctx, hold.ID, 60000)
	var mismatch *AmountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, int64(30000), mismatch.Expected)

	order, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	booking, err := f.service.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_single",
		Signature: "valid-signature",
	})
	require.NoError(t, err)
	assert.Len(t, booking.Seats, 1)
	assert.Equal(t, int64(30000), booking.Amount)
}

func TestCreateOrderReplayAfterExpiry(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0])
	_, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	// The unpaid order is not replayable once the hold has lapsed
	_, err = f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	assert.ErrorIs(t, err, holds.ErrHoldNotActive)
}

func TestCreateOrderReplayAfterPayment(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0])
	order, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	_, err = f.service.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_abc",
		Signature: "valid-signature",
	})
	require.NoError(t, err)

	// The PAID order is returned as-is; no new gateway order is raised
	replay, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)
	assert.Equal(t, order.OrderID, replay.OrderID)
	assert.Equal(t, 1, f.gateway.created)
}

func TestCreateOrderUnknownHold(t *testing.T) {
	f := newFixture(t, time.Minute)

	_, err := f.service.CreatePaymentOrder(context.Background(), uuid.New(), 30000)
	assert.ErrorIs(t, err, holds.ErrHoldNotFound)
}

func TestVerificationFailureLeavesHoldActive(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0])
	order, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	_, err = f.service.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_abc",
		Signature: "forged",
	})
	assert.ErrorIs(t, err, ErrPaymentVerification)

	// Hold survives so the buyer can retry within the TTL
	current, err := f.manager.Get(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, holds.StatusActive, current.Status)
	held, err := f.inventory.GetSeats([]uuid.UUID{f.seatIDs[0]})
	require.NoError(t, err)
	assert.Equal(t, seats.StatusHeld, held[0].Status)

	// The failed order is closed; a fresh one can be raised and settled
	_, err = f.service.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_abc",
		Signature: "valid-signature",
	})
	assert.ErrorIs(t, err, ErrOrderNotPayable)

	retry, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)
	assert.NotEqual(t, order.OrderID, retry.OrderID)

	booking, err := f.service.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  retry.OrderID,
		PaymentID: "pay_retry",
		Signature: "valid-signature",
	})
	require.NoError(t, err)
	assert.Equal(t, hold.ID, booking.HoldID)
}

func TestConfirmAfterExpiryFailsWithoutBooking(t *testing.T) {
	f := newFixture(t, 30*time.Millisecond)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0], f.seatIDs[1])
	order, err := f.service.CreatePaymentOrder(ctx, hold.ID, 60000)
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	_, err = f.service.ConfirmPayment(ctx, ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  order.OrderID,
		PaymentID: "pay_late",
		Signature: "valid-signature",
	})
	assert.ErrorIs(t, err, holds.ErrHoldNotActive)

	// The seats went back to AVAILABLE, never to BOOKED
	released, err := f.inventory.GetSeats([]uuid.UUID{f.seatIDs[0], f.seatIDs[1]})
	require.NoError(t, err)
	for _, seat := range released {
		assert.Equal(t, seats.StatusAvailable, seat.Status)
	}

	expired, err := f.manager.Get(ctx, hold.ID)
	require.NoError(t, err)
	assert.Equal(t, holds.StatusExpired, expired.Status)

	// A fresh hold on one of the seats alone succeeds
	_, err = f.manager.Create(ctx, []uuid.UUID{f.seatIDs[0]}, testContact())
	assert.NoError(t, err)
}

func TestCancelledHoldCannotSpawnOrder(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0])
	require.NoError(t, f.manager.Cancel(ctx, hold.ID))

	_, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	assert.ErrorIs(t, err, holds.ErrHoldNotActive)
}

func TestConfirmUnknownOrder(t *testing.T) {
	f := newFixture(t, time.Minute)

	hold := f.holdSeats(t, f.seatIDs[0])
	_, err := f.service.ConfirmPayment(context.Background(), ConfirmPaymentInput{
		HoldID:    hold.ID,
		OrderRef:  "order_unknown",
		PaymentID: "pay_abc",
		Signature: "valid-signature",
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReconcileAbandonedOrders(t *testing.T) {
	f := newFixture(t, time.Minute)
	ctx := context.Background()

	hold := f.holdSeats(t, f.seatIDs[0])
	_, err := f.service.CreatePaymentOrder(ctx, hold.ID, 30000)
	require.NoError(t, err)

	// Live hold: nothing to close
	assert.Equal(t, 0, f.service.ReconcileAbandoned(ctx))

	require.NoError(t, f.manager.Cancel(ctx, hold.ID))
	assert.Equal(t, 1, f.service.ReconcileAbandoned(ctx))
	assert.Equal(t, 0, f.service.ReconcileAbandoned(ctx))

	// A fresh hold on the same seat gets a fresh order
	again := f.holdSeats(t, f.seatIDs[0])
	order, err := f.service.CreatePaymentOrder(ctx, again.ID, 30000)
	require.NoError(t, err)
	assert.NotEmpty(t, order.OrderID)
}

func TestGetBookingNotFound(t *testing.T) {
	f := newFixture(t, time.Minute)

	_, err := f.service.GetBooking(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
