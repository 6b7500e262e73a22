package seats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"boxoffice/pkg/logger"

	"github.com/google/uuid"
)

// ConflictError reports a reservation attempt against seats that are not
// AVAILABLE. Recoverable: the caller must re-query availability and re-select.
type ConflictError struct {
	SeatIDs []uuid.UUID
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.SeatIDs))
	for i, id := range e.SeatIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("seats not available: %s", strings.Join(ids, ", "))
}

// ErrSeatNotFound is returned when a referenced seat id does not exist
var ErrSeatNotFound = fmt.Errorf("seat not found")

// Inventory is the authoritative in-process state of every seat of the
// showing. All status transitions are serialized behind one mutex; at the
// scale of a single showing (tens to low hundreds of seats) a global lock is
// the serialization point of choice. The repository, when present, mirrors
// every transition for durability and is reloaded on startup.
type Inventory struct {
	mu    sync.Mutex
	seats map[uuid.UUID]*Seat
	order []uuid.UUID // listing order, sorted by seat number

	repo     Repository // optional durability mirror
	onChange func()     // cache invalidation hook
}

func NewInventory(repo Repository) *Inventory {
	return &Inventory{
		seats: make(map[uuid.UUID]*Seat),
		repo:  repo,
	}
}

// SetChangeListener registers a hook invoked after every status transition.
// Used by the wiring layer to invalidate the cached seat listing. Safe to
// call while background sweeps are already running.
func (inv *Inventory) SetChangeListener(fn func()) {
	inv.mu.Lock()
	inv.onChange = fn
	inv.mu.Unlock()
}

// Load replaces the in-memory state with the persisted seats
func (inv *Inventory) Load(ctx context.Context) error {
	if inv.repo == nil {
		return nil
	}

	persisted, err := inv.repo.GetAllSeats(ctx)
	if err != nil {
		return fmt.Errorf("failed to load seats: %w", err)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.seats = make(map[uuid.UUID]*Seat, len(persisted))
	inv.order = make([]uuid.UUID, 0, len(persisted))
	for i := range persisted {
		seat := persisted[i]
		inv.seats[seat.ID] = &seat
		inv.order = append(inv.order, seat.ID)
	}

	return nil
}

// Add registers new seats with the inventory and persists them
func (inv *Inventory) Add(ctx context.Context, newSeats []Seat) error {
	inv.mu.Lock()
	for i := range newSeats {
		seat := newSeats[i]
		inv.seats[seat.ID] = &seat
		inv.order = append(inv.order, seat.ID)
	}
	inv.sortOrderLocked()
	inv.mu.Unlock()

	if inv.repo != nil {
		if err := inv.repo.CreateSeats(ctx, newSeats); err != nil {
			return fmt.Errorf("failed to persist seats: %w", err)
		}
	}

	inv.notifyChange()
	return nil
}

// ListSeats returns an ordered snapshot of every seat. Readers never observe
// a half-applied multi-seat transition because transitions complete under the
// inventory lock.
func (inv *Inventory) ListSeats() []Seat {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	out := make([]Seat, 0, len(inv.order))
	for _, id := range inv.order {
		out = append(out, *inv.seats[id])
	}
	return out
}

// GetSeats returns snapshots of the requested seats in request order
func (inv *Inventory) GetSeats(seatIDs []uuid.UUID) ([]Seat, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	out := make([]Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		seat, ok := inv.seats[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrSeatNotFound, id)
		}
		out = append(out, *seat)
	}
	return out, nil
}

// TryReserve moves every listed seat from AVAILABLE to HELD under holdID.
// All-or-nothing: if any seat is missing or not AVAILABLE, nothing is
// reserved and the conflicting seat ids are reported.
func (inv *Inventory) TryReserve(ctx context.Context, seatIDs []uuid.UUID, holdID uuid.UUID) error {
	if len(seatIDs) == 0 {
		return fmt.Errorf("no seats specified")
	}

	// Deterministic processing order regardless of request order
	ids := sortedIDs(seatIDs)

	inv.mu.Lock()

	var conflicts []uuid.UUID
	for _, id := range ids {
		seat, ok := inv.seats[id]
		if !ok {
			inv.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrSeatNotFound, id)
		}
		if !seat.IsAvailable() {
			conflicts = append(conflicts, id)
		}
	}
	if len(conflicts) > 0 {
		inv.mu.Unlock()
		return &ConflictError{SeatIDs: conflicts}
	}

	hid := holdID
	for _, id := range ids {
		seat := inv.seats[id]
		seat.Status = StatusHeld
		seat.HoldID = &hid
	}
	inv.mu.Unlock()

	inv.persistState(ctx, ids, StatusHeld, &hid)
	inv.notifyChange()
	return nil
}

// Confirm moves seats held under holdID to BOOKED. Fails without mutating
// anything if any seat is not in the expected HELD-under-this-hold state;
// that guards against a double confirmation racing an expiry release.
func (inv *Inventory) Confirm(ctx context.Context, seatIDs []uuid.UUID, holdID uuid.UUID) error {
	ids := sortedIDs(seatIDs)

	inv.mu.Lock()

	for _, id := range ids {
		seat, ok := inv.seats[id]
		if !ok {
			inv.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrSeatNotFound, id)
		}
		if !seat.HeldBy(holdID) {
			inv.mu.Unlock()
			return fmt.Errorf("seat %s is not held under hold %s", seat.SeatNumber, holdID)
		}
	}

	for _, id := range ids {
		seat := inv.seats[id]
		seat.Status = StatusBooked
		seat.HoldID = nil
	}
	inv.mu.Unlock()

	inv.persistState(ctx, ids, StatusBooked, nil)
	inv.notifyChange()
	return nil
}

// Release moves HELD seats back to AVAILABLE. Seats already AVAILABLE are
// skipped, so duplicate release calls are harmless. BOOKED seats are never
// downgraded here.
func (inv *Inventory) Release(ctx context.Context, seatIDs []uuid.UUID) {
	ids := sortedIDs(seatIDs)

	inv.mu.Lock()
	var released []uuid.UUID
	for _, id := range ids {
		seat, ok := inv.seats[id]
		if !ok || !seat.IsHeld() {
			continue
		}
		seat.Status = StatusAvailable
		seat.HoldID = nil
		released = append(released, id)
	}
	inv.mu.Unlock()

	if len(released) == 0 {
		return
	}

	inv.persistState(ctx, released, StatusAvailable, nil)
	inv.notifyChange()
}

// Reset clears every hold association and returns all seats to AVAILABLE.
// Maintenance operation; never part of the booking flow.
func (inv *Inventory) Reset(ctx context.Context) error {
	inv.mu.Lock()
	for _, seat := range inv.seats {
		seat.Status = StatusAvailable
		seat.HoldID = nil
	}
	inv.mu.Unlock()

	if inv.repo != nil {
		if err := inv.repo.ResetAllSeats(ctx); err != nil {
			return fmt.Errorf("failed to reset seats: %w", err)
		}
	}

	inv.notifyChange()
	return nil
}

// Size returns the number of seats tracked
func (inv *Inventory) Size() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.seats)
}

// persistState mirrors a transition into the repository. The write happens
// outside the inventory lock; memory stays authoritative, so a failed mirror
// write is logged and the transition stands.
func (inv *Inventory) persistState(ctx context.Context, seatIDs []uuid.UUID, status Status, holdID *uuid.UUID) {
	if inv.repo == nil {
		return
	}
	if err := inv.repo.UpdateSeatsState(ctx, seatIDs, status, holdID); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to mirror seat transition", err, map[string]interface{}{
			"status":     status,
			"seat_count": len(seatIDs),
		})
	}
}

func (inv *Inventory) notifyChange() {
	inv.mu.Lock()
	fn := inv.onChange
	inv.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (inv *Inventory) sortOrderLocked() {
	sort.Slice(inv.order, func(i, j int) bool {
		return inv.seats[inv.order[i]].SeatNumber < inv.seats[inv.order[j]].SeatNumber
	})
}

// sortedIDs sorts a copy of the ids and compacts duplicates, so a seat
// listed twice in a request transitions exactly once
func sortedIDs(seatIDs []uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, len(seatIDs))
	copy(ids, seatIDs)
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}
