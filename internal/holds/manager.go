package holds

import (
	"context"
	"fmt"
	"sync"
	"time"

	"boxoffice/internal/notifications"
	"boxoffice/internal/seats"
	"boxoffice/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	// ErrHoldNotFound is returned for an unknown hold id
	ErrHoldNotFound = fmt.Errorf("hold not found")

	// ErrHoldNotActive is returned when a transition loses the race against
	// expiry, cancellation, or an earlier confirmation. Callers that were
	// confirming must surface this as "hold expired before payment
	// completed" rather than acting on the inventory again.
	ErrHoldNotActive = fmt.Errorf("hold is no longer active")
)

// contact snapshots are validated independently of the transport layer
var validate = validator.New()

// Manager owns the hold state machine: ACTIVE -> CONFIRMED | EXPIRED |
// CANCELLED, all three terminal. Every transition is a compare-and-set on the
// hold's status executed under one mutex, which is the exclusive section the
// confirm/expire/cancel race is decided in. Terminal holds are kept in memory
// so idempotent confirmation retries can be answered.
type Manager struct {
	mu    sync.Mutex
	holds map[uuid.UUID]*Hold

	inventory *seats.Inventory
	repo      Repository // optional durability mirror
	events    notifications.Producer
	ttl       time.Duration
}

func NewManager(inventory *seats.Inventory, repo Repository, events notifications.Producer, ttl time.Duration) *Manager {
	return &Manager{
		holds:     make(map[uuid.UUID]*Hold),
		inventory: inventory,
		repo:      repo,
		events:    events,
		ttl:       ttl,
	}
}

// TTL returns the fixed hold lifetime
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Load restores ACTIVE holds from the repository after a restart. Holds past
// their expiry are released on the first sweep.
func (m *Manager) Load(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}

	active, err := m.repo.GetHoldsByStatus(ctx, StatusActive)
	if err != nil {
		return fmt.Errorf("failed to load active holds: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range active {
		hold := active[i]
		m.holds[hold.ID] = &hold
	}
	return nil
}

// Create claims the requested seats for the buyer. All-or-nothing: on any
// seat conflict no hold is created and the conflicting seats are reported
// through seats.ConflictError.
func (m *Manager) Create(ctx context.Context, seatIDs []uuid.UUID, contact Contact) (*Hold, error) {
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("no seats specified")
	}
	if err := validate.Struct(contact); err != nil {
		return nil, fmt.Errorf("invalid buyer details: %w", err)
	}
	// A seat listed twice must not be held, priced, or booked twice
	seatIDs = uniqueIDs(seatIDs)

	holdID := uuid.New()
	if err := m.inventory.TryReserve(ctx, seatIDs, holdID); err != nil {
		return nil, err
	}

	now := time.Now()
	hold := &Hold{
		ID:            holdID,
		CustomerName:  contact.Name,
		CustomerEmail: contact.Email,
		CustomerPhone: contact.Phone,
		Status:        StatusActive,
		CreatedAt:     now,
		ExpiresAt:     now.Add(m.ttl),
		UpdatedAt:     now,
	}
	for _, seatID := range seatIDs {
		hold.Seats = append(hold.Seats, HoldSeat{
			ID:     uuid.New(),
			HoldID: holdID,
			SeatID: seatID,
		})
	}

	m.mu.Lock()
	m.holds[holdID] = hold
	m.mu.Unlock()

	if m.repo != nil {
		if err := m.repo.CreateHold(ctx, hold); err != nil {
			logger.GetDefault().ErrorWithContext(ctx, "failed to mirror hold", err, map[string]interface{}{
				"hold_id": holdID.String(),
			})
		}
	}

	m.publish(ctx, notifications.EventHoldCreated, hold, "")
	logger.GetDefault().LogHoldCreated(ctx, holdID.String(), len(seatIDs), hold.ExpiresAt)

	snapshot := *hold
	return &snapshot, nil
}

// Get returns a snapshot of the hold, lazily expiring it first if its TTL
// has elapsed
func (m *Manager) Get(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	m.expireIfDue(ctx, holdID)

	m.mu.Lock()
	hold, ok := m.holds[holdID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrHoldNotFound
	}
	snapshot := *hold
	m.mu.Unlock()

	return &snapshot, nil
}

// Cancel transitions ACTIVE -> CANCELLED and releases the seats before
// returning, so the buyer observes them AVAILABLE again immediately.
func (m *Manager) Cancel(ctx context.Context, holdID uuid.UUID) error {
	seatIDs, err := m.transition(holdID, StatusCancelled)
	if err != nil {
		return err
	}

	m.inventory.Release(ctx, seatIDs)
	m.persistStatus(ctx, holdID, StatusCancelled)
	m.publish(ctx, notifications.EventHoldCancelled, nil, holdID.String())
	logger.GetDefault().LogHoldReleased(ctx, holdID.String(), "cancelled", len(seatIDs))
	return nil
}

// Confirm transitions ACTIVE -> CONFIRMED. Only the booking coordinator
// calls this, and only after verified payment; it is the one transition that
// does not release seats. A hold past its TTL loses here even if the sweeper
// has not visited it yet.
func (m *Manager) Confirm(ctx context.Context, holdID uuid.UUID) (*Hold, error) {
	m.mu.Lock()
	hold, ok := m.holds[holdID]
	if !ok {
		m.mu.Unlock()
		return nil, ErrHoldNotFound
	}
	if !hold.IsActive() {
		m.mu.Unlock()
		return nil, ErrHoldNotActive
	}
	if hold.ExpiredAt(time.Now()) {
		// Lazy expiry: the TTL elapsed before the sweep got here
		hold.Status = StatusExpired
		hold.UpdatedAt = time.Now()
		seatIDs := hold.SeatIDs()
		m.mu.Unlock()

		m.finishExpiry(ctx, holdID, seatIDs)
		return nil, ErrHoldNotActive
	}

	hold.Status = StatusConfirmed
	hold.UpdatedAt = time.Now()
	snapshot := *hold
	m.mu.Unlock()

	m.persistStatus(ctx, holdID, StatusConfirmed)
	return &snapshot, nil
}

// ReleaseExpired transitions every ACTIVE hold whose TTL has elapsed to
// EXPIRED and releases its seats, exactly once per hold. Runs from the
// background sweeper; safe against concurrent cancels and confirms because
// the status check-and-set shares the manager lock with them.
func (m *Manager) ReleaseExpired(ctx context.Context) int {
	now := time.Now()

	m.mu.Lock()
	type expired struct {
		id      uuid.UUID
		seatIDs []uuid.UUID
	}
	var due []expired
	for id, hold := range m.holds {
		if hold.IsActive() && hold.ExpiredAt(now) {
			hold.Status = StatusExpired
			hold.UpdatedAt = now
			due = append(due, expired{id: id, seatIDs: hold.SeatIDs()})
		}
	}
	m.mu.Unlock()

	for _, e := range due {
		m.finishExpiry(ctx, e.id, e.seatIDs)
	}
	return len(due)
}

// PurgeAll drops every hold; used by the inventory reset
func (m *Manager) PurgeAll() {
	m.mu.Lock()
	m.holds = make(map[uuid.UUID]*Hold)
	m.mu.Unlock()

	if m.repo != nil {
		if err := m.repo.DeleteAllHolds(context.Background()); err != nil {
			logger.GetDefault().WithError(err).Warn("failed to purge persisted holds")
		}
	}
}

// transition performs the ACTIVE -> target compare-and-set and returns the
// seat ids to release. Losing the race yields ErrHoldNotActive.
func (m *Manager) transition(holdID uuid.UUID, target Status) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hold, ok := m.holds[holdID]
	if !ok {
		return nil, ErrHoldNotFound
	}
	if !hold.IsActive() {
		return nil, ErrHoldNotActive
	}

	hold.Status = target
	hold.UpdatedAt = time.Now()
	return hold.SeatIDs(), nil
}

// uniqueIDs drops duplicate ids, keeping first-occurrence order
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// expireIfDue applies lazy expiry to a single hold
func (m *Manager) expireIfDue(ctx context.Context, holdID uuid.UUID) {
	m.mu.Lock()
	hold, ok := m.holds[holdID]
	if !ok || !hold.IsActive() || !hold.ExpiredAt(time.Now()) {
		m.mu.Unlock()
		return
	}
	hold.Status = StatusExpired
	hold.UpdatedAt = time.Now()
	seatIDs := hold.SeatIDs()
	m.mu.Unlock()

	m.finishExpiry(ctx, holdID, seatIDs)
}

// finishExpiry releases seats and records an expiry decided under the lock
func (m *Manager) finishExpiry(ctx context.Context, holdID uuid.UUID, seatIDs []uuid.UUID) {
	m.inventory.Release(ctx, seatIDs)
	m.persistStatus(ctx, holdID, StatusExpired)
	m.publish(ctx, notifications.EventHoldExpired, nil, holdID.String())
	logger.GetDefault().LogHoldReleased(ctx, holdID.String(), "expired", len(seatIDs))
}

func (m *Manager) persistStatus(ctx context.Context, holdID uuid.UUID, status Status) {
	if m.repo == nil {
		return
	}
	if err := m.repo.UpdateHoldStatus(ctx, holdID, status); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "failed to mirror hold status", err, map[string]interface{}{
			"hold_id": holdID.String(),
			"status":  status,
		})
	}
}

func (m *Manager) publish(ctx context.Context, eventType notifications.EventType, hold *Hold, holdID string) {
	if m.events == nil {
		return
	}

	id := holdID
	if hold != nil {
		id = hold.ID.String()
	}
	event := notifications.NewBookingEvent(eventType, id)
	if hold != nil {
		for _, seatID := range hold.SeatIDs() {
			event.SeatIDs = append(event.SeatIDs, seatID.String())
		}
	}

	if err := m.events.Publish(ctx, event); err != nil {
		logger.GetDefault().WithError(err).Warn("failed to publish hold event")
	}
}
