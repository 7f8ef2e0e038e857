package seatmap

import (
	"context"
	"sync"
	"time"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
)

// MemoryStore is the in-process Store. Each trip-date carries its own lock,
// so holds on different trips never contend. Expired holds are reaped lazily
// on the next access to the trip-date.
type MemoryStore struct {
	mu    sync.Mutex
	trips map[string]*tripSeats

	// now is swappable in tests.
	now func() time.Time
}

type tripSeats struct {
	mu     sync.Mutex
	held   map[int]heldSeat
	booked map[int]string
}

type heldSeat struct {
	holdID    string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		trips: make(map[string]*tripSeats),
		now:   time.Now,
	}
}

func (m *MemoryStore) tripSeats(tripID uuid.UUID, date string) *tripSeats {
	key := tripID.String() + ":" + date
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.trips[key]
	if !ok {
		ts = &tripSeats{
			held:   make(map[int]heldSeat),
			booked: make(map[int]string),
		}
		m.trips[key] = ts
	}
	return ts
}

// reapExpired drops lapsed holds. Caller must hold ts.mu.
func (ts *tripSeats) reapExpired(now time.Time) {
	for seat, hold := range ts.held {
		if !hold.expiresAt.After(now) {
			delete(ts.held, seat)
		}
	}
}

func (m *MemoryStore) Availability(ctx context.Context, tripID uuid.UUID, date string, capacity int) (map[int]SeatState, error) {
	ts := m.tripSeats(tripID, date)
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.reapExpired(m.now())

	states := make(map[int]SeatState, capacity)
	for seat := 1; seat <= capacity; seat++ {
		state := SeatState{Status: SeatFree}
		if hold, ok := ts.held[seat]; ok {
			state = SeatState{Status: SeatHeld, ExpiresAt: hold.expiresAt}
		}
		if reservationID, ok := ts.booked[seat]; ok {
			state = SeatState{Status: SeatBooked, ReservationID: reservationID}
		}
		states[seat] = state
	}
	return states, nil
}

func (m *MemoryStore) TryHold(ctx context.Context, tripID uuid.UUID, date string, seats []int, ttl time.Duration) (*Hold, error) {
	ts := m.tripSeats(tripID, date)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	now := m.now()
	ts.reapExpired(now)

	for _, seat := range seats {
		if _, booked := ts.booked[seat]; booked {
			return nil, faults.SeatUnavailable(seat)
		}
		if _, held := ts.held[seat]; held {
			return nil, faults.SeatUnavailable(seat)
		}
	}

	hold := &Hold{
		ID:        uuid.New().String(),
		TripID:    tripID,
		Date:      date,
		Seats:     append([]int(nil), seats...),
		ExpiresAt: now.Add(ttl),
	}
	for _, seat := range seats {
		ts.held[seat] = heldSeat{holdID: hold.ID, expiresAt: hold.ExpiresAt}
	}
	return hold, nil
}

func (m *MemoryStore) Commit(ctx context.Context, hold *Hold, reservationID string) error {
	ts := m.tripSeats(hold.TripID, hold.Date)
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.reapExpired(m.now())

	for _, seat := range hold.Seats {
		held, ok := ts.held[seat]
		if !ok || held.holdID != hold.ID {
			return faults.HoldExpired(hold.ID)
		}
	}
	for _, seat := range hold.Seats {
		delete(ts.held, seat)
		ts.booked[seat] = reservationID
	}
	return nil
}

func (m *MemoryStore) Release(ctx context.Context, hold *Hold) error {
	ts := m.tripSeats(hold.TripID, hold.Date)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, seat := range hold.Seats {
		if held, ok := ts.held[seat]; ok && held.holdID == hold.ID {
			delete(ts.held, seat)
		}
	}
	return nil
}

func (m *MemoryStore) MarkBooked(ctx context.Context, tripID uuid.UUID, date string, seats []int, reservationID string) error {
	ts := m.tripSeats(tripID, date)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, seat := range seats {
		ts.booked[seat] = reservationID
	}
	return nil
}

func (m *MemoryStore) Free(ctx context.Context, tripID uuid.UUID, date string, seats []int) error {
	ts := m.tripSeats(tripID, date)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for _, seat := range seats {
		delete(ts.booked, seat)
	}
	return nil
}

// Clear resets the booked set only. Live holds keep their TTL, matching the
// Redis store, where hold keys expire on their own.
func (m *MemoryStore) Clear(ctx context.Context, tripID uuid.UUID, date string) error {
	ts := m.tripSeats(tripID, date)
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ts.reapExpired(m.now())
	ts.booked = make(map[int]string)
	return nil
}
