package seatmap

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store tracks seat state per (trip, date). It is a materialized view: the
// reservation ledger stays the source of truth and a store must always be
// reconstructible from ledger replay (Clear + MarkBooked).
//
// TryHold is the mutual-exclusion point: evaluating and marking seats as held
// is atomic per trip-date, so no two concurrent holds ever share a seat.
type Store interface {
	// Availability reports the state of seats 1..capacity.
	Availability(ctx context.Context, tripID uuid.UUID, date string, capacity int) (map[int]SeatState, error)

	// TryHold atomically claims the seats for ttl. It fails with a
	// SeatUnavailable fault naming the first conflicting seat.
	TryHold(ctx context.Context, tripID uuid.UUID, date string, seats []int, ttl time.Duration) (*Hold, error)

	// Commit turns a live hold into booked seats owned by reservationID.
	// Fails with a HoldExpired fault once the hold's TTL has lapsed.
	Commit(ctx context.Context, hold *Hold, reservationID string) error

	// Release frees a hold's seats before its TTL lapses.
	Release(ctx context.Context, hold *Hold) error

	// MarkBooked records seats as booked without a hold. Used for ledger
	// replay, never for the live booking path.
	MarkBooked(ctx context.Context, tripID uuid.UUID, date string, seats []int, reservationID string) error

	// Free returns booked seats to the free state (cancellation, purge).
	Free(ctx context.Context, tripID uuid.UUID, date string, seats []int) error

	// Clear wipes all state for the trip-date ahead of a replay.
	Clear(ctx context.Context, tripID uuid.UUID, date string) error
}
