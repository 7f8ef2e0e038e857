package seatmap

import (
	"context"
	"sync"
	"testing"
	"time"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_TryHold_Conflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tripID := uuid.New()

	_, err := store.TryHold(ctx, tripID, "2026-09-10", []int{3, 4}, time.Minute)
	require.NoError(t, err)

	_, err = store.TryHold(ctx, tripID, "2026-09-10", []int{2, 3}, time.Minute)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindSeatUnavailable))
	assert.Contains(t, faults.MessageOf(err), "seat 3")
}

func TestMemoryStore_TryHold_IndependentTripDates(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tripID := uuid.New()

	_, err := store.TryHold(ctx, tripID, "2026-09-10", []int{1}, time.Minute)
	require.NoError(t, err)

	// Same seat on another date is a different resource.
	_, err = store.TryHold(ctx, tripID, "2026-09-11", []int{1}, time.Minute)
	assert.NoError(t, err)

	_, err = store.TryHold(ctx, uuid.New(), "2026-09-10", []int{1}, time.Minute)
	assert.NoError(t, err)
}

func TestMemoryStore_HoldExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	ctx := context.Background()
	tripID := uuid.New()

	hold, err := store.TryHold(ctx, tripID, "2026-09-10", []int{7}, time.Minute)
	require.NoError(t, err)

	// Still held inside the TTL.
	_, err = store.TryHold(ctx, tripID, "2026-09-10", []int{7}, time.Minute)
	require.Error(t, err)

	now = now.Add(2 * time.Minute)

	// Expired hold frees the seat for the next taker.
	_, err = store.TryHold(ctx, tripID, "2026-09-10", []int{7}, time.Minute)
	assert.NoError(t, err)

	// Committing the lapsed hold must fail.
	err = store.Commit(ctx, hold, uuid.New().String())
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindHoldExpired))
}

func TestMemoryStore_CommitThenFree(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tripID := uuid.New()
	reservationID := uuid.New().String()

	hold, err := store.TryHold(ctx, tripID, "2026-09-10", []int{5, 6}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, hold, reservationID))

	states, err := store.Availability(ctx, tripID, "2026-09-10", 10)
	require.NoError(t, err)
	assert.Equal(t, SeatBooked, states[5].Status)
	assert.Equal(t, reservationID, states[5].ReservationID)
	assert.Equal(t, SeatBooked, states[6].Status)
	assert.Equal(t, SeatFree, states[7].Status)

	// Booked seats cannot be held again.
	_, err = store.TryHold(ctx, tripID, "2026-09-10", []int{5}, time.Minute)
	require.Error(t, err)

	require.NoError(t, store.Free(ctx, tripID, "2026-09-10", []int{5, 6}))
	_, err = store.TryHold(ctx, tripID, "2026-09-10", []int{5}, time.Minute)
	assert.NoError(t, err)
}

func TestMemoryStore_Release(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tripID := uuid.New()

	hold, err := store.TryHold(ctx, tripID, "2026-09-10", []int{2}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, hold))

	_, err = store.TryHold(ctx, tripID, "2026-09-10", []int{2}, time.Minute)
	assert.NoError(t, err)

	// Releasing again is harmless.
	assert.NoError(t, store.Release(ctx, hold))
}

func TestMemoryStore_ClearAndReplay(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tripID := uuid.New()
	reservationID := uuid.New().String()

	hold, err := store.TryHold(ctx, tripID, "2026-09-10", []int{1, 2, 3}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, hold, reservationID))

	require.NoError(t, store.Clear(ctx, tripID, "2026-09-10"))
	states, err := store.Availability(ctx, tripID, "2026-09-10", 5)
	require.NoError(t, err)
	for seat := 1; seat <= 5; seat++ {
		assert.Equal(t, SeatFree, states[seat].Status)
	}

	require.NoError(t, store.MarkBooked(ctx, tripID, "2026-09-10", []int{1, 2, 3}, reservationID))
	states, err = store.Availability(ctx, tripID, "2026-09-10", 5)
	require.NoError(t, err)
	assert.Equal(t, SeatBooked, states[1].Status)
	assert.Equal(t, SeatBooked, states[2].Status)
	assert.Equal(t, SeatBooked, states[3].Status)
	assert.Equal(t, SeatFree, states[4].Status)
}

func TestMemoryStore_ClearKeepsLiveHolds(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tripID := uuid.New()

	hold, err := store.TryHold(ctx, tripID, "2026-09-10", []int{2}, time.Minute)
	require.NoError(t, err)

	committed, err := store.TryHold(ctx, tripID, "2026-09-10", []int{6}, time.Minute)
	require.NoError(t, err)
	require.NoError(t, store.Commit(ctx, committed, uuid.New().String()))

	// Clear resets only the booked set; an in-flight hold keeps its seat.
	require.NoError(t, store.Clear(ctx, tripID, "2026-09-10"))

	states, err := store.Availability(ctx, tripID, "2026-09-10", 10)
	require.NoError(t, err)
	assert.Equal(t, SeatHeld, states[2].Status)
	assert.Equal(t, SeatFree, states[6].Status)

	_, err = store.TryHold(ctx, tripID, "2026-09-10", []int{2}, time.Minute)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindSeatUnavailable))

	// The surviving hold still commits.
	require.NoError(t, store.Commit(ctx, hold, uuid.New().String()))
}

func TestMemoryStore_ConcurrentHolds_SingleWinner(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tripID := uuid.New()

	const contenders = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.TryHold(ctx, tripID, "2026-09-10", []int{12}, time.Minute); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
