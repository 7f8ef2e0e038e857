package reservations

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"buslane/internal/seatmap"
	"buslane/internal/shared/config"
	"buslane/internal/shared/faults"
	"buslane/internal/trips"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo keeps the ledger in memory, mirroring the repository's transition
// semantics (idempotent repeats, guarded illegal moves).
type fakeRepo struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*Reservation
	transitions  []Transition
	failCreate   bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{reservations: make(map[uuid.UUID]*Reservation)}
}

func (f *fakeRepo) Create(ctx context.Context, reservation *Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return assert.AnError
	}
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	reservation.CreatedAt = time.Now()
	clone := *reservation
	f.reservations[reservation.ID] = &clone
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reservation, ok := f.reservations[id]
	if !ok {
		return nil, faults.NotFound("reservation")
	}
	clone := *reservation
	return &clone, nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.TripID == tripID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) List(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if query.Status != "" && string(r.Status) != query.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepo) Transition(ctx context.Context, id uuid.UUID, target Status, actor string) (*Reservation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reservation, ok := f.reservations[id]
	if !ok {
		return nil, false, faults.NotFound("reservation")
	}
	if reservation.Status == target {
		clone := *reservation
		return &clone, false, nil
	}
	if !reservation.Status.CanTransitionTo(target) {
		switch target {
		case StatusCancelled:
			return nil, false, faults.NotCancellable(string(reservation.Status))
		case StatusValidated:
			return nil, false, faults.NotConfirmed(string(reservation.Status))
		default:
			return nil, false, faults.InvalidTransition(string(reservation.Status), string(target))
		}
	}
	f.transitions = append(f.transitions, Transition{
		ReservationID: id,
		FromStatus:    reservation.Status,
		ToStatus:      target,
		Actor:         actor,
	})
	now := time.Now()
	reservation.Status = target
	switch target {
	case StatusCancelled:
		reservation.CancelledAt = &now
	case StatusValidated:
		reservation.ValidatedAt = &now
	}
	clone := *reservation
	return &clone, true, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reservations[id]; !ok {
		return faults.NotFound("reservation")
	}
	delete(f.reservations, id)
	return nil
}

func (f *fakeRepo) ListActiveForTripDate(ctx context.Context, tripID uuid.UUID, date string) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Reservation
	for _, r := range f.reservations {
		if r.TripID == tripID && r.Date == date && r.Status.IsActive() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ActiveCountByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.reservations {
		if r.TripID == tripID && r.Status.IsActive() {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) BookedSeatCount(ctx context.Context, tripID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.reservations {
		if r.TripID == tripID && r.Status.IsActive() {
			count += len(r.Seats)
		}
	}
	return count, nil
}

type fakeCatalog struct {
	trips map[uuid.UUID]*trips.Trip
}

func (f *fakeCatalog) GetTrip(ctx context.Context, id uuid.UUID) (*trips.Trip, error) {
	trip, ok := f.trips[id]
	if !ok {
		return nil, faults.NotFound("trip")
	}
	return trip, nil
}

// captureSink records emitted lifecycle events.
type captureSink struct {
	mu        sync.Mutex
	created   []ReservationResponse
	cancelled []ReservationResponse
	validated []ReservationResponse
	deleted   []ReservationResponse
}

func (c *captureSink) ReservationCreated(r ReservationResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created = append(c.created, r)
}

func (c *captureSink) ReservationCancelled(r ReservationResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled = append(c.cancelled, r)
}

func (c *captureSink) ReservationValidated(r ReservationResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.validated = append(c.validated, r)
}

func (c *captureSink) ReservationDeleted(r ReservationResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, r)
}

func testBookingConfig() config.BookingConfig {
	return config.BookingConfig{
		SeatHoldTTL:            5 * time.Minute,
		MaxSeatsPerReservation: 10,
	}
}

func newTestTrip(capacity int) *trips.Trip {
	return &trips.Trip{
		ID:            uuid.New(),
		Company:       "Dem Dikk Express",
		Origin:        "Dakar",
		Destination:   "Saint-Louis",
		Capacity:      capacity,
		Date:          time.Now().AddDate(0, 0, 3),
		DepartureTime: "08:00",
		Price:         6500,
		Segments: []trips.Segment{
			{Origin: "Dakar", Destination: "Thiès", Price: 2000},
		},
	}
}

func newTestService(trip *trips.Trip) (Service, *fakeRepo, *captureSink) {
	repo := newFakeRepo()
	store := seatmap.NewMemoryStore()
	catalog := &fakeCatalog{trips: map[uuid.UUID]*trips.Trip{trip.ID: trip}}
	sink := &captureSink{}

	svc := NewService(repo, store, catalog, testBookingConfig())
	svc.SetEventSink(sink)
	return svc, repo, sink
}

func TestBook_Success(t *testing.T) {
	trip := newTestTrip(40)
	svc, repo, sink := newTestService(trip)
	ctx := context.Background()
	userID := uuid.New()

	resp, err := svc.Book(ctx, userID, CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{12, 13},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, resp.Status)
	assert.Equal(t, []int{12, 13}, resp.Seats)
	assert.Equal(t, "Dakar", resp.SegmentOrigin)
	assert.Equal(t, "Saint-Louis", resp.SegmentDestination)
	assert.Equal(t, 13000.0, resp.Price)

	count, err := repo.BookedSeatCount(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, sink.created, 1)
}

func TestBook_SegmentPricing(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)

	resp, err := svc.Book(context.Background(), uuid.New(), CreateReservationRequest{
		TripID:  trip.ID.String(),
		Seats:   []int{1},
		Segment: &trips.SegmentRequest{Origin: "Dakar", Destination: "Thiès"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Thiès", resp.SegmentDestination)
	assert.Equal(t, 2000.0, resp.Price)
}

func TestBook_UnknownSegment(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)

	_, err := svc.Book(context.Background(), uuid.New(), CreateReservationRequest{
		TripID:  trip.ID.String(),
		Seats:   []int{1},
		Segment: &trips.SegmentRequest{Origin: "Thiès", Destination: "Touba"},
	})
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindValidation))
}

func TestBook_SeatConflict(t *testing.T) {
	trip := newTestTrip(40)
	svc, repo, _ := newTestService(trip)
	ctx := context.Background()

	_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{12},
	})
	require.NoError(t, err)

	// Second traveller wants the same seat.
	_, err = svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{12},
	})
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindSeatUnavailable))
	assert.Contains(t, faults.MessageOf(err), "seat 12")

	count, err := repo.BookedSeatCount(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBook_ConcurrentSameSeat_SingleWinner(t *testing.T) {
	trip := newTestTrip(40)
	svc, repo, _ := newTestService(trip)
	ctx := context.Background()

	const travellers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < travellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
				TripID: trip.ID.String(),
				Seats:  []int{7},
			})
			if err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
	count, err := repo.BookedSeatCount(ctx, trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBook_SeatOutOfRange(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)
	ctx := context.Background()

	for _, seats := range [][]int{{0}, {41}, {-3}, {1, 1}, {}} {
		_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
			TripID: trip.ID.String(),
			Seats:  seats,
		})
		require.Error(t, err, "seats %v", seats)
		assert.True(t, faults.Is(err, faults.KindValidation), "seats %v", seats)
	}
}

func TestBook_DepartedTrip(t *testing.T) {
	trip := newTestTrip(40)
	trip.Date = time.Now().AddDate(0, 0, -1)
	svc, _, _ := newTestService(trip)

	_, err := svc.Book(context.Background(), uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{1},
	})
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindValidation))
}

func TestBook_LedgerFailureReleasesHold(t *testing.T) {
	trip := newTestTrip(40)
	svc, repo, _ := newTestService(trip)
	ctx := context.Background()

	repo.failCreate = true
	_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{20},
	})
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindUnavailable))

	// The compensating release freed the seat for the next attempt.
	repo.failCreate = false
	_, err = svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{20},
	})
	assert.NoError(t, err)
}

func TestCancel_FreesSeatAndIsIdempotent(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, sink := newTestService(trip)
	ctx := context.Background()
	userID := uuid.New()

	resp, err := svc.Book(ctx, userID, CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{12},
	})
	require.NoError(t, err)
	reservationID := uuid.MustParse(resp.ID)

	cancelled, err := svc.Cancel(ctx, reservationID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Len(t, sink.cancelled, 1)

	// Repeated cancel is a no-op, not an error, and emits no second event.
	again, err := svc.Cancel(ctx, reservationID, userID, false)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
	assert.Len(t, sink.cancelled, 1)

	// The freed seat is bookable again.
	_, err = svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{12},
	})
	assert.NoError(t, err)
}

func TestCancel_OwnershipEnforced(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)
	ctx := context.Background()
	owner := uuid.New()

	resp, err := svc.Book(ctx, owner, CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{3},
	})
	require.NoError(t, err)
	reservationID := uuid.MustParse(resp.ID)

	_, err = svc.Cancel(ctx, reservationID, uuid.New(), false)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindForbidden))

	// An admin may cancel anyone's reservation.
	_, err = svc.Cancel(ctx, reservationID, uuid.New(), true)
	assert.NoError(t, err)
}

func TestValidateBoarding_Lifecycle(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, sink := newTestService(trip)
	ctx := context.Background()
	userID := uuid.New()

	resp, err := svc.Book(ctx, userID, CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{5},
	})
	require.NoError(t, err)
	reservationID := uuid.MustParse(resp.ID)

	validated, err := svc.ValidateBoarding(ctx, reservationID, "controller-1")
	require.NoError(t, err)
	assert.Equal(t, StatusValidated, validated.Status)
	assert.NotNil(t, validated.ValidatedAt)
	assert.Len(t, sink.validated, 1)

	// Repeating the validation is idempotent.
	_, err = svc.ValidateBoarding(ctx, reservationID, "controller-1")
	require.NoError(t, err)
	assert.Len(t, sink.validated, 1)

	// A validated reservation can no longer be cancelled.
	_, err = svc.Cancel(ctx, reservationID, userID, false)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindNotCancellable))
}

func TestValidateBoarding_CancelledReservation(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)
	ctx := context.Background()
	userID := uuid.New()

	resp, err := svc.Book(ctx, userID, CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{5},
	})
	require.NoError(t, err)
	reservationID := uuid.MustParse(resp.ID)

	_, err = svc.Cancel(ctx, reservationID, userID, false)
	require.NoError(t, err)

	_, err = svc.ValidateBoarding(ctx, reservationID, "controller-1")
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindNotConfirmed))
}

func TestRebuildSeatMap_RoundTrip(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)
	ctx := context.Background()

	_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{2, 3},
	})
	require.NoError(t, err)

	cancelledResp, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{8},
	})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, uuid.MustParse(cancelledResp.ID), uuid.MustParse(cancelledResp.UserID), false)
	require.NoError(t, err)

	before, err := svc.SeatMap(ctx, trip.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RebuildSeatMap(ctx, trip.ID))

	after, err := svc.SeatMap(ctx, trip.ID)
	require.NoError(t, err)

	// Replaying the ledger reproduces exactly the booked set; the cancelled
	// reservation's seat stays free.
	assert.Equal(t, before.Summary.Booked, after.Summary.Booked)
	assert.Equal(t, "booked", after.Seats[2].Status)
	assert.Equal(t, "booked", after.Seats[3].Status)
	assert.Equal(t, "free", after.Seats[8].Status)
}

func TestPurge_FreesSeatsAndAnnouncesDeletion(t *testing.T) {
	trip := newTestTrip(40)
	svc, repo, sink := newTestService(trip)
	ctx := context.Background()

	resp, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{15},
	})
	require.NoError(t, err)
	reservationID := uuid.MustParse(resp.ID)

	require.NoError(t, svc.Purge(ctx, reservationID))

	_, err = repo.GetByID(ctx, reservationID)
	assert.True(t, faults.Is(err, faults.KindNotFound))

	// Dashboards refresh on the deletion event.
	require.Len(t, sink.deleted, 1)
	assert.Equal(t, resp.ID, sink.deleted[0].ID)

	_, err = svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{15},
	})
	assert.NoError(t, err)
}

func TestTakenSeats_ActiveReservationsOnly(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)
	ctx := context.Background()

	_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{4, 5},
	})
	require.NoError(t, err)

	cancelled, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{9},
	})
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, uuid.MustParse(cancelled.ID), uuid.MustParse(cancelled.UserID), false)
	require.NoError(t, err)

	taken, err := svc.TakenSeats(ctx, trip.ID)
	require.NoError(t, err)

	var seats []int
	for _, entry := range taken {
		seats = append(seats, entry.Seat)
	}
	sort.Ints(seats)

	// The cancelled reservation's seat is not taken.
	assert.Equal(t, []int{4, 5}, seats)
}

func TestCancelAllForTrip(t *testing.T) {
	trip := newTestTrip(40)
	svc, repo, sink := newTestService(trip)
	ctx := context.Background()

	for _, seat := range []int{1, 2, 3} {
		_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
			TripID: trip.ID.String(),
			Seats:  []int{seat},
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.CancelAllForTrip(ctx, trip.ID, "trip-deletion"))

	active, err := repo.ActiveCountByTrip(ctx, trip.ID)
	require.NoError(t, err)
	assert.Zero(t, active)
	assert.Len(t, sink.cancelled, 3)

	seats, err := svc.SeatMap(ctx, trip.ID)
	require.NoError(t, err)
	assert.Zero(t, seats.Summary.Booked)
}

func TestListMine_SortedResponses(t *testing.T) {
	trip := newTestTrip(40)
	svc, _, _ := newTestService(trip)
	ctx := context.Background()
	userID := uuid.New()

	for _, seat := range []int{4, 9} {
		_, err := svc.Book(ctx, userID, CreateReservationRequest{
			TripID: trip.ID.String(),
			Seats:  []int{seat},
		})
		require.NoError(t, err)
	}
	_, err := svc.Book(ctx, uuid.New(), CreateReservationRequest{
		TripID: trip.ID.String(),
		Seats:  []int{30},
	})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	var seats []int
	for _, r := range mine {
		seats = append(seats, r.Seats...)
	}
	sort.Ints(seats)
	assert.Equal(t, []int{4, 9}, seats)
}
