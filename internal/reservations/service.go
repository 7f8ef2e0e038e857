package reservations

import (
	"context"
	"time"

	"buslane/internal/seatmap"
	"buslane/internal/shared/config"
	"buslane/internal/shared/faults"
	"buslane/internal/trips"
	"buslane/pkg/logger"

	"github.com/google/uuid"
)

// TripCatalog is the slice of the trip service the coordinator needs. Wired
// in api/routes to avoid a package cycle with trips.
type TripCatalog interface {
	GetTrip(ctx context.Context, id uuid.UUID) (*trips.Trip, error)
}

// NameResolver maps user IDs to display names; missing users resolve to
// "unknown" so the ledger outlives account deletion.
type NameResolver interface {
	DisplayNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// EventSink receives lifecycle events for fan-out. Implementations must not
// block; publishing failures never fail the booking.
type EventSink interface {
	ReservationCreated(reservation ReservationResponse)
	ReservationCancelled(reservation ReservationResponse)
	ReservationValidated(reservation ReservationResponse)
	ReservationDeleted(reservation ReservationResponse)
}

type Service interface {
	Book(ctx context.Context, userID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error)
	GetReservation(ctx context.Context, id uuid.UUID, requesterID uuid.UUID, isAdmin bool) (*ReservationResponse, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]ReservationResponse, error)
	ListAll(ctx context.Context, query ReservationListQuery) (*PaginatedReservations, error)

	// TakenSeats is the unauthenticated view the booking page polls: the
	// seat numbers held by non-cancelled reservations, nothing else.
	TakenSeats(ctx context.Context, tripID uuid.UUID) ([]TakenSeatResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, requesterID uuid.UUID, isAdmin bool) (*ReservationResponse, error)
	ValidateBoarding(ctx context.Context, id uuid.UUID, actor string) (*ReservationResponse, error)
	Purge(ctx context.Context, id uuid.UUID) error

	SeatMap(ctx context.Context, tripID uuid.UUID) (*SeatMapResponse, error)
	RebuildSeatMap(ctx context.Context, tripID uuid.UUID) error

	// Guard surface consumed by the trip catalog.
	BookedSeatCount(ctx context.Context, tripID uuid.UUID) (int, error)
	ActiveReservationCount(ctx context.Context, tripID uuid.UUID) (int64, error)
	CancelAllForTrip(ctx context.Context, tripID uuid.UUID, actor string) error

	SetEventSink(sink EventSink)
	SetNameResolver(resolver NameResolver)
}

type service struct {
	repo    Repository
	store   seatmap.Store
	catalog TripCatalog
	booking config.BookingConfig
	log     *logger.Logger

	events EventSink
	names  NameResolver

	// now is swappable in tests.
	now func() time.Time
}

func NewService(repo Repository, store seatmap.Store, catalog TripCatalog, booking config.BookingConfig) Service {
	return &service{
		repo:    repo,
		store:   store,
		catalog: catalog,
		booking: booking,
		log:     logger.GetDefault(),
		now:     time.Now,
	}
}

func (s *service) SetEventSink(sink EventSink) {
	s.events = sink
}

func (s *service) SetNameResolver(resolver NameResolver) {
	s.names = resolver
}

func (s *service) Book(ctx context.Context, userID uuid.UUID, req CreateReservationRequest) (*ReservationResponse, error) {
	tripID, err := uuid.Parse(req.TripID)
	if err != nil {
		return nil, faults.Validation("invalid trip id")
	}

	trip, err := s.catalog.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	if err := s.validateSeats(req.Seats, trip.Capacity); err != nil {
		return nil, err
	}
	if trip.DepartedBefore(s.now()) {
		return nil, faults.Validation("trip has already departed")
	}

	segment, _ := trip.FindSegment(trip.Origin, trip.Destination)
	if req.Segment != nil {
		seg, ok := trip.FindSegment(req.Segment.Origin, req.Segment.Destination)
		if !ok {
			return nil, faults.Validation("trip does not serve %s → %s", req.Segment.Origin, req.Segment.Destination)
		}
		segment = seg
	}

	date := trip.DateKey()
	hold, err := s.store.TryHold(ctx, trip.ID, date, req.Seats, s.booking.SeatHoldTTL)
	if err != nil {
		if faults.Is(err, faults.KindSeatUnavailable) {
			s.log.LogSeatConflict(ctx, trip.ID.String(), firstSeat(req.Seats))
		}
		return nil, err
	}

	seats := make([]ReservationSeat, 0, len(req.Seats))
	for _, seat := range req.Seats {
		seats = append(seats, ReservationSeat{SeatNumber: seat})
	}

	reservation := &Reservation{
		UserID:             userID,
		TripID:             trip.ID,
		Date:               date,
		SegmentOrigin:      segment.Origin,
		SegmentDestination: segment.Destination,
		Price:              segment.Price * float64(len(req.Seats)),
		Status:             StatusConfirmed,
		Seats:              seats,
	}

	if err := s.repo.Create(ctx, reservation); err != nil {
		// Compensate: free the held seats before surfacing the failure.
		_ = s.store.Release(ctx, hold)
		return nil, faults.Unavailable(err)
	}

	if err := s.store.Commit(ctx, hold, reservation.ID.String()); err != nil {
		// The hold lapsed between create and commit. Void the ledger entry
		// rather than leave it pointing at seats it never secured.
		_, _, _ = s.repo.Transition(ctx, reservation.ID, StatusCancelled, "system:commit-failed")
		return nil, err
	}

	s.log.LogReservationCreated(ctx, reservation.ID.String(), trip.ID.String(), userID.String(), req.Seats)

	resp := reservation.ToResponse(s.resolveName(ctx, userID))
	if s.events != nil {
		s.events.ReservationCreated(resp)
	}
	return &resp, nil
}

func (s *service) validateSeats(seats []int, capacity int) error {
	if len(seats) == 0 {
		return faults.Validation("at least one seat is required")
	}
	if s.booking.MaxSeatsPerReservation > 0 && len(seats) > s.booking.MaxSeatsPerReservation {
		return faults.Validation("at most %d seats per reservation", s.booking.MaxSeatsPerReservation)
	}
	seen := make(map[int]bool, len(seats))
	for _, seat := range seats {
		if seat < 1 || seat > capacity {
			return faults.Validation("seat %d is out of range 1..%d", seat, capacity)
		}
		if seen[seat] {
			return faults.Validation("seat %d requested twice", seat)
		}
		seen[seat] = true
	}
	return nil
}

func (s *service) GetReservation(ctx context.Context, id uuid.UUID, requesterID uuid.UUID, isAdmin bool) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && reservation.UserID != requesterID {
		return nil, faults.Forbidden("reservation belongs to another user")
	}
	resp := reservation.ToResponse(s.resolveName(ctx, reservation.UserID))
	return &resp, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]ReservationResponse, error) {
	reservations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, faults.Unavailable(err)
	}
	return s.toResponses(ctx, reservations), nil
}

func (s *service) TakenSeats(ctx context.Context, tripID uuid.UUID) ([]TakenSeatResponse, error) {
	reservations, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	taken := make([]TakenSeatResponse, 0)
	for i := range reservations {
		if !reservations[i].Status.IsActive() {
			continue
		}
		for _, seat := range reservations[i].SeatNumbers() {
			taken = append(taken, TakenSeatResponse{Seat: seat})
		}
	}
	return taken, nil
}

func (s *service) ListAll(ctx context.Context, query ReservationListQuery) (*PaginatedReservations, error) {
	reservations, totalCount, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}

	return &PaginatedReservations{
		Reservations: s.toResponses(ctx, reservations),
		TotalCount:   totalCount,
		Page:         query.Page,
		Limit:        query.Limit,
	}, nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, requesterID uuid.UUID, isAdmin bool) (*ReservationResponse, error) {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && reservation.UserID != requesterID {
		return nil, faults.Forbidden("reservation belongs to another user")
	}

	if !s.booking.AllowCancelAfterDeparture && reservation.Status == StatusConfirmed {
		trip, err := s.catalog.GetTrip(ctx, reservation.TripID)
		if err == nil && trip.DepartedBefore(s.now()) {
			return nil, faults.New(faults.KindNotCancellable, "trip has already departed")
		}
	}

	actor := requesterID.String()
	if isAdmin && reservation.UserID != requesterID {
		actor = "admin:" + actor
	}

	updated, applied, err := s.repo.Transition(ctx, id, StatusCancelled, actor)
	if err != nil {
		return nil, err
	}

	resp := updated.ToResponse(s.resolveName(ctx, updated.UserID))
	if !applied {
		// Already cancelled; repeating the request changes nothing.
		return &resp, nil
	}

	if err := s.store.Free(ctx, updated.TripID, updated.Date, updated.SeatNumbers()); err != nil {
		s.log.WithError(err).Warn("failed to free seats after cancellation",
			"reservation_id", updated.ID.String())
	}

	s.log.LogReservationCancelled(ctx, updated.ID.String(), actor)
	if s.events != nil {
		s.events.ReservationCancelled(resp)
	}
	return &resp, nil
}

func (s *service) ValidateBoarding(ctx context.Context, id uuid.UUID, actor string) (*ReservationResponse, error) {
	updated, applied, err := s.repo.Transition(ctx, id, StatusValidated, actor)
	if err != nil {
		return nil, err
	}

	resp := updated.ToResponse(s.resolveName(ctx, updated.UserID))
	if !applied {
		return &resp, nil
	}

	s.log.LogReservationValidated(ctx, updated.ID.String())
	if s.events != nil {
		s.events.ReservationValidated(resp)
	}
	return &resp, nil
}

// Purge erases a ledger entry outright and frees any seats it still held.
// Admin-only escape hatch; the audit trail goes with it.
func (s *service) Purge(ctx context.Context, id uuid.UUID) error {
	reservation, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if reservation.Status.IsActive() {
		if err := s.store.Free(ctx, reservation.TripID, reservation.Date, reservation.SeatNumbers()); err != nil {
			s.log.WithError(err).Warn("failed to free seats after purge",
				"reservation_id", id.String())
		}
	}

	s.log.Info("reservation purged", "reservation_id", id.String())
	if s.events != nil {
		s.events.ReservationDeleted(reservation.ToResponse(s.resolveName(ctx, reservation.UserID)))
	}
	return nil
}

func (s *service) SeatMap(ctx context.Context, tripID uuid.UUID) (*SeatMapResponse, error) {
	trip, err := s.catalog.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	states, err := s.store.Availability(ctx, trip.ID, trip.DateKey(), trip.Capacity)
	if err != nil {
		return nil, err
	}

	seats := make(map[int]SeatView, len(states))
	var summary SeatMapSummaryView
	for seat, state := range states {
		seats[seat] = SeatView{Status: string(state.Status)}
		switch state.Status {
		case seatmap.SeatFree:
			summary.Free++
		case seatmap.SeatHeld:
			summary.Held++
		case seatmap.SeatBooked:
			summary.Booked++
		}
	}

	return &SeatMapResponse{
		TripID:   trip.ID.String(),
		Date:     trip.DateKey(),
		Capacity: trip.Capacity,
		Seats:    seats,
		Summary:  summary,
	}, nil
}

// RebuildSeatMap reconstructs the seat map from the ledger. The ledger is the
// source of truth; the seat map is only a materialized view of it.
func (s *service) RebuildSeatMap(ctx context.Context, tripID uuid.UUID) error {
	trip, err := s.catalog.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}

	date := trip.DateKey()
	if err := s.store.Clear(ctx, trip.ID, date); err != nil {
		return err
	}

	active, err := s.repo.ListActiveForTripDate(ctx, trip.ID, date)
	if err != nil {
		return faults.Unavailable(err)
	}
	for i := range active {
		if err := s.store.MarkBooked(ctx, trip.ID, date, active[i].SeatNumbers(), active[i].ID.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) BookedSeatCount(ctx context.Context, tripID uuid.UUID) (int, error) {
	return s.repo.BookedSeatCount(ctx, tripID)
}

func (s *service) ActiveReservationCount(ctx context.Context, tripID uuid.UUID) (int64, error) {
	return s.repo.ActiveCountByTrip(ctx, tripID)
}

func (s *service) CancelAllForTrip(ctx context.Context, tripID uuid.UUID, actor string) error {
	reservations, err := s.repo.ListByTrip(ctx, tripID)
	if err != nil {
		return faults.Unavailable(err)
	}

	for i := range reservations {
		if !reservations[i].Status.IsActive() {
			continue
		}
		updated, applied, err := s.repo.Transition(ctx, reservations[i].ID, StatusCancelled, actor)
		if err != nil {
			if faults.Is(err, faults.KindNotCancellable) {
				continue
			}
			return err
		}
		if !applied {
			continue
		}
		if err := s.store.Free(ctx, updated.TripID, updated.Date, updated.SeatNumbers()); err != nil {
			s.log.WithError(err).Warn("failed to free seats during trip cancellation",
				"reservation_id", updated.ID.String())
		}
		if s.events != nil {
			s.events.ReservationCancelled(updated.ToResponse(s.resolveName(ctx, updated.UserID)))
		}
	}
	return nil
}

func (s *service) toResponses(ctx context.Context, reservations []Reservation) []ReservationResponse {
	ids := make([]uuid.UUID, 0, len(reservations))
	for i := range reservations {
		ids = append(ids, reservations[i].UserID)
	}
	names := s.resolveNames(ctx, ids)

	responses := make([]ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, reservations[i].ToResponse(names[reservations[i].UserID]))
	}
	return responses
}

func (s *service) resolveName(ctx context.Context, userID uuid.UUID) string {
	return s.resolveNames(ctx, []uuid.UUID{userID})[userID]
}

func (s *service) resolveNames(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]string {
	if s.names == nil || len(ids) == 0 {
		return map[uuid.UUID]string{}
	}
	names, err := s.names.DisplayNames(ctx, ids)
	if err != nil {
		return map[uuid.UUID]string{}
	}
	return names
}

func firstSeat(seats []int) int {
	if len(seats) == 0 {
		return 0
	}
	return seats[0]
}
