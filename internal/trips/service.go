package trips

import (
	"context"
	"strings"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
)

// ReservationGuard answers the questions the catalog needs from the ledger
// without importing it. Wired in api/routes.
type ReservationGuard interface {
	// BookedSeatCount is the number of seats held by non-cancelled
	// reservations for the trip.
	BookedSeatCount(ctx context.Context, tripID uuid.UUID) (int, error)
	// ActiveReservationCount counts non-cancelled reservations.
	ActiveReservationCount(ctx context.Context, tripID uuid.UUID) (int64, error)
	// CancelAllForTrip force-cancels every active reservation on the trip.
	CancelAllForTrip(ctx context.Context, tripID uuid.UUID, actor string) error
}

type Service interface {
	CreateTrip(ctx context.Context, operatorID uuid.UUID, req CreateTripRequest) (*TripResponse, error)
	GetTrip(ctx context.Context, id uuid.UUID) (*Trip, error)
	GetTripResponse(ctx context.Context, id uuid.UUID) (*TripResponse, error)
	UpdateTrip(ctx context.Context, id uuid.UUID, req UpdateTripRequest) (*TripResponse, error)
	DeleteTrip(ctx context.Context, id uuid.UUID, force bool) error
	ListTrips(ctx context.Context, query TripListQuery) (*PaginatedTrips, error)

	SetReservationGuard(guard ReservationGuard)
}

// PaginatedTrips is the list response envelope.
type PaginatedTrips struct {
	Trips      []TripResponse `json:"trips"`
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
}

type service struct {
	repo  Repository
	guard ReservationGuard
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SetReservationGuard(guard ReservationGuard) {
	s.guard = guard
}

func (s *service) CreateTrip(ctx context.Context, operatorID uuid.UUID, req CreateTripRequest) (*TripResponse, error) {
	if err := validateRoute(req.Origin, req.Destination); err != nil {
		return nil, err
	}
	if req.Capacity <= 0 {
		return nil, faults.Validation("capacity must be greater than zero")
	}
	if req.Price < 0 {
		return nil, faults.Validation("price must not be negative")
	}

	segments := make([]Segment, 0, len(req.Segments))
	for _, seg := range req.Segments {
		if seg.Price < 0 {
			return nil, faults.Validation("segment %s → %s has a negative price", seg.Origin, seg.Destination)
		}
		if err := validateRoute(seg.Origin, seg.Destination); err != nil {
			return nil, err
		}
		segments = append(segments, Segment{
			Origin:      seg.Origin,
			Destination: seg.Destination,
			Price:       seg.Price,
			Duration:    seg.Duration,
		})
	}

	trip := &Trip{
		Company:       req.Company,
		Origin:        req.Origin,
		Destination:   req.Destination,
		Capacity:      req.Capacity,
		Date:          req.Date,
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Price:         req.Price,
		Segments:      segments,
		CreatedBy:     operatorID,
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, faults.Unavailable(err)
	}

	resp := trip.ToResponse(0)
	return &resp, nil
}

func (s *service) GetTrip(ctx context.Context, id uuid.UUID) (*Trip, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetTripResponse(ctx context.Context, id uuid.UUID) (*TripResponse, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	booked := 0
	if s.guard != nil {
		if count, err := s.guard.BookedSeatCount(ctx, id); err == nil {
			booked = count
		}
	}

	resp := trip.ToResponse(booked)
	return &resp, nil
}

func (s *service) UpdateTrip(ctx context.Context, id uuid.UUID, req UpdateTripRequest) (*TripResponse, error) {
	trip, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	booked := 0
	if s.guard != nil {
		booked, err = s.guard.BookedSeatCount(ctx, id)
		if err != nil {
			return nil, faults.Unavailable(err)
		}
	}

	if req.Capacity != nil {
		if *req.Capacity < booked {
			return nil, faults.CapacityConflict(*req.Capacity, booked)
		}
		trip.Capacity = *req.Capacity
	}
	if req.Company != nil {
		trip.Company = *req.Company
	}
	if req.Origin != nil {
		trip.Origin = *req.Origin
	}
	if req.Destination != nil {
		trip.Destination = *req.Destination
	}
	if err := validateRoute(trip.Origin, trip.Destination); err != nil {
		return nil, err
	}
	if req.Date != nil {
		trip.Date = *req.Date
	}
	if req.DepartureTime != nil {
		trip.DepartureTime = *req.DepartureTime
	}
	if req.ArrivalTime != nil {
		trip.ArrivalTime = *req.ArrivalTime
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, faults.Validation("price must not be negative")
		}
		trip.Price = *req.Price
	}

	// The segment payload is validated before anything is written, so a
	// rejected request leaves no partial field changes behind.
	if req.Segments != nil {
		segments := make([]Segment, 0, len(req.Segments))
		for _, seg := range req.Segments {
			if seg.Price < 0 {
				return nil, faults.Validation("segment %s → %s has a negative price", seg.Origin, seg.Destination)
			}
			if err := validateRoute(seg.Origin, seg.Destination); err != nil {
				return nil, err
			}
			segments = append(segments, Segment{
				Origin:      seg.Origin,
				Destination: seg.Destination,
				Price:       seg.Price,
				Duration:    seg.Duration,
			})
		}
		if err := s.repo.UpdateWithSegments(ctx, trip, segments); err != nil {
			return nil, faults.Unavailable(err)
		}
		trip.Segments = segments
	} else if err := s.repo.Update(ctx, trip); err != nil {
		return nil, faults.Unavailable(err)
	}

	resp := trip.ToResponse(booked)
	return &resp, nil
}

func (s *service) DeleteTrip(ctx context.Context, id uuid.UUID, force bool) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	if s.guard != nil {
		active, err := s.guard.ActiveReservationCount(ctx, id)
		if err != nil {
			return faults.Unavailable(err)
		}
		if active > 0 {
			if !force {
				return faults.HasActiveReservations(active)
			}
			if err := s.guard.CancelAllForTrip(ctx, id, "trip-deletion"); err != nil {
				return err
			}
		}
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) ListTrips(ctx context.Context, query TripListQuery) (*PaginatedTrips, error) {
	found, totalCount, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	responses := make([]TripResponse, 0, len(found))
	for i := range found {
		booked := 0
		if s.guard != nil {
			if count, err := s.guard.BookedSeatCount(ctx, found[i].ID); err == nil {
				booked = count
			}
		}
		responses = append(responses, found[i].ToResponse(booked))
	}

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}

	return &PaginatedTrips{
		Trips:      responses,
		TotalCount: totalCount,
		Page:       query.Page,
		Limit:      query.Limit,
	}, nil
}

func validateRoute(origin, destination string) error {
	if strings.EqualFold(strings.TrimSpace(origin), strings.TrimSpace(destination)) {
		return faults.Validation("origin and destination must differ")
	}
	return nil
}
