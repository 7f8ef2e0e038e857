package reports

import (
	"context"

	"buslane/internal/shared/faults"
)

const (
	defaultDays            = 30
	defaultMonths          = 12
	defaultTopDestinations = 5
)

type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	total, active, revenue, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	breakdown, err := s.repo.StatusBreakdown(ctx)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	daily, err := s.repo.ReservationsPerDay(ctx, defaultDays)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	monthly, err := s.repo.RevenuePerMonth(ctx, defaultMonths)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	destinations, err := s.repo.TopDestinations(ctx, defaultTopDestinations)
	if err != nil {
		return nil, faults.Unavailable(err)
	}

	return &Summary{
		TotalReservations:  total,
		ActiveReservations: active,
		TotalRevenue:       revenue,
		StatusBreakdown:    breakdown,
		ReservationsPerDay: daily,
		RevenuePerMonth:    monthly,
		TopDestinations:    destinations,
	}, nil
}
