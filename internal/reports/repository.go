package reports

import (
	"context"

	"gorm.io/gorm"
)

// Repository runs the aggregation queries. All of them read the reservations
// table only; the report layer never joins into live seat state.
type Repository interface {
	StatusBreakdown(ctx context.Context) ([]StatusCount, error)
	ReservationsPerDay(ctx context.Context, days int) ([]DailyReservations, error)
	RevenuePerMonth(ctx context.Context, months int) ([]MonthlyRevenue, error)
	TopDestinations(ctx context.Context, limit int) ([]DestinationVolume, error)
	Totals(ctx context.Context) (total int64, active int64, revenue float64, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) StatusBreakdown(ctx context.Context) ([]StatusCount, error) {
	var breakdown []StatusCount
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("count DESC").
		Scan(&breakdown).Error
	return breakdown, err
}

func (r *repository) ReservationsPerDay(ctx context.Context, days int) ([]DailyReservations, error) {
	var daily []DailyReservations
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select("TO_CHAR(created_at, 'YYYY-MM-DD') AS day, COUNT(*) AS count").
		Where("created_at >= NOW() - make_interval(days => ?)", days).
		Group("day").
		Order("day ASC").
		Scan(&daily).Error
	return daily, err
}

func (r *repository) RevenuePerMonth(ctx context.Context, months int) ([]MonthlyRevenue, error) {
	var monthly []MonthlyRevenue
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select("TO_CHAR(created_at, 'YYYY-MM') AS month, COALESCE(SUM(price), 0) AS revenue").
		Where("status != 'cancelled'").
		Where("created_at >= NOW() - make_interval(months => ?)", months).
		Group("month").
		Order("month ASC").
		Scan(&monthly).Error
	return monthly, err
}

func (r *repository) TopDestinations(ctx context.Context, limit int) ([]DestinationVolume, error) {
	var destinations []DestinationVolume
	err := r.db.WithContext(ctx).
		Table("reservations").
		Select("segment_destination AS destination, COUNT(*) AS count").
		Where("status IN ('confirmed', 'validated')").
		Group("segment_destination").
		Order("count DESC").
		Limit(limit).
		Scan(&destinations).Error
	return destinations, err
}

func (r *repository) Totals(ctx context.Context) (int64, int64, float64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Table("reservations").Count(&total).Error; err != nil {
		return 0, 0, 0, err
	}

	var active int64
	if err := r.db.WithContext(ctx).
		Table("reservations").
		Where("status IN ('confirmed', 'validated')").
		Count(&active).Error; err != nil {
		return 0, 0, 0, err
	}

	var revenue struct {
		Revenue float64
	}
	if err := r.db.WithContext(ctx).
		Table("reservations").
		Select("COALESCE(SUM(price), 0) AS revenue").
		Where("status != 'cancelled'").
		Scan(&revenue).Error; err != nil {
		return 0, 0, 0, err
	}

	return total, active, revenue.Revenue, nil
}
