package trips

import (
	"context"
	"errors"
	"time"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, trip *Trip) error
	GetByID(ctx context.Context, id uuid.UUID) (*Trip, error)
	Update(ctx context.Context, trip *Trip) error

	// UpdateWithSegments persists the trip fields and swaps its segment set
	// in one transaction, so a failure leaves neither change behind.
	UpdateWithSegments(ctx context.Context, trip *Trip, segments []Segment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query TripListQuery) ([]Trip, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, trip *Trip) error {
	return r.db.WithContext(ctx).Create(trip).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Trip, error) {
	var trip Trip
	err := r.db.WithContext(ctx).
		Preload("Segments").
		Where("id = ?", id).
		First(&trip).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("trip")
		}
		return nil, err
	}
	return &trip, nil
}

func (r *repository) Update(ctx context.Context, trip *Trip) error {
	return r.db.WithContext(ctx).
		Omit("Segments").
		Save(trip).Error
}

func (r *repository) UpdateWithSegments(ctx context.Context, trip *Trip, segments []Segment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Segments").Save(trip).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", trip.ID).Delete(&Segment{}).Error; err != nil {
			return err
		}
		if len(segments) == 0 {
			return nil
		}
		for i := range segments {
			segments[i].TripID = trip.ID
		}
		return tx.Create(&segments).Error
	})
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Trip{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return faults.NotFound("trip")
	}
	return nil
}

func (r *repository) List(ctx context.Context, query TripListQuery) ([]Trip, int64, error) {
	var results []Trip
	var totalCount int64

	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 50
	}

	baseQuery := r.db.WithContext(ctx).Model(&Trip{})

	// Origin/destination match the main line or any owned segment, so a
	// search for an intermediate city still finds the trip.
	if query.Origin != "" {
		baseQuery = baseQuery.Where(
			"origin ILIKE ? OR id IN (SELECT trip_id FROM trip_segments WHERE origin ILIKE ?)",
			query.Origin, query.Origin)
	}
	if query.Destination != "" {
		baseQuery = baseQuery.Where(
			"destination ILIKE ? OR id IN (SELECT trip_id FROM trip_segments WHERE destination ILIKE ?)",
			query.Destination, query.Destination)
	}
	if query.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", query.DateFrom); err == nil {
			baseQuery = baseQuery.Where("date >= ?", dateFrom)
		}
	}
	if query.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", query.DateTo); err == nil {
			dateTo = dateTo.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			baseQuery = baseQuery.Where("date <= ?", dateTo)
		}
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Segments").
		Order("date ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&results).Error

	return results, totalCount, err
}
