package reservations

import (
	"context"
	"errors"
	"time"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error)
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]Reservation, error)
	List(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error)

	// Transition moves the reservation to target under a row lock. It returns
	// the post-transition row and whether the move was applied; a reservation
	// already at target reports applied=false with no error, so retried
	// cancels and validations stay idempotent.
	Transition(ctx context.Context, id uuid.UUID, target Status, actor string) (*Reservation, bool, error)

	// Delete removes the ledger entry and its children outright. Admin purge
	// only; normal lifecycle never deletes rows.
	Delete(ctx context.Context, id uuid.UUID) error

	ListActiveForTripDate(ctx context.Context, tripID uuid.UUID, date string) ([]Reservation, error)
	ActiveCountByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)
	BookedSeatCount(ctx context.Context, tripID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		First(&reservation, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("reservation")
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("trip_id = ?", tripID).
		Order("created_at DESC").
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) List(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error) {
	db := r.db.WithContext(ctx).Model(&Reservation{})

	if query.TripID != "" {
		db = db.Where("trip_id = ?", query.TripID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Date != "" {
		db = db.Where("date = ?", query.Date)
	}

	var totalCount int64
	if err := db.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}

	var reservations []Reservation
	err := db.
		Preload("Seats").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reservations).Error
	return reservations, totalCount, err
}

func (r *repository) Transition(ctx context.Context, id uuid.UUID, target Status, actor string) (*Reservation, bool, error) {
	var reservation Reservation
	applied := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&reservation, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return faults.NotFound("reservation")
			}
			return err
		}

		if reservation.Status == target {
			return nil
		}
		if !reservation.Status.CanTransitionTo(target) {
			switch target {
			case StatusCancelled:
				return faults.NotCancellable(string(reservation.Status))
			case StatusValidated:
				return faults.NotConfirmed(string(reservation.Status))
			default:
				return faults.InvalidTransition(string(reservation.Status), string(target))
			}
		}

		from := reservation.Status
		now := time.Now()
		reservation.Status = target
		switch target {
		case StatusCancelled:
			reservation.CancelledAt = &now
		case StatusValidated:
			reservation.ValidatedAt = &now
		}

		if err := tx.Save(&reservation).Error; err != nil {
			return err
		}
		if err := tx.Create(&Transition{
			ReservationID: reservation.ID,
			FromStatus:    from,
			ToStatus:      target,
			Actor:         actor,
		}).Error; err != nil {
			return err
		}

		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if err := r.db.WithContext(ctx).Preload("Seats").First(&reservation, "id = ?", id).Error; err != nil {
		return nil, false, err
	}
	return &reservation, applied, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reservation_id = ?", id).Delete(&ReservationSeat{}).Error; err != nil {
			return err
		}
		if err := tx.Where("reservation_id = ?", id).Delete(&Transition{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Reservation{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return faults.NotFound("reservation")
		}
		return nil
	})
}

func (r *repository) ListActiveForTripDate(ctx context.Context, tripID uuid.UUID, date string) ([]Reservation, error) {
	var reservations []Reservation
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("trip_id = ? AND date = ? AND status IN ?", tripID, date,
			[]Status{StatusConfirmed, StatusValidated}).
		Find(&reservations).Error
	return reservations, err
}

func (r *repository) ActiveCountByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("trip_id = ? AND status IN ?", tripID,
			[]Status{StatusConfirmed, StatusValidated}).
		Count(&count).Error
	return count, err
}

func (r *repository) BookedSeatCount(ctx context.Context, tripID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ReservationSeat{}).
		Joins("JOIN reservations ON reservations.id = reservation_seats.reservation_id").
		Where("reservations.trip_id = ? AND reservations.status IN ?", tripID,
			[]Status{StatusConfirmed, StatusValidated}).
		Count(&count).Error
	return int(count), err
}
