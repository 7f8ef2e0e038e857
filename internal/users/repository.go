package users

import (
	"context"
	"errors"

	"buslane/internal/shared/faults"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var user User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

func (r *repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error) {
	var found []User
	if len(ids) == 0 {
		return found, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&found).Error
	return found, err
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	var all []User
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&all).Error
	return all, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return faults.NotFound("user")
	}
	return nil
}
