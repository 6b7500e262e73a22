package seats

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository mirrors the in-memory inventory into Postgres so seat state
// survives restarts. The inventory is the runtime source of truth.
type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	GetAllSeats(ctx context.Context) ([]Seat, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	UpdateSeatsState(ctx context.Context, seatIDs []uuid.UUID, status Status, holdID *uuid.UUID) error
	ResetAllSeats(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) GetAllSeats(ctx context.Context) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Order("seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) CountByStatus(ctx context.Context, status Status) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *repository) UpdateSeatsState(ctx context.Context, seatIDs []uuid.UUID, status Status, holdID *uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("id IN ?", seatIDs).
		Updates(map[string]interface{}{
			"status":  status,
			"hold_id": holdID,
		}).Error
}

func (r *repository) ResetAllSeats(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("1 = 1").
		Updates(map[string]interface{}{
			"status":  StatusAvailable,
			"hold_id": nil,
		}).Error
}
