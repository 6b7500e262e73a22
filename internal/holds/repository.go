package holds

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository mirrors hold state into Postgres. Like the seat inventory, the
// in-process manager is authoritative at runtime; the table exists so active
// holds survive a restart and terminal holds remain for audit.
type Repository interface {
	CreateHold(ctx context.Context, hold *Hold) error
	UpdateHoldStatus(ctx context.Context, id uuid.UUID, status Status) error
	GetHoldsByStatus(ctx context.Context, status Status) ([]Hold, error)
	DeleteAllHolds(ctx context.Context) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHold(ctx context.Context, hold *Hold) error {
	return r.db.WithContext(ctx).Create(hold).Error
}

func (r *repository) UpdateHoldStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Hold{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *repository) GetHoldsByStatus(ctx context.Context, status Status) ([]Hold, error) {
	var result []Hold
	err := r.db.WithContext(ctx).
		Preload("Seats").
		Where("status = ?", status).
		Find(&result).Error
	return result, err
}

func (r *repository) DeleteAllHolds(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("1 = 1").Delete(&HoldSeat{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&Hold{}).Error
}
