package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository mirrors payment orders and bookings to durable storage
type Repository interface {
	CreatePaymentOrder(ctx context.Context, order *PaymentOrder) error
	UpdatePaymentOrder(ctx context.Context, orderID uuid.UUID, status OrderStatus, failureReason string) error
	GetAllPaymentOrders(ctx context.Context) ([]PaymentOrder, error)

	CreateBooking(ctx context.Context, booking *Booking) error
	GetAllBookings(ctx context.Context) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePaymentOrder(ctx context.Context, order *PaymentOrder) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) UpdatePaymentOrder(ctx context.Context, orderID uuid.UUID, status OrderStatus, failureReason string) error {
	updates := map[string]interface{}{"status": status}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}
	return r.db.WithContext(ctx).Model(&PaymentOrder{}).
		Where("id = ?", orderID).
		Updates(updates).Error
}

func (r *repository) GetAllPaymentOrders(ctx context.Context) ([]PaymentOrder, error) {
	var orders []PaymentOrder
	err := r.db.WithContext(ctx).Find(&orders).Error
	return orders, err
}

func (r *repository) CreateBooking(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) GetAllBookings(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).Preload("Seats").Find(&bookings).Error
	return bookings, err
}
