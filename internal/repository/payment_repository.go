package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/models"
	"gorm.io/gorm"
)

// PaymentRepository defines the interface for payment event data access.
// Payments are append-only; there is no update or delete.
type PaymentRepository interface {
	// Create inserts the payment together with its allocation rows
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Omit("Guest").Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&payment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Allocations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("guest_id = ?", guestID).
		Order("date DESC, id ASC").
		Find(&payments).Error
	return payments, err
}
