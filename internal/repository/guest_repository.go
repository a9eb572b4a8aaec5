package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GuestRepository defines the interface for guest data access
type GuestRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Guest, error)
	// LockByID loads the guest with a row lock held until the surrounding
	// transaction ends. Only meaningful inside WithinTransaction.
	LockByID(ctx context.Context, id uuid.UUID) (*models.Guest, error)
	Create(ctx context.Context, guest *models.Guest) error
	Update(ctx context.Context, guest *models.Guest) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, query *ListQuery) ([]models.Guest, int64, error)
}

type guestRepository struct {
	db *gorm.DB
}

// NewGuestRepository creates a new guest repository
func NewGuestRepository(db *gorm.DB) GuestRepository {
	return &guestRepository{db: db}
}

func (r *guestRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	var guest models.Guest
	if err := r.db.WithContext(ctx).First(&guest, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *guestRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	var guest models.Guest
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&guest, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *guestRepository) Create(ctx context.Context, guest *models.Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

func (r *guestRepository) Update(ctx context.Context, guest *models.Guest) error {
	result := r.db.WithContext(ctx).
		Model(&models.Guest{}).
		Where("id = ?", guest.ID).
		Select("name", "email", "phone", "nationality", "id_type", "id_number", "notes").
		Updates(guest)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *guestRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Guest{}, id)
}

func (r *guestRepository) List(ctx context.Context, query *ListQuery) ([]models.Guest, int64, error) {
	var guests []models.Guest
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Guest{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ? OR id_number ILIKE ?",
			search, search, search, search)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order(query.orderClause(map[string]string{
		"name":       "name",
		"created_at": "created_at",
	}, "created_at DESC"))

	err := query.paginate(db).Find(&guests).Error
	return guests, total, err
}
