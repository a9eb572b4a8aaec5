package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/models"
	"gorm.io/gorm"
)

// DormitoryRepository defines the interface for dormitory data access
type DormitoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dormitory, error)
	Create(ctx context.Context, dormitory *models.Dormitory) error
	FindAll(ctx context.Context) ([]models.Dormitory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type dormitoryRepository struct {
	db *gorm.DB
}

// NewDormitoryRepository creates a new dormitory repository
func NewDormitoryRepository(db *gorm.DB) DormitoryRepository {
	return &dormitoryRepository{db: db}
}

func (r *dormitoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dormitory, error) {
	var dorm models.Dormitory
	if err := r.db.WithContext(ctx).First(&dorm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dorm, nil
}

func (r *dormitoryRepository) Create(ctx context.Context, dormitory *models.Dormitory) error {
	return r.db.WithContext(ctx).Create(dormitory).Error
}

func (r *dormitoryRepository) FindAll(ctx context.Context) ([]models.Dormitory, error) {
	var dorms []models.Dormitory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&dorms).Error
	return dorms, err
}

func (r *dormitoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Dormitory{}, id)
}

// BedRepository defines the interface for bed data access
type BedRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Bed, error)
	Create(ctx context.Context, bed *models.Bed) error
	Update(ctx context.Context, bed *models.Bed) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error)
	List(ctx context.Context, dormitoryID *uuid.UUID, status string) ([]models.Bed, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	// CountByStatus returns the number of beds per status value
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type bedRepository struct {
	db *gorm.DB
}

// NewBedRepository creates a new bed repository
func NewBedRepository(db *gorm.DB) BedRepository {
	return &bedRepository{db: db}
}

func (r *bedRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Bed, error) {
	var bed models.Bed
	err := r.db.WithContext(ctx).
		Joins("Dormitory").
		First(&bed, "beds.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &bed, nil
}

func (r *bedRepository) Create(ctx context.Context, bed *models.Bed) error {
	return r.db.WithContext(ctx).Create(bed).Error
}

func (r *bedRepository) Update(ctx context.Context, bed *models.Bed) error {
	result := r.db.WithContext(ctx).
		Model(&models.Bed{}).
		Where("id = ?", bed.ID).
		Select("bed_number", "bed_type", "price", "notes").
		Updates(bed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Bed{}, id)
}

func (r *bedRepository) CountByDormitory(ctx context.Context, dormitoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Bed{}).
		Where("dormitory_id = ?", dormitoryID).
		Count(&count).Error
	return count, err
}

func (r *bedRepository) List(ctx context.Context, dormitoryID *uuid.UUID, status string) ([]models.Bed, error) {
	var beds []models.Bed
	db := r.db.WithContext(ctx).Joins("Dormitory")
	if dormitoryID != nil {
		db = db.Where("beds.dormitory_id = ?", *dormitoryID)
	}
	if status != "" {
		db = db.Where("beds.status = ?", status)
	}
	err := db.Order("beds.bed_number ASC").Find(&beds).Error
	return beds, err
}

func (r *bedRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Bed{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bedRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Bed{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
