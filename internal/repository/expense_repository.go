package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sjperalta/hostel-api/internal/models"
	"gorm.io/gorm"
)

// ExpenseRepository defines the interface for expense data access
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	FindInRange(ctx context.Context, period *models.DateRange) ([]models.Expense, error)
	Create(ctx context.Context, expense *models.Expense) error
	SetReceipt(ctx context.Context, id uuid.UUID, path string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).First(&expense, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *expenseRepository) FindInRange(ctx context.Context, period *models.DateRange) ([]models.Expense, error) {
	var expenses []models.Expense
	db := r.db.WithContext(ctx)
	if period != nil {
		db = db.Where("date BETWEEN ? AND ?", period.Start, period.End)
	}
	err := db.Order("date ASC, id ASC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *expenseRepository) SetReceipt(ctx context.Context, id uuid.UUID, path string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ?", id).
		Update("receipt_path", path)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Expense{}, id)
}
