package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/models"
	"gorm.io/gorm"
)

// AssignmentRepository defines the interface for bed charge data access
type AssignmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	FindInRange(ctx context.Context, period *models.DateRange) ([]models.Assignment, error)
	FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Assignment, error)
	FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Assignment, error)
	// FindCheckInsInRange returns stays starting inside the range, oldest first
	FindCheckInsInRange(ctx context.Context, period models.DateRange) ([]models.Assignment, error)
	// FindCheckOutsInRange returns stays ending inside the range, oldest first
	FindCheckOutsInRange(ctx context.Context, period models.DateRange) ([]models.Assignment, error)
	// FindActiveAt returns stays with check_in <= t <= check_out
	FindActiveAt(ctx context.Context, t time.Time) ([]models.Assignment, error)
	// FindEnded returns stays whose check_out is before t and that were never checked out
	FindEnded(ctx context.Context, t time.Time) ([]models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	UpdatePayment(ctx context.Context, assignment *models.Assignment, fromStatus string) error
	MarkCheckedOut(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) withRefs(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Bed").
		Preload("Bed.Dormitory")
}

func (r *assignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.withRefs(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepository) FindInRange(ctx context.Context, period *models.DateRange) ([]models.Assignment, error) {
	var assignments []models.Assignment
	db := r.withRefs(ctx)
	if period != nil {
		// A stay belongs to a period when it started or was paid within it
		db = db.Where("(check_in BETWEEN ? AND ?) OR (payment_date BETWEEN ? AND ?)",
			period.Start, period.End, period.Start, period.End)
	}
	err := db.Order("COALESCE(payment_date, check_in) ASC, id ASC").Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.withRefs(ctx).
		Where("guest_id = ?", guestID).
		Order("check_in ASC, id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.withRefs(ctx).
		Where("guest_id = ? AND payment_status = ?", guestID, models.PaymentStatusNotPaid).
		Order("check_in ASC, id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindCheckInsInRange(ctx context.Context, period models.DateRange) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.withRefs(ctx).
		Where("check_in BETWEEN ? AND ?", period.Start, period.End).
		Order("check_in ASC, id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindCheckOutsInRange(ctx context.Context, period models.DateRange) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.withRefs(ctx).
		Where("check_out BETWEEN ? AND ?", period.Start, period.End).
		Order("check_out ASC, id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindActiveAt(ctx context.Context, t time.Time) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.withRefs(ctx).
		Where("check_in <= ? AND check_out >= ? AND checked_out_at IS NULL", t, t).
		Order("check_in ASC, id ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) FindEnded(ctx context.Context, t time.Time) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Preload("Bed").
		Where("check_out < ? AND checked_out_at IS NULL", t).
		Order("check_out ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("Guest", "Bed").Create(assignment).Error
}

func (r *assignmentRepository) UpdatePayment(ctx context.Context, assignment *models.Assignment, fromStatus string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND payment_status = ?", assignment.ID, fromStatus).
		Updates(map[string]interface{}{
			"payment_status": assignment.PaymentStatus,
			"payment_date":   assignment.PaymentDate,
			"paid_amount":    assignment.PaidAmount,
		})
	return casResult(result)
}

func (r *assignmentRepository) MarkCheckedOut(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("id = ? AND checked_out_at IS NULL", id).
		Update("checked_out_at", at)
	return casResult(result)
}

func (r *assignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Assignment{}, id)
}

// BarChargeRepository defines the interface for bar purchase data access
type BarChargeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.BarCharge, error)
	FindInRange(ctx context.Context, period *models.DateRange) ([]models.BarCharge, error)
	FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.BarCharge, error)
	FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.BarCharge, error)
	// TotalsByGuest sums bar charges per guest, regardless of payment status
	TotalsByGuest(ctx context.Context, guestIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	Create(ctx context.Context, charge *models.BarCharge) error
	UpdatePayment(ctx context.Context, charge *models.BarCharge, fromStatus string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type barChargeRepository struct {
	db *gorm.DB
}

// NewBarChargeRepository creates a new bar charge repository
func NewBarChargeRepository(db *gorm.DB) BarChargeRepository {
	return &barChargeRepository{db: db}
}

func (r *barChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.BarCharge, error) {
	var charge models.BarCharge
	if err := r.db.WithContext(ctx).Preload("Guest").First(&charge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &charge, nil
}

func (r *barChargeRepository) FindInRange(ctx context.Context, period *models.DateRange) ([]models.BarCharge, error) {
	var charges []models.BarCharge
	db := r.db.WithContext(ctx).Preload("Guest")
	if period != nil {
		db = db.Where("transaction_date BETWEEN ? AND ?", period.Start, period.End)
	}
	err := db.Order("transaction_date ASC, id ASC").Find(&charges).Error
	return charges, err
}

func (r *barChargeRepository) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.BarCharge, error) {
	var charges []models.BarCharge
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("transaction_date ASC, id ASC").
		Find(&charges).Error
	return charges, err
}

func (r *barChargeRepository) FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.BarCharge, error) {
	var charges []models.BarCharge
	err := r.db.WithContext(ctx).
		Where("guest_id = ? AND payment_status = ?", guestID, models.PaymentStatusNotPaid).
		Order("transaction_date ASC, id ASC").
		Find(&charges).Error
	return charges, err
}

func (r *barChargeRepository) TotalsByGuest(ctx context.Context, guestIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return sumByGuest(ctx, r.db, &models.BarCharge{}, "amount", guestIDs)
}

func (r *barChargeRepository) Create(ctx context.Context, charge *models.BarCharge) error {
	return r.db.WithContext(ctx).Omit("Guest").Create(charge).Error
}

func (r *barChargeRepository) UpdatePayment(ctx context.Context, charge *models.BarCharge, fromStatus string) error {
	result := r.db.WithContext(ctx).
		Model(&models.BarCharge{}).
		Where("id = ? AND payment_status = ?", charge.ID, fromStatus).
		Updates(map[string]interface{}{
			"payment_status": charge.PaymentStatus,
			"payment_date":   charge.PaymentDate,
		})
	return casResult(result)
}

func (r *barChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.BarCharge{}, id)
}

// ExtraChargeRepository defines the interface for extra service data access
type ExtraChargeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ExtraCharge, error)
	FindInRange(ctx context.Context, period *models.DateRange) ([]models.ExtraCharge, error)
	FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.ExtraCharge, error)
	FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.ExtraCharge, error)
	// TotalsByGuest sums extra services per guest, regardless of payment status
	TotalsByGuest(ctx context.Context, guestIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
	Create(ctx context.Context, charge *models.ExtraCharge) error
	UpdatePayment(ctx context.Context, charge *models.ExtraCharge, fromStatus string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type extraChargeRepository struct {
	db *gorm.DB
}

// NewExtraChargeRepository creates a new extra charge repository
func NewExtraChargeRepository(db *gorm.DB) ExtraChargeRepository {
	return &extraChargeRepository{db: db}
}

func (r *extraChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ExtraCharge, error) {
	var charge models.ExtraCharge
	if err := r.db.WithContext(ctx).Preload("Guest").First(&charge, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &charge, nil
}

func (r *extraChargeRepository) FindInRange(ctx context.Context, period *models.DateRange) ([]models.ExtraCharge, error) {
	var charges []models.ExtraCharge
	db := r.db.WithContext(ctx).Preload("Guest")
	if period != nil {
		db = db.Where("service_date BETWEEN ? AND ?", period.Start, period.End)
	}
	err := db.Order("service_date ASC, id ASC").Find(&charges).Error
	return charges, err
}

func (r *extraChargeRepository) FindByGuest(ctx context.Context, guestID uuid.UUID) ([]models.ExtraCharge, error) {
	var charges []models.ExtraCharge
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("service_date ASC, id ASC").
		Find(&charges).Error
	return charges, err
}

func (r *extraChargeRepository) FindUnpaidByGuest(ctx context.Context, guestID uuid.UUID) ([]models.ExtraCharge, error) {
	var charges []models.ExtraCharge
	err := r.db.WithContext(ctx).
		Where("guest_id = ? AND payment_status = ?", guestID, models.PaymentStatusNotPaid).
		Order("service_date ASC, id ASC").
		Find(&charges).Error
	return charges, err
}

func (r *extraChargeRepository) TotalsByGuest(ctx context.Context, guestIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	return sumByGuest(ctx, r.db, &models.ExtraCharge{}, "price", guestIDs)
}

func (r *extraChargeRepository) Create(ctx context.Context, charge *models.ExtraCharge) error {
	return r.db.WithContext(ctx).Omit("Guest").Create(charge).Error
}

func (r *extraChargeRepository) UpdatePayment(ctx context.Context, charge *models.ExtraCharge, fromStatus string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ExtraCharge{}).
		Where("id = ? AND payment_status = ?", charge.ID, fromStatus).
		Updates(map[string]interface{}{
			"payment_status": charge.PaymentStatus,
			"payment_date":   charge.PaymentDate,
		})
	return casResult(result)
}

func (r *extraChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.ExtraCharge{}, id)
}

func sumByGuest(ctx context.Context, db *gorm.DB, model interface{}, column string, guestIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(guestIDs))
	if len(guestIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		GuestID uuid.UUID
		Total   decimal.Decimal
	}
	err := db.WithContext(ctx).
		Model(model).
		Select("guest_id, COALESCE(SUM("+column+"), 0) AS total").
		Where("guest_id IN ?", guestIDs).
		Group("guest_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.GuestID] = row.Total
	}
	return totals, nil
}

// casResult turns a guarded update into ErrConflict when no row matched
func casResult(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id uuid.UUID) error {
	result := db.WithContext(ctx).Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
