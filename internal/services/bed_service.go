package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/pkg/logger"
)

// BedService manages dormitories, beds and bed occupancy
type BedService struct {
	repos *repository.Repositories
	audit *AuditService
	cfg   *config.Config
	now   func() time.Time
}

// NewBedService creates a new bed service
func NewBedService(repos *repository.Repositories, audit *AuditService, cfg *config.Config) *BedService {
	return &BedService{repos: repos, audit: audit, cfg: cfg, now: time.Now}
}

// GetBedStats counts beds per status
func (s *BedService) GetBedStats(ctx context.Context) (*models.BedStats, error) {
	var counts map[string]int64
	err := runWithTimeout(ctx, s.cfg.QueryTimeout, func(ctx context.Context) (err error) {
		counts, err = s.repos.Bed.CountByStatus(ctx)
		return
	})
	if err != nil {
		return nil, translateError("bed stats", err)
	}
	stats := models.NewBedStats(counts)
	return &stats, nil
}

// CreateDormitoryInput is the payload for a new dormitory
type CreateDormitoryInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity" validate:"omitempty,gte=0"`
}

// CreateDormitory registers a dormitory
func (s *BedService) CreateDormitory(ctx context.Context, input CreateDormitoryInput, actor Actor) (*models.Dormitory, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	dorm := &models.Dormitory{
		Name:        input.Name,
		Description: input.Description,
		Capacity:    input.Capacity,
	}
	if err := s.repos.Dormitory.Create(ctx, dorm); err != nil {
		return nil, translateError("create dormitory", err)
	}

	s.audit.LogAsync(actor, models.AuditActionCreate, "Dormitory", dorm.ID, map[string]any{"name": dorm.Name})
	return dorm, nil
}

// ListDormitories returns every dormitory by name
func (s *BedService) ListDormitories(ctx context.Context) ([]models.Dormitory, error) {
	dorms, err := s.repos.Dormitory.FindAll(ctx)
	if err != nil {
		return nil, translateError("list dormitories", err)
	}
	return dorms, nil
}

// DeleteDormitory removes a dormitory that no longer holds beds
func (s *BedService) DeleteDormitory(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		count, err := tx.Bed.CountByDormitory(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: dormitory still contains %d bed(s)", ErrInvalidState, count)
		}
		return tx.Dormitory.Delete(ctx, id)
	})
	if err != nil {
		return translateError("delete dormitory", err)
	}

	s.audit.LogAsync(actor, models.AuditActionDelete, "Dormitory", id, nil)
	return nil
}

// CreateBedInput is the payload for a new bed
type CreateBedInput struct {
	DormitoryID uuid.UUID       `json:"dormitory_id" validate:"required"`
	BedNumber   string          `json:"bed_number" validate:"required,max=20"`
	BedType     string          `json:"bed_type" validate:"omitempty,oneof=Single Double Bunk Dormitory"`
	Price       decimal.Decimal `json:"price"`
	Notes       *string         `json:"notes"`
}

// CreateBed adds a bed to an existing dormitory
func (s *BedService) CreateBed(ctx context.Context, input CreateBedInput, actor Actor) (*models.Bed, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	dorm, err := s.repos.Dormitory.FindByID(ctx, input.DormitoryID)
	if err != nil {
		return nil, translateError("find dormitory", err)
	}

	bed := &models.Bed{
		DormitoryID: dorm.ID,
		BedNumber:   input.BedNumber,
		BedType:     input.BedType,
		Price:       input.Price,
		Notes:       input.Notes,
	}
	if err := s.repos.Bed.Create(ctx, bed); err != nil {
		return nil, translateError("create bed", err)
	}
	bed.Dormitory = dorm

	s.audit.LogAsync(actor, models.AuditActionCreate, "Bed", bed.ID, map[string]any{"bed_number": bed.BedNumber, "dormitory": dorm.Name})
	return bed, nil
}

// UpdateBedInput is the payload for editing a bed
type UpdateBedInput struct {
	BedNumber string          `json:"bed_number" validate:"required,max=20"`
	BedType   string          `json:"bed_type" validate:"omitempty,oneof=Single Double Bunk Dormitory"`
	Price     decimal.Decimal `json:"price"`
	Notes     *string         `json:"notes"`
}

// UpdateBed edits a bed's number, type, price and notes. Status is left alone.
func (s *BedService) UpdateBed(ctx context.Context, id uuid.UUID, input UpdateBedInput, actor Actor) (*models.Bed, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	bed, err := s.repos.Bed.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find bed", err)
	}
	bed.BedNumber = input.BedNumber
	if input.BedType != "" {
		bed.BedType = input.BedType
	}
	bed.Price = input.Price
	bed.Notes = input.Notes

	if err := s.repos.Bed.Update(ctx, bed); err != nil {
		return nil, translateError("update bed", err)
	}

	s.audit.LogAsync(actor, models.AuditActionUpdate, "Bed", bed.ID, map[string]any{"bed_number": bed.BedNumber, "price": bed.Price.String()})
	return bed, nil
}

// DeleteBed removes a bed that is not occupied
func (s *BedService) DeleteBed(ctx context.Context, id uuid.UUID, actor Actor) error {
	bed, err := s.repos.Bed.FindByID(ctx, id)
	if err != nil {
		return translateError("find bed", err)
	}
	if bed.Status == models.BedStatusOccupied {
		return fmt.Errorf("%w: bed %s is occupied", ErrInvalidState, bed.BedNumber)
	}
	if err := s.repos.Bed.Delete(ctx, id); err != nil {
		return translateError("delete bed", err)
	}

	s.audit.LogAsync(actor, models.AuditActionDelete, "Bed", id, nil)
	return nil
}

// ListBeds returns beds, optionally narrowed to a dormitory and/or status
func (s *BedService) ListBeds(ctx context.Context, dormitoryID *uuid.UUID, status string) ([]models.Bed, error) {
	if status != "" && !models.IsValidBedStatus(status) {
		return nil, ErrInvalidStatus
	}
	beds, err := s.repos.Bed.List(ctx, dormitoryID, status)
	if err != nil {
		return nil, translateError("list beds", err)
	}
	return beds, nil
}

// SetStatus changes a bed's status by hand (cleaning done, maintenance...)
func (s *BedService) SetStatus(ctx context.Context, bedID uuid.UUID, status string, actor Actor) error {
	if !models.IsValidBedStatus(status) {
		return ErrInvalidStatus
	}
	if err := s.repos.Bed.UpdateStatus(ctx, bedID, status); err != nil {
		return translateError("set bed status", err)
	}

	s.audit.LogAsync(actor, models.AuditActionStatus, "Bed", bedID, map[string]any{"status": status})
	return nil
}

// MarkCleaned makes a bed available again
func (s *BedService) MarkCleaned(ctx context.Context, bedID uuid.UUID, actor Actor) error {
	return s.SetStatus(ctx, bedID, models.BedStatusAvailable, actor)
}

// SweepFinishedStays checks out every stay whose check_out has passed and
// flags its bed for cleaning. It returns the number of stays closed.
func (s *BedService) SweepFinishedStays(ctx context.Context) (int, error) {
	ended, err := s.repos.Assignment.FindEnded(ctx, s.now())
	if err != nil {
		return 0, translateError("find ended stays", err)
	}

	closed := 0
	for i := range ended {
		a := &ended[i]
		err := s.repos.WithinTransaction(ctx, func(tx *repository.Repositories) error {
			if err := tx.Assignment.MarkCheckedOut(ctx, a.ID, s.now()); err != nil {
				return err
			}
			if a.Bed != nil && a.Bed.Status != models.BedStatusOccupied {
				return nil
			}
			return tx.Bed.UpdateStatus(ctx, a.BedID, models.BedStatusNeedsCleaning)
		})
		if errors.Is(err, repository.ErrConflict) {
			// Checked out by staff in the meantime
			continue
		}
		if err != nil {
			logger.Warn("sweep: could not close stay", "assignment_id", a.ID, "error", err)
			continue
		}
		closed++
		s.audit.LogAsync(SystemActor, models.AuditActionCheckout, "Assignment", a.ID, map[string]any{"bed_id": a.BedID, "automatic": true})
	}

	if closed > 0 {
		logger.Info("sweep: closed finished stays", "count", closed)
	}
	return closed, nil
}
