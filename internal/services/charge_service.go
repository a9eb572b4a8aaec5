package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/statemachine"
	"gorm.io/gorm"
)

// ChargeService handles the lifecycle of bed assignments, bar purchases and
// extra services outside the payment allocator
type ChargeService struct {
	repos *repository.Repositories
	audit *AuditService
	now   func() time.Time
}

// NewChargeService creates a new charge service
func NewChargeService(repos *repository.Repositories, audit *AuditService) *ChargeService {
	return &ChargeService{repos: repos, audit: audit, now: time.Now}
}

// CreateAssignmentInput is the payload for a new stay. Price defaults to the
// bed's nightly price times the number of nights.
type CreateAssignmentInput struct {
	GuestID  uuid.UUID        `json:"guest_id" validate:"required"`
	BedID    uuid.UUID        `json:"bed_id" validate:"required"`
	CheckIn  time.Time        `json:"check_in" validate:"required"`
	CheckOut time.Time        `json:"check_out" validate:"required,gtfield=CheckIn"`
	Price    *decimal.Decimal `json:"price"`
	Notes    *string          `json:"notes"`
}

// Nights is the number of started nights in the stay
func (in CreateAssignmentInput) Nights() int64 {
	return int64(math.Ceil(in.CheckOut.Sub(in.CheckIn).Hours() / 24))
}

// CreateAssignment books a bed for a guest and marks the bed occupied
func (s *ChargeService) CreateAssignment(ctx context.Context, input CreateAssignmentInput, actor Actor) (*models.Assignment, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Price != nil && input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	var assignment *models.Assignment
	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		guest, err := tx.Guest.FindByID(ctx, input.GuestID)
		if err != nil {
			return err
		}
		bed, err := tx.Bed.FindByID(ctx, input.BedID)
		if err != nil {
			return err
		}
		switch bed.Status {
		case models.BedStatusMaintenance:
			return fmt.Errorf("%w: bed %s is under maintenance", ErrInvalidState, bed.BedNumber)
		case models.BedStatusOccupied:
			return fmt.Errorf("%w: bed %s is occupied", ErrInvalidState, bed.BedNumber)
		}

		price := bed.Price.Mul(decimal.NewFromInt(input.Nights()))
		if input.Price != nil {
			price = *input.Price
		}

		assignment = &models.Assignment{
			GuestID:       guest.ID,
			BedID:         bed.ID,
			CheckIn:       input.CheckIn,
			CheckOut:      input.CheckOut,
			Price:         price,
			PaymentStatus: models.PaymentStatusNotPaid,
			Notes:         input.Notes,
		}
		if err := tx.Assignment.Create(ctx, assignment); err != nil {
			return err
		}
		assignment.Guest = guest
		assignment.Bed = bed

		bed.Status = models.BedStatusOccupied
		return tx.Bed.UpdateStatus(ctx, bed.ID, models.BedStatusOccupied)
	})
	if err != nil {
		return nil, translateError("create assignment", err)
	}

	s.audit.LogAsync(actor, models.AuditActionCreate, "Assignment", assignment.ID, map[string]any{
		"guest_id": assignment.GuestID,
		"bed_id":   assignment.BedID,
		"price":    assignment.Price.String(),
	})
	return assignment, nil
}

// CheckoutAssignment closes a stay and sends the bed to cleaning
func (s *ChargeService) CheckoutAssignment(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		a, err := tx.Assignment.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if a.CheckedOutAt != nil {
			return fmt.Errorf("%w: already checked out", ErrInvalidState)
		}
		if err := tx.Assignment.MarkCheckedOut(ctx, id, s.now()); err != nil {
			return err
		}
		return tx.Bed.UpdateStatus(ctx, a.BedID, models.BedStatusNeedsCleaning)
	})
	if err != nil {
		return translateError("checkout assignment", err)
	}

	s.audit.LogAsync(actor, models.AuditActionCheckout, "Assignment", id, nil)
	return nil
}

// DeleteAssignment removes a stay. A stay still holding its bed releases it
// to cleaning; finished stays leave the bed alone.
func (s *ChargeService) DeleteAssignment(ctx context.Context, id uuid.UUID, actor Actor) error {
	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		a, err := tx.Assignment.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Assignment.Delete(ctx, id); err != nil {
			return err
		}
		if a.CheckedOutAt != nil {
			return nil
		}

		bed, err := tx.Bed.FindByID(ctx, a.BedID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if bed.Status != models.BedStatusOccupied {
			return nil
		}
		return tx.Bed.UpdateStatus(ctx, bed.ID, models.BedStatusNeedsCleaning)
	})
	if err != nil {
		return translateError("delete assignment", err)
	}

	s.audit.LogAsync(actor, models.AuditActionDelete, "Assignment", id, nil)
	return nil
}

// manualStatus checks a status requested by staff. Partial payment only
// comes out of the allocator, which knows the paid amount.
func manualStatus(status string) error {
	switch status {
	case models.PaymentStatusPaid, models.PaymentStatusNotPaid:
		return nil
	}
	return ErrInvalidStatus
}

// paymentDateFor stamps paid charges with now and clears the date otherwise
func paymentDateFor(status string, now time.Time) *time.Time {
	if status == models.PaymentStatusPaid {
		return &now
	}
	return nil
}

// SetAssignmentPaymentStatus changes a bed charge's status by hand, including
// marking it unpaid again
func (s *ChargeService) SetAssignmentPaymentStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*models.Assignment, error) {
	if err := manualStatus(status); err != nil {
		return nil, err
	}

	a, err := s.repos.Assignment.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find assignment", err)
	}
	from := a.PaymentStatus
	if from == status {
		return a, nil
	}

	if err := statemachine.NewChargeFSM(models.ChargeTypeBed, &a.PaymentStatus).TransitionTo(ctx, status); err != nil {
		return nil, translateError("set assignment status", err)
	}
	a.PaymentDate = paymentDateFor(status, s.now())
	a.PaidAmount = decimal.NullDecimal{}

	if err := s.repos.Assignment.UpdatePayment(ctx, a, from); err != nil {
		return nil, translateError("set assignment status", err)
	}

	s.audit.LogAsync(actor, models.AuditActionStatus, "Assignment", id, map[string]any{"from": from, "to": status})
	return a, nil
}

// CreateBarChargeInput is the payload for a bar purchase
type CreateBarChargeInput struct {
	GuestID  uuid.UUID       `json:"guest_id" validate:"required"`
	ItemName string          `json:"item_name" validate:"required,max=120"`
	Quantity int             `json:"quantity" validate:"required,gte=1"`
	Price    decimal.Decimal `json:"price"`
	Notes    *string         `json:"notes"`
}

// CreateBarCharge records a bar purchase dated now
func (s *ChargeService) CreateBarCharge(ctx context.Context, input CreateBarChargeInput, actor Actor) (*models.BarCharge, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	guest, err := s.repos.Guest.FindByID(ctx, input.GuestID)
	if err != nil {
		return nil, translateError("find guest", err)
	}

	charge := &models.BarCharge{
		GuestID:         guest.ID,
		TransactionDate: s.now(),
		ItemName:        input.ItemName,
		Quantity:        input.Quantity,
		Price:           input.Price,
		PaymentStatus:   models.PaymentStatusNotPaid,
		Notes:           input.Notes,
	}
	charge.Amount = charge.Total()
	if err := s.repos.BarCharge.Create(ctx, charge); err != nil {
		return nil, translateError("create bar charge", err)
	}
	charge.Guest = guest

	s.audit.LogAsync(actor, models.AuditActionCreate, "BarCharge", charge.ID, map[string]any{"guest_id": guest.ID, "amount": charge.Amount.String()})
	return charge, nil
}

// DeleteBarCharge removes a bar purchase
func (s *ChargeService) DeleteBarCharge(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.repos.BarCharge.Delete(ctx, id); err != nil {
		return translateError("delete bar charge", err)
	}
	s.audit.LogAsync(actor, models.AuditActionDelete, "BarCharge", id, nil)
	return nil
}

// SetBarChargePaymentStatus marks a bar purchase paid or unpaid by hand
func (s *ChargeService) SetBarChargePaymentStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*models.BarCharge, error) {
	if err := manualStatus(status); err != nil {
		return nil, err
	}

	charge, err := s.repos.BarCharge.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find bar charge", err)
	}
	from := charge.PaymentStatus
	if from == status {
		return charge, nil
	}

	if err := statemachine.NewChargeFSM(models.ChargeTypeBar, &charge.PaymentStatus).TransitionTo(ctx, status); err != nil {
		return nil, translateError("set bar charge status", err)
	}
	charge.PaymentDate = paymentDateFor(status, s.now())

	if err := s.repos.BarCharge.UpdatePayment(ctx, charge, from); err != nil {
		return nil, translateError("set bar charge status", err)
	}

	s.audit.LogAsync(actor, models.AuditActionStatus, "BarCharge", id, map[string]any{"from": from, "to": status})
	return charge, nil
}

// CreateExtraChargeInput is the payload for an extra service
type CreateExtraChargeInput struct {
	GuestID     uuid.UUID       `json:"guest_id" validate:"required"`
	ServiceName string          `json:"service_name" validate:"required,max=120"`
	Price       decimal.Decimal `json:"price"`
	Notes       *string         `json:"notes"`
}

// CreateExtraCharge records an extra service dated now
func (s *ChargeService) CreateExtraCharge(ctx context.Context, input CreateExtraChargeInput, actor Actor) (*models.ExtraCharge, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	guest, err := s.repos.Guest.FindByID(ctx, input.GuestID)
	if err != nil {
		return nil, translateError("find guest", err)
	}

	charge := &models.ExtraCharge{
		GuestID:       guest.ID,
		ServiceDate:   s.now(),
		ServiceName:   input.ServiceName,
		Price:         input.Price,
		PaymentStatus: models.PaymentStatusNotPaid,
		Notes:         input.Notes,
	}
	if err := s.repos.ExtraCharge.Create(ctx, charge); err != nil {
		return nil, translateError("create extra charge", err)
	}
	charge.Guest = guest

	s.audit.LogAsync(actor, models.AuditActionCreate, "ExtraCharge", charge.ID, map[string]any{"guest_id": guest.ID, "price": charge.Price.String()})
	return charge, nil
}

// DeleteExtraCharge removes an extra service
func (s *ChargeService) DeleteExtraCharge(ctx context.Context, id uuid.UUID, actor Actor) error {
	if err := s.repos.ExtraCharge.Delete(ctx, id); err != nil {
		return translateError("delete extra charge", err)
	}
	s.audit.LogAsync(actor, models.AuditActionDelete, "ExtraCharge", id, nil)
	return nil
}

// SetExtraChargePaymentStatus marks an extra service paid or unpaid by hand
func (s *ChargeService) SetExtraChargePaymentStatus(ctx context.Context, id uuid.UUID, status string, actor Actor) (*models.ExtraCharge, error) {
	if err := manualStatus(status); err != nil {
		return nil, err
	}

	charge, err := s.repos.ExtraCharge.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find extra charge", err)
	}
	from := charge.PaymentStatus
	if from == status {
		return charge, nil
	}

	if err := statemachine.NewChargeFSM(models.ChargeTypeExtra, &charge.PaymentStatus).TransitionTo(ctx, status); err != nil {
		return nil, translateError("set extra charge status", err)
	}
	charge.PaymentDate = paymentDateFor(status, s.now())

	if err := s.repos.ExtraCharge.UpdatePayment(ctx, charge, from); err != nil {
		return nil, translateError("set extra charge status", err)
	}

	s.audit.LogAsync(actor, models.AuditActionStatus, "ExtraCharge", id, map[string]any{"from": from, "to": status})
	return charge, nil
}
