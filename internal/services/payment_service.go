package services

import (
	"context"
	"errors"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/statemachine"
	"github.com/sjperalta/hostel-api/pkg/logger"
)

// PaymentResult is what RecordPayment reports back to the caller
type PaymentResult struct {
	PaymentID       uuid.UUID                  `json:"paymentId"`
	AmountPaid      decimal.Decimal            `json:"amountPaid"`
	RemainingAmount decimal.Decimal            `json:"remainingAmount"`
	Allocations     []models.PaymentAllocation `json:"allocations"`
}

type PaymentService struct {
	repos *repository.Repositories
	audit *AuditService
	now   func() time.Time
}

func NewPaymentService(repos *repository.Repositories, audit *AuditService) *PaymentService {
	return &PaymentService{repos: repos, audit: audit, now: time.Now}
}

// allocation is one planned change produced by the waterfall
type allocation struct {
	kind   string
	index  int
	amount decimal.Decimal
	status string
}

// planWaterfall applies amount to bed charges, then bar charges, then extra
// services, each list oldest first. A bed charge the money cannot cover is
// partially paid and ends the pass. Bar and extra charges are all-or-nothing,
// and each list stops at the first charge that does not fit.
func planWaterfall(amount decimal.Decimal, beds []models.Assignment, bar []models.BarCharge, extras []models.ExtraCharge) ([]allocation, decimal.Decimal) {
	remaining := amount
	var plan []allocation

	for i := range beds {
		if !remaining.IsPositive() {
			break
		}
		price := beds[i].Price
		if remaining.GreaterThanOrEqual(price) {
			plan = append(plan, allocation{kind: models.ChargeTypeBed, index: i, amount: price, status: models.PaymentStatusPaid})
			remaining = remaining.Sub(price)
			continue
		}
		plan = append(plan, allocation{kind: models.ChargeTypeBed, index: i, amount: remaining, status: models.PaymentStatusPartiallyPaid})
		remaining = decimal.Zero
		break
	}

	for i := range bar {
		if !remaining.IsPositive() {
			break
		}
		total := bar[i].Total()
		if remaining.LessThan(total) {
			break
		}
		plan = append(plan, allocation{kind: models.ChargeTypeBar, index: i, amount: total, status: models.PaymentStatusPaid})
		remaining = remaining.Sub(total)
	}

	for i := range extras {
		if !remaining.IsPositive() {
			break
		}
		price := extras[i].Price
		if remaining.LessThan(price) {
			break
		}
		plan = append(plan, allocation{kind: models.ChargeTypeExtra, index: i, amount: price, status: models.PaymentStatusPaid})
		remaining = remaining.Sub(price)
	}

	return plan, remaining
}

// RecordPayment applies a guest payment to their unpaid charges and records
// the payment event. Everything happens in one transaction holding a lock on
// the guest row, so payments for the same guest are serialized.
func (s *PaymentService) RecordPayment(ctx context.Context, guestID uuid.UUID, amount decimal.Decimal, actor Actor) (*PaymentResult, error) {
	// Charges and payments are stored with two decimal places
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return nil, ErrInvalidAmount
	}

	var (
		result   *PaymentResult
		steps    []AllocationStep
		mutating bool
	)

	err := s.repos.WithinTransaction(ctx, func(tx *repository.Repositories) error {
		steps = nil
		mutating = false

		if _, err := tx.Guest.LockByID(ctx, guestID); err != nil {
			return err
		}

		beds, err := tx.Assignment.FindUnpaidByGuest(ctx, guestID)
		if err != nil {
			return err
		}
		bar, err := tx.BarCharge.FindUnpaidByGuest(ctx, guestID)
		if err != nil {
			return err
		}
		extras, err := tx.ExtraCharge.FindUnpaidByGuest(ctx, guestID)
		if err != nil {
			return err
		}

		plan, remaining := planWaterfall(amount, beds, bar, extras)
		now := s.now()

		payment := &models.Payment{
			ID:               uuid.New(),
			GuestID:          guestID,
			Amount:           amount,
			RemainingAmount:  remaining,
			Date:             now,
			RecordedByUserID: actor.UserID,
			Allocations:      make([]models.PaymentAllocation, 0, len(plan)),
		}

		mutating = len(plan) > 0
		for _, step := range plan {
			chargeID, err := s.apply(ctx, tx, step, beds, bar, extras, now)
			if err != nil {
				return err
			}
			steps = append(steps, AllocationStep{ChargeType: step.kind, ChargeID: chargeID.String(), Status: step.status})
			payment.Allocations = append(payment.Allocations, models.PaymentAllocation{
				PaymentID:       payment.ID,
				ChargeType:      step.kind,
				ChargeID:        chargeID,
				Amount:          step.amount,
				ResultingStatus: step.status,
			})
		}

		if err := tx.Payment.Create(ctx, payment); err != nil {
			return err
		}

		result = &PaymentResult{
			PaymentID:       payment.ID,
			AmountPaid:      amount,
			RemainingAmount: remaining,
			Allocations:     payment.Allocations,
		}
		return nil
	})
	if err != nil {
		return nil, s.classify(ctx, guestID, err, mutating, steps)
	}

	logger.Info("payment recorded",
		"guest_id", guestID,
		"payment_id", result.PaymentID,
		"amount", result.AmountPaid.String(),
		"remaining", result.RemainingAmount.String(),
		"allocations", len(result.Allocations),
	)
	s.audit.LogAsync(actor, models.AuditActionPayment, "Payment", result.PaymentID, map[string]any{
		"guest_id":    guestID,
		"amount":      result.AmountPaid.String(),
		"remaining":   result.RemainingAmount.String(),
		"allocations": result.Allocations,
	})

	return result, nil
}

// apply moves one charge through its state machine and persists it with a
// compare-and-swap on the previous status
func (s *PaymentService) apply(ctx context.Context, tx *repository.Repositories, step allocation, beds []models.Assignment, bar []models.BarCharge, extras []models.ExtraCharge, now time.Time) (uuid.UUID, error) {
	switch step.kind {
	case models.ChargeTypeBed:
		a := &beds[step.index]
		from := a.PaymentStatus
		f := statemachine.NewChargeFSM(models.ChargeTypeBed, &a.PaymentStatus)
		if err := f.TransitionTo(ctx, step.status); err != nil {
			return uuid.Nil, err
		}
		a.PaymentDate = &now
		a.PaidAmount = decimal.NullDecimal{}
		if step.status == models.PaymentStatusPartiallyPaid {
			a.PaidAmount = decimal.NewNullDecimal(step.amount)
		}
		return a.ID, tx.Assignment.UpdatePayment(ctx, a, from)

	case models.ChargeTypeBar:
		b := &bar[step.index]
		from := b.PaymentStatus
		if err := statemachine.NewChargeFSM(models.ChargeTypeBar, &b.PaymentStatus).Pay(ctx); err != nil {
			return uuid.Nil, err
		}
		b.PaymentDate = &now
		return b.ID, tx.BarCharge.UpdatePayment(ctx, b, from)

	default:
		e := &extras[step.index]
		from := e.PaymentStatus
		if err := statemachine.NewChargeFSM(models.ChargeTypeExtra, &e.PaymentStatus).Pay(ctx); err != nil {
			return uuid.Nil, err
		}
		e.PaymentDate = &now
		return e.ID, tx.ExtraCharge.UpdatePayment(ctx, e, from)
	}
}

// classify turns a failed allocation into the error callers act on. Lost
// races stay retryable; any other failure once charges were being changed
// becomes an AllocationError and is reported.
func (s *PaymentService) classify(ctx context.Context, guestID uuid.UUID, err error, mutating bool, steps []AllocationStep) error {
	translated := translateError("record payment", err)
	if !mutating || errors.Is(translated, ErrConcurrency) {
		return translated
	}

	allocErr := &AllocationError{GuestID: guestID.String(), Steps: steps, Err: translated}
	logger.Error("payment allocation failed", "guest_id", guestID, "steps", len(steps), "error", err)
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(allocErr)
	} else {
		sentry.CaptureException(allocErr)
	}
	return allocErr
}

// ListPayments returns a guest's payment events with their allocations
func (s *PaymentService) ListPayments(ctx context.Context, guestID uuid.UUID) ([]models.Payment, error) {
	if _, err := s.repos.Guest.FindByID(ctx, guestID); err != nil {
		return nil, translateError("find guest", err)
	}
	payments, err := s.repos.Payment.FindByGuest(ctx, guestID)
	if err != nil {
		return nil, translateError("list payments", err)
	}
	return payments, nil
}
