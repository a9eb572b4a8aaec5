package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/statemachine"
	"gorm.io/gorm"
)

// Common service errors
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidAmount      = fmt.Errorf("%w: amount must be positive with at most two decimal places", ErrValidation)
	ErrInvalidPeriod      = fmt.Errorf("%w: period must be one of day, week, month, all", ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: unknown status", ErrValidation)
	ErrNotFound           = errors.New("record not found")
	ErrConcurrency        = errors.New("record was modified concurrently, retry")
	ErrStorage            = errors.New("storage unavailable")
	ErrPartialAllocation  = errors.New("payment allocation failed part-way")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveAccount    = errors.New("account inactive or suspended")
	ErrInvalidState       = errors.New("invalid state transition")
	ErrDuplicate          = errors.New("duplicate record")
)

// StorageError wraps a data-layer failure. Retryable is set for timeouts and
// connection-level problems where repeating the call may succeed.
type StorageError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// AllocationStep is one charge the allocator touched before failing
type AllocationStep struct {
	ChargeType string `json:"charge_type"`
	ChargeID   string `json:"charge_id"`
	Status     string `json:"status"`
}

// AllocationError reports a storage failure after the allocator had started
// changing charges. The transaction was rolled back, but callers must not
// retry blindly; the attempted steps are kept for reconciliation.
type AllocationError struct {
	GuestID string
	Steps   []AllocationStep
	Err     error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("payment allocation for guest %s failed after %d step(s): %v", e.GuestID, len(e.Steps), e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

func (e *AllocationError) Is(target error) bool { return target == ErrPartialAllocation }

// validationError flattens validator output into one ErrValidation
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
}

// translateError maps repository and driver errors onto the service taxonomy
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case isServiceError(err):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConcurrency
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicate
	case errors.Is(err, statemachine.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	case errors.Is(err, context.DeadlineExceeded):
		return &StorageError{Op: op, Err: err, Retryable: true}
	case errors.Is(err, context.Canceled):
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return ErrConcurrency
		case "23505":
			return ErrDuplicate
		case "23503":
			return fmt.Errorf("%w: related record constraint violated", ErrValidation)
		}
		// Class 08 is connection exception
		return &StorageError{Op: op, Err: err, Retryable: strings.HasPrefix(pgErr.Code, "08")}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &StorageError{Op: op, Err: err, Retryable: true}
	}

	return &StorageError{Op: op, Err: err}
}

func isServiceError(err error) bool {
	for _, target := range []error{ErrValidation, ErrNotFound, ErrConcurrency, ErrStorage, ErrPartialAllocation, ErrInvalidState, ErrDuplicate} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
