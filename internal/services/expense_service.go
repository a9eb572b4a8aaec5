package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/storage"
	"github.com/sjperalta/hostel-api/pkg/logger"
)

const receiptDir = "receipts"

// ExpenseService records money going out and keeps receipts
type ExpenseService struct {
	repos   *repository.Repositories
	storage *storage.LocalStorage
	audit   *AuditService
	cfg     *config.Config
	now     func() time.Time
}

// NewExpenseService creates a new expense service
func NewExpenseService(repos *repository.Repositories, store *storage.LocalStorage, audit *AuditService, cfg *config.Config) *ExpenseService {
	return &ExpenseService{repos: repos, storage: store, audit: audit, cfg: cfg, now: time.Now}
}

// CreateExpenseInput is the payload for a new expense. Date defaults to now.
type CreateExpenseInput struct {
	Date        *time.Time      `json:"date"`
	Category    string          `json:"category" validate:"required,max=80"`
	Description string          `json:"description" validate:"required,max=255"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       *string         `json:"notes"`
}

// Create records an expense
func (s *ExpenseService) Create(ctx context.Context, input CreateExpenseInput, actor Actor) (*models.Expense, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if input.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrValidation)
	}

	expense := &models.Expense{
		Date:        s.now(),
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount,
		Notes:       input.Notes,
	}
	if input.Date != nil {
		expense.Date = *input.Date
	}

	if err := s.repos.Expense.Create(ctx, expense); err != nil {
		return nil, translateError("create expense", err)
	}

	s.audit.LogAsync(actor, models.AuditActionCreate, "Expense", expense.ID, map[string]any{"category": expense.Category, "amount": expense.Amount.String()})
	return expense, nil
}

// List returns the expenses of a period around ref, oldest first
func (s *ExpenseService) List(ctx context.Context, period Period, ref time.Time) ([]models.Expense, error) {
	dateRange, err := period.Range(ref, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	expenses, err := s.repos.Expense.FindInRange(ctx, dateRange)
	if err != nil {
		return nil, translateError("list expenses", err)
	}
	return expenses, nil
}

// Delete removes an expense and its receipt file
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID, actor Actor) error {
	expense, err := s.repos.Expense.FindByID(ctx, id)
	if err != nil {
		return translateError("find expense", err)
	}
	if err := s.repos.Expense.Delete(ctx, id); err != nil {
		return translateError("delete expense", err)
	}

	if expense.HasReceipt() && s.storage != nil {
		if err := s.storage.Delete(*expense.ReceiptPath); err != nil {
			logger.Warn("could not remove receipt file", "expense_id", id, "error", err)
		}
	}

	s.audit.LogAsync(actor, models.AuditActionDelete, "Expense", id, nil)
	return nil
}

// UploadReceipt stores a receipt file for an expense, replacing any previous one
func (s *ExpenseService) UploadReceipt(ctx context.Context, id uuid.UUID, r io.Reader, filename, contentType string, size int64, actor Actor) (*models.Expense, error) {
	if !storage.IsValidReceiptType(contentType) {
		return nil, fmt.Errorf("%w: receipt must be a PDF, JPEG or PNG", ErrValidation)
	}
	if size > storage.MaxReceiptSize {
		return nil, fmt.Errorf("%w: receipt exceeds %d bytes", ErrValidation, storage.MaxReceiptSize)
	}

	expense, err := s.repos.Expense.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find expense", err)
	}

	path, err := s.storage.Save(r, filename, receiptDir)
	if err != nil {
		return nil, &StorageError{Op: "save receipt", Err: err}
	}

	if err := s.repos.Expense.SetReceipt(ctx, id, path); err != nil {
		s.storage.Delete(path)
		return nil, translateError("set receipt", err)
	}

	if expense.HasReceipt() {
		if err := s.storage.Delete(*expense.ReceiptPath); err != nil {
			logger.Warn("could not remove replaced receipt", "expense_id", id, "error", err)
		}
	}
	expense.ReceiptPath = &path

	s.audit.LogAsync(actor, models.AuditActionUpdate, "Expense", id, map[string]any{"receipt": filename})
	return expense, nil
}

// OpenReceipt returns the stored receipt file of an expense
func (s *ExpenseService) OpenReceipt(ctx context.Context, id uuid.UUID) (*os.File, error) {
	expense, err := s.repos.Expense.FindByID(ctx, id)
	if err != nil {
		return nil, translateError("find expense", err)
	}
	if !expense.HasReceipt() {
		return nil, ErrNotFound
	}
	f, err := s.storage.Open(*expense.ReceiptPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "open receipt", Err: err}
	}
	return f, nil
}
