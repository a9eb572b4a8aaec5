package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
)

// TransactionService merges every charge kind and expenses into one stream
// and builds per-guest ledgers
type TransactionService struct {
	repos *repository.Repositories
	cfg   *config.Config
	now   func() time.Time
}

// NewTransactionService creates a new transaction service
func NewTransactionService(repos *repository.Repositories, cfg *config.Config) *TransactionService {
	return &TransactionService{repos: repos, cfg: cfg, now: time.Now}
}

// GetTransactions returns every transaction in the period around ref, newest first.
// All sources are read from the same snapshot.
func (s *TransactionService) GetTransactions(ctx context.Context, period Period, ref time.Time) ([]models.Transaction, error) {
	dateRange, err := period.Range(ref, s.cfg.Location)
	if err != nil {
		return nil, err
	}

	var txs []models.Transaction
	err = s.repos.Snapshot(ctx, func(tx *repository.Repositories) error {
		var err error
		txs, err = s.collect(ctx, tx, dateRange)
		return err
	})
	if err != nil {
		return nil, translateError("get transactions", err)
	}

	// Ties keep source order: bed, bar, extra, expense
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.After(txs[j].Date)
	})
	return txs, nil
}

func (s *TransactionService) collect(ctx context.Context, tx *repository.Repositories, dateRange *models.DateRange) ([]models.Transaction, error) {
	var assignments []models.Assignment
	var bar []models.BarCharge
	var extras []models.ExtraCharge
	var expenses []models.Expense

	err := s.withTimeout(ctx, func(ctx context.Context) (err error) {
		assignments, err = tx.Assignment.FindInRange(ctx, dateRange)
		return
	})
	if err != nil {
		return nil, err
	}
	err = s.withTimeout(ctx, func(ctx context.Context) (err error) {
		bar, err = tx.BarCharge.FindInRange(ctx, dateRange)
		return
	})
	if err != nil {
		return nil, err
	}
	err = s.withTimeout(ctx, func(ctx context.Context) (err error) {
		extras, err = tx.ExtraCharge.FindInRange(ctx, dateRange)
		return
	})
	if err != nil {
		return nil, err
	}
	err = s.withTimeout(ctx, func(ctx context.Context) (err error) {
		expenses, err = tx.Expense.FindInRange(ctx, dateRange)
		return
	})
	if err != nil {
		return nil, err
	}

	txs := make([]models.Transaction, 0, len(assignments)+len(bar)+len(extras)+len(expenses))
	for i := range assignments {
		txs = append(txs, assignments[i].ToTransaction())
	}
	for i := range bar {
		txs = append(txs, bar[i].ToTransaction())
	}
	for i := range extras {
		txs = append(txs, extras[i].ToTransaction())
	}
	for i := range expenses {
		txs = append(txs, expenses[i].ToTransaction())
	}
	return txs, nil
}

// withTimeout bounds a single adapter call by the configured query timeout
func (s *TransactionService) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	return runWithTimeout(ctx, s.cfg.QueryTimeout, fn)
}

func runWithTimeout(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

// GuestLedger builds the statement of one guest: every charge, what is paid,
// the balance still due and the payment events.
func (s *TransactionService) GuestLedger(ctx context.Context, guestID uuid.UUID) (*models.GuestLedger, error) {
	var ledger *models.GuestLedger
	err := s.repos.Snapshot(ctx, func(tx *repository.Repositories) error {
		var err error
		ledger, err = s.buildLedger(ctx, tx, guestID)
		return err
	})
	if err != nil {
		return nil, translateError("guest ledger", err)
	}
	return ledger, nil
}

func (s *TransactionService) buildLedger(ctx context.Context, tx *repository.Repositories, guestID uuid.UUID) (*models.GuestLedger, error) {
	var guest *models.Guest
	var assignments []models.Assignment
	var bar []models.BarCharge
	var extras []models.ExtraCharge
	var payments []models.Payment

	steps := []func(ctx context.Context) error{
		func(ctx context.Context) (err error) { guest, err = tx.Guest.FindByID(ctx, guestID); return },
		func(ctx context.Context) (err error) { assignments, err = tx.Assignment.FindByGuest(ctx, guestID); return },
		func(ctx context.Context) (err error) { bar, err = tx.BarCharge.FindByGuest(ctx, guestID); return },
		func(ctx context.Context) (err error) { extras, err = tx.ExtraCharge.FindByGuest(ctx, guestID); return },
		func(ctx context.Context) (err error) { payments, err = tx.Payment.FindByGuest(ctx, guestID); return },
	}
	for _, step := range steps {
		if err := s.withTimeout(ctx, step); err != nil {
			return nil, err
		}
	}

	ledger := &models.GuestLedger{
		Guest:        *guest,
		BedCharges:   make([]models.ChargeLine, 0, len(assignments)),
		BarCharges:   make([]models.ChargeLine, 0, len(bar)),
		ExtraCharges: make([]models.ChargeLine, 0, len(extras)),
		Payments:     payments,
	}
	if ledger.Payments == nil {
		ledger.Payments = []models.Payment{}
	}

	now := s.now()
	for i := range assignments {
		a := &assignments[i]
		ledger.BedCharges = append(ledger.BedCharges, a.ToChargeLine())
		if ledger.CurrentAssignment == nil && a.CheckedOutAt == nil && !a.CheckOut.Before(now) {
			ledger.CurrentAssignment = &models.CurrentStay{
				AssignmentID:  a.ID,
				BedNumber:     a.BedNumber(),
				CheckIn:       a.CheckIn,
				CheckOut:      a.CheckOut,
				PaymentStatus: a.PaymentStatus,
			}
			if a.Bed != nil {
				ledger.CurrentAssignment.DormitoryName = a.Bed.DormitoryName()
			}
		}
	}
	for i := range bar {
		ledger.BarCharges = append(ledger.BarCharges, bar[i].ToChargeLine())
	}
	for i := range extras {
		ledger.ExtraCharges = append(ledger.ExtraCharges, extras[i].ToChargeLine())
	}

	all := make([]models.ChargeLine, 0, len(ledger.BedCharges)+len(ledger.BarCharges)+len(ledger.ExtraCharges))
	all = append(all, ledger.BedCharges...)
	all = append(all, ledger.BarCharges...)
	all = append(all, ledger.ExtraCharges...)

	ledger.TotalCharges = decimal.Zero
	ledger.TotalPaid = decimal.Zero
	for _, line := range all {
		ledger.TotalCharges = ledger.TotalCharges.Add(line.Amount)
		ledger.TotalPaid = ledger.TotalPaid.Add(line.PaidAmount)
	}
	ledger.BalanceDue = ledger.TotalCharges.Sub(ledger.TotalPaid)

	ledger.UnappliedCredit = decimal.Zero
	for _, p := range payments {
		ledger.UnappliedCredit = ledger.UnappliedCredit.Add(p.RemainingAmount)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Date.After(all[j].Date)
	})
	ledger.AllTransactions = all

	return ledger, nil
}
