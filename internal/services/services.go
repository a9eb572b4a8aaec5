package services

import (
	"github.com/sjperalta/hostel-api/internal/config"
	"github.com/sjperalta/hostel-api/internal/jobs"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/sjperalta/hostel-api/internal/storage"
)

// Services holds all service instances
type Services struct {
	Auth        *AuthService
	Guest       *GuestService
	Bed         *BedService
	Charge      *ChargeService
	Stay        *StayService
	Expense     *ExpenseService
	Transaction *TransactionService
	Financial   *FinancialService
	Payment     *PaymentService
	Audit       *AuditService
	Export      *ExportService
	Statement   *StatementService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.Audit, worker)
	transactionSvc := NewTransactionService(repos, cfg)
	bedSvc := NewBedService(repos, auditSvc, cfg)
	financialSvc := NewFinancialService(transactionSvc, bedSvc, cfg)

	return &Services{
		Auth:        NewAuthService(repos.User, cfg),
		Guest:       NewGuestService(repos, auditSvc),
		Bed:         bedSvc,
		Charge:      NewChargeService(repos, auditSvc),
		Stay:        NewStayService(repos, cfg),
		Expense:     NewExpenseService(repos, store, auditSvc, cfg),
		Transaction: transactionSvc,
		Financial:   financialSvc,
		Payment:     NewPaymentService(repos, auditSvc),
		Audit:       auditSvc,
		Export:      NewExportService(transactionSvc, financialSvc),
		Statement:   NewStatementService(transactionSvc, financialSvc.Formatter(), cfg),
	}
}
