package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction type constants as shown in reports
const (
	TransactionTypeBed     = "Bed Payment"
	TransactionTypeBar     = "Bar Purchase"
	TransactionTypeExtra   = "Extra Service"
	TransactionTypeExpense = "Expense"
)

// Transaction is the unified, read-only view over every charge kind and expenses.
// It is derived on demand and never persisted.
type Transaction struct {
	ID            uuid.UUID       `json:"id"`
	Date          time.Time       `json:"date"`
	Type          string          `json:"type"`
	GuestID       *uuid.UUID      `json:"guest_id,omitempty"`
	GuestName     string          `json:"guest_name"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
}

// IsExpense reports whether the transaction is an outflow
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}

// ChargeLine is one charge in a guest's ledger
type ChargeLine struct {
	ID            uuid.UUID       `json:"id"`
	ChargeType    string          `json:"charge_type"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
}

// Outstanding is what is still owed on the line
func (l *ChargeLine) Outstanding() decimal.Decimal {
	return l.Amount.Sub(l.PaidAmount)
}

// CurrentStay describes the guest's ongoing assignment
type CurrentStay struct {
	AssignmentID  uuid.UUID `json:"assignment_id"`
	BedNumber     string    `json:"bed_number"`
	DormitoryName string    `json:"dormitory_name"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	PaymentStatus string    `json:"payment_status"`
}

// GuestLedger is the per-guest statement of charges and payments
type GuestLedger struct {
	Guest             Guest           `json:"guest"`
	CurrentAssignment *CurrentStay    `json:"currentAssignment"`
	BedCharges        []ChargeLine    `json:"bedCharges"`
	BarCharges        []ChargeLine    `json:"barCharges"`
	ExtraCharges      []ChargeLine    `json:"extraCharges"`
	TotalCharges      decimal.Decimal `json:"totalCharges"`
	TotalPaid         decimal.Decimal `json:"totalPaid"`
	BalanceDue        decimal.Decimal `json:"balanceDue"`
	UnappliedCredit   decimal.Decimal `json:"unappliedCredit"`
	Payments          []Payment       `json:"payments"`
	AllTransactions   []ChargeLine    `json:"allTransactions"`
}
