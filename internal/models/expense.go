package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is money going out of the hostel; it is never allocated against
type Expense struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Category    string          `gorm:"not null;index" json:"category"`
	Description string          `gorm:"not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ReceiptPath *string         `json:"-"`
	Notes       *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Expense
func (Expense) TableName() string {
	return "expenses"
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// HasReceipt reports whether a receipt file was uploaded
func (e *Expense) HasReceipt() bool {
	return e.ReceiptPath != nil && *e.ReceiptPath != ""
}

// ToTransaction maps the expense into the unified transaction view
func (e *Expense) ToTransaction() Transaction {
	return Transaction{
		ID:            e.ID,
		Date:          e.Date,
		Type:          TransactionTypeExpense,
		GuestName:     NoGuestName,
		Description:   e.Category + ": " + e.Description,
		Amount:        e.Amount,
		PaymentStatus: PaymentStatusPaid,
	}
}
