package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment is money received from a guest. It is immutable once recorded;
// RemainingAmount is the part no eligible charge could absorb.
type Payment struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	GuestID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"guest_id"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	RemainingAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"remaining_amount"`
	Date             time.Time       `gorm:"not null;index" json:"date"`
	RecordedByUserID *uuid.UUID      `gorm:"type:uuid;index" json:"recorded_by_user_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`

	// Associations
	Guest       *Guest              `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentID" json:"allocations"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// AppliedAmount is the part of the payment that settled charges
func (p *Payment) AppliedAmount() decimal.Decimal {
	return p.Amount.Sub(p.RemainingAmount)
}

// PaymentAllocation records how much of a payment went to one charge
type PaymentAllocation struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PaymentID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"payment_id"`
	ChargeType      string          `gorm:"size:10;not null" json:"charge_type"`
	ChargeID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"charge_id"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ResultingStatus string          `gorm:"size:20;not null" json:"resulting_status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName specifies the table name for PaymentAllocation
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}

func (a *PaymentAllocation) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
