package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment status constants shared by every charge kind
const (
	PaymentStatusPaid          = "paid"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusNotPaid       = "not_paid"
)

// Charge type constants, used by allocations and the guest ledger
const (
	ChargeTypeBed   = "bed"
	ChargeTypeBar   = "bar"
	ChargeTypeExtra = "extra"
)

// Assignment links a guest to a bed for [CheckIn, CheckOut) and is the bed charge
type Assignment struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	GuestID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"guest_id"`
	BedID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"bed_id"`
	CheckIn       time.Time           `gorm:"not null;index" json:"check_in"`
	CheckOut      time.Time           `gorm:"not null;index" json:"check_out"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	PaymentStatus string              `gorm:"not null;index" json:"payment_status"`
	PaymentDate   *time.Time          `gorm:"index" json:"payment_date"`
	PaidAmount    decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"paid_amount"` // Only set while partially paid
	CheckedOutAt  *time.Time          `json:"checked_out_at,omitempty"`
	Notes         *string             `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`

	// Associations
	Guest *Guest `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Bed   *Bed   `gorm:"foreignKey:BedID" json:"bed,omitempty"`
}

// TableName specifies the table name for Assignment
func (Assignment) TableName() string {
	return "assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	if a.PaymentStatus == "" {
		a.PaymentStatus = PaymentStatusNotPaid
	}
	return nil
}

// TransactionDate is the date a bed charge is reported under
func (a *Assignment) TransactionDate() time.Time {
	if a.PaymentDate != nil {
		return *a.PaymentDate
	}
	return a.CheckIn
}

// PaidSoFar returns the amount of this charge already settled
func (a *Assignment) PaidSoFar() decimal.Decimal {
	switch a.PaymentStatus {
	case PaymentStatusPaid:
		return a.Price
	case PaymentStatusPartiallyPaid:
		if a.PaidAmount.Valid {
			return a.PaidAmount.Decimal
		}
	}
	return decimal.Zero
}

// BedNumber returns the bed number or a placeholder when the bed is gone
func (a *Assignment) BedNumber() string {
	if a.Bed == nil || a.Bed.BedNumber == "" {
		return "Unknown"
	}
	return a.Bed.BedNumber
}

// IsActiveAt reports whether the stay covers t
func (a *Assignment) IsActiveAt(t time.Time) bool {
	return a.CheckedOutAt == nil && !t.Before(a.CheckIn) && t.Before(a.CheckOut)
}

// ToTransaction maps the assignment into the unified transaction view
func (a *Assignment) ToTransaction() Transaction {
	return Transaction{
		ID:            a.ID,
		Date:          a.TransactionDate(),
		Type:          TransactionTypeBed,
		GuestID:       uuidPtr(a.GuestID),
		GuestName:     guestNameOr(a.Guest, UnknownGuestName),
		Description:   "Bed " + a.BedNumber(),
		Amount:        a.Price,
		PaymentStatus: statusOrNotPaid(a.PaymentStatus),
	}
}

// ToChargeLine maps the assignment into a guest ledger line
func (a *Assignment) ToChargeLine() ChargeLine {
	line := ChargeLine{
		ID:            a.ID,
		ChargeType:    ChargeTypeBed,
		Date:          a.CheckIn,
		Description:   "Bed " + a.BedNumber(),
		Amount:        a.Price,
		PaymentStatus: statusOrNotPaid(a.PaymentStatus),
		PaidAmount:    a.PaidSoFar(),
	}
	return line
}

// BarCharge is a bar purchase billed to a guest
type BarCharge struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	GuestID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"guest_id"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
	ItemName        string          `gorm:"not null" json:"item_name"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentStatus   string          `gorm:"not null;index" json:"payment_status"`
	PaymentDate     *time.Time      `json:"payment_date"`
	Notes           *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Associations
	Guest *Guest `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
}

// TableName specifies the table name for BarCharge
func (BarCharge) TableName() string {
	return "bar_charges"
}

func (b *BarCharge) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	if b.PaymentStatus == "" {
		b.PaymentStatus = PaymentStatusNotPaid
	}
	b.Amount = b.Total()
	return nil
}

// Total is quantity × unit price unless an amount was stored explicitly
func (b *BarCharge) Total() decimal.Decimal {
	if !b.Amount.IsZero() {
		return b.Amount
	}
	return b.Price.Mul(decimal.NewFromInt(int64(b.Quantity)))
}

// ToTransaction maps the bar charge into the unified transaction view
func (b *BarCharge) ToTransaction() Transaction {
	return Transaction{
		ID:            b.ID,
		Date:          b.TransactionDate,
		Type:          TransactionTypeBar,
		GuestID:       uuidPtr(b.GuestID),
		GuestName:     guestNameOr(b.Guest, BarCustomerName),
		Description:   b.describe(),
		Amount:        b.Total(),
		PaymentStatus: statusOrNotPaid(b.PaymentStatus),
	}
}

// ToChargeLine maps the bar charge into a guest ledger line
func (b *BarCharge) ToChargeLine() ChargeLine {
	line := ChargeLine{
		ID:            b.ID,
		ChargeType:    ChargeTypeBar,
		Date:          b.TransactionDate,
		Description:   b.describe(),
		Amount:        b.Total(),
		PaymentStatus: statusOrNotPaid(b.PaymentStatus),
		PaidAmount:    decimal.Zero,
	}
	if line.PaymentStatus == PaymentStatusPaid {
		line.PaidAmount = line.Amount
	}
	return line
}

func (b *BarCharge) describe() string {
	return fmt.Sprintf("%dx %s", b.Quantity, b.ItemName)
}

// ExtraCharge is an extra service (laundry, tour, towel...) billed to a guest
type ExtraCharge struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	GuestID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"guest_id"`
	ServiceDate   time.Time       `gorm:"not null;index" json:"service_date"`
	ServiceName   string          `gorm:"not null" json:"service_name"`
	Price         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	PaymentStatus string          `gorm:"not null;index" json:"payment_status"`
	PaymentDate   *time.Time      `json:"payment_date"`
	Notes         *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Associations
	Guest *Guest `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
}

// TableName specifies the table name for ExtraCharge
func (ExtraCharge) TableName() string {
	return "extra_charges"
}

func (e *ExtraCharge) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	if e.PaymentStatus == "" {
		e.PaymentStatus = PaymentStatusNotPaid
	}
	return nil
}

// ToTransaction maps the extra service into the unified transaction view
func (e *ExtraCharge) ToTransaction() Transaction {
	return Transaction{
		ID:            e.ID,
		Date:          e.ServiceDate,
		Type:          TransactionTypeExtra,
		GuestID:       uuidPtr(e.GuestID),
		GuestName:     guestNameOr(e.Guest, ServiceCustomerName),
		Description:   e.ServiceName,
		Amount:        e.Price,
		PaymentStatus: statusOrNotPaid(e.PaymentStatus),
	}
}

// ToChargeLine maps the extra service into a guest ledger line
func (e *ExtraCharge) ToChargeLine() ChargeLine {
	line := ChargeLine{
		ID:            e.ID,
		ChargeType:    ChargeTypeExtra,
		Date:          e.ServiceDate,
		Description:   e.ServiceName,
		Amount:        e.Price,
		PaymentStatus: statusOrNotPaid(e.PaymentStatus),
		PaidAmount:    decimal.Zero,
	}
	if line.PaymentStatus == PaymentStatusPaid {
		line.PaidAmount = line.Amount
	}
	return line
}

func guestNameOr(g *Guest, fallback string) string {
	if g == nil || g.Name == "" {
		return fallback
	}
	return g.Name
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}

func statusOrNotPaid(s string) string {
	if s == "" {
		return PaymentStatusNotPaid
	}
	return s
}
