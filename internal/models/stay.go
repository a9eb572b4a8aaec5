package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StaySummary is one assignment with the guest's running totals, as shown
// on the check-in and active stay lists
type StaySummary struct {
	AssignmentID  uuid.UUID       `json:"id"`
	GuestID       uuid.UUID       `json:"guest_id"`
	Name          string          `json:"name"`
	BedNumber     string          `json:"bed_number"`
	CheckIn       time.Time       `json:"check_in"`
	CheckOut      time.Time       `json:"check_out"`
	BedCharges    decimal.Decimal `json:"bed_charges"`
	BarCharges    decimal.Decimal `json:"bar_charges"`
	ExtraCharges  decimal.Decimal `json:"extra_charges"`
	TotalCharges  decimal.Decimal `json:"total_charges"`
	PaymentStatus string          `json:"payment_status"`
}

// NewStaySummary fills a summary from an assignment and the guest's bar and extra totals
func NewStaySummary(a *Assignment, bar, extra decimal.Decimal) StaySummary {
	return StaySummary{
		AssignmentID:  a.ID,
		GuestID:       a.GuestID,
		Name:          guestNameOr(a.Guest, UnknownGuestName),
		BedNumber:     a.BedNumber(),
		CheckIn:       a.CheckIn,
		CheckOut:      a.CheckOut,
		BedCharges:    a.Price,
		BarCharges:    bar,
		ExtraCharges:  extra,
		TotalCharges:  a.Price.Add(bar).Add(extra),
		PaymentStatus: statusOrNotPaid(a.PaymentStatus),
	}
}

// Calendar event types
const (
	CalendarEventCheckIn  = "check_in"
	CalendarEventCheckOut = "check_out"
)

// CalendarEvent groups the check-ins or check-outs of one day
type CalendarEvent struct {
	Date   string          `json:"date"`
	Type   string          `json:"type"`
	Count  int             `json:"count"`
	Guests []CalendarGuest `json:"guests"`
}

// CalendarGuest is a guest entry inside a calendar event
type CalendarGuest struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Bed  string    `json:"bed"`
}
