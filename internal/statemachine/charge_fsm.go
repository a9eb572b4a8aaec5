package statemachine

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/sjperalta/hostel-api/internal/models"
)

// ErrInvalidTransition is returned when a charge cannot move to the requested status
var ErrInvalidTransition = errors.New("invalid payment status transition")

// Charge FSM events
const (
	EventPay        = "pay"
	EventPayPartial = "pay_partial"
	EventMarkUnpaid = "mark_unpaid"
)

// ChargeFSM drives the payment status of one charge. It writes every
// successful transition back through the status pointer it was built with.
type ChargeFSM struct {
	kind   string
	status *string
	fsm    *fsm.FSM
}

// NewChargeFSM creates a state machine for a charge of the given kind
// (models.ChargeTypeBed, ChargeTypeBar or ChargeTypeExtra)
func NewChargeFSM(kind string, status *string) *ChargeFSM {
	if *status == "" {
		*status = models.PaymentStatusNotPaid
	}

	c := &ChargeFSM{kind: kind, status: status}
	c.fsm = fsm.NewFSM(*status, eventsFor(kind), fsm.Callbacks{})
	return c
}

func eventsFor(kind string) fsm.Events {
	if kind == models.ChargeTypeBed {
		return fsm.Events{
			// not_paid/partially_paid → paid
			{Name: EventPay, Src: []string{models.PaymentStatusNotPaid, models.PaymentStatusPartiallyPaid}, Dst: models.PaymentStatusPaid},

			// not_paid → partially_paid
			{Name: EventPayPartial, Src: []string{models.PaymentStatusNotPaid}, Dst: models.PaymentStatusPartiallyPaid},

			// paid/partially_paid → not_paid (manual only)
			{Name: EventMarkUnpaid, Src: []string{models.PaymentStatusPaid, models.PaymentStatusPartiallyPaid}, Dst: models.PaymentStatusNotPaid},
		}
	}

	// Bar purchases and extra services are settled all at once
	return fsm.Events{
		{Name: EventPay, Src: []string{models.PaymentStatusNotPaid}, Dst: models.PaymentStatusPaid},
		{Name: EventMarkUnpaid, Src: []string{models.PaymentStatusPaid}, Dst: models.PaymentStatusNotPaid},
	}
}

// Pay settles the charge in full
func (c *ChargeFSM) Pay(ctx context.Context) error {
	return c.fire(ctx, EventPay)
}

// PayPartial marks a bed charge as partially settled
func (c *ChargeFSM) PayPartial(ctx context.Context) error {
	return c.fire(ctx, EventPayPartial)
}

// MarkUnpaid reverts the charge to not_paid
func (c *ChargeFSM) MarkUnpaid(ctx context.Context) error {
	return c.fire(ctx, EventMarkUnpaid)
}

// TransitionTo moves the charge to target using whichever event leads there.
// Moving to the current status is a no-op.
func (c *ChargeFSM) TransitionTo(ctx context.Context, target string) error {
	if target == c.Current() {
		return nil
	}

	switch target {
	case models.PaymentStatusPaid:
		return c.Pay(ctx)
	case models.PaymentStatusPartiallyPaid:
		return c.PayPartial(ctx)
	case models.PaymentStatusNotPaid:
		return c.MarkUnpaid(ctx)
	}
	return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, target)
}

func (c *ChargeFSM) fire(ctx context.Context, event string) error {
	if !c.fsm.Can(event) {
		return fmt.Errorf("%w: %s charge cannot %s from %s", ErrInvalidTransition, c.kind, event, c.fsm.Current())
	}

	if err := c.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("failed to %s %s charge: %w", event, c.kind, err)
	}

	*c.status = c.fsm.Current()
	return nil
}

// Current returns the current state
func (c *ChargeFSM) Current() string {
	return c.fsm.Current()
}

// Can checks if a transition is possible
func (c *ChargeFSM) Can(event string) bool {
	return c.fsm.Can(event)
}
