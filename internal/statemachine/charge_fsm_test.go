package statemachine

import (
	"context"
	"testing"

	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChargeFSM_BedMovesForwardThroughPartial(t *testing.T) {
	ctx := context.Background()
	status := models.PaymentStatusNotPaid
	f := NewChargeFSM(models.ChargeTypeBed, &status)

	require.NoError(t, f.PayPartial(ctx))
	assert.Equal(t, models.PaymentStatusPartiallyPaid, status)

	require.NoError(t, f.Pay(ctx))
	assert.Equal(t, models.PaymentStatusPaid, status)
}

func TestChargeFSM_BedCannotGoFromPaidToPartial(t *testing.T) {
	status := models.PaymentStatusPaid
	f := NewChargeFSM(models.ChargeTypeBed, &status)

	err := f.PayPartial(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, models.PaymentStatusPaid, status)
}

func TestChargeFSM_BarHasNoPartialState(t *testing.T) {
	status := models.PaymentStatusNotPaid
	f := NewChargeFSM(models.ChargeTypeBar, &status)

	assert.False(t, f.Can(EventPayPartial))
	assert.ErrorIs(t, f.PayPartial(context.Background()), ErrInvalidTransition)
	assert.Equal(t, models.PaymentStatusNotPaid, status)
}

func TestChargeFSM_MarkUnpaid(t *testing.T) {
	ctx := context.Background()

	bed := models.PaymentStatusPartiallyPaid
	require.NoError(t, NewChargeFSM(models.ChargeTypeBed, &bed).MarkUnpaid(ctx))
	assert.Equal(t, models.PaymentStatusNotPaid, bed)

	extra := models.PaymentStatusPaid
	require.NoError(t, NewChargeFSM(models.ChargeTypeExtra, &extra).MarkUnpaid(ctx))
	assert.Equal(t, models.PaymentStatusNotPaid, extra)
}

func TestChargeFSM_TransitionTo(t *testing.T) {
	ctx := context.Background()

	t.Run("same status is a no-op", func(t *testing.T) {
		status := models.PaymentStatusPaid
		assert.NoError(t, NewChargeFSM(models.ChargeTypeBar, &status).TransitionTo(ctx, models.PaymentStatusPaid))
		assert.Equal(t, models.PaymentStatusPaid, status)
	})

	t.Run("unknown target", func(t *testing.T) {
		status := models.PaymentStatusNotPaid
		err := NewChargeFSM(models.ChargeTypeBar, &status).TransitionTo(ctx, "refunded")
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("partial to paid", func(t *testing.T) {
		status := models.PaymentStatusPartiallyPaid
		require.NoError(t, NewChargeFSM(models.ChargeTypeBed, &status).TransitionTo(ctx, models.PaymentStatusPaid))
		assert.Equal(t, models.PaymentStatusPaid, status)
	})
}

func TestNewChargeFSM_EmptyStatusDefaultsToNotPaid(t *testing.T) {
	status := ""
	f := NewChargeFSM(models.ChargeTypeExtra, &status)

	assert.Equal(t, models.PaymentStatusNotPaid, f.Current())
	assert.Equal(t, models.PaymentStatusNotPaid, status)
}
