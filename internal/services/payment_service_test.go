package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/hostel-api/internal/models"
	"github.com/sjperalta/hostel-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

type paymentFixture struct {
	store   *memStore
	service *PaymentService
	guest   models.Guest
	bed     models.Bed
	now     time.Time
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	store := newMemStore()
	repos := store.repos()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	svc := NewPaymentService(repos, NewAuditService(repos.Audit, nil))
	svc.now = func() time.Time { return now }

	return &paymentFixture{
		store:   store,
		service: svc,
		guest:   store.addGuest("Ana Lopez"),
		bed:     store.addBed("A1", models.BedStatusOccupied, dec("100")),
		now:     now,
	}
}

func (f *paymentFixture) stay(price string, checkIn time.Time) models.Assignment {
	return f.store.addAssignment(models.Assignment{
		GuestID:  f.guest.ID,
		BedID:    f.bed.ID,
		CheckIn:  checkIn,
		CheckOut: checkIn.Add(72 * time.Hour),
		Price:    dec(price),
	})
}

func (f *paymentFixture) drink(name string, qty int, price string, at time.Time) models.BarCharge {
	return f.store.addBar(models.BarCharge{
		GuestID:         f.guest.ID,
		TransactionDate: at,
		ItemName:        name,
		Quantity:        qty,
		Price:           dec(price),
	})
}

func (f *paymentFixture) extra(name, price string, at time.Time) models.ExtraCharge {
	return f.store.addExtra(models.ExtraCharge{
		GuestID:     f.guest.ID,
		ServiceDate: at,
		ServiceName: name,
		Price:       dec(price),
	})
}

func sumAllocations(allocs []models.PaymentAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Amount)
	}
	return total
}

func TestRecordPayment_CoversBedAndBar(t *testing.T) {
	f := newPaymentFixture(t)
	day := f.now.Add(-48 * time.Hour)
	a := f.stay("500", day)
	b := f.drink("Beer", 2, "50", day)

	result, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("600"), Actor{})
	require.NoError(t, err)

	assertDecimal(t, "600", result.AmountPaid)
	assertDecimal(t, "0", result.RemainingAmount)
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, models.ChargeTypeBed, result.Allocations[0].ChargeType)
	assert.Equal(t, models.ChargeTypeBar, result.Allocations[1].ChargeType)

	stored := f.store.assignment(a.ID)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
	require.NotNil(t, stored.PaymentDate)
	assert.True(t, stored.PaymentDate.Equal(f.now))
	assert.False(t, stored.PaidAmount.Valid)

	assert.Equal(t, models.PaymentStatusPaid, f.store.barCharge(b.ID).PaymentStatus)
	assert.Equal(t, 1, f.store.paymentCount())
	assert.Contains(t, f.store.auditActions(), models.AuditActionPayment)
}

func TestRecordPayment_PartialBedStopsTheWaterfall(t *testing.T) {
	f := newPaymentFixture(t)
	day := f.now.Add(-48 * time.Hour)
	a := f.stay("500", day)
	b := f.drink("Beer", 2, "50", day)

	result, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("300"), Actor{})
	require.NoError(t, err)

	assertDecimal(t, "0", result.RemainingAmount)
	require.Len(t, result.Allocations, 1)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, result.Allocations[0].ResultingStatus)
	assertDecimal(t, "300", result.Allocations[0].Amount)

	stored := f.store.assignment(a.ID)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, stored.PaymentStatus)
	require.True(t, stored.PaidAmount.Valid)
	assertDecimal(t, "300", stored.PaidAmount.Decimal)

	assert.Equal(t, models.PaymentStatusNotPaid, f.store.barCharge(b.ID).PaymentStatus)
}

func TestRecordPayment_OverpaymentKeepsRemainder(t *testing.T) {
	f := newPaymentFixture(t)
	f.stay("500", f.now.Add(-48*time.Hour))
	f.extra("Laundry", "20", f.now.Add(-24*time.Hour))

	result, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("600"), Actor{})
	require.NoError(t, err)

	assertDecimal(t, "80", result.RemainingAmount)
	assert.Len(t, result.Allocations, 2)
	assert.True(t, sumAllocations(result.Allocations).Add(result.RemainingAmount).Equal(dec("600")))
}

func TestRecordPayment_OldestChargesFirst(t *testing.T) {
	f := newPaymentFixture(t)
	newer := f.stay("200", f.now.Add(-24*time.Hour))
	older := f.stay("200", f.now.Add(-96*time.Hour))

	_, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("200"), Actor{})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, f.store.assignment(older.ID).PaymentStatus)
	assert.Equal(t, models.PaymentStatusNotPaid, f.store.assignment(newer.ID).PaymentStatus)
}

func TestRecordPayment_BarStopsAtFirstChargeThatDoesNotFit(t *testing.T) {
	f := newPaymentFixture(t)
	day := f.now.Add(-24 * time.Hour)
	big := f.drink("Wine", 1, "200", day)
	small := f.drink("Water", 1, "5", day.Add(time.Hour))
	laundry := f.extra("Laundry", "10", day)

	result, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("100"), Actor{})
	require.NoError(t, err)

	// Bar halts at the wine, extras still get their turn
	assert.Equal(t, models.PaymentStatusNotPaid, f.store.barCharge(big.ID).PaymentStatus)
	assert.Equal(t, models.PaymentStatusNotPaid, f.store.barCharge(small.ID).PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, f.store.extraCharge(laundry.ID).PaymentStatus)
	assertDecimal(t, "90", result.RemainingAmount)
}

func TestRecordPayment_PartiallyPaidBedIsNotRevisited(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.stay("500", f.now.Add(-48*time.Hour))

	_, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("300"), Actor{})
	require.NoError(t, err)

	result, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("200"), Actor{})
	require.NoError(t, err)

	assert.Empty(t, result.Allocations)
	assertDecimal(t, "200", result.RemainingAmount)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, f.store.assignment(a.ID).PaymentStatus)
	assert.Equal(t, 2, f.store.paymentCount())
}

func TestRecordPayment_BalanceDueAfterPayingTheBed(t *testing.T) {
	f := newPaymentFixture(t)
	day := f.now.Add(-48 * time.Hour)
	f.stay("1500", day)
	f.drink("Dinner", 1, "300", day)

	_, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("1500"), Actor{})
	require.NoError(t, err)

	ledgerSvc := NewTransactionService(f.store.repos(), testConfig())
	ledgerSvc.now = func() time.Time { return f.now }
	ledger, err := ledgerSvc.GuestLedger(context.Background(), f.guest.ID)
	require.NoError(t, err)

	assertDecimal(t, "1800", ledger.TotalCharges)
	assertDecimal(t, "1500", ledger.TotalPaid)
	assertDecimal(t, "300", ledger.BalanceDue)
	assertDecimal(t, "0", ledger.UnappliedCredit)
	require.Len(t, ledger.Payments, 1)
}

func TestRecordPayment_RejectsNonPositiveAmounts(t *testing.T) {
	f := newPaymentFixture(t)

	for _, amount := range []string{"0", "-10", "10.005", "0.001"} {
		result, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec(amount), Actor{})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Equal(t, 0, f.store.paymentCount())
}

func TestRecordPayment_AcceptsTrailingZeros(t *testing.T) {
	f := newPaymentFixture(t)

	result, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("10.500"), Actor{})
	require.NoError(t, err)
	assert.True(t, result.AmountPaid.Equal(dec("10.50")))
}

func TestRecordPayment_UnknownGuest(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.service.RecordPayment(context.Background(), uuid.New(), dec("10"), Actor{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPayment_LostRaceIsRetryable(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.stay("500", f.now.Add(-48*time.Hour))
	f.store.failOn("assignment.update_payment", repository.ErrConflict)

	_, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("500"), Actor{})
	assert.ErrorIs(t, err, ErrConcurrency)

	var allocErr *AllocationError
	assert.False(t, errors.As(err, &allocErr))
	assert.Equal(t, models.PaymentStatusNotPaid, f.store.assignment(a.ID).PaymentStatus)
	assert.Equal(t, 0, f.store.paymentCount())
}

func TestRecordPayment_StorageFailureMidAllocation(t *testing.T) {
	f := newPaymentFixture(t)
	day := f.now.Add(-48 * time.Hour)
	a := f.stay("500", day)
	f.drink("Beer", 2, "50", day)
	f.store.failOn("bar.update_payment", errors.New("connection reset by peer"))

	_, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("600"), Actor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPartialAllocation)

	var allocErr *AllocationError
	require.True(t, errors.As(err, &allocErr))
	assert.Equal(t, f.guest.ID.String(), allocErr.GuestID)
	require.Len(t, allocErr.Steps, 1)
	assert.Equal(t, models.ChargeTypeBed, allocErr.Steps[0].ChargeType)
	assert.Equal(t, a.ID.String(), allocErr.Steps[0].ChargeID)

	// Rolled back
	assert.Equal(t, models.PaymentStatusNotPaid, f.store.assignment(a.ID).PaymentStatus)
	assert.Equal(t, 0, f.store.paymentCount())
}

func TestRecordPayment_StorageFailureWithoutChargesIsPlainStorageError(t *testing.T) {
	f := newPaymentFixture(t)
	f.store.failOn("payment.create", errors.New("disk full"))

	_, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("50"), Actor{})
	assert.ErrorIs(t, err, ErrStorage)
	assert.NotErrorIs(t, err, ErrPartialAllocation)
}

func TestRecordPayment_ConcurrentPaymentsDoNotDoubleAllocate(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.stay("500", f.now.Add(-48*time.Hour))

	var wg sync.WaitGroup
	results := make([]*PaymentResult, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("500"), Actor{})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	allocated := 0
	for _, r := range results {
		require.NotNil(t, r)
		allocated += len(r.Allocations)
	}
	assert.Equal(t, 1, allocated)
	assert.Equal(t, models.PaymentStatusPaid, f.store.assignment(a.ID).PaymentStatus)
	assert.Equal(t, 2, f.store.paymentCount())
}

func TestListPayments(t *testing.T) {
	f := newPaymentFixture(t)
	f.stay("100", f.now.Add(-48*time.Hour))

	_, err := f.service.RecordPayment(context.Background(), f.guest.ID, dec("100"), Actor{})
	require.NoError(t, err)

	payments, err := f.service.ListPayments(context.Background(), f.guest.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Len(t, payments[0].Allocations, 1)

	_, err = f.service.ListPayments(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanWaterfall_Conservation(t *testing.T) {
	beds := []models.Assignment{{Price: dec("120.50")}, {Price: dec("80")}}
	bar := []models.BarCharge{{Quantity: 3, Price: dec("4.25")}}
	extras := []models.ExtraCharge{{Price: dec("15")}, {Price: dec("40")}}

	for _, amount := range []string{"0.01", "50", "120.50", "200.50", "213.25", "228.25", "268.25", "1000"} {
		plan, remaining := planWaterfall(dec(amount), beds, bar, extras)

		total := remaining
		for _, step := range plan {
			total = total.Add(step.amount)
		}
		assert.True(t, total.Equal(dec(amount)), "amount %s", amount)
		assert.False(t, remaining.IsNegative(), "amount %s", amount)
	}
}

func TestPlanWaterfall_Exhaustion(t *testing.T) {
	beds := []models.Assignment{{Price: dec("100")}}

	plan, remaining := planWaterfall(dec("100"), beds, nil, nil)
	require.Len(t, plan, 1)
	assert.Equal(t, models.PaymentStatusPaid, plan[0].status)
	assert.True(t, remaining.IsZero())

	plan, remaining = planWaterfall(dec("40"), beds, nil, nil)
	require.Len(t, plan, 1)
	assert.Equal(t, models.PaymentStatusPartiallyPaid, plan[0].status)
	assertDecimal(t, "40", plan[0].amount)
	assert.True(t, remaining.IsZero())
}
