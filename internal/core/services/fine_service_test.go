package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/clock"
)

func seedReturnedBorrowing(f *fakeStore, borrowerID uint, daysLate int) *models.BookBorrowing {
	ctx := context.Background()
	borrow := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	due := borrow.AddDate(0, 0, 14)
	actual := due.AddDate(0, 0, daysLate)

	loan := &models.Loan{BorrowerID: borrowerID, ApprovalStatus: domain.StatusTaken}
	f.CreateLoan(ctx, loan)

	b := &models.BookBorrowing{
		LoanID:           loan.ID,
		BorrowDate:       borrow,
		Status:           domain.BorrowingReturned,
		ReturnDates:      models.TimeList{due},
		ActualReturnDate: &actual,
	}
	f.CreateBorrowings(ctx, []*models.BookBorrowing{b})
	return b
}

func TestAccrue_CreatesFineForLateReturn(t *testing.T) {
	f := newFakeStore()
	clk := clock.Fixed{T: time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC)}
	svc := NewFineService(f, clk, 100, false)

	b := seedReturnedBorrowing(f, 7, 6)

	result, err := svc.Accrue(context.Background(), f, b, 7)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Created)
	assert.Equal(t, 6, result.DaysLate)
	assert.Equal(t, float64(600), result.Fine.Amount)
	assert.Equal(t, float64(100), result.Fine.RatePerDay)
	assert.Equal(t, domain.FineIncomplete, result.Fine.Status)
	assert.Equal(t, uint(7), result.Fine.BorrowerID)
	assert.Equal(t, clk.T, result.Fine.FineDate)
	assert.True(t, b.HasFine)
}

func TestAccrue_RepeatedInvocationIsIdempotent(t *testing.T) {
	f := newFakeStore()
	svc := NewFineService(f, clock.System{}, 100, false)
	b := seedReturnedBorrowing(f, 7, 6)
	ctx := context.Background()

	first, err := svc.Accrue(ctx, f, b, 7)
	require.NoError(t, err)
	second, err := svc.Accrue(ctx, f, b, 7)
	require.NoError(t, err)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Fine.ID, second.Fine.ID)
	assert.Equal(t, first.Fine.Amount, second.Fine.Amount)
	assert.Len(t, f.fines, 1)
}

func TestAccrue_LegacyAccumulateAddsOnTop(t *testing.T) {
	f := newFakeStore()
	svc := NewFineService(f, clock.System{}, 100, true)
	b := seedReturnedBorrowing(f, 7, 6)
	ctx := context.Background()

	first, err := svc.Accrue(ctx, f, b, 7)
	require.NoError(t, err)
	firstAmount := first.Fine.Amount

	second, err := svc.Accrue(ctx, f, b, 7)
	require.NoError(t, err)

	assert.Equal(t, float64(600), firstAmount)
	assert.Equal(t, float64(1200), second.Fine.Amount)
}

func TestAccrue_OnTimeReturnYieldsNothing(t *testing.T) {
	f := newFakeStore()
	svc := NewFineService(f, clock.System{}, 100, false)
	b := seedReturnedBorrowing(f, 7, 0)

	result, err := svc.Accrue(context.Background(), f, b, 7)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, f.fines)
	assert.False(t, b.HasFine)
}

func TestAccrue_OpenBorrowingYieldsNothing(t *testing.T) {
	f := newFakeStore()
	svc := NewFineService(f, clock.System{}, 100, false)
	b := seedReturnedBorrowing(f, 7, 6)
	b.ActualReturnDate = nil
	b.Status = domain.BorrowingOnLoan

	result, err := svc.Accrue(context.Background(), f, b, 7)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestSettle_FlipsStatusAndRecordsRef(t *testing.T) {
	f := newFakeStore()
	svc := NewFineService(f, clock.System{}, 100, false)
	b := seedReturnedBorrowing(f, 7, 6)
	ctx := context.Background()

	result, err := svc.Accrue(ctx, f, b, 7)
	require.NoError(t, err)

	settled, err := svc.Settle(ctx, result.Fine.ID, "PAY-2025-0042")
	require.NoError(t, err)
	assert.Equal(t, domain.FineCompleted, settled.Status)
	require.NotNil(t, settled.TransactionRef)
	assert.Equal(t, "PAY-2025-0042", *settled.TransactionRef)

	// A settled fine cannot be settled again
	_, err = svc.Settle(ctx, result.Fine.ID, "PAY-2025-0043")
	assert.ErrorIs(t, err, domain.ErrFineCompleted)
}

func TestSettle_UnknownFine(t *testing.T) {
	f := newFakeStore()
	svc := NewFineService(f, clock.System{}, 100, false)

	_, err := svc.Settle(context.Background(), 404, "")
	assert.ErrorIs(t, err, domain.ErrFineNotFound)
}

func TestAccrue_AfterSettlementOpensFreshFine(t *testing.T) {
	// A new evaluation after settlement must not resurrect the completed
	// fine; it opens a new one.
	f := newFakeStore()
	svc := NewFineService(f, clock.System{}, 100, false)
	b := seedReturnedBorrowing(f, 7, 6)
	ctx := context.Background()

	first, err := svc.Accrue(ctx, f, b, 7)
	require.NoError(t, err)
	_, err = svc.Settle(ctx, first.Fine.ID, "")
	require.NoError(t, err)

	second, err := svc.Accrue(ctx, f, b, 7)
	require.NoError(t, err)
	assert.True(t, second.Created)
	assert.NotEqual(t, first.Fine.ID, second.Fine.ID)
}
