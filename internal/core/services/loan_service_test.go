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

func newLoanFixture(t *testing.T, copies int) (*fakeStore, *LoanService, *CartService, uint, uint) {
	t.Helper()
	f := newFakeStore()
	borrower := seedBorrower(f)
	book := seedBook(f, copies)

	clk := clock.Fixed{T: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	fines := NewFineService(f, clk, 100, false)
	cartSvc := NewCartService(f, clk, 14)
	loanSvc := NewLoanService(f, fines, clk, nil, nil)
	return f, loanSvc, cartSvc, borrower.ID, book.ID
}

func asBorrower(id uint) Actor { return Actor{UserID: id, Role: domain.RoleBorrower} }
func asStaff(id uint) Actor    { return Actor{UserID: id, Role: domain.RoleLibrarian} }

func TestUpdateStatus_SubmitCart(t *testing.T) {
	_, loanSvc, cartSvc, borrowerID, bookID := newLoanFixture(t, 2)
	ctx := context.Background()

	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 1)
	require.NoError(t, err)

	loan, err := loanSvc.UpdateStatus(ctx, cart.ID, "pending", asBorrower(borrowerID), "please approve")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, loan.ApprovalStatus)
	assert.False(t, loan.IsCart)
	assert.Equal(t, "please approve", loan.Note)

	// Cart is gone; a new AddToCart starts a fresh one
	_, err = cartSvc.GetCart(ctx, borrowerID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}

func TestUpdateStatus_EmptyCartCannotSubmit(t *testing.T) {
	f, loanSvc, _, borrowerID, _ := newLoanFixture(t, 1)
	ctx := context.Background()

	empty := seedEmptyCart(f, borrowerID)
	_, err := loanSvc.UpdateStatus(ctx, empty, "pending", asBorrower(borrowerID), "")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestUpdateStatus_RejectsUnknownToken(t *testing.T) {
	_, loanSvc, cartSvc, borrowerID, bookID := newLoanFixture(t, 1)
	ctx := context.Background()

	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 1)
	require.NoError(t, err)

	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "escalated", asBorrower(borrowerID), "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	_, loanSvc, cartSvc, borrowerID, bookID := newLoanFixture(t, 1)
	ctx := context.Background()

	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 1)
	require.NoError(t, err)

	// A cart cannot jump straight to taken
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "taken", asStaff(99), "")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Terminal states accept nothing further
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "pending", asBorrower(borrowerID), "")
	require.NoError(t, err)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "rejected", asStaff(99), "")
	require.NoError(t, err)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "approved", asStaff(99), "")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestUpdateStatus_TakenRebasesDueDates(t *testing.T) {
	f, _, cartSvc, borrowerID, bookID := newLoanFixture(t, 1)
	ctx := context.Background()

	placed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 1)
	require.NoError(t, err)

	// The copies are handed over three days after the cart was placed
	handoff := placed.AddDate(0, 0, 3)
	clk := clock.Fixed{T: handoff}
	fines := NewFineService(f, clk, 100, false)
	loanSvc := NewLoanService(f, fines, clk, nil, nil)

	librarianID := uint(99)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "pending", asBorrower(borrowerID), "")
	require.NoError(t, err)
	loan, err := loanSvc.UpdateStatus(ctx, cart.ID, "taken", asStaff(librarianID), "")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusTaken, loan.ApprovalStatus)
	require.NotNil(t, loan.LibrarianID)
	assert.Equal(t, librarianID, *loan.LibrarianID)

	require.Len(t, loan.Borrowings, 1)
	b := loan.Borrowings[0]
	assert.Equal(t, domain.BorrowingOnLoan, b.Status)
	assert.Equal(t, handoff, b.BorrowDate)
	due, ok := b.DueDate()
	require.True(t, ok)
	assert.Equal(t, handoff.AddDate(0, 0, 14), due)

	instance, err := f.GetInstanceByID(ctx, b.BookInstanceID)
	require.NoError(t, err)
	assert.True(t, instance.IsBorrowed)
}

func TestUpdateStatus_ReturnAllClosesEveryLine(t *testing.T) {
	f, _, cartSvc, borrowerID, bookID := newLoanFixture(t, 2)
	ctx := context.Background()

	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 2)
	require.NoError(t, err)

	handoff := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	clk := clock.Fixed{T: handoff}
	fines := NewFineService(f, clk, 100, false)
	loanSvc := NewLoanService(f, fines, clk, nil, nil)

	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "pending", asBorrower(borrowerID), "")
	require.NoError(t, err)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "taken", asStaff(7), "")
	require.NoError(t, err)

	// Everything comes back twenty days later, six days past the due date
	returnAt := handoff.AddDate(0, 0, 20)
	lateClk := clock.Fixed{T: returnAt}
	lateFines := NewFineService(f, lateClk, 100, false)
	lateSvc := NewLoanService(f, lateFines, lateClk, nil, nil)

	loan, err := lateSvc.UpdateStatus(ctx, cart.ID, "return-all", asStaff(7), "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusReturnAll, loan.ApprovalStatus)

	require.Len(t, loan.Borrowings, 2)
	for _, b := range loan.Borrowings {
		assert.Equal(t, domain.BorrowingReturned, b.Status)
		require.NotNil(t, b.ActualReturnDate)
		assert.Equal(t, returnAt, *b.ActualReturnDate)
		assert.True(t, b.HasFine)

		instance, err := f.GetInstanceByID(ctx, b.BookInstanceID)
		require.NoError(t, err)
		assert.False(t, instance.IsBorrowed)

		fine, err := f.GetOpenFineByBorrowing(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, float64(600), fine.Amount)
	}
}

func TestUpdateStatus_BorrowerCannotRunStaffTransitions(t *testing.T) {
	_, loanSvc, cartSvc, borrowerID, bookID := newLoanFixture(t, 1)
	ctx := context.Background()

	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 1)
	require.NoError(t, err)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "pending", asBorrower(borrowerID), "")
	require.NoError(t, err)

	for _, token := range []string{"approved", "rejected", "taken", "return-all"} {
		_, err = loanSvc.UpdateStatus(ctx, cart.ID, token, asBorrower(borrowerID), "")
		assert.ErrorIs(t, err, domain.ErrStaffOnly, token)
		assert.ErrorIs(t, err, domain.ErrForbidden, token)
	}

	loan, err := loanSvc.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, loan.ApprovalStatus)
}

func TestUpdateStatus_BorrowerCannotTouchOthersLoan(t *testing.T) {
	f, loanSvc, cartSvc, borrowerID, bookID := newLoanFixture(t, 1)
	ctx := context.Background()

	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 1)
	require.NoError(t, err)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "pending", asBorrower(borrowerID), "")
	require.NoError(t, err)

	other := seedBorrower2(f)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "cancel", asBorrower(other.ID), "")
	assert.ErrorIs(t, err, domain.ErrNotLoanOwner)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	loan, err := loanSvc.GetByID(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, loan.ApprovalStatus)
}

func TestUpdateStatus_BorrowerCancelsOwnLoan(t *testing.T) {
	_, loanSvc, cartSvc, borrowerID, bookID := newLoanFixture(t, 1)
	ctx := context.Background()

	cart, err := cartSvc.AddToCart(ctx, borrowerID, bookID, 1)
	require.NoError(t, err)
	_, err = loanSvc.UpdateStatus(ctx, cart.ID, "pending", asBorrower(borrowerID), "")
	require.NoError(t, err)

	loan, err := loanSvc.UpdateStatus(ctx, cart.ID, "cancel", asBorrower(borrowerID), "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancel, loan.ApprovalStatus)
	assert.Nil(t, loan.LibrarianID)
}

func seedEmptyCart(f *fakeStore, borrowerID uint) uint {
	cart := &models.Loan{
		BorrowerID:     borrowerID,
		IsCart:         true,
		ApprovalStatus: domain.StatusNone,
	}
	f.CreateLoan(context.Background(), cart)
	return cart.ID
}
