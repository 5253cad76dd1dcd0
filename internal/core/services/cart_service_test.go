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

func seedBorrower(f *fakeStore) *models.User {
	u := &models.User{
		MemberNo:   "LIB-TEST01",
		Username:   "reader",
		Email:      "reader@example.com",
		Role:       domain.RoleBorrower,
		IsVerified: true,
		IsActive:   true,
	}
	f.CreateUser(context.Background(), u)
	return u
}

func seedBorrower2(f *fakeStore) *models.User {
	u := &models.User{
		MemberNo:   "LIB-TEST02",
		Username:   "reader2",
		Email:      "reader2@example.com",
		Role:       domain.RoleBorrower,
		IsVerified: true,
		IsActive:   true,
	}
	f.CreateUser(context.Background(), u)
	return u
}

func seedBook(f *fakeStore, copies int) *models.Book {
	b := &models.Book{
		Code:        "BK-TEST",
		Title:       "Test Driven Lending",
		TotalCopies: copies,
	}
	f.CreateBook(context.Background(), b)

	instances := make([]*models.BookInstance, copies)
	for i := range instances {
		instances[i] = &models.BookInstance{BookID: b.ID}
	}
	f.CreateInstances(context.Background(), instances)
	return b
}

func TestAddToCart_ReservesRequestedCopies(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)
	book := seedBook(f, 3)
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	svc := NewCartService(f, clock.Fixed{T: now}, 14)

	cart, err := svc.AddToCart(context.Background(), borrower.ID, book.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Borrowings, 2)
	assert.True(t, cart.IsCart)
	assert.Equal(t, domain.StatusNone, cart.ApprovalStatus)

	for _, b := range cart.Borrowings {
		assert.Equal(t, domain.BorrowingReserved, b.Status)
		assert.Equal(t, now, b.BorrowDate)
		due, ok := b.DueDate()
		require.True(t, ok)
		assert.Equal(t, now.AddDate(0, 0, 14), due)
	}
}

func TestAddToCart_SecondCallClaimsDistinctCopies(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)
	book := seedBook(f, 3)

	svc := NewCartService(f, clock.System{}, 14)

	_, err := svc.AddToCart(context.Background(), borrower.ID, book.ID, 1)
	require.NoError(t, err)
	cart, err := svc.AddToCart(context.Background(), borrower.ID, book.ID, 1)
	require.NoError(t, err)

	require.Len(t, cart.Borrowings, 2)
	assert.NotEqual(t, cart.Borrowings[0].BookInstanceID, cart.Borrowings[1].BookInstanceID)
}

func TestAddToCart_InsufficientCopiesReservesNothing(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)
	book := seedBook(f, 2)

	svc := NewCartService(f, clock.System{}, 14)

	_, err := svc.AddToCart(context.Background(), borrower.ID, book.ID, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientCopies)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, f.borrowings, "a failed reservation must not hold copies")
}

func TestAddToCart_NeverOvercommits(t *testing.T) {
	f := newFakeStore()
	book := seedBook(f, 2)

	svc := NewCartService(f, clock.System{}, 14)

	var successes int
	for i := 0; i < 3; i++ {
		u := &models.User{
			Username:   "reader" + string(rune('a'+i)),
			Email:      "reader" + string(rune('a'+i)) + "@example.com",
			Role:       domain.RoleBorrower,
			IsVerified: true,
			IsActive:   true,
		}
		f.CreateUser(context.Background(), u)

		if _, err := svc.AddToCart(context.Background(), u.ID, book.ID, 1); err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientCopies)
		}
	}

	assert.Equal(t, 2, successes)
	assert.Len(t, f.borrowings, 2)
}

func TestAddToCart_EligibilityGates(t *testing.T) {
	f := newFakeStore()
	book := seedBook(f, 2)
	svc := NewCartService(f, clock.System{}, 14)
	ctx := context.Background()

	librarian := &models.User{Username: "staff", Role: domain.RoleLibrarian, IsVerified: true}
	f.CreateUser(ctx, librarian)
	_, err := svc.AddToCart(ctx, librarian.ID, book.ID, 1)
	assert.ErrorIs(t, err, domain.ErrRoleNotEligible)

	unverified := &models.User{Username: "newbie", Role: domain.RoleBorrower}
	f.CreateUser(ctx, unverified)
	_, err = svc.AddToCart(ctx, unverified.ID, book.ID, 1)
	assert.ErrorIs(t, err, domain.ErrAccountUnverified)

	restricted := &models.User{Username: "suspended", Role: domain.RoleBorrower, IsVerified: true, IsRestricted: true}
	f.CreateUser(ctx, restricted)
	_, err = svc.AddToCart(ctx, restricted.ID, book.ID, 1)
	assert.ErrorIs(t, err, domain.ErrAccountRestricted)

	// All gates are forbidden-class
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, f.borrowings)
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)
	book := seedBook(f, 2)

	svc := NewCartService(f, clock.System{}, 14)

	_, err := svc.AddToCart(context.Background(), borrower.ID, book.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestAddToCart_UnknownBook(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)

	svc := NewCartService(f, clock.System{}, 14)

	_, err := svc.AddToCart(context.Background(), borrower.ID, 999, 1)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestGetCart_NotFound(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)

	svc := NewCartService(f, clock.System{}, 14)

	_, err := svc.GetCart(context.Background(), borrower.ID)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)
}
