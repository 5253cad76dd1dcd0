package services

import (
	"context"
	"errors"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/clock"
)

// DefaultLoanPeriodDays is the provisional loan period recorded when a copy
// enters the cart. The due date is rebased to the real hand-off instant
// when the loan turns "taken".
const DefaultLoanPeriodDays = 14

// CartService stages reservations: one cart loan per borrower, holding
// reserved line items backed by locked physical copies.
type CartService struct {
	store          repositories.Store
	clock          clock.Clock
	loanPeriodDays int
}

// NewCartService creates a new cart service
func NewCartService(store repositories.Store, clk clock.Clock, loanPeriodDays int) *CartService {
	if loanPeriodDays <= 0 {
		loanPeriodDays = DefaultLoanPeriodDays
	}
	return &CartService{
		store:          store,
		clock:          clk,
		loanPeriodDays: loanPeriodDays,
	}
}

// AddToCart reserves quantity distinct free copies of a book in the
// borrower's cart. The reservation is atomic: when fewer free copies remain
// than requested, nothing is reserved at all.
func (s *CartService) AddToCart(ctx context.Context, borrowerID, bookID uint, quantity int) (*models.Loan, error) {
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	borrower, err := s.store.GetUserByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if err := checkBorrowerEligibility(borrower); err != nil {
		return nil, err
	}

	var cartID uint
	err = s.store.Transaction(ctx, func(st repositories.Store) error {
		if _, err := st.GetBookByID(ctx, bookID); err != nil {
			return err
		}

		cart, err := st.GetCartByBorrower(ctx, borrowerID)
		if errors.Is(err, domain.ErrCartNotFound) {
			cart = &models.Loan{
				BorrowerID:     borrowerID,
				IsCart:         true,
				ApprovalStatus: domain.StatusNone,
			}
			if err := st.CreateLoan(ctx, cart); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		// Copies already sitting in this cart for the book must not be
		// claimed twice by a repeated call.
		claimed := cartInstanceIDsForBook(cart, bookID)

		instances, err := st.LockFreeInstances(ctx, bookID, claimed, quantity)
		if err != nil {
			return err
		}
		if len(instances) < quantity {
			return domain.ErrInsufficientCopies
		}

		now := s.clock.Now()
		due := now.AddDate(0, 0, s.loanPeriodDays)
		borrowings := make([]*models.BookBorrowing, 0, quantity)
		for _, instance := range instances {
			borrowings = append(borrowings, &models.BookBorrowing{
				LoanID:         cart.ID,
				BookInstanceID: instance.ID,
				BorrowDate:     now,
				Status:         domain.BorrowingReserved,
				ReturnDates:    models.TimeList{due},
				ExtendDates:    models.TimeList{},
			})
		}
		if err := st.CreateBorrowings(ctx, borrowings); err != nil {
			return err
		}

		cartID = cart.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.store.GetLoanByID(ctx, cartID)
}

// GetCart returns the borrower's cart with its line items
func (s *CartService) GetCart(ctx context.Context, borrowerID uint) (*models.Loan, error) {
	return s.store.GetCartByBorrower(ctx, borrowerID)
}

// checkBorrowerEligibility applies the account gates, strictest first.
func checkBorrowerEligibility(user *models.User) error {
	if user.Role != domain.RoleBorrower {
		return domain.ErrRoleNotEligible
	}
	if !user.IsVerified {
		return domain.ErrAccountUnverified
	}
	if user.IsRestricted {
		return domain.ErrAccountRestricted
	}
	return nil
}

// cartInstanceIDsForBook reads the cart's existing line items for a book.
func cartInstanceIDsForBook(cart *models.Loan, bookID uint) []uint {
	var ids []uint
	for _, b := range cart.Borrowings {
		if b.BookInstance != nil && b.BookInstance.BookID == bookID {
			ids = append(ids, b.BookInstanceID)
		}
	}
	return ids
}
