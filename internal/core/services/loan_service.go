package services

import (
	"context"
	"fmt"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/clock"
)

// LoanService drives the loan approval workflow. Every state change goes
// through UpdateStatus, which enforces the transition table and runs the
// transition's side effects in the same transaction.
type LoanService struct {
	store    repositories.Store
	fines    *FineService
	clock    clock.Clock
	notifier Notifier
	mailer   Mailer
}

// NewLoanService creates a new loan service
func NewLoanService(store repositories.Store, fines *FineService, clk clock.Clock, notifier Notifier, mailer Mailer) *LoanService {
	return &LoanService{
		store:    store,
		fines:    fines,
		clock:    clk,
		notifier: notifier,
		mailer:   mailer,
	}
}

// GetByID gets a loan by ID
func (s *LoanService) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	return s.store.GetLoanByID(ctx, id)
}

// List lists loans matching the filter
func (s *LoanService) List(ctx context.Context, filter repositories.LoanFilter) ([]*models.Loan, int64, error) {
	return s.store.ListLoans(ctx, filter)
}

// Actor identifies the authenticated caller of a workflow transition.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) isStaff() bool {
	return a.Role == domain.RoleLibrarian || a.Role == domain.RoleAdmin
}

// UpdateStatus moves a loan to the status named by token, applying that
// transition's side effects atomically.
//
// pending: the cart is submitted, IsCart drops.
// taken: copies are handed over, due dates rebase to now, every line goes
// on-loan and its physical copy is marked borrowed.
// return-all: every outstanding line is returned now, copies free up and
// overdue lines accrue fines.
//
// Borrowers may only submit or cancel their own loan; every other
// transition requires staff, and staff transitions record who processed
// them.
func (s *LoanService) UpdateStatus(ctx context.Context, loanID uint, token string, actor Actor, note string) (*models.Loan, error) {
	target, err := domain.ParseApprovalStatus(token)
	if err != nil {
		return nil, err
	}

	err = s.store.Transaction(ctx, func(st repositories.Store) error {
		loan, err := st.GetLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		if !actor.isStaff() {
			if loan.BorrowerID != actor.UserID {
				return domain.ErrNotLoanOwner
			}
			if target != domain.StatusPending && target != domain.StatusCancel {
				return fmt.Errorf("%w: %q", domain.ErrStaffOnly, target)
			}
		}
		if !loan.ApprovalStatus.CanTransitionTo(target) {
			return fmt.Errorf("%w: %q to %q", domain.ErrIllegalTransition, loan.ApprovalStatus, target)
		}

		switch target {
		case domain.StatusPending:
			if len(loan.Borrowings) == 0 {
				return domain.ErrEmptyCart
			}
			loan.IsCart = false

		case domain.StatusTaken:
			now := s.clock.Now()
			for i := range loan.Borrowings {
				b := &loan.Borrowings[i]
				rebaseBorrowing(b, now)
				b.Status = domain.BorrowingOnLoan
				if err := st.SaveBorrowing(ctx, b); err != nil {
					return err
				}
				if err := st.SetInstanceBorrowed(ctx, b.BookInstanceID, true); err != nil {
					return err
				}
			}

		case domain.StatusReturnAll:
			now := s.clock.Now()
			for i := range loan.Borrowings {
				b := &loan.Borrowings[i]
				if b.Status == domain.BorrowingReturned {
					continue
				}
				b.Status = domain.BorrowingReturned
				returnedAt := now
				b.ActualReturnDate = &returnedAt
				if err := st.SaveBorrowing(ctx, b); err != nil {
					return err
				}
				if err := st.SetInstanceBorrowed(ctx, b.BookInstanceID, false); err != nil {
					return err
				}
				if _, err := s.fines.Accrue(ctx, st, b, loan.BorrowerID); err != nil {
					return err
				}
			}
		}

		loan.ApprovalStatus = target
		if actor.isStaff() {
			staffID := actor.UserID
			loan.LibrarianID = &staffID
		}
		if note != "" {
			loan.Note = note
		}
		return st.SaveLoan(ctx, loan)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.store.GetLoanByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	s.notifyStatusChange(updated, target)
	return updated, nil
}

// notifyStatusChange fires post-commit side channels. Failures only log.
func (s *LoanService) notifyStatusChange(loan *models.Loan, status domain.ApprovalStatus) {
	if s.notifier != nil {
		s.notifier.SendNotificationToUser(loan.BorrowerID, NotificationPayload{
			Title: "Loan status updated",
			Body:  fmt.Sprintf("Your loan #%d is now %q", loan.ID, status),
		})
	}
	if s.mailer != nil && loan.Borrower != nil && loan.Borrower.Email != "" {
		s.mailer.SendStatusUpdateEmail(loan.Borrower.Email, loan.ID, status)
	}
}
