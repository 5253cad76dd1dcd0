package services

import (
	"context"
	"time"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/clock"
)

// BorrowingService handles per-copy operations: renewals, returns and
// overdue evaluation.
type BorrowingService struct {
	store    repositories.Store
	fines    *FineService
	clock    clock.Clock
	notifier Notifier
	mailer   Mailer
}

// NewBorrowingService creates a new borrowing service
func NewBorrowingService(store repositories.Store, fines *FineService, clk clock.Clock, notifier Notifier, mailer Mailer) *BorrowingService {
	return &BorrowingService{
		store:    store,
		fines:    fines,
		clock:    clk,
		notifier: notifier,
		mailer:   mailer,
	}
}

// GetByID gets a borrowing by ID
func (s *BorrowingService) GetByID(ctx context.Context, id uint) (*models.BookBorrowing, error) {
	return s.store.GetBorrowingByID(ctx, id)
}

// List lists borrowings matching the filter
func (s *BorrowingService) List(ctx context.Context, filter repositories.BorrowingFilter) ([]*models.BookBorrowing, int64, error) {
	return s.store.ListBorrowings(ctx, filter)
}

// Extend grants a renewal: the new due date is appended to the borrowing's
// due-date history and the grant instant to its extension history.
// grantedAt defaults to now; passing it explicitly supports backdated
// grants recorded after the fact.
func (s *BorrowingService) Extend(ctx context.Context, borrowingID uint, newReturnDate time.Time, grantedAt *time.Time) (*models.BookBorrowing, error) {
	if newReturnDate.IsZero() {
		return nil, domain.ErrMissingReturnDate
	}

	var extended *models.BookBorrowing
	err := s.store.Transaction(ctx, func(st repositories.Store) error {
		b, err := st.GetBorrowingByID(ctx, borrowingID)
		if err != nil {
			return err
		}
		switch b.Status {
		case domain.BorrowingReturned:
			return domain.ErrAlreadyReturned
		case domain.BorrowingReserved:
			return domain.ErrNotOnLoan
		}

		grant := s.clock.Now()
		if grantedAt != nil {
			grant = *grantedAt
		}
		b.ExtendDates = append(b.ExtendDates, grant)
		b.ReturnDates = append(b.ReturnDates, newReturnDate)
		if err := st.SaveBorrowing(ctx, b); err != nil {
			return err
		}
		extended = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyExtension(extended)
	return extended, nil
}

// ConfirmReturn closes out one borrowing: the copy frees up, and an
// overdue return accrues its fine in the same transaction.
func (s *BorrowingService) ConfirmReturn(ctx context.Context, borrowingID uint, images []string, note string) (*models.BookBorrowing, error) {
	var (
		returned *models.BookBorrowing
		accrual  *AccrueResult
	)
	err := s.store.Transaction(ctx, func(st repositories.Store) error {
		b, err := st.GetBorrowingByID(ctx, borrowingID)
		if err != nil {
			return err
		}
		if b.Status == domain.BorrowingReturned {
			return domain.ErrAlreadyReturned
		}

		now := s.clock.Now()
		b.Status = domain.BorrowingReturned
		b.ActualReturnDate = &now
		b.ReturnImages = models.StringList(images)
		b.ReturnNote = note
		if err := st.SaveBorrowing(ctx, b); err != nil {
			return err
		}
		if err := st.SetInstanceBorrowed(ctx, b.BookInstanceID, false); err != nil {
			return err
		}

		accrual, err = s.fines.Accrue(ctx, st, b, borrowerOfBorrowing(b))
		if err != nil {
			return err
		}
		returned = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyReturn(returned, accrual)
	return returned, nil
}

// RefreshFine re-evaluates a returned borrowing's overdue status and
// recomputes its fine. Safe to call repeatedly; the amount converges.
func (s *BorrowingService) RefreshFine(ctx context.Context, borrowingID uint) (*AccrueResult, error) {
	var result *AccrueResult
	err := s.store.Transaction(ctx, func(st repositories.Store) error {
		b, err := st.GetBorrowingByID(ctx, borrowingID)
		if err != nil {
			return err
		}
		result, err = s.fines.Accrue(ctx, st, b, borrowerOfBorrowing(b))
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ComputeOverdueDays reports how many days late a borrowing is right now.
// An open borrowing is evaluated against the current instant.
func (s *BorrowingService) ComputeOverdueDays(ctx context.Context, borrowingID uint) (int, error) {
	b, err := s.store.GetBorrowingByID(ctx, borrowingID)
	if err != nil {
		return 0, err
	}

	actual := s.clock.Now()
	if b.ActualReturnDate != nil {
		actual = *b.ActualReturnDate
	}
	return CalculateOverdueDays(b.BorrowDate, b.ReturnDates.Times(), b.ExtendDates.Times(), actual), nil
}

func borrowerOfBorrowing(b *models.BookBorrowing) uint {
	if b.Loan != nil {
		return b.Loan.BorrowerID
	}
	return 0
}

func (s *BorrowingService) notifyExtension(b *models.BookBorrowing) {
	if b == nil {
		return
	}
	due, ok := b.DueDate()
	if !ok {
		return
	}
	if s.notifier != nil && b.Loan != nil {
		s.notifier.SendNotificationToUser(b.Loan.BorrowerID, NotificationPayload{
			Title: "Loan extended",
			Body:  "New due date: " + due.Format("2006-01-02"),
		})
	}
	if s.mailer != nil && b.Loan != nil && b.Loan.Borrower != nil && b.Loan.Borrower.Email != "" {
		s.mailer.SendExtendConfirmationEmail(b.Loan.Borrower.Email, borrowedBookTitle(b), due)
	}
}

func (s *BorrowingService) notifyReturn(b *models.BookBorrowing, accrual *AccrueResult) {
	if b == nil || b.Loan == nil {
		return
	}
	title := borrowedBookTitle(b)
	if s.notifier != nil {
		s.notifier.SendNotificationToUser(b.Loan.BorrowerID, NotificationPayload{
			Title: "Return confirmed",
			Body:  "Thank you for returning " + title,
		})
	}
	if s.mailer != nil && b.Loan.Borrower != nil && b.Loan.Borrower.Email != "" {
		if b.ActualReturnDate != nil {
			s.mailer.SendReturnConfirmationEmail(b.Loan.Borrower.Email, title, *b.ActualReturnDate)
		}
		if accrual != nil && accrual.Fine != nil {
			s.mailer.SendFineNotificationEmail(b.Loan.Borrower.Email, title, accrual.Fine.Amount)
		}
	}
}

func borrowedBookTitle(b *models.BookBorrowing) string {
	if b.BookInstance != nil && b.BookInstance.Book != nil {
		return b.BookInstance.Book.Title
	}
	return "your book"
}
