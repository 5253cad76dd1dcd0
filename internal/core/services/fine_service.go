package services

import (
	"context"
	"errors"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/clock"
)

// DefaultFinePerDay is the per-day late rate in currency units.
const DefaultFinePerDay = 5000

// FineService is the fine accrual engine. It turns overdue days into a Fine
// record whenever a returned borrowing's overdue status is (re-)evaluated.
type FineService struct {
	store            repositories.Store
	clock            clock.Clock
	ratePerDay       float64
	legacyAccumulate bool
}

// NewFineService creates a new fine service. legacyAccumulate restores the
// legacy add-on-top recomputation for exact parity with the old system; the
// default recomputes the amount absolutely so repeated evaluation is
// idempotent.
func NewFineService(store repositories.Store, clk clock.Clock, ratePerDay float64, legacyAccumulate bool) *FineService {
	if ratePerDay <= 0 {
		ratePerDay = DefaultFinePerDay
	}
	return &FineService{
		store:            store,
		clock:            clk,
		ratePerDay:       ratePerDay,
		legacyAccumulate: legacyAccumulate,
	}
}

// AccrueResult reports what Accrue did for one borrowing.
type AccrueResult struct {
	Fine     *models.Fine
	Created  bool
	DaysLate int
}

// Accrue evaluates a returned borrowing and creates or recomputes its open
// fine. Runs inside the caller's transaction via st. Returns nil when the
// borrowing is not returned yet or not overdue.
func (s *FineService) Accrue(ctx context.Context, st repositories.Store, borrowing *models.BookBorrowing, borrowerID uint) (*AccrueResult, error) {
	if borrowing.ActualReturnDate == nil {
		return nil, nil
	}

	daysLate := CalculateOverdueDays(
		borrowing.BorrowDate,
		borrowing.ReturnDates.Times(),
		borrowing.ExtendDates.Times(),
		*borrowing.ActualReturnDate,
	)
	if daysLate <= 0 {
		return nil, nil
	}

	fine, err := st.GetOpenFineByBorrowing(ctx, borrowing.ID)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrFineNotFound):
		fine = &models.Fine{
			BookBorrowingID: borrowing.ID,
			BorrowerID:      borrowerID,
			FineDate:        s.clock.Now(),
			RatePerDay:      s.ratePerDay,
			Amount:          0,
			Status:          domain.FineIncomplete,
		}
		if err := st.CreateFine(ctx, fine); err != nil {
			return nil, err
		}
		created = true
	default:
		return nil, err
	}

	if s.legacyAccumulate {
		fine.Amount += fine.RatePerDay * float64(daysLate)
	} else {
		fine.Amount = fine.RatePerDay * float64(daysLate)
	}
	if err := st.SaveFine(ctx, fine); err != nil {
		return nil, err
	}

	if !borrowing.HasFine {
		borrowing.HasFine = true
		if err := st.SaveBorrowing(ctx, borrowing); err != nil {
			return nil, err
		}
	}

	return &AccrueResult{Fine: fine, Created: created, DaysLate: daysLate}, nil
}

// GetByID gets a fine by ID
func (s *FineService) GetByID(ctx context.Context, id uint) (*models.Fine, error) {
	return s.store.GetFineByID(ctx, id)
}

// List lists fines matching the filter
func (s *FineService) List(ctx context.Context, filter repositories.FineFilter) ([]*models.Fine, int64, error) {
	return s.store.ListFines(ctx, filter)
}

// Settle marks a fine completed, optionally recording the settlement
// transaction reference. Payment-provider integration happens outside the
// core; only the status flip is owned here.
func (s *FineService) Settle(ctx context.Context, fineID uint, transactionRef string) (*models.Fine, error) {
	var settled *models.Fine
	err := s.store.Transaction(ctx, func(st repositories.Store) error {
		fine, err := st.GetFineByID(ctx, fineID)
		if err != nil {
			return err
		}
		if fine.Status == domain.FineCompleted {
			return domain.ErrFineCompleted
		}

		fine.Status = domain.FineCompleted
		if transactionRef != "" {
			fine.TransactionRef = &transactionRef
		}
		if err := st.SaveFine(ctx, fine); err != nil {
			return err
		}
		settled = fine
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}
