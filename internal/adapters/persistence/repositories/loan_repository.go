package repositories

import (
	"context"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"
)

// CreateLoan creates a new loan (or cart)
func (s *gormStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	return s.db.WithContext(ctx).Create(loan).Error
}

// GetLoanByID gets a loan with its line items and their instances
func (s *gormStore) GetLoanByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).
		Preload("Borrower").
		Preload("Borrowings").
		Preload("Borrowings.BookInstance").
		Preload("Borrowings.BookInstance.Book").
		First(&loan, id).Error
	if err != nil {
		return nil, asDomainErr(err, domain.ErrLoanNotFound)
	}
	return &loan, nil
}

// GetCartByBorrower gets the borrower's staging cart. A borrower has at
// most one cart at a time.
func (s *gormStore) GetCartByBorrower(ctx context.Context, borrowerID uint) (*models.Loan, error) {
	var loan models.Loan
	err := s.db.WithContext(ctx).
		Preload("Borrowings").
		Preload("Borrowings.BookInstance").
		Preload("Borrowings.BookInstance.Book").
		Where("borrower_id = ? AND is_cart = ?", borrowerID, true).
		First(&loan).Error
	if err != nil {
		return nil, asDomainErr(err, domain.ErrCartNotFound)
	}
	return &loan, nil
}

// SaveLoan updates a loan
func (s *gormStore) SaveLoan(ctx context.Context, loan *models.Loan) error {
	return s.db.WithContext(ctx).Save(loan).Error
}

// ListLoans lists loans matching the filter
func (s *gormStore) ListLoans(ctx context.Context, filter LoanFilter) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	q := s.db.WithContext(ctx).Model(&models.Loan{})
	if filter.BorrowerID != nil {
		q = q.Where("borrower_id = ?", *filter.BorrowerID)
	}
	if filter.Status != nil {
		q = q.Where("approval_status = ?", *filter.Status)
	}
	if filter.IsCart != nil {
		q = q.Where("is_cart = ?", *filter.IsCart)
	}

	q.Count(&total)

	err := q.
		Preload("Borrower").
		Preload("Borrowings").
		Preload("Borrowings.BookInstance").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&loans).Error

	return loans, total, err
}

// CreateBorrowings creates cart line items
func (s *gormStore) CreateBorrowings(ctx context.Context, borrowings []*models.BookBorrowing) error {
	return s.db.WithContext(ctx).Create(borrowings).Error
}

// GetBorrowingByID gets a borrowing with loan and instance
func (s *gormStore) GetBorrowingByID(ctx context.Context, id uint) (*models.BookBorrowing, error) {
	var borrowing models.BookBorrowing
	err := s.db.WithContext(ctx).
		Preload("Loan").
		Preload("Loan.Borrower").
		Preload("BookInstance").
		Preload("BookInstance.Book").
		First(&borrowing, id).Error
	if err != nil {
		return nil, asDomainErr(err, domain.ErrBorrowingNotFound)
	}
	return &borrowing, nil
}

// SaveBorrowing updates a borrowing
func (s *gormStore) SaveBorrowing(ctx context.Context, borrowing *models.BookBorrowing) error {
	return s.db.WithContext(ctx).Save(borrowing).Error
}

// ListBorrowings lists borrowings matching the filter
func (s *gormStore) ListBorrowings(ctx context.Context, filter BorrowingFilter) ([]*models.BookBorrowing, int64, error) {
	var borrowings []*models.BookBorrowing
	var total int64

	q := s.db.WithContext(ctx).Model(&models.BookBorrowing{})
	if filter.BorrowerID != nil {
		q = q.Joins("JOIN loans ON loans.id = book_borrowings.loan_id").
			Where("loans.borrower_id = ?", *filter.BorrowerID)
	}
	if filter.LoanID != nil {
		q = q.Where("book_borrowings.loan_id = ?", *filter.LoanID)
	}
	if filter.Status != nil {
		q = q.Where("book_borrowings.status = ?", *filter.Status)
	}
	if filter.HasFine != nil {
		q = q.Where("book_borrowings.has_fine = ?", *filter.HasFine)
	}

	q.Count(&total)

	err := q.
		Preload("Loan").
		Preload("BookInstance").
		Preload("BookInstance.Book").
		Order("book_borrowings.created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&borrowings).Error

	return borrowings, total, err
}

// ListOnLoanBorrowings returns every active (handed-out, not returned)
// borrowing. The reminder scanner filters due dates in memory; the active
// due date is the last element of a JSON column and is not queryable.
func (s *gormStore) ListOnLoanBorrowings(ctx context.Context) ([]*models.BookBorrowing, error) {
	var borrowings []*models.BookBorrowing
	err := s.db.WithContext(ctx).
		Preload("Loan").
		Preload("Loan.Borrower").
		Preload("BookInstance").
		Preload("BookInstance.Book").
		Where("status = ?", domain.BorrowingOnLoan).
		Find(&borrowings).Error
	return borrowings, err
}
