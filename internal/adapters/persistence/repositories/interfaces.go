package repositories

import (
	"context"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"
)

// LoanFilter narrows loan listings
type LoanFilter struct {
	BorrowerID *uint
	Status     *domain.ApprovalStatus
	IsCart     *bool
	Offset     int
	Limit      int
}

// BorrowingFilter narrows borrowing listings
type BorrowingFilter struct {
	BorrowerID *uint
	LoanID     *uint
	Status     *domain.BorrowingStatus
	HasFine    *bool
	Offset     int
	Limit      int
}

// FineFilter narrows fine listings
type FineFilter struct {
	BorrowerID *uint
	Status     *domain.FineStatus
	Offset     int
	Limit      int
}

// Store is the transactional persistence collaborator of the borrowing
// core. Every mutating service operation runs inside Transaction; the
// callback receives a Store bound to that transaction. Lookup methods
// return domain not-found errors, never raw driver errors.
type Store interface {
	Transaction(ctx context.Context, fn func(Store) error) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error)

	// Books
	CreateBook(ctx context.Context, book *models.Book) error
	GetBookByID(ctx context.Context, id uint) (*models.Book, error)
	SaveBook(ctx context.Context, book *models.Book) error
	DeleteBook(ctx context.Context, id uint) error
	ListBooks(ctx context.Context, offset, limit int) ([]*models.Book, int64, error)

	// Instances
	CreateInstances(ctx context.Context, instances []*models.BookInstance) error
	GetInstanceByID(ctx context.Context, id uint) (*models.BookInstance, error)
	CountFreeInstances(ctx context.Context, bookID uint) (int64, error)
	LockFreeInstances(ctx context.Context, bookID uint, excludeIDs []uint, limit int) ([]*models.BookInstance, error)
	SetInstanceBorrowed(ctx context.Context, instanceID uint, borrowed bool) error

	// Loans
	CreateLoan(ctx context.Context, loan *models.Loan) error
	GetLoanByID(ctx context.Context, id uint) (*models.Loan, error)
	GetCartByBorrower(ctx context.Context, borrowerID uint) (*models.Loan, error)
	SaveLoan(ctx context.Context, loan *models.Loan) error
	ListLoans(ctx context.Context, filter LoanFilter) ([]*models.Loan, int64, error)

	// Borrowings
	CreateBorrowings(ctx context.Context, borrowings []*models.BookBorrowing) error
	GetBorrowingByID(ctx context.Context, id uint) (*models.BookBorrowing, error)
	SaveBorrowing(ctx context.Context, borrowing *models.BookBorrowing) error
	ListBorrowings(ctx context.Context, filter BorrowingFilter) ([]*models.BookBorrowing, int64, error)
	ListOnLoanBorrowings(ctx context.Context) ([]*models.BookBorrowing, error)

	// Fines
	CreateFine(ctx context.Context, fine *models.Fine) error
	GetFineByID(ctx context.Context, id uint) (*models.Fine, error)
	GetOpenFineByBorrowing(ctx context.Context, borrowingID uint) (*models.Fine, error)
	SaveFine(ctx context.Context, fine *models.Fine) error
	ListFines(ctx context.Context, filter FineFilter) ([]*models.Fine, int64, error)

	// Notifications
	CreateNotifications(ctx context.Context, notifications []*models.Notification) error
	ListNotifications(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error)
	MarkNotificationRead(ctx context.Context, userID, id uint) error
}
