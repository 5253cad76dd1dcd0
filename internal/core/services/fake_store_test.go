package services

import (
	"context"
	"sort"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
)

// fakeStore is an in-memory Store for service tests. Transactions run the
// callback against the same maps; rollback is not simulated, tests assert
// on the error path before mutation instead.
var _ repositories.Store = (*fakeStore)(nil)

type fakeStore struct {
	users         map[uint]*models.User
	books         map[uint]*models.Book
	instances     map[uint]*models.BookInstance
	loans         map[uint]*models.Loan
	borrowings    map[uint]*models.BookBorrowing
	fines         map[uint]*models.Fine
	notifications []*models.Notification
	nextID        uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uint]*models.User),
		books:      make(map[uint]*models.Book),
		instances:  make(map[uint]*models.BookInstance),
		loans:      make(map[uint]*models.Loan),
		borrowings: make(map[uint]*models.BookBorrowing),
		fines:      make(map[uint]*models.Fine),
		nextID:     0,
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Transaction(ctx context.Context, fn func(repositories.Store) error) error {
	return fn(f)
}

// Users

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	user.ID = f.id()
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeStore) SaveUser(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var out []*models.User
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// Books

func (f *fakeStore) CreateBook(ctx context.Context, book *models.Book) error {
	book.ID = f.id()
	f.books[book.ID] = book
	return nil
}

func (f *fakeStore) GetBookByID(ctx context.Context, id uint) (*models.Book, error) {
	if b, ok := f.books[id]; ok {
		return b, nil
	}
	return nil, domain.ErrBookNotFound
}

func (f *fakeStore) SaveBook(ctx context.Context, book *models.Book) error {
	f.books[book.ID] = book
	return nil
}

func (f *fakeStore) DeleteBook(ctx context.Context, id uint) error {
	delete(f.books, id)
	return nil
}

func (f *fakeStore) ListBooks(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var out []*models.Book
	for _, b := range f.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// Instances

func (f *fakeStore) CreateInstances(ctx context.Context, instances []*models.BookInstance) error {
	for _, in := range instances {
		in.ID = f.id()
		f.instances[in.ID] = in
	}
	return nil
}

func (f *fakeStore) GetInstanceByID(ctx context.Context, id uint) (*models.BookInstance, error) {
	if in, ok := f.instances[id]; ok {
		return in, nil
	}
	return nil, domain.ErrInstanceNotFound
}

// instanceFree mirrors the open-borrowing condition: a copy is free when no
// non-returned borrowing in a live loan holds it.
func (f *fakeStore) instanceFree(instanceID uint) bool {
	for _, b := range f.borrowings {
		if b.BookInstanceID != instanceID || b.Status == domain.BorrowingReturned {
			continue
		}
		loan, ok := f.loans[b.LoanID]
		if !ok {
			continue
		}
		if loan.ApprovalStatus == domain.StatusRejected || loan.ApprovalStatus == domain.StatusCancel {
			continue
		}
		return false
	}
	return true
}

func (f *fakeStore) CountFreeInstances(ctx context.Context, bookID uint) (int64, error) {
	var n int64
	for _, in := range f.instances {
		if in.BookID == bookID && f.instanceFree(in.ID) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) LockFreeInstances(ctx context.Context, bookID uint, excludeIDs []uint, limit int) ([]*models.BookInstance, error) {
	excluded := make(map[uint]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var out []*models.BookInstance
	for _, in := range f.instances {
		if in.BookID != bookID || excluded[in.ID] || !f.instanceFree(in.ID) {
			continue
		}
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) SetInstanceBorrowed(ctx context.Context, instanceID uint, borrowed bool) error {
	in, ok := f.instances[instanceID]
	if !ok {
		return domain.ErrInstanceNotFound
	}
	in.IsBorrowed = borrowed
	return nil
}

// Loans

func (f *fakeStore) CreateLoan(ctx context.Context, loan *models.Loan) error {
	loan.ID = f.id()
	f.loans[loan.ID] = loan
	return nil
}

func (f *fakeStore) GetLoanByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, ok := f.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	f.attachBorrowings(loan)
	return loan, nil
}

func (f *fakeStore) GetCartByBorrower(ctx context.Context, borrowerID uint) (*models.Loan, error) {
	for _, loan := range f.loans {
		if loan.BorrowerID == borrowerID && loan.IsCart {
			f.attachBorrowings(loan)
			return loan, nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (f *fakeStore) SaveLoan(ctx context.Context, loan *models.Loan) error {
	f.loans[loan.ID] = loan
	return nil
}

func (f *fakeStore) ListLoans(ctx context.Context, filter repositories.LoanFilter) ([]*models.Loan, int64, error) {
	var out []*models.Loan
	for _, loan := range f.loans {
		if filter.BorrowerID != nil && loan.BorrowerID != *filter.BorrowerID {
			continue
		}
		if filter.Status != nil && loan.ApprovalStatus != *filter.Status {
			continue
		}
		if filter.IsCart != nil && loan.IsCart != *filter.IsCart {
			continue
		}
		f.attachBorrowings(loan)
		out = append(out, loan)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// attachBorrowings fills the relation the way preloads would
func (f *fakeStore) attachBorrowings(loan *models.Loan) {
	loan.Borrowings = nil
	var ids []uint
	for id, b := range f.borrowings {
		if b.LoanID == loan.ID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		b := f.borrowings[id]
		if in, ok := f.instances[b.BookInstanceID]; ok {
			b.BookInstance = in
			if bk, ok := f.books[in.BookID]; ok {
				in.Book = bk
			}
		}
		loan.Borrowings = append(loan.Borrowings, *b)
	}
	if u, ok := f.users[loan.BorrowerID]; ok {
		loan.Borrower = u
	}
}

// Borrowings

func (f *fakeStore) CreateBorrowings(ctx context.Context, borrowings []*models.BookBorrowing) error {
	for _, b := range borrowings {
		b.ID = f.id()
		f.borrowings[b.ID] = b
	}
	return nil
}

func (f *fakeStore) GetBorrowingByID(ctx context.Context, id uint) (*models.BookBorrowing, error) {
	b, ok := f.borrowings[id]
	if !ok {
		return nil, domain.ErrBorrowingNotFound
	}
	if loan, ok := f.loans[b.LoanID]; ok {
		b.Loan = loan
		if u, ok := f.users[loan.BorrowerID]; ok {
			loan.Borrower = u
		}
	}
	if in, ok := f.instances[b.BookInstanceID]; ok {
		b.BookInstance = in
		if bk, ok := f.books[in.BookID]; ok {
			in.Book = bk
		}
	}
	return b, nil
}

func (f *fakeStore) SaveBorrowing(ctx context.Context, borrowing *models.BookBorrowing) error {
	f.borrowings[borrowing.ID] = borrowing
	return nil
}

func (f *fakeStore) ListBorrowings(ctx context.Context, filter repositories.BorrowingFilter) ([]*models.BookBorrowing, int64, error) {
	var out []*models.BookBorrowing
	for _, b := range f.borrowings {
		if filter.LoanID != nil && b.LoanID != *filter.LoanID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		if filter.HasFine != nil && b.HasFine != *filter.HasFine {
			continue
		}
		if filter.BorrowerID != nil {
			loan, ok := f.loans[b.LoanID]
			if !ok || loan.BorrowerID != *filter.BorrowerID {
				continue
			}
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListOnLoanBorrowings(ctx context.Context) ([]*models.BookBorrowing, error) {
	var out []*models.BookBorrowing
	for id, b := range f.borrowings {
		if b.Status != domain.BorrowingOnLoan {
			continue
		}
		withRelations, _ := f.GetBorrowingByID(ctx, id)
		out = append(out, withRelations)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Fines

func (f *fakeStore) CreateFine(ctx context.Context, fine *models.Fine) error {
	fine.ID = f.id()
	f.fines[fine.ID] = fine
	return nil
}

func (f *fakeStore) GetFineByID(ctx context.Context, id uint) (*models.Fine, error) {
	if fine, ok := f.fines[id]; ok {
		return fine, nil
	}
	return nil, domain.ErrFineNotFound
}

func (f *fakeStore) GetOpenFineByBorrowing(ctx context.Context, borrowingID uint) (*models.Fine, error) {
	for _, fine := range f.fines {
		if fine.BookBorrowingID == borrowingID && fine.Status != domain.FineCompleted {
			return fine, nil
		}
	}
	return nil, domain.ErrFineNotFound
}

func (f *fakeStore) SaveFine(ctx context.Context, fine *models.Fine) error {
	f.fines[fine.ID] = fine
	return nil
}

func (f *fakeStore) ListFines(ctx context.Context, filter repositories.FineFilter) ([]*models.Fine, int64, error) {
	var out []*models.Fine
	for _, fine := range f.fines {
		if filter.BorrowerID != nil && fine.BorrowerID != *filter.BorrowerID {
			continue
		}
		if filter.Status != nil && fine.Status != *filter.Status {
			continue
		}
		out = append(out, fine)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// Notifications

func (f *fakeStore) CreateNotifications(ctx context.Context, notifications []*models.Notification) error {
	for _, n := range notifications {
		n.ID = f.id()
		f.notifications = append(f.notifications, n)
	}
	return nil
}

func (f *fakeStore) ListNotifications(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) MarkNotificationRead(ctx context.Context, userID, id uint) error {
	for _, n := range f.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return domain.ErrNotFound
}
