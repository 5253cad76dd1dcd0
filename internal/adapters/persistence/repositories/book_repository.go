package repositories

import (
	"context"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"

	"gorm.io/gorm/clause"
)

// openBorrowingCond matches instances attached to a non-returned borrowing
// whose loan is still live. Reserved cart lines count as claims; rejected
// and cancelled loans do not.
const openBorrowingCond = `NOT EXISTS (
	SELECT 1 FROM book_borrowings bb
	JOIN loans l ON l.id = bb.loan_id
	WHERE bb.book_instance_id = book_instances.id
	  AND bb.status <> 'returned'
	  AND l.approval_status NOT IN ('rejected', 'cancel')
	  AND l.deleted_at IS NULL
)`

// CreateBook creates a new book
func (s *gormStore) CreateBook(ctx context.Context, book *models.Book) error {
	return s.db.WithContext(ctx).Create(book).Error
}

// GetBookByID gets a book by ID
func (s *gormStore) GetBookByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, asDomainErr(err, domain.ErrBookNotFound)
	}
	return &book, nil
}

// SaveBook updates a book
func (s *gormStore) SaveBook(ctx context.Context, book *models.Book) error {
	return s.db.WithContext(ctx).Save(book).Error
}

// DeleteBook soft deletes a book
func (s *gormStore) DeleteBook(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Book{}, id).Error
}

// ListBooks lists books with pagination
func (s *gormStore) ListBooks(ctx context.Context, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	s.db.WithContext(ctx).Model(&models.Book{}).Count(&total)

	err := s.db.WithContext(ctx).
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

// CreateInstances registers physical copies
func (s *gormStore) CreateInstances(ctx context.Context, instances []*models.BookInstance) error {
	return s.db.WithContext(ctx).Create(instances).Error
}

// GetInstanceByID gets an instance by ID
func (s *gormStore) GetInstanceByID(ctx context.Context, id uint) (*models.BookInstance, error) {
	var instance models.BookInstance
	if err := s.db.WithContext(ctx).First(&instance, id).Error; err != nil {
		return nil, asDomainErr(err, domain.ErrInstanceNotFound)
	}
	return &instance, nil
}

// CountFreeInstances counts copies of a book with no open borrowing
func (s *gormStore) CountFreeInstances(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.BookInstance{}).
		Where("book_id = ?", bookID).
		Where("is_borrowed = ?", false).
		Where(openBorrowingCond).
		Count(&count).Error
	return count, err
}

// LockFreeInstances selects up to limit free copies of a book and locks
// them for the current transaction. SKIP LOCKED keeps concurrent
// reservations for the same book from ever claiming the same row, so two
// simultaneous carts cannot over-commit the pool.
func (s *gormStore) LockFreeInstances(ctx context.Context, bookID uint, excludeIDs []uint, limit int) ([]*models.BookInstance, error) {
	var instances []*models.BookInstance

	q := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("book_id = ?", bookID).
		Where("is_borrowed = ?", false).
		Where(openBorrowingCond)

	if len(excludeIDs) > 0 {
		q = q.Where("id NOT IN ?", excludeIDs)
	}

	err := q.Order("id ASC").Limit(limit).Find(&instances).Error
	return instances, err
}

// SetInstanceBorrowed flips the denormalized in-borrowing flag
func (s *gormStore) SetInstanceBorrowed(ctx context.Context, instanceID uint, borrowed bool) error {
	return s.db.WithContext(ctx).
		Model(&models.BookInstance{}).
		Where("id = ?", instanceID).
		Update("is_borrowed", borrowed).Error
}
