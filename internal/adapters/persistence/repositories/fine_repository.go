package repositories

import (
	"context"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"
)

// CreateFine creates a new fine
func (s *gormStore) CreateFine(ctx context.Context, fine *models.Fine) error {
	return s.db.WithContext(ctx).Create(fine).Error
}

// GetFineByID gets a fine by ID
func (s *gormStore) GetFineByID(ctx context.Context, id uint) (*models.Fine, error) {
	var fine models.Fine
	err := s.db.WithContext(ctx).
		Preload("BookBorrowing").
		Preload("Borrower").
		First(&fine, id).Error
	if err != nil {
		return nil, asDomainErr(err, domain.ErrFineNotFound)
	}
	return &fine, nil
}

// GetOpenFineByBorrowing gets the non-completed fine for a borrowing.
// Completed fines are settled history and never considered again.
func (s *gormStore) GetOpenFineByBorrowing(ctx context.Context, borrowingID uint) (*models.Fine, error) {
	var fine models.Fine
	err := s.db.WithContext(ctx).
		Where("book_borrowing_id = ? AND status <> ?", borrowingID, domain.FineCompleted).
		Order("created_at ASC").
		First(&fine).Error
	if err != nil {
		return nil, asDomainErr(err, domain.ErrFineNotFound)
	}
	return &fine, nil
}

// SaveFine updates a fine
func (s *gormStore) SaveFine(ctx context.Context, fine *models.Fine) error {
	return s.db.WithContext(ctx).Save(fine).Error
}

// ListFines lists fines matching the filter
func (s *gormStore) ListFines(ctx context.Context, filter FineFilter) ([]*models.Fine, int64, error) {
	var fines []*models.Fine
	var total int64

	q := s.db.WithContext(ctx).Model(&models.Fine{})
	if filter.BorrowerID != nil {
		q = q.Where("borrower_id = ?", *filter.BorrowerID)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	q.Count(&total)

	err := q.
		Preload("BookBorrowing").
		Preload("BookBorrowing.BookInstance").
		Preload("BookBorrowing.BookInstance.Book").
		Order("created_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&fines).Error

	return fines, total, err
}

// CreateNotifications inserts in-app notification rows
func (s *gormStore) CreateNotifications(ctx context.Context, notifications []*models.Notification) error {
	return s.db.WithContext(ctx).Create(notifications).Error
}

// ListNotifications lists a user's notifications, newest first
func (s *gormStore) ListNotifications(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	var notifications []*models.Notification
	var total int64

	s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID).Count(&total)

	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&notifications).Error

	return notifications, total, err
}

// MarkNotificationRead marks one of the user's notifications as read
func (s *gormStore) MarkNotificationRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
