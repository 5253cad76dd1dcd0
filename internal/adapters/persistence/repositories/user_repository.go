package repositories

import (
	"context"
	"errors"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"

	"gorm.io/gorm"
)

// CreateUser creates a new user
func (s *gormStore) CreateUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

// GetUserByID gets a user by ID
func (s *gormStore) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, asDomainErr(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByUsername gets a user by username
func (s *gormStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, asDomainErr(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByEmail gets a user by email
func (s *gormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, asDomainErr(err, domain.ErrUserNotFound)
	}
	return &user, nil
}

// SaveUser updates a user
func (s *gormStore) SaveUser(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Save(user).Error
}

// ListUsers lists users with pagination
func (s *gormStore) ListUsers(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	s.db.WithContext(ctx).Model(&models.User{}).Count(&total)

	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error

	return users, total, err
}

// asDomainErr maps a missing row onto the domain not-found sentinel;
// everything else stays as-is for the internal-error path.
func asDomainErr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
