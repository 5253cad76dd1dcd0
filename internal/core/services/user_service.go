package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/password"
)

// UserService handles account management: borrower self-service plus the
// librarian/admin levers (verify, restrict, role changes).
type UserService struct {
	store    repositories.Store
	notifier Notifier
}

// NewUserService creates a new user service
func NewUserService(store repositories.Store, notifier Notifier) *UserService {
	return &UserService{
		store:    store,
		notifier: notifier,
	}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page  int
	Limit int
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// UpdateProfileInput represents update profile input (for self)
type UpdateProfileInput struct {
	Email *string `json:"email"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ListUsers lists all users with pagination
func (s *UserService) ListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 {
		input.Limit = 10
	}
	if input.Limit > 100 {
		input.Limit = 100
	}

	offset := (input.Page - 1) * input.Limit
	users, total, err := s.store.ListUsers(ctx, offset, input.Limit)
	if err != nil {
		return nil, err
	}

	userResponses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		userResponses[i] = user.ToResponse()
	}

	totalPages := int(total) / input.Limit
	if int(total)%input.Limit > 0 {
		totalPages++
	}

	return &ListUsersOutput{
		Users:      userResponses,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages,
	}, nil
}

// GetProfile gets the current user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates the current user's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		existing, err := s.store.GetUserByEmail(ctx, *input.Email)
		if err == nil && existing.ID != userID {
			return nil, fmt.Errorf("%w: email taken", domain.ErrDuplicateEntry)
		}
		if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user.Email = *input.Email
	}

	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ChangePassword changes the current user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return domain.ErrInvalidCredentials
	}
	if err := password.Validate(input.NewPassword); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.store.SaveUser(ctx, user)
}

// SetVerified grants or revokes a borrower's verified status
func (s *UserService) SetVerified(ctx context.Context, userID uint, verified bool) (*models.UserResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsVerified = verified
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	if verified && s.notifier != nil {
		s.notifier.SendNotificationToUser(user.ID, NotificationPayload{
			Title: "Account verified",
			Body:  "Your library account is verified. You can borrow books now.",
		})
	}

	log.Printf("✅ User %s verified=%v", user.Username, verified)
	return user.ToResponse(), nil
}

// SetRestricted suspends or reinstates a borrower
func (s *UserService) SetRestricted(ctx context.Context, userID uint, restricted bool) (*models.UserResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsRestricted = restricted
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User %s restricted=%v", user.Username, restricted)
	return user.ToResponse(), nil
}

// SetRole changes a user's role. Admins cannot demote themselves.
func (s *UserService) SetRole(ctx context.Context, userID, adminID uint, role string) (*models.UserResponse, error) {
	switch role {
	case domain.RoleBorrower, domain.RoleLibrarian, domain.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if userID == adminID {
		return nil, fmt.Errorf("%w: cannot change your own role", domain.ErrForbidden)
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}
