package handlers

import (
	"strconv"

	"librelend/internal/core/services"
	"librelend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles account endpoints
type UserHandler struct {
	userService         *services.UserService
	notificationService *services.NotificationService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, notificationService *services.NotificationService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		notificationService: notificationService,
	}
}

// SetRoleRequest represents role change body
type SetRoleRequest struct {
	Role string `json:"role"`
}

// FlagRequest represents verify/restrict toggle body
type FlagRequest struct {
	Value bool `json:"value"`
}

// GetProfile gets the current user's profile
// @Summary Get profile
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /users/me [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	profile, err := h.userService.GetProfile(c.Context(), userID)
	if err != nil {
		return response.DomainError(c, err, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved", fiber.Map{
		"user": profile,
	})
}

// UpdateProfile updates the current user's profile
// @Summary Update profile
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /users/me [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	profile, err := h.userService.UpdateProfile(c.Context(), userID, &input)
	if err != nil {
		return response.DomainError(c, err, "Failed to update profile")
	}

	return response.Success(c, "Profile updated", fiber.Map{
		"user": profile,
	})
}

// ChangePassword changes the current user's password
// @Summary Change password
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/me/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	var input services.ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.userService.ChangePassword(c.Context(), userID, &input); err != nil {
		return response.DomainError(c, err, "Failed to change password")
	}

	return response.Success(c, "Password changed", nil)
}

// List lists users (staff only)
// @Summary List users
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))

	result, err := h.userService.ListUsers(c.Context(), &services.ListUsersInput{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return response.DomainError(c, err, "Failed to list users")
	}

	return response.Success(c, "Users retrieved", result)
}

// SetVerified toggles a borrower's verified flag (staff only)
// @Summary Verify borrower
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body FlagRequest true "Verified flag"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/verify [patch]
func (h *UserHandler) SetVerified(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req FlagRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetVerified(c.Context(), id, req.Value)
	if err != nil {
		return response.DomainError(c, err, "Failed to update verified flag")
	}

	return response.Success(c, "Verified flag updated", fiber.Map{
		"user": user,
	})
}

// SetRestricted toggles a borrower's restricted flag (staff only)
// @Summary Restrict borrower
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body FlagRequest true "Restricted flag"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/restrict [patch]
func (h *UserHandler) SetRestricted(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req FlagRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.SetRestricted(c.Context(), id, req.Value)
	if err != nil {
		return response.DomainError(c, err, "Failed to update restricted flag")
	}

	return response.Success(c, "Restricted flag updated", fiber.Map{
		"user": user,
	})
}

// SetRole changes a user's role (admin only)
// @Summary Set role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body SetRoleRequest true "New role"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/role [patch]
func (h *UserHandler) SetRole(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	adminID, _ := c.Locals("userID").(uint)

	user, err := h.userService.SetRole(c.Context(), id, adminID, req.Role)
	if err != nil {
		return response.DomainError(c, err, "Failed to change role")
	}

	return response.Success(c, "Role updated", fiber.Map{
		"user": user,
	})
}

// ListNotifications lists the current user's notifications
// @Summary List notifications
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Envelope
// @Router /users/me/notifications [get]
func (h *UserHandler) ListNotifications(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	notifications, total, err := h.notificationService.List(c.Context(), userID, (page-1)*limit, limit)
	if err != nil {
		return response.DomainError(c, err, "Failed to list notifications")
	}

	return response.Success(c, "Notifications retrieved", fiber.Map{
		"notifications": notifications,
		"total":         total,
	})
}

// MarkNotificationRead marks one notification as read
// @Summary Mark notification read
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Envelope
// @Router /users/me/notifications/{id}/read [patch]
func (h *UserHandler) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	userID, _ := c.Locals("userID").(uint)

	if err := h.notificationService.MarkRead(c.Context(), userID, id); err != nil {
		return response.DomainError(c, err, "Failed to mark notification read")
	}

	return response.Success(c, "Notification marked read", nil)
}
