package response

import (
	"errors"

	"librelend/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the standard API response body
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Envelope{
		Success: false,
		Error:   message,
	})
}

// DomainError maps a service error onto the envelope by its taxonomy
// class. fallback is the message for errors outside the taxonomy, which
// are never echoed to the client.
func DomainError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return Error(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return Error(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return Error(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return Error(c, fiber.StatusForbidden, err.Error())
	default:
		return Error(c, fiber.StatusInternalServerError, fallback)
	}
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Conflict sends a 409 conflict response
func Conflict(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusConflict, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}
