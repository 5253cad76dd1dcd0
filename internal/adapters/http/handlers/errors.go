package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// parseIDParam reads a positive integer path parameter
func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}
