package handlers

import (
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/core/services"
	"librelend/internal/pkg/pagination"
	"librelend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// FineHandler handles fine endpoints
type FineHandler struct {
	fineService *services.FineService
}

// NewFineHandler creates a new fine handler
func NewFineHandler(fineService *services.FineService) *FineHandler {
	return &FineHandler{
		fineService: fineService,
	}
}

// SettleRequest represents settlement request body
type SettleRequest struct {
	TransactionRef string `json:"transaction_ref"`
}

// List lists fines
// @Summary List fines
// @Description List fines. Borrowers see their own; staff see all
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by status (incomplete, completed)"
// @Success 200 {object} response.Envelope
// @Router /fines [get]
func (h *FineHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.FineFilter{
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	role, _ := c.Locals("role").(string)
	if role == domain.RoleBorrower {
		userID, _ := c.Locals("userID").(uint)
		filter.BorrowerID = &userID
	}

	if token := c.Query("status"); token != "" {
		status := domain.FineStatus(token)
		switch status {
		case domain.FineIncomplete, domain.FineCompleted:
			filter.Status = &status
		default:
			return response.BadRequest(c, "Unknown status filter")
		}
	}

	fines, total, err := h.fineService.List(c.Context(), filter)
	if err != nil {
		return response.DomainError(c, err, "Failed to list fines")
	}

	return response.Success(c, "Fines retrieved", pagination.NewResponse(fines, params, total))
}

// Get gets one fine
// @Summary Get fine
// @Description Get a fine by ID
// @Tags Fines
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fine ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /fines/{id} [get]
func (h *FineHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	fine, err := h.fineService.GetByID(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err, "Failed to get fine")
	}

	role, _ := c.Locals("role").(string)
	if role == domain.RoleBorrower {
		userID, _ := c.Locals("userID").(uint)
		if fine.BorrowerID != userID {
			return response.Forbidden(c, "Not your fine")
		}
	}

	return response.Success(c, "Fine retrieved", fiber.Map{
		"fine": fine,
	})
}

// Settle marks a fine as paid
// @Summary Settle fine
// @Description Mark a fine completed, recording the settlement reference (staff only)
// @Tags Fines
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fine ID"
// @Param body body SettleRequest true "Settlement reference"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /fines/{id}/settle [post]
func (h *FineHandler) Settle(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req SettleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	fine, err := h.fineService.Settle(c.Context(), id, req.TransactionRef)
	if err != nil {
		return response.DomainError(c, err, "Failed to settle fine")
	}

	return response.Success(c, "Fine settled", fiber.Map{
		"fine": fine,
	})
}
