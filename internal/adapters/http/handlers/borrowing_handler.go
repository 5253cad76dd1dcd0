package handlers

import (
	"time"

	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/core/services"
	"librelend/internal/pkg/pagination"
	"librelend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BorrowingHandler handles per-copy borrowing endpoints
type BorrowingHandler struct {
	borrowingService *services.BorrowingService
}

// NewBorrowingHandler creates a new borrowing handler
func NewBorrowingHandler(borrowingService *services.BorrowingService) *BorrowingHandler {
	return &BorrowingHandler{
		borrowingService: borrowingService,
	}
}

// ExtendRequest represents extension request body. GrantedAt is optional
// and backdates the grant when a renewal is recorded after the fact.
type ExtendRequest struct {
	NewReturnDate time.Time  `json:"new_return_date"`
	GrantedAt     *time.Time `json:"granted_at"`
}

// ReturnRequest represents return confirmation body
type ReturnRequest struct {
	Images []string `json:"images"`
	Note   string   `json:"note"`
}

// Extend grants a renewal on a borrowing
// @Summary Extend borrowing
// @Description Grant a renewal with a new due date (staff only)
// @Tags Borrowings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrowing ID"
// @Param body body ExtendRequest true "New due date"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /borrowings/{id}/extend [post]
func (h *BorrowingHandler) Extend(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req ExtendRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	borrowing, err := h.borrowingService.Extend(c.Context(), id, req.NewReturnDate, req.GrantedAt)
	if err != nil {
		return response.DomainError(c, err, "Failed to extend borrowing")
	}

	return response.Success(c, "Borrowing extended", fiber.Map{
		"borrowing": borrowing,
	})
}

// Return confirms a physical return
// @Summary Confirm return
// @Description Close out a borrowing; an overdue return accrues its fine (staff only)
// @Tags Borrowings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrowing ID"
// @Param body body ReturnRequest true "Return details"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /borrowings/{id}/return [post]
func (h *BorrowingHandler) Return(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req ReturnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	borrowing, err := h.borrowingService.ConfirmReturn(c.Context(), id, req.Images, req.Note)
	if err != nil {
		return response.DomainError(c, err, "Failed to confirm return")
	}

	return response.Success(c, "Return confirmed", fiber.Map{
		"borrowing": borrowing,
	})
}

// Overdue reports how many days late a borrowing is
// @Summary Overdue days
// @Description Compute a borrowing's overdue days as of now (or its return)
// @Tags Borrowings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrowing ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /borrowings/{id}/overdue [get]
func (h *BorrowingHandler) Overdue(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	days, err := h.borrowingService.ComputeOverdueDays(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err, "Failed to compute overdue days")
	}

	return response.Success(c, "Overdue computed", fiber.Map{
		"borrowing_id": id,
		"overdue_days": days,
	})
}

// RefreshFine re-evaluates a returned borrowing's fine
// @Summary Refresh fine
// @Description Recompute the fine for a returned borrowing (staff only)
// @Tags Borrowings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrowing ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /borrowings/{id}/fine/refresh [post]
func (h *BorrowingHandler) RefreshFine(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	result, err := h.borrowingService.RefreshFine(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err, "Failed to refresh fine")
	}

	if result == nil {
		return response.Success(c, "No fine due", fiber.Map{
			"borrowing_id": id,
		})
	}

	return response.Success(c, "Fine recomputed", fiber.Map{
		"borrowing_id": id,
		"days_late":    result.DaysLate,
		"fine":         result.Fine,
	})
}

// Get gets one borrowing
// @Summary Get borrowing
// @Description Get a borrowing with its loan and copy
// @Tags Borrowings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Borrowing ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /borrowings/{id} [get]
func (h *BorrowingHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	borrowing, err := h.borrowingService.GetByID(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err, "Failed to get borrowing")
	}

	role, _ := c.Locals("role").(string)
	if role == domain.RoleBorrower {
		userID, _ := c.Locals("userID").(uint)
		if borrowing.Loan == nil || borrowing.Loan.BorrowerID != userID {
			return response.Forbidden(c, "Not your borrowing")
		}
	}

	return response.Success(c, "Borrowing retrieved", fiber.Map{
		"borrowing": borrowing,
	})
}

// List lists borrowings
// @Summary List borrowings
// @Description List borrowings. Borrowers see their own; staff see all
// @Tags Borrowings
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by status (reserved, on-loan, returned)"
// @Success 200 {object} response.Envelope
// @Router /borrowings [get]
func (h *BorrowingHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.BorrowingFilter{
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	role, _ := c.Locals("role").(string)
	if role == domain.RoleBorrower {
		userID, _ := c.Locals("userID").(uint)
		filter.BorrowerID = &userID
	}

	if token := c.Query("status"); token != "" {
		status := domain.BorrowingStatus(token)
		switch status {
		case domain.BorrowingReserved, domain.BorrowingOnLoan, domain.BorrowingReturned:
			filter.Status = &status
		default:
			return response.BadRequest(c, "Unknown status filter")
		}
	}

	borrowings, total, err := h.borrowingService.List(c.Context(), filter)
	if err != nil {
		return response.DomainError(c, err, "Failed to list borrowings")
	}

	return response.Success(c, "Borrowings retrieved", pagination.NewResponse(borrowings, params, total))
}
