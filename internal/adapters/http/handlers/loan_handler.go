package handlers

import (
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
	"librelend/internal/core/services"
	"librelend/internal/pkg/pagination"
	"librelend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles cart and loan workflow endpoints
type LoanHandler struct {
	cartService *services.CartService
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(cartService *services.CartService, loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		cartService: cartService,
		loanService: loanService,
	}
}

// AddToCartRequest represents add-to-cart body
type AddToCartRequest struct {
	BookID   uint `json:"book_id"`
	Quantity int  `json:"quantity"`
}

// UpdateStatusRequest represents status update body
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// AddToCart reserves copies in the borrower's cart
// @Summary Add to cart
// @Description Reserve copies of a book in the current borrower's cart
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AddToCartRequest true "Book and quantity"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /cart/items [post]
func (h *LoanHandler) AddToCart(c *fiber.Ctx) error {
	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	userID, _ := c.Locals("userID").(uint)

	cart, err := h.cartService.AddToCart(c.Context(), userID, req.BookID, req.Quantity)
	if err != nil {
		return response.DomainError(c, err, "Failed to add to cart")
	}

	return response.Success(c, "Added to cart", fiber.Map{
		"cart": cart,
	})
}

// GetCart returns the borrower's cart
// @Summary Get cart
// @Description Get the current borrower's cart with its line items
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /cart [get]
func (h *LoanHandler) GetCart(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)

	cart, err := h.cartService.GetCart(c.Context(), userID)
	if err != nil {
		return response.DomainError(c, err, "Failed to get cart")
	}

	return response.Success(c, "Cart retrieved", fiber.Map{
		"cart": cart,
	})
}

// UpdateStatus moves a loan through the approval workflow
// @Summary Update loan status
// @Description Apply a workflow transition to a loan
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body UpdateStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /loans/{id}/status [patch]
func (h *LoanHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)
	actor := services.Actor{UserID: userID, Role: role}

	loan, err := h.loanService.UpdateStatus(c.Context(), id, req.Status, actor, req.Note)
	if err != nil {
		return response.DomainError(c, err, "Failed to update loan status")
	}

	return response.Success(c, "Loan status updated", fiber.Map{
		"loan": loan,
	})
}

// Get gets one loan
// @Summary Get loan
// @Description Get a loan with its line items
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /loans/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	loan, err := h.loanService.GetByID(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err, "Failed to get loan")
	}

	// Borrowers only see their own loans
	role, _ := c.Locals("role").(string)
	if role == domain.RoleBorrower {
		userID, _ := c.Locals("userID").(uint)
		if loan.BorrowerID != userID {
			return response.Forbidden(c, "Not your loan")
		}
	}

	return response.Success(c, "Loan retrieved", fiber.Map{
		"loan": loan,
	})
}

// List lists loans
// @Summary List loans
// @Description List loans. Borrowers see their own; staff see all
// @Tags Loans
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by approval status"
// @Success 200 {object} response.Envelope
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.LoanFilter{
		Offset: params.Offset,
		Limit:  params.Limit,
	}

	role, _ := c.Locals("role").(string)
	if role == domain.RoleBorrower {
		userID, _ := c.Locals("userID").(uint)
		filter.BorrowerID = &userID
	}

	if token := c.Query("status"); token != "" {
		status, err := domain.ParseApprovalStatus(token)
		if err != nil {
			return response.BadRequest(c, "Unknown status filter")
		}
		filter.Status = &status
	}

	loans, total, err := h.loanService.List(c.Context(), filter)
	if err != nil {
		return response.DomainError(c, err, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved", pagination.NewResponse(loans, params, total))
}
