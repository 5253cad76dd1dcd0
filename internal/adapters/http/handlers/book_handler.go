package handlers

import (
	"librelend/internal/core/services"
	"librelend/internal/pkg/pagination"
	"librelend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BookHandler handles catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// Create creates a catalog entry
// @Summary Create book
// @Description Add a catalog entry with its initial copies (staff only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateBookInput true "Book data"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var input services.CreateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Create(c.Context(), &input)
	if err != nil {
		return response.DomainError(c, err, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book,
	})
}

// List lists catalog entries
// @Summary List books
// @Description List the catalog with live availability
// @Tags Books
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Envelope
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	books, total, err := h.bookService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err, "Failed to list books")
	}

	return response.Success(c, "Books retrieved", pagination.NewResponse(books, params, total))
}

// Get gets one catalog entry
// @Summary Get book
// @Description Get a catalog entry with live availability
// @Tags Books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	book, err := h.bookService.GetByID(c.Context(), id)
	if err != nil {
		return response.DomainError(c, err, "Failed to get book")
	}

	return response.Success(c, "Book retrieved", fiber.Map{
		"book": book,
	})
}

// Update edits a catalog entry
// @Summary Update book
// @Description Edit a catalog entry's descriptive fields (staff only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body services.UpdateBookInput true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var input services.UpdateBookInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(c.Context(), id, &input)
	if err != nil {
		return response.DomainError(c, err, "Failed to update book")
	}

	return response.Success(c, "Book updated", fiber.Map{
		"book": book,
	})
}

// Delete removes a catalog entry
// @Summary Delete book
// @Description Remove a catalog entry. Copies on loan block deletion (staff only)
// @Tags Books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.bookService.Delete(c.Context(), id); err != nil {
		return response.DomainError(c, err, "Failed to delete book")
	}

	return response.Success(c, "Book deleted", nil)
}

// AddCopiesRequest represents copy registration body
type AddCopiesRequest struct {
	Count int `json:"count"`
}

// AddCopies registers more physical copies
// @Summary Add copies
// @Description Register additional physical copies of a title (staff only)
// @Tags Books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param body body AddCopiesRequest true "Copy count"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /books/{id}/copies [post]
func (h *BookHandler) AddCopies(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	var req AddCopiesRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.AddCopies(c.Context(), id, req.Count)
	if err != nil {
		return response.DomainError(c, err, "Failed to add copies")
	}

	return response.Success(c, "Copies added", fiber.Map{
		"book": book,
	})
}
