package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/core/domain"
)

// BookService manages the catalog: titles and their physical copies.
type BookService struct {
	store repositories.Store
}

// NewBookService creates a new book service
func NewBookService(store repositories.Store) *BookService {
	return &BookService{store: store}
}

// CreateBookInput represents catalog entry input
type CreateBookInput struct {
	Code        string `json:"code" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author"`
	Publisher   string `json:"publisher"`
	Year        int    `json:"year"`
	Description string `json:"description"`
	Copies      int    `json:"copies"`
}

// UpdateBookInput represents catalog update input
type UpdateBookInput struct {
	Title       *string `json:"title"`
	Author      *string `json:"author"`
	Publisher   *string `json:"publisher"`
	Year        *int    `json:"year"`
	Description *string `json:"description"`
}

// Create adds a catalog entry and registers its initial copies
func (s *BookService) Create(ctx context.Context, input *CreateBookInput) (*models.BookResponse, error) {
	if input.Code == "" || input.Title == "" {
		return nil, fmt.Errorf("%w: code and title are required", domain.ErrValidation)
	}
	if input.Copies < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	var created *models.Book
	err := s.store.Transaction(ctx, func(st repositories.Store) error {
		book := &models.Book{
			Code:        input.Code,
			Title:       input.Title,
			Author:      input.Author,
			Publisher:   input.Publisher,
			Year:        input.Year,
			Description: input.Description,
			TotalCopies: input.Copies,
		}
		if err := st.CreateBook(ctx, book); err != nil {
			return err
		}
		if input.Copies > 0 {
			if err := st.CreateInstances(ctx, newInstances(book, input.Copies)); err != nil {
				return err
			}
		}
		created = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created.ToResponse(input.Copies), nil
}

// AddCopies registers more physical copies of an existing title
func (s *BookService) AddCopies(ctx context.Context, bookID uint, count int) (*models.BookResponse, error) {
	if count < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	var updated *models.Book
	err := s.store.Transaction(ctx, func(st repositories.Store) error {
		book, err := st.GetBookByID(ctx, bookID)
		if err != nil {
			return err
		}
		if err := st.CreateInstances(ctx, newInstances(book, count)); err != nil {
			return err
		}
		book.TotalCopies += count
		if err := st.SaveBook(ctx, book); err != nil {
			return err
		}
		updated = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.withAvailability(ctx, updated)
}

// GetByID gets a catalog entry with its live availability
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.BookResponse, error) {
	book, err := s.store.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withAvailability(ctx, book)
}

// List lists catalog entries with pagination and live availability
func (s *BookService) List(ctx context.Context, offset, limit int) ([]*models.BookResponse, int64, error) {
	books, total, err := s.store.ListBooks(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.BookResponse, len(books))
	for i, book := range books {
		resp, err := s.withAvailability(ctx, book)
		if err != nil {
			return nil, 0, err
		}
		responses[i] = resp
	}
	return responses, total, nil
}

// Update edits a catalog entry's descriptive fields
func (s *BookService) Update(ctx context.Context, id uint, input *UpdateBookInput) (*models.BookResponse, error) {
	book, err := s.store.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		book.Title = *input.Title
	}
	if input.Author != nil {
		book.Author = *input.Author
	}
	if input.Publisher != nil {
		book.Publisher = *input.Publisher
	}
	if input.Year != nil {
		book.Year = *input.Year
	}
	if input.Description != nil {
		book.Description = *input.Description
	}

	if err := s.store.SaveBook(ctx, book); err != nil {
		return nil, err
	}
	return s.withAvailability(ctx, book)
}

// Delete removes a catalog entry. Copies on loan block deletion.
func (s *BookService) Delete(ctx context.Context, id uint) error {
	return s.store.Transaction(ctx, func(st repositories.Store) error {
		book, err := st.GetBookByID(ctx, id)
		if err != nil {
			return err
		}
		free, err := st.CountFreeInstances(ctx, book.ID)
		if err != nil {
			return err
		}
		if int(free) < book.TotalCopies {
			return fmt.Errorf("%w: copies are still out", domain.ErrConflict)
		}
		return st.DeleteBook(ctx, book.ID)
	})
}

// Availability reports how many copies of a title are free right now
func (s *BookService) Availability(ctx context.Context, bookID uint) (int, error) {
	free, err := s.store.CountFreeInstances(ctx, bookID)
	return int(free), err
}

func (s *BookService) withAvailability(ctx context.Context, book *models.Book) (*models.BookResponse, error) {
	free, err := s.store.CountFreeInstances(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	return book.ToResponse(int(free)), nil
}

// newInstances mints copy records with barcode-style codes
func newInstances(book *models.Book, count int) []*models.BookInstance {
	instances := make([]*models.BookInstance, count)
	for i := range instances {
		instances[i] = &models.BookInstance{
			BookID: book.ID,
			Code:   fmt.Sprintf("%s-%s", book.Code, uuid.New().String()[:8]),
		}
	}
	return instances
}
