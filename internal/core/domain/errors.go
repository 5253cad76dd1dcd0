package domain

import (
	"errors"
	"fmt"
)

// Taxonomy classes. Handlers map these to HTTP statuses with errors.Is;
// services only ever return errors wrapping one of them.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("resource not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
	ErrInternal   = errors.New("internal error")
)

// Validation errors
var (
	ErrInvalidStatus     = fmt.Errorf("%w: unknown status token", ErrValidation)
	ErrMissingReturnDate = fmt.Errorf("%w: return date is required", ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	ErrEmptyCart         = fmt.Errorf("%w: cart has no items", ErrValidation)
)

// Not-found errors
var (
	ErrBookNotFound      = fmt.Errorf("%w: book", ErrNotFound)
	ErrInstanceNotFound  = fmt.Errorf("%w: book instance", ErrNotFound)
	ErrLoanNotFound      = fmt.Errorf("%w: loan", ErrNotFound)
	ErrCartNotFound      = fmt.Errorf("%w: cart", ErrNotFound)
	ErrBorrowingNotFound = fmt.Errorf("%w: borrowing", ErrNotFound)
	ErrFineNotFound      = fmt.Errorf("%w: fine", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("%w: user", ErrNotFound)
)

// Conflict errors
var (
	ErrInsufficientCopies = fmt.Errorf("%w: not enough free copies", ErrConflict)
	ErrAlreadyReturned    = fmt.Errorf("%w: borrowing already returned", ErrConflict)
	ErrNotOnLoan          = fmt.Errorf("%w: borrowing is not on loan", ErrConflict)
	ErrIllegalTransition  = fmt.Errorf("%w: illegal status transition", ErrConflict)
	ErrFineCompleted      = fmt.Errorf("%w: fine already completed", ErrConflict)
	ErrDuplicateEntry     = fmt.Errorf("%w: duplicate entry", ErrConflict)
)

// Forbidden errors
var (
	ErrRoleNotEligible    = fmt.Errorf("%w: account role cannot borrow", ErrForbidden)
	ErrAccountUnverified  = fmt.Errorf("%w: account is not verified", ErrForbidden)
	ErrAccountRestricted  = fmt.Errorf("%w: account is suspended", ErrForbidden)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrForbidden)
	ErrTokenInvalid       = fmt.Errorf("%w: token invalid", ErrForbidden)
	ErrNotLoanOwner       = fmt.Errorf("%w: loan belongs to another borrower", ErrForbidden)
	ErrStaffOnly          = fmt.Errorf("%w: transition requires staff", ErrForbidden)
)
