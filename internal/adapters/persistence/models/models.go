package models

import (
	"time"

	"librelend/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Accounts
// ============================================================

// User represents users table (borrowers, librarians, admins)
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	MemberNo     string         `gorm:"uniqueIndex;size:20;not null" json:"member_no"`
	Username     string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password     string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:20;default:'BORROWER'" json:"role"`
	IsVerified   bool           `gorm:"default:false" json:"is_verified"`
	IsRestricted bool           `gorm:"default:false" json:"is_restricted"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID           uint      `json:"id"`
	MemberNo     string    `json:"member_no"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	IsRestricted bool      `json:"is_restricted"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:           u.ID,
		MemberNo:     u.MemberNo,
		Username:     u.Username,
		Email:        u.Email,
		Role:         u.Role,
		IsVerified:   u.IsVerified,
		IsRestricted: u.IsRestricted,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
	}
}

// ============================================================
// Catalog
// ============================================================

// Book represents books table (catalog entries)
type Book struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Code        string         `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Author      string         `gorm:"size:255" json:"author"`
	Publisher   string         `gorm:"size:255" json:"publisher"`
	Year        int            `json:"year"`
	Description string         `gorm:"type:text" json:"description"`
	TotalCopies int            `gorm:"default:0" json:"total_copies"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Instances []BookInstance `gorm:"foreignKey:BookID" json:"instances,omitempty"`
}

func (Book) TableName() string {
	return "books"
}

// BookResponse DTO; AvailableCopies is derived from open borrowings at read
// time, never stored.
type BookResponse struct {
	ID              uint   `json:"id"`
	Code            string `json:"code"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Publisher       string `json:"publisher"`
	Year            int    `json:"year"`
	Description     string `json:"description"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

func (b *Book) ToResponse(availableCopies int) *BookResponse {
	return &BookResponse{
		ID:              b.ID,
		Code:            b.Code,
		Title:           b.Title,
		Author:          b.Author,
		Publisher:       b.Publisher,
		Year:            b.Year,
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: availableCopies,
	}
}

// BookInstance represents book_instances table: one physical, individually
// trackable copy. IsBorrowed is denormalized; the open BookBorrowing row is
// the source of truth. Invariant: at most one non-returned BookBorrowing per
// instance at any time.
type BookInstance struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	BookID     uint           `gorm:"not null;index" json:"book_id"`
	Code       string         `gorm:"size:40;uniqueIndex;not null" json:"code"`
	IsBorrowed bool           `gorm:"default:false" json:"is_borrowed"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
}

func (BookInstance) TableName() string {
	return "book_instances"
}

// ============================================================
// Borrowing lifecycle
// ============================================================

// Loan represents loans table: one checkout transaction for a borrower.
// IsCart marks a staging loan; cart-ness is orthogonal to ApprovalStatus.
// Invariant: a borrower has at most one loan with IsCart=true at a time.
type Loan struct {
	ID             uint                  `gorm:"primaryKey" json:"id"`
	BorrowerID     uint                  `gorm:"not null;index" json:"borrower_id"`
	LibrarianID    *uint                 `json:"librarian_id"`
	IsCart         bool                  `gorm:"default:false;index" json:"is_cart"`
	ApprovalStatus domain.ApprovalStatus `gorm:"size:20;index" json:"approval_status"`
	Note           string                `gorm:"type:text" json:"note"`
	CreatedAt      time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt        `gorm:"index" json:"-"`

	// Relations
	Borrower   *User           `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
	Librarian  *User           `gorm:"foreignKey:LibrarianID" json:"librarian,omitempty"`
	Borrowings []BookBorrowing `gorm:"foreignKey:LoanID" json:"borrowings,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// BookBorrowing represents book_borrowings table: one physical copy inside
// one loan. ReturnDates holds successive due dates (last element is the
// active one); ExtendDates holds the grant date of each renewal,
// index-aligned with the ReturnDates entry it produced. Both are append-only
// until the borrowing is returned, then immutable.
type BookBorrowing struct {
	ID               uint                   `gorm:"primaryKey" json:"id"`
	LoanID           uint                   `gorm:"not null;index" json:"loan_id"`
	BookInstanceID   uint                   `gorm:"not null;index" json:"book_instance_id"`
	BorrowDate       time.Time              `gorm:"not null" json:"borrow_date"`
	Status           domain.BorrowingStatus `gorm:"size:20;not null;default:'reserved';index" json:"status"`
	ReturnDates      TimeList               `gorm:"type:json" json:"return_dates"`
	ExtendDates      TimeList               `gorm:"type:json" json:"extend_dates"`
	ActualReturnDate *time.Time             `json:"actual_return_date"`
	HasFine          bool                   `gorm:"default:false" json:"has_fine"`
	ReturnNote       string                 `gorm:"type:text" json:"return_note"`
	ReturnImages     StringList             `gorm:"type:json" json:"return_images"`
	CreatedAt        time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time              `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Loan         *Loan         `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	BookInstance *BookInstance `gorm:"foreignKey:BookInstanceID" json:"book_instance,omitempty"`
}

func (BookBorrowing) TableName() string {
	return "book_borrowings"
}

// DueDate returns the currently active due date.
func (b *BookBorrowing) DueDate() (time.Time, bool) {
	return b.ReturnDates.Last()
}

// ============================================================
// Fines
// ============================================================

// Fine represents fines table: one accruing penalty tied to a borrowing.
// Invariant: at most one non-completed fine per borrowing at a time.
type Fine struct {
	ID              uint              `gorm:"primaryKey" json:"id"`
	BookBorrowingID uint              `gorm:"not null;index" json:"book_borrowing_id"`
	BorrowerID      uint              `gorm:"not null;index" json:"borrower_id"`
	FineDate        time.Time         `gorm:"not null" json:"fine_date"`
	RatePerDay      float64           `gorm:"type:decimal(15,2);not null" json:"rate_per_day"`
	Amount          float64           `gorm:"type:decimal(15,2);not null;default:0" json:"amount"`
	Status          domain.FineStatus `gorm:"size:20;not null;default:'incomplete';index" json:"status"`
	TransactionRef  *string           `gorm:"size:100" json:"transaction_ref"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	BookBorrowing *BookBorrowing `gorm:"foreignKey:BookBorrowingID" json:"book_borrowing,omitempty"`
	Borrower      *User          `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
}

func (Fine) TableName() string {
	return "fines"
}

// ============================================================
// Notifications
// ============================================================

// Notification represents notifications table (in-app delivery rows)
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"size:40;uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	IsRead    bool      `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all owned tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Book{},
		&BookInstance{},
		&Loan{},
		&BookBorrowing{},
		&Fine{},
		&Notification{},
	)
}
