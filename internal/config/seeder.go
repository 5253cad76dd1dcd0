package config

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/password"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Each step is idempotent and failures only log;
// seeding never blocks startup.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedStaffUsers(); err != nil {
		log.Printf("⚠️ Staff seeder skipped: %v", err)
	}
	if err := s.seedSampleCatalog(); err != nil {
		log.Printf("⚠️ Catalog seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedStaffUsers seeds a default admin and librarian for development.
// In production, create staff accounts through a secure process.
func (s *Seeder) seedStaffUsers() error {
	var count int64
	s.db.Model(&models.User{}).Where("role IN ?", []string{domain.RoleAdmin, domain.RoleLibrarian}).Count(&count)
	if count > 0 {
		return nil
	}

	staff := []struct {
		memberNo string
		username string
		email    string
		role     string
	}{
		{"STAFF-0001", "admin", "admin@librelend.local", domain.RoleAdmin},
		{"STAFF-0002", "librarian", "librarian@librelend.local", domain.RoleLibrarian},
	}

	for _, st := range staff {
		hashed, err := password.Hash("changeme123")
		if err != nil {
			return err
		}
		user := &models.User{
			MemberNo:   st.memberNo,
			Username:   st.username,
			Email:      st.email,
			Password:   hashed,
			Role:       st.role,
			IsVerified: true,
			IsActive:   true,
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("✅ Staff user created: %s (%s)", user.Username, user.Role)
	}
	return nil
}

// seedSampleCatalog seeds a few titles with copies so a fresh dev setup
// has something to borrow
func (s *Seeder) seedSampleCatalog() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil
	}

	books := []struct {
		code   string
		title  string
		author string
		year   int
		copies int
	}{
		{"BK-0001", "The Go Programming Language", "Alan A. A. Donovan", 2015, 3},
		{"BK-0002", "Designing Data-Intensive Applications", "Martin Kleppmann", 2017, 2},
		{"BK-0003", "Clean Architecture", "Robert C. Martin", 2017, 2},
	}

	for _, b := range books {
		book := &models.Book{
			Code:        b.code,
			Title:       b.title,
			Author:      b.author,
			Year:        b.year,
			TotalCopies: b.copies,
		}
		if err := s.db.Create(book).Error; err != nil {
			return err
		}
		for i := 1; i <= b.copies; i++ {
			instance := &models.BookInstance{
				BookID: book.ID,
				Code:   fmt.Sprintf("%s-C%02d", book.Code, i),
			}
			if err := s.db.Create(instance).Error; err != nil {
				return err
			}
		}
	}

	log.Printf("✅ Sample catalog seeded: %d titles", len(books))
	return nil
}
