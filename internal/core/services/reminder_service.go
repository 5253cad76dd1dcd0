package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
	"librelend/internal/pkg/clock"
)

// ReminderService runs the daily due-date sweep: borrowers whose loans are
// due tomorrow get a reminder, overdue ones get an overdue notice.
type ReminderService struct {
	store    repositories.Store
	clock    clock.Clock
	notifier Notifier
	mailer   Mailer
	cron     *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(store repositories.Store, clk clock.Clock, notifier Notifier, mailer Mailer) *ReminderService {
	return &ReminderService{
		store:    store,
		clock:    clk,
		notifier: notifier,
		mailer:   mailer,
		cron:     cron.New(),
	}
}

// Start schedules the daily sweep at 08:30
func (s *ReminderService) Start() error {
	_, err := s.cron.AddFunc("30 8 * * *", func() {
		s.RunSweep(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Println("🚀 ReminderService started (daily 08:30)")
	return nil
}

// Stop stops the scheduler, waiting for a running sweep to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 ReminderService stopped")
}

// RunSweep scans every active borrowing once. Exposed so operators can
// trigger it out of schedule.
func (s *ReminderService) RunSweep(ctx context.Context) {
	borrowings, err := s.store.ListOnLoanBorrowings(ctx)
	if err != nil {
		log.Printf("❌ Reminder sweep query error: %v", err)
		return
	}

	today := truncateToDay(s.clock.Now())
	tomorrow := today.AddDate(0, 0, 1)

	var reminders, overdues int
	for _, b := range borrowings {
		due, ok := b.DueDate()
		if !ok || b.Loan == nil {
			continue
		}
		dueDay := truncateToDay(due)

		switch {
		case dueDay.Equal(tomorrow):
			s.notifyDueTomorrow(b, due)
			reminders++
		case dueDay.Before(today):
			s.notifyOverdue(b, due)
			overdues++
		}
	}

	if reminders > 0 || overdues > 0 {
		log.Printf("📅 Reminder sweep: %d due-tomorrow reminders, %d overdue notices", reminders, overdues)
	}
}

func (s *ReminderService) notifyDueTomorrow(b *models.BookBorrowing, due time.Time) {
	title := borrowedBookTitle(b)
	if s.notifier != nil {
		s.notifier.SendNotificationToUser(b.Loan.BorrowerID, NotificationPayload{
			Title: "Book due tomorrow",
			Body:  fmt.Sprintf("%q is due back on %s", title, due.Format("2006-01-02")),
		})
	}
}

func (s *ReminderService) notifyOverdue(b *models.BookBorrowing, due time.Time) {
	title := borrowedBookTitle(b)
	if s.notifier != nil {
		s.notifier.SendNotificationToUser(b.Loan.BorrowerID, NotificationPayload{
			Title: "Book overdue",
			Body:  fmt.Sprintf("%q was due on %s, please return it", title, due.Format("2006-01-02")),
		})
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
