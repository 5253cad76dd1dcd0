package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/core/domain"
	"librelend/internal/pkg/clock"
)

// recordingNotifier captures deliveries for assertions
type recordingNotifier struct {
	sent []NotificationPayload
}

func (r *recordingNotifier) SendNotificationToUser(userID uint, payload NotificationPayload) {
	r.sent = append(r.sent, payload)
}

func (r *recordingNotifier) SendNotificationToUsers(userIDs []uint, payload NotificationPayload) {
	for range userIDs {
		r.sent = append(r.sent, payload)
	}
}

func seedOnLoan(f *fakeStore, borrowerID uint, borrow, due time.Time) {
	ctx := context.Background()
	loan := &models.Loan{BorrowerID: borrowerID, ApprovalStatus: domain.StatusTaken}
	f.CreateLoan(ctx, loan)
	f.CreateBorrowings(ctx, []*models.BookBorrowing{{
		LoanID:      loan.ID,
		BorrowDate:  borrow,
		Status:      domain.BorrowingOnLoan,
		ReturnDates: models.TimeList{due},
	}})
}

func TestRunSweep_NotifiesDueTomorrowAndOverdue(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)

	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	borrow := now.AddDate(0, 0, -14)

	seedOnLoan(f, borrower.ID, borrow, now.AddDate(0, 0, 1))  // due tomorrow
	seedOnLoan(f, borrower.ID, borrow, now.AddDate(0, 0, -3)) // overdue
	seedOnLoan(f, borrower.ID, borrow, now.AddDate(0, 0, 7))  // not yet

	notifier := &recordingNotifier{}
	svc := NewReminderService(f, clock.Fixed{T: now}, notifier, nil)

	svc.RunSweep(context.Background())

	require.Len(t, notifier.sent, 2)
	titles := []string{notifier.sent[0].Title, notifier.sent[1].Title}
	assert.Contains(t, titles, "Book due tomorrow")
	assert.Contains(t, titles, "Book overdue")
}

func TestRunSweep_DueTodayIsQuiet(t *testing.T) {
	f := newFakeStore()
	borrower := seedBorrower(f)

	now := time.Date(2025, 3, 10, 8, 30, 0, 0, time.UTC)
	seedOnLoan(f, borrower.ID, now.AddDate(0, 0, -14), now)

	notifier := &recordingNotifier{}
	svc := NewReminderService(f, clock.Fixed{T: now}, notifier, nil)

	svc.RunSweep(context.Background())
	assert.Empty(t, notifier.sent)
}
