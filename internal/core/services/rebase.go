package services

import (
	"time"

	"librelend/internal/adapters/persistence/models"
)

// rebaseBorrowing re-anchors a borrowing's due dates to the real hand-off
// instant. A borrowing accumulates provisional due dates while it sits in
// the cart or a pending loan; when the loan turns "taken", each due date's
// offset from the placeholder borrow date is preserved relative to now, and
// the borrow date becomes now.
func rebaseBorrowing(b *models.BookBorrowing, now time.Time) {
	rebased := make(models.TimeList, len(b.ReturnDates))
	for i, due := range b.ReturnDates {
		rebased[i] = now.Add(due.Sub(b.BorrowDate))
	}
	b.ReturnDates = rebased
	b.BorrowDate = now
}
