package services

import (
	"time"

	"librelend/internal/core/domain"
)

// NotificationPayload is what side-effect collaborators deliver to users.
type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notifier delivers user notifications. Implementations are fire-and-forget:
// they run after the core transaction commits and must never fail it.
type Notifier interface {
	SendNotificationToUser(userID uint, payload NotificationPayload)
	SendNotificationToUsers(userIDs []uint, payload NotificationPayload)
}

// Mailer sends best-effort emails, non-blocking relative to the core
// mutation. A nil-safe no-op implementation is acceptable in tests.
type Mailer interface {
	SendStatusUpdateEmail(to string, loanID uint, status domain.ApprovalStatus)
	SendReturnConfirmationEmail(to string, bookTitle string, returnedAt time.Time)
	SendExtendConfirmationEmail(to string, bookTitle string, newDueDate time.Time)
	SendFineNotificationEmail(to string, bookTitle string, amount float64)
}
