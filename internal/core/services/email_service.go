package services

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"librelend/internal/core/domain"
)

// EmailService sends transactional emails over SMTP. With no host
// configured every send is a silent no-op, so local setups need no mail
// server.
type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
}

// NewEmailService creates a new email service
func NewEmailService(host, port, username, password, from string) *EmailService {
	return &EmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		enabled:  host != "",
	}
}

// IsEnabled checks if email sending is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendStatusUpdateEmail notifies the borrower that their loan changed status
func (s *EmailService) SendStatusUpdateEmail(to string, loanID uint, status domain.ApprovalStatus) {
	subject := fmt.Sprintf("Loan #%d update", loanID)
	body := fmt.Sprintf("Your loan #%d is now %q.", loanID, status)
	s.send(to, subject, body)
}

// SendReturnConfirmationEmail confirms a returned book
func (s *EmailService) SendReturnConfirmationEmail(to string, bookTitle string, returnedAt time.Time) {
	subject := "Return confirmed"
	body := fmt.Sprintf("We received %q back on %s. Thank you!", bookTitle, returnedAt.Format("2006-01-02"))
	s.send(to, subject, body)
}

// SendExtendConfirmationEmail confirms a granted renewal
func (s *EmailService) SendExtendConfirmationEmail(to string, bookTitle string, newDueDate time.Time) {
	subject := "Loan extended"
	body := fmt.Sprintf("Your loan of %q was extended. New due date: %s.", bookTitle, newDueDate.Format("2006-01-02"))
	s.send(to, subject, body)
}

// SendFineNotificationEmail notifies the borrower of an overdue fine
func (s *EmailService) SendFineNotificationEmail(to string, bookTitle string, amount float64) {
	subject := "Overdue fine"
	body := fmt.Sprintf("Returning %q late incurred a fine of %.2f. Please settle it at the front desk or online.", bookTitle, amount)
	s.send(to, subject, body)
}

// send delivers asynchronously; errors only log
func (s *EmailService) send(to, subject, body string) {
	if !s.enabled || to == "" {
		return
	}

	go func() {
		msg := []byte(fmt.Sprintf(
			"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s\r\n",
			s.from, to, subject, body,
		))

		var auth smtp.Auth
		if s.username != "" {
			auth = smtp.PlainAuth("", s.username, s.password, s.host)
		}

		addr := s.host + ":" + s.port
		if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
			log.Printf("❌ Email send error to %s: %v", to, err)
		}
	}()
}
