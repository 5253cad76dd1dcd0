package services

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"librelend/internal/adapters/persistence/models"
	"librelend/internal/adapters/persistence/repositories"
)

// NotificationService persists in-app notifications and mirrors them to an
// optional webhook. Delivery is best effort and never blocks the caller.
type NotificationService struct {
	store      repositories.Store
	webhookURL string
	client     *http.Client
}

// NewNotificationService creates a new notification service. An empty
// webhookURL disables the webhook mirror; in-app rows are always written.
func NewNotificationService(store repositories.Store, webhookURL string) *NotificationService {
	return &NotificationService{
		store:      store,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SendNotificationToUser delivers one notification to one user
func (s *NotificationService) SendNotificationToUser(userID uint, payload NotificationPayload) {
	s.SendNotificationToUsers([]uint{userID}, payload)
}

// SendNotificationToUsers delivers one notification to several users
func (s *NotificationService) SendNotificationToUsers(userIDs []uint, payload NotificationPayload) {
	if len(userIDs) == 0 {
		return
	}

	notifications := make([]*models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, &models.Notification{
			Token:  uuid.New().String(),
			UserID: userID,
			Title:  payload.Title,
			Body:   payload.Body,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.CreateNotifications(ctx, notifications); err != nil {
		log.Printf("❌ Notification insert error: %v", err)
		return
	}

	go s.postWebhook(userIDs, payload)
}

// List lists a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error) {
	return s.store.ListNotifications(ctx, userID, offset, limit)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	return s.store.MarkNotificationRead(ctx, userID, id)
}

func (s *NotificationService) postWebhook(userIDs []uint, payload NotificationPayload) {
	if s.webhookURL == "" {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"user_ids": userIDs,
		"title":    payload.Title,
		"body":     payload.Body,
	})
	if err != nil {
		return
	}

	req, err := http.NewRequest("POST", s.webhookURL, bytes.NewBuffer(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("❌ Notification webhook error: %v", err)
		return
	}
	defer resp.Body.Close()
}
