package dto

import (
	"time"

	"github.com/algolab-dev/labrec-api/internal/models"
)

// NotificationCreateRequest describes the payload to create a notification.
type NotificationCreateRequest struct {
	UserID string `json:"user_id" validate:"required,uuid4"`
	Title  string `json:"title" validate:"required,max=255"`
	Body   string `json:"body" validate:"omitempty,max=4000"`
}

// NotificationResponse is the serialized representation of a notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserID:    model.UserID,
		Title:     model.Title,
		Body:      model.Body,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, NewNotificationResponse(notification))
	}
	return out
}
