package dto

import (
	"time"

	"github.com/sigra-edu/sigra-api/internal/models"
)

// NotificationCreateRequest publishes a notification to one user.
type NotificationCreateRequest struct {
	UserRef string                 `json:"user_ref" validate:"required"`
	Kind    string                 `json:"kind" validate:"required,oneof=grade resource deadline at_risk"`
	Message string                 `json:"message" validate:"required,min=1"`
	Payload map[string]interface{} `json:"payload"`
}

// NotificationResponse is the serialized representation of a notification.
type NotificationResponse struct {
	ID        uint                   `json:"id"`
	UserRef   string                 `json:"user_ref"`
	Kind      string                 `json:"kind"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewNotificationResponse converts a model into a DTO.
func NewNotificationResponse(model models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        model.ID,
		UserRef:   model.UserRef,
		Kind:      model.Kind,
		Message:   model.Message,
		Payload:   model.Payload,
		Read:      model.Read,
		CreatedAt: model.CreatedAt,
	}
}

// NewNotificationResponseSlice converts a slice of models into DTOs.
func NewNotificationResponseSlice(notifications []models.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		responses = append(responses, NewNotificationResponse(notification))
	}
	return responses
}
