package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a message delivered to one user's inbox.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Type      Severity  `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TriggerID *string   `json:"triggerId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationFilter narrows an inbox listing.
type NotificationFilter struct {
	Read  *bool
	Limit int
}
