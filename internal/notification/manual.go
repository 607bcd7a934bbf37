package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Hirdyansh9/Orderbook/internal/models"
	"github.com/Hirdyansh9/Orderbook/internal/trigger"
)

// ErrInvalidManual wraps every validation failure of a manual notification.
var ErrInvalidManual = errors.New("invalid manual notification")

// ManualNotification is an operator-authored notification.
type ManualNotification struct {
	Title      string          `json:"title"`
	Message    string          `json:"message"`
	Type       models.Severity `json:"type"`
	Recipients []string        `json:"recipients"`
}

// CreateManual writes n to every resolved recipient. It skips trigger
// evaluation, templating and deduplication.
func (s *Service) CreateManual(ctx context.Context, n ManualNotification) ([]models.Notification, error) {
	if strings.TrimSpace(n.Title) == "" || strings.TrimSpace(n.Message) == "" {
		return nil, fmt.Errorf("%w: title and message are required", ErrInvalidManual)
	}
	if n.Type == "" {
		n.Type = models.SeverityInfo
	}
	if !n.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidManual, n.Type)
	}
	if len(n.Recipients) == 0 {
		n.Recipients = []string{models.RecipientAll}
	}

	users, err := s.records.ListActiveUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active users: %w", err)
	}

	targets := trigger.ResolveRecipients(n.Recipients, users)
	created := make([]models.Notification, 0, len(targets))
	for _, u := range targets {
		saved, err := s.sink.CreateNotification(ctx, models.Notification{
			UserID:    u.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			CreatedAt: s.now(),
		})
		if err != nil {
			return created, fmt.Errorf("create notification for user %s: %w", u.ID, err)
		}
		created = append(created, saved)
		s.publish(ctx, saved)
	}

	s.logger.WithField("count", len(created)).Info("Manual notification sent")
	return created, nil
}
