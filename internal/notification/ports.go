package notification

import (
	"context"
	"time"

	"github.com/Hirdyansh9/Orderbook/internal/models"
)

// PolicyStore reads and writes trigger policies per owning account.
// GetPolicy returns models.ErrNotFound when the owner has no policy yet.
type PolicyStore interface {
	GetPolicy(ctx context.Context, ownerID string) (models.Policy, error)
	SavePolicy(ctx context.Context, p models.Policy) (models.Policy, error)
}

// RecordProvider supplies the users and orders a scan works on.
type RecordProvider interface {
	ListActiveUsers(ctx context.Context) ([]models.User, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// NotificationSink persists notifications and answers the dedup query.
type NotificationSink interface {
	Exists(ctx context.Context, userID, triggerID, title string, since time.Time) (bool, error)
	CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error)
}

// Publisher delivers an already persisted notification to live channels.
type Publisher interface {
	Publish(ctx context.Context, n models.Notification) error
}
