package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Hirdyansh9/Orderbook/internal/models"
)

const notificationColumns = `id, user_id, type, title, message, trigger_id, read, created_at`

func scanNotification(row pgx.Row) (models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.TriggerID, &n.Read, &n.CreatedAt)
	return n, err
}

// CreateNotification stores n with a fresh id and returns the stored row.
func (d *DB) CreateNotification(ctx context.Context, n models.Notification) (models.Notification, error) {
	n.ID = uuid.New()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	query := `
	INSERT INTO notifications (` + notificationColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	RETURNING ` + notificationColumns

	created, err := scanNotification(d.Pool.QueryRow(ctx, query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.TriggerID, n.CreatedAt))
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to create notification: %w", err)
	}
	return created, nil
}

// Exists reports whether userID got a notification for triggerID with the
// same title at or after since.
func (d *DB) Exists(ctx context.Context, userID, triggerID, title string, since time.Time) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM notifications
		WHERE user_id = $1 AND trigger_id = $2 AND title = $3 AND created_at >= $4
	)`

	var exists bool
	if err := d.Pool.QueryRow(ctx, query, userID, triggerID, title, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check recent notification: %w", err)
	}
	return exists, nil
}

// ListNotifications returns a user's inbox, newest first.
func (d *DB) ListNotifications(ctx context.Context, userID string, f models.NotificationFilter) ([]models.Notification, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}

	query := `
	SELECT ` + notificationColumns + `
	FROM notifications
	WHERE user_id = $1 AND ($2::boolean IS NULL OR read = $2)
	ORDER BY created_at DESC
	LIMIT $3`

	rows, err := d.Pool.Query(ctx, query, userID, f.Read, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for user %s: %w", userID, err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (d *DB) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT read`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the user's notifications as read.
func (d *DB) MarkRead(ctx context.Context, userID string, id uuid.UUID) (models.Notification, error) {
	query := `
	UPDATE notifications SET read = TRUE
	WHERE id = $1 AND user_id = $2
	RETURNING ` + notificationColumns

	n, err := scanNotification(d.Pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Notification{}, models.ErrNotFound
		}
		return models.Notification{}, fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return n, nil
}

// MarkAllRead marks every unread notification of the user and returns how many changed.
func (d *DB) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	tag, err := d.Pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (d *DB) DeleteNotification(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
