package db

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hirdyansh9/Orderbook/internal/models"
)

func setupMockDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewWithPool(mock), mock
}

var notificationCols = []string{"id", "user_id", "type", "title", "message", "trigger_id", "read", "created_at"}

func TestGetPolicy_NotFound(t *testing.T) {
	d, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_policies")).
		WithArgs("owner-1").
		WillReturnError(pgx.ErrNoRows)

	_, err := d.GetPolicy(context.Background(), "owner-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPolicy_DecodesTriggers(t *testing.T) {
	d, mock := setupMockDB(t)

	raw, err := json.Marshal(models.DefaultTriggers())
	require.NoError(t, err)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM notification_policies")).
		WithArgs("owner-1").
		WillReturnRows(pgxmock.NewRows([]string{"owner_id", "triggers", "created_at", "updated_at"}).
			AddRow("owner-1", raw, now, now))

	p, err := d.GetPolicy(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", p.OwnerID)
	require.Len(t, p.Triggers, 6)
	assert.True(t, p.Triggers[4].Threshold.Equal(decimal.NewFromInt(50000)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSavePolicy_Upserts(t *testing.T) {
	d, mock := setupMockDB(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (owner_id) DO UPDATE")).
		WithArgs("owner-1", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	p, err := d.SavePolicy(context.Background(), models.Policy{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.NotNil(t, p.Triggers)
	assert.Equal(t, now, p.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	d, mock := setupMockDB(t)
	since := time.Now().Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("u1", "deliveryDeadline", "Delivery Due Today", since).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := d.Exists(context.Background(), "u1", "deliveryDeadline", "Delivery Due Today", since)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNotification(t *testing.T) {
	d, mock := setupMockDB(t)
	triggerID := "deliveryOverdue"
	createdAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(pgxmock.AnyArg(), "u1", models.SeverityError, "Delivery Overdue", "Late", &triggerID, createdAt).
		WillReturnRows(pgxmock.NewRows(notificationCols).
			AddRow(uuid.New(), "u1", models.SeverityError, "Delivery Overdue", "Late", &triggerID, false, createdAt))

	n, err := d.CreateNotification(context.Background(), models.Notification{
		UserID:    "u1",
		Type:      models.SeverityError,
		Title:     "Delivery Overdue",
		Message:   "Late",
		TriggerID: &triggerID,
		CreatedAt: createdAt,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, n.ID)
	assert.False(t, n.Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListNotifications_DefaultLimit(t *testing.T) {
	d, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("u1", (*bool)(nil), 50).
		WillReturnRows(pgxmock.NewRows(notificationCols))

	got, err := d.ListNotifications(context.Background(), "u1", models.NotificationFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead_NotFound(t *testing.T) {
	d, mock := setupMockDB(t)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notifications SET read = TRUE")).
		WithArgs(id, "u1").
		WillReturnError(pgx.ErrNoRows)

	_, err := d.MarkRead(context.Background(), "u1", id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAllRead(t *testing.T) {
	d, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET read = TRUE WHERE user_id = $1 AND NOT read")).
		WithArgs("u1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := d.MarkAllRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotification_OtherUser(t *testing.T) {
	d, mock := setupMockDB(t)
	id := uuid.New()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM notifications")).
		WithArgs(id, "u2").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := d.DeleteNotification(context.Background(), "u2", id)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUnread(t *testing.T) {
	d, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notifications")).
		WithArgs("u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	n, err := d.CountUnread(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrders_ParsesAmounts(t *testing.T) {
	d, mock := setupMockDB(t)
	due := time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders")).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_name", "address", "mobile_no", "item", "quantity",
			"order_date", "delivery_date", "advance_amount", "total_amount", "remaining_balance",
			"delivery_status", "notes",
		}).AddRow(
			"o-1", "Asha", "12 MG Road", "9800000000", "Steel racks", int64(12),
			due.AddDate(0, 0, -7), due, "10000.00", "60000.50", "50000.50",
			models.DeliveryPending, "",
		))

	orders, err := d.ListOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].TotalAmount.Equal(decimal.RequireFromString("60000.5")))
	assert.True(t, orders[0].RemainingBalance.Equal(decimal.RequireFromString("50000.5")))
	assert.Equal(t, models.DeliveryPending, orders[0].DeliveryStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveUsers(t *testing.T) {
	d, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "role", "is_active"}).
			AddRow("1", "Meera", models.RoleOwner, true).
			AddRow("2", "Kiran", models.RoleEmployee, true))

	users, err := d.ListActiveUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleOwner, users[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
