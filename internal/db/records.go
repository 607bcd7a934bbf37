package db

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Hirdyansh9/Orderbook/internal/models"
)

// ListActiveUsers returns every user with is_active set.
func (d *DB) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	rows, err := d.Pool.Query(ctx, `
	SELECT id::text, name, role, is_active
	FROM users
	WHERE is_active
	ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Role, &u.Active); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ListOrders returns all orders. Amounts are read as text so no precision
// is lost on the way into decimal. Dates are read as DATE and arrive as
// midnight UTC holding the stored calendar day.
func (d *DB) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := d.Pool.Query(ctx, `
	SELECT id::text, customer_name, address, mobile_no, item, quantity,
	       order_date::date, delivery_date::date,
	       advance_amount::text, total_amount::text, remaining_balance::text,
	       delivery_status, COALESCE(notes, '')
	FROM orders
	ORDER BY delivery_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var advance, total, remaining string
		err := rows.Scan(
			&o.ID, &o.CustomerName, &o.Address, &o.MobileNo, &o.Item, &o.Quantity,
			&o.OrderDate, &o.DeliveryDate,
			&advance, &total, &remaining,
			&o.DeliveryStatus, &o.Notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if o.AdvanceAmount, err = decimal.NewFromString(advance); err != nil {
			return nil, fmt.Errorf("order %s: bad advance amount %q: %w", o.ID, advance, err)
		}
		if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("order %s: bad total amount %q: %w", o.ID, total, err)
		}
		if o.RemainingBalance, err = decimal.NewFromString(remaining); err != nil {
			return nil, fmt.Errorf("order %s: bad remaining balance %q: %w", o.ID, remaining, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
