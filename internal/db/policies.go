package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Hirdyansh9/Orderbook/internal/models"
)

// GetPolicy returns the owner's policy or models.ErrNotFound.
func (d *DB) GetPolicy(ctx context.Context, ownerID string) (models.Policy, error) {
	query := `
	SELECT owner_id, triggers, created_at, updated_at
	FROM notification_policies
	WHERE owner_id = $1`

	var p models.Policy
	var raw []byte
	err := d.Pool.QueryRow(ctx, query, ownerID).Scan(&p.OwnerID, &raw, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Policy{}, models.ErrNotFound
		}
		return models.Policy{}, fmt.Errorf("failed to get policy for owner %s: %w", ownerID, err)
	}
	if err := json.Unmarshal(raw, &p.Triggers); err != nil {
		return models.Policy{}, fmt.Errorf("failed to decode triggers for owner %s: %w", ownerID, err)
	}
	return p, nil
}

// SavePolicy inserts the owner's policy or replaces its triggers.
func (d *DB) SavePolicy(ctx context.Context, p models.Policy) (models.Policy, error) {
	if p.Triggers == nil {
		p.Triggers = []models.Trigger{}
	}
	raw, err := json.Marshal(p.Triggers)
	if err != nil {
		return models.Policy{}, fmt.Errorf("failed to encode triggers: %w", err)
	}

	query := `
	INSERT INTO notification_policies (owner_id, triggers, created_at, updated_at)
	VALUES ($1, $2, NOW(), NOW())
	ON CONFLICT (owner_id) DO UPDATE
	SET triggers = EXCLUDED.triggers, updated_at = NOW()
	RETURNING created_at, updated_at`

	if err := d.Pool.QueryRow(ctx, query, p.OwnerID, raw).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Policy{}, fmt.Errorf("failed to save policy for owner %s: %w", p.OwnerID, err)
	}
	return p, nil
}
