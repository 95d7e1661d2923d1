package repository

import (
	"context"
	"fmt"

	"matrimony-backend/internal/models"
)

const pendingColumns = `id, user_id, field, value, approved, created_at, updated_at`

func (q *queries) listPending(ctx context.Context, query string, args ...any) ([]*models.PendingFieldUpdate, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending updates: %w", err)
	}
	defer rows.Close()

	updates := []*models.PendingFieldUpdate{}
	for rows.Next() {
		var u models.PendingFieldUpdate
		if err := rows.Scan(&u.ID, &u.UserID, &u.Field, &u.Value, &u.Approved, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pending update: %w", err)
		}
		updates = append(updates, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending updates: %w", err)
	}
	return updates, nil
}

// ListPendingByUser retrieves a user's unapproved pending updates
func (q *queries) ListPendingByUser(ctx context.Context, userID string) ([]*models.PendingFieldUpdate, error) {
	return q.listPending(ctx,
		`SELECT `+pendingColumns+` FROM pending_field_updates WHERE user_id = $1 AND NOT approved ORDER BY field`,
		userID)
}

// ListUnapproved retrieves every unapproved pending update, oldest first
func (q *queries) ListUnapproved(ctx context.Context, limit, offset int) ([]*models.PendingFieldUpdate, error) {
	return q.listPending(ctx,
		`SELECT `+pendingColumns+` FROM pending_field_updates WHERE NOT approved ORDER BY updated_at LIMIT $1 OFFSET $2`,
		limit, offset)
}

// UpsertPending creates the pending update for (user, field) or overwrites its value
func (q *queries) UpsertPending(ctx context.Context, u *models.PendingFieldUpdate) error {
	query := `
		INSERT INTO pending_field_updates (id, user_id, field, value, approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, $5, $5)
		ON CONFLICT (user_id, field) WHERE NOT approved
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	if _, err := q.db.Exec(ctx, query, u.ID, u.UserID, u.Field, u.Value, u.UpdatedAt); err != nil {
		return fmt.Errorf("failed to upsert pending update: %w", err)
	}
	return nil
}

// DeletePendingField discards the unapproved pending update for (user, field), if any
func (q *queries) DeletePendingField(ctx context.Context, userID, field string) error {
	query := `DELETE FROM pending_field_updates WHERE user_id = $1 AND field = $2 AND NOT approved`
	if _, err := q.db.Exec(ctx, query, userID, field); err != nil {
		return fmt.Errorf("failed to delete pending update: %w", err)
	}
	return nil
}

// LockPending retrieves an unapproved pending update and locks it until the transaction ends
func (q *queries) LockPending(ctx context.Context, id string) (*models.PendingFieldUpdate, error) {
	query := `SELECT ` + pendingColumns + ` FROM pending_field_updates WHERE id = $1 AND NOT approved FOR UPDATE`
	var u models.PendingFieldUpdate
	err := q.db.QueryRow(ctx, query, id).Scan(&u.ID, &u.UserID, &u.Field, &u.Value, &u.Approved, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "pending update")
	}
	return &u, nil
}

// DeletePending removes a pending update by ID
func (q *queries) DeletePending(ctx context.Context, id string) error {
	result, err := q.db.Exec(ctx, `DELETE FROM pending_field_updates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pending update: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("pending update not found: %w", ErrNotFound)
	}
	return nil
}
