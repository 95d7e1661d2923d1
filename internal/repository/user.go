package repository

import (
	"context"
	"fmt"

	"matrimony-backend/internal/models"
)

const userColumns = `id, uid, email, name, picture, email_verified, is_blocked,
	login_count, last_logged_in_at, push_token, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.UID, &user.Email, &user.Name, &user.Picture, &user.EmailVerified,
		&user.IsBlocked, &user.LoginCount, &user.LastLoggedInAt, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user. It reports false when the uid is already taken.
func (q *queries) CreateUser(ctx context.Context, user *models.User) (bool, error) {
	query := `
		INSERT INTO users (id, uid, email, name, picture, email_verified, is_blocked,
			login_count, last_logged_in_at, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (uid) DO NOTHING
	`
	result, err := q.db.Exec(ctx, query,
		user.ID, user.UID, user.Email, user.Name, user.Picture, user.EmailVerified, user.IsBlocked,
		user.LoginCount, user.LastLoggedInAt, user.PushToken, user.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create user: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// GetUserByID retrieves a user by ID
func (q *queries) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(q.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// GetUserByUID retrieves a user by identity provider subject
func (q *queries) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	user, err := scanUser(q.db.QueryRow(ctx, query, uid))
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// UpdateUserLogin stores the refreshed identity fields and login counters
func (q *queries) UpdateUserLogin(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, picture = $4, email_verified = $5,
			login_count = $6, last_logged_in_at = $7
		WHERE id = $1
	`
	result, err := q.db.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.Picture, user.EmailVerified,
		user.LoginCount, user.LastLoggedInAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update user login: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return nil
}

// UpdatePushToken updates the push token for a user
func (q *queries) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := q.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", ErrNotFound)
	}
	return nil
}
