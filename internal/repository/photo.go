package repository

import (
	"context"
	"fmt"

	"matrimony-backend/internal/models"
)

// ListPhotos retrieves a profile's photos in display order
func (q *queries) ListPhotos(ctx context.Context, profileID string) ([]*models.Photo, error) {
	query := `
		SELECT id, profile_id, COALESCE(data, ''), COALESCE(object_key, ''),
			width, height, is_primary, display_order, created_at
		FROM profile_photos
		WHERE profile_id = $1
		ORDER BY display_order
	`
	rows, err := q.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	photos := []*models.Photo{}
	for rows.Next() {
		var photo models.Photo
		err := rows.Scan(
			&photo.ID, &photo.ProfileID, &photo.Data, &photo.ObjectKey,
			&photo.Width, &photo.Height, &photo.IsPrimary, &photo.Order, &photo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, &photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

// ReplacePhotos deletes every photo of the profile and inserts the given set.
// Callers run it inside a transaction so the gallery is never left half replaced.
func (q *queries) ReplacePhotos(ctx context.Context, profileID string, photos []*models.Photo) error {
	if _, err := q.db.Exec(ctx, `DELETE FROM profile_photos WHERE profile_id = $1`, profileID); err != nil {
		return fmt.Errorf("failed to delete photos: %w", err)
	}

	query := `
		INSERT INTO profile_photos (id, profile_id, data, object_key, width, height, is_primary, display_order, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, $8, $9)
	`
	for _, photo := range photos {
		_, err := q.db.Exec(ctx, query,
			photo.ID, profileID, photo.Data, photo.ObjectKey,
			photo.Width, photo.Height, photo.IsPrimary, photo.Order, photo.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create photo: %w", err)
		}
	}
	return nil
}
