package services

import (
	"errors"
	"fmt"

	"matrimony-backend/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrProfileExists     = errors.New("profile already exists")
	ErrProfileIncomplete = errors.New("profile is incomplete")
	ErrPersistence       = errors.New("persistence failure")
)

// storeErr maps repository errors onto the service taxonomy
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}
