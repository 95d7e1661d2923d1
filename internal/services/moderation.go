package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile"
	"matrimony-backend/internal/repository"
)

// ModerationStore is the persistence used by ModerationService
type ModerationStore interface {
	ListUnapproved(ctx context.Context, limit, offset int) ([]*models.PendingFieldUpdate, error)
	InTx(ctx context.Context, fn func(tx repository.Tx) error) error
}

// StatusInvalidator drops a user's cached profile status
type StatusInvalidator interface {
	InvalidateStatus(ctx context.Context, userID string)
}

// ModerationService approves or rejects pending field updates
type ModerationService struct {
	store    ModerationStore
	status   StatusInvalidator
	notifier Notifier
}

// NewModerationService creates a new moderation service
func NewModerationService(store ModerationStore, status StatusInvalidator, notifier Notifier) *ModerationService {
	return &ModerationService{store: store, status: status, notifier: notifier}
}

// ListPending lists unapproved updates, oldest first
func (s *ModerationService) ListPending(ctx context.Context, limit, offset int) ([]*models.PendingFieldUpdate, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	updates, err := s.store.ListUnapproved(ctx, limit, offset)
	if err != nil {
		return nil, storeErr(err)
	}
	return updates, nil
}

// Approve copies the pending value into the profile and consumes the update
func (s *ModerationService) Approve(ctx context.Context, id string) (*models.PendingFieldUpdate, error) {
	var update *models.PendingFieldUpdate
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		u, err := tx.LockPending(ctx, id)
		if err != nil {
			return err
		}
		p, err := tx.LockProfileByUserID(ctx, u.UserID)
		if err != nil {
			return err
		}
		if err := profile.SetText(p, u.Field, u.Value); err != nil {
			return fmt.Errorf("pending update %s: %w", id, err)
		}
		p.UpdatedAt = time.Now()
		if err := tx.UpdateProfile(ctx, p); err != nil {
			return err
		}
		if err := tx.DeletePending(ctx, u.ID); err != nil {
			return err
		}
		u.Approved = true
		update = u
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.decided(ctx, update, true)
	return update, nil
}

// Reject discards the pending update
func (s *ModerationService) Reject(ctx context.Context, id string) error {
	var update *models.PendingFieldUpdate
	err := s.store.InTx(ctx, func(tx repository.Tx) error {
		u, err := tx.LockPending(ctx, id)
		if err != nil {
			return err
		}
		update = u
		return tx.DeletePending(ctx, u.ID)
	})
	if err != nil {
		return storeErr(err)
	}

	s.decided(ctx, update, false)
	return nil
}

func (s *ModerationService) decided(ctx context.Context, u *models.PendingFieldUpdate, approved bool) {
	decision := "rejected"
	if approved {
		decision = "approved"
	}
	moderationDecisions.WithLabelValues(decision, u.Field).Inc()

	log.Info().
		Str("user_id", u.UserID).
		Str("field", u.Field).
		Str("decision", decision).
		Msg("Pending update moderated")

	if s.status != nil {
		s.status.InvalidateStatus(ctx, u.UserID)
	}
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, u.UserID, WSMessage{
		Type: MessageFieldModerated,
		Data: map[string]interface{}{
			"field":    u.Field,
			"approved": approved,
		},
	}, &PushNotification{
		Title: "Profile update " + decision,
		Body:  fmt.Sprintf("Your change to %s was %s.", u.Field, decision),
		Data:  map[string]interface{}{"field": u.Field, "approved": approved},
	})
}
