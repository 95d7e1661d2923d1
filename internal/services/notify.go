package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"

	"matrimony-backend/internal/models"
)

// PushNotification is an alert shown on the owner's device
type PushNotification struct {
	Title string
	Body  string
	Data  map[string]interface{}
}

// Pusher delivers a push notification to one device
type Pusher interface {
	Push(ctx context.Context, deviceToken string, n PushNotification) error
}

// Notifier tells a profile owner about changes made on their behalf
type Notifier interface {
	Notify(ctx context.Context, userID string, msg WSMessage, alert *PushNotification)
}

// UserLookup resolves a user record
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// NotificationService sends over the live WebSocket when the user is connected
// and falls back to a push notification otherwise.
type NotificationService struct {
	hub   *WSHub
	push  Pusher
	users UserLookup
}

// NewNotificationService creates a notifier; push may be nil
func NewNotificationService(hub *WSHub, push Pusher, users UserLookup) *NotificationService {
	return &NotificationService{hub: hub, push: push, users: users}
}

// Notify delivers msg to the user. Failures are logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, userID string, msg WSMessage, alert *PushNotification) {
	if s.hub != nil && s.hub.IsOnline(userID) {
		err := s.hub.SendToUser(userID, msg)
		if err == nil {
			notificationsSent.WithLabelValues("websocket", "sent").Inc()
			return
		}
		notificationsSent.WithLabelValues("websocket", "failed").Inc()
		log.Warn().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to send WebSocket message")
	}

	if alert == nil || s.push == nil || s.users == nil {
		return
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for push")
		return
	}
	if user.PushToken == nil || *user.PushToken == "" {
		return
	}

	if err := s.push.Push(ctx, *user.PushToken, *alert); err != nil {
		notificationsSent.WithLabelValues("apns", "failed").Inc()
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send push notification")
		return
	}
	notificationsSent.WithLabelValues("apns", "sent").Inc()
}

// APNsPusher sends push notifications through Apple Push Notification service
type APNsPusher struct {
	client *apns2.Client
	topic  string
}

// NewAPNsPusher creates a token-authenticated APNs client from a .p8 key file
func NewAPNsPusher(keyPath, keyID, teamID, topic string, production bool) (*APNsPusher, error) {
	authKey, err := token.AuthKeyFromFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNsPusher{client: client, topic: topic}, nil
}

// Push sends one alert
func (p *APNsPusher) Push(ctx context.Context, deviceToken string, n PushNotification) error {
	pl := payload.NewPayload().AlertTitle(n.Title).AlertBody(n.Body).Sound("default")
	for k, v := range n.Data {
		pl.Custom(k, v)
	}

	res, err := p.client.PushWithContext(ctx, &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       p.topic,
		Payload:     pl,
	})
	if err != nil {
		return fmt.Errorf("failed to push notification: %w", err)
	}
	if !res.Sent() {
		return fmt.Errorf("notification rejected: %d %s", res.StatusCode, res.Reason)
	}
	return nil
}
