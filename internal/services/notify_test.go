package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrimony-backend/internal/models"
)

type fakePusher struct {
	tokens []string
	sent   []PushNotification
	err    error
}

func (p *fakePusher) Push(_ context.Context, deviceToken string, n PushNotification) error {
	if p.err != nil {
		return p.err
	}
	p.tokens = append(p.tokens, deviceToken)
	p.sent = append(p.sent, n)
	return nil
}

// connect registers a live connection for userID on hub and returns the client end
func connect(t *testing.T, hub *WSHub, userID string) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(userID, conn)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("connection was not registered")
	}
	return client
}

func withPushToken(store *memStore, userID, token string) {
	store.users[userID] = &models.User{ID: userID, UID: "uid-" + userID, PushToken: &token}
}

func TestNotify_WebSocketWhenOnline(t *testing.T) {
	hub := NewWSHub()
	defer hub.Close()
	store := newMemStore()
	withPushToken(store, owner, "device")
	push := &fakePusher{}
	n := NewNotificationService(hub, push, store)

	client := connect(t, hub, owner)
	require.True(t, hub.IsOnline(owner))

	n.Notify(context.Background(), owner, WSMessage{Type: MessageProfileUpdated, Data: map[string]interface{}{"section": "family"}},
		&PushNotification{Title: "ignored"})

	var got WSMessage
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, client.ReadJSON(&got))
	assert.Equal(t, MessageProfileUpdated, got.Type)
	assert.NotZero(t, got.Timestamp)
	assert.Equal(t, map[string]interface{}{"section": "family"}, got.Data)
	assert.Empty(t, push.sent)
}

func TestNotify_PushWhenOffline(t *testing.T) {
	store := newMemStore()
	withPushToken(store, owner, "device")
	push := &fakePusher{}
	n := NewNotificationService(NewWSHub(), push, store)

	n.Notify(context.Background(), owner, WSMessage{Type: MessageFieldModerated}, &PushNotification{Title: "Profile update approved"})

	require.Len(t, push.sent, 1)
	assert.Equal(t, []string{"device"}, push.tokens)
	assert.Equal(t, "Profile update approved", push.sent[0].Title)
}

func TestNotify_SkipsPushWithoutAlertOrToken(t *testing.T) {
	store := newMemStore()
	store.users[owner] = &models.User{ID: owner}
	push := &fakePusher{}
	n := NewNotificationService(NewWSHub(), push, store)

	n.Notify(context.Background(), owner, WSMessage{Type: MessageProfileUpdated}, nil)
	n.Notify(context.Background(), owner, WSMessage{Type: MessageFieldModerated}, &PushNotification{Title: "t"})
	n.Notify(context.Background(), "unknown", WSMessage{Type: MessageFieldModerated}, &PushNotification{Title: "t"})
	assert.Empty(t, push.sent)

	push.err = errors.New("apns down")
	withPushToken(store, owner, "device")
	n.Notify(context.Background(), owner, WSMessage{Type: MessageFieldModerated}, &PushNotification{Title: "t"})
	assert.Empty(t, push.sent)
}

func TestWSHub_Unregister(t *testing.T) {
	hub := NewWSHub()
	defer hub.Close()

	connect(t, hub, owner)
	hub.Unregister(owner, nil)
	assert.False(t, hub.IsOnline(owner))
	assert.Error(t, hub.SendToUser(owner, WSMessage{Type: MessagePong}))
}
