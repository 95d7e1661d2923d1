package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile/profiletest"
)

func moderatedFixture(t *testing.T) (*fixture, *ModerationService) {
	t.Helper()
	f := newFixture(t, ProfileOptions{ModerationEnabled: true}, false)
	_, err := f.svc.GetOrCreate(context.Background(), owner)
	require.NoError(t, err)
	f.apply(t, profiletest.Personal())
	return f, NewModerationService(f.store, f.svc, f.notifier)
}

func pendingByField(t *testing.T, m *ModerationService, field string) *models.PendingFieldUpdate {
	t.Helper()
	updates, err := m.ListPending(context.Background(), 0, 0)
	require.NoError(t, err)
	for _, u := range updates {
		if u.Field == field {
			return u
		}
	}
	t.Fatalf("no pending update for %s", field)
	return nil
}

func TestModeration_ListPending(t *testing.T) {
	_, m := moderatedFixture(t)
	ctx := context.Background()

	all, err := m.ListPending(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := m.ListPending(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	none, err := m.ListPending(ctx, 500, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestModeration_Approve(t *testing.T) {
	f, m := moderatedFixture(t)
	ctx := context.Background()
	_, err := f.svc.Status(ctx, owner)
	require.NoError(t, err)

	u := pendingByField(t, m, "name")
	approved, err := m.Approve(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, approved.Approved)
	assert.Equal(t, "John Samuel", approved.Value)

	stored, err := f.store.GetProfileByUserID(ctx, owner)
	require.NoError(t, err)
	require.NotNil(t, stored.Name)
	assert.Equal(t, "John Samuel", *stored.Name)
	assert.Equal(t, 0, f.store.pendingCount(owner, "name"))
	assert.Equal(t, 1, f.store.pendingCount(owner, "about"))

	_, err = f.cache.Get(ctx, owner)
	assert.Error(t, err, "status is invalidated")

	msgs := f.notifier.ofType(MessageFieldModerated)
	require.Len(t, msgs, 1)
	assert.Equal(t, owner, msgs[0].userID)
	assert.Equal(t, map[string]interface{}{"field": "name", "approved": true}, msgs[0].msg.Data)
	require.NotNil(t, msgs[0].alert)

	_, err = m.Approve(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestModeration_Reject(t *testing.T) {
	f, m := moderatedFixture(t)
	ctx := context.Background()

	u := pendingByField(t, m, "about")
	require.NoError(t, m.Reject(ctx, u.ID))

	stored, err := f.store.GetProfileByUserID(ctx, owner)
	require.NoError(t, err)
	assert.Nil(t, stored.About)
	assert.Equal(t, 0, f.store.pendingCount(owner, "about"))

	msgs := f.notifier.ofType(MessageFieldModerated)
	require.Len(t, msgs, 1)
	assert.Equal(t, false, msgs[0].msg.Data.(map[string]interface{})["approved"])

	assert.ErrorIs(t, m.Reject(ctx, "missing"), ErrNotFound)
}

func TestModeration_ApprovedValueKeepsOwnerCompletion(t *testing.T) {
	f, m := moderatedFixture(t)
	ctx := context.Background()

	before, err := f.svc.GetOrCreate(ctx, owner)
	require.NoError(t, err)

	for _, field := range []string{"name", "about", "jobTitle"} {
		_, err := m.Approve(ctx, pendingByField(t, m, field).ID)
		require.NoError(t, err)
	}

	after, err := f.svc.GetOrCreate(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, before.CompletionPercentage, after.CompletionPercentage)

	public, err := f.svc.PublicView(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, after.CompletionPercentage, public.CompletionPercentage)
}
