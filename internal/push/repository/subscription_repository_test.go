package repository

import (
	"context"
	"testing"

	"taskflow-backend/internal/push/domain"
	"taskflow-backend/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) SubscriptionRepository {
	return NewSubscriptionRepository(database.NewTestConnection(t, &domain.PushSubscription{}))
}

func sub(userID, endpoint string) *domain.PushSubscription {
	return &domain.PushSubscription{UserID: userID, Endpoint: endpoint, P256dh: "p256", Auth: "auth"}
}

func TestCreate_DeduplicatesByEndpoint(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, sub("alice", "https://push.example/a"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, sub("bob", "https://push.example/a"))
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.FindByEndpoint(ctx, "https://push.example/a")
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.UserID, "owner must not change")

	bobs, err := repo.FindByUserID(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bobs)
}

func TestFindByUserID(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, ep := range []string{"https://push.example/1", "https://push.example/2"} {
		_, err := repo.Create(ctx, sub("alice", ep))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, sub("bob", "https://push.example/3"))
	require.NoError(t, err)

	subs, err := repo.FindByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
	assert.Equal(t, "p256", subs[0].P256dh)
}

func TestDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	s := sub("alice", "https://push.example/gone")
	_, err := repo.Create(ctx, s)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, s.ID))
	require.NoError(t, repo.Delete(ctx, s.ID), "deleting twice is harmless")

	_, err = repo.FindByEndpoint(ctx, s.Endpoint)
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
}

func TestDeleteByEndpoint_IsOwnerScoped(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, sub("alice", "https://push.example/a"))
	require.NoError(t, err)

	err = repo.DeleteByEndpoint(ctx, "bob", "https://push.example/a")
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)

	require.NoError(t, repo.DeleteByEndpoint(ctx, "alice", "https://push.example/a"))
	subs, err := repo.FindByUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, subs)
}
