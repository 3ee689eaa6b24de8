//go:build integration

package redis

import (
	"CivicPulse/internal/adapters/memory"
	"CivicPulse/internal/core/domain"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestCachedUserRepository_ServesFromRedis(t *testing.T) {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := NewClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	nopLogger := zerolog.Nop()
	store := memory.NewStore(&nopLogger)
	chatID := int64(77)
	user := &domain.User{ID: uuid.New(), Username: "grace", DisplayName: "Grace", Role: domain.RoleAdmin, TelegramChatID: &chatID}
	require.NoError(t, store.Users().Create(ctx, user))

	repo := NewCachedUserRepository(store.Users(), client, time.Minute, &nopLogger)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	n, err := client.Exists(ctx, userByIDPrefix+user.ID.String(), userByNamePrefix+user.Username).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	cached := NewCachedUserRepository(memory.NewStore(&nopLogger).Users(), client, time.Minute, &nopLogger)
	hit, err := cached.GetByUsername(ctx, "grace")
	require.NoError(t, err)
	require.NotNil(t, hit, "served from redis even though the directory is empty")
	assert.Equal(t, user.ID, hit.ID)
	assert.Equal(t, domain.RoleAdmin, hit.Role)
	require.NotNil(t, hit.TelegramChatID)
	assert.Equal(t, chatID, *hit.TelegramChatID)

	ttl, err := client.TTL(ctx, userByIDPrefix+user.ID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
