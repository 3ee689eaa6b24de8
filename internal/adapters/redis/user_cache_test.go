package redis

import (
	"CivicPulse/internal/adapters/memory"
	"CivicPulse/internal/core/domain"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A cache that cannot reach Redis must still answer from the directory.
func TestCachedUserRepository_FallsBackWhenRedisIsDown(t *testing.T) {
	nopLogger := zerolog.Nop()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	store := memory.NewStore(&nopLogger)
	repo := NewCachedUserRepository(store.Users(), client, time.Minute, &nopLogger)
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), Username: "ada", DisplayName: "Ada", Role: domain.RoleStaff}
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	staff, err := repo.ListByRole(ctx, domain.RoleStaff)
	require.NoError(t, err)
	assert.Len(t, staff, 1)
}
