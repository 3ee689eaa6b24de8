//go:build integration

package postgres

import (
	"CivicPulse/internal/core/domain"
	"CivicPulse/internal/shared/sentinel"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Roundtrip(t *testing.T) {
	nopLogger := zerolog.Nop()
	repo := NewUserRepository(testDB, &nopLogger)
	ctx := t.Context()

	chatID := int64(424242)
	user := &domain.User{
		ID:             uuid.New(),
		Username:       "roundtrip-" + uuid.NewString()[:8],
		DisplayName:    "Roundtrip",
		Role:           domain.RoleStaff,
		TelegramChatID: &chatID,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	byName, err := repo.GetByUsername(ctx, user.Username)
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)
	assert.Equal(t, domain.RoleStaff, byName.Role)
	require.NotNil(t, byName.TelegramChatID)
	assert.Equal(t, chatID, *byName.TelegramChatID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, user.Username, byID.Username)

	missing, err := repo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := *user
	dup.ID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, &dup), sentinel.ErrConflict)
}

func TestUserRepository_ListByRole(t *testing.T) {
	nopLogger := zerolog.Nop()
	repo := NewUserRepository(testDB, &nopLogger)

	a := createTestUser(t, domain.RoleAdmin)
	staff, err := repo.ListByRole(t.Context(), domain.RoleAdmin)
	require.NoError(t, err)

	found := false
	for _, u := range staff {
		assert.Equal(t, domain.RoleAdmin, u.Role)
		if u.ID == a.ID {
			found = true
		}
	}
	assert.True(t, found)
}
