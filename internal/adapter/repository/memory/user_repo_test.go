package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario/listing-service/internal/user/domain"
)

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := &domain.User{
		ID:           "user-1",
		Username:     "testuser",
		Email:        "test@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, u))

	byName, err := repo.FindByUsername(ctx, "testuser")
	require.NoError(t, err)
	assert.Equal(t, "user-1", byName.ID)

	byID, err := repo.FindByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "testuser", byID.Username)

	email, err := repo.EmailByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", email)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "u1", Username: "taken"}))
	err := repo.Create(ctx, &domain.User{ID: "u2", Username: "taken"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestUserRepository_Missing(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	_, err := repo.FindByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = repo.FindByID(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
