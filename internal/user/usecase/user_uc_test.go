package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario/listing-service/internal/adapter/repository/memory"
	"github.com/bazario/listing-service/internal/platform/logger"
	"github.com/bazario/listing-service/internal/user/domain"
)

const testSecret = "test-secret"

func newUserUC(t *testing.T) *UserUsecase {
	t.Helper()
	return NewUserUsecase(memory.NewUserRepository(), testSecret, logger.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	uc := newUserUC(t)
	ctx := context.Background()

	user, err := uc.Register(ctx, "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "s3cret", user.PasswordHash, "password must be stored hashed")

	token, err := uc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := uc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	uc := newUserUC(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, "bob", "bob@example.com", "pw1")
	require.NoError(t, err)

	_, err = uc.Register(ctx, "bob", "other@example.com", "pw2")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegister_MissingFields(t *testing.T) {
	uc := newUserUC(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, "", "a@example.com", "pw")
	assert.Error(t, err)

	_, err = uc.Register(ctx, "carol", "c@example.com", "")
	assert.Error(t, err)
}

func TestLogin_WrongCredentials(t *testing.T) {
	uc := newUserUC(t)
	ctx := context.Background()

	_, err := uc.Register(ctx, "dave", "dave@example.com", "right")
	require.NoError(t, err)

	_, err = uc.Login(ctx, "dave", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = uc.Login(ctx, "nobody", "right")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerifyToken_Invalid(t *testing.T) {
	uc := newUserUC(t)

	_, err := uc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	// Token signed with a different secret is rejected.
	other := NewUserUsecase(memory.NewUserRepository(), "other-secret", logger.NewNop())
	_, regErr := other.Register(context.Background(), "eve", "eve@example.com", "pw")
	require.NoError(t, regErr)
	token, loginErr := other.Login(context.Background(), "eve", "pw")
	require.NoError(t, loginErr)

	_, err = uc.VerifyToken(token)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestGetProfile(t *testing.T) {
	uc := newUserUC(t)
	ctx := context.Background()

	user, err := uc.Register(ctx, "frank", "frank@example.com", "pw")
	require.NoError(t, err)

	got, err := uc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)

	_, err = uc.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
