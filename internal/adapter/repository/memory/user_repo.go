package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/bazario/listing-service/internal/user/domain"
)

type UserRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.User
	byUsername map[string]string // username -> id
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byUsername[user.Username]; taken {
		return fmt.Errorf("username %q: %w", user.Username, domain.ErrUsernameTaken)
	}
	stored := *user
	r.byID[stored.ID] = &stored
	r.byUsername[stored.Username] = stored.ID
	return nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("username %q: %w", username, domain.ErrUserNotFound)
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, domain.ErrUserNotFound)
	}
	u := *user
	return &u, nil
}

func (r *UserRepository) EmailByID(ctx context.Context, id string) (string, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
