// Package memory implements the account user store in process memory.
package memory

import (
	"context"
	"sync"

	"filmdex/account/internal/repository"
	"filmdex/account/pkg/model"
)

// UserRepository is an in-memory user store.
type UserRepository struct {
	mu   sync.RWMutex
	data map[string]*model.User
}

// NewUserRepository creates an empty in-memory user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{data: map[string]*model.User{}}
}

// Create inserts a new user, rejecting duplicate emails.
func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.data {
		if u.Email == user.Email {
			return repository.ErrAlreadyExists
		}
	}
	c := *user
	m.data[user.ID] = &c
	return nil
}

// GetByEmail retrieves a user by email.
func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.data {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Get retrieves a user by id.
func (m *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.data[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *u
	return &c, nil
}
