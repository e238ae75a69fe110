package store

import (
	"context"
	"sync"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
)

// MemoryUserStore is an in-memory implementation of auth.UserRepository.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[string]*auth.User
	nextID int64
}

// NewMemoryUserStore creates a new in-memory user store.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[string]*auth.User),
	}
}

// Create checks and inserts under one lock, so concurrent registrations of the
// same username cannot both succeed.
func (m *MemoryUserStore) Create(_ context.Context, user *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return auth.ErrDuplicateUser
	}

	m.nextID++
	user.ID = m.nextID

	stored := *user
	m.users[user.Username] = &stored

	return nil
}

func (m *MemoryUserStore) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[username]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	found := *user

	return &found, nil
}

var _ auth.UserRepository = (*MemoryUserStore)(nil)
