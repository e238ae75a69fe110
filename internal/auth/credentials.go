package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest password bcrypt can hash.
const MaxPasswordBytes = 72

// Credentials registers users and verifies their passwords.
type Credentials struct {
	users     UserRepository
	cost      int
	dummyHash []byte
}

// NewCredentials creates a credential store hashing with the given bcrypt cost.
// A zero cost means bcrypt.DefaultCost.
func NewCredentials(users UserRepository, cost int) (*Credentials, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	// Compared against when the username is unknown, so that path costs the
	// same as a wrong password.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("unknown-user-placeholder"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare placeholder hash: %w", err)
	}

	return &Credentials{
		users:     users,
		cost:      cost,
		dummyHash: dummyHash,
	}, nil
}

// Register hashes the password and creates the user.
func (c *Credentials) Register(ctx context.Context, username, password string) (*User, error) {
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err = c.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Verify reports whether password belongs to username. Unknown users yield
// false with a nil error; only store failures are returned as errors.
func (c *Credentials) Verify(ctx context.Context, username, password string) (bool, error) {
	user, err := c.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(c.dummyHash, []byte(password))

			return false, nil
		}

		return false, err
	}

	return bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) == nil, nil
}
