package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateUser      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
)

// User is a registered account. Users are immutable once created.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// UserRepository persists users keyed by their case-sensitive username.
type UserRepository interface {
	// Create stores the user and sets its ID.
	// Returns ErrDuplicateUser if the username exists; the check and insert are atomic.
	Create(ctx context.Context, user *User) error

	// GetByUsername returns ErrUserNotFound if no user has the exact username.
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type userKey struct{}

// ContextWithUser stores the authenticated user in ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey{}).(*User)

	return user, ok && user != nil
}
