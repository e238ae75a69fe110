package auth

import (
	"context"
	"errors"
	"fmt"
)

// Authenticator resolves bearer tokens to existing users.
type Authenticator struct {
	tokens *TokenService
	users  UserRepository
}

// NewAuthenticator creates an authenticator.
func NewAuthenticator(tokens *TokenService, users UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate validates token and loads its subject. A well-signed token whose
// subject no longer exists is rejected with ErrInvalidToken.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*User, error) {
	username, err := a.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, fmt.Errorf("%w: unknown subject", ErrInvalidToken)
		}

		return nil, err
	}

	return user, nil
}
