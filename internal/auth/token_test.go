package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestNewTokenService(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := auth.NewTokenService(nil, time.Hour)

		assert.Error(t, err)
	})

	t.Run("rejects negative ttl", func(t *testing.T) {
		_, err := auth.NewTokenService(testSecret, -time.Second)

		assert.Error(t, err)
	})
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	t.Run("round trips the subject", func(t *testing.T) {
		tokens, err := auth.NewTokenService(testSecret, time.Hour)
		require.NoError(t, err)

		token, expiresAt, err := tokens.Issue("alice")
		require.NoError(t, err)

		subject, err := tokens.Validate(token)

		require.NoError(t, err)
		assert.Equal(t, "alice", subject)
		assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)
	})

	t.Run("expires after ttl", func(t *testing.T) {
		clock := &fakeClock{now: time.Now()}
		tokens, err := auth.NewTokenService(testSecret, time.Hour, auth.WithClock(clock.Now))
		require.NoError(t, err)

		token, _, err := tokens.Issue("alice")
		require.NoError(t, err)

		clock.now = clock.now.Add(59 * time.Minute)
		_, err = tokens.Validate(token)
		require.NoError(t, err)

		clock.now = clock.now.Add(2 * time.Minute)
		_, err = tokens.Validate(token)

		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("rejects a token signed with another secret", func(t *testing.T) {
		issuer, err := auth.NewTokenService([]byte("other-secret"), time.Hour)
		require.NoError(t, err)

		validator, err := auth.NewTokenService(testSecret, time.Hour)
		require.NoError(t, err)

		token, _, err := issuer.Issue("alice")
		require.NoError(t, err)

		_, err = validator.Validate(token)

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		tokens, err := auth.NewTokenService(testSecret, time.Hour)
		require.NoError(t, err)

		for _, token := range []string{"", "not-a-token", "a.b.c"} {
			_, err = tokens.Validate(token)

			assert.ErrorIs(t, err, auth.ErrInvalidToken, token)
		}
	})

	t.Run("rejects the none algorithm", func(t *testing.T) {
		tokens, err := auth.NewTokenService(testSecret, time.Hour)
		require.NoError(t, err)

		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "alice",
			Issuer:    "url-shortener",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tokens.Validate(unsigned)

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("rejects a token from another issuer", func(t *testing.T) {
		issuer, err := auth.NewTokenService(testSecret, time.Hour, auth.WithIssuer("someone-else"))
		require.NoError(t, err)

		validator, err := auth.NewTokenService(testSecret, time.Hour)
		require.NoError(t, err)

		token, _, err := issuer.Issue("alice")
		require.NoError(t, err)

		_, err = validator.Validate(token)

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestAuthenticator_Authenticate(t *testing.T) {
	users := store.NewMemoryUserStore()
	creds := newCredentials(t, users)
	_, err := creds.Register(context.Background(), "alice", "pw123")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	authenticator := auth.NewAuthenticator(tokens, users)

	t.Run("returns the token's user", func(t *testing.T) {
		token, _, err := tokens.Issue("alice")
		require.NoError(t, err)

		user, err := authenticator.Authenticate(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("rejects tokens for users that do not exist", func(t *testing.T) {
		token, _, err := tokens.Issue("ghost")
		require.NoError(t, err)

		user, err := authenticator.Authenticate(context.Background(), token)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("passes through expiry", func(t *testing.T) {
		clock := &fakeClock{now: time.Now().Add(-48 * time.Hour)}
		old, err := auth.NewTokenService(testSecret, time.Hour, auth.WithClock(clock.Now))
		require.NoError(t, err)

		token, _, err := old.Issue("alice")
		require.NoError(t, err)

		_, err = authenticator.Authenticate(context.Background(), token)

		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})
}

func TestUserContext(t *testing.T) {
	t.Run("round trips the user", func(t *testing.T) {
		user := &auth.User{ID: 1, Username: "alice"}
		ctx := auth.ContextWithUser(context.Background(), user)

		got, ok := auth.UserFromContext(ctx)

		assert.True(t, ok)
		assert.Equal(t, user, got)
	})

	t.Run("reports absence", func(t *testing.T) {
		_, ok := auth.UserFromContext(context.Background())

		assert.False(t, ok)
	})
}
