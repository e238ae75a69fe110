package store

import (
	"context"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/resilience"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
)

// RetryRepository bounds every call on a link repository with the policy's
// timeout and retries transient failures before reporting resilience.ErrUnavailable.
type RetryRepository struct {
	store  shortener.Repository
	policy resilience.Policy
}

// NewRetryRepository wraps store with policy.
func NewRetryRepository(store shortener.Repository, policy resilience.Policy) *RetryRepository {
	return &RetryRepository{store: store, policy: policy}
}

// Save is retried as a whole. An insert that landed before a timeout shows up
// as ErrKeyExists on the next attempt, which the key generator treats as a
// collision and allocates a different key, so the link is never lost.
func (r *RetryRepository) Save(ctx context.Context, link *shortener.Link) error {
	return r.policy.Do(ctx, func(ctx context.Context) error {
		return r.store.Save(ctx, link)
	})
}

func (r *RetryRepository) GetByKey(ctx context.Context, key shortener.Key) (*shortener.Link, error) {
	var link *shortener.Link

	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		link, err = r.store.GetByKey(ctx, key)

		return err
	})

	return link, err
}

func (r *RetryRepository) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.Link, error) {
	var link *shortener.Link

	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		link, err = r.store.GetByHash(ctx, hash)

		return err
	})

	return link, err
}

// IncrementHits is attempted once with a timeout; a blind retry could count a hit twice.
func (r *RetryRepository) IncrementHits(ctx context.Context, key shortener.Key) error {
	once := r.policy
	once.Attempts = 1

	return once.Do(ctx, func(ctx context.Context) error {
		return r.store.IncrementHits(ctx, key)
	})
}

var _ shortener.Repository = (*RetryRepository)(nil)

// RetryUserRepository applies a resilience policy to a user repository.
type RetryUserRepository struct {
	users  auth.UserRepository
	policy resilience.Policy
}

// NewRetryUserRepository wraps users with policy.
func NewRetryUserRepository(users auth.UserRepository, policy resilience.Policy) *RetryUserRepository {
	return &RetryUserRepository{users: users, policy: policy}
}

// Create is attempted once: a retry after a lost acknowledgement would report
// ErrDuplicateUser for the caller's own registration.
func (r *RetryUserRepository) Create(ctx context.Context, user *auth.User) error {
	once := r.policy
	once.Attempts = 1

	return once.Do(ctx, func(ctx context.Context) error {
		return r.users.Create(ctx, user)
	})
}

func (r *RetryUserRepository) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	var user *auth.User

	err := r.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		user, err = r.users.GetByUsername(ctx, username)

		return err
	})

	return user, err
}

var _ auth.UserRepository = (*RetryUserRepository)(nil)
