package shortener

import (
	"context"
	"errors"
)

var (
	ErrNotFound          = errors.New("link not found")
	ErrKeyExists         = errors.New("short key already exists")
	ErrKeySpaceExhausted = errors.New("could not allocate a unique short key")
	ErrInvalidTarget     = errors.New("invalid target url")
)

// Repository defines the storage operations for links.
type Repository interface {
	// Save inserts the link only if its key is unused.
	// Returns ErrKeyExists when the key is already taken; existing links are never overwritten.
	Save(ctx context.Context, link *Link) error

	// GetByKey returns ErrNotFound if no link is stored under key.
	GetByKey(ctx context.Context, key Key) (*Link, error)

	// GetByHash returns the most recent link for the hash, or ErrNotFound.
	GetByHash(ctx context.Context, hash URLHash) (*Link, error)

	// IncrementHits atomically adds one to the link's hit counter.
	IncrementHits(ctx context.Context, key Key) error
}
