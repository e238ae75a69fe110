package shortener

import (
	"context"
	"errors"
	"time"
)

// Strategy defines the interface for URL shortening strategies.
type Strategy interface {
	Shorten(ctx context.Context, owner, targetURL string) (*Link, error)
}

// TokenStrategy always allocates a new key for each request.
type TokenStrategy struct {
	keys *KeyGenerator
	ttl  time.Duration
}

// NewTokenStrategy creates a token-based shortening strategy. A zero ttl keeps links forever.
func NewTokenStrategy(keys *KeyGenerator, ttl time.Duration) *TokenStrategy {
	return &TokenStrategy{keys: keys, ttl: ttl}
}

func (s *TokenStrategy) Shorten(ctx context.Context, owner, targetURL string) (*Link, error) {
	if err := ValidateTarget(targetURL); err != nil {
		return nil, err
	}

	link := newLink(owner, targetURL, "", s.ttl)

	if err := s.keys.Allocate(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// HashStrategy returns the owner's existing link when the same normalized URL
// was shortened before, and allocates a new one otherwise.
type HashStrategy struct {
	store Repository
	keys  *KeyGenerator
	ttl   time.Duration
}

// NewHashStrategy creates a hash-based shortening strategy.
func NewHashStrategy(store Repository, keys *KeyGenerator, ttl time.Duration) *HashStrategy {
	return &HashStrategy{store: store, keys: keys, ttl: ttl}
}

func (s *HashStrategy) Shorten(ctx context.Context, owner, targetURL string) (*Link, error) {
	if err := ValidateTarget(targetURL); err != nil {
		return nil, err
	}

	normalizedURL, err := NormalizeURL(targetURL)
	if err != nil {
		return nil, err
	}

	urlHash := HashURL(owner, normalizedURL)

	existing, err := s.store.GetByHash(ctx, urlHash)
	if err == nil && !existing.Expired(time.Now()) {
		return existing, nil
	}

	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	link := newLink(owner, targetURL, urlHash, s.ttl)

	if err = s.keys.Allocate(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

func newLink(owner, targetURL string, urlHash URLHash, ttl time.Duration) *Link {
	now := time.Now().UTC()

	link := &Link{
		TargetURL: targetURL,
		Owner:     owner,
		URLHash:   urlHash,
		CreatedAt: now,
	}

	if ttl > 0 {
		link.ExpiresAt = now.Add(ttl)
	}

	return link
}
