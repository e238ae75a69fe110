package store

import (
	"context"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Hit counts in the cache follow IncrementHits while the entry lives and may
// drift from the store by concurrent increments until the entry expires.
type RedisCacheRepository struct {
	store   shortener.Repository
	client  *redis.Client
	prefix  string
	hashKey string
	ttl     time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:   store,
		client:  client,
		prefix:  "cache:link:",
		hashKey: "cache:link_hashes",
		ttl:     ttl,
	}
}

// Save stores a link in the underlying store and updates the cache.
func (r *RedisCacheRepository) Save(ctx context.Context, link *shortener.Link) error {
	if err := r.store.Save(ctx, link); err != nil {
		return err
	}

	r.cacheLink(ctx, link)

	return nil
}

// GetByKey retrieves a link by its key, checking cache first.
func (r *RedisCacheRepository) GetByKey(ctx context.Context, key shortener.Key) (*shortener.Link, error) {
	if link, err := r.getFromCache(ctx, key); err == nil {
		return link, nil
	}

	link, err := r.store.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// GetByHash retrieves a link by its hash, checking the cached hash index first.
func (r *RedisCacheRepository) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.Link, error) {
	key, err := r.client.HGet(ctx, r.hashKey, string(hash)).Result()
	if err == nil {
		if link, err := r.getFromCache(ctx, shortener.Key(key)); err == nil {
			return link, nil
		}
	}

	link, err := r.store.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// IncrementHits updates the store, then mirrors the increment on a cached entry.
func (r *RedisCacheRepository) IncrementHits(ctx context.Context, key shortener.Key) error {
	if err := r.store.IncrementHits(ctx, key); err != nil {
		return err
	}

	_ = incrementHitsScript.Run(ctx, r.client, []string{r.prefix + string(key)}).Err()

	return nil
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, key shortener.Key) (*shortener.Link, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(key)).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	return parseLink(fields), nil
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortener.Link) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(link.Key)

	pipe.HSet(ctx, key, linkFields(link)...)

	if ttl := r.entryTTL(link); ttl > 0 {
		pipe.PExpire(ctx, key, ttl)
	}

	if link.URLHash != "" {
		pipe.HSet(ctx, r.hashKey, string(link.URLHash), string(link.Key))
	}

	_, _ = pipe.Exec(ctx)
}

// entryTTL never lets a cached entry outlive the link itself.
func (r *RedisCacheRepository) entryTTL(link *shortener.Link) time.Duration {
	ttl := r.ttl

	if !link.ExpiresAt.IsZero() {
		untilExpiry := time.Until(link.ExpiresAt)
		if untilExpiry <= 0 {
			untilExpiry = time.Millisecond
		}

		if ttl <= 0 || untilExpiry < ttl {
			ttl = untilExpiry
		}
	}

	return ttl
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

var _ shortener.Repository = (*RedisCacheRepository)(nil)
