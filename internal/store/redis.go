package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// saveLinkScript inserts the link hash only when the key is unused, and indexes
// its URL hash in the same round trip.
// KEYS: link key, hash index. ARGV: expire-at ms (0 = never), url hash, short key, field/value pairs.
var saveLinkScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV, 4))
if tonumber(ARGV[1]) > 0 then
  redis.call("PEXPIREAT", KEYS[1], ARGV[1])
end
if ARGV[2] ~= "" then
  redis.call("HSET", KEYS[2], ARGV[2], ARGV[3])
end
return 1
`)

// incrementHitsScript increments only existing links so a stray redirect never
// creates a partial hash.
var incrementHitsScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return redis.call("HINCRBY", KEYS[1], "hits", 1)
`)

// RedisStore is a Redis implementation of shortener.Repository.
type RedisStore struct {
	client  *redis.Client
	prefix  string // "link:" for key -> link (hash per link)
	hashKey string // "link_hashes" for urlHash -> key
}

// NewRedisStore creates a new Redis-backed link store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  "link:",
		hashKey: "link_hashes",
	}
}

func (r *RedisStore) Save(ctx context.Context, link *shortener.Link) error {
	var expireAt int64
	if !link.ExpiresAt.IsZero() {
		expireAt = link.ExpiresAt.UnixMilli()
	}

	args := append([]any{expireAt, string(link.URLHash), string(link.Key)}, linkFields(link)...)

	created, err := saveLinkScript.Run(ctx, r.client, []string{r.prefix + string(link.Key), r.hashKey}, args...).Int()
	if err != nil {
		return err
	}

	if created == 0 {
		return shortener.ErrKeyExists
	}

	return nil
}

func (r *RedisStore) GetByKey(ctx context.Context, key shortener.Key) (*shortener.Link, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+string(key)).Result()
	if err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, shortener.ErrNotFound
	}

	return parseLink(fields), nil
}

func (r *RedisStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.Link, error) {
	key, err := r.client.HGet(ctx, r.hashKey, string(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return r.GetByKey(ctx, shortener.Key(key))
}

func (r *RedisStore) IncrementHits(ctx context.Context, key shortener.Key) error {
	hits, err := incrementHitsScript.Run(ctx, r.client, []string{r.prefix + string(key)}).Int64()
	if err != nil {
		return err
	}

	if hits < 0 {
		return shortener.ErrNotFound
	}

	return nil
}

func linkFields(link *shortener.Link) []any {
	fields := []any{
		"key", string(link.Key),
		"target_url", link.TargetURL,
		"owner", link.Owner,
		"url_hash", string(link.URLHash),
		"created_at", link.CreatedAt.UnixNano(),
		"hits", link.Hits,
	}

	if !link.ExpiresAt.IsZero() {
		fields = append(fields, "expires_at", link.ExpiresAt.UnixNano())
	}

	return fields
}

func parseLink(fields map[string]string) *shortener.Link {
	link := &shortener.Link{
		Key:       shortener.Key(fields["key"]),
		TargetURL: fields["target_url"],
		Owner:     fields["owner"],
		URLHash:   shortener.URLHash(fields["url_hash"]),
		CreatedAt: parseUnixNano(fields["created_at"]),
		ExpiresAt: parseUnixNano(fields["expires_at"]),
	}

	if hits, err := strconv.ParseInt(fields["hits"], 10, 64); err == nil {
		link.Hits = hits
	}

	return link
}

func parseUnixNano(s string) time.Time {
	nanos, err := strconv.ParseInt(s, 10, 64)
	if err != nil || nanos == 0 {
		return time.Time{}
	}

	return time.Unix(0, nanos).UTC()
}

var _ shortener.Repository = (*RedisStore)(nil)
