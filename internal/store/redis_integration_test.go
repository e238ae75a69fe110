//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/auth"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}

	return "localhost:6379"
}

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: getRedisAddr()})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	return client
}

func TestRedisStoreIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	s := store.NewRedisStore(client)

	t.Run("save and get link", func(t *testing.T) {
		link := &shortener.Link{
			Key:       "rdtest01",
			TargetURL: "https://example.com",
			Owner:     "alice",
			URLHash:   "rdhash01",
			CreatedAt: time.Now().UTC(),
		}
		defer client.Del(ctx, "link:rdtest01")
		defer client.HDel(ctx, "link_hashes", "rdhash01")

		require.NoError(t, s.Save(ctx, link))

		got, err := s.GetByKey(ctx, link.Key)
		require.NoError(t, err)
		assert.Equal(t, link.TargetURL, got.TargetURL)
		assert.Equal(t, link.Owner, got.Owner)

		byHash, err := s.GetByHash(ctx, link.URLHash)
		require.NoError(t, err)
		assert.Equal(t, link.Key, byHash.Key)
	})

	t.Run("existing key is never overwritten", func(t *testing.T) {
		defer client.Del(ctx, "link:rdconf01")

		require.NoError(t, s.Save(ctx, &shortener.Link{Key: "rdconf01", TargetURL: "https://old.com", Owner: "alice", CreatedAt: time.Now()}))

		err := s.Save(ctx, &shortener.Link{Key: "rdconf01", TargetURL: "https://new.com", Owner: "bob", CreatedAt: time.Now()})
		assert.ErrorIs(t, err, shortener.ErrKeyExists)

		got, _ := s.GetByKey(ctx, "rdconf01")
		assert.Equal(t, "https://old.com", got.TargetURL)
	})

	t.Run("expiring links carry a redis ttl", func(t *testing.T) {
		defer client.Del(ctx, "link:rdttl001")

		require.NoError(t, s.Save(ctx, &shortener.Link{
			Key:       "rdttl001",
			TargetURL: "https://example.com",
			Owner:     "alice",
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}))

		ttl, err := client.PTTL(ctx, "link:rdttl001").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 59*time.Minute)
	})

	t.Run("increments hits", func(t *testing.T) {
		defer client.Del(ctx, "link:rdhits01")

		require.NoError(t, s.Save(ctx, &shortener.Link{Key: "rdhits01", TargetURL: "https://example.com", Owner: "alice", CreatedAt: time.Now()}))
		require.NoError(t, s.IncrementHits(ctx, "rdhits01"))
		require.NoError(t, s.IncrementHits(ctx, "rdhits01"))

		got, err := s.GetByKey(ctx, "rdhits01")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Hits)

		assert.ErrorIs(t, s.IncrementHits(ctx, "rdnone01"), shortener.ErrNotFound)
	})

	t.Run("get non-existent returns ErrNotFound", func(t *testing.T) {
		_, err := s.GetByKey(ctx, "rdnone01")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}

func TestRedisCacheRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	backing := store.NewMemoryStore()
	cache := store.NewRedisCacheRepository(backing, client, time.Minute)

	link := &shortener.Link{Key: "rdcach01", TargetURL: "https://example.com", Owner: "alice", CreatedAt: time.Now()}
	defer client.Del(ctx, "cache:link:rdcach01")

	require.NoError(t, cache.Save(ctx, link))

	got, err := cache.GetByKey(ctx, link.Key)
	require.NoError(t, err)
	assert.Equal(t, link.TargetURL, got.TargetURL)

	require.NoError(t, cache.IncrementHits(ctx, link.Key))

	cached, err := cache.GetByKey(ctx, link.Key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cached.Hits)

	stored, err := backing.GetByKey(ctx, link.Key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Hits)
}

func TestRedisUserStoreIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	s := store.NewRedisUserStore(client)

	username := "rd-user-" + time.Now().Format("150405.000000")
	defer client.Del(ctx, "user:"+username)

	require.NoError(t, s.Create(ctx, &auth.User{Username: username, PasswordHash: []byte("hash"), CreatedAt: time.Now()}))

	err := s.Create(ctx, &auth.User{Username: username, PasswordHash: []byte("other"), CreatedAt: time.Now()})
	assert.ErrorIs(t, err, auth.ErrDuplicateUser)

	got, err := s.GetByUsername(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), got.PasswordHash)
}

func TestRateLimitRedisStoreIntegration(t *testing.T) {
	ctx := context.Background()
	client := newRedisClient(t)
	s := store.NewRateLimitRedisStore(client)

	key := "it-" + time.Now().Format("150405.000000")
	defer client.Del(ctx, "ratelimit:"+key)

	for i := int64(1); i <= 3; i++ {
		count, err := s.Record(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
	}
}
