package shortener_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
	"github.com/Harsh-Pachouri/Url-Shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeys(t *testing.T, repo shortener.Repository) *shortener.KeyGenerator {
	t.Helper()

	gen, err := shortener.NewNanoidGenerator(shortener.MaxKeyLength)
	require.NoError(t, err)

	return shortener.NewKeyGenerator(repo, gen, 0)
}

func TestTokenStrategy_Shorten(t *testing.T) {
	t.Run("creates a link owned by the caller", func(t *testing.T) {
		repo := store.NewMemoryStore()
		strategy := shortener.NewTokenStrategy(newKeys(t, repo), 0)

		link, err := strategy.Shorten(context.Background(), "alice", "https://example.com/a")

		require.NoError(t, err)
		assert.Regexp(t, keyPattern, string(link.Key))
		assert.Equal(t, "alice", link.Owner)
		assert.Equal(t, "https://example.com/a", link.TargetURL)
		assert.True(t, link.ExpiresAt.IsZero())
		assert.Equal(t, int64(0), link.Hits)

		stored, err := repo.GetByKey(context.Background(), link.Key)
		require.NoError(t, err)
		assert.Equal(t, link.TargetURL, stored.TargetURL)
	})

	t.Run("same url twice yields distinct keys", func(t *testing.T) {
		strategy := shortener.NewTokenStrategy(newKeys(t, store.NewMemoryStore()), 0)

		first, err := strategy.Shorten(context.Background(), "alice", "https://example.com")
		require.NoError(t, err)

		second, err := strategy.Shorten(context.Background(), "alice", "https://example.com")
		require.NoError(t, err)

		assert.NotEqual(t, first.Key, second.Key)
	})

	t.Run("rejects invalid targets", func(t *testing.T) {
		strategy := shortener.NewTokenStrategy(newKeys(t, store.NewMemoryStore()), 0)

		_, err := strategy.Shorten(context.Background(), "alice", "javascript:alert(1)")

		assert.ErrorIs(t, err, shortener.ErrInvalidTarget)
	})

	t.Run("sets expiry when a ttl is configured", func(t *testing.T) {
		strategy := shortener.NewTokenStrategy(newKeys(t, store.NewMemoryStore()), time.Hour)

		link, err := strategy.Shorten(context.Background(), "alice", "https://example.com")

		require.NoError(t, err)
		assert.WithinDuration(t, link.CreatedAt.Add(time.Hour), link.ExpiresAt, time.Second)
		assert.False(t, link.Expired(time.Now()))
		assert.True(t, link.Expired(time.Now().Add(2*time.Hour)))
	})

	t.Run("concurrent requests never share a key", func(t *testing.T) {
		repo := store.NewMemoryStore()
		strategy := shortener.NewTokenStrategy(newKeys(t, repo), 0)

		const n = 100

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			keys = make(map[shortener.Key]struct{}, n)
		)

		for range n {
			wg.Add(1)

			go func() {
				defer wg.Done()

				link, err := strategy.Shorten(context.Background(), "alice", "https://example.com")
				if !assert.NoError(t, err) {
					return
				}

				mu.Lock()
				keys[link.Key] = struct{}{}
				mu.Unlock()
			}()
		}

		wg.Wait()

		assert.Len(t, keys, n)
	})
}

func TestHashStrategy_Shorten(t *testing.T) {
	t.Run("returns the existing link for an equivalent url", func(t *testing.T) {
		repo := store.NewMemoryStore()
		strategy := shortener.NewHashStrategy(repo, newKeys(t, repo), 0)

		first, err := strategy.Shorten(context.Background(), "alice", "https://example.com/path")
		require.NoError(t, err)

		second, err := strategy.Shorten(context.Background(), "alice", "HTTPS://EXAMPLE.COM:443/path/")
		require.NoError(t, err)

		assert.Equal(t, first.Key, second.Key)
	})

	t.Run("keeps owners apart", func(t *testing.T) {
		repo := store.NewMemoryStore()
		strategy := shortener.NewHashStrategy(repo, newKeys(t, repo), 0)

		alice, err := strategy.Shorten(context.Background(), "alice", "https://example.com")
		require.NoError(t, err)

		bob, err := strategy.Shorten(context.Background(), "bob", "https://example.com")
		require.NoError(t, err)

		assert.NotEqual(t, alice.Key, bob.Key)
		assert.Equal(t, "bob", bob.Owner)
	})

	t.Run("replaces an expired link", func(t *testing.T) {
		repo := store.NewMemoryStore()
		normalized, err := shortener.NormalizeURL("https://example.com")
		require.NoError(t, err)

		require.NoError(t, repo.Save(context.Background(), &shortener.Link{
			Key:       "old001",
			TargetURL: "https://example.com",
			Owner:     "alice",
			URLHash:   shortener.HashURL("alice", normalized),
			CreatedAt: time.Now().Add(-2 * time.Hour),
			ExpiresAt: time.Now().Add(-time.Hour),
		}))

		strategy := shortener.NewHashStrategy(repo, newKeys(t, repo), 0)

		link, err := strategy.Shorten(context.Background(), "alice", "https://example.com")

		require.NoError(t, err)
		assert.NotEqual(t, shortener.Key("old001"), link.Key)
	})

	t.Run("surfaces lookup failures", func(t *testing.T) {
		boom := errors.New("boom")
		strategy := shortener.NewHashStrategy(failingRepo{err: boom}, newKeys(t, store.NewMemoryStore()), 0)

		_, err := strategy.Shorten(context.Background(), "alice", "https://example.com")

		assert.ErrorIs(t, err, boom)
	})

	t.Run("rejects invalid targets", func(t *testing.T) {
		repo := store.NewMemoryStore()
		strategy := shortener.NewHashStrategy(repo, newKeys(t, repo), 0)

		_, err := strategy.Shorten(context.Background(), "alice", "not a url")

		assert.ErrorIs(t, err, shortener.ErrInvalidTarget)
	})
}
