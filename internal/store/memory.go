package store

import (
	"context"
	"sync"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[shortener.Key]*shortener.Link
	hashes map[shortener.URLHash]shortener.Key
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:  make(map[shortener.Key]*shortener.Link),
		hashes: make(map[shortener.URLHash]shortener.Key),
	}
}

func (m *MemoryStore) Save(_ context.Context, link *shortener.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.Key]; ok {
		return shortener.ErrKeyExists
	}

	stored := *link
	m.links[link.Key] = &stored

	if link.URLHash != "" {
		m.hashes[link.URLHash] = link.Key
	}

	return nil
}

func (m *MemoryStore) GetByKey(_ context.Context, key shortener.Key) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[key]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *link

	return &found, nil
}

func (m *MemoryStore) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.Link, error) {
	m.mu.RLock()
	key, ok := m.hashes[hash]
	m.mu.RUnlock()

	if !ok {
		return nil, shortener.ErrNotFound
	}

	return m.GetByKey(ctx, key)
}

func (m *MemoryStore) IncrementHits(_ context.Context, key shortener.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[key]
	if !ok {
		return shortener.ErrNotFound
	}

	link.Hits++

	return nil
}

var _ shortener.Repository = (*MemoryStore)(nil)
