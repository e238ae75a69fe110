package store

import (
	"context"
	"sync"
	"time"

	"github.com/Harsh-Pachouri/Url-Shortener/internal/ratelimit"
)

// sweepInterval is how many recorded hits pass between sweeps of idle clients.
const sweepInterval = 1024

type hitLog struct {
	hits   []time.Time
	window time.Duration
}

// RateLimitMemoryStore keeps a sliding window of hit times per key.
// Keys whose window has emptied are swept periodically so that one-off
// clients do not accumulate.
type RateLimitMemoryStore struct {
	mu      sync.Mutex
	logs    map[string]*hitLog
	records int
	now     func() time.Time
}

// NewRateLimitMemoryStore creates a new in-memory rate limit store.
func NewRateLimitMemoryStore() *RateLimitMemoryStore {
	return &RateLimitMemoryStore{
		logs: make(map[string]*hitLog),
		now:  time.Now,
	}
}

func (s *RateLimitMemoryStore) Record(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	log, ok := s.logs[key]
	if !ok {
		log = &hitLog{}
		s.logs[key] = log
	}

	log.window = window
	log.prune(now)
	log.hits = append(log.hits, now)

	s.records++
	if s.records%sweepInterval == 0 {
		s.sweep(now)
	}

	return int64(len(log.hits)), nil
}

// Keys returns how many keys currently hold hits.
func (s *RateLimitMemoryStore) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.logs)
}

// Sweep drops keys with no hits left inside their window.
func (s *RateLimitMemoryStore) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(s.now())
}

func (s *RateLimitMemoryStore) sweep(now time.Time) {
	for key, log := range s.logs {
		log.prune(now)

		if len(log.hits) == 0 {
			delete(s.logs, key)
		}
	}
}

// prune drops hits at or before now-window. Hits are appended in time order,
// so the survivors are a suffix.
func (l *hitLog) prune(now time.Time) {
	cutoff := now.Add(-l.window)

	i := 0
	for i < len(l.hits) && !l.hits[i].After(cutoff) {
		i++
	}

	if i > 0 {
		l.hits = append(l.hits[:0], l.hits[i:]...)
	}
}

var _ ratelimit.Store = (*RateLimitMemoryStore)(nil)
