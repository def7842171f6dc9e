package feedback

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/geoinsight/vizrec/internal/models"
)

// Store abstracts the query-keyed feedback history so the index never
// touches the backing structure directly. Implementations must be safe for
// concurrent use.
type Store interface {
	Append(key string, entry models.FeedbackEntry)
	Entries(key string) []models.FeedbackEntry
	Keys() []string
}

// LRUStore bounds feedback history by distinct query key, evicting the
// least-recently-touched query wholesale once the cap is reached.
type LRUStore struct {
	mu      sync.Mutex
	entries *lru.Cache[string, []models.FeedbackEntry]
}

// NewLRUStore creates a store capped at maxQueries distinct query keys.
func NewLRUStore(maxQueries int) (*LRUStore, error) {
	if maxQueries <= 0 {
		maxQueries = 1024
	}
	cache, err := lru.New[string, []models.FeedbackEntry](maxQueries)
	if err != nil {
		return nil, err
	}
	return &LRUStore{entries: cache}, nil
}

// Append adds an entry under the key. Entries under a live key are never
// mutated or dropped.
func (s *LRUStore) Append(key string, entry models.FeedbackEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, _ := s.entries.Get(key)
	s.entries.Add(key, append(existing, entry))
}

// Entries returns the feedback recorded under the key.
func (s *LRUStore) Entries(key string) []models.FeedbackEntry {
	entries, _ := s.entries.Get(key)
	return entries
}

// Keys lists the live query keys.
func (s *LRUStore) Keys() []string {
	return s.entries.Keys()
}
