package fingerprint

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ymansouri/claimsort/internal/model"
)

// MemoryStore keeps fingerprints in memory with a TTL. Used on its own
// in tests and as the fast layer of LayeredStore.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a memory store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(ttl, 10*time.Minute),
	}
}

// Lookup returns the prior entry for the hash.
func (s *MemoryStore) Lookup(hash string) (Entry, bool, error) {
	if val, found := s.cache.Get(hash); found {
		return val.(Entry), true, nil
	}
	return Entry{}, false, nil
}

// Register upserts the decision for the hash.
func (s *MemoryStore) Register(hash string, decision model.Decision, score int) error {
	s.cache.Set(hash, Entry{
		Timestamp: time.Now().UTC(),
		Decision:  decision,
		Score:     score,
	}, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) set(hash string, entry Entry) {
	s.cache.Set(hash, entry, gocache.DefaultExpiration)
}
