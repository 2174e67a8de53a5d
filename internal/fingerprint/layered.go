package fingerprint

import (
	"time"

	"github.com/ymansouri/claimsort/internal/model"
)

// LayeredStore fronts a DiskStore with a MemoryStore. Disk hits are
// promoted to memory so a batch re-processing the same dossier only
// pays the file read once.
type LayeredStore struct {
	memory *MemoryStore
	disk   *DiskStore
}

// NewLayeredStore creates a layered store over the given JSON file.
func NewLayeredStore(path string, memoryTTL time.Duration) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(memoryTTL),
		disk:   NewDiskStore(path),
	}
}

// Lookup checks memory first, then disk.
func (s *LayeredStore) Lookup(hash string) (Entry, bool, error) {
	if entry, found, _ := s.memory.Lookup(hash); found {
		return entry, true, nil
	}

	entry, found, err := s.disk.Lookup(hash)
	if err != nil {
		return Entry{}, false, err
	}
	if found {
		s.memory.set(hash, entry)
	}
	return entry, found, err
}

// Register records the decision in both layers.
func (s *LayeredStore) Register(hash string, decision model.Decision, score int) error {
	if err := s.disk.Register(hash, decision, score); err != nil {
		return err
	}
	return s.memory.Register(hash, decision, score)
}
