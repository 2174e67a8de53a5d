package fingerprint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"sync"

	"github.com/ymansouri/claimsort/internal/model"
)

// DiskStore persists fingerprints as one JSON object keyed by the
// 64-hex-character digest. Writers are serialized by a mutex; a
// corrupt file surfaces as an error rather than being silently
// discarded, since hiding storage corruption is unsafe.
type DiskStore struct {
	path string

	mu      sync.RWMutex
	entries map[string]Entry
	loaded  bool
}

// NewDiskStore creates a disk store backed by the given JSON file. The
// file is created lazily on first Register.
func NewDiskStore(path string) *DiskStore {
	return &DiskStore{path: path}
}

// Lookup returns the prior entry for the hash.
func (s *DiskStore) Lookup(hash string) (Entry, bool, error) {
	s.mu.RLock()
	if s.loaded {
		entry, ok := s.entries[hash]
		s.mu.RUnlock()
		return entry, ok, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return Entry{}, false, err
	}
	entry, ok := s.entries[hash]
	return entry, ok, nil
}

// Register upserts the decision for the hash and rewrites the file.
func (s *DiskStore) Register(hash string, decision model.Decision, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}

	s.entries[hash] = Entry{
		Timestamp: time.Now().UTC(),
		Decision:  decision,
		Score:     score,
	}
	return s.flushLocked()
}

func (s *DiskStore) loadLocked() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.entries = make(map[string]Entry)
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("read fingerprint store: %w", err)
	}

	entries := make(map[string]Entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("malformed fingerprint store %s: %w", s.path, err)
	}
	s.entries = entries
	s.loaded = true
	return nil
}

func (s *DiskStore) flushLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fingerprint store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create fingerprint dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write fingerprint store: %w", err)
	}
	return nil
}
