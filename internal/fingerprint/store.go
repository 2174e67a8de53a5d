// Package fingerprint deduplicates previously seen files by content
// hash. A hit is advisory: the pipeline warns and re-validates, it
// never auto-accepts or skips on the cache's say-so.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ymansouri/claimsort/internal/model"
)

// Entry is the prior decision recorded for one content hash.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Decision  model.Decision `json:"decision"`
	Score     int            `json:"score"`
}

// Store is the injectable fingerprint store. Lookup may be concurrent;
// implementations must serialize Register against concurrent writers.
type Store interface {
	// Lookup returns the prior entry for the hash, if any.
	Lookup(hash string) (Entry, bool, error)

	// Register upserts the decision for the hash.
	Register(hash string, decision model.Decision, score int) error
}

// Hash fingerprints file content as lowercase hex SHA-256.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
