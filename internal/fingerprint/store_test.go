package fingerprint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ymansouri/claimsort/internal/model"
)

func TestHash_IsStableHexDigest(t *testing.T) {
	content := []byte("acte de deces - 10/06/2022")

	h1 := Hash(content)
	h2 := Hash(content)
	if h1 != h2 {
		t.Fatalf("hash not stable: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
	if h1 == Hash([]byte("acte de deces - 11/06/2022")) {
		t.Error("different content produced the same hash")
	}
}

func TestDiskStore_RegisterAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	store := NewDiskStore(path)

	hash := Hash([]byte("cin recto"))
	if _, found, err := store.Lookup(hash); err != nil || found {
		t.Fatalf("empty store: found=%v err=%v", found, err)
	}

	if err := store.Register(hash, model.DecisionReview, 72); err != nil {
		t.Fatalf("Register: %v", err)
	}

	entry, found, err := store.Lookup(hash)
	if err != nil || !found {
		t.Fatalf("Lookup after Register: found=%v err=%v", found, err)
	}
	if entry.Decision != model.DecisionReview || entry.Score != 72 {
		t.Errorf("entry = %+v, want REVIEW/72", entry)
	}
	if entry.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestDiskStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	hash := Hash([]byte("rib scan"))

	if err := NewDiskStore(path).Register(hash, model.DecisionAccept, 100); err != nil {
		t.Fatalf("Register: %v", err)
	}

	entry, found, err := NewDiskStore(path).Lookup(hash)
	if err != nil || !found {
		t.Fatalf("fresh instance Lookup: found=%v err=%v", found, err)
	}
	if entry.Decision != model.DecisionAccept {
		t.Errorf("decision = %s, want ACCEPT", entry.Decision)
	}

	// The on-disk layout is a JSON object keyed by digest.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("store file is not a JSON object: %v", err)
	}
	if _, ok := raw[hash]; !ok {
		t.Errorf("store file missing key %s", hash)
	}
}

func TestDiskStore_RegisterUpserts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	store := NewDiskStore(path)
	hash := Hash([]byte("contract page 1"))

	if err := store.Register(hash, model.DecisionReview, 60); err != nil {
		t.Fatal(err)
	}
	if err := store.Register(hash, model.DecisionAccept, 95); err != nil {
		t.Fatal(err)
	}

	entry, _, err := store.Lookup(hash)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Decision != model.DecisionAccept || entry.Score != 95 {
		t.Errorf("entry = %+v, want latest registration to win", entry)
	}
}

func TestDiskStore_MalformedFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := NewDiskStore(path).Lookup("deadbeef"); err == nil {
		t.Error("malformed store file should surface an error")
	}
}

func TestLayeredStore_PromotesDiskHits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	hash := Hash([]byte("death certificate"))

	if err := NewDiskStore(path).Register(hash, model.DecisionReview, 40); err != nil {
		t.Fatal(err)
	}

	layered := NewLayeredStore(path, time.Minute)
	entry, found, err := layered.Lookup(hash)
	if err != nil || !found {
		t.Fatalf("layered Lookup: found=%v err=%v", found, err)
	}
	if entry.Score != 40 {
		t.Errorf("score = %d, want 40", entry.Score)
	}

	// After promotion the memory layer answers on its own.
	if _, found, _ := layered.memory.Lookup(hash); !found {
		t.Error("disk hit was not promoted to memory")
	}
}

func TestLayeredStore_RegisterWritesBothLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fingerprints.json")
	layered := NewLayeredStore(path, time.Minute)
	hash := Hash([]byte("bank statement"))

	if err := layered.Register(hash, model.DecisionAccept, 88); err != nil {
		t.Fatal(err)
	}

	if _, found, _ := layered.memory.Lookup(hash); !found {
		t.Error("memory layer missing registration")
	}
	if _, found, err := NewDiskStore(path).Lookup(hash); err != nil || !found {
		t.Errorf("disk layer missing registration: found=%v err=%v", found, err)
	}
}
