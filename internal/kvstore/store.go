// Package kvstore is the in-memory, insertion-ordered key-value map the
// driver applies committed entries to, and that Get/Scan read directly.
package kvstore

import (
	"bytes"
	"encoding/gob"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dyxushuai/mumgo/internal/mumerr"
)

// Store is a concurrent-read, exclusive-write ordered map from key to value.
type Store struct {
	mu sync.RWMutex
	m  *orderedmap.OrderedMap[string, []byte]
}

// New returns an empty Store.
func New() *Store {
	return &Store{m: orderedmap.New[string, []byte]()}
}

// Set stores value under key, returning the previous value if any.
func (s *Store) Set(key, value []byte) (prev []byte, had bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.m.Get(string(key)); ok {
		prev, had = old, true
	}
	s.m.Set(string(key), value)
	return prev, had
}

// Get returns a copy of the stored value, if present.
func (s *Store) Get(key []byte) (value []byte, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m.Get(string(key))
	if !ok {
		return nil, false
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true
}

// Delete removes key, returning the previous value if any.
func (s *Store) Delete(key []byte) (prev []byte, had bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.m.Get(string(key))
	if !ok {
		return nil, false
	}
	s.m.Delete(string(key))
	return old, true
}

// Scan returns up to limit (key,value) pairs in insertion order, beginning
// at the first key equal to startKey. If startKey is not present the whole
// iteration is skipped and the result is empty; Scan does not fall forward
// to the next key in order.
func (s *Store) Scan(startKey []byte, limit int) []KV {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []KV
	seen := false
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		if !seen {
			if pair.Key != string(startKey) {
				continue
			}
			seen = true
		}
		if len(out) >= limit {
			break
		}
		v := make([]byte, len(pair.Value))
		copy(v, pair.Value)
		out = append(out, KV{Key: []byte(pair.Key), Value: v})
	}
	return out
}

// KV is one key-value pair as returned by Scan.
type KV struct {
	Key   []byte
	Value []byte
}

// kvEntry is the deterministic wire shape ExportSnapshot/ImportSnapshot
// encode through gob, preserving insertion order explicitly as a slice
// rather than relying on map iteration order.
type kvEntry struct {
	Key   string
	Value []byte
}

// ExportSnapshot encodes the entire map, in insertion order, as an opaque
// blob.
func (s *Store) ExportSnapshot() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]kvEntry, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, kvEntry{Key: pair.Key, Value: pair.Value})
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(entries); err != nil {
		return nil, mumerr.Serialization(err, "kvstore: export snapshot")
	}
	return buf.Bytes(), nil
}

// ImportSnapshot overwrites the entire map from a blob produced by
// ExportSnapshot.
func (s *Store) ImportSnapshot(data []byte) error {
	var entries []kvEntry
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&entries); err != nil {
		return mumerr.Serialization(err, "kvstore: import snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = orderedmap.New[string, []byte](len(entries))
	for _, e := range entries {
		s.m.Set(e.Key, e.Value)
	}
	return nil
}
