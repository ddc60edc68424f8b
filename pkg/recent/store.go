// Package recent keeps the bounded, most-recent-first list of queries the
// user searched for, persisted through a key-value collaborator.
package recent

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/storage"
)

const (
	// Capacity is the maximum number of remembered queries.
	Capacity = 5

	// DefaultKey is the storage key the list is persisted under.
	DefaultKey = "recent_searches"
)

var logger = log.ForService("recent")

// KV is the persistent key-value collaborator. Get reports absent keys
// with an error wrapping storage.ErrNotFound.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
}

// Store holds the recent searches. The in-memory list is authoritative;
// persistence is best effort. Safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	kv      KV
	key     string
	entries []string
}

// Open loads the list persisted under key (DefaultKey when empty).
// Missing, unreadable or corrupt data yields an empty list.
func Open(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{kv: kv, key: key, entries: []string{}}
	s.entries = s.load()
	return s
}

func (s *Store) load() []string {
	if s.kv == nil {
		return []string{}
	}

	data, err := s.kv.Get(s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warnf("reading recent searches: %v", err)
		}
		return []string{}
	}

	var stored []any
	if err := json.Unmarshal(data, &stored); err != nil {
		logger.Warnf("ignoring corrupt recent searches under %s: %v", s.key, err)
		return []string{}
	}
	queries := make([]string, 0, len(stored))
	for _, v := range stored {
		if q, ok := v.(string); ok {
			queries = append(queries, q)
		}
	}
	return normalize(queries)
}

// normalize drops blank entries and later duplicates, then truncates.
func normalize(list []string) []string {
	out := make([]string, 0, Capacity)
	seen := make(map[string]struct{}, len(list))
	for _, q := range list {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
		if len(out) == Capacity {
			break
		}
	}
	return out
}

// Promote moves query to the front of the list, inserting it when new,
// and persists the result. Blank queries are ignored. It reports whether
// the list was touched.
func (s *Store) Promote(query string) bool {
	if strings.TrimSpace(query) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]string, 0, Capacity)
	next = append(next, query)
	for _, q := range s.entries {
		if q == query {
			continue
		}
		if len(next) == Capacity {
			break
		}
		next = append(next, q)
	}
	s.entries = next
	s.persistLocked()
	return true
}

// List returns a copy of the entries, most recent first.
func (s *Store) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear empties the list and persists the empty list.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = []string{}
	s.persistLocked()
}

// Key returns the storage key the list is persisted under.
func (s *Store) Key() string { return s.key }

// persistLocked writes the full list. Failures are logged and not retried.
func (s *Store) persistLocked() {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(s.entries)
	if err != nil {
		logger.Errorf("encoding recent searches: %v", err)
		return
	}
	if err := s.kv.Put(s.key, data); err != nil {
		logger.Warnf("persisting recent searches: %v", err)
	}
}
