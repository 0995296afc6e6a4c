package selection

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/skykid17/smartlp-sub005/internal/core/kv"
	"github.com/skykid17/smartlp-sub005/internal/core/logging"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
)

// Namespace is the KV namespace selection arrays are stored under.
const Namespace = "selection"

// StorageKey derives the key for one table's selection. Independent tables
// must use distinct (prefix, tableBodyID) pairs.
func StorageKey(prefix, tableBodyID string) string {
	return prefix + "_" + tableBodyID
}

// Store persists one selection as a JSON array of IDs. Both operations fail
// soft: errors are logged and never returned.
//
// When a write fails the store keeps that write in memory and serves it from
// Get until a later write succeeds, so the session keeps working without
// persistence.
type Store struct {
	key     string
	backend *kv.TypedKV[[]record.ID]
	log     zerolog.Logger

	mu       sync.Mutex
	degraded bool
	memory   []record.ID
}

// NewStore creates a store for the selection at StorageKey(prefix, tableBodyID).
// A nil backend yields a purely in-memory store.
func NewStore(backend kv.KV, prefix, tableBodyID string) *Store {
	key := StorageKey(prefix, tableBodyID)
	s := &Store{
		key: key,
		log: logging.ForTable("selection-store", key),
	}
	if backend != nil {
		s.backend = kv.Scoped[[]record.ID](backend, Namespace)
	} else {
		s.degraded = true
	}
	return s
}

// Key returns the storage key of this selection.
func (s *Store) Key() string { return s.key }

// Get returns the persisted IDs. A missing key or a decode failure yields an
// empty slice.
func (s *Store) Get() []record.ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.degraded {
		return clone(s.memory)
	}

	ids, err := s.backend.Get(context.Background(), s.key)
	if err != nil {
		if kv.IsNotFound(err) {
			return []record.ID{}
		}
		s.log.Warn().Err(err).Msg("read selection")
		return []record.ID{}
	}
	if ids == nil {
		return []record.ID{}
	}
	return ids
}

// Set replaces the persisted IDs.
func (s *Store) Set(ids []record.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.memory = clone(ids)
	if s.backend == nil {
		return
	}

	if err := s.backend.Set(context.Background(), s.key, s.memory); err != nil {
		s.log.Error().Err(err).Int("count", len(ids)).Msg("persist selection, continuing in memory")
		s.degraded = true
		return
	}
	s.degraded = false
}

func clone(ids []record.ID) []record.ID {
	out := make([]record.ID, len(ids))
	copy(out, ids)
	return out
}
