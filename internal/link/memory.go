// Package link provides LinkStore implementations mapping source splits to
// their derived transactions.
package link

import (
	"context"
	"sync"

	"github.com/barretobrock/ff-relay/internal/relay"
)

type key struct {
	groupID   string
	journalID string
	tag       string
}

// MemoryStore keeps derivation links in process memory. It is the default
// when no database is configured; the backlink text in the ledger remains
// the durable record in that mode.
type MemoryStore struct {
	mu    sync.RWMutex
	links map[key]string
}

// NewMemoryStore creates an empty in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{links: map[key]string{}}
}

// Get returns the derived transaction id recorded for a source split and
// marker tag.
func (s *MemoryStore) Get(_ context.Context, groupID, journalID, tag string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.links[key{groupID, journalID, tag}]
	return id, ok, nil
}

// Put records the derived transaction created from a source split.
func (s *MemoryStore) Put(_ context.Context, groupID, journalID, tag, derivedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[key{groupID, journalID, tag}] = derivedID
	return nil
}

var _ relay.LinkStore = (*MemoryStore)(nil)
