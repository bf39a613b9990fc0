// Package dedup provides Guard implementations enforcing at-most-once
// admission per (event kind, transaction group).
package dedup

import (
	"context"
	"sync"

	"github.com/barretobrock/ff-relay/internal/relay"
)

// MemoryGuard tracks admitted transaction groups in process memory. Created
// and updated deliveries are tracked independently; entries are never
// removed and do not survive a restart.
type MemoryGuard struct {
	mu   sync.Mutex
	seen map[relay.EventKind]map[string]struct{}
}

// NewMemoryGuard creates an empty in-memory guard.
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{
		seen: map[relay.EventKind]map[string]struct{}{
			relay.EventCreated: {},
			relay.EventUpdated: {},
		},
	}
}

// Admit reports whether txID is new for this kind, inserting it if so. The
// check-and-insert runs under one lock so concurrent deliveries of the same
// group cannot both be admitted.
func (g *MemoryGuard) Admit(_ context.Context, kind relay.EventKind, txID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	set, ok := g.seen[kind]
	if !ok {
		set = map[string]struct{}{}
		g.seen[kind] = set
	}
	if _, dup := set[txID]; dup {
		return false, nil
	}
	set[txID] = struct{}{}
	return true, nil
}

var _ relay.Guard = (*MemoryGuard)(nil)
