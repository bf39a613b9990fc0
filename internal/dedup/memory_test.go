package dedup_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barretobrock/ff-relay/internal/dedup"
	"github.com/barretobrock/ff-relay/internal/relay"
)

func TestMemoryGuard_AdmitOnce(t *testing.T) {
	ctx := context.Background()
	g := dedup.NewMemoryGuard()

	first, err := g.Admit(ctx, relay.EventCreated, "200")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := g.Admit(ctx, relay.EventCreated, "200")
	require.NoError(t, err)
	assert.False(t, second)
}

func TestMemoryGuard_KindsTrackedIndependently(t *testing.T) {
	ctx := context.Background()
	g := dedup.NewMemoryGuard()

	created, err := g.Admit(ctx, relay.EventCreated, "200")
	require.NoError(t, err)
	assert.True(t, created)

	// The same group passes the updated check once after being created.
	updated, err := g.Admit(ctx, relay.EventUpdated, "200")
	require.NoError(t, err)
	assert.True(t, updated)

	replay, err := g.Admit(ctx, relay.EventUpdated, "200")
	require.NoError(t, err)
	assert.False(t, replay)
}

func TestMemoryGuard_ConcurrentAdmitIsAtomic(t *testing.T) {
	ctx := context.Background()
	g := dedup.NewMemoryGuard()

	const goroutines = 50
	var admitted atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := g.Admit(ctx, relay.EventCreated, "200")
			assert.NoError(t, err)
			if ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
}
