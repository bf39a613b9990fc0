package link_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barretobrock/ff-relay/internal/link"
)

func TestMemoryStore_PutGet(t *testing.T) {
	ctx := context.Background()
	s := link.NewMemoryStore()

	_, ok, err := s.Get(ctx, "200", "601", "rent-p50")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "200", "601", "rent-p50", "901"))

	id, ok, err := s.Get(ctx, "200", "601", "rent-p50")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "901", id)
}

func TestMemoryStore_KeyedByTag(t *testing.T) {
	ctx := context.Background()
	s := link.NewMemoryStore()

	require.NoError(t, s.Put(ctx, "200", "601", "alice-p50", "901"))
	require.NoError(t, s.Put(ctx, "200", "601", "bob-p25", "902"))

	id, ok, err := s.Get(ctx, "200", "601", "bob-p25")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "902", id)
}
