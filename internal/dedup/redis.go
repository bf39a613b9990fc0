package dedup

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/barretobrock/ff-relay/internal/relay"
)

// KeyPrefix is the prefix for guard set keys.
const KeyPrefix = "ffrelay:handled:"

// RedisGuard stores admitted transaction groups in Redis sets, one set per
// event kind. SADD is atomic, so the admit-and-insert sequence needs no
// additional locking, and admissions survive relay restarts.
type RedisGuard struct {
	client *redis.Client
}

// NewRedisGuard creates a guard backed by the given Redis client.
func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

// Admit adds txID to the kind's set and reports whether it was absent.
func (g *RedisGuard) Admit(ctx context.Context, kind relay.EventKind, txID string) (bool, error) {
	added, err := g.client.SAdd(ctx, KeyPrefix+string(kind), txID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record admission: %w", err)
	}
	return added == 1, nil
}

var _ relay.Guard = (*RedisGuard)(nil)
