package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barretobrock/ff-relay/internal/relay"
)

// ClaimRepository is a durable dedup guard. Admissions are claim rows keyed
// by (event_kind, tx_id); the insert either lands or conflicts, so two
// concurrent deliveries of the same group cannot both be admitted, and
// claims survive restarts.
type ClaimRepository struct {
	pool *pgxpool.Pool
}

// NewClaimRepository creates a PostgreSQL-backed dedup guard.
func NewClaimRepository(pool *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{pool: pool}
}

// Admit claims txID for the given kind and reports whether the claim was new.
func (r *ClaimRepository) Admit(ctx context.Context, kind relay.EventKind, txID string) (bool, error) {
	query := `
		INSERT INTO handled_transactions (event_kind, tx_id)
		VALUES ($1, $2)
		ON CONFLICT (event_kind, tx_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, string(kind), txID)
	if err != nil {
		return false, fmt.Errorf("failed to claim transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

var _ relay.Guard = (*ClaimRepository)(nil)
