package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/barretobrock/ff-relay/internal/relay"
)

// LinkRepository persists the association between a source split (plus its
// marker tag) and the derived transaction created from it.
type LinkRepository struct {
	pool *pgxpool.Pool
}

// NewLinkRepository creates a PostgreSQL-backed link store.
func NewLinkRepository(pool *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{pool: pool}
}

// Get returns the derived transaction id recorded for a source split and
// marker tag.
func (r *LinkRepository) Get(ctx context.Context, groupID, journalID, tag string) (string, bool, error) {
	query := `
		SELECT derived_group_id
		FROM derivation_links
		WHERE source_group_id = $1 AND source_journal_id = $2 AND marker_tag = $3
	`

	var derivedID string
	err := r.pool.QueryRow(ctx, query, groupID, journalID, tag).Scan(&derivedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get derivation link: %w", err)
	}
	return derivedID, true, nil
}

// Put records the derived transaction created from a source split. Re-puts
// for the same key overwrite, which is what the legacy-backlink import path
// needs.
func (r *LinkRepository) Put(ctx context.Context, groupID, journalID, tag, derivedID string) error {
	query := `
		INSERT INTO derivation_links (source_group_id, source_journal_id, marker_tag, derived_group_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source_group_id, source_journal_id, marker_tag)
		DO UPDATE SET derived_group_id = EXCLUDED.derived_group_id
	`

	if _, err := r.pool.Exec(ctx, query, groupID, journalID, tag, derivedID); err != nil {
		return fmt.Errorf("failed to put derivation link: %w", err)
	}
	return nil
}

var _ relay.LinkStore = (*LinkRepository)(nil)
