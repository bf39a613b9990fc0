package relay

import "context"

// LedgerClient performs authenticated transaction calls against the ledger
// service's REST API. Implementations own transport policy; the engine never
// retries a failed call.
type LedgerClient interface {
	// CreateTransaction stores a new single-split transaction group.
	CreateTransaction(ctx context.Context, spec DerivedSpec) (CreatedTransaction, error)
	// GetTransaction fetches a transaction group with all of its splits.
	GetTransaction(ctx context.Context, groupID string) (*TransactionGroup, error)
	// UpdateTransaction replaces fields on a group's journals. Every
	// journal in the group must be resubmitted, keyed by journal id, per
	// the ledger's whole-group update contract.
	UpdateTransaction(ctx context.Context, groupID, title string, splits []SplitUpdate) error
}

// CreatedTransaction identifies a freshly stored transaction group.
type CreatedTransaction struct {
	GroupID   string
	JournalID string
}

// TransactionGroup is the read model for a fetched transaction group.
type TransactionGroup struct {
	ID     string
	Title  string
	Splits []Split
}

// SplitUpdate addresses one journal inside a whole-group update. Nil fields
// are left unchanged by the ledger.
type SplitUpdate struct {
	JournalID string
	Notes     *string
	Amount    *string
}

// Guard enforces at-most-once admission per (event kind, transaction group).
// Admit must be atomic: two concurrent deliveries of the same group must not
// both observe "not present".
type Guard interface {
	// Admit returns true and records txID if it has not been seen for
	// this kind; false leaves state unchanged.
	Admit(ctx context.Context, kind EventKind, txID string) (bool, error)
}

// LinkStore is the explicit association between a source split and the
// derived transactions created from it, keyed by the marker tag so a split
// carrying several markers maps each one to its own derived transaction.
// The backlink text in the ledger's notes fields remains the
// operator-visible rendering of the same fact.
type LinkStore interface {
	Get(ctx context.Context, groupID, journalID, tag string) (derivedID string, ok bool, err error)
	Put(ctx context.Context, groupID, journalID, tag, derivedID string) error
}

// Outcome is the terminal state the engine reached for a delivery.
type Outcome string

const (
	// OutcomeRejected means the dedup guard had already admitted this
	// delivery; replay, not an error.
	OutcomeRejected Outcome = "rejected"
	// OutcomeNoMatch means no split carried a proportion marker.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeCreated means at least one derived transaction was created.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means at least one derived amount was corrected.
	OutcomeUpdated Outcome = "updated"
	// OutcomeNoOp means matching derived transactions were already
	// consistent.
	OutcomeNoOp Outcome = "noop"
)

// Result summarizes what a delivery did.
type Result struct {
	Outcome Outcome
	// Created holds group ids of derived transactions created.
	Created []string
	// Updated holds group ids of derived transactions whose amount changed.
	Updated []string
	// Skipped holds journal ids passed over for ambiguous split types.
	Skipped []string
}
