package relay

import (
	"context"
	"fmt"

	"github.com/barretobrock/ff-relay/pkg/logger"
)

// Engine orchestrates proportion derivation for webhook deliveries. Each
// delivery resolves to one outcome: rejected, no_match, created, updated or
// noop. Admission happens before any mutation so that a partially failed
// derivation is rejected, not repeated, on redelivery.
type Engine struct {
	client  LedgerClient
	guard   Guard
	links   LinkStore
	builder *Builder
	baseURL string
	log     *logger.Logger
}

// NewEngine creates a reconciliation engine.
func NewEngine(client LedgerClient, guard Guard, links LinkStore, builder *Builder, baseURL string, log *logger.Logger) *Engine {
	return &Engine{
		client:  client,
		guard:   guard,
		links:   links,
		builder: builder,
		baseURL: baseURL,
		log:     log.WithField("component", "engine"),
	}
}

// match pairs a source split with one extracted rule and its derived spec.
type match struct {
	split Split
	rule  ProportionRule
	spec  DerivedSpec
}

// HandleCreated processes a "transaction stored" delivery. For every split
// carrying a proportion marker it creates a derived transaction, records the
// association, and writes a backlink into the source split's notes.
func (e *Engine) HandleCreated(ctx context.Context, ev *TransactionEvent) (*Result, error) {
	log := e.log.WithContext(ctx).WithField("group_id", ev.GroupID)

	admitted, err := e.guard.Admit(ctx, EventCreated, ev.GroupID)
	if err != nil {
		return nil, fmt.Errorf("dedup admission: %w", err)
	}
	if !admitted {
		log.Info("group already handled as created, skipping")
		return &Result{Outcome: OutcomeRejected}, nil
	}

	res := &Result{}
	matches := e.collectMatches(ev, res, log)
	if len(matches) == 0 {
		log.Debug("no proportion markers found")
		res.Outcome = OutcomeNoMatch
		return res, nil
	}

	// Notes are tracked per journal so a split with several markers
	// accumulates one backlink line per derived transaction.
	notes := notesByJournal(ev)
	for _, m := range matches {
		if err := e.derive(ctx, ev, m, notes, res, log); err != nil {
			return res, err
		}
	}

	res.Outcome = OutcomeCreated
	log.Info("derivation complete", "created", len(res.Created))
	return res, nil
}

// HandleUpdated processes a "transaction edited" delivery. Splits whose
// derived transaction is already known get their derived amount reconciled;
// splits that gained a marker after creation are derived fresh.
func (e *Engine) HandleUpdated(ctx context.Context, ev *TransactionEvent) (*Result, error) {
	log := e.log.WithContext(ctx).WithField("group_id", ev.GroupID)

	admitted, err := e.guard.Admit(ctx, EventUpdated, ev.GroupID)
	if err != nil {
		return nil, fmt.Errorf("dedup admission: %w", err)
	}
	if !admitted {
		log.Info("group already handled as updated, skipping")
		return &Result{Outcome: OutcomeRejected}, nil
	}

	res := &Result{}
	matches := e.collectMatches(ev, res, log)
	if len(matches) == 0 {
		log.Debug("no proportion markers found")
		res.Outcome = OutcomeNoMatch
		return res, nil
	}

	notes := notesByJournal(ev)
	for _, m := range matches {
		derivedID, ok, err := e.resolveLink(ctx, ev.GroupID, m, log)
		if err != nil {
			return res, err
		}
		if !ok {
			// A marker added after creation: derive a new transaction.
			log.Info("no derived transaction recorded for split, deriving", "journal_id", m.split.JournalID)
			if err := e.derive(ctx, ev, m, notes, res, log); err != nil {
				return res, err
			}
			continue
		}
		if err := e.reconcile(ctx, ev, m, derivedID, res, log); err != nil {
			return res, err
		}
	}

	switch {
	case len(res.Created) > 0:
		res.Outcome = OutcomeCreated
	case len(res.Updated) > 0:
		res.Outcome = OutcomeUpdated
	default:
		res.Outcome = OutcomeNoOp
	}
	log.Info("reconciliation complete", "created", len(res.Created), "updated", len(res.Updated))
	return res, nil
}

// collectMatches extracts rules from every split and builds derived specs.
// Splits with an ambiguous type are skipped and recorded; the rest of the
// group continues.
func (e *Engine) collectMatches(ev *TransactionEvent, res *Result, log *logger.Logger) []match {
	var matches []match
	for _, s := range ev.Splits {
		rules := ExtractRules(s)
		if len(rules) == 0 {
			continue
		}
		for _, rule := range rules {
			spec, err := e.builder.Build(ev.GroupID, ev.GroupTitle, s, rule)
			if err != nil {
				log.Warn("skipping split", "journal_id", s.JournalID, "error", err)
				res.Skipped = append(res.Skipped, s.JournalID)
				break
			}
			matches = append(matches, match{split: s, rule: rule, spec: spec})
		}
	}
	return matches
}

// derive creates the derived transaction for one match and backlinks the
// source split. Ledger failures surface to the caller; admission has already
// happened, so a redelivered webhook after a failure here is rejected rather
// than retried into a duplicate.
func (e *Engine) derive(ctx context.Context, ev *TransactionEvent, m match, notes map[string]string, res *Result, log *logger.Logger) error {
	created, err := e.client.CreateTransaction(ctx, m.spec)
	if err != nil {
		return fmt.Errorf("create derived transaction: %w", err)
	}
	log.Info("created derived transaction",
		"derived_id", created.GroupID,
		"journal_id", m.split.JournalID,
		"amount", m.spec.AmountString(),
	)

	// The create above fires no webhooks, but guard the derived group
	// anyway in case the ledger is configured otherwise.
	if _, err := e.guard.Admit(ctx, EventCreated, created.GroupID); err != nil {
		log.Warn("could not record derived group in dedup guard", "derived_id", created.GroupID, "error", err)
	}

	if err := e.links.Put(ctx, ev.GroupID, m.split.JournalID, m.rule.Tag, created.GroupID); err != nil {
		// The backlink text written below still records the association,
		// so the legacy import path can recover it later.
		log.Error("could not record derivation link", "derived_id", created.GroupID, "error", err)
	}

	notes[m.split.JournalID] = AppendBacklink(notes[m.split.JournalID], e.baseURL, created.GroupID)
	newNotes := notes[m.split.JournalID]

	updates := make([]SplitUpdate, len(ev.Splits))
	for i, s := range ev.Splits {
		updates[i] = SplitUpdate{JournalID: s.JournalID}
		if s.JournalID == m.split.JournalID {
			updates[i].Notes = &newNotes
		}
	}
	if err := e.client.UpdateTransaction(ctx, ev.GroupID, ev.GroupTitle, updates); err != nil {
		return fmt.Errorf("backlink source transaction %s: %w", ev.GroupID, err)
	}

	res.Created = append(res.Created, created.GroupID)
	return nil
}

// resolveLink finds the derived transaction previously created from a split
// for one marker tag. The link store is authoritative; notes written before
// the store existed are parsed once and imported.
func (e *Engine) resolveLink(ctx context.Context, groupID string, m match, log *logger.Logger) (string, bool, error) {
	derivedID, ok, err := e.links.Get(ctx, groupID, m.split.JournalID, m.rule.Tag)
	if err != nil {
		return "", false, fmt.Errorf("look up derivation link: %w", err)
	}
	if ok {
		return derivedID, true, nil
	}

	legacyID, ok := DerivedRef(m.split.Notes)
	if !ok {
		return "", false, nil
	}
	log.Debug("importing legacy backlink", "journal_id", m.split.JournalID, "derived_id", legacyID)
	if err := e.links.Put(ctx, groupID, m.split.JournalID, m.rule.Tag, legacyID); err != nil {
		log.Warn("could not import legacy backlink", "derived_id", legacyID, "error", err)
	}
	return legacyID, true, nil
}

// reconcile compares a derived transaction's stored amount against the
// amount recomputed from the current source split and issues an amount-only
// update when they differ.
func (e *Engine) reconcile(ctx context.Context, ev *TransactionEvent, m match, derivedID string, res *Result, log *logger.Logger) error {
	log = log.WithField("derived_id", derivedID)

	group, err := e.client.GetTransaction(ctx, derivedID)
	if err != nil {
		return fmt.Errorf("fetch derived transaction %s: %w", derivedID, err)
	}

	expected := m.spec.Amount
	updates := make([]SplitUpdate, 0, len(group.Splits))
	changed := false
	for _, ds := range group.Splits {
		u := SplitUpdate{JournalID: ds.JournalID}
		if _, ok := FindBacklink(ds.Notes, ev.GroupID); ok {
			if ds.Amount.Equal(expected) {
				log.Info("derived amount already consistent", "amount", expected.StringFixed(2))
				return nil
			}
			amt := expected.StringFixed(2)
			u.Amount = &amt
			changed = true
		}
		updates = append(updates, u)
	}

	if !changed {
		log.Warn("no split of derived transaction references the source group")
		return nil
	}

	if err := e.client.UpdateTransaction(ctx, derivedID, group.Title, updates); err != nil {
		return fmt.Errorf("update derived transaction %s: %w", derivedID, err)
	}
	if _, err := e.guard.Admit(ctx, EventUpdated, derivedID); err != nil {
		log.Warn("could not record derived group in dedup guard", "error", err)
	}

	log.Info("updated derived amount", "amount", expected.StringFixed(2))
	res.Updated = append(res.Updated, derivedID)
	return nil
}

func notesByJournal(ev *TransactionEvent) map[string]string {
	notes := make(map[string]string, len(ev.Splits))
	for _, s := range ev.Splits {
		notes[s.JournalID] = s.Notes
	}
	return notes
}
