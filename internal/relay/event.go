package relay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// EventKind classifies a webhook delivery by the ledger trigger that fired it.
type EventKind string

const (
	// EventCreated is fired when the ledger stores a new transaction group.
	EventCreated EventKind = "created"
	// EventUpdated is fired when an existing transaction group is edited.
	EventUpdated EventKind = "updated"
)

// SplitType is the direction of a single journal entry.
type SplitType string

const (
	TypeWithdrawal SplitType = "withdrawal"
	TypeDeposit    SplitType = "deposit"
	TypeTransfer   SplitType = "transfer"
)

// TransactionEvent is the decoded webhook payload for one transaction group.
// It is immutable once parsed; lifecycle is request-scoped.
type TransactionEvent struct {
	UUID       string
	Kind       EventKind
	GroupID    string
	GroupTitle string
	Splits     []Split
}

// Split is one journal entry within a transaction group. JournalID is the
// stable key for addressing this entry across whole-group update calls.
type Split struct {
	JournalID     string
	Type          SplitType
	Amount        decimal.Decimal
	Description   string
	SourceID      string
	DestinationID string
	Notes         string
	Tags          []string
}

// wireID accepts ledger identifiers sent either as JSON numbers (webhook
// payloads) or strings (API responses).
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

type wireEvent struct {
	UUID    string       `json:"uuid"`
	Trigger string       `json:"trigger"`
	Content *wireContent `json:"content"`
}

type wireContent struct {
	ID           wireID      `json:"id"`
	GroupTitle   *string     `json:"group_title"`
	Transactions []wireSplit `json:"transactions"`
}

type wireSplit struct {
	JournalID     wireID           `json:"transaction_journal_id"`
	Type          string           `json:"type"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   string           `json:"description"`
	SourceID      wireID           `json:"source_id"`
	DestinationID wireID           `json:"destination_id"`
	Notes         *string          `json:"notes"`
	Tags          []string         `json:"tags"`
}

// ParseEvent decodes a webhook body into a TransactionEvent. Structural
// problems are reported as ErrMalformedEvent so the boundary can reject the
// delivery before it reaches the dedup guard.
func ParseEvent(kind EventKind, body []byte) (*TransactionEvent, error) {
	var we wireEvent
	if err := json.Unmarshal(body, &we); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if we.Content == nil {
		return nil, fmt.Errorf("%w: missing content", ErrMalformedEvent)
	}
	if we.Content.ID == "" {
		return nil, fmt.Errorf("%w: missing transaction group id", ErrMalformedEvent)
	}
	if _, err := strconv.ParseInt(string(we.Content.ID), 10, 64); err != nil {
		return nil, fmt.Errorf("%w: non-numeric transaction group id %q", ErrMalformedEvent, we.Content.ID)
	}
	if len(we.Content.Transactions) == 0 {
		return nil, fmt.Errorf("%w: content has no transactions", ErrMalformedEvent)
	}

	ev := &TransactionEvent{
		UUID:    we.UUID,
		Kind:    kind,
		GroupID: string(we.Content.ID),
		Splits:  make([]Split, 0, len(we.Content.Transactions)),
	}
	if we.Content.GroupTitle != nil {
		ev.GroupTitle = *we.Content.GroupTitle
	}

	for _, ws := range we.Content.Transactions {
		if ws.JournalID == "" {
			return nil, fmt.Errorf("%w: split missing transaction_journal_id", ErrMalformedEvent)
		}
		if ws.Amount == nil {
			return nil, fmt.Errorf("%w: split %s has no amount", ErrMalformedEvent, ws.JournalID)
		}
		s := Split{
			JournalID:     string(ws.JournalID),
			Type:          SplitType(ws.Type),
			Amount:        *ws.Amount,
			Description:   ws.Description,
			SourceID:      string(ws.SourceID),
			DestinationID: string(ws.DestinationID),
			Tags:          ws.Tags,
		}
		if ws.Notes != nil {
			s.Notes = *ws.Notes
		}
		ev.Splits = append(ev.Splits, s)
	}

	return ev, nil
}
