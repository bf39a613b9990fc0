package firefly

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// flexID accepts ids the API renders either as JSON strings or numbers.
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

type transactionResponse struct {
	Data transactionData `json:"data"`
}

type transactionData struct {
	ID         flexID                `json:"id"`
	Attributes transactionAttributes `json:"attributes"`
}

type transactionAttributes struct {
	GroupTitle   *string   `json:"group_title"`
	Transactions []journal `json:"transactions"`
}

type journal struct {
	JournalID     flexID          `json:"transaction_journal_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	SourceID      flexID          `json:"source_id"`
	DestinationID flexID          `json:"destination_id"`
	Notes         *string         `json:"notes"`
	Tags          []string        `json:"tags"`
}

type createRequest struct {
	ErrorIfDuplicateHash bool          `json:"error_if_duplicate_hash"`
	ApplyRules           bool          `json:"apply_rules"`
	FireWebhooks         bool          `json:"fire_webhooks"`
	GroupTitle           string        `json:"group_title"`
	Transactions         []createSplit `json:"transactions"`
}

type createSplit struct {
	Type          string   `json:"type"`
	Date          string   `json:"date"`
	Amount        string   `json:"amount"`
	Description   string   `json:"description"`
	Order         int      `json:"order"`
	CurrencyCode  string   `json:"currency_code"`
	SourceID      string   `json:"source_id"`
	DestinationID string   `json:"destination_id"`
	Reconciled    bool     `json:"reconciled"`
	Tags          []string `json:"tags"`
	Notes         string   `json:"notes"`
}

type updateRequest struct {
	ApplyRules   bool          `json:"apply_rules"`
	FireWebhooks bool          `json:"fire_webhooks"`
	GroupTitle   *string       `json:"group_title,omitempty"`
	Transactions []updateSplit `json:"transactions"`
}

type updateSplit struct {
	JournalID string  `json:"transaction_journal_id"`
	Notes     *string `json:"notes,omitempty"`
	Amount    *string `json:"amount,omitempty"`
}
