package relay

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// DerivedSpec describes the proportion transaction to create as a fractional
// mirror of one source split.
type DerivedSpec struct {
	Title         string
	Type          SplitType
	Amount        decimal.Decimal
	Description   string
	SourceID      string
	DestinationID string
	Notes         string
}

// AmountString is the ledger-native 2-decimal rendering of the amount.
func (d DerivedSpec) AmountString() string {
	return d.Amount.StringFixed(2)
}

// Builder computes DerivedSpecs from source splits. The derived transaction
// always flows from the configured income account to the configured owed
// account; the original split's direction is captured by the inverted type.
type Builder struct {
	incomeAccountID string
	owedAccountID   string
	baseURL         string
}

// NewBuilder creates a split builder bound to the relay's account and URL
// configuration.
func NewBuilder(incomeAccountID, owedAccountID, baseURL string) *Builder {
	return &Builder{
		incomeAccountID: incomeAccountID,
		owedAccountID:   owedAccountID,
		baseURL:         baseURL,
	}
}

// DeriveAmount computes the proportional amount for a rule, rounded to two
// decimal places with halves away from zero.
func DeriveAmount(amount decimal.Decimal, rule ProportionRule) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(rule.Percentage))).Div(oneHundred).Round(2)
}

// Build produces the DerivedSpec for one (split, rule) pair. Transfer-type
// splits have no defined inverse direction and are rejected with
// ErrAmbiguousSplitType.
func (b *Builder) Build(groupID, groupTitle string, s Split, rule ProportionRule) (DerivedSpec, error) {
	var derivedType SplitType
	switch s.Type {
	case TypeWithdrawal:
		derivedType = TypeDeposit
	case TypeDeposit:
		derivedType = TypeWithdrawal
	default:
		return DerivedSpec{}, fmt.Errorf("%w: journal %s has type %q", ErrAmbiguousSplitType, s.JournalID, s.Type)
	}

	title := groupTitle
	if title == "" {
		title = s.Description
	}

	return DerivedSpec{
		Title:         "Prop - " + title,
		Type:          derivedType,
		Amount:        DeriveAmount(s.Amount, rule),
		Description:   s.Description,
		SourceID:      b.incomeAccountID,
		DestinationID: b.owedAccountID,
		Notes:         SourceBacklink(b.baseURL, groupID),
	}, nil
}
