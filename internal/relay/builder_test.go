package relay_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barretobrock/ff-relay/internal/relay"
)

const (
	testBaseURL  = "https://ff.example.com"
	testIncomeID = "40"
	testOwedID   = "20"
)

func testBuilder() *relay.Builder {
	return relay.NewBuilder(testIncomeID, testOwedID, testBaseURL)
}

func testSplit(splitType relay.SplitType, amount string) relay.Split {
	return relay.Split{
		JournalID:     "601",
		Type:          splitType,
		Amount:        decimal.RequireFromString(amount),
		Description:   "Monthly rent",
		SourceID:      "1",
		DestinationID: "2",
	}
}

func TestBuild_DerivedAmount(t *testing.T) {
	spec, err := testBuilder().Build("200", "", testSplit(relay.TypeWithdrawal, "100.00"), relay.ProportionRule{Percentage: 36, Tag: "foo-p36"})
	require.NoError(t, err)

	assert.Equal(t, "36.00", spec.AmountString())
}

func TestBuild_RoundsHalfAwayFromZero(t *testing.T) {
	spec, err := testBuilder().Build("200", "", testSplit(relay.TypeWithdrawal, "33.335"), relay.ProportionRule{Percentage: 50, Tag: "half-p50"})
	require.NoError(t, err)

	assert.Equal(t, "16.67", spec.AmountString())
}

func TestBuild_InvertsDirection(t *testing.T) {
	b := testBuilder()
	rule := relay.ProportionRule{Percentage: 50, Tag: "rent-p50"}

	fromWithdrawal, err := b.Build("200", "", testSplit(relay.TypeWithdrawal, "100.00"), rule)
	require.NoError(t, err)
	assert.Equal(t, relay.TypeDeposit, fromWithdrawal.Type)

	fromDeposit, err := b.Build("200", "", testSplit(relay.TypeDeposit, "100.00"), rule)
	require.NoError(t, err)
	assert.Equal(t, relay.TypeWithdrawal, fromDeposit.Type)

	// Accounts are the configured pair regardless of source direction.
	for _, spec := range []relay.DerivedSpec{fromWithdrawal, fromDeposit} {
		assert.Equal(t, testIncomeID, spec.SourceID)
		assert.Equal(t, testOwedID, spec.DestinationID)
	}
}

func TestBuild_RejectsTransfer(t *testing.T) {
	_, err := testBuilder().Build("200", "", testSplit(relay.TypeTransfer, "100.00"), relay.ProportionRule{Percentage: 50, Tag: "rent-p50"})

	assert.ErrorIs(t, err, relay.ErrAmbiguousSplitType)
}

func TestBuild_Title(t *testing.T) {
	b := testBuilder()
	rule := relay.ProportionRule{Percentage: 50, Tag: "rent-p50"}

	withTitle, err := b.Build("200", "June rent", testSplit(relay.TypeWithdrawal, "100.00"), rule)
	require.NoError(t, err)
	assert.Equal(t, "Prop - June rent", withTitle.Title)

	withoutTitle, err := b.Build("200", "", testSplit(relay.TypeWithdrawal, "100.00"), rule)
	require.NoError(t, err)
	assert.Equal(t, "Prop - Monthly rent", withoutTitle.Title)
}

func TestBuild_NotesPointBackAtSource(t *testing.T) {
	spec, err := testBuilder().Build("200", "", testSplit(relay.TypeWithdrawal, "100.00"), relay.ProportionRule{Percentage: 50, Tag: "rent-p50"})
	require.NoError(t, err)

	assert.Equal(t, "From tx: https://ff.example.com/transactions/show/200", spec.Notes)
	assert.Equal(t, "Monthly rent", spec.Description)
}

func TestDeriveAmount(t *testing.T) {
	tests := []struct {
		amount     string
		percentage int
		want       string
	}{
		{"100.00", 36, "36.00"},
		{"100.00", 50, "50.00"},
		{"33.335", 50, "16.67"},
		{"0.01", 50, "0.01"},
		{"10.00", 100, "10.00"},
		{"120.00", 50, "60.00"},
		{"99.99", 33, "33.00"},
	}

	for _, tt := range tests {
		got := relay.DeriveAmount(decimal.RequireFromString(tt.amount), relay.ProportionRule{Percentage: tt.percentage})
		assert.Equal(t, tt.want, got.StringFixed(2), "%s * %d%%", tt.amount, tt.percentage)
	}
}
