package relay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barretobrock/ff-relay/internal/relay"
)

func TestAppendBacklink_EmptyNotes(t *testing.T) {
	notes := relay.AppendBacklink("", testBaseURL, "901")

	assert.Equal(t, "Proportion tx: https://ff.example.com/transactions/show/901", notes)
}

func TestAppendBacklink_ExistingNotes(t *testing.T) {
	notes := relay.AppendBacklink("paid in cash", testBaseURL, "901")

	assert.Equal(t, "paid in cash\nProportion tx: https://ff.example.com/transactions/show/901", notes)
}

func TestBacklink_RoundTrip(t *testing.T) {
	empty := relay.AppendBacklink("", testBaseURL, "901")
	link, ok := relay.FindBacklink(empty, "901")
	require.True(t, ok)
	assert.Equal(t, "901", link.ID)
	assert.Equal(t, relay.LabelProportion, link.Label)

	nonEmpty := relay.AppendBacklink("some operator note", testBaseURL, "902")
	link, ok = relay.FindBacklink(nonEmpty, "902")
	require.True(t, ok)
	assert.Equal(t, "902", link.ID)
}

func TestFindBacklink_NoMatch(t *testing.T) {
	notes := relay.AppendBacklink("", testBaseURL, "901")

	_, ok := relay.FindBacklink(notes, "999")
	assert.False(t, ok)

	_, ok = relay.FindBacklink("no links here", "901")
	assert.False(t, ok)
}

func TestParseBacklinks_MultipleLines(t *testing.T) {
	notes := relay.SourceBacklink(testBaseURL, "200")
	notes = relay.AppendBacklink(notes, testBaseURL, "901")
	notes = relay.AppendBacklink(notes, testBaseURL, "902")

	links := relay.ParseBacklinks(notes)

	require.Len(t, links, 3)
	assert.Equal(t, relay.Backlink{Label: relay.LabelFrom, ID: "200"}, links[0])
	assert.Equal(t, relay.Backlink{Label: relay.LabelProportion, ID: "901"}, links[1])
	assert.Equal(t, relay.Backlink{Label: relay.LabelProportion, ID: "902"}, links[2])
}

func TestParseBacklinks_PlainHTTP(t *testing.T) {
	links := relay.ParseBacklinks("Proportion tx: http://ledger.local/transactions/show/77")

	require.Len(t, links, 1)
	assert.Equal(t, "77", links[0].ID)
}

func TestDerivedRef(t *testing.T) {
	// A derived transaction's own "From" link never counts as a derived ref.
	_, ok := relay.DerivedRef(relay.SourceBacklink(testBaseURL, "200"))
	assert.False(t, ok)

	notes := relay.AppendBacklink("misc note", testBaseURL, "901")
	id, ok := relay.DerivedRef(notes)
	require.True(t, ok)
	assert.Equal(t, "901", id)

	// Older relay versions wrote "Prop tx" labels; still recognized.
	id, ok = relay.DerivedRef("Prop tx: https://ff.example.com/transactions/show/55")
	require.True(t, ok)
	assert.Equal(t, "55", id)

	_, ok = relay.DerivedRef("")
	assert.False(t, ok)
}
