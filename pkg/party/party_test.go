package party_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpok3r/pok3r/pkg/party"
)

func TestNewBookSortsAndIndexes(t *testing.T) {
	ids := []party.ID{"zebra", "alpha", "mid"}
	book := party.NewBook(ids)

	require.Equal(t, 3, book.N())
	assert.Equal(t, []party.ID{"alpha", "mid", "zebra"}, book.IDs())

	idx, ok := book.NodeID("alpha")
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = book.NodeID("zebra")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = book.NodeID("nope")
	assert.False(t, ok)
}

func TestDemoBookThreeParties(t *testing.T) {
	book := party.DemoBook(3)
	require.Equal(t, 3, book.N())
	for _, id := range book.IDs() {
		assert.Contains(t, string(id), "12D3KooW")
	}
}

func TestDemoBookOtherSizes(t *testing.T) {
	book := party.DemoBook(5)
	require.Equal(t, 5, book.N())
	_, ok := book.NodeID("party-1")
	assert.True(t, ok)
}

func TestNewSelfPanicsOnUnknownID(t *testing.T) {
	book := party.DemoBook(3)
	assert.Panics(t, func() {
		party.NewSelf("not-a-member", book)
	})
}

func TestNewSelfResolvesIndex(t *testing.T) {
	book := party.NewBook([]party.ID{"a", "b", "c"})
	self := party.NewSelf("b", book)
	assert.Equal(t, 1, self.Index)
	assert.Equal(t, party.ID("b"), self.ID)
}
