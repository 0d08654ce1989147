// Package party defines peer identity and the address book used to
// assign parties a stable, deterministic index within the protocol.
package party

import (
	"fmt"
	"sort"
)

// ID identifies a party by its public, human readable handle (the
// original implementation used the same string both as network
// identity and evaluator index key).
type ID string

// Book is a read-only address book: a sorted list of peer IDs with a
// deterministic index assignment. The index, not the ID itself, is
// used wherever the protocol needs an integer party number (Beaver
// triple lookup, Lagrange-style combination, etc).
type Book struct {
	ids []ID
}

// NewBook builds a Book from an unordered set of peer IDs, mirroring
// parse_addr_book_from_json: identities are sorted, then assigned
// indices in that order so every honest party computes the same
// mapping without coordination.
func NewBook(ids []ID) *Book {
	sorted := make([]ID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return &Book{ids: sorted}
}

// IDs returns the sorted peer list.
func (b *Book) IDs() []ID { return b.ids }

// N returns the number of parties in the book.
func (b *Book) N() int { return len(b.ids) }

// NodeID returns the 0-based index assigned to id, and whether it is
// a member of the book at all.
func (b *Book) NodeID(id ID) (int, bool) {
	for i, p := range b.ids {
		if p == id {
			return i, true
		}
	}
	return 0, false
}

// demoPeerIDs mirrors parse_addr_book_from_json's three hardcoded
// libp2p-style peer identities, used as the CLI's static three-party
// demo address book since config/addr-book file parsing is out of
// scope.
var demoPeerIDs = []ID{
	"12D3KooWPjceQrSwdWXPyLLeABRXmuqt69Rg3sBYbU1Nft9HyQ6X",
	"12D3KooWH3uVF6wv47WnArKHk5p6cvgCJEb74UTmxztmQDc298L3",
	"12D3KooWQYhTNQdmr3ArTeUHRYzFg94BKyTkoWBDWez9kSCVe2Xo",
}

// DemoBook returns a static in-memory address book of n parties: the
// original's three hardcoded peer identities when n == 3, and
// synthetic "party-N" identities otherwise.
func DemoBook(n int) *Book {
	if n == 3 {
		return NewBook(demoPeerIDs)
	}
	ids := make([]ID, n)
	for i := range ids {
		ids[i] = ID(fmt.Sprintf("party-%d", i+1))
	}
	return NewBook(ids)
}

// Self wraps the calling party's own ID together with its resolved
// index, so callers don't repeatedly look it up.
type Self struct {
	ID    ID
	Index int
	Book  *Book
}

// NewSelf resolves id against book and panics if id is not a member,
// since an evaluator cannot run on behalf of a party the book doesn't
// know about.
func NewSelf(id ID, book *Book) Self {
	idx, ok := book.NodeID(id)
	if !ok {
		panic("party: id " + string(id) + " not present in address book")
	}
	return Self{ID: id, Index: idx, Book: book}
}
