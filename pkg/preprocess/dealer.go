// Package preprocess models the offline phase the evaluator's beaver()
// operation draws from. The real preprocessing phase (component 4.D,
// explicitly out of scope for the cryptographic core per spec.md §1)
// would generate triples via oblivious transfer or threshold
// homomorphic encryption without any single party learning a, b or c.
// Dealer is a trusted-dealer stand-in: sufficient to exercise the
// evaluator end to end, but not a secure substitute for the real
// offline protocol.
package preprocess

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/playpok3r/pok3r/pkg/party"
)

// Triple is one party's additive share of a Beaver multiplication
// triple (a, b, a*b).
type Triple struct {
	A, B, C fr.Element
}

// Dealer generates batches of Beaver triples for a fixed set of
// parties and hands each party its own share sequence.
type Dealer struct {
	book *party.Book
}

// NewDealer constructs a dealer for the given address book.
func NewDealer(book *party.Book) *Dealer {
	return &Dealer{book: book}
}

// Generate samples count triples and returns, for every party ID in
// the book, its slice of additive shares (shares[id][i] is that
// party's share of triple i).
func (d *Dealer) Generate(count int) map[party.ID][]Triple {
	n := d.book.N()
	out := make(map[party.ID][]Triple, n)
	for _, id := range d.book.IDs() {
		out[id] = make([]Triple, count)
	}

	for i := 0; i < count; i++ {
		a := randomElement()
		b := randomElement()
		var c fr.Element
		c.Mul(&a, &b)

		aShares := additiveShares(a, n)
		bShares := additiveShares(b, n)
		cShares := additiveShares(c, n)

		for idx, id := range d.book.IDs() {
			out[id][i] = Triple{A: aShares[idx], B: bShares[idx], C: cShares[idx]}
		}
	}
	return out
}

func randomElement() fr.Element {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		panic(err)
	}
	return e
}

// additiveShares splits v into n shares summing to v: n-1 random
// shares plus a final balancing share.
func additiveShares(v fr.Element, n int) []fr.Element {
	shares := make([]fr.Element, n)
	var sum fr.Element
	for i := 0; i < n-1; i++ {
		shares[i] = randomElement()
		sum.Add(&sum, &shares[i])
	}
	shares[n-1].Sub(&v, &sum)
	return shares
}
