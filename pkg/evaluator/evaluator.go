// Package evaluator implements the MPC core (component 4.D): the
// additive n-of-n secret-sharing machinery (ran, beaver, add,
// clear_add, scale, mult, inv, output_wire) plus the higher-level
// group-exponentiation and shared-polynomial operations the shuffle,
// permutation and encrypt-and-prove protocols are built from. Its
// round structure is grounded on luxfi-threshold's pkg/protocol
// MultiHandler (handler.go): a labeled broadcast followed by a
// labeled collect, one round per network-touching operation.
package evaluator

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/rs/zerolog"

	"github.com/playpok3r/pok3r/internal/log"
	"github.com/playpok3r/pok3r/pkg/networking"
	"github.com/playpok3r/pok3r/pkg/party"
	"github.com/playpok3r/pok3r/pkg/poly"
	"github.com/playpok3r/pok3r/pkg/preprocess"
)

// Handle names a wire: an additive share of a logical value that no
// single party ever reconstructs unless the protocol explicitly opens
// it via OutputWire or a reveal operation.
type Handle string

// Evaluator holds one party's view of the MPC: its own additive
// shares of every wire, its remaining Beaver triples, and the
// broadcast channel it shares with its peers.
type Evaluator struct {
	self    party.Self
	net     networking.Broadcaster
	domain  *poly.Domain
	triples []preprocess.Triple
	nextTri int

	wires map[Handle]fr.Element

	labelCounter uint64
	log          zerolog.Logger
}

// New constructs an Evaluator for self, wired to net, with triples
// pre-generated by the offline dealer for this party and the shared
// evaluation domain H.
func New(self party.Self, net networking.Broadcaster, domain *poly.Domain, triples []preprocess.Triple) *Evaluator {
	return &Evaluator{
		self:    self,
		net:     net,
		domain:  domain,
		triples: triples,
		wires:   make(map[Handle]fr.Element),
		log:     log.For("evaluator").With().Str("party", string(self.ID)).Logger(),
	}
}

// newHandle allocates a fresh wire name from this party's own counter.
// Crucially it does NOT embed self.ID: every honest party executes
// the same sequence of evaluator operations in lockstep (control flow
// only ever branches on publicly reconstructed values, never on a
// private share), so the n-th handle allocated by party A's evaluator
// and the n-th handle allocated by party B's evaluator name the same
// logical wire. Any operation that turns a handle into a network
// label (Mult's mask-opening round, OutputWire, the reveal helpers)
// depends on that agreement to rendezvous on the same LocalBus label.
func (e *Evaluator) newHandle(tag string) Handle {
	n := atomic.AddUint64(&e.labelCounter, 1)
	return Handle(fmt.Sprintf("%s/%d", tag, n))
}

func (e *Evaluator) set(h Handle, v fr.Element) Handle {
	if _, exists := e.wires[h]; exists {
		panic("evaluator: handle " + string(h) + " already written")
	}
	e.wires[h] = v
	return h
}

// GetWire returns this party's share of h.
func (e *Evaluator) GetWire(h Handle) fr.Element {
	v, ok := e.wires[h]
	if !ok {
		panic("evaluator: unknown handle " + string(h))
	}
	return v
}

// Self exposes the evaluator's own party identity.
func (e *Evaluator) Self() party.Self { return e.self }

// Domain exposes the shared 64-element evaluation domain.
func (e *Evaluator) Domain() *poly.Domain { return e.domain }

// FixedWireHandle registers a handle whose value is publicly known to
// every party, for the small number of cards whose position in the
// deck is fixed rather than secret (e.g. the reserved top slots in
// ShuffleDeck). Only the lowest-indexed party holds c as its share;
// every other party holds zero, so the shares sum to c.
func (e *Evaluator) FixedWireHandle(c fr.Element) Handle {
	var v fr.Element
	if e.self.Index == 0 {
		v = c
	}
	return e.set(e.newHandle("fixed"), v)
}

// ImportShare registers a handle for a value this party already holds
// a share of locally (e.g. one coefficient of a polynomial it just
// interpolated), without touching the network.
func (e *Evaluator) ImportShare(v fr.Element) Handle {
	return e.set(e.newHandle("import"), v)
}

// Ran draws this party's share of a fresh logical random field
// element. No network round is needed: the value is never
// reconstructed, so each party is free to pick its own share
// independently.
func (e *Evaluator) Ran() Handle {
	var v fr.Element
	if _, err := v.SetRandom(); err != nil {
		panic(err)
	}
	return e.set(e.newHandle("ran"), v)
}

// Beaver pops the next pre-generated Beaver triple for this party.
func (e *Evaluator) Beaver() (Handle, Handle, Handle) {
	if e.nextTri >= len(e.triples) {
		panic("evaluator: preprocessing triples exhausted")
	}
	t := e.triples[e.nextTri]
	e.nextTri++
	return e.set(e.newHandle("beaverA"), t.A),
		e.set(e.newHandle("beaverB"), t.B),
		e.set(e.newHandle("beaverC"), t.C)
}

// Add returns a handle to the local (share-wise) sum a+b; purely
// local since addition is linear in the shares.
func (e *Evaluator) Add(a, b Handle) Handle {
	av, bv := e.GetWire(a), e.GetWire(b)
	var sum fr.Element
	sum.Add(&av, &bv)
	return e.set(e.newHandle("add"), sum)
}

// ClearAdd adds the public constant c to the shared value behind a.
// Only the lowest-indexed party actually adds c to its own share; the
// rest pass their share through unchanged, so the constant is added
// exactly once upon reconstruction.
func (e *Evaluator) ClearAdd(a Handle, c fr.Element) Handle {
	v := e.GetWire(a)
	if e.self.Index == 0 {
		v.Add(&v, &c)
	}
	return e.set(e.newHandle("clearadd"), v)
}

// Scale returns a handle to c*a, computed locally by every party since
// scaling by a public constant is linear.
func (e *Evaluator) Scale(a Handle, c fr.Element) Handle {
	v := e.GetWire(a)
	var out fr.Element
	out.Mul(&v, &c)
	return e.set(e.newHandle("scale"), out)
}

// Mult implements the standard Beaver multiplication protocol:
// broadcast the masked differences d=a-ta, e=b-tb, reconstruct them
// publicly, then combine locally as tc + d*tb + e*ta (+ d*e on exactly
// one party) to get a fresh share of a*b.
func (e *Evaluator) Mult(ctx context.Context, a, b, ta, tb, tc Handle) (Handle, error) {
	av, bv := e.GetWire(a), e.GetWire(b)
	tav, tbv, tcv := e.GetWire(ta), e.GetWire(tb), e.GetWire(tc)

	var d, eShare fr.Element
	d.Sub(&av, &tav)
	eShare.Sub(&bv, &tbv)

	label := e.newHandle("mult-open")
	e.log.Debug().Str("label", string(label)).Msg("opening beaver mask pair")
	d1, e1, err := e.openPair(ctx, string(label), d, eShare)
	if err != nil {
		return "", err
	}

	var term1, term2, out fr.Element
	term1.Mul(&d1, &tbv)
	term2.Mul(&e1, &tav)
	out.Add(&tcv, &term1)
	out.Add(&out, &term2)
	if e.self.Index == 0 {
		var de fr.Element
		de.Mul(&d1, &e1)
		out.Add(&out, &de)
	}
	return e.set(e.newHandle("mult"), out), nil
}

// Inv computes a fresh share of a^-1 using a random mask r and a
// Beaver triple: mask a by multiplying with r, open the product
// publicly, then scale r's share by the public inverse.
func (e *Evaluator) Inv(ctx context.Context, a, r, ta, tb, tc Handle) (Handle, error) {
	masked, err := e.Mult(ctx, a, r, ta, tb, tc)
	if err != nil {
		return "", err
	}
	m, err := e.OutputWire(ctx, masked)
	if err != nil {
		return "", err
	}
	if m.IsZero() {
		return "", fmt.Errorf("evaluator: inverse of zero wire")
	}
	var mInv fr.Element
	mInv.Inverse(&m)
	return e.Scale(r, mInv), nil
}

// OutputWire broadcasts this party's share of h and returns the
// reconstructed value (the sum of every party's share).
func (e *Evaluator) OutputWire(ctx context.Context, h Handle) (fr.Element, error) {
	v := e.GetWire(h)
	shares, err := e.openPairLabeled(ctx, "output/"+string(h), v)
	if err != nil {
		return fr.Element{}, err
	}
	var sum fr.Element
	for _, s := range shares {
		sum.Add(&sum, &s)
	}
	return sum, nil
}

// openPair broadcasts two field elements under one label and returns
// their reconstructed (summed) values, used by Mult to open d and e
// in a single network round.
func (e *Evaluator) openPair(ctx context.Context, label string, x, y fr.Element) (fr.Element, fr.Element, error) {
	payload := append(encodeElement(x), encodeElement(y)...)
	if err := e.net.Broadcast(ctx, label, payload); err != nil {
		return fr.Element{}, fr.Element{}, err
	}
	msgs, err := e.net.Collect(ctx, label, e.self.Book.N())
	if err != nil {
		return fr.Element{}, fr.Element{}, err
	}
	var sumX, sumY fr.Element
	for _, m := range msgs {
		xi, yi := decodeElementPair(m)
		sumX.Add(&sumX, &xi)
		sumY.Add(&sumY, &yi)
	}
	return sumX, sumY, nil
}

func (e *Evaluator) openPairLabeled(ctx context.Context, label string, x fr.Element) ([]fr.Element, error) {
	if err := e.net.Broadcast(ctx, label, encodeElement(x)); err != nil {
		return nil, err
	}
	msgs, err := e.net.Collect(ctx, label, e.self.Book.N())
	if err != nil {
		return nil, err
	}
	out := make([]fr.Element, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, decodeElement(m))
	}
	return out, nil
}
