package evaluator

import (
	"context"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/playpok3r/pok3r/pkg/kzgsrs"
	"github.com/playpok3r/pok3r/pkg/poly"
)

// SharePolyMult computes this party's additive share of the
// coefficient-wise product P(X)*Q(X), given p and q as this party's
// own shares of P and Q's coefficients. Every cross term p_i*q_j is a
// genuine product of two secret values, so each one goes through a
// full Beaver multiplication and its own network round; this is the
// naive O(deg(p)*deg(q)) construction and is the first thing to batch
// if this protocol needs to run at a larger scale than one 64-card
// deck.
func (e *Evaluator) SharePolyMult(ctx context.Context, p, q poly.Polynomial) (poly.Polynomial, error) {
	pHandles := e.registerShares(p)
	qHandles := e.registerShares(q)

	out := make(poly.Polynomial, len(p)+len(q)-1)
	for i, ph := range pHandles {
		for j, qh := range qHandles {
			ta, tb, tc := e.Beaver()
			prodH, err := e.Mult(ctx, ph, qh, ta, tb, tc)
			if err != nil {
				return nil, err
			}
			prod := e.GetWire(prodH)
			out[i+j].Add(&out[i+j], &prod)
		}
	}
	return out, nil
}

func (e *Evaluator) registerShares(p poly.Polynomial) []Handle {
	handles := make([]Handle, len(p))
	for i, c := range p {
		handles[i] = e.set(e.newHandle("sharepoly-coeff"), c)
	}
	return handles
}

// SharePolyEval evaluates this party's share of p at the public point
// x via Horner's rule; this is linear in the shared coefficients so it
// needs no network round. The returned handle wraps this party's
// share of p(x).
func (e *Evaluator) SharePolyEval(p poly.Polynomial, x fr.Element) Handle {
	v := p.Evaluate(x)
	return e.set(e.newHandle("sharepoly-eval"), v)
}

// EvalProofWithSharePoly produces a KZG opening-proof commitment for
// p at point, where p is this party's share of the full polynomial.
// Synthetic division by (X - point) is linear in p's coefficients, so
// each party divides its own share locally; committing to that share
// of the quotient and summing the commitments across parties (the
// same add_g1_elements_from_all_parties pattern every other reveal
// uses) yields a correct combined commitment to the true quotient
// polynomial without anyone learning p or the quotient itself.
func (e *Evaluator) EvalProofWithSharePoly(ctx context.Context, p poly.Polynomial, point fr.Element, label string, srs *kzgsrs.SRS) (kzgsrs.OpeningProof, error) {
	qShare := poly.DivideLinear(p, point)
	localCommit, err := srs.Commit(qShare)
	if err != nil {
		return kzgsrs.OpeningProof{}, err
	}
	combined, err := e.AddG1ElementsFromAllParties(ctx, localCommit, label)
	if err != nil {
		return kzgsrs.OpeningProof{}, err
	}
	return kzgsrs.OpeningProof{H: combined}, nil
}

// EvalProof is EvalProofWithSharePoly over a set of evaluation-domain
// handles instead of an already-interpolated share polynomial: it
// first interpolates this party's shares of the evaluations into a
// share of the coefficient vector (again linear, hence local), then
// proceeds exactly as EvalProofWithSharePoly.
func (e *Evaluator) EvalProof(ctx context.Context, handles []Handle, point fr.Element, label string, srs *kzgsrs.SRS) (kzgsrs.OpeningProof, error) {
	evals := make([]fr.Element, len(handles))
	for i, h := range handles {
		evals[i] = e.GetWire(h)
	}
	share := e.domain.InterpolateOverH(evals)
	return e.EvalProofWithSharePoly(ctx, share, point, label, srs)
}
