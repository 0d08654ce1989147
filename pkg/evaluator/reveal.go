package evaluator

import (
	"context"

	"github.com/playpok3r/pok3r/pkg/curve"
)

// OutputWireInExponent reveals g1^x for the logical value x behind h,
// without ever reconstructing x itself: every party raises the shared
// generator to its own share and the group-element contributions are
// summed (which, in the exponent, is the same as summing the shares).
func (e *Evaluator) OutputWireInExponent(ctx context.Context, h Handle) (curve.G1, error) {
	g1, _ := curve.Generators()
	v := e.GetWire(h)
	local := curve.ExpG1(g1, v)
	return e.AddG1ElementsFromAllParties(ctx, local, "exp/"+string(h))
}

// ExpAndRevealG1 computes Π bases[i]^exps[i] (the product taken over
// bases, each raised to the shared exponent named by exps[i]) and
// reveals the resulting G1 point to everyone under label.
func (e *Evaluator) ExpAndRevealG1(ctx context.Context, bases []curve.G1, exps []Handle, label string) (curve.G1, error) {
	if len(bases) != len(exps) {
		panic("evaluator: ExpAndRevealG1 requires matching bases/exps lengths")
	}
	var acc curve.G1
	for i := range bases {
		term := curve.ExpG1(bases[i], e.GetWire(exps[i]))
		if i == 0 {
			acc = term
		} else {
			acc.Add(&acc, &term)
		}
	}
	return e.AddG1ElementsFromAllParties(ctx, acc, label)
}

// ExpAndRevealGt is the GT-group analogue of ExpAndRevealG1.
func (e *Evaluator) ExpAndRevealGt(ctx context.Context, bases []curve.GT, exps []Handle, label string) (curve.GT, error) {
	if len(bases) != len(exps) {
		panic("evaluator: ExpAndRevealGt requires matching bases/exps lengths")
	}
	var acc curve.GT
	acc.SetOne()
	for i := range bases {
		term := curve.ExpGT(bases[i], e.GetWire(exps[i]))
		acc.Mul(&acc, &term)
	}
	return e.addGtElementsFromAllParties(ctx, acc, label)
}

// AddG1ElementsFromAllParties broadcasts this party's local G1
// element under label and returns the sum of every party's
// contribution, the building block every exponent-reveal operation
// funnels through.
func (e *Evaluator) AddG1ElementsFromAllParties(ctx context.Context, local curve.G1, label string) (curve.G1, error) {
	payload := local.Bytes()
	if err := e.net.Broadcast(ctx, label, payload[:]); err != nil {
		return curve.G1{}, err
	}
	msgs, err := e.net.Collect(ctx, label, e.self.Book.N())
	if err != nil {
		return curve.G1{}, err
	}
	var sum curve.G1
	first := true
	for _, m := range msgs {
		var p curve.G1
		if _, err := p.SetBytes(m); err != nil {
			return curve.G1{}, err
		}
		if first {
			sum = p
			first = false
			continue
		}
		sum.Add(&sum, &p)
	}
	return sum, nil
}

func (e *Evaluator) addGtElementsFromAllParties(ctx context.Context, local curve.GT, label string) (curve.GT, error) {
	payload := local.Bytes()
	if err := e.net.Broadcast(ctx, label, payload[:]); err != nil {
		return curve.GT{}, err
	}
	msgs, err := e.net.Collect(ctx, label, e.self.Book.N())
	if err != nil {
		return curve.GT{}, err
	}
	sum := new(curve.GT)
	sum.SetOne()
	for _, m := range msgs {
		var p curve.GT
		if err := p.SetBytes(m); err != nil {
			return curve.GT{}, err
		}
		sum.Mul(sum, &p)
	}
	return *sum, nil
}
