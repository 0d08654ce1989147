package evaluator

import (
	"context"

	"github.com/playpok3r/pok3r/pkg/curve"
)

// DistIBEEncrypt performs a distributed Boneh-Franklin style
// identity-based encryption of the shared value behind message,
// reusing the shared randomness behind r across every identity in a
// batch (callers invoke this once per identity with the same r
// handle, which is exactly why local_verify_encryption_proof can check
// that every ciphertext's c1 component is identical). It replaces the
// original implementation's placeholder `g^id` identity map (flagged
// there as needing a proper hash to curve) with curve.HashToG1.
//
//	c1 = g1^r                              (revealed, same for every id)
//	c2 = e(H(id), pk)^r * e(g1, g2)^message (revealed)
func (e *Evaluator) DistIBEEncrypt(ctx context.Context, message, r Handle, pk curve.G2, id []byte, label string) (curve.G1, curve.GT, error) {
	g1, g2 := curve.Generators()

	c1, err := e.ExpAndRevealG1(ctx, []curve.G1{g1}, []Handle{r}, label+"/c1")
	if err != nil {
		return curve.G1{}, curve.GT{}, err
	}

	hID := curve.HashToG1(id)
	pairingBase, err := curve.Pair(hID, pk)
	if err != nil {
		return curve.G1{}, curve.GT{}, err
	}
	gT, err := curve.Pair(g1, g2)
	if err != nil {
		return curve.G1{}, curve.GT{}, err
	}

	c2, err := e.ExpAndRevealGt(ctx, []curve.GT{pairingBase, gT}, []Handle{r, message}, label+"/c2")
	if err != nil {
		return curve.G1{}, curve.GT{}, err
	}
	return c1, c2, nil
}
