// Package permutation implements the KZG-based permutation argument
// (component 4.F): given a secret-shared deck f and the canonical
// unpermuted vector v = (1, ω, ..., ω^63), it proves that f is some
// permutation of v without revealing which one. Grounded on
// compute_permutation_argument / verify_permutation_argument in
// original_source/src/main.rs.
package permutation

import (
	"context"
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/playpok3r/pok3r/internal/log"
	"github.com/playpok3r/pok3r/pkg/evaluator"
	"github.com/playpok3r/pok3r/pkg/kzgsrs"
	"github.com/playpok3r/pok3r/pkg/poly"
)

// Proof is the public transcript of the permutation argument: five
// evaluation/proof pairs (Y1..Y3 open the auxiliary polynomial t(X)
// at ω^63, y2 and y2/ω; Y4 opens g(X) and Y5 opens q(X) at y2), plus
// commitments to f, q and t.
type Proof struct {
	Y1, Y2, Y3, Y4, Y5 fr.Element
	Pi1, Pi2, Pi3, Pi4, Pi5 kzgsrs.OpeningProof

	FCom kzgsrs.Commitment
	QCom kzgsrs.Commitment
	TCom kzgsrs.Commitment
}

// Prove runs the distributed permutation-argument prover. cardHandles
// and cardShares are the 64 card handles and this party's shares of
// their values, as produced by shuffle.ShuffleDeck.
func Prove(ctx context.Context, e *evaluator.Evaluator, srs *kzgsrs.SRS, cardHandles []evaluator.Handle, cardShares []fr.Element) (Proof, error) {
	logger := log.For("permutation")
	domain := e.Domain()

	// Step 1-4: r_i, r_i^-1 for i = 0..64, and b_i = r_0^-1 * r_{i+1}.
	riHandles := make([]evaluator.Handle, 65)
	riInvHandles := make([]evaluator.Handle, 65)
	for i := 0; i < 65; i++ {
		ta, tb, tc := e.Beaver()
		hT := e.Ran()
		hRi := e.Ran()
		hRInvI, err := e.Inv(ctx, hRi, hT, ta, tb, tc)
		if err != nil {
			return Proof{}, err
		}
		riHandles[i] = hRi
		riInvHandles[i] = hRInvI
	}

	biHandles := make([]evaluator.Handle, 64)
	for i := 0; i < 64; i++ {
		ta, tb, tc := e.Beaver()
		hBi, err := e.Mult(ctx, riInvHandles[0], riHandles[i+1], ta, tb, tc)
		if err != nil {
			return Proof{}, err
		}
		biHandles[i] = hBi
	}

	// Step 8-9: commit to f(X), the card polynomial.
	fSharePoly := domain.InterpolateOverH(cardShares)
	fShareCom, err := srs.Commit(fSharePoly)
	if err != nil {
		return Proof{}, err
	}
	fCom, err := e.AddG1ElementsFromAllParties(ctx, fShareCom, "perm_f")
	if err != nil {
		return Proof{}, err
	}

	// Step 9-11: v(X), the canonical unpermuted vector, is entirely
	// public so every party commits to it without any network round.
	vEvals := make([]fr.Element, 64)
	copy(vEvals, domain.Powers[:])
	vPoly := domain.InterpolateOverH(vEvals)
	vCom, err := srs.Commit(vPoly)
	if err != nil {
		return Proof{}, err
	}

	y1 := poly.FSHash([][]byte{bytesOf(vCom), bytesOf(fCom)}, 1)[0]

	// Step 13: g(X) = f(X) + y1.
	gEvalShares := make([]fr.Element, 64)
	for i, h := range cardHandles {
		hG := e.ClearAdd(h, y1)
		gEvalShares[i] = e.GetWire(hG)
	}
	gSharePoly := domain.InterpolateOverH(gEvalShares)
	gShareCom, err := srs.Commit(gSharePoly)
	if err != nil {
		return Proof{}, err
	}
	gCom, err := e.AddG1ElementsFromAllParties(ctx, gShareCom, "perm_g")
	if err != nil {
		return Proof{}, err
	}
	logger.Debug().Msg("committed f, v and g")

	// Step 14: h(X) = v(X) + y1, entirely public.
	hEvals := make([]fr.Element, 64)
	for i := range hEvals {
		hEvals[i].Add(&vEvals[i], &y1)
	}
	hPoly := domain.InterpolateOverH(hEvals)

	// Step 15-19: t'_i = r_{i+1}^-1 * (r_i * h_i^-1 * g_i), revealed.
	tPrimeIs := make([]fr.Element, 64)
	for i := 0; i < 64; i++ {
		ta1, tb1, tc1 := e.Beaver()
		ta2, tb2, tc2 := e.Beaver()

		var hInvI fr.Element
		hInvI.Inverse(&hEvals[i])
		hHInvGI := e.Scale(e.ImportShare(gEvalShares[i]), hInvI)

		sPrimeI, err := e.Mult(ctx, riHandles[i], hHInvGI, ta1, tb1, tc1)
		if err != nil {
			return Proof{}, err
		}
		tPrimeI, err := e.Mult(ctx, riInvHandles[i+1], sPrimeI, ta2, tb2, tc2)
		if err != nil {
			return Proof{}, err
		}
		tPrimeIs[i], err = e.OutputWire(ctx, tPrimeI)
		if err != nil {
			return Proof{}, err
		}
	}

	// Step 20-21: t_i = b_i * Π_{j<=i} t'_j, purely local.
	tShares := make([]fr.Element, 64)
	var running fr.Element
	running.SetOne()
	for i := 0; i < 64; i++ {
		running.Mul(&running, &tPrimeIs[i])
		tHandle := e.Scale(biHandles[i], running)
		tShares[i] = e.GetWire(tHandle)
	}

	tSharePoly := domain.InterpolateOverH(tShares)
	tShareCom, err := srs.Commit(tSharePoly)
	if err != nil {
		return Proof{}, err
	}
	tCom, err := e.AddG1ElementsFromAllParties(ctx, tShareCom, "perm_t")
	if err != nil {
		return Proof{}, err
	}

	txByOmega := poly.DomainDivOmega(tSharePoly, domain.Omega)
	hT := hPoly.Mul(tSharePoly)
	gTxByOmega, err := e.SharePolyMult(ctx, gSharePoly, txByOmega)
	if err != nil {
		return Proof{}, err
	}
	dSharePoly := hT.Sub(gTxByOmega)

	// Sanity round: d(X) must vanish at every power of ω.
	for i := 0; i < 64; i++ {
		point := domain.ComputePower(uint64(i))
		hD := e.SharePolyEval(dSharePoly, point)
		v, err := e.OutputWire(ctx, hD)
		if err != nil {
			return Proof{}, err
		}
		if !v.IsZero() {
			logger.Warn().Int("i", i).Msg("d(X) failed to vanish at ω^i")
			return Proof{}, errVanishingCheckFailed
		}
	}

	quotient, _ := dSharePoly.DivideByVanishing(64)
	qShareCom, err := srs.Commit(quotient)
	if err != nil {
		return Proof{}, err
	}
	qCom, err := e.AddG1ElementsFromAllParties(ctx, qShareCom, "perm_q")
	if err != nil {
		return Proof{}, err
	}

	y2 := poly.FSHash([][]byte{bytesOf(vCom), bytesOf(fCom), bytesOf(qCom), bytesOf(tCom), bytesOf(gCom)}, 1)[0]

	w63 := domain.ComputePower(63)
	var y2OverW fr.Element
	var wInv fr.Element
	wInv.Inverse(&domain.Omega)
	y2OverW.Mul(&y2, &wInv)

	hY1 := e.SharePolyEval(tSharePoly, w63)
	pi1, err := e.EvalProofWithSharePoly(ctx, tSharePoly, w63, "perm_pi_1", srs)
	if err != nil {
		return Proof{}, err
	}
	hY2 := e.SharePolyEval(tSharePoly, y2)
	pi2, err := e.EvalProofWithSharePoly(ctx, tSharePoly, y2, "perm_pi_2", srs)
	if err != nil {
		return Proof{}, err
	}
	hY3 := e.SharePolyEval(tSharePoly, y2OverW)
	pi3, err := e.EvalProofWithSharePoly(ctx, tSharePoly, y2OverW, "perm_pi_3", srs)
	if err != nil {
		return Proof{}, err
	}
	hY4 := e.SharePolyEval(gSharePoly, y2)
	pi4, err := e.EvalProofWithSharePoly(ctx, gSharePoly, y2, "perm_pi_4", srs)
	if err != nil {
		return Proof{}, err
	}
	hY5 := e.SharePolyEval(quotient, y2)
	pi5, err := e.EvalProofWithSharePoly(ctx, quotient, y2, "perm_pi_5", srs)
	if err != nil {
		return Proof{}, err
	}

	y1Val, err := e.OutputWire(ctx, hY1)
	if err != nil {
		return Proof{}, err
	}
	y2Val, err := e.OutputWire(ctx, hY2)
	if err != nil {
		return Proof{}, err
	}
	y3Val, err := e.OutputWire(ctx, hY3)
	if err != nil {
		return Proof{}, err
	}
	y4Val, err := e.OutputWire(ctx, hY4)
	if err != nil {
		return Proof{}, err
	}
	y5Val, err := e.OutputWire(ctx, hY5)
	if err != nil {
		return Proof{}, err
	}

	logger.Info().Msg("permutation argument complete")
	return Proof{
		Y1: y1Val, Y2: y2Val, Y3: y3Val, Y4: y4Val, Y5: y5Val,
		Pi1: pi1, Pi2: pi2, Pi3: pi3, Pi4: pi4, Pi5: pi5,
		FCom: fCom, QCom: qCom, TCom: tCom,
	}, nil
}

// Verify checks a Proof entirely locally: it recomputes v(X), the two
// Fiat-Shamir challenges, and checks five KZG openings plus the two
// algebraic identities verify_permutation_argument relies on.
func Verify(domain *poly.Domain, srs *kzgsrs.SRS, proof Proof) bool {
	w63 := domain.ComputePower(63)

	vEvals := make([]fr.Element, 64)
	copy(vEvals, domain.Powers[:])
	vPoly := domain.InterpolateOverH(vEvals)
	vCom, err := srs.Commit(vPoly)
	if err != nil {
		return false
	}

	hash1 := poly.FSHash([][]byte{bytesOf(vCom), bytesOf(proof.FCom)}, 1)[0]

	constY1, err := srs.Commit(poly.Polynomial{hash1})
	if err != nil {
		return false
	}
	var gCom kzgsrs.Commitment
	gCom.Add(&proof.FCom, &constY1)

	hash2 := poly.FSHash([][]byte{bytesOf(vCom), bytesOf(proof.FCom), bytesOf(proof.QCom), bytesOf(proof.TCom), bytesOf(gCom)}, 1)[0]

	var y2OverW, wInv fr.Element
	wInv.Inverse(&domain.Omega)
	y2OverW.Mul(&hash2, &wInv)

	ok := true
	ok = ok && srs.Check(proof.TCom, w63, proof.Y1, proof.Pi1)
	ok = ok && srs.Check(proof.TCom, hash2, proof.Y2, proof.Pi2)
	ok = ok && srs.Check(proof.TCom, y2OverW, proof.Y3, proof.Pi3)
	ok = ok && srs.Check(gCom, hash2, proof.Y4, proof.Pi4)
	ok = ok && srs.Check(proof.QCom, hash2, proof.Y5, proof.Pi5)

	vAtHash2 := vPoly.Evaluate(hash2)
	var lhsInner, lhs, rhs, vanish, one fr.Element
	lhsInner.Add(&vAtHash2, &hash1)
	lhs.Mul(&proof.Y2, &lhsInner)
	var rhsCross fr.Element
	rhsCross.Mul(&proof.Y3, &proof.Y4)
	lhs.Sub(&lhs, &rhsCross)

	one.SetOne()
	vanish.Exp(hash2, big.NewInt(64))
	vanish.Sub(&vanish, &one)
	rhs.Mul(&proof.Y5, &vanish)

	ok = ok && lhs.Equal(&rhs)
	ok = ok && proof.Y1.Equal(&one)

	return ok
}

func bytesOf(g kzgsrs.Commitment) []byte {
	b := g.Bytes()
	return b[:]
}

var errVanishingCheckFailed = vanishErr("permutation: d(X) does not vanish over H")

type vanishErr string

func (e vanishErr) Error() string { return string(e) }

var errTruncatedProof = vanishErr("permutation: truncated proof encoding")

func lenPrefixed(b []byte) []byte {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	return append(lenBuf[:], b...)
}

// byteCursor reads length-prefixed chunks off the front of a buffer,
// the decode-side counterpart of lenPrefixed, so UnmarshalBinary never
// needs to hardcode gnark-crypto's group-element wire sizes.
type byteCursor struct {
	buf []byte
}

func (c *byteCursor) readChunk() ([]byte, error) {
	if len(c.buf) < 8 {
		return nil, errTruncatedProof
	}
	n := binary.LittleEndian.Uint64(c.buf[:8])
	c.buf = c.buf[8:]
	if uint64(len(c.buf)) < n {
		return nil, errTruncatedProof
	}
	b := c.buf[:n]
	c.buf = c.buf[n:]
	return b, nil
}

// MarshalBinary serializes a Proof as y1..y5 ‖ pi1..pi5 ‖ f_com ‖
// q_com ‖ t_com, the field order the protocol's wire format names.
// Only each Pi's H component is serialized: Point and ClaimedValue are
// always overwritten from the public challenge and claimed evaluation
// before Verify uses them, so they carry no independent information.
func (p Proof) MarshalBinary() ([]byte, error) {
	var out []byte
	for _, y := range []fr.Element{p.Y1, p.Y2, p.Y3, p.Y4, p.Y5} {
		b := y.Bytes()
		out = append(out, lenPrefixed(b[:])...)
	}
	for _, pi := range []kzgsrs.OpeningProof{p.Pi1, p.Pi2, p.Pi3, p.Pi4, p.Pi5} {
		b := pi.H.Bytes()
		out = append(out, lenPrefixed(b[:])...)
	}
	for _, com := range []kzgsrs.Commitment{p.FCom, p.QCom, p.TCom} {
		b := com.Bytes()
		out = append(out, lenPrefixed(b[:])...)
	}
	return out, nil
}

// UnmarshalBinary is the exact inverse of MarshalBinary.
func (p *Proof) UnmarshalBinary(data []byte) error {
	c := &byteCursor{buf: data}

	ys := make([]*fr.Element, 5)
	ys[0], ys[1], ys[2], ys[3], ys[4] = &p.Y1, &p.Y2, &p.Y3, &p.Y4, &p.Y5
	for _, y := range ys {
		b, err := c.readChunk()
		if err != nil {
			return err
		}
		y.SetBytes(b)
	}

	pis := make([]*kzgsrs.OpeningProof, 5)
	pis[0], pis[1], pis[2], pis[3], pis[4] = &p.Pi1, &p.Pi2, &p.Pi3, &p.Pi4, &p.Pi5
	for _, pi := range pis {
		b, err := c.readChunk()
		if err != nil {
			return err
		}
		if _, err := pi.H.SetBytes(b); err != nil {
			return err
		}
	}

	coms := make([]*kzgsrs.Commitment, 3)
	coms[0], coms[1], coms[2] = &p.FCom, &p.QCom, &p.TCom
	for _, com := range coms {
		b, err := c.readChunk()
		if err != nil {
			return err
		}
		if _, err := com.SetBytes(b); err != nil {
			return err
		}
	}

	return nil
}
