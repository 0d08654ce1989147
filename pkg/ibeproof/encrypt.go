package ibeproof

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/playpok3r/pok3r/internal/log"
	"github.com/playpok3r/pok3r/pkg/curve"
	"github.com/playpok3r/pok3r/pkg/evaluator"
	"github.com/playpok3r/pok3r/pkg/kzgsrs"
	"github.com/playpok3r/pok3r/pkg/poly"
)

// Ciphertext is one recipient's IBE-encrypted card.
type Ciphertext struct {
	C1 curve.G1
	C2 curve.GT
}

// EncryptProof is the full public transcript of encrypt_and_prove: one
// ciphertext per card/identity pair, the masked openings that let a
// verifier check those ciphertexts against the card commitment, and
// the batched sigma proof tying everything together.
type EncryptProof struct {
	PK                curve.G2
	IDs               [][]byte
	CardCommitment    curve.G1
	MaskedCommitments []curve.G1
	MaskedEvals       []fr.Element
	EvalProofs        []curve.G1
	Ciphertexts       []Ciphertext
	SigmaProof        *SigmaProof
}

// Bytes deterministically serializes the public (pre-sigma-proof)
// portion of an EncryptProof, the input to the fs_hash batching
// challenge in both EncryptAndProve and LocalVerifyEncryptionProof.
func (p EncryptProof) Bytes() []byte {
	var out []byte
	pk := p.PK.Bytes()
	out = append(out, pk[:]...)
	for _, id := range p.IDs {
		out = append(out, lenPrefixed(id)...)
	}
	cc := p.CardCommitment.Bytes()
	out = append(out, cc[:]...)
	for _, d := range p.MaskedCommitments {
		b := d.Bytes()
		out = append(out, b[:]...)
	}
	for _, v := range p.MaskedEvals {
		b := v.Bytes()
		out = append(out, b[:]...)
	}
	for _, pi := range p.EvalProofs {
		b := pi.Bytes()
		out = append(out, b[:]...)
	}
	for _, c := range p.Ciphertexts {
		c1 := c.C1.Bytes()
		c2 := c.C2.Bytes()
		out = append(out, c1[:]...)
		out = append(out, c2[:]...)
	}
	return out
}

func lenPrefixed(b []byte) []byte {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(b)))
	return append(lenBuf[:], b...)
}

// byteCursor reads a sequence of length-prefixed chunks off the front
// of a buffer, the decode-side counterpart of lenPrefixed. Every
// chunk's own width (32 bytes for an fr.Element, the native width of a
// G1/G2/GT encoding) is recovered from its prefix rather than assumed,
// so decoding never needs to hardcode gnark-crypto's wire sizes.
type byteCursor struct {
	buf []byte
}

var errTruncatedEncoding = encodingErr("ibeproof: truncated proof encoding")

type encodingErr string

func (e encodingErr) Error() string { return string(e) }

func (c *byteCursor) readUint64() (uint64, error) {
	if len(c.buf) < 8 {
		return 0, errTruncatedEncoding
	}
	v := binary.LittleEndian.Uint64(c.buf[:8])
	c.buf = c.buf[8:]
	return v, nil
}

func (c *byteCursor) readChunk() ([]byte, error) {
	n, err := c.readUint64()
	if err != nil {
		return nil, err
	}
	if uint64(len(c.buf)) < n {
		return nil, errTruncatedEncoding
	}
	b := c.buf[:n]
	c.buf = c.buf[n:]
	return b, nil
}

func decodeFrChunk(b []byte) fr.Element {
	var x fr.Element
	x.SetBytes(b)
	return x
}

// MarshalBinary serializes an EncryptProof as pk ‖ ids ‖
// card_commitment ‖ masked_commitments ‖ masked_evals ‖ eval_proofs ‖
// ciphertexts ‖ sigma_proof, the field order named by the protocol's
// wire format, with every component length-prefixed so
// UnmarshalBinary is the exact inverse.
func (p EncryptProof) MarshalBinary() ([]byte, error) {
	if p.SigmaProof == nil {
		return nil, encodingErr("ibeproof: EncryptProof has no sigma proof to serialize")
	}

	var out []byte
	pk := p.PK.Bytes()
	out = append(out, lenPrefixed(pk[:])...)

	idCount := make([]byte, 8)
	binary.LittleEndian.PutUint64(idCount, uint64(len(p.IDs)))
	out = append(out, idCount...)
	for _, id := range p.IDs {
		out = append(out, lenPrefixed(id)...)
	}

	cc := p.CardCommitment.Bytes()
	out = append(out, lenPrefixed(cc[:])...)

	cardCount := make([]byte, 8)
	binary.LittleEndian.PutUint64(cardCount, uint64(len(p.MaskedCommitments)))
	out = append(out, cardCount...)

	for _, d := range p.MaskedCommitments {
		b := d.Bytes()
		out = append(out, lenPrefixed(b[:])...)
	}
	for _, v := range p.MaskedEvals {
		b := v.Bytes()
		out = append(out, lenPrefixed(b[:])...)
	}
	for _, pi := range p.EvalProofs {
		b := pi.Bytes()
		out = append(out, lenPrefixed(b[:])...)
	}
	for _, ct := range p.Ciphertexts {
		c1 := ct.C1.Bytes()
		c2 := ct.C2.Bytes()
		out = append(out, lenPrefixed(c1[:])...)
		out = append(out, lenPrefixed(c2[:])...)
	}

	sigmaBytes, err := p.SigmaProof.MarshalBinary()
	if err != nil {
		return nil, err
	}
	out = append(out, lenPrefixed(sigmaBytes)...)
	return out, nil
}

// UnmarshalBinary is the exact inverse of MarshalBinary.
func (p *EncryptProof) UnmarshalBinary(data []byte) error {
	c := &byteCursor{buf: data}

	pkBytes, err := c.readChunk()
	if err != nil {
		return err
	}
	if _, err := p.PK.SetBytes(pkBytes); err != nil {
		return err
	}

	idCount, err := c.readUint64()
	if err != nil {
		return err
	}
	ids := make([][]byte, idCount)
	for i := range ids {
		id, err := c.readChunk()
		if err != nil {
			return err
		}
		ids[i] = append([]byte(nil), id...)
	}
	p.IDs = ids

	ccBytes, err := c.readChunk()
	if err != nil {
		return err
	}
	if _, err := p.CardCommitment.SetBytes(ccBytes); err != nil {
		return err
	}

	cardCount, err := c.readUint64()
	if err != nil {
		return err
	}

	dIs := make([]curve.G1, cardCount)
	for i := range dIs {
		b, err := c.readChunk()
		if err != nil {
			return err
		}
		if _, err := dIs[i].SetBytes(b); err != nil {
			return err
		}
	}
	p.MaskedCommitments = dIs

	vs := make([]fr.Element, cardCount)
	for i := range vs {
		b, err := c.readChunk()
		if err != nil {
			return err
		}
		vs[i] = decodeFrChunk(b)
	}
	p.MaskedEvals = vs

	pis := make([]curve.G1, cardCount)
	for i := range pis {
		b, err := c.readChunk()
		if err != nil {
			return err
		}
		if _, err := pis[i].SetBytes(b); err != nil {
			return err
		}
	}
	p.EvalProofs = pis

	cts := make([]Ciphertext, cardCount)
	for i := range cts {
		c1b, err := c.readChunk()
		if err != nil {
			return err
		}
		c2b, err := c.readChunk()
		if err != nil {
			return err
		}
		var ct Ciphertext
		if _, err := ct.C1.SetBytes(c1b); err != nil {
			return err
		}
		if err := ct.C2.SetBytes(c2b); err != nil {
			return err
		}
		cts[i] = ct
	}
	p.Ciphertexts = cts

	sigmaBytes, err := c.readChunk()
	if err != nil {
		return err
	}
	var sigma SigmaProof
	if err := sigma.UnmarshalBinary(sigmaBytes); err != nil {
		return err
	}
	p.SigmaProof = &sigma

	return nil
}

// EncryptAndProve runs the distributed encrypt-and-prove protocol:
// every card is IBE-encrypted to its recipient identity, masked and
// opened so a verifier can check the ciphertext against the public
// card commitment, and the whole batch is tied together with one
// sigma proof. Grounded on encrypt_and_prove in
// original_source/src/main.rs.
func EncryptAndProve(ctx context.Context, e *evaluator.Evaluator, srs *kzgsrs.SRS, cardHandles []evaluator.Handle, cardCommitment curve.G1, pk curve.G2, ids [][]byte) (EncryptProof, error) {
	logger := log.For("ibeproof")
	domain := e.Domain()

	r := e.Ran()

	zIs := make([]evaluator.Handle, len(cardHandles))
	dIs := make([]curve.G1, len(cardHandles))
	vReconstructed := make([]fr.Element, len(cardHandles))
	piIs := make([]curve.G1, len(cardHandles))
	ciphertexts := make([]Ciphertext, len(cardHandles))

	piPlainVec := make([]kzgsrs.OpeningProof, len(cardHandles))
	for i := range cardHandles {
		z := domain.ComputePower(uint64(i))
		piPlain, err := e.EvalProof(ctx, cardHandles, z, fmt.Sprintf("ibe_pi_plain_%d", i), srs)
		if err != nil {
			return EncryptProof{}, err
		}
		piPlainVec[i] = piPlain
	}

	for i, cardH := range cardHandles {
		ta, tb, tc := e.Beaver()

		zI := e.Ran()
		zIs[i] = zI

		c1I, c2I, err := e.DistIBEEncrypt(ctx, cardH, r, pk, ids[i], fmt.Sprintf("ibe_ct_%d", i))
		if err != nil {
			return EncryptProof{}, err
		}
		ciphertexts[i] = Ciphertext{C1: c1I, C2: c2I}

		dI, err := e.ExpAndRevealG1(ctx, []curve.G1{cardCommitment}, []evaluator.Handle{zI}, fmt.Sprintf("ibe_d_%d", i))
		if err != nil {
			return EncryptProof{}, err
		}
		dIs[i] = dI

		vI, err := e.Mult(ctx, zI, cardH, ta, tb, tc)
		if err != nil {
			return EncryptProof{}, err
		}
		vVal, err := e.OutputWire(ctx, vI)
		if err != nil {
			return EncryptProof{}, err
		}
		vReconstructed[i] = vVal

		// The per-card evaluation proof pi_i is the plain quotient
		// commitment for card_handles at omega^i, raised to the mask
		// z_i and revealed; this lets a verifier check d_i's opening
		// without a fresh KZG round per card.
		zVal := e.GetWire(zI)
		piShare := curve.ExpG1(piPlainVec[i].H, zVal)
		piI, err := e.AddG1ElementsFromAllParties(ctx, piShare, fmt.Sprintf("ibe_pi_%d", i))
		if err != nil {
			return EncryptProof{}, err
		}
		piIs[i] = piI
	}

	tmpProof := EncryptProof{
		PK: pk, IDs: ids, CardCommitment: cardCommitment,
		MaskedCommitments: dIs, MaskedEvals: vReconstructed,
		EvalProofs: piIs, Ciphertexts: ciphertexts,
	}

	s := poly.FSHash([][]byte{tmpProof.Bytes()}, len(cardHandles))

	var eBatch curve.GT
	eBatch.SetOne()
	for i, id := range ids {
		hID := curve.HashToG1(id)
		h, err := curve.Pair(hID, pk)
		if err != nil {
			return EncryptProof{}, err
		}
		term := curve.ExpGT(h, s[i])
		eBatch.Mul(&eBatch, &term)
	}

	g1Gen, _ := curve.Generators()
	proof, err := DistSigmaProof(ctx, e, cardCommitment, g1Gen, eBatch, zIs, r, s)
	if err != nil {
		return EncryptProof{}, err
	}
	tmpProof.SigmaProof = &proof

	logger.Info().Int("cards", len(cardHandles)).Msg("encrypt-and-prove complete")
	return tmpProof, nil
}

// LocalVerifyEncryptionProof checks an EncryptProof entirely locally:
// every ciphertext must share the same c1 component, every per-card
// masked opening (d_i, ω^i, v_i, π_i) must pass kzg_check against the
// supplied SRS, and the batched sigma proof must verify against the
// recomputed e_batch, d_batch and c2_batch. Grounded on
// local_verify_encryption_proof in original_source/src/main.rs.
func LocalVerifyEncryptionProof(domain *poly.Domain, srs *kzgsrs.SRS, proof EncryptProof) bool {
	if len(proof.Ciphertexts) == 0 || proof.SigmaProof == nil {
		return false
	}
	if len(proof.MaskedCommitments) != len(proof.Ciphertexts) ||
		len(proof.MaskedEvals) != len(proof.Ciphertexts) ||
		len(proof.EvalProofs) != len(proof.Ciphertexts) {
		return false
	}
	c1 := proof.Ciphertexts[0].C1
	for i := 1; i < len(proof.Ciphertexts); i++ {
		if !proof.Ciphertexts[i].C1.Equal(&c1) {
			return false
		}
	}

	// Per-position kzg_check(d_i, ω^i, v_i, π_i): without this, a
	// prover could submit any garbage π_i and still pass as long as
	// the sigma proof and equal-c1 check hold, since neither of those
	// touches MaskedCommitments/MaskedEvals/EvalProofs individually.
	for i := range proof.MaskedCommitments {
		point := domain.ComputePower(uint64(i))
		opening := kzgsrs.OpeningProof{H: proof.EvalProofs[i]}
		if !srs.Check(proof.MaskedCommitments[i], point, proof.MaskedEvals[i], opening) {
			return false
		}
	}

	s := poly.FSHash([][]byte{proof.Bytes()}, len(proof.Ciphertexts))

	var eBatch curve.GT
	eBatch.SetOne()
	for i, id := range proof.IDs {
		hID := curve.HashToG1(id)
		h, err := curve.Pair(hID, proof.PK)
		if err != nil {
			return false
		}
		term := curve.ExpGT(h, s[i])
		eBatch.Mul(&eBatch, &term)
	}

	var dBatch curve.G1
	first := true
	for i, d := range proof.MaskedCommitments {
		term := curve.ExpG1(d, s[i])
		if first {
			dBatch = term
			first = false
			continue
		}
		dBatch.Add(&dBatch, &term)
	}

	var c2Batch curve.GT
	c2Batch.SetOne()
	for _, c := range proof.Ciphertexts {
		c2Batch.Mul(&c2Batch, &c.C2)
	}

	g1Gen, _ := curve.Generators()
	return LocalVerifySigmaProof(proof.CardCommitment, dBatch, g1Gen, c1, eBatch, c2Batch, *proof.SigmaProof)
}
