package ibeproof_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpok3r/pok3r/internal/test"
	"github.com/playpok3r/pok3r/pkg/curve"
	"github.com/playpok3r/pok3r/pkg/evaluator"
	"github.com/playpok3r/pok3r/pkg/ibeproof"
	"github.com/playpok3r/pok3r/pkg/kzgsrs"
	"github.com/playpok3r/pok3r/pkg/poly"
	"github.com/playpok3r/pok3r/pkg/shuffle"
)

func demoIdentities(n int) [][]byte {
	ids := make([][]byte, n)
	for i := range ids {
		ids[i] = []byte(fmt.Sprintf("identity-%d", i))
	}
	return ids
}

// buildEncryptProof runs shuffle + encrypt-and-prove across 3 parties
// against a fixed demo IBE key, and returns the resulting transcript.
func buildEncryptProof(t *testing.T) ibeproof.EncryptProof {
	t.Helper()
	srs, err := kzgsrs.NewInsecureTestSRS(256)
	require.NoError(t, err)

	var sk fr.Element
	sk.SetUint64(1234567)
	_, g2 := curve.Generators()
	pk := curve.ExpG2(g2, sk)
	ids := demoIdentities(64)

	proofs, err := test.RunParties(3, 40000, func(ctx context.Context, e *evaluator.Evaluator) (ibeproof.EncryptProof, error) {
		deck, err := shuffle.ShuffleDeck(ctx, e)
		if err != nil {
			return ibeproof.EncryptProof{}, err
		}
		fSharePoly := e.Domain().InterpolateOverH(deck.Shares)
		fShareCom, err := srs.Commit(fSharePoly)
		if err != nil {
			return ibeproof.EncryptProof{}, err
		}
		fCom, err := e.AddG1ElementsFromAllParties(ctx, fShareCom, "test_f_commit")
		if err != nil {
			return ibeproof.EncryptProof{}, err
		}
		return ibeproof.EncryptAndProve(ctx, e, srs, deck.Handles, fCom, pk, ids)
	})
	require.NoError(t, err)
	require.Len(t, proofs, 3)
	return proofs[0]
}

// verifierFixture returns a fresh domain and SRS matching the ones
// buildEncryptProof used: NewInsecureTestSRS is deterministic (fixed
// toxic waste alpha = -1), so a second call with the same degree
// reproduces byte-identical proving/verifying keys.
func verifierFixture(t *testing.T) (*poly.Domain, *kzgsrs.SRS) {
	t.Helper()
	domain := poly.NewDomain()
	srs, err := kzgsrs.NewInsecureTestSRS(256)
	require.NoError(t, err)
	return domain, srs
}

func TestEncryptAndProveThenVerifyAccepts(t *testing.T) {
	proof := buildEncryptProof(t)
	domain, srs := verifierFixture(t)
	assert.True(t, ibeproof.LocalVerifyEncryptionProof(domain, srs, proof))
}

func TestVerifyRejectsMismatchedC1(t *testing.T) {
	proof := buildEncryptProof(t)
	domain, srs := verifierFixture(t)
	require.True(t, len(proof.Ciphertexts) > 1)

	tampered := proof
	tampered.Ciphertexts = append([]ibeproof.Ciphertext(nil), proof.Ciphertexts...)
	swapped := tampered.Ciphertexts[0]
	swapped.C1.Add(&swapped.C1, &swapped.C1)
	tampered.Ciphertexts[0] = swapped

	assert.False(t, ibeproof.LocalVerifyEncryptionProof(domain, srs, tampered))
}

func TestVerifyRejectsTamperedMaskedEval(t *testing.T) {
	proof := buildEncryptProof(t)
	domain, srs := verifierFixture(t)
	require.NotEmpty(t, proof.MaskedEvals)

	tampered := proof
	tampered.MaskedEvals = append([]fr.Element(nil), proof.MaskedEvals...)
	tampered.MaskedEvals[0].Add(&tampered.MaskedEvals[0], &tampered.MaskedEvals[0])

	assert.False(t, ibeproof.LocalVerifyEncryptionProof(domain, srs, tampered))
}

func TestVerifyRejectsMissingSigmaProof(t *testing.T) {
	proof := buildEncryptProof(t)
	domain, srs := verifierFixture(t)
	tampered := proof
	tampered.SigmaProof = nil
	assert.False(t, ibeproof.LocalVerifyEncryptionProof(domain, srs, tampered))
}

// TestVerifyRejectsSwappedEvalProofs is the fault-injection scenario
// the protocol's end-to-end test list names explicitly: replacing one
// per-card opening proof with a neighboring one must make the
// per-position kzg_check fail even though the sigma proof and
// equal-c1 checks never look at EvalProofs at all.
func TestVerifyRejectsSwappedEvalProofs(t *testing.T) {
	proof := buildEncryptProof(t)
	domain, srs := verifierFixture(t)
	require.True(t, len(proof.EvalProofs) > 1)

	tampered := proof
	tampered.EvalProofs = append([]curve.G1(nil), proof.EvalProofs...)
	tampered.EvalProofs[0], tampered.EvalProofs[1] = tampered.EvalProofs[1], tampered.EvalProofs[0]

	assert.False(t, ibeproof.LocalVerifyEncryptionProof(domain, srs, tampered))
}

func TestEncryptProofMarshalUnmarshalRoundTrips(t *testing.T) {
	proof := buildEncryptProof(t)
	domain, srs := verifierFixture(t)

	encoded, err := proof.MarshalBinary()
	require.NoError(t, err)

	var decoded ibeproof.EncryptProof
	require.NoError(t, decoded.UnmarshalBinary(encoded))

	assert.True(t, ibeproof.LocalVerifyEncryptionProof(domain, srs, decoded))

	reencoded, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}
