package permutation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpok3r/pok3r/internal/test"
	"github.com/playpok3r/pok3r/pkg/evaluator"
	"github.com/playpok3r/pok3r/pkg/kzgsrs"
	"github.com/playpok3r/pok3r/pkg/permutation"
	"github.com/playpok3r/pok3r/pkg/poly"
	"github.com/playpok3r/pok3r/pkg/shuffle"
)

// buildProof runs shuffle + the permutation argument across 3 parties
// and returns the resulting public Proof (byte-identical for every
// honest party, so the first one stands in for all of them).
func buildProof(t *testing.T) permutation.Proof {
	t.Helper()
	srs, err := kzgsrs.NewInsecureTestSRS(256)
	require.NoError(t, err)

	proofs, err := test.RunParties(3, 40000, func(ctx context.Context, e *evaluator.Evaluator) (permutation.Proof, error) {
		deck, err := shuffle.ShuffleDeck(ctx, e)
		if err != nil {
			return permutation.Proof{}, err
		}
		return permutation.Prove(ctx, e, srs, deck.Handles, deck.Shares)
	})
	require.NoError(t, err)
	require.Len(t, proofs, 3)
	return proofs[0]
}

func TestProveThenVerifyAccepts(t *testing.T) {
	proof := buildProof(t)
	domain := poly.NewDomain()
	srs, err := kzgsrs.NewInsecureTestSRS(256)
	require.NoError(t, err)

	assert.True(t, permutation.Verify(domain, srs, proof))
}

func TestVerifyRejectsTamperedEvaluation(t *testing.T) {
	proof := buildProof(t)
	domain := poly.NewDomain()
	srs, err := kzgsrs.NewInsecureTestSRS(256)
	require.NoError(t, err)

	tampered := proof
	tampered.Y2.Add(&tampered.Y2, &tampered.Y2)
	assert.False(t, permutation.Verify(domain, srs, tampered))
}

func TestVerifyRejectsSwappedOpeningProofs(t *testing.T) {
	proof := buildProof(t)
	domain := poly.NewDomain()
	srs, err := kzgsrs.NewInsecureTestSRS(256)
	require.NoError(t, err)

	tampered := proof
	tampered.Pi1, tampered.Pi4 = tampered.Pi4, tampered.Pi1
	assert.False(t, permutation.Verify(domain, srs, tampered))
}

func TestProofMarshalUnmarshalRoundTrips(t *testing.T) {
	proof := buildProof(t)
	domain := poly.NewDomain()
	srs, err := kzgsrs.NewInsecureTestSRS(256)
	require.NoError(t, err)

	encoded, err := proof.MarshalBinary()
	require.NoError(t, err)

	var decoded permutation.Proof
	require.NoError(t, decoded.UnmarshalBinary(encoded))

	assert.True(t, permutation.Verify(domain, srs, decoded))

	reencoded, err := decoded.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, encoded, reencoded)
}
