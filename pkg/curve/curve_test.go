package curve_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpok3r/pok3r/pkg/curve"
)

func TestPairingBilinearity(t *testing.T) {
	g1, g2 := curve.Generators()

	var a, b fr.Element
	a.SetUint64(5)
	b.SetUint64(7)

	lhs, err := curve.Pair(curve.ExpG1(g1, a), curve.ExpG2(g2, b))
	require.NoError(t, err)

	var ab fr.Element
	ab.Mul(&a, &b)
	rhs, err := curve.Pair(g1, curve.ExpG2(g2, ab))
	require.NoError(t, err)

	assert.True(t, lhs.Equal(&rhs))
}

func TestPairingCheckAcceptsBalancedProduct(t *testing.T) {
	g1, g2 := curve.Generators()
	var a fr.Element
	a.SetUint64(9)

	p1 := curve.ExpG1(g1, a)
	// e(p1, g2) * e(-g1, a*g2) == 1
	negG1 := g1
	negG1.Neg(&negG1)

	ok, err := curve.PairingCheck([]curve.G1{p1, negG1}, []curve.G2{g2, curve.ExpG2(g2, a)})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashToG1DeterministicAndDistinct(t *testing.T) {
	a1 := curve.HashToG1([]byte("identity-0"))
	a2 := curve.HashToG1([]byte("identity-0"))
	assert.True(t, a1.Equal(&a2))

	b := curve.HashToG1([]byte("identity-1"))
	assert.False(t, a1.Equal(&b))
}

func TestExpGTMatchesRepeatedMultiplication(t *testing.T) {
	g1, g2 := curve.Generators()
	base, err := curve.Pair(g1, g2)
	require.NoError(t, err)

	var three fr.Element
	three.SetUint64(3)
	got := curve.ExpGT(base, three)

	var want curve.GT
	want.Mul(&base, &base)
	want.Mul(&want, &base)

	assert.True(t, got.Equal(&want))
}
