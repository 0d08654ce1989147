package kzgsrs_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playpok3r/pok3r/pkg/kzgsrs"
	"github.com/playpok3r/pok3r/pkg/poly"
)

func elem(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestCommitOpenCheckRoundTrip(t *testing.T) {
	srs, err := kzgsrs.NewInsecureTestSRS(8)
	require.NoError(t, err)

	p := poly.Polynomial{elem(1), elem(2), elem(3)}
	commitment, err := srs.Commit(p)
	require.NoError(t, err)

	point := elem(5)
	value := p.Evaluate(point)

	proof, err := srs.Open(p, point)
	require.NoError(t, err)

	assert.True(t, srs.Check(commitment, point, value, proof))
}

func TestCheckRejectsWrongValue(t *testing.T) {
	srs, err := kzgsrs.NewInsecureTestSRS(8)
	require.NoError(t, err)

	p := poly.Polynomial{elem(1), elem(2), elem(3)}
	commitment, err := srs.Commit(p)
	require.NoError(t, err)

	point := elem(5)
	proof, err := srs.Open(p, point)
	require.NoError(t, err)

	wrong := elem(999)
	assert.False(t, srs.Check(commitment, point, wrong, proof))
}
