// Package curve gathers the BLS12-381 group element aliases and the
// handful of curve-level helpers (generators, pairing, hash-to-G1)
// the rest of the protocol shares, so no other package needs to
// import gnark-crypto's low level curve package directly.
package curve

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fp"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/hash_to_curve"
	"github.com/zeebo/blake3"
)

type (
	G1 = bls12381.G1Affine
	G2 = bls12381.G2Affine
	GT = bls12381.GT
)

// Generators returns the canonical G1 and G2 generators.
func Generators() (G1, G2) {
	_, _, g1, g2 := bls12381.Generators()
	return g1, g2
}

// Pair computes e(p, q).
func Pair(p G1, q G2) (GT, error) {
	return bls12381.Pair([]G1{p}, []G2{q})
}

// PairingCheck returns true iff Π e(ps[i], qs[i]) == 1.
func PairingCheck(ps []G1, qs []G2) (bool, error) {
	return bls12381.PairingCheck(ps, qs)
}

// HashToG1 deterministically maps an identity string to a G1 point,
// grounded on the EIP-2537 style map-then-isogeny-then-clear-cofactor
// routine: a domain-separated 32-byte digest of id is interpreted as
// an Fp element, mapped to the curve with the simplified SWU map, and
// the resulting point is pushed through the degree-11 isogeny and
// cofactor-cleared into the G1 subgroup. This replaces the original
// implementation's placeholder `g^id` scalar multiplication (flagged
// there as needing a proper hash to curve) with gnark-crypto's actual
// hash-to-curve machinery.
func HashToG1(id []byte) G1 {
	h := blake3.New()
	h.Write([]byte("pok3r/hash-to-g1"))
	h.Write(id)
	var digest [32]byte
	if _, err := h.Digest().Read(digest[:]); err != nil {
		panic(err)
	}

	var be [48]byte
	copy(be[48-32:], digest[:])
	var u fp.Element
	u.SetBytes(be[:])

	p := bls12381.MapToCurve1(&u)
	hash_to_curve.G1Isogeny(&p.X, &p.Y)

	var out G1
	out.ClearCofactor(&p)
	return out
}

// ExpG1 returns base^scalar.
func ExpG1(base G1, scalar fr.Element) G1 {
	var out G1
	var bi big.Int
	scalar.BigInt(&bi)
	out.ScalarMultiplication(&base, &bi)
	return out
}

// ExpG2 returns base^scalar.
func ExpG2(base G2, scalar fr.Element) G2 {
	var out G2
	var bi big.Int
	scalar.BigInt(&bi)
	out.ScalarMultiplication(&base, &bi)
	return out
}

// ExpGT returns base^scalar in the target group.
func ExpGT(base GT, scalar fr.Element) GT {
	var out GT
	var bi big.Int
	scalar.BigInt(&bi)
	out.Exp(base, &bi)
	return out
}
