// Package kzgsrs wraps gnark-crypto's BLS12-381 KZG commitment scheme
// with the thin surface the protocol needs: commit, open and check a
// single evaluation proof. It is grounded on
// github.com/consensys/gnark-crypto/ecc/bls12-381/kzg, the same
// commit/open/verify API giuliop-AlgoPlonk's setup package drives for
// its own PLONK backend (setup/setup.go), and does not reimplement any
// pairing or multi-scalar-multiplication logic of its own.
package kzgsrs

import (
	"bytes"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/kzg"

	"github.com/playpok3r/pok3r/pkg/poly"
)

// SRS holds the structured reference string used for every commitment
// in a protocol run; all parties must commit/open/verify against the
// same SRS.
type SRS struct {
	inner *kzg.SRS
}

// NewInsecureTestSRS synthesizes an SRS from a fixed, publicly known
// toxic waste value. It must never be used outside tests: the whole
// point of a real ceremony is that nobody learns alpha. Mirrors the
// setup.TestOnly path in setup/setup.go, which calls the identical
// kzg.NewSRS(size, alpha) constructor with a throwaway alpha.
func NewInsecureTestSRS(maxDegree uint64) (*SRS, error) {
	srs, err := kzg.NewSRS(maxDegree+1, big.NewInt(-1))
	if err != nil {
		return nil, err
	}
	return &SRS{inner: srs}, nil
}

// Load reads a previously generated SRS from its proving/verifying key
// byte streams, the way trustedSetupBLS12381 reads pk.bin/vk.bin.
func Load(pk, vk []byte) (*SRS, error) {
	var srs kzg.SRS
	if _, err := srs.Pk.ReadFrom(bytes.NewReader(pk)); err != nil {
		return nil, err
	}
	if _, err := srs.Vk.ReadFrom(bytes.NewReader(vk)); err != nil {
		return nil, err
	}
	return &SRS{inner: &srs}, nil
}

// Commitment is a single KZG commitment, a G1 point.
type Commitment = kzg.Digest

// OpeningProof is a KZG evaluation proof at a single point.
type OpeningProof = kzg.OpeningProof

// Commit commits to p under this SRS.
func (s *SRS) Commit(p poly.Polynomial) (Commitment, error) {
	return kzg.Commit([]fr.Element(p), s.inner.Pk)
}

// Open produces an evaluation proof that p(point) = p.Evaluate(point).
func (s *SRS) Open(p poly.Polynomial, point fr.Element) (OpeningProof, error) {
	return kzg.Open([]fr.Element(p), point, s.inner.Pk)
}

// Check verifies that commitment opens to value at point via proof,
// mirroring utils::kzg_check.
func (s *SRS) Check(commitment Commitment, point, value fr.Element, proof OpeningProof) bool {
	proof.ClaimedValue = value
	proof.Point = point
	return kzg.Verify(&commitment, &proof, s.inner.Vk) == nil
}
