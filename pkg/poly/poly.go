// Package poly implements the polynomial utilities the protocol needs
// over the BLS12-381 scalar field: the 64-element multiplicative
// subgroup H, interpolation/evaluation over H, vanishing-polynomial
// division, and the Fiat-Shamir hash used to derive public
// challenges. It is grounded on github.com/consensys/gnark-crypto's
// ecc/bls12-381/fr field arithmetic; it deliberately does not use
// gnark-crypto's fft.Domain for interpolation (see DESIGN.md) and
// instead evaluates the inverse DFT directly, which is easy to check
// by inspection against its definition.
package poly

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"github.com/zeebo/blake3"
)

// Size is the cardinality of the multiplicative subgroup H used
// throughout the protocol: one slot per card in a standard deck plus
// 12 reserved slots, per the original design.
const Size = 64

// Polynomial is a dense coefficient vector, lowest degree first,
// mirroring ark_poly::univariate::DensePolynomial's representation.
type Polynomial []fr.Element

// Domain holds the generator of H and its powers ω^0..ω^63.
type Domain struct {
	Omega fr.Element
	Powers [Size]fr.Element
}

// NewDomain builds the size-64 multiplicative subgroup of the
// BLS12-381 scalar field. The generator is obtained from
// gnark-crypto's own fft.Domain construction (fft.NewDomain(64).
// Generator), used here purely to borrow its root-of-unity
// computation; the rest of this package evaluates polynomials with a
// direct inverse-DFT summation rather than the FFT itself.
func NewDomain() *Domain {
	d := &Domain{}
	fftDomain := fft.NewDomain(Size)
	d.Omega = fftDomain.Generator

	d.Powers[0].SetOne()
	for i := 1; i < Size; i++ {
		d.Powers[i].Mul(&d.Powers[i-1], &d.Omega)
	}
	return d
}

// ComputePower returns ω^i for i potentially outside [0,Size).
func (d *Domain) ComputePower(i uint64) fr.Element {
	var e fr.Element
	e.Exp(d.Omega, new(big.Int).SetUint64(i))
	return e
}

// InterpolateOverH returns the unique polynomial of degree < Size
// whose evaluation over (ω^0,...,ω^63) is evals, computed directly
// from the inverse DFT definition:
//
//	c_k = (1/Size) * Σ_i evals[i] * ω^(-i*k)
//
// rather than via gnark-crypto's bit-reversed FFT, so the mapping
// from evaluation index i to domain point ω^i needs no reordering.
func (d *Domain) InterpolateOverH(evals []fr.Element) Polynomial {
	if len(evals) != Size {
		panic("poly: InterpolateOverH requires exactly Size evaluations")
	}
	var invSize fr.Element
	invSize.SetUint64(Size)
	invSize.Inverse(&invSize)

	var omegaInv fr.Element
	omegaInv.Inverse(&d.Omega)

	coeffs := make(Polynomial, Size)
	for k := 0; k < Size; k++ {
		var acc fr.Element
		// ω^(-i*k) walked incrementally via powers of omegaInv^k.
		var base fr.Element
		base.Exp(omegaInv, big.NewInt(int64(k)))
		var cur fr.Element
		cur.SetOne()
		for i := 0; i < Size; i++ {
			var term fr.Element
			term.Mul(&evals[i], &cur)
			acc.Add(&acc, &term)
			cur.Mul(&cur, &base)
		}
		acc.Mul(&acc, &invSize)
		coeffs[k] = acc
	}
	return coeffs
}

// Evaluate computes p(x) by Horner's rule.
func (p Polynomial) Evaluate(x fr.Element) fr.Element {
	var acc fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		acc.Mul(&acc, &x)
		acc.Add(&acc, &p[i])
	}
	return acc
}

// Degree returns the naive degree (length - 1); trailing zero
// coefficients are not trimmed, matching a dense representation.
func (p Polynomial) Degree() int { return len(p) - 1 }

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Polynomial, n)
	for i := 0; i < n; i++ {
		var a, b fr.Element
		if i < len(p) {
			a = p[i]
		}
		if i < len(q) {
			b = q[i]
		}
		out[i].Add(&a, &b)
	}
	return out
}

// Sub returns p - q.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	n := len(p)
	if len(q) > n {
		n = len(q)
	}
	out := make(Polynomial, n)
	for i := 0; i < n; i++ {
		var a, b fr.Element
		if i < len(p) {
			a = p[i]
		}
		if i < len(q) {
			b = q[i]
		}
		out[i].Sub(&a, &b)
	}
	return out
}

// Mul returns the schoolbook product p * q.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	if len(p) == 0 || len(q) == 0 {
		return Polynomial{}
	}
	out := make(Polynomial, len(p)+len(q)-1)
	for i, a := range p {
		if a.IsZero() {
			continue
		}
		for j, b := range q {
			var t fr.Element
			t.Mul(&a, &b)
			out[i+j].Add(&out[i+j], &t)
		}
	}
	return out
}

// ScaleConst returns c * p.
func (p Polynomial) ScaleConst(c fr.Element) Polynomial {
	out := make(Polynomial, len(p))
	for i, a := range p {
		out[i].Mul(&a, &c)
	}
	return out
}

// AddConst returns p with c added to its constant term, growing the
// polynomial if it was empty.
func (p Polynomial) AddConst(c fr.Element) Polynomial {
	out := make(Polynomial, len(p))
	copy(out, p)
	if len(out) == 0 {
		out = append(out, c)
		return out
	}
	out[0].Add(&out[0], &c)
	return out
}

// DivideByVanishing divides d(X) by the size-64 vanishing polynomial
// X^64 - 1 and returns the quotient q(X) together with the remainder
// r(X), following the same synthetic-division scheme
// ark_poly::divide_by_vanishing_poly uses for a domain whose vanishing
// polynomial is X^n - 1: since (X^n - 1) has only two nonzero terms,
// division reduces to q_i = d_(i+n) and accumulating the high
// coefficients back into the remainder.
func (d Polynomial) DivideByVanishing(n int) (quotient, remainder Polynomial) {
	deg := len(d)
	if deg <= n {
		remainder = make(Polynomial, len(d))
		copy(remainder, d)
		return Polynomial{}, remainder
	}
	remainder = make(Polynomial, deg)
	copy(remainder, d)
	qDeg := deg - n
	quotient = make(Polynomial, qDeg)
	for i := qDeg - 1; i >= 0; i-- {
		coeff := remainder[i+n]
		quotient[i] = coeff
		remainder[i+n].SetZero()
		// X^n - 1 divides out by adding the shifted coefficient back
		// at position i (since X^n ≡ 1 mod (X^n - 1)).
		remainder[i].Add(&remainder[i], &coeff)
	}
	// trim remainder to degree < n
	remainder = remainder[:n]
	return quotient, remainder
}

// DomainDivOmega returns t(X/ω) given t(X) and ω, i.e. it rescales
// coefficient i by ω^(-i), matching utils::poly_domain_div_ω.
func DomainDivOmega(t Polynomial, omega fr.Element) Polynomial {
	var omegaInv fr.Element
	omegaInv.Inverse(&omega)

	out := make(Polynomial, len(t))
	var cur fr.Element
	cur.SetOne()
	for i, c := range t {
		out[i].Mul(&c, &cur)
		cur.Mul(&cur, &omegaInv)
	}
	return out
}

// DivideLinear divides p(X) by (X - point) via synthetic division and
// returns only the quotient, discarding the remainder. The recurrence
// is linear in p's coefficients, so running it independently on each
// party's additive share of p yields that party's additive share of
// the true quotient polynomial — no network round needed.
func DivideLinear(p Polynomial, point fr.Element) Polynomial {
	if len(p) == 0 {
		return Polynomial{}
	}
	quotient := make(Polynomial, len(p)-1)
	var carry fr.Element
	for i := len(p) - 1; i >= 1; i-- {
		var b fr.Element
		b.Add(&p[i], &carry)
		quotient[i-1] = b
		carry.Mul(&b, &point)
	}
	return quotient
}

// FSHash derives k field elements deterministically from the
// concatenation of the given byte blobs, used everywhere the protocol
// needs a Fiat-Shamir challenge (gamma, y1, y2, the batching vector s).
// It is grounded on the BLAKE3 extendable-output function, reading
// 32*k bytes from a single domain-separated hasher and reducing each
// 32-byte chunk modulo the scalar field order.
func FSHash(blobs [][]byte, k int) []fr.Element {
	h := blake3.New()
	h.Write([]byte("pok3r/fs_hash"))
	for _, b := range blobs {
		var lenBuf [8]byte
		lenBuf[0] = byte(len(b))
		lenBuf[1] = byte(len(b) >> 8)
		lenBuf[2] = byte(len(b) >> 16)
		lenBuf[3] = byte(len(b) >> 24)
		h.Write(lenBuf[:])
		h.Write(b)
	}

	out := make([]fr.Element, k)
	xof := h.Digest()
	buf := make([]byte, 32*k)
	if _, err := xof.Read(buf); err != nil {
		panic(err)
	}
	for i := 0; i < k; i++ {
		var bi big.Int
		bi.SetBytes(buf[i*32 : (i+1)*32])
		out[i].SetBigInt(&bi)
	}
	return out
}
