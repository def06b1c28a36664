package crypto

import (
	"git.gammaspectra.live/P2Pool/edwards25519"
)

// PublicKeySize is the width in bytes of a compressed curve point.
const PublicKeySize = 32

// Point is an element of the twisted-Edwards curve group used throughout
// the wallet: one-time addresses, commitments, ring members, and the
// second Pedersen generator all live here. Compressed form is 32 bytes
// (the y-coordinate with the sign of x folded into the top bit).
type Point struct {
	inner edwards25519.Point
}

// PointIdentity returns the group identity element.
func PointIdentity() *Point {
	p := &Point{}
	p.inner.Set(edwards25519.NewIdentityPoint())
	return p
}

// PointDecompress parses a compressed point. It fails when the encoding
// does not correspond to a valid curve point (e.g. y has no matching x, a
// non quadratic-residue case that occurs for roughly half of all byte
// strings) — callers must reject rather than coerce.
func PointDecompress(b [32]byte) (*Point, bool) {
	p := &Point{}
	if _, err := p.inner.SetBytes(b[:]); err != nil {
		return nil, false
	}
	return p, true
}

func (p *Point) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], p.inner.Bytes())
	return out
}

func (p *Point) Slice() []byte {
	return p.inner.Bytes()
}

func (p *Point) Set(o *Point) *Point {
	p.inner.Set(&o.inner)
	return p
}

// ScalarMultBase computes s*G.
func ScalarMultBase(s *Scalar) *Point {
	p := &Point{}
	p.inner.ScalarBaseMult(s.edwards())
	return p
}

// ScalarMult computes s*P for an arbitrary point P.
func ScalarMult(s *Scalar, P *Point) *Point {
	p := &Point{}
	p.inner.ScalarMult(s.edwards(), &P.inner)
	return p
}

// DoubleScalarMultBase computes a*A + b*G.
func DoubleScalarMultBase(a *Scalar, A *Point, b *Scalar) *Point {
	var bG edwards25519.Point
	bG.ScalarBaseMult(b.edwards())
	p := &Point{}
	p.inner.ScalarMult(a.edwards(), &A.inner)
	p.inner.Add(&p.inner, &bG)
	return p
}

func Add(a, b *Point) *Point {
	p := &Point{}
	p.inner.Add(&a.inner, &b.inner)
	return p
}

func Sub(a, b *Point) *Point {
	p := &Point{}
	p.inner.Subtract(&a.inner, &b.inner)
	return p
}

func Negate(a *Point) *Point {
	p := &Point{}
	p.inner.Negate(&a.inner)
	return p
}

func (p *Point) Equal(o *Point) bool {
	return p.inner.Equal(&o.inner) == 1
}

func (p *Point) IsIdentity() bool {
	return p.Equal(PointIdentity())
}

// WeightedSum computes sum(scalars[i] * points[i]). Used by the ring
// signature and Pedersen-commitment balance checks, which only run over
// small (ring-sized) vectors so a plain accumulate is adequate — there is
// no hot inner-product loop here the way there is in bulletproofs.
func WeightedSum(scalars []*Scalar, points []*Point) *Point {
	acc := PointIdentity()
	for i := range scalars {
		acc = Add(acc, ScalarMult(scalars[i], points[i]))
	}
	return acc
}
