package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"git.gammaspectra.live/P2Pool/edwards25519"
)

// PrivateKeySize is the width in bytes of a canonical scalar encoding.
const PrivateKeySize = 32

// Scalar is an integer modulo the group order
// L = 2^252 + 27742317777372353535851937790883648493, held in the
// representation used by the underlying curve library. All arithmetic
// on secret scalars runs in the library's constant-time code path; there
// is no branch on scalar bits anywhere in this package.
type Scalar struct {
	inner edwards25519.Scalar
}

// ScalarZero is the additive identity.
func ScalarZero() *Scalar {
	s := &Scalar{}
	var zero [32]byte
	_, _ = s.inner.SetCanonicalBytes(zero[:])
	return s
}

// ScalarFromCanonicalBytes decodes a little-endian 32-byte scalar. It fails
// (returns false) if the bytes do not represent a value strictly less than
// the group order — callers must reject non-canonical scalars rather than
// silently reducing them.
func ScalarFromCanonicalBytes(b [32]byte) (*Scalar, bool) {
	s := &Scalar{}
	if _, err := s.inner.SetCanonicalBytes(b[:]); err != nil {
		return nil, false
	}
	return s, true
}

// ReduceFrom32 reduces an arbitrary 32-byte little-endian integer modulo L.
// Used for the legacy k_s = reduce32(master) derivation.
func ReduceFrom32(b [32]byte) *Scalar {
	// SetUniformBytes wants 64 bytes; pad with zeroes for a 32-byte input,
	// which is equivalent to reducing the 32-byte value mod L.
	var wide [64]byte
	copy(wide[:32], b[:])
	s := &Scalar{}
	_, _ = s.inner.SetUniformBytes(wide[:])
	return s
}

// ReduceFrom64 reduces a 64-byte little-endian integer modulo L.
func ReduceFrom64(b [64]byte) *Scalar {
	s := &Scalar{}
	_, _ = s.inner.SetUniformBytes(b[:])
	return s
}

// RandomScalar draws a uniformly random scalar from the given reader,
// defaulting to crypto/rand when reader is nil.
func RandomScalar(reader io.Reader) *Scalar {
	if reader == nil {
		reader = rand.Reader
	}
	var buf [64]byte
	if _, err := io.ReadFull(reader, buf[:]); err != nil {
		panic(err)
	}
	return ReduceFrom64(buf)
}

func (s *Scalar) Bytes() [32]byte {
	var out [32]byte
	copy(out[:], s.inner.Bytes())
	return out
}

func (s *Scalar) Slice() []byte {
	return s.inner.Bytes()
}

func (s *Scalar) Set(o *Scalar) *Scalar {
	s.inner.Set(&o.inner)
	return s
}

func (s *Scalar) Add(a, b *Scalar) *Scalar {
	s.inner.Add(&a.inner, &b.inner)
	return s
}

func (s *Scalar) Sub(a, b *Scalar) *Scalar {
	s.inner.Subtract(&a.inner, &b.inner)
	return s
}

func (s *Scalar) Mul(a, b *Scalar) *Scalar {
	s.inner.Multiply(&a.inner, &b.inner)
	return s
}

// MulAdd computes s = a*b + c.
func (s *Scalar) MulAdd(a, b, c *Scalar) *Scalar {
	s.inner.MultiplyAdd(&a.inner, &b.inner, &c.inner)
	return s
}

func (s *Scalar) Negate(a *Scalar) *Scalar {
	s.inner.Negate(&a.inner)
	return s
}

// Invert computes the multiplicative inverse of a modulo L. a must be
// nonzero.
func (s *Scalar) Invert(a *Scalar) *Scalar {
	s.inner.Invert(&a.inner)
	return s
}

func (s *Scalar) IsZero() bool {
	return s.Equal(ScalarZero())
}

func (s *Scalar) Equal(o *Scalar) bool {
	return s.inner.Equal(&o.inner) == 1
}

func (s *Scalar) edwards() *edwards25519.Scalar {
	return &s.inner
}

// scalarFromUint64 encodes a 64-bit integer as a canonical scalar. Used to
// build amount scalars for Pedersen commitments.
func scalarFromUint64(v uint64) *Scalar {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:8], v)
	s, ok := ScalarFromCanonicalBytes(b)
	if !ok {
		// a 64-bit value zero-extended to 32 bytes is always < L.
		panic("unreachable: uint64 scalar not canonical")
	}
	return s
}
