package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarMultBaseRoundTripsThroughCompression(t *testing.T) {
	s := RandomScalar(nil)
	p := ScalarMultBase(s)

	decoded, ok := PointDecompress(p.Bytes())
	require.True(t, ok)
	require.True(t, p.Equal(decoded))
}

func TestPointDecompressRejectsInvalidEncoding(t *testing.T) {
	// y = 2 (sign bit set) has no matching x on Ed25519: (y^2-1)/(d*y^2+1)
	// is not a square mod p for y = 2.
	var b [32]byte
	b[0] = 2
	b[31] = 0x80
	_, ok := PointDecompress(b)
	require.False(t, ok)
}

func TestKeyImageDeterministic(t *testing.T) {
	x := RandomScalar(nil)
	K := ScalarMultBase(x)
	i1 := KeyImage(x, K)
	i2 := KeyImage(x, K)
	require.True(t, i1.Equal(i2))
}

func TestPedersenCommitmentHomomorphism(t *testing.T) {
	m1 := RandomScalar(nil)
	m2 := RandomScalar(nil)
	c1 := PedersenCommit(10, m1)
	c2 := PedersenCommit(20, m2)

	sumMask := new(Scalar).Add(m1, m2)
	combined := PedersenCommit(30, sumMask)

	require.True(t, combined.Equal(Add(c1, c2)))
}
