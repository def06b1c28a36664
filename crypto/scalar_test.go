package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScalarArithmetic(t *testing.T) {
	a := RandomScalar(nil)
	b := RandomScalar(nil)

	sum := new(Scalar).Add(a, b)
	back := new(Scalar).Sub(sum, b)
	require.True(t, back.Equal(a))

	prod := new(Scalar).Mul(a, b)
	inv := new(Scalar).Invert(b)
	back2 := new(Scalar).Mul(prod, inv)
	require.True(t, back2.Equal(a))
}

func TestScalarReduceFrom32Deterministic(t *testing.T) {
	var b [32]byte
	b[0] = 42
	s1 := ReduceFrom32(b)
	s2 := ReduceFrom32(b)
	require.True(t, s1.Equal(s2))
}

func TestScalarFromCanonicalBytesRejectsOutOfRange(t *testing.T) {
	// All-0xff bytes are far larger than the group order L.
	var b [32]byte
	for i := range b {
		b[i] = 0xff
	}
	_, ok := ScalarFromCanonicalBytes(b)
	require.False(t, ok)
}
