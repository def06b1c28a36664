package crypto

import (
	"io"

	"github.com/mxhess/salvium-walletcore/types"
)

// SchnorrSignature is the (c, r) pair produced by CreateSchnorrSignature.
// It is the low-level primitive underneath both message-signature versions
// consumed by the msgsign package; see spec §4.12 for the two wire formats
// built on top.
type SchnorrSignature struct {
	C *Scalar
	R *Scalar
}

func (s SchnorrSignature) Bytes() [64]byte {
	var out [64]byte
	copy(out[:32], s.C.Slice())
	copy(out[32:], s.R.Slice())
	return out
}

func SchnorrSignatureFromBytes(b [64]byte) (*SchnorrSignature, bool) {
	c, ok := ScalarFromCanonicalBytes([32]byte(b[:32]))
	if !ok {
		return nil, false
	}
	r, ok := ScalarFromCanonicalBytes([32]byte(b[32:]))
	if !ok {
		return nil, false
	}
	return &SchnorrSignature{C: c, R: r}, true
}

// CreateSchnorrSignature signs a challenge hash h under keypair (x, K), in
// the CryptoNote convention (subtraction where EdDSA adds):
//
//	k random, R = k*G, c = H_s(h || K || R), r = k - c*x
func CreateSchnorrSignature(h types.Hash, x *Scalar, K *Point, reader io.Reader) SchnorrSignature {
	k := RandomScalar(reader)
	R := ScalarMultBase(k)
	c := HashToScalar(h[:], K.Slice(), R.Slice())
	r := new(Scalar).Sub(k, new(Scalar).Mul(c, x))
	return SchnorrSignature{C: c, R: r}
}

// VerifySchnorrSignature reconstructs R' = c*K + r*G and checks that
// H_s(h || K || R') equals the claimed challenge c.
func VerifySchnorrSignature(h types.Hash, K *Point, sig SchnorrSignature) bool {
	Rp := DoubleScalarMultBase(sig.C, K, sig.R)
	if Rp.IsIdentity() {
		return false
	}
	expected := HashToScalar(h[:], K.Slice(), Rp.Slice())
	return expected.Equal(sig.C)
}
