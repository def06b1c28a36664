package crypto

// PedersenCommit computes C = mask*G + amount*H, the Pedersen commitment
// binding an output's amount while allowing additive homomorphism across
// inputs and outputs (used by the balance-equation check of the
// transaction builder).
func PedersenCommit(amount uint64, mask *Scalar) *Point {
	return DoubleScalarMultBase(scalarFromUint64(amount), GeneratorH, mask)
}

// IdentityMask is the scalar 1, used as the blinding factor of coinbase
// output commitments (spec §6: "identity mask value 0x01 followed by 31
// zero bytes").
func IdentityMask() *Scalar {
	var b [32]byte
	b[0] = 1
	s, ok := ScalarFromCanonicalBytes(b)
	if !ok {
		panic("unreachable: identity scalar not canonical")
	}
	return s
}
