package crypto

import "encoding/binary"

// LegacyDerivation computes D = k_v * R, the shared secret of the classic
// CryptoNote Diffie-Hellman scheme between a recipient's view key and a
// transaction's public key.
func LegacyDerivation(viewSecret *Scalar, txPubKey *Point) *Point {
	return ScalarMult(viewSecret, txPubKey)
}

// LegacyDerivationScalar computes H_s(D || varint(i)), the per-output
// scalar derived from a shared secret and output index.
func LegacyDerivationScalar(derivation *Point, outputIndex uint64) *Scalar {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], outputIndex)
	return HashToScalar(derivation.Slice(), buf[:n])
}

var domainCommitmentMask = []byte("commitment_mask")

// LegacyCommitmentMask derives an RCT output's blinding factor from the
// per-output derivation scalar.
func LegacyCommitmentMask(derivationScalar *Scalar) *Scalar {
	return HashToScalar(domainCommitmentMask, derivationScalar.Slice())
}
