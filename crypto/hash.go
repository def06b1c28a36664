package crypto

import (
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/sha3"
	"github.com/mxhess/salvium-walletcore/types"
	"golang.org/x/crypto/blake2b"
)

// Keccak256 hashes data with the original (pre-FIPS-202) Keccak padding,
// matching Salvium/Monero's cn_fast_hash — this is NOT SHA3-256, which uses
// a different domain-separation suffix and would produce different digests
// for every input.
func Keccak256(data ...[]byte) (out types.Hash) {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	h.Sum(out[:0])
	return out
}

// Blake2b hashes data to an unkeyed digest of the given length (1..64),
// per RFC 7693.
func Blake2b(outLen int, data ...[]byte) []byte {
	h, err := blake2b.New(outLen, nil)
	if err != nil {
		panic(err)
	}
	for _, b := range data {
		_, _ = h.Write(b)
	}
	return h.Sum(make([]byte, 0, outLen))
}

// Blake2bKeyed hashes data to a digest of the given length using key as the
// RFC 7693 keyed mode (key length must be <= 64 bytes; it is folded into
// the first 128-byte input block, zero-padded). CARROT derivations use the
// "parent" secret of each step as the key of the next.
func Blake2bKeyed(outLen int, key []byte, data ...[]byte) []byte {
	h, err := blake2b.New(outLen, key)
	if err != nil {
		panic(err)
	}
	for _, b := range data {
		_, _ = h.Write(b)
	}
	return h.Sum(make([]byte, 0, outLen))
}

// Blake2b32 is Blake2bKeyed specialised to a 32-byte digest (Carrot's H_32).
func Blake2b32(key []byte, data ...[]byte) (out types.Hash) {
	copy(out[:], Blake2bKeyed(32, key, data...))
	return out
}

// Blake2b64 is Blake2bKeyed specialised to a 64-byte digest (Carrot's H_64,
// the input to ScalarDerive).
func Blake2b64(key []byte, data ...[]byte) (out [64]byte) {
	copy(out[:], Blake2bKeyed(64, key, data...))
	return out
}

// HashToScalar computes H_s(data) = reduce32(Keccak256(data)).
func HashToScalar(data ...[]byte) *Scalar {
	h := Keccak256(data...)
	return ReduceFrom32(h)
}

// ScalarDerive is Carrot's SecretDerive scalar form:
// H_n(x) = BytesToInt512(Blake2b_64[key](x)) mod L.
func ScalarDerive(key []byte, data ...[]byte) *Scalar {
	h := Blake2b64(key, data...)
	return ReduceFrom64(h)
}

var viewTagDomain = []byte("view_tag")

// LegacyViewTag computes the 1-byte view-tag hint for a legacy tagged
// output: the first byte of Keccak256("view_tag" || derivation || varint(index)).
func LegacyViewTag(derivation [32]byte, outputIndex uint64) byte {
	var varintBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(varintBuf[:], outputIndex)
	h := Keccak256(viewTagDomain, derivation[:], varintBuf[:n])
	return h[0]
}

var encryptedAmountDomain = []byte("amount")

// DecryptAmount XORs an encrypted amount field with a keystream derived
// from the per-output shared secret k.
func DecryptAmount(k *Scalar, ciphertext uint64) uint64 {
	h := Keccak256(encryptedAmountDomain, k.Slice())
	return ciphertext ^ binary.LittleEndian.Uint64(h[:8])
}

// EncryptAmount is the inverse of DecryptAmount (XOR is self-inverse).
func EncryptAmount(k *Scalar, amount uint64) uint64 {
	return DecryptAmount(k, amount)
}
