// Package types holds small value types shared across the wallet core.
package types

import "encoding/hex"

// HashSize is the width in bytes of a Keccak256/Blake2b-256 digest.
const HashSize = 32

// Hash is a 32-byte digest, used for tx hashes, block hashes, and view tags'
// backing derivations.
type Hash [HashSize]byte

// ZeroHash is the all-zero digest, used as a sentinel for "not present".
var ZeroHash Hash

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func HashFromString(s string) (h Hash, err error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != HashSize {
		return h, ErrInvalidHashLength
	}
	copy(h[:], b)
	return h, nil
}

func (h Hash) IsZero() bool {
	return h == ZeroHash
}
