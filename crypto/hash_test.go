package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeccak256EmptyVector(t *testing.T) {
	got := Keccak256(nil)
	want, err := hex.DecodeString("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
	require.NoError(t, err)
	require.Equal(t, want, got[:])
}

func TestBlake2b64OfAbc(t *testing.T) {
	got := Blake2b(64, []byte("abc"))
	want, err := hex.DecodeString("ba80a53f981c4d0d6a2797b69f12f6e94c212f14685ac4b74b12bb6fdbffa2d17d87c5392aab792dc252d5de4533cc9518d38aa8dbf1925ab92386edd4009923")
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestBlake2bKeyedRoundTripsAgainstUnkeyed(t *testing.T) {
	// With an empty key, the keyed variant must equal the unkeyed one.
	unkeyed := Blake2b(32, []byte("hello"))
	keyed := Blake2bKeyed(32, nil, []byte("hello"))
	require.Equal(t, unkeyed, keyed)
}

func TestEncryptDecryptAmountRoundTrip(t *testing.T) {
	k := RandomScalar(nil)
	const amount uint64 = 123456789
	ct := EncryptAmount(k, amount)
	require.Equal(t, amount, DecryptAmount(k, ct))
}
