package address

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/stretchr/testify/require"
)

func testAddress(t *testing.T, network Network, format Format, addrType AddressType) *Address {
	t.Helper()
	a := &Address{
		Network:  network,
		Format:   format,
		Type:     addrType,
		SpendPub: crypto.ScalarMultBase(crypto.RandomScalar(nil)),
		ViewPub:  crypto.ScalarMultBase(crypto.RandomScalar(nil)),
	}
	if addrType == Integrated {
		a.PaymentID = [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	}
	return a
}

func TestAddressRoundTripAllVariants(t *testing.T) {
	networks := []Network{Mainnet, Testnet, Stagenet}
	formats := []Format{Legacy, Carrot}
	types := []AddressType{Standard, Integrated, Subaddress}

	for _, n := range networks {
		for _, f := range formats {
			for _, ty := range types {
				a := testAddress(t, n, f, ty)
				s, err := a.Encode()
				require.NoError(t, err)

				decoded, err := Decode(s)
				require.NoError(t, err)
				require.Equal(t, a.Network, decoded.Network)
				require.Equal(t, a.Format, decoded.Format)
				require.Equal(t, a.Type, decoded.Type)
				require.True(t, a.SpendPub.Equal(decoded.SpendPub))
				require.True(t, a.ViewPub.Equal(decoded.ViewPub))
				if ty == Integrated {
					require.Equal(t, a.PaymentID, decoded.PaymentID)
				}
			}
		}
	}
}

func TestAddressDecodeRejectsBadChecksum(t *testing.T) {
	a := testAddress(t, Mainnet, Legacy, Standard)
	s, err := a.Encode()
	require.NoError(t, err)

	// Flip the last character, which lands in the checksum block.
	mutated := []byte(s)
	if mutated[len(mutated)-1] == 'a' {
		mutated[len(mutated)-1] = 'b'
	} else {
		mutated[len(mutated)-1] = 'a'
	}

	_, err = Decode(string(mutated))
	require.Error(t, err)
}
