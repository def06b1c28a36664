package address

import "github.com/mxhess/salvium-walletcore/crypto"

// Default lookahead grid dimensions (spec §4.6). Configurable per Table so
// a wallet with a wider usage pattern can grow its scan window.
const (
	DefaultMajorLookahead = 50
	DefaultMinorLookahead = 200
)

// Table precomputes a spend-public-key -> (major, minor) map for both the
// legacy and CARROT derivation schemes, letting the scanner's ownership
// test be a map lookup instead of a per-candidate EC computation.
type Table struct {
	major, minor uint32
	byKey        map[[crypto.PublicKeySize]byte]SubaddressIndex
}

// NewLegacyTable builds the table for a legacy account across the given
// lookahead grid.
func NewLegacyTable(mainSpend *crypto.Point, viewSecret *crypto.Scalar, major, minor uint32) *Table {
	t := &Table{major: major, minor: minor, byKey: make(map[[crypto.PublicKeySize]byte]SubaddressIndex, major*minor)}
	for i := uint32(0); i < major; i++ {
		for j := uint32(0); j < minor; j++ {
			idx := SubaddressIndex{Account: i, Offset: j}
			spend := LegacySubaddressSpendPublic(mainSpend, viewSecret, idx)
			t.byKey[spend.Bytes()] = idx
		}
	}
	return t
}

// NewCarrotTable builds the table for a CARROT account across the given
// lookahead grid.
func NewCarrotTable(mainSpend *crypto.Point, generateAddressSecret [32]byte, major, minor uint32) *Table {
	t := &Table{major: major, minor: minor, byKey: make(map[[crypto.PublicKeySize]byte]SubaddressIndex, major*minor)}
	for i := uint32(0); i < major; i++ {
		for j := uint32(0); j < minor; j++ {
			idx := SubaddressIndex{Account: i, Offset: j}
			spend := CarrotSubaddressSpendPublic(mainSpend, idx, generateAddressSecret)
			t.byKey[spend.Bytes()] = idx
		}
	}
	return t
}

// Lookup returns the (major, minor) index owning spendPublic, or false if
// it falls outside the precomputed lookahead grid.
func (t *Table) Lookup(spendPublic *crypto.Point) (SubaddressIndex, bool) {
	idx, ok := t.byKey[spendPublic.Bytes()]
	return idx, ok
}

func (t *Table) Size() int {
	return len(t.byKey)
}
