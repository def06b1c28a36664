// Package address implements the CryptoNote/CARROT key-derivation trees,
// the 18-variant base58 address codec, and subaddress index tables
// described in spec §3, §4.3, §4.4, and §4.6.
package address

// Network selects which of the three deployed networks an address targets.
type Network uint8

const (
	Mainnet Network = iota
	Testnet
	Stagenet
)

// Format distinguishes the legacy CryptoNote key layout from the
// second-generation CARROT layout, active from hard fork 10 onward.
type Format uint8

const (
	Legacy Format = iota
	Carrot
)

// AddressType distinguishes plain, integrated (payment-id-carrying), and
// subaddress variants.
type AddressType uint8

const (
	Standard AddressType = iota
	Integrated
	Subaddress
)

// tag is the varint-encoded base58 prefix identifying one of the 18
// (Network, Format, AddressType) combinations. Values are taken from
// spec §6's table verbatim; they are what makes each address human-visibly
// start with the fork's chosen vanity prefix ("SaLv", "SC1", ...) once
// base58-encoded.
var tagTable = map[[3]uint8]uint64{
	{uint8(Mainnet), uint8(Legacy), uint8(Standard)}:   0x3ef318,
	{uint8(Mainnet), uint8(Legacy), uint8(Integrated)}: 0x55ef318,
	{uint8(Mainnet), uint8(Legacy), uint8(Subaddress)}: 0xf5ef318,
	{uint8(Mainnet), uint8(Carrot), uint8(Standard)}:   0x180c96,
	{uint8(Mainnet), uint8(Carrot), uint8(Integrated)}: 0x2ccc96,
	{uint8(Mainnet), uint8(Carrot), uint8(Subaddress)}: 0x314c96,

	{uint8(Testnet), uint8(Legacy), uint8(Standard)}:   0x15beb318,
	{uint8(Testnet), uint8(Legacy), uint8(Integrated)}: 0xd055eb318,
	{uint8(Testnet), uint8(Legacy), uint8(Subaddress)}: 0xa59eb318,
	{uint8(Testnet), uint8(Carrot), uint8(Standard)}:   0x254c96,
	{uint8(Testnet), uint8(Carrot), uint8(Integrated)}: 0x1ac50c96,
	{uint8(Testnet), uint8(Carrot), uint8(Subaddress)}: 0x3c54c96,

	{uint8(Stagenet), uint8(Legacy), uint8(Standard)}:   0x149eb318,
	{uint8(Stagenet), uint8(Legacy), uint8(Integrated)}: 0xf343eb318,
	{uint8(Stagenet), uint8(Legacy), uint8(Subaddress)}: 0x2d47eb318,
	{uint8(Stagenet), uint8(Carrot), uint8(Standard)}:   0x24cc96,
	{uint8(Stagenet), uint8(Carrot), uint8(Integrated)}: 0x1a848c96,
	{uint8(Stagenet), uint8(Carrot), uint8(Subaddress)}: 0x384cc96,
}

var reverseTagTable = func() map[uint64][3]uint8 {
	m := make(map[uint64][3]uint8, len(tagTable))
	for k, v := range tagTable {
		m[v] = k
	}
	return m
}()

func tagFor(network Network, format Format, addrType AddressType) (uint64, bool) {
	tag, ok := tagTable[[3]uint8{uint8(network), uint8(format), uint8(addrType)}]
	return tag, ok
}

func fromTag(tag uint64) (network Network, format Format, addrType AddressType, ok bool) {
	key, found := reverseTagTable[tag]
	if !found {
		return 0, 0, 0, false
	}
	return Network(key[0]), Format(key[1]), AddressType(key[2]), true
}
