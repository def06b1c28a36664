package address

import (
	"encoding/binary"

	"github.com/mxhess/salvium-walletcore/crypto"
)

// SubaddressIndex identifies a deterministically derived secondary address
// sharing a wallet; (0,0) is the main address.
type SubaddressIndex struct {
	Account uint32 // major index
	Offset  uint32 // minor index
}

var ZeroSubaddressIndex = SubaddressIndex{}

func (i SubaddressIndex) IsZero() bool {
	return i == ZeroSubaddressIndex
}

var hashKeySubaddress = []byte("SubAddr\x00")

// LegacySubaddressSecret computes H_s("SubAddr\0" || k_v || major || minor),
// the scalar offset applied to the main spend public key.
func LegacySubaddressSecret(viewSecret *crypto.Scalar, index SubaddressIndex) *crypto.Scalar {
	var major, minor [4]byte
	binary.LittleEndian.PutUint32(major[:], index.Account)
	binary.LittleEndian.PutUint32(minor[:], index.Offset)
	return crypto.HashToScalar(hashKeySubaddress, viewSecret.Slice(), major[:], minor[:])
}

// LegacySubaddressSpendPublic computes K_s^{(i,j)} = K_s + H_s(...)*G.
func LegacySubaddressSpendPublic(mainSpend *crypto.Point, viewSecret *crypto.Scalar, index SubaddressIndex) *crypto.Point {
	if index.IsZero() {
		return mainSpend
	}
	m := LegacySubaddressSecret(viewSecret, index)
	return crypto.Add(mainSpend, crypto.ScalarMultBase(m))
}

// LegacySubaddressViewPublic computes the paired view public key
// C = k_v * D for a derived subaddress spend public key D.
func LegacySubaddressViewPublic(viewSecret *crypto.Scalar, spendPublic *crypto.Point) *crypto.Point {
	return crypto.ScalarMult(viewSecret, spendPublic)
}

const domainAddressIndexGenerator = "Carrot address index generator"
const domainSubaddressScalar = "Carrot subaddress scalar"

// CarrotIndexGeneratorSecret computes s^j_gen =
// H_32[s_ga](j_major, j_minor), the address-index generator secret.
func CarrotIndexGeneratorSecret(generateAddressSecret [32]byte, index SubaddressIndex) [32]byte {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], index.Account)
	binary.LittleEndian.PutUint32(buf[4:], index.Offset)
	return [32]byte(crypto.Blake2b32(generateAddressSecret[:], []byte(domainAddressIndexGenerator), buf[:]))
}

// CarrotSubaddressScalar computes k^j_subscal =
// H_n(K_s, j_major, j_minor, s^j_gen), the scalar extension applied to the
// CARROT spend public key to derive a subaddress.
func CarrotSubaddressScalar(spendPublic *crypto.Point, index SubaddressIndex, generatorSecret [32]byte) *crypto.Scalar {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[:4], index.Account)
	binary.LittleEndian.PutUint32(buf[4:], index.Offset)
	spendBytes := spendPublic.Bytes()
	return crypto.ScalarDerive(generatorSecret[:], []byte(domainSubaddressScalar), spendBytes[:], buf[:])
}

// CarrotSubaddressSpendPublic derives a CARROT subaddress spend public key:
// K_s^j = K_s + k^j_subscal * G.
func CarrotSubaddressSpendPublic(mainSpend *crypto.Point, index SubaddressIndex, generateAddressSecret [32]byte) *crypto.Point {
	if index.IsZero() {
		return mainSpend
	}
	genSecret := CarrotIndexGeneratorSecret(generateAddressSecret, index)
	scalar := CarrotSubaddressScalar(mainSpend, index, genSecret)
	return crypto.Add(mainSpend, crypto.ScalarMultBase(scalar))
}
