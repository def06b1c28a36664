package crypto

import (
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/edwards25519"
	"git.gammaspectra.live/P2Pool/edwards25519/field"
	"golang.org/x/crypto/blake2b"
)

var (
	fieldOne         = new(field.Element).One()
	fieldNegativeOne = new(field.Element).Negate(fieldOne)
	fieldA           = fieldFromUint64(486662)
	fieldNegativeA   = new(field.Element).Negate(fieldA)
)

func fieldFromUint64(x uint64) *field.Element {
	var b [32]byte
	binary.LittleEndian.PutUint64(b[:], x)
	e, err := new(field.Element).SetBytes(b[:])
	if err != nil {
		panic(err)
	}
	return e
}

// decodeMontgomeryPoint applies the birational map from a Curve25519 u
// coordinate (plus a sign bit for the corresponding v) to an Edwards25519
// point, then attempts canonical decompression. Returns nil if u has no
// valid image (u == -1) or the resulting y-coordinate is not on the curve.
func decodeMontgomeryPoint(u *field.Element, sign int) *edwards25519.Point {
	if u == nil || u.Equal(fieldNegativeOne) == 1 {
		return nil
	}

	var tmp1, tmp2 field.Element
	y := new(field.Element).Multiply(
		tmp1.Subtract(u, fieldOne),
		tmp2.Invert(tmp2.Add(u, fieldOne)),
	)

	var yBytes [32]byte
	copy(yBytes[:], y.Bytes())
	yBytes[31] ^= byte(sign << 7)

	p := new(edwards25519.Point)
	if _, err := p.SetBytes(yBytes[:]); err != nil {
		return nil
	}
	return p
}

// elligator2 maps 32 uniform bytes onto a Curve25519 u-coordinate (per
// Elligator 2, "Elliptic-curve points indistinguishable from uniform random
// strings", section 5.5, with the Curve25519 parameter u=2), then lifts
// that coordinate to an Edwards25519 point via decodeMontgomeryPoint. This
// only covers points whose Montgomery-form derivative is a quadratic
// residue and is therefore biased; UnbiasedHashToPoint combines two
// applications to cover the full range.
func elligator2(buf [32]byte) *edwards25519.Point {
	var r, tmp1, tmp2, tmp3 field.Element
	_, _ = r.SetBytes(buf[:])

	urSquare := r.Square(&r)
	urSquareDouble := urSquare.Add(urSquare, urSquare)
	onePlusUrSquare := urSquareDouble.Add(fieldOne, urSquareDouble)
	onePlusUrSquareInverted := onePlusUrSquare.Invert(onePlusUrSquare)

	upsilon := onePlusUrSquareInverted.Multiply(fieldNegativeA, onePlusUrSquareInverted)
	otherCandidate := new(field.Element).Subtract(tmp1.Negate(upsilon), fieldA)

	_, epsilon := tmp3.SqrtRatio(
		tmp3.Add(
			tmp3.Multiply(
				tmp1.Add(upsilon, fieldA),
				tmp2.Square(upsilon),
			),
			upsilon,
		),
		fieldOne,
	)

	u := r.Select(upsilon, otherCandidate, epsilon)
	return decodeMontgomeryPoint(u, epsilon)
}

// BiasedHashToPoint is the classic CryptoNote hash_to_ec function used for
// key-image derivation: a single Elligator 2 application over
// Keccak256(data), lifted into the prime-order subgroup.
func BiasedHashToPoint(data ...[]byte) *Point {
	h := Keccak256(data...)
	e := elligator2([32]byte(h))
	e.MultByCofactor(e)
	p := &Point{}
	p.inner.Set(e)
	return p
}

// UnbiasedHashToPoint is the two-application Elligator 2 hash-to-point used
// for nothing-up-my-sleeve generators (H_p^2 in the CARROT notation): the
// preimage is split via Blake2b-512 into two uniform 32-byte halves, each
// mapped independently, and the results added.
func UnbiasedHashToPoint(preimage []byte) *Point {
	h := blake2b.Sum512(preimage)
	first := elligator2([32]byte(h[:32]))
	second := elligator2([32]byte(h[32:]))
	first.MultByCofactor(first)
	second.MultByCofactor(second)

	p := &Point{}
	p.inner.Add(first, second)
	return p
}

// HopefulHashToPoint interprets Keccak256(data) directly as a compressed
// point (succeeding only when the bytes happen to decode, roughly half the
// time) and multiplies by the cofactor. Used solely to derive GeneratorH
// from GeneratorG, where the teacher's fork already knows this succeeds for
// the canonical basepoint encoding.
func HopefulHashToPoint(data []byte) *Point {
	h := Keccak256(data)
	p, ok := PointDecompress([32]byte(h))
	if !ok {
		return nil
	}
	p.inner.MultByCofactor(&p.inner)
	return p
}
