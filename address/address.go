package address

import (
	"bytes"
	"encoding/binary"
	"errors"

	base58 "git.gammaspectra.live/P2Pool/monero-base58"
	"github.com/mxhess/salvium-walletcore/crypto"
)

// ChecksumLength is the width of the trailing integrity checksum appended
// before base58 encoding.
const ChecksumLength = 4

// PaymentIDSize is the width of the short payment ID carried by integrated
// addresses.
const PaymentIDSize = 8

var (
	ErrInvalidChecksum   = errors.New("address checksum mismatch")
	ErrInvalidBase58     = errors.New("invalid base58 encoding")
	ErrUnknownTag        = errors.New("unknown address tag")
	ErrWrongPayload      = errors.New("address payload has the wrong length for its type")
	ErrNoTagForVariant   = errors.New("no varint tag defined for this network/format/type combination")
)

// Address is the decoded (network, format, type, keys, payment id?) tuple
// described in spec §3.
type Address struct {
	Network    Network
	Format     Format
	Type       AddressType
	SpendPub   *crypto.Point
	ViewPub    *crypto.Point
	PaymentID  [PaymentIDSize]byte // only meaningful when Type == Integrated
}

// Encode implements spec §4.4:
//
//	base58_cn(varint(tag) || K_spend || K_view || [payment_id] || keccak256(varint(tag)||payload)[0..4])
func (a *Address) Encode() (string, error) {
	tag, ok := tagFor(a.Network, a.Format, a.Type)
	if !ok {
		return "", ErrNoTagForVariant
	}

	var tagBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tagBuf[:], tag)
	tagBytes := tagBuf[:n]

	payload := make([]byte, 0, crypto.PublicKeySize*2+PaymentIDSize)
	spend := a.SpendPub.Bytes()
	view := a.ViewPub.Bytes()
	payload = append(payload, spend[:]...)
	payload = append(payload, view[:]...)
	if a.Type == Integrated {
		payload = append(payload, a.PaymentID[:]...)
	}

	preChecksum := make([]byte, 0, len(tagBytes)+len(payload))
	preChecksum = append(preChecksum, tagBytes...)
	preChecksum = append(preChecksum, payload...)
	sum := crypto.Keccak256(preChecksum)

	out := base58.EncodeMoneroBase58PreAllocated(make([]byte, 0, len(preChecksum)+ChecksumLength+16), tagBytes, payload, sum[:ChecksumLength])
	return string(out), nil
}

// Decode implements the inverse of Encode, rejecting on checksum mismatch,
// invalid base58 alphabet/block length, or an unrecognised tag.
func Decode(s string) (*Address, error) {
	raw := base58.DecodeMoneroBase58PreAllocated(make([]byte, 0, 128), []byte(s))
	if raw == nil {
		return nil, ErrInvalidBase58
	}

	tag, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, ErrInvalidBase58
	}

	network, format, addrType, ok := fromTag(tag)
	if !ok {
		return nil, ErrUnknownTag
	}

	payload := raw[n:]
	wantLen := crypto.PublicKeySize * 2
	if addrType == Integrated {
		wantLen += PaymentIDSize
	}
	if len(payload) != wantLen+ChecksumLength {
		return nil, ErrWrongPayload
	}

	body := payload[:wantLen]
	checksum := payload[wantLen:]

	sum := crypto.Keccak256(raw[:n+wantLen])
	if !bytes.Equal(sum[:ChecksumLength], checksum) {
		return nil, ErrInvalidChecksum
	}

	spend, ok := crypto.PointDecompress([32]byte(body[:32]))
	if !ok {
		return nil, errors.New("invalid spend public key")
	}
	view, ok := crypto.PointDecompress([32]byte(body[32:64]))
	if !ok {
		return nil, errors.New("invalid view public key")
	}

	a := &Address{
		Network:  network,
		Format:   format,
		Type:     addrType,
		SpendPub: spend,
		ViewPub:  view,
	}
	if addrType == Integrated {
		copy(a.PaymentID[:], body[64:72])
	}
	return a, nil
}
