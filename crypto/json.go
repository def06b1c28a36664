package crypto

import (
	"encoding/hex"
	"errors"
)

// MarshalJSON encodes a Scalar as a lowercase hex string, matching the
// teacher's convention for fixed-width key material (see
// monero/address/packed.go's PublicKeyBytes JSON codec).
func (s *Scalar) MarshalJSON() ([]byte, error) {
	return marshalHex(s.Slice())
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	raw, err := unmarshalHex(b, PrivateKeySize)
	if err != nil {
		return err
	}
	v, ok := ScalarFromCanonicalBytes([32]byte(raw))
	if !ok {
		return errors.New("scalar is not canonically reduced")
	}
	*s = *v
	return nil
}

func (p *Point) MarshalJSON() ([]byte, error) {
	return marshalHex(p.Slice())
}

func (p *Point) UnmarshalJSON(b []byte) error {
	raw, err := unmarshalHex(b, PublicKeySize)
	if err != nil {
		return err
	}
	v, ok := PointDecompress([32]byte(raw))
	if !ok {
		return errors.New("point does not decompress to a valid curve point")
	}
	*p = *v
	return nil
}

func marshalHex(b []byte) ([]byte, error) {
	out := make([]byte, hex.EncodedLen(len(b))+2)
	out[0] = '"'
	hex.Encode(out[1:len(out)-1], b)
	out[len(out)-1] = '"'
	return out, nil
}

func unmarshalHex(b []byte, size int) ([]byte, error) {
	if len(b) != size*2+2 || b[0] != '"' || b[len(b)-1] != '"' {
		return nil, errors.New("invalid hex-quoted length")
	}
	raw := make([]byte, size)
	if _, err := hex.Decode(raw, b[1:len(b)-1]); err != nil {
		return nil, err
	}
	return raw, nil
}
