package txbuilder

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/mxhess/salvium-walletcore/chainpolicy"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/types"
)

// Canonical transaction encoding per spec §4.11 step 13: a prefix
// (version, unlock_time, vin[], vout[], extra[]) followed by the RCT
// signature section (type, fee, ecdh-info, outPk, bulletproofs, ring
// signatures), with tx_hash = Keccak256(serialize_prefix). Integers use
// LEB128 varints via the standard library's binary.AppendUvarint.
const (
	vinTagToKey        = 0x02
	voutTagToKey       = 0x02
	voutTagToCarrotKey = 0x03
)

func appendVarint(buf []byte, v uint64) []byte {
	return binary.AppendUvarint(buf, v)
}

// serializeVin encodes one txin_to_key entry: amount (always 0 post-RCT),
// the ring's global indices delta-encoded (first absolute, rest relative
// to the previous, ascending — Monero's standard compaction), then the
// 32-byte key image.
func serializeVin(buf []byte, in *PreparedInput) []byte {
	buf = append(buf, vinTagToKey)
	buf = appendVarint(buf, 0)
	buf = appendVarint(buf, uint64(len(in.Ring)))
	var prev uint64
	for i, m := range in.Ring {
		delta := m.GlobalIndex
		if i > 0 {
			delta = m.GlobalIndex - prev
		}
		buf = appendVarint(buf, delta)
		prev = m.GlobalIndex
	}
	kib := in.KeyImage.Bytes()
	buf = append(buf, kib[:]...)
	return buf
}

func serializeVout(buf []byte, out *PreparedOutput) []byte {
	buf = appendVarint(buf, 0)
	if out.IsCarrot {
		buf = append(buf, voutTagToCarrotKey)
		buf = append(buf, out.OneTimeAddress[:]...)
		buf = append(buf, out.ViewTag3[:]...)
		buf = append(buf, out.EncryptedAnchor[:]...)
	} else {
		buf = append(buf, voutTagToKey)
		buf = append(buf, out.OneTimeAddress[:]...)
		buf = append(buf, out.ViewTag1)
	}
	return buf
}

// SerializePrefix builds the hashed, signed portion of the transaction.
func SerializePrefix(policy chainpolicy.Policy, unlockHeight uint64, inputs []*PreparedInput, outputs []*PreparedOutput, extra []byte) []byte {
	buf := make([]byte, 0, 256)
	buf = appendVarint(buf, uint64(policy.TxVersion))
	buf = appendVarint(buf, unlockHeight)

	buf = appendVarint(buf, uint64(len(inputs)))
	for _, in := range inputs {
		buf = serializeVin(buf, in)
	}

	buf = appendVarint(buf, uint64(len(outputs)))
	for _, out := range outputs {
		buf = serializeVout(buf, out)
	}

	buf = appendVarint(buf, uint64(len(extra)))
	buf = append(buf, extra...)
	return buf
}

// AssembleExtra builds the tx_extra field: the first distinct ephemeral
// public key used across the outputs under the tx-pubkey tag, any further
// distinct keys together under one additional-pubkeys tag (spec §4.11 step
// 13's "extra carries the tx public key(s)"), followed by an optional
// payment ID nonce field.
func AssembleExtra(outputs []*PreparedOutput, paymentID *[8]byte) []byte {
	const (
		extraTagPubkey   = 0x01
		extraTagNonce    = 0x02
		extraTagAddlKeys = 0x04
		nonceTagEncPid   = 0x01
	)

	seen := map[[32]byte]bool{}
	var extra []byte
	var additional [][32]byte
	for _, out := range outputs {
		if seen[out.EphemeralPub] {
			continue
		}
		seen[out.EphemeralPub] = true
		additional = append(additional, out.EphemeralPub)
	}
	if len(additional) > 0 {
		extra = append(extra, extraTagPubkey)
		extra = append(extra, additional[0][:]...)
	}
	if len(additional) > 1 {
		extra = append(extra, extraTagAddlKeys)
		extra = appendVarint(extra, uint64(len(additional)-1))
		for _, k := range additional[1:] {
			extra = append(extra, k[:]...)
		}
	}
	if paymentID != nil {
		extra = append(extra, extraTagNonce)
		extra = appendVarint(extra, 9)
		extra = append(extra, nonceTagEncPid)
		extra = append(extra, paymentID[:]...)
	}
	return extra
}

// serializeRangeProof lays out a RangeProof's points and scalars in a
// fixed field order.
func serializeRangeProof(buf []byte, p *RangeProof) []byte {
	appendPoint := func(pt *crypto.Point) {
		b := pt.Bytes()
		buf = append(buf, b[:]...)
	}
	appendScalar := func(s *crypto.Scalar) {
		b := s.Bytes()
		buf = append(buf, b[:]...)
	}
	appendPoint(p.A)
	appendPoint(p.S)
	appendPoint(p.T1)
	appendPoint(p.T2)
	appendScalar(p.T)
	appendScalar(p.TauX)
	appendScalar(p.Mu)
	buf = appendVarint(buf, uint64(len(p.L)))
	for i := range p.L {
		appendPoint(p.L[i])
		appendPoint(p.R[i])
	}
	appendScalar(p.Afinal)
	appendScalar(p.Bfinal)
	return buf
}

// serializeCLSAG and serializeTCLSAG lay out one ring signature.
func serializeCLSAG(buf []byte, sig *CLSAGSignature) []byte {
	buf = appendVarint(buf, uint64(len(sig.S)))
	for _, s := range sig.S {
		b := s.Bytes()
		buf = append(buf, b[:]...)
	}
	c1b := sig.C1.Bytes()
	buf = append(buf, c1b[:]...)
	buf = append(buf, sig.D[:]...)
	return buf
}

func serializeTCLSAG(buf []byte, sig *TCLSAGSignature) []byte {
	buf = appendVarint(buf, uint64(len(sig.S)))
	for _, s := range sig.S {
		b := s.Bytes()
		buf = append(buf, b[:]...)
	}
	c1b := sig.C1.Bytes()
	buf = append(buf, c1b[:]...)
	buf = append(buf, sig.D[:]...)
	return buf
}

// RctSection carries the built proofs for a transaction: exactly one of
// CLSAGSigs or TCLSAGSigs is populated, matching policy.SigType.
type RctSection struct {
	Type        chainpolicy.RctType
	Fee         uint64
	EcdhAmounts []uint64 // per-output legacy encrypted amount; 0 for carrot outputs (amount lives in the enote)
	OutPk       []*crypto.Point
	Range       *RangeProof
	CLSAGSigs   []*CLSAGSignature
	TCLSAGSigs  []*TCLSAGSignature
}

// SerializeRctSignatures encodes the RCT signature section that follows
// the prefix in the final blob.
func SerializeRctSignatures(rct *RctSection) []byte {
	buf := make([]byte, 0, 256)
	buf = append(buf, byte(rct.Type))
	buf = appendVarint(buf, rct.Fee)
	for _, a := range rct.EcdhAmounts {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], a)
		buf = append(buf, b[:]...)
	}
	for _, p := range rct.OutPk {
		b := p.Bytes()
		buf = append(buf, b[:]...)
	}
	if rct.Range != nil {
		buf = serializeRangeProof(buf, rct.Range)
	}
	for _, s := range rct.CLSAGSigs {
		buf = serializeCLSAG(buf, s)
	}
	for _, s := range rct.TCLSAGSigs {
		buf = serializeTCLSAG(buf, s)
	}
	return buf
}

// FinalizeTransaction hashes the prefix (the value every ring signature
// was computed over) and concatenates it with the RCT section to produce
// the broadcastable blob.
func FinalizeTransaction(prefix []byte, rct *RctSection) (types.Hash, []byte) {
	txHash := crypto.Keccak256(prefix)
	blob := make([]byte, 0, len(prefix)+256)
	blob = append(blob, prefix...)
	blob = append(blob, SerializeRctSignatures(rct)...)
	return txHash, blob
}

// EncodeHex renders a blob as the hex string SendRawTransaction expects.
func EncodeHex(blob []byte) string {
	return hex.EncodeToString(blob)
}
