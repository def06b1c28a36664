package crypto

// CARROT transcript primitives (spec §4.5, §4.11). The reference protocol
// runs its Diffie-Hellman exchange over Curve25519 in Montgomery form; this
// module keeps a single curve implementation throughout (see
// address.DeriveCarrotKeys, which builds K_v_main via an edwards25519
// scalar multiplication rather than a separate X25519 keypair) and derives
// the enote ephemeral shared secret the same way: s_sr = k_vi * D_e using
// the ordinary edwards25519 scalar-mult already used for every other CARROT
// operation in this package.

const (
	domainSenderReceiverSecret = "Carrot sender-receiver secret"
	domainViewTag              = "Carrot view tag"
	domainExtensionG           = "Carrot key extension G"
	domainAmountBlinding       = "Carrot commitment mask"
	domainEncryptionMaskAmount = "Carrot encryption mask a"
	domainEncryptionMaskAnchor = "Carrot encryption mask anchor"
)

// carrotTranscript reproduces H_n(FixedTranscript(domainSep, args...)) under
// key: a length-prefixed domain separator followed by the argument bytes,
// hashed with Blake2b in keyed mode.
func carrotTranscript(outLen int, key []byte, domainSep string, args ...[]byte) []byte {
	parts := make([][]byte, 0, len(args)+2)
	parts = append(parts, []byte{byte(len(domainSep))}, []byte(domainSep))
	parts = append(parts, args...)
	return Blake2bKeyed(outLen, key, parts...)
}

func carrotTranscriptScalar(key []byte, domainSep string, args ...[]byte) *Scalar {
	h := carrotTranscript(64, key, domainSep, args...)
	return ReduceFrom64([64]byte(h))
}

// CarrotSharedSecretUnctx computes the uncontextualized shared secret point
// s_sr = k_vi * D_e for an enote ephemeral public key D_e.
func CarrotSharedSecretUnctx(viewIncoming *Scalar, ephemeralPub *Point) *Point {
	return ScalarMult(viewIncoming, ephemeralPub)
}

// CarrotSenderReceiverSecret computes s^ctx_sr = H_32(s_sr, D_e, input_context).
func CarrotSenderReceiverSecret(sharedSecretUnctx *Point, ephemeralPub *Point, inputContext []byte) [32]byte {
	epb := ephemeralPub.Bytes()
	var out [32]byte
	copy(out[:], carrotTranscript(32, sharedSecretUnctx.Slice(), domainSenderReceiverSecret, epb[:], inputContext))
	return out
}

// CarrotViewTag computes the 3-byte view-tag hint vt = H_3(s_sr, D_e, input_context).
func CarrotViewTag(sharedSecretUnctx *Point, ephemeralPub *Point, inputContext []byte) [3]byte {
	epb := ephemeralPub.Bytes()
	var out [3]byte
	copy(out[:], carrotTranscript(3, sharedSecretUnctx.Slice(), domainViewTag, epb[:], inputContext))
	return out
}

// CarrotSenderExtensionG computes k^o_g = H_n(s^ctx_sr, C_a), the scalar
// extension applied to an address spend public key to form a one-time
// address (spec §4.11 step 7's simplified single-generator model).
func CarrotSenderExtensionG(senderReceiverSecret [32]byte, amountCommitment *Point) *Scalar {
	c := amountCommitment.Bytes()
	return carrotTranscriptScalar(senderReceiverSecret[:], domainExtensionG, c[:])
}

// CarrotAmountBlindingFactor computes k_a = H_n(s^ctx_sr, a, K^j_s, enote_type).
func CarrotAmountBlindingFactor(senderReceiverSecret [32]byte, amount uint64, addressSpendPub *Point, enoteType byte) *Scalar {
	var amountBuf [8]byte
	for i := range amountBuf {
		amountBuf[i] = byte(amount >> (8 * i))
	}
	spendBytes := addressSpendPub.Bytes()
	return carrotTranscriptScalar(senderReceiverSecret[:], domainAmountBlinding, amountBuf[:], spendBytes[:], []byte{enoteType})
}

// CarrotAmountEncryptionMask computes the 8-byte keystream masking an
// enote's encrypted amount, keyed to the one-time address so no two enotes
// share a mask.
func CarrotAmountEncryptionMask(senderReceiverSecret [32]byte, oneTimeAddress *Point) (out [8]byte) {
	addr := oneTimeAddress.Bytes()
	copy(out[:], carrotTranscript(8, senderReceiverSecret[:], domainEncryptionMaskAmount, addr[:]))
	return out
}

// CarrotAnchorEncryptionMask computes the 16-byte keystream masking the
// Janus anti-burning anchor.
func CarrotAnchorEncryptionMask(senderReceiverSecret [32]byte, oneTimeAddress *Point) (out [16]byte) {
	addr := oneTimeAddress.Bytes()
	copy(out[:], carrotTranscript(16, senderReceiverSecret[:], domainEncryptionMaskAnchor, addr[:]))
	return out
}

// CarrotAmountCommitment recomputes C_a = k_a*G + a*H for the amount
// verification step of the scanner.
func CarrotAmountCommitment(amount uint64, blindingFactor *Scalar) *Point {
	return PedersenCommit(amount, blindingFactor)
}

const (
	CarrotEnoteTypePayment byte = 0
	CarrotEnoteTypeChange  byte = 1
)

// MakeCoinbaseInputContext builds the input context byte string for a
// coinbase enote: 'C' followed by the little-endian block height.
func MakeCoinbaseInputContext(blockHeight uint64) []byte {
	buf := make([]byte, 9)
	buf[0] = 'C'
	for i := 0; i < 8; i++ {
		buf[1+i] = byte(blockHeight >> (8 * i))
	}
	return buf
}

// MakeInputContext builds the input context byte string for a regular
// enote: 'R' followed by the transaction's first key image.
func MakeInputContext(firstKeyImage [32]byte) []byte {
	buf := make([]byte, 33)
	buf[0] = 'R'
	copy(buf[1:], firstKeyImage[:])
	return buf
}
