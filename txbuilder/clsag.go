package txbuilder

import (
	"crypto/subtle"
	"errors"

	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/types"
)

// CLSAG is the ring-signature scheme active for RCT types 6-8 (spec
// §4.11 step 12): a 3-prong variant of LSAG over (one-time key, input
// commitment minus pseudo-output commitment) with an aggregated
// challenge, proving knowledge of the real signer's secret without
// revealing which ring member it is.
//
// Ported from a reference consensus library's generic sign/verify core,
// concretized to this module's single Point/Scalar instantiation and
// simplified to one ring signature per call — the multi-input balancing
// (choosing each input's pseudo-output mask so the sums cancel) is the
// caller's responsibility (build.go), not this package's.

var (
	ErrCLSAGInvalidRing       = errors.New("clsag: empty ring")
	ErrCLSAGRingSizeMismatch  = errors.New("clsag: ring/response length mismatch")
	ErrCLSAGInvalidD          = errors.New("clsag: invalid D encoding")
	ErrCLSAGChallengeMismatch = errors.New("clsag: recomputed challenge does not match c1")
)

var clsagInvEight = mustInvert8()

func mustInvert8() *crypto.Scalar {
	var b [32]byte
	b[0] = 8
	eight, ok := crypto.ScalarFromCanonicalBytes(b)
	if !ok {
		panic("unreachable: 8 is canonical")
	}
	return crypto.ScalarZero().Invert(eight)
}

const (
	clsagPrefix = "CLSAG_"
	clsagAgg0   = "agg_0"
	clsagRound  = "round"
)

// CLSAGRingMember is one ring entry's (one-time key, input commitment).
type CLSAGRingMember struct {
	Key        *crypto.Point
	Commitment *crypto.Point
}

// CLSAGSignature is a complete, serializable CLSAG proof.
type CLSAGSignature struct {
	D  [32]byte // (mask delta)*Hp(signer key), divided by the cofactor
	S  []*crypto.Scalar
	C1 *crypto.Scalar
}

// domainBuffer lays out the fixed-size "CLSAG_" + "agg_0"/"agg_1" prefix
// block the transcript hash is built from, matching the reference
// implementation's byte-for-byte domain separation.
func domainBuffer(agg byte) []byte {
	buf := make([]byte, crypto.PublicKeySize)
	copy(buf, clsagPrefix)
	copy(buf[len(clsagPrefix):], clsagAgg0)
	buf[len(clsagPrefix)+len(clsagAgg0)-1] = agg
	return buf
}

// clsagCore computes the aggregated mu_P/mu_C challenge scalars and c1 for
// a given ring, key image, pseudo-output, and D term, running the same
// round loop for both signing (where s[] has all-but-one entry pre-filled
// with random nonces, seeded from A/AH) and verification (where s[] is
// the full public response vector, seeded from the stored C1).
func clsagCore(prefixHash types.Hash, ring []CLSAGRingMember, I, pseudoOut, straightD *crypto.Point, s []*crypto.Scalar, seed func(data []byte) (start, end int, c1 *crypto.Scalar)) (muP, muC, c1 *crypto.Scalar) {
	DInvEight := crypto.ScalarMult(clsagInvEight, straightD)

	data := domainBuffer('0')

	P := make([]*crypto.Point, len(ring))
	C := make([]*crypto.Point, len(ring))
	for i, m := range ring {
		P[i] = m.Key
		b := P[i].Bytes()
		data = append(data, b[:]...)
	}
	for i, m := range ring {
		C[i] = crypto.Sub(m.Commitment, pseudoOut)
		b := m.Commitment.Bytes()
		data = append(data, b[:]...)
	}
	Ib := I.Bytes()
	data = append(data, Ib[:]...)

	dInvB := DInvEight.Bytes()
	data = append(data, dInvB[:]...)
	pb := pseudoOut.Bytes()
	data = append(data, pb[:]...)

	muP = crypto.HashToScalar(data)

	data[len(clsagPrefix)+len(clsagAgg0)-1] = '1'
	muC = crypto.HashToScalar(data)

	// Truncate to the ring-key/commitment block, switch DST to "round",
	// re-append pseudoOut and the message hash, then run the ring loop.
	data = data[:((2*len(ring))+1)*crypto.PublicKeySize]
	copy(data[len(clsagPrefix):], clsagRound)
	data = append(data, pb[:]...)
	data = append(data, prefixHash[:]...)

	start, end, c := seed(data)
	c1 = crypto.ScalarZero().Set(c)

	var L, R *crypto.Point
	for j := start; j < end; j++ {
		i := j % len(ring)

		cP := crypto.ScalarZero().Mul(muP, c)
		cC := crypto.ScalarZero().Mul(muC, c)

		// L = s_i*G + c_p*P_i + c_c*C_i
		L = crypto.WeightedSum([]*crypto.Scalar{s[i], cP, cC}, []*crypto.Point{crypto.GeneratorG, P[i], C[i]})

		PHi := crypto.BiasedHashToPoint(P[i].Slice())
		// R = c_p*I + c_c*D + s_i*PH
		R = crypto.WeightedSum([]*crypto.Scalar{cP, cC, s[i]}, []*crypto.Point{I, straightD, PHi})

		data = data[:((2*len(ring))+3)*crypto.PublicKeySize]
		lb := L.Bytes()
		rb := R.Bytes()
		data = append(data, lb[:]...)
		data = append(data, rb[:]...)
		c = crypto.HashToScalar(data)

		if subtle.ConstantTimeEq(int32(i), int32(len(ring)-1)) == 1 {
			c1.Set(c)
		}
	}

	return crypto.ScalarZero().Mul(c, muP), crypto.ScalarZero().Mul(c, muC), c1
}

// SignCLSAG produces a CLSAG proof for one input, given the real signer's
// one-time secret key, its ring position, and the mask delta between the
// input's real commitment and the chosen pseudo-output commitment.
func SignCLSAG(prefixHash types.Hash, ring []CLSAGRingMember, signerIndex int, oneTimeSecret *crypto.Scalar, maskDelta *crypto.Scalar, pseudoOut *crypto.Point, rng func() *crypto.Scalar) (*CLSAGSignature, error) {
	if len(ring) == 0 {
		return nil, ErrCLSAGInvalidRing
	}

	I := crypto.KeyImage(oneTimeSecret, ring[signerIndex].Key)
	H := crypto.BiasedHashToPoint(ring[signerIndex].Key.Slice())
	D := crypto.ScalarMult(maskDelta, H)

	s := make([]*crypto.Scalar, len(ring))
	for i := range s {
		s[i] = rng()
	}

	nonce := rng()
	A := crypto.ScalarMultBase(nonce)
	generator := crypto.BiasedHashToPoint(ring[signerIndex].Key.Slice())
	AH := crypto.ScalarMult(nonce, generator)

	cMuP, cMuC, c1 := clsagCore(prefixHash, ring, I, pseudoOut, D, s, func(data []byte) (int, int, *crypto.Scalar) {
		Ab := A.Bytes()
		AHb := AH.Bytes()
		data = append(data, Ab[:]...)
		data = append(data, AHb[:]...)
		return signerIndex + 1, signerIndex + len(ring), crypto.HashToScalar(data)
	})

	challengedKey := crypto.ScalarZero().Mul(cMuP, oneTimeSecret)
	challengedMask := crypto.ScalarZero().Mul(cMuC, maskDelta)
	s[signerIndex] = crypto.ScalarZero().Sub(nonce, crypto.ScalarZero().Add(challengedKey, challengedMask))

	sig := &CLSAGSignature{D: crypto.ScalarMult(clsagInvEight, D).Bytes(), S: s, C1: c1}
	if err := VerifyCLSAG(prefixHash, ring, sig, I, pseudoOut); err != nil {
		return nil, err
	}
	return sig, nil
}

// VerifyCLSAG checks a CLSAG proof against a ring, key image, and
// pseudo-output commitment.
func VerifyCLSAG(prefixHash types.Hash, ring []CLSAGRingMember, sig *CLSAGSignature, I, pseudoOut *crypto.Point) error {
	if len(ring) == 0 {
		return ErrCLSAGInvalidRing
	}
	if len(ring) != len(sig.S) {
		return ErrCLSAGRingSizeMismatch
	}
	straightD, ok := crypto.PointDecompress(sig.D)
	if !ok {
		return ErrCLSAGInvalidD
	}
	straightD = crypto.ScalarMult(eightScalar(), straightD)

	_, _, c1 := clsagCore(prefixHash, ring, I, pseudoOut, straightD, sig.S, func(data []byte) (int, int, *crypto.Scalar) {
		return 0, len(ring), sig.C1
	})

	if !c1.Equal(sig.C1) {
		return ErrCLSAGChallengeMismatch
	}
	return nil
}

func eightScalar() *crypto.Scalar {
	var b [32]byte
	b[0] = 8
	s, _ := crypto.ScalarFromCanonicalBytes(b)
	return s
}
