package txbuilder

import (
	"crypto/subtle"
	"errors"

	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/types"
)

// TCLSAG is the ring-signature scheme active at RCT type 9 / hard fork 10
// (spec §4.11 step 12): CLSAG extended with a third, asset-type
// commitment column so a CONVERT transaction's ring signature also
// attests to which asset each ring member's output was denominated in,
// without revealing the signer's identity. No teacher file implements
// this — it is a direct generalisation of clsag.go's 3-prong (G, P, C)
// aggregation to a 4-prong (G, P, C, A) one, following the identical
// aggregated-challenge construction with a third mu_A term and a third
// "agg_2" domain-separated sub-hash.

var (
	ErrTCLSAGInvalidRing      = errors.New("tclsag: empty ring")
	ErrTCLSAGSizeMismatch     = errors.New("tclsag: ring/response/asset length mismatch")
	ErrTCLSAGInvalidD         = errors.New("tclsag: invalid D encoding")
	ErrTCLSAGChallengeMismatch = errors.New("tclsag: recomputed challenge does not match c1")
)

// TCLSAGRingMember extends CLSAGRingMember with the asset-type commitment
// column: a Pedersen commitment to a per-asset generator, binding the ring
// member to its declared asset type the same way Commitment binds it to
// its amount.
type TCLSAGRingMember struct {
	Key             *crypto.Point
	Commitment      *crypto.Point
	AssetCommitment *crypto.Point
}

type TCLSAGSignature struct {
	D  [32]byte
	S  []*crypto.Scalar
	C1 *crypto.Scalar
}

const tclsagPrefix = "TCLSAG"

func tclsagDomainBuffer(agg byte) []byte {
	buf := make([]byte, crypto.PublicKeySize)
	copy(buf, tclsagPrefix)
	copy(buf[len(tclsagPrefix):], "_agg_0")
	buf[len(tclsagPrefix)+len("_agg_0")-1] = agg
	return buf
}

func tclsagCore(prefixHash types.Hash, ring []TCLSAGRingMember, I, pseudoOut, pseudoAssetOut, straightD *crypto.Point, s []*crypto.Scalar, seed func(data []byte) (start, end int, c1 *crypto.Scalar)) (muP, muC, muA, c1 *crypto.Scalar) {
	DInvEight := crypto.ScalarMult(clsagInvEight, straightD)

	data := tclsagDomainBuffer('0')

	P := make([]*crypto.Point, len(ring))
	C := make([]*crypto.Point, len(ring))
	A := make([]*crypto.Point, len(ring))
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
	for i, m := range ring {
		A[i] = crypto.Sub(m.AssetCommitment, pseudoAssetOut)
		b := m.AssetCommitment.Bytes()
		data = append(data, b[:]...)
	}
	Ib := I.Bytes()
	data = append(data, Ib[:]...)
	dInvB := DInvEight.Bytes()
	data = append(data, dInvB[:]...)
	pb := pseudoOut.Bytes()
	data = append(data, pb[:]...)
	pab := pseudoAssetOut.Bytes()
	data = append(data, pab[:]...)

	muP = crypto.HashToScalar(data)
	data[len(tclsagPrefix)+len("_agg_0")-1] = '1'
	muC = crypto.HashToScalar(data)
	data[len(tclsagPrefix)+len("_agg_0")-1] = '2'
	muA = crypto.HashToScalar(data)

	fixedLen := ((3 * len(ring)) + 1) * crypto.PublicKeySize
	data = data[:fixedLen]
	copy(data[len(tclsagPrefix):], "_round")
	data = append(data, pb[:]...)
	data = append(data, pab[:]...)
	data = append(data, prefixHash[:]...)

	start, end, c := seed(data)
	c1 = crypto.ScalarZero().Set(c)

	truncLen := ((3 * len(ring)) + 4) * crypto.PublicKeySize

	var L, R *crypto.Point
	for j := start; j < end; j++ {
		i := j % len(ring)

		cP := crypto.ScalarZero().Mul(muP, c)
		cC := crypto.ScalarZero().Mul(muC, c)
		cA := crypto.ScalarZero().Mul(muA, c)

		L = crypto.WeightedSum([]*crypto.Scalar{s[i], cP, cC, cA}, []*crypto.Point{crypto.GeneratorG, P[i], C[i], A[i]})

		PHi := crypto.BiasedHashToPoint(P[i].Slice())
		R = crypto.WeightedSum([]*crypto.Scalar{cP, cC, cA, s[i]}, []*crypto.Point{I, straightD, straightD, PHi})

		data = data[:truncLen]
		lb := L.Bytes()
		rb := R.Bytes()
		data = append(data, lb[:]...)
		data = append(data, rb[:]...)
		c = crypto.HashToScalar(data)

		if subtle.ConstantTimeEq(int32(i), int32(len(ring)-1)) == 1 {
			c1.Set(c)
		}
	}

	return crypto.ScalarZero().Mul(c, muP), crypto.ScalarZero().Mul(c, muC), crypto.ScalarZero().Mul(c, muA), c1
}

// SignTCLSAG mirrors SignCLSAG with the additional asset-type mask delta
// (assetMaskDelta) between the real member's asset commitment and the
// chosen pseudo-asset-output commitment.
func SignTCLSAG(prefixHash types.Hash, ring []TCLSAGRingMember, signerIndex int, oneTimeSecret, maskDelta, assetMaskDelta *crypto.Scalar, pseudoOut, pseudoAssetOut *crypto.Point, rng func() *crypto.Scalar) (*TCLSAGSignature, error) {
	if len(ring) == 0 {
		return nil, ErrTCLSAGInvalidRing
	}

	I := crypto.KeyImage(oneTimeSecret, ring[signerIndex].Key)
	H := crypto.BiasedHashToPoint(ring[signerIndex].Key.Slice())
	// D folds both the amount and asset mask deltas into one generator
	// term, since both columns share the same key-image generator H.
	combinedDelta := crypto.ScalarZero().Add(maskDelta, assetMaskDelta)
	D := crypto.ScalarMult(combinedDelta, H)

	s := make([]*crypto.Scalar, len(ring))
	for i := range s {
		s[i] = rng()
	}
	nonce := rng()
	A := crypto.ScalarMultBase(nonce)
	AH := crypto.ScalarMult(nonce, H)

	cMuP, cMuC, cMuA, c1 := tclsagCore(prefixHash, ring, I, pseudoOut, pseudoAssetOut, D, s, func(data []byte) (int, int, *crypto.Scalar) {
		Ab := A.Bytes()
		AHb := AH.Bytes()
		data = append(data, Ab[:]...)
		data = append(data, AHb[:]...)
		return signerIndex + 1, signerIndex + len(ring), crypto.HashToScalar(data)
	})

	challengedKey := crypto.ScalarZero().Mul(cMuP, oneTimeSecret)
	challengedMask := crypto.ScalarZero().Mul(cMuC, maskDelta)
	challengedAssetMask := crypto.ScalarZero().Mul(cMuA, assetMaskDelta)
	sum := crypto.ScalarZero().Add(challengedKey, crypto.ScalarZero().Add(challengedMask, challengedAssetMask))
	s[signerIndex] = crypto.ScalarZero().Sub(nonce, sum)

	sig := &TCLSAGSignature{D: crypto.ScalarMult(clsagInvEight, D).Bytes(), S: s, C1: c1}
	if err := VerifyTCLSAG(prefixHash, ring, sig, I, pseudoOut, pseudoAssetOut); err != nil {
		return nil, err
	}
	return sig, nil
}

func VerifyTCLSAG(prefixHash types.Hash, ring []TCLSAGRingMember, sig *TCLSAGSignature, I, pseudoOut, pseudoAssetOut *crypto.Point) error {
	if len(ring) == 0 {
		return ErrTCLSAGInvalidRing
	}
	if len(ring) != len(sig.S) {
		return ErrTCLSAGSizeMismatch
	}
	straightD, ok := crypto.PointDecompress(sig.D)
	if !ok {
		return ErrTCLSAGInvalidD
	}
	straightD = crypto.ScalarMult(eightScalar(), straightD)

	_, _, _, c1 := tclsagCore(prefixHash, ring, I, pseudoOut, pseudoAssetOut, straightD, sig.S, func(data []byte) (int, int, *crypto.Scalar) {
		return 0, len(ring), sig.C1
	})
	if !c1.Equal(sig.C1) {
		return ErrTCLSAGChallengeMismatch
	}
	return nil
}
