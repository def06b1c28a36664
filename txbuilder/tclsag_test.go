package txbuilder

import (
	"testing"

	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/types"
)

func randomTCLSAGRingMember(rng func() *crypto.Scalar) TCLSAGRingMember {
	return TCLSAGRingMember{
		Key:             crypto.ScalarMultBase(rng()),
		Commitment:      crypto.PedersenCommit(777, rng()),
		AssetCommitment: crypto.PedersenCommit(0, crypto.IdentityMask()),
	}
}

func TestTCLSAGSignAndVerify(t *testing.T) {
	rng := counterRNG()

	oneTimeSecret := rng()
	signerKey := crypto.ScalarMultBase(oneTimeSecret)

	amount := uint64(42000)
	mask := rng()
	commitment := crypto.PedersenCommit(amount, mask)
	assetCommitment := crypto.PedersenCommit(0, crypto.IdentityMask())

	pseudoMask := rng()
	pseudoOut := crypto.PedersenCommit(amount, pseudoMask)
	maskDelta := crypto.ScalarZero().Sub(mask, pseudoMask)
	pseudoAssetOut := crypto.PedersenCommit(0, crypto.IdentityMask())
	assetMaskDelta := crypto.ScalarZero()

	ring := []TCLSAGRingMember{
		{Key: signerKey, Commitment: commitment, AssetCommitment: assetCommitment},
		randomTCLSAGRingMember(rng),
		randomTCLSAGRingMember(rng),
	}

	var prefixHash types.Hash
	prefixHash[0] = 0xCD

	sig, err := SignTCLSAG(prefixHash, ring, 0, oneTimeSecret, maskDelta, assetMaskDelta, pseudoOut, pseudoAssetOut, rng)
	if err != nil {
		t.Fatalf("SignTCLSAG: %v", err)
	}

	I := crypto.KeyImage(oneTimeSecret, signerKey)
	if err := VerifyTCLSAG(prefixHash, ring, sig, I, pseudoOut, pseudoAssetOut); err != nil {
		t.Fatalf("VerifyTCLSAG: %v", err)
	}
}

// TestTCLSAGSignAndVerifyWithNonUnitSecret is the TCLSAG counterpart of
// TestCLSAGSignAndVerifyWithNonUnitSecret: it discards the counterRNG's
// first (value-1) draw before using a later one as oneTimeSecret, so a
// missing oneTimeSecret multiplication on the P column would surface here
// even though it would pass unnoticed with a secret of exactly 1.
func TestTCLSAGSignAndVerifyWithNonUnitSecret(t *testing.T) {
	rng := counterRNG()
	_ = rng() // discard the value-1 draw

	oneTimeSecret := rng()
	signerKey := crypto.ScalarMultBase(oneTimeSecret)

	amount := uint64(9999)
	mask := rng()
	commitment := crypto.PedersenCommit(amount, mask)
	assetCommitment := crypto.PedersenCommit(0, crypto.IdentityMask())

	pseudoMask := rng()
	pseudoOut := crypto.PedersenCommit(amount, pseudoMask)
	maskDelta := crypto.ScalarZero().Sub(mask, pseudoMask)
	pseudoAssetOut := crypto.PedersenCommit(0, crypto.IdentityMask())
	assetMaskDelta := crypto.ScalarZero()

	ring := []TCLSAGRingMember{
		{Key: signerKey, Commitment: commitment, AssetCommitment: assetCommitment},
		randomTCLSAGRingMember(rng),
		randomTCLSAGRingMember(rng),
	}

	var prefixHash types.Hash
	prefixHash[0] = 0xEE

	sig, err := SignTCLSAG(prefixHash, ring, 0, oneTimeSecret, maskDelta, assetMaskDelta, pseudoOut, pseudoAssetOut, rng)
	if err != nil {
		t.Fatalf("SignTCLSAG: %v", err)
	}

	I := crypto.KeyImage(oneTimeSecret, signerKey)
	if err := VerifyTCLSAG(prefixHash, ring, sig, I, pseudoOut, pseudoAssetOut); err != nil {
		t.Fatalf("VerifyTCLSAG: %v", err)
	}
}

func TestTCLSAGRejectsSizeMismatch(t *testing.T) {
	rng := counterRNG()
	ring := []TCLSAGRingMember{randomTCLSAGRingMember(rng)}
	sig := &TCLSAGSignature{S: []*crypto.Scalar{rng(), rng()}, C1: rng()}
	var prefixHash types.Hash
	if err := VerifyTCLSAG(prefixHash, ring, sig, crypto.PointIdentity(), crypto.PointIdentity(), crypto.PointIdentity()); err != ErrTCLSAGSizeMismatch {
		t.Fatalf("expected ErrTCLSAGSizeMismatch, got %v", err)
	}
}
