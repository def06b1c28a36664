// Package scanner implements the output-recognition pipeline (spec §4.5):
// per candidate output, a view-tag fast reject, shared-secret derivation,
// an ownership test against a subaddress table, amount/mask recovery, and
// key-image computation, producing a wallettypes.Output record.
//
// Grounded on the legacy/carrot Match routines of a reference view-wallet
// implementation, generalised here to a stateless function pair (one per
// derivation scheme) instead of a stateful wallet object, since this
// module's session layer owns the wallet's keys and subaddress table.
package scanner

import (
	"errors"

	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/node"
	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

var (
	ErrViewTagMismatch     = errors.New("view tag mismatch")
	ErrNotOwned            = errors.New("output does not belong to this wallet")
	ErrInvalidOneTimeKey   = errors.New("output key does not decompress to a valid point")
	ErrCommitmentMismatch  = errors.New("recomputed commitment does not match the on-chain commitment")
	ErrMissingLegacyPubKey = errors.New("legacy output missing a transaction public key")
)

// LegacyKeyMaterial is the subset of a legacy account's keys the scanner
// needs; kept separate from address.LegacyKeys so a spend-key-less
// (view-only) wallet can still scan.
type LegacyKeyMaterial struct {
	ViewSecret *crypto.Scalar
	SpendKey   *crypto.Scalar // nil for a view-only wallet; key images are then left zero
}

// CarrotKeyMaterial mirrors LegacyKeyMaterial for the CARROT tree.
type CarrotKeyMaterial struct {
	ViewIncomingSecret    *crypto.Scalar
	GenerateImageSecret   *crypto.Scalar // nil for a view-only wallet
	GenerateAddressSecret [32]byte
}

// Candidate is one output entry paired with the context needed to scan it.
type Candidate struct {
	Output          node.TxOutput
	TxHash          types.Hash
	OutputIndex     int
	TxPubKey        [32]byte // legacy R
	FirstKeyImage   [32]byte // for CARROT input-context; zero for coinbase
	IsCoinbase      bool
	BlockHeight     uint64
	EncryptedAmount uint64 // legacy XOR-encrypted amount; ignored for CarrotV1
	Commitment      [32]byte
}

// ScanLegacy runs the legacy CryptoNote pipeline (spec §4.5) against one
// candidate output. lockPeriod is the number of blocks a newly discovered
// output remains locked (spec §3's unlock_height = block_height + lock_period).
func ScanLegacy(keys LegacyKeyMaterial, table *address.Table, c Candidate, lockPeriod uint64) (*wallettypes.Output, error) {
	if c.TxPubKey == ([32]byte{}) {
		return nil, ErrMissingLegacyPubKey
	}
	R, ok := crypto.PointDecompress(c.TxPubKey)
	if !ok {
		return nil, ErrInvalidOneTimeKey
	}
	D := crypto.LegacyDerivation(keys.ViewSecret, R)

	if c.Output.Variant == node.OutputTagged {
		expected := crypto.LegacyViewTag(D.Bytes(), uint64(c.OutputIndex))
		if expected != c.Output.ViewTag1 {
			return nil, ErrViewTagMismatch
		}
	}

	derivationScalar := crypto.LegacyDerivationScalar(D, uint64(c.OutputIndex))

	Ko, ok := crypto.PointDecompress(c.Output.Key)
	if !ok {
		return nil, ErrInvalidOneTimeKey
	}
	nominalSpend := crypto.Sub(Ko, crypto.ScalarMultBase(derivationScalar))

	idx, owned := table.Lookup(nominalSpend)
	if !owned {
		return nil, ErrNotOwned
	}

	out := &wallettypes.Output{
		TxHash:          c.TxHash,
		OutputIndex:     c.OutputIndex,
		TxPubKey:        c.TxPubKey,
		OutputPublicKey: c.Output.Key,
		SubaddressIndex: idx,
		AssetType:       c.Output.AssetType,
		BlockHeight:     c.BlockHeight,
		UnlockHeight:    c.BlockHeight + lockPeriod,
	}

	if c.Output.Variant == node.OutputRegular && c.Output.Amount != 0 {
		// Pre-RCT coinbase output: amount is plaintext, mask is the identity.
		out.Amount = c.Output.Amount
		out.Mask = crypto.IdentityMask()
		out.Commitment = crypto.PedersenCommit(out.Amount, out.Mask)
	} else {
		mask := crypto.LegacyCommitmentMask(derivationScalar)
		amount := crypto.DecryptAmount(derivationScalar, c.EncryptedAmount)
		commitment, ok := crypto.PointDecompress(c.Commitment)
		if !ok {
			return nil, ErrInvalidOneTimeKey
		}
		if !crypto.PedersenCommit(amount, mask).Equal(commitment) {
			return nil, ErrCommitmentMismatch
		}
		out.Amount = amount
		out.Mask = mask
		out.Commitment = commitment
	}

	if keys.SpendKey != nil {
		oneTimeSecret := crypto.ScalarZero().Add(derivationScalar, keys.SpendKey)
		if !idx.IsZero() {
			subSecret := address.LegacySubaddressSecret(keys.ViewSecret, idx)
			oneTimeSecret = crypto.ScalarZero().Add(oneTimeSecret, subSecret)
		}
		ki := crypto.KeyImage(oneTimeSecret, Ko)
		out.KeyImage = ki.Bytes()
	}

	return out, nil
}

// ScanCarrot runs the CARROT pipeline (spec §4.5, §4.11) against one
// candidate output. The subaddress index is resolved from the address
// table, and the payment-vs-change enote type from the amount-commitment
// check; key images are computed only when keys.GenerateImageSecret is set.
func ScanCarrot(keys CarrotKeyMaterial, mainSpendPub *crypto.Point, table *address.Table, ephemeralPub *crypto.Point, c Candidate, lockPeriod uint64) (*wallettypes.Output, error) {
	var inputContext []byte
	if c.IsCoinbase {
		inputContext = crypto.MakeCoinbaseInputContext(c.BlockHeight)
	} else {
		inputContext = crypto.MakeInputContext(c.FirstKeyImage)
	}

	sharedUnctx := crypto.CarrotSharedSecretUnctx(keys.ViewIncomingSecret, ephemeralPub)

	nominalTag := crypto.CarrotViewTag(sharedUnctx, ephemeralPub, inputContext)
	if nominalTag != c.Output.ViewTag3 {
		return nil, ErrViewTagMismatch
	}

	senderReceiverSecret := crypto.CarrotSenderReceiverSecret(sharedUnctx, ephemeralPub, inputContext)

	Ko, ok := crypto.PointDecompress(c.Output.Key)
	if !ok {
		return nil, ErrInvalidOneTimeKey
	}

	var amountCommitment *crypto.Point
	var amount uint64
	var enoteType byte
	var blindingFactor *crypto.Scalar
	var extensionG *crypto.Scalar
	var nominalSpend *crypto.Point

	if c.IsCoinbase {
		extensionG = crypto.CarrotSenderExtensionG(senderReceiverSecret, PointFromAmount(c.Output.Amount))
		nominalSpend = crypto.Sub(Ko, crypto.ScalarMultBase(extensionG))
		amount = c.Output.Amount
		enoteType = crypto.CarrotEnoteTypePayment
		blindingFactor = crypto.IdentityMask()
	} else {
		commitment, ok := crypto.PointDecompress(c.Commitment)
		if !ok {
			return nil, ErrInvalidOneTimeKey
		}
		extensionG = crypto.CarrotSenderExtensionG(senderReceiverSecret, commitment)
		nominalSpend = crypto.Sub(Ko, crypto.ScalarMultBase(extensionG))

		mask := crypto.CarrotAmountEncryptionMask(senderReceiverSecret, Ko)
		nominalAmount := c.EncryptedAmount ^ uint64FromMask(mask)

		recovered := false
		for _, et := range []byte{crypto.CarrotEnoteTypePayment, crypto.CarrotEnoteTypeChange} {
			bf := crypto.CarrotAmountBlindingFactor(senderReceiverSecret, nominalAmount, nominalSpend, et)
			if crypto.CarrotAmountCommitment(nominalAmount, bf).Equal(commitment) {
				amount = nominalAmount
				enoteType = et
				blindingFactor = bf
				recovered = true
				break
			}
		}
		if !recovered {
			return nil, ErrCommitmentMismatch
		}
		amountCommitment = commitment
	}

	idx, owned := table.Lookup(nominalSpend)
	if !owned {
		return nil, ErrNotOwned
	}

	out := &wallettypes.Output{
		TxHash:          c.TxHash,
		OutputIndex:     c.OutputIndex,
		OutputPublicKey: c.Output.Key,
		SubaddressIndex: idx,
		AssetType:       c.Output.AssetType,
		BlockHeight:     c.BlockHeight,
		UnlockHeight:    c.BlockHeight + lockPeriod,
		Amount:          amount,
		Mask:            blindingFactor,
		IsCarrot:        true,
		EncryptedAnchor: c.Output.EncryptedAnchor,
	}
	if amountCommitment != nil {
		out.Commitment = amountCommitment
	} else {
		out.Commitment = crypto.CarrotAmountCommitment(amount, blindingFactor)
	}

	out.CarrotSharedSecret = &senderReceiverSecret
	_ = enoteType

	if keys.GenerateImageSecret != nil {
		oneTimeSecret := crypto.ScalarZero().Add(keys.GenerateImageSecret, extensionG)
		if !idx.IsZero() {
			genSecret := address.CarrotIndexGeneratorSecret(keys.GenerateAddressSecret, idx)
			subScalar := address.CarrotSubaddressScalar(mainSpendPub, idx, genSecret)
			oneTimeSecret = crypto.ScalarZero().Add(oneTimeSecret, subScalar)
		}
		ki := crypto.KeyImage(oneTimeSecret, Ko)
		out.KeyImage = ki.Bytes()
	}

	return out, nil
}

// PointFromAmount encodes a coinbase reward as a Pedersen commitment
// argument for the coinbase extension-key transcript, which hashes the
// amount commitment C_a — for a coinbase enote C_a is simply the identity
// mask commitment to the plaintext reward.
func PointFromAmount(amount uint64) *crypto.Point {
	return crypto.PedersenCommit(amount, crypto.IdentityMask())
}

func uint64FromMask(mask [8]byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(mask[i]) << (8 * i)
	}
	return v
}
