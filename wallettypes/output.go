// Package wallettypes holds the durable record types the wallet core
// keeps about its own chain state: outputs, transactions, and block hash
// index entries (spec §3).
package wallettypes

import (
	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/types"
)

// Output is one on-chain output recognised as belonging to the wallet.
// Records are created only by the scanner on first discovery, mutated only
// by the storage layer's spend/unspend/freeze primitives, and destroyed
// only by DeleteOutputsAbove during reorg rollback (spec §3 lifecycle
// invariant).
type Output struct {
	KeyImage         [32]byte // unique index; the ledger's double-spend tag
	TxHash           types.Hash
	OutputIndex      int
	TxPubKey         [32]byte // legacy derivation R; zero for pure-CARROT outputs
	OutputPublicKey  [32]byte
	Amount           uint64
	Mask             *crypto.Scalar
	Commitment       *crypto.Point
	SubaddressIndex  address.SubaddressIndex

	IsCarrot bool
	// CarrotSharedSecret holds the raw 32-byte sender-receiver secret
	// exactly as produced by crypto.CarrotSenderReceiverSecret — not
	// reduced mod L — since it is later reused as a Blake2b-keyed
	// transcript key (crypto.CarrotSenderExtensionG et al.), which is
	// sensitive to its literal byte pattern, not the integer it might
	// happen to encode. Required for a carrot output to be spendable.
	CarrotSharedSecret *[32]byte
	EncryptedAnchor    [16]byte

	AssetType string

	BlockHeight  uint64
	UnlockHeight uint64
	GlobalIndex  *uint64 // nil until resolved lazily from the node

	IsSpent     bool
	SpentTxHash types.Hash
	SpentHeight uint64
	IsFrozen    bool
}

// Spendable reports whether the output can be selected by the transaction
// builder at the given chain tip height: unspent, unfrozen, unlocked, and
// (for CARROT outputs) carrying the shared secret and commitment needed to
// reconstruct its one-time secret key (spec §3 invariant, §4.11 step 2).
func (o *Output) Spendable(tipHeight uint64) bool {
	if o.IsSpent || o.IsFrozen {
		return false
	}
	if tipHeight < o.UnlockHeight {
		return false
	}
	if o.IsCarrot && (o.CarrotSharedSecret == nil || o.Commitment == nil) {
		return false
	}
	return true
}
