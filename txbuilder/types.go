// Package txbuilder implements the transaction construction pipeline of
// spec §4.11: UTXO selection, decoy fetch, output secret-key derivation,
// range proofs, ring signatures (CLSAG/TCLSAG), balance-preserving
// pseudo-output masks, and canonical serialization, exposed through the
// five wallet entry points transfer/sweep/stake/burn/convert.
package txbuilder

import (
	"github.com/mxhess/salvium-walletcore/address"
	"github.com/mxhess/salvium-walletcore/chainpolicy"
	"github.com/mxhess/salvium-walletcore/crypto"
	"github.com/mxhess/salvium-walletcore/node"
	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

// Priority selects the fee multiplier applied to the affine base fee
// (spec §4.11 step 3).
type Priority uint8

const (
	PriorityDefault Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) multiplier() uint64 {
	switch p {
	case PriorityHigh:
		return 4
	case PriorityNormal:
		return 2
	default:
		return 1
	}
}

// RingSize is the fixed CLSAG/TCLSAG ring width (1 real + 10 decoys).
const RingSize = 11

// StakeLockPeriod is the number of blocks a STAKE output stays locked
// (spec §4.11's per-entry-point specifics).
const StakeLockPeriod = 21600

// Destination is one payment leg of a transfer.
type Destination struct {
	Address *address.Address
	Amount  uint64
}

// Options carries the knobs shared by every entry point.
type Options struct {
	Priority              Priority
	SubtractFeeFromAmount bool
	DryRun                bool
	PaymentID             [address.PaymentIDSize]byte
}

// Keys bundles both key trees the builder may need, matching whichever
// address format the destination or the wallet's own change output uses.
type Keys struct {
	Legacy *address.LegacyKeys
	Carrot *address.CarrotKeys
}

// Wallet is the read-only context the builder needs from the session
// layer: its own keys, subaddress tables, network, and change address.
type Wallet struct {
	Keys          Keys
	Network       address.Network
	LegacyTable   *address.Table
	CarrotTable   *address.Table
	ChangeAddress *address.Address
}

// RingMember is one candidate ring entry: a fetched decoy or the real
// spent output, always addressed by global index once resolved.
type RingMember struct {
	GlobalIndex uint64
	Key         [32]byte
	Commitment  [32]byte
}

// PreparedInput is a selected spendable output together with its
// reconstructed one-time secret key and ring.
type PreparedInput struct {
	Output       *wallettypes.Output
	OneTimeKey   *crypto.Scalar
	Mask         *crypto.Scalar
	Commitment   *crypto.Point
	KeyImage     *crypto.Point
	Ring         []RingMember
	SignerIndex  int
	PseudoOutput *crypto.Point
	PseudoMask   *crypto.Scalar
}

// PreparedOutput is a fully-formed destination output ready for
// serialization.
type PreparedOutput struct {
	OneTimeAddress [32]byte
	Commitment     *crypto.Point
	Mask           *crypto.Scalar
	Amount         uint64
	EncryptedAmount uint64
	ViewTag1       byte
	ViewTag3       [3]byte
	IsCarrot       bool
	EncryptedAnchor [16]byte
	EphemeralPub    [32]byte
	IsChange        bool
}

// BuildRequest is the fully-resolved intent passed to the shared pipeline,
// after each entry point has translated its own arguments into it.
type BuildRequest struct {
	Kind         chainpolicy.TxKind
	AssetType    string
	Destinations []Destination
	Options      Options
	UnlockHeight uint64

	// Amount is the value moved by a STAKE or BURN request, which has no
	// destination output to read it from.
	Amount uint64

	// Convert-only fields (spec §4.11 CONVERT specifics).
	SourceAsset      string
	DestinationAsset string
	AmountSlippage   uint64

	// Sweep marks that every spendable output of AssetType should be
	// consumed (up to sweepCap), ignoring UTXO selection.
	Sweep bool
}

// BuildResult is what the pipeline hands back before broadcast.
type BuildResult struct {
	TxHash    types.Hash
	Blob      []byte
	Fee       uint64
	Inputs    []*PreparedInput
	Outputs   []*PreparedOutput
	SendState *node.SendResult
}
