// Package node defines the abstract remote-node boundary (spec §6). No
// transport lives here — HTTP/JSON, the binary portable-storage codec, and
// retry/timeout plumbing are boundary utilities left to a concrete
// adapter; this package only fixes the shape every adapter must expose.
package node

import (
	"context"

	"github.com/mxhess/salvium-walletcore/types"
)

// Result is the uniform {success, result|error} envelope spec §6 requires:
// success alone does not imply a "status: OK" payload, since a well-formed
// RPC reply can still carry an application-level failure such as
// {"status":"Failed"}.
type Result[T any] struct {
	Success bool
	Value   T
	Err     error
}

type Info struct {
	Height        uint64
	TopBlockHash  types.Hash
}

// Output is one candidate output as parsed off the wire. Per spec §9, the
// original source dynamically sniffs `output?.target?.tagged_key?.key`
// etc; here the parser resolves that ambiguity once at decode time into
// one of the three concrete Output variants below, selected using
// rct_signatures.type and the presence of view-tag fields — never
// re-sniffed downstream.
type OutputVariant uint8

const (
	OutputRegular OutputVariant = iota
	OutputTagged
	OutputCarrotV1
)

// TxOutput is a single output entry of a transaction as returned by
// GetBlock/GetTransactions, tagged with the variant that determines which
// scanning pipeline (legacy or carrot) applies.
type TxOutput struct {
	Variant   OutputVariant
	Key       [32]byte
	Amount    uint64 // nonzero only for coinbase (pre-RCT) outputs
	AssetType string // populated for Tagged and CarrotV1

	// Tagged / CarrotV1 only:
	ViewTag1 byte    // Tagged
	ViewTag3 [3]byte // CarrotV1
	// CarrotV1 only: encrypted Janus anti-burning anchor.
	EncryptedAnchor [16]byte

	// RCT-signature fields carried per output (rct_signatures.ecdhInfo[i]
	// and .outPk[i] on the wire); zero for a coinbase output, which has
	// neither.
	EncryptedAmount uint64
	Commitment      [32]byte
}

type Block struct {
	Height       uint64
	Hash         types.Hash
	PrevHash     types.Hash
	Timestamp    uint64
	MinerTxHash  types.Hash
	TxHashes     []types.Hash
	MajorVersion uint8
	MinorVersion uint8
}

type BlockHeader struct {
	Height       uint64
	Hash         types.Hash
	Timestamp    uint64
	Reward       uint64
	MajorVersion uint8
	MinorVersion uint8
}

// TxPubKeys holds the transaction public key(s) carried in extra: the
// legacy R and, when present, the per-subaddress additional keys.
type TxPubKeys struct {
	Main       [32]byte
	Additional [][32]byte
}

type Transaction struct {
	Hash         types.Hash
	UnlockTime   uint64
	PubKeys      TxPubKeys
	Outputs      []TxOutput
	RingSize     int
	RctType      uint8
	Version      uint8
	KeyImages    [][32]byte
	Extra        []byte
}

type OutputDistributionPoint struct {
	Height uint64
	// Cumulative is the running total count of outputs of this asset
	// seen up to and including Height, used to bias decoy selection
	// toward recent outputs (spec §4.11 step 8).
	Cumulative uint64
}

type OutRef struct {
	GlobalIndex uint64
	Key         [32]byte
	Mask        [32]byte
	Unlocked    bool
	Height      uint64
	TxID        types.Hash
}

type SendResult struct {
	Status string
	Reason string
}

// Node is the thin, transport-agnostic boundary consumed by the wallet
// core (spec §6). A concrete adapter (HTTP/JSON-RPC, binary
// portable-storage, or a test double) implements this against whatever
// transport it likes; the core never imports net/http.
type Node interface {
	GetInfo(ctx context.Context) (Info, error)
	GetBlock(ctx context.Context, height uint64) (Block, error)
	GetBlockHeadersRange(ctx context.Context, lo, hi uint64) ([]BlockHeader, error)
	GetTransactions(ctx context.Context, hashes []types.Hash) ([]Transaction, error)
	GetOuts(ctx context.Context, globalIndices []uint64) ([]OutRef, error)
	GetOutputDistribution(ctx context.Context, asset string, start uint64, end *uint64) ([]OutputDistributionPoint, error)
	GetOutputIndexes(ctx context.Context, txHash types.Hash) ([]uint64, error)
	GetTxPool(ctx context.Context) ([]Transaction, error)
	SendRawTransaction(ctx context.Context, hex string, sourceAsset string) (SendResult, error)
	IsKeyImageSpent(ctx context.Context, keyImages [][32]byte) ([]bool, error)
}
