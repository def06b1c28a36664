// Package storage implements the reorg-safe wallet view described in
// spec §4.9: outputs, transactions, and the block-hash index, plus the
// spend/unspend/freeze primitives the reorg recipe composes.
package storage

import (
	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

// OutputFilter narrows GetOutputs results. A zero-value field means "don't
// filter on this dimension".
type OutputFilter struct {
	AssetType       string
	OnlyUnspent     bool
	OnlyUnfrozen    bool
	MaxUnlockHeight *uint64 // include only outputs with UnlockHeight <= *MaxUnlockHeight
}

// Storage is the durable-view interface consumed by the wallet session and
// transaction builder. Every operation here is meant to be individually
// atomic; a caller that needs the multi-step reorg recipe to be atomic as a
// whole (spec §5) must obtain that guarantee from the concrete
// implementation, e.g. by taking an outer lock or issuing a single batch.
type Storage interface {
	PutOutput(o *wallettypes.Output) error
	GetOutput(keyImage [32]byte) (*wallettypes.Output, bool, error)
	GetOutputs(filter OutputFilter) ([]*wallettypes.Output, error)
	DeleteOutputsAbove(height uint64) error

	MarkOutputSpent(keyImage [32]byte, txHash types.Hash, spentHeight uint64) error
	UnspendOutputsAbove(height uint64) error
	FreezeOutput(keyImage [32]byte, frozen bool) error

	PutTransaction(tx *wallettypes.Transaction) error
	GetTransaction(txHash types.Hash) (*wallettypes.Transaction, bool, error)
	DeleteTransactionsAbove(height uint64) error

	PutBlockHash(height uint64, hash types.Hash) error
	GetBlockHash(height uint64) (types.Hash, bool, error)
	DeleteBlockHashesAbove(height uint64) error

	// Clear wipes every collection above; used when re-syncing from
	// scratch (e.g. after a seed re-import).
	Clear() error
}

// Reorg runs the rollback recipe from spec §4.9 against any Storage
// implementation, as a single logical operation from the caller's point of
// view (spec §7: "Reorg rollback is itself atomic from the caller's point
// of view"). Concrete implementations that can offer a real transactional
// batch (see storage/badger.go) should still satisfy this contract when
// invoked through their own locking, not just through this helper.
func Reorg(s Storage, reorgHeight uint64) error {
	if err := s.DeleteOutputsAbove(reorgHeight); err != nil {
		return err
	}
	if err := s.DeleteTransactionsAbove(reorgHeight); err != nil {
		return err
	}
	if err := s.UnspendOutputsAbove(reorgHeight); err != nil {
		return err
	}
	if err := s.DeleteBlockHashesAbove(reorgHeight); err != nil {
		return err
	}
	return nil
}
