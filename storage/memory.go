package storage

import (
	"sync"

	"github.com/mxhess/salvium-walletcore/types"
	"github.com/mxhess/salvium-walletcore/wallettypes"
)

// Memory is the in-memory reference Storage implementation. All mutating
// operations hold a single mutex for their whole duration, satisfying the
// "single uninterruptible sequence" requirement for the reorg recipe when
// callers route it through Reorg (which never yields between steps because
// none of the four calls block on I/O).
type Memory struct {
	mu           sync.Mutex
	outputs      map[[32]byte]*wallettypes.Output
	transactions map[types.Hash]*wallettypes.Transaction
	blockHashes  map[uint64]types.Hash
}

func NewMemory() *Memory {
	return &Memory{
		outputs:      make(map[[32]byte]*wallettypes.Output),
		transactions: make(map[types.Hash]*wallettypes.Transaction),
		blockHashes:  make(map[uint64]types.Hash),
	}
}

func (m *Memory) PutOutput(o *wallettypes.Output) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.outputs[o.KeyImage] = &cp
	return nil
}

func (m *Memory) GetOutput(keyImage [32]byte) (*wallettypes.Output, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[keyImage]
	if !ok {
		return nil, false, nil
	}
	cp := *o
	return &cp, true, nil
}

func (m *Memory) GetOutputs(filter OutputFilter) ([]*wallettypes.Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*wallettypes.Output
	for _, o := range m.outputs {
		if filter.AssetType != "" && o.AssetType != filter.AssetType {
			continue
		}
		if filter.OnlyUnspent && o.IsSpent {
			continue
		}
		if filter.OnlyUnfrozen && o.IsFrozen {
			continue
		}
		if filter.MaxUnlockHeight != nil && o.UnlockHeight > *filter.MaxUnlockHeight {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) DeleteOutputsAbove(height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, o := range m.outputs {
		if o.BlockHeight > height {
			delete(m.outputs, k)
		}
	}
	return nil
}

func (m *Memory) MarkOutputSpent(keyImage [32]byte, txHash types.Hash, spentHeight uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[keyImage]
	if !ok {
		return nil
	}
	o.IsSpent = true
	o.SpentTxHash = txHash
	o.SpentHeight = spentHeight
	return nil
}

func (m *Memory) UnspendOutputsAbove(height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.outputs {
		if o.IsSpent && o.SpentHeight > height {
			o.IsSpent = false
			o.SpentTxHash = types.ZeroHash
			o.SpentHeight = 0
		}
	}
	return nil
}

func (m *Memory) FreezeOutput(keyImage [32]byte, frozen bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outputs[keyImage]
	if !ok {
		return nil
	}
	o.IsFrozen = frozen
	return nil
}

func (m *Memory) PutTransaction(tx *wallettypes.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tx
	m.transactions[tx.TxHash] = &cp
	return nil
}

func (m *Memory) GetTransaction(txHash types.Hash) (*wallettypes.Transaction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.transactions[txHash]
	if !ok {
		return nil, false, nil
	}
	cp := *tx
	return &cp, true, nil
}

func (m *Memory) DeleteTransactionsAbove(height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, tx := range m.transactions {
		if tx.BlockHeight > height {
			delete(m.transactions, k)
		}
	}
	return nil
}

func (m *Memory) PutBlockHash(height uint64, hash types.Hash) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockHashes[height] = hash
	return nil
}

func (m *Memory) GetBlockHash(height uint64) (types.Hash, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.blockHashes[height]
	return h, ok, nil
}

func (m *Memory) DeleteBlockHashesAbove(height uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for h := range m.blockHashes {
		if h > height {
			delete(m.blockHashes, h)
		}
	}
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outputs = make(map[[32]byte]*wallettypes.Output)
	m.transactions = make(map[types.Hash]*wallettypes.Transaction)
	m.blockHashes = make(map[uint64]types.Hash)
	return nil
}

var _ Storage = (*Memory)(nil)
